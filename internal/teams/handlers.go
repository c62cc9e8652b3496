package teams

import (
	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/middleware"
	"fleetdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles team HTTP handlers with the service.
type Handlers struct {
	Service *Service
}

func fail(c *fiber.Ctx, err error) error {
	return response.Error(c, err.Error(), apperrors.StatusCode(err), nil)
}

// Create POST /api/v1/teams/create-team
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body struct {
		Name       string `json:"name"`
		LeadUserID string `json:"lead_user_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	var leadID *uuid.UUID
	if body.LeadUserID != "" {
		id, err := uuid.Parse(body.LeadUserID)
		if err != nil {
			return response.Error(c, "Invalid lead_user_id", 400, nil)
		}
		leadID = &id
	}
	t, err := h.Service.Create(c.Context(), middleware.GetOrgID(c), CreateInput{
		Name:       body.Name,
		LeadUserID: leadID,
	})
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Team created", t, nil)
}

// Update PUT /api/v1/teams/update-team/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid team id", 400, nil)
	}
	var body struct {
		Name       *string `json:"name"`
		LeadUserID *string `json:"lead_user_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	in := UpdateInput{Name: body.Name}
	if body.LeadUserID != nil {
		in.SetLead = true
		if *body.LeadUserID != "" {
			leadID, err := uuid.Parse(*body.LeadUserID)
			if err != nil {
				return response.Error(c, "Invalid lead_user_id", 400, nil)
			}
			in.LeadUserID = &leadID
		}
	}
	t, err := h.Service.Update(c.Context(), middleware.GetOrgID(c), id, in)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Team updated", t, nil)
}

// Get GET /api/v1/teams/get-team/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid team id", 400, nil)
	}
	t, err := h.Service.Get(c.Context(), middleware.GetOrgID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Team fetched", t, nil)
}

// List GET /api/v1/teams/get-all-teams
func (h *Handlers) List(c *fiber.Ctx) error {
	ts, err := h.Service.List(c.Context(), middleware.GetOrgID(c))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Teams fetched", ts, nil)
}

// Delete DELETE /api/v1/teams/delete-team/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid team id", 400, nil)
	}
	if err := h.Service.Delete(c.Context(), middleware.GetOrgID(c), id); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Team deleted", nil, nil)
}
