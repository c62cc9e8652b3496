package users

import (
	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/middleware"
	"fleetdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles user HTTP handlers with the service.
type Handlers struct {
	Service *Service
}

func fail(c *fiber.Ctx, err error) error {
	return response.Error(c, err.Error(), apperrors.StatusCode(err), nil)
}

// Create POST /api/v1/users/create-user
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body struct {
		FirstName string  `json:"first_name"`
		LastName  string  `json:"last_name"`
		Email     string  `json:"email"`
		Password  string  `json:"password"`
		Role      string  `json:"role"`
		TeamID    string  `json:"team_id"`
		Phone     *string `json:"phone"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	var teamID *uuid.UUID
	if body.TeamID != "" {
		id, err := uuid.Parse(body.TeamID)
		if err != nil {
			return response.Error(c, "Invalid team_id", 400, nil)
		}
		teamID = &id
	}
	u, err := h.Service.Create(c.Context(), middleware.GetOrgID(c), CreateInput{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Password:  body.Password,
		Role:      body.Role,
		TeamID:    teamID,
		Phone:     body.Phone,
	})
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "User created", u, nil)
}

// Update PUT /api/v1/users/update-user/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid user id", 400, nil)
	}
	var body struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Password  *string `json:"password"`
		Role      *string `json:"role"`
		TeamID    *string `json:"team_id"`
		Phone     *string `json:"phone"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	in := UpdateInput{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Password:  body.Password,
		Role:      body.Role,
		Phone:     body.Phone,
	}
	if body.TeamID != nil {
		in.SetTeam = true
		if *body.TeamID != "" {
			teamID, err := uuid.Parse(*body.TeamID)
			if err != nil {
				return response.Error(c, "Invalid team_id", 400, nil)
			}
			in.TeamID = &teamID
		}
	}
	u, err := h.Service.Update(c.Context(), middleware.GetOrgID(c), id, in)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "User updated", u, nil)
}

// Get GET /api/v1/users/get-user/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid user id", 400, nil)
	}
	u, err := h.Service.Get(c.Context(), middleware.GetOrgID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "User fetched", u, nil)
}

// List GET /api/v1/users/get-all-users
func (h *Handlers) List(c *fiber.Ctx) error {
	var teamID *uuid.UUID
	if v := c.Query("team_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid team_id", 400, nil)
		}
		teamID = &id
	}
	us, err := h.Service.List(c.Context(), middleware.GetOrgID(c), teamID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Users fetched", us, nil)
}

// Delete DELETE /api/v1/users/delete-user/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid user id", 400, nil)
	}
	if err := h.Service.Delete(c.Context(), middleware.GetOrgID(c), id); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "User deleted", nil, nil)
}
