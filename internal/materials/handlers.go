package materials

import (
	"time"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/middleware"
	"fleetdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles material HTTP handlers with the service.
type Handlers struct {
	Service *Service
}

func fail(c *fiber.Ctx, err error) error {
	return response.Error(c, err.Error(), apperrors.StatusCode(err), nil)
}

// CreateMaterial POST /api/v1/materials/create-material
func (h *Handlers) CreateMaterial(c *fiber.Ctx) error {
	var body CreateMaterialInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	m, err := h.Service.CreateMaterial(c.Context(), middleware.GetOrgID(c), body)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Material created", m, nil)
}

// UpdateMaterial PUT /api/v1/materials/update-material/:id
func (h *Handlers) UpdateMaterial(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid material id", 400, nil)
	}
	var body UpdateMaterialInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	m, err := h.Service.UpdateMaterial(c.Context(), middleware.GetOrgID(c), id, body)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Material updated", m, nil)
}

// GetMaterial GET /api/v1/materials/get-material/:id
func (h *Handlers) GetMaterial(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid material id", 400, nil)
	}
	m, err := h.Service.GetMaterial(c.Context(), middleware.GetOrgID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Material fetched", fiber.Map{
		"material":  m,
		"available": m.Available(),
	}, nil)
}

// ListMaterials GET /api/v1/materials/get-all-materials
func (h *Handlers) ListMaterials(c *fiber.Ctx) error {
	ms, err := h.Service.ListMaterials(c.Context(), middleware.GetOrgID(c))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Materials fetched", ms, nil)
}

// DeleteMaterial DELETE /api/v1/materials/delete-material/:id
func (h *Handlers) DeleteMaterial(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid material id", 400, nil)
	}
	if err := h.Service.DeleteMaterial(c.Context(), middleware.GetOrgID(c), id); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Material deleted", nil, nil)
}

// Issue POST /api/v1/materials/issue
func (h *Handlers) Issue(c *fiber.Ctx) error {
	var body struct {
		MaterialID string `json:"material_id"`
		TeamID     string `json:"team_id"`
		Quantity   int    `json:"quantity"`
		IssuedOn   string `json:"issued_on"`
		Notes      string `json:"notes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	materialID, err := uuid.Parse(body.MaterialID)
	if err != nil {
		return response.Error(c, "Invalid material_id", 400, nil)
	}
	teamID, err := uuid.Parse(body.TeamID)
	if err != nil {
		return response.Error(c, "Invalid team_id", 400, nil)
	}
	var issuedOn time.Time
	if body.IssuedOn != "" {
		issuedOn, err = time.Parse("2006-01-02", body.IssuedOn)
		if err != nil {
			return response.Error(c, "Invalid issued_on (expected YYYY-MM-DD)", 400, nil)
		}
	}

	a, err := h.Service.Issue(c.Context(), middleware.GetOrgID(c), IssueInput{
		MaterialID: materialID,
		TeamID:     teamID,
		Quantity:   body.Quantity,
		IssuedOn:   issuedOn,
		Notes:      body.Notes,
		ActorID:    middleware.GetActorID(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Material issued", a, nil)
}

// MarkForReturn POST /api/v1/materials/mark-for-return/:id
func (h *Handlers) MarkForReturn(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid assignment id", 400, nil)
	}
	if err := h.Service.MarkForReturn(c.Context(), middleware.GetOrgID(c), id, middleware.GetActorID(c)); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Assignment marked for return", nil, nil)
}

// ConfirmReturn POST /api/v1/materials/confirm-return/:id
func (h *Handlers) ConfirmReturn(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid assignment id", 400, nil)
	}
	var body struct {
		Outcome string `json:"outcome"`
	}
	if err := c.BodyParser(&body); err != nil || body.Outcome == "" {
		return response.Error(c, "outcome is required", 400, nil)
	}
	if err := h.Service.ConfirmReturn(c.Context(), middleware.GetOrgID(c), id, body.Outcome, middleware.GetActorID(c)); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Return confirmed", nil, nil)
}

// DirectReturn POST /api/v1/materials/direct-return/:id
func (h *Handlers) DirectReturn(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid assignment id", 400, nil)
	}
	if err := h.Service.DirectReturn(c.Context(), middleware.GetOrgID(c), id, middleware.GetActorID(c)); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Assignment returned", nil, nil)
}

// DirectBreak POST /api/v1/materials/direct-break/:id
func (h *Handlers) DirectBreak(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid assignment id", 400, nil)
	}
	var body struct {
		Fault string `json:"fault"`
	}
	if err := c.BodyParser(&body); err != nil || body.Fault == "" {
		return response.Error(c, "fault is required", 400, nil)
	}
	if err := h.Service.DirectBreak(c.Context(), middleware.GetOrgID(c), id, body.Fault, middleware.GetActorID(c)); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Assignment marked broken", nil, nil)
}

// ListAssignments GET /api/v1/materials/get-assignments
func (h *Handlers) ListAssignments(c *fiber.Ctx) error {
	var materialID, teamID *uuid.UUID
	if v := c.Query("material_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid material_id", 400, nil)
		}
		materialID = &id
	}
	if v := c.Query("team_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid team_id", 400, nil)
		}
		teamID = &id
	}
	as, err := h.Service.ListAssignments(c.Context(), middleware.GetOrgID(c), materialID, teamID, c.Query("status"))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Assignments fetched", as, nil)
}

// ListEvents GET /api/v1/materials/get-events/:id
func (h *Handlers) ListEvents(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid assignment id", 400, nil)
	}
	evs, err := h.Service.ListEvents(c.Context(), middleware.GetOrgID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Events fetched", evs, nil)
}
