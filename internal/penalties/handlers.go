package penalties

import (
	"time"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/middleware"
	"fleetdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles penalty HTTP handlers with the service.
type Handlers struct {
	Service *Service
}

func fail(c *fiber.Ctx, err error) error {
	return response.Error(c, err.Error(), apperrors.StatusCode(err), nil)
}

func parseOptionalID(s string) (*uuid.UUID, bool) {
	if s == "" {
		return nil, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// Create POST /api/v1/penalties/create-penalty
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body struct {
		VehicleID   string  `json:"vehicle_id"`
		TeamID      string  `json:"team_id"`
		UserID      string  `json:"user_id"`
		OccurredOn  string  `json:"occurred_on"`
		Amount      float64 `json:"amount"`
		Origin      string  `json:"origin"`
		Description string  `json:"description"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	vehicleID, ok := parseOptionalID(body.VehicleID)
	if !ok {
		return response.Error(c, "Invalid vehicle_id", 400, nil)
	}
	teamID, ok := parseOptionalID(body.TeamID)
	if !ok {
		return response.Error(c, "Invalid team_id", 400, nil)
	}
	userID, ok := parseOptionalID(body.UserID)
	if !ok {
		return response.Error(c, "Invalid user_id", 400, nil)
	}
	var occurredOn time.Time
	if body.OccurredOn != "" {
		var err error
		occurredOn, err = time.Parse("2006-01-02", body.OccurredOn)
		if err != nil {
			return response.Error(c, "Invalid occurred_on (expected YYYY-MM-DD)", 400, nil)
		}
	}

	p, err := h.Service.Create(c.Context(), middleware.GetOrgID(c), CreateInput{
		VehicleID:   vehicleID,
		TeamID:      teamID,
		UserID:      userID,
		OccurredOn:  occurredOn,
		Amount:      body.Amount,
		Origin:      body.Origin,
		Description: body.Description,
	})
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Penalty created", p, nil)
}

// MarkPaid POST /api/v1/penalties/mark-paid/:id
func (h *Handlers) MarkPaid(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid penalty id", 400, nil)
	}
	var body struct {
		ReceiptPath string `json:"receipt_path"`
		Notes       string `json:"notes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	p, err := h.Service.MarkPaid(c.Context(), middleware.GetOrgID(c), id, body.ReceiptPath, body.Notes)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Penalty paid", p, nil)
}

// AttachReceipt POST /api/v1/penalties/attach-receipt/:id
func (h *Handlers) AttachReceipt(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid penalty id", 400, nil)
	}
	var body struct {
		ReceiptPath string `json:"receipt_path"`
	}
	if err := c.BodyParser(&body); err != nil || body.ReceiptPath == "" {
		return response.Error(c, "receipt_path is required", 400, nil)
	}
	if err := h.Service.AttachReceipt(c.Context(), middleware.GetOrgID(c), id, body.ReceiptPath); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Receipt attached", nil, nil)
}

// Delete DELETE /api/v1/penalties/delete-penalty/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid penalty id", 400, nil)
	}
	if err := h.Service.Delete(c.Context(), middleware.GetOrgID(c), id); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Penalty deleted", nil, nil)
}

// Get GET /api/v1/penalties/get-penalty/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid penalty id", 400, nil)
	}
	p, receipts, err := h.Service.Get(c.Context(), middleware.GetOrgID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Penalty fetched", fiber.Map{
		"penalty":  p,
		"receipts": receipts,
	}, nil)
}

// List GET /api/v1/penalties/get-all-penalties
func (h *Handlers) List(c *fiber.Ctx) error {
	ps, err := h.Service.List(c.Context(), middleware.GetOrgID(c), c.Query("status"), c.Query("origin"))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Penalties fetched", ps, nil)
}

// Summary GET /api/v1/penalties/summary
func (h *Handlers) Summary(c *fiber.Ctx) error {
	rows, err := h.Service.Summary(c.Context(), middleware.GetOrgID(c))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Penalty summary", rows, nil)
}
