package expenses

import (
	"time"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/middleware"
	"fleetdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles expense/maintenance HTTP handlers with the service.
type Handlers struct {
	Service *Service
}

func fail(c *fiber.Ctx, err error) error {
	return response.Error(c, err.Error(), apperrors.StatusCode(err), nil)
}

func parseOptionalID(raw string) (*uuid.UUID, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// CreateExpense POST /api/v1/expenses/create-expense
func (h *Handlers) CreateExpense(c *fiber.Ctx) error {
	var body struct {
		VehicleID   string    `json:"vehicle_id"`
		TeamID      string    `json:"team_id"`
		Category    string    `json:"category"`
		SpentOn     time.Time `json:"spent_on"`
		Amount      float64   `json:"amount"`
		Description string    `json:"description"`
		ReceiptPath string    `json:"receipt_path"`
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
	e, err := h.Service.CreateExpense(c.Context(), middleware.GetOrgID(c), CreateExpenseInput{
		VehicleID:   vehicleID,
		TeamID:      teamID,
		Category:    body.Category,
		SpentOn:     body.SpentOn,
		Amount:      body.Amount,
		Description: body.Description,
		ReceiptPath: body.ReceiptPath,
	})
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Expense created", e, nil)
}

// UpdateExpense PUT /api/v1/expenses/update-expense/:id
func (h *Handlers) UpdateExpense(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid expense id", 400, nil)
	}
	var body UpdateExpenseInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	e, err := h.Service.UpdateExpense(c.Context(), middleware.GetOrgID(c), id, body)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Expense updated", e, nil)
}

// GetExpense GET /api/v1/expenses/get-expense/:id
func (h *Handlers) GetExpense(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid expense id", 400, nil)
	}
	e, err := h.Service.GetExpense(c.Context(), middleware.GetOrgID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Expense fetched", e, nil)
}

// ListExpenses GET /api/v1/expenses/get-all-expenses
func (h *Handlers) ListExpenses(c *fiber.Ctx) error {
	var f ExpenseFilter
	vehicleID, ok := parseOptionalID(c.Query("vehicle_id"))
	if !ok {
		return response.Error(c, "Invalid vehicle_id", 400, nil)
	}
	f.VehicleID = vehicleID
	teamID, ok := parseOptionalID(c.Query("team_id"))
	if !ok {
		return response.Error(c, "Invalid team_id", 400, nil)
	}
	f.TeamID = teamID
	f.Category = c.Query("category")
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return response.Error(c, "Invalid from date", 400, nil)
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return response.Error(c, "Invalid to date", 400, nil)
		}
		f.To = &t
	}
	es, err := h.Service.ListExpenses(c.Context(), middleware.GetOrgID(c), f)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Expenses fetched", es, nil)
}

// DeleteExpense DELETE /api/v1/expenses/delete-expense/:id
func (h *Handlers) DeleteExpense(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid expense id", 400, nil)
	}
	if err := h.Service.DeleteExpense(c.Context(), middleware.GetOrgID(c), id); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Expense deleted", nil, nil)
}

// CreateMaintenance POST /api/v1/expenses/create-maintenance
func (h *Handlers) CreateMaintenance(c *fiber.Ctx) error {
	var body struct {
		VehicleID       string    `json:"vehicle_id"`
		PerformedOn     time.Time `json:"performed_on"`
		MaintenanceType string    `json:"maintenance_type"`
		Description     string    `json:"description"`
		Cost            float64   `json:"cost"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	vehicleID, err := uuid.Parse(body.VehicleID)
	if err != nil {
		return response.Error(c, "Invalid vehicle_id", 400, nil)
	}
	m, err := h.Service.CreateMaintenance(c.Context(), middleware.GetOrgID(c), CreateMaintenanceInput{
		VehicleID:       vehicleID,
		PerformedOn:     body.PerformedOn,
		MaintenanceType: body.MaintenanceType,
		Description:     body.Description,
		Cost:            body.Cost,
	})
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Maintenance created", m, nil)
}

// ListMaintenance GET /api/v1/expenses/get-vehicle-maintenance/:vehicleId
func (h *Handlers) ListMaintenance(c *fiber.Ctx) error {
	vehicleID, err := uuid.Parse(c.Params("vehicleId"))
	if err != nil {
		return response.Error(c, "Invalid vehicle id", 400, nil)
	}
	ms, err := h.Service.ListMaintenance(c.Context(), middleware.GetOrgID(c), vehicleID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Maintenance records fetched", ms, nil)
}

// DeleteMaintenance DELETE /api/v1/expenses/delete-maintenance/:id
func (h *Handlers) DeleteMaintenance(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid maintenance id", 400, nil)
	}
	if err := h.Service.DeleteMaintenance(c.Context(), middleware.GetOrgID(c), id); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Maintenance deleted", nil, nil)
}
