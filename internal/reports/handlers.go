package reports

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/middleware"
	"fleetdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles report HTTP handlers with the service.
type Handlers struct {
	Service *Service
}

func fail(c *fiber.Ctx, err error) error {
	return response.Error(c, err.Error(), apperrors.StatusCode(err), nil)
}

// ExpensesByVehicle GET /api/v1/reports/expenses-by-vehicle
func (h *Handlers) ExpensesByVehicle(c *fiber.Ctx) error {
	rows, err := h.Service.ExpensesByVehicle(c.Context(), middleware.GetOrgID(c))
	if err != nil {
		return fail(c, err)
	}
	if c.Query("format") == "csv" {
		return sendExpenseCSV(c, "expenses-by-vehicle.csv", "vehicle_id", rows, func(r ExpenseRow) *uuid.UUID { return r.VehicleID })
	}
	return response.Success(c, "Expense report fetched", rows, nil)
}

// ExpensesByTeam GET /api/v1/reports/expenses-by-team
func (h *Handlers) ExpensesByTeam(c *fiber.Ctx) error {
	rows, err := h.Service.ExpensesByTeam(c.Context(), middleware.GetOrgID(c))
	if err != nil {
		return fail(c, err)
	}
	if c.Query("format") == "csv" {
		return sendExpenseCSV(c, "expenses-by-team.csv", "team_id", rows, func(r ExpenseRow) *uuid.UUID { return r.TeamID })
	}
	return response.Success(c, "Expense report fetched", rows, nil)
}

// ExpensesByCategory GET /api/v1/reports/expenses-by-category
func (h *Handlers) ExpensesByCategory(c *fiber.Ctx) error {
	rows, err := h.Service.ExpensesByCategory(c.Context(), middleware.GetOrgID(c))
	if err != nil {
		return fail(c, err)
	}
	if c.Query("format") == "csv" {
		return sendExpenseCSV(c, "expenses-by-category.csv", "", rows, nil)
	}
	return response.Success(c, "Expense report fetched", rows, nil)
}

// DamageChargesByTeam GET /api/v1/reports/damage-charges-by-team
func (h *Handlers) DamageChargesByTeam(c *fiber.Ctx) error {
	rows, err := h.Service.DamageChargesByTeam(c.Context(), middleware.GetOrgID(c))
	if err != nil {
		return fail(c, err)
	}
	if c.Query("format") != "csv" {
		return response.Success(c, "Damage report fetched", rows, nil)
	}
	records := [][]string{{"team_id", "month", "count", "total"}}
	for _, r := range rows {
		records = append(records, []string{
			idString(r.TeamID),
			r.Month,
			strconv.FormatInt(r.Count, 10),
			strconv.FormatFloat(r.Total, 'f', 2, 64),
		})
	}
	return sendCSV(c, "damage-charges-by-team.csv", records)
}

func sendExpenseCSV(c *fiber.Ctx, filename, idHeader string, rows []ExpenseRow, id func(ExpenseRow) *uuid.UUID) error {
	header := []string{"category", "month", "count", "total"}
	if idHeader != "" {
		header = append([]string{idHeader}, header...)
	}
	records := [][]string{header}
	for _, r := range rows {
		rec := []string{
			r.Category,
			r.Month,
			strconv.FormatInt(r.Count, 10),
			strconv.FormatFloat(r.Total, 'f', 2, 64),
		}
		if id != nil {
			rec = append([]string{idString(id(r))}, rec...)
		}
		records = append(records, rec)
	}
	return sendCSV(c, filename, records)
}

func idString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func sendCSV(c *fiber.Ctx, filename string, records [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
