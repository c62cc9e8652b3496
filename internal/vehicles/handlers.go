package vehicles

import (
	"time"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/middleware"
	"fleetdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles vehicle HTTP handlers with the service.
type Handlers struct {
	Service *Service
}

func fail(c *fiber.Ctx, err error) error {
	return response.Error(c, err.Error(), apperrors.StatusCode(err), nil)
}

// Create POST /api/v1/vehicles/create-vehicle
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body CreateVehicleInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	v, err := h.Service.Create(c.Context(), middleware.GetOrgID(c), body)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Vehicle created", v, nil)
}

// Update PUT /api/v1/vehicles/update-vehicle/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid vehicle id", 400, nil)
	}
	var body UpdateVehicleInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	v, err := h.Service.Update(c.Context(), middleware.GetOrgID(c), id, body)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Vehicle updated", v, nil)
}

// Get GET /api/v1/vehicles/get-vehicle/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid vehicle id", 400, nil)
	}
	v, photos, err := h.Service.Get(c.Context(), middleware.GetOrgID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Vehicle fetched", fiber.Map{
		"vehicle": v,
		"photos":  photos,
	}, nil)
}

// List GET /api/v1/vehicles/get-all-vehicles
func (h *Handlers) List(c *fiber.Ctx) error {
	vs, err := h.Service.List(c.Context(), middleware.GetOrgID(c))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Vehicles fetched", vs, nil)
}

// Delete DELETE /api/v1/vehicles/delete-vehicle/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid vehicle id", 400, nil)
	}
	if err := h.Service.Delete(c.Context(), middleware.GetOrgID(c), id); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Vehicle deleted", nil, nil)
}

// Assign POST /api/v1/vehicles/assign
func (h *Handlers) Assign(c *fiber.Ctx) error {
	var body struct {
		VehicleID string `json:"vehicle_id"`
		TeamID    string `json:"team_id"`
		DriverID  string `json:"driver_id"`
		StartDate string `json:"start_date"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	vehicleID, err := uuid.Parse(body.VehicleID)
	if err != nil {
		return response.Error(c, "Invalid vehicle_id", 400, nil)
	}
	teamID, err := uuid.Parse(body.TeamID)
	if err != nil {
		return response.Error(c, "Invalid team_id", 400, nil)
	}
	var driverID *uuid.UUID
	if body.DriverID != "" {
		id, err := uuid.Parse(body.DriverID)
		if err != nil {
			return response.Error(c, "Invalid driver_id", 400, nil)
		}
		driverID = &id
	}
	var startDate time.Time
	if body.StartDate != "" {
		startDate, err = time.Parse("2006-01-02", body.StartDate)
		if err != nil {
			return response.Error(c, "Invalid start_date (expected YYYY-MM-DD)", 400, nil)
		}
	}

	a, err := h.Service.Assign(c.Context(), middleware.GetOrgID(c), AssignInput{
		VehicleID: vehicleID,
		TeamID:    teamID,
		DriverID:  driverID,
		StartDate: startDate,
	})
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Vehicle assigned", a, nil)
}

// EndAssignment POST /api/v1/vehicles/end-assignment/:id
func (h *Handlers) EndAssignment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid assignment id", 400, nil)
	}
	var body struct {
		EndDate string `json:"end_date"`
	}
	_ = c.BodyParser(&body)
	var endDate time.Time
	if body.EndDate != "" {
		endDate, err = time.Parse("2006-01-02", body.EndDate)
		if err != nil {
			return response.Error(c, "Invalid end_date (expected YYYY-MM-DD)", 400, nil)
		}
	}
	if err := h.Service.End(c.Context(), middleware.GetOrgID(c), id, endDate); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Assignment ended", nil, nil)
}

// ListAssignments GET /api/v1/vehicles/get-assignments/:id
func (h *Handlers) ListAssignments(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid vehicle id", 400, nil)
	}
	as, err := h.Service.ListAssignments(c.Context(), middleware.GetOrgID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Assignments fetched", as, nil)
}
