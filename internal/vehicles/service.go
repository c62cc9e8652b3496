package vehicles

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/domain"
	"fleetdesk-backend/internal/pkg/validation"
	"fleetdesk-backend/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the vehicle registry and assignment history. The
// single-open-assignment invariant is enforced here: assigning a vehicle
// closes the previous open assignment in the same transaction.
type Service struct {
	DB *gorm.DB
}

// CreateVehicleInput for vehicle creation.
type CreateVehicleInput struct {
	Name         string     `json:"name"`
	LicensePlate string     `json:"license_plate"`
	VIN          string     `json:"vin"`
	Status       string     `json:"status"`
	IsRental     bool       `json:"is_rental"`
	RentalStart  *time.Time `json:"rental_start"`
	RentalEnd    *time.Time `json:"rental_end"`
	MonthlyPrice *float64   `json:"monthly_price"`
}

func validStatus(s string) bool {
	switch s {
	case domain.VehicleStatusActive, domain.VehicleStatusRepair,
		domain.VehicleStatusUnavailable, domain.VehicleStatusRented:
		return true
	}
	return false
}

// Create inserts a vehicle. License plate and VIN must be unique within the
// organization.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, in CreateVehicleInput) (*domain.Vehicle, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	plate := strings.ToUpper(strings.TrimSpace(in.LicensePlate))
	vin := strings.ToUpper(strings.TrimSpace(in.VIN))
	if !validation.IsValidLicensePlate(plate) {
		return nil, fmt.Errorf("%w: invalid license plate", apperrors.ErrValidation)
	}
	if !validation.IsValidVIN(vin) {
		return nil, fmt.Errorf("%w: invalid VIN", apperrors.ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = domain.VehicleStatusActive
	}
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, status)
	}

	var out *domain.Vehicle
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dup domain.Vehicle
		if err := tx.Where("organization_id = ? AND license_plate = ?", orgID, plate).First(&dup).Error; err == nil {
			return fmt.Errorf("%w: license plate %s already registered", apperrors.ErrUniquenessViolation, plate)
		}
		if err := tx.Where("organization_id = ? AND vin = ?", orgID, vin).First(&dup).Error; err == nil {
			return fmt.Errorf("%w: VIN %s already registered", apperrors.ErrUniquenessViolation, vin)
		}

		v := &domain.Vehicle{
			OrganizationID: orgID,
			Name:           in.Name,
			LicensePlate:   plate,
			VIN:            vin,
			Status:         status,
			IsRental:       in.IsRental,
			RentalStart:    in.RentalStart,
			RentalEnd:      in.RentalEnd,
			MonthlyPrice:   in.MonthlyPrice,
		}
		if err := tx.Create(v).Error; err != nil {
			return apperrors.Wrap("vehicle", err)
		}
		out = v
		return nil
	})
	return out, err
}

// UpdateVehicleInput for vehicle edits.
type UpdateVehicleInput struct {
	Name         *string    `json:"name"`
	LicensePlate *string    `json:"license_plate"`
	VIN          *string    `json:"vin"`
	Status       *string    `json:"status"`
	IsRental     *bool      `json:"is_rental"`
	RentalStart  *time.Time `json:"rental_start"`
	RentalEnd    *time.Time `json:"rental_end"`
	MonthlyPrice *float64   `json:"monthly_price"`
}

// Update edits a vehicle, re-checking plate/VIN uniqueness when they change.
func (s *Service) Update(ctx context.Context, orgID, vehicleID uuid.UUID, in UpdateVehicleInput) (*domain.Vehicle, error) {
	var out *domain.Vehicle
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v domain.Vehicle
		if err := tx.Where("vehicle_id = ? AND organization_id = ?", vehicleID, orgID).First(&v).Error; err != nil {
			return apperrors.Wrap("vehicle", err)
		}
		if in.Name != nil {
			if *in.Name == "" {
				return fmt.Errorf("%w: name must not be empty", apperrors.ErrValidation)
			}
			v.Name = *in.Name
		}
		if in.LicensePlate != nil {
			plate := strings.ToUpper(strings.TrimSpace(*in.LicensePlate))
			if !validation.IsValidLicensePlate(plate) {
				return fmt.Errorf("%w: invalid license plate", apperrors.ErrValidation)
			}
			var dup domain.Vehicle
			if err := tx.Where("organization_id = ? AND license_plate = ? AND vehicle_id != ?", orgID, plate, vehicleID).First(&dup).Error; err == nil {
				return fmt.Errorf("%w: license plate %s already registered", apperrors.ErrUniquenessViolation, plate)
			}
			v.LicensePlate = plate
		}
		if in.VIN != nil {
			vin := strings.ToUpper(strings.TrimSpace(*in.VIN))
			if !validation.IsValidVIN(vin) {
				return fmt.Errorf("%w: invalid VIN", apperrors.ErrValidation)
			}
			var dup domain.Vehicle
			if err := tx.Where("organization_id = ? AND vin = ? AND vehicle_id != ?", orgID, vin, vehicleID).First(&dup).Error; err == nil {
				return fmt.Errorf("%w: VIN %s already registered", apperrors.ErrUniquenessViolation, vin)
			}
			v.VIN = vin
		}
		if in.Status != nil {
			if !validStatus(*in.Status) {
				return fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, *in.Status)
			}
			v.Status = *in.Status
		}
		if in.IsRental != nil {
			v.IsRental = *in.IsRental
		}
		if in.RentalStart != nil {
			v.RentalStart = in.RentalStart
		}
		if in.RentalEnd != nil {
			v.RentalEnd = in.RentalEnd
		}
		if in.MonthlyPrice != nil {
			v.MonthlyPrice = in.MonthlyPrice
		}
		if err := tx.Save(&v).Error; err != nil {
			return apperrors.Wrap("vehicle", err)
		}
		out = &v
		return nil
	})
	return out, err
}

// Get returns one vehicle with its photos.
func (s *Service) Get(ctx context.Context, orgID, vehicleID uuid.UUID) (*domain.Vehicle, []domain.Attachment, error) {
	var v domain.Vehicle
	if err := tenant.Scoped(ctx, s.DB, orgID).Where("vehicle_id = ?", vehicleID).First(&v).Error; err != nil {
		return nil, nil, apperrors.Wrap("vehicle", err)
	}
	var photos []domain.Attachment
	if err := tenant.Scoped(ctx, s.DB, orgID).
		Where("owner_type = ? AND owner_id = ?", domain.AttachmentOwnerVehicle, vehicleID).
		Order("position").Find(&photos).Error; err != nil {
		return nil, nil, apperrors.Wrap("attachments", err)
	}
	return &v, photos, nil
}

// List returns all vehicles for the organization.
func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	if err := tenant.Scoped(ctx, s.DB, orgID).Order("name").Find(&out).Error; err != nil {
		return nil, apperrors.Wrap("vehicles", err)
	}
	return out, nil
}

// Delete hard-deletes a vehicle only when nothing references it.
func (s *Service) Delete(ctx context.Context, orgID, vehicleID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v domain.Vehicle
		if err := tx.Where("vehicle_id = ? AND organization_id = ?", vehicleID, orgID).First(&v).Error; err != nil {
			return apperrors.Wrap("vehicle", err)
		}
		refs := []struct {
			name  string
			model interface{}
		}{
			{"assignment", &domain.VehicleAssignment{}},
			{"penalty", &domain.Penalty{}},
			{"document", &domain.VehicleDocument{}},
			{"expense", &domain.Expense{}},
			{"maintenance record", &domain.Maintenance{}},
		}
		for _, r := range refs {
			var n int64
			if err := tx.Model(r.model).Where("vehicle_id = ? AND organization_id = ?", vehicleID, orgID).Count(&n).Error; err != nil {
				return apperrors.Wrap("vehicle references", err)
			}
			if n > 0 {
				return fmt.Errorf("%w: vehicle has %d %s(s)", apperrors.ErrHasDependents, n, r.name)
			}
		}
		return apperrors.Wrap("vehicle", tx.Delete(&v).Error)
	})
}

// AssignInput for vehicle assignment.
type AssignInput struct {
	VehicleID uuid.UUID  `json:"vehicle_id"`
	TeamID    uuid.UUID  `json:"team_id"`
	DriverID  *uuid.UUID `json:"driver_id"`
	StartDate time.Time  `json:"start_date"`
}

// Assign gives a vehicle to a team, force-closing any open assignment with
// end_date = the new start date. Close-old-then-open-new is one transaction
// so no observer sees two open assignments for the vehicle.
func (s *Service) Assign(ctx context.Context, orgID uuid.UUID, in AssignInput) (*domain.VehicleAssignment, error) {
	if in.StartDate.IsZero() {
		in.StartDate = time.Now()
	}

	var created *domain.VehicleAssignment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v domain.Vehicle
		if err := tx.Where("vehicle_id = ? AND organization_id = ?", in.VehicleID, orgID).First(&v).Error; err != nil {
			return apperrors.Wrap("vehicle", err)
		}
		var team domain.Team
		if err := tx.Where("team_id = ? AND organization_id = ?", in.TeamID, orgID).First(&team).Error; err != nil {
			return apperrors.Wrap("team", err)
		}
		if in.DriverID != nil {
			var driver domain.User
			if err := tx.Where("user_id = ? AND organization_id = ?", *in.DriverID, orgID).First(&driver).Error; err != nil {
				return apperrors.Wrap("driver", err)
			}
		}

		if err := tx.Model(&domain.VehicleAssignment{}).
			Where("vehicle_id = ? AND organization_id = ? AND end_date IS NULL", in.VehicleID, orgID).
			UpdateColumn("end_date", in.StartDate).Error; err != nil {
			return apperrors.Wrap("vehicle assignment", err)
		}

		a := &domain.VehicleAssignment{
			OrganizationID: orgID,
			VehicleID:      in.VehicleID,
			TeamID:         in.TeamID,
			DriverUserID:   in.DriverID,
			StartDate:      in.StartDate,
		}
		if err := tx.Create(a).Error; err != nil {
			return apperrors.Wrap("vehicle assignment", err)
		}
		created = a
		return nil
	})
	return created, err
}

// End closes an open assignment. Ending an already-closed assignment fails.
func (s *Service) End(ctx context.Context, orgID, assignmentID uuid.UUID, endDate time.Time) error {
	if endDate.IsZero() {
		endDate = time.Now()
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a domain.VehicleAssignment
		if err := tx.Where("assignment_id = ? AND organization_id = ?", assignmentID, orgID).First(&a).Error; err != nil {
			return apperrors.Wrap("vehicle assignment", err)
		}
		res := tx.Model(&domain.VehicleAssignment{}).
			Where("assignment_id = ? AND organization_id = ? AND end_date IS NULL", assignmentID, orgID).
			UpdateColumn("end_date", endDate)
		if res.Error != nil {
			return apperrors.Wrap("vehicle assignment", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: assignment is already closed", apperrors.ErrInvalidStateTransition)
		}
		return nil
	})
}

// ListAssignments returns assignment history for a vehicle, newest first.
func (s *Service) ListAssignments(ctx context.Context, orgID, vehicleID uuid.UUID) ([]domain.VehicleAssignment, error) {
	var out []domain.VehicleAssignment
	if err := tenant.Scoped(ctx, s.DB, orgID).
		Where("vehicle_id = ?", vehicleID).
		Order("start_date DESC").Find(&out).Error; err != nil {
		return nil, apperrors.Wrap("vehicle assignments", err)
	}
	return out, nil
}
