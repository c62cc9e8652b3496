package expenses

import (
	"context"
	"fmt"
	"time"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/domain"
	"fleetdesk-backend/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryMaintenance marks expenses owned by a maintenance record. Such
// expenses are read-only through the expense endpoints; the maintenance
// record is the single writer.
const CategoryMaintenance = "maintenance"

// Service manages car expenses and maintenance records.
type Service struct {
	DB *gorm.DB
}

// ExpenseView is an expense with its receipt attachments.
type ExpenseView struct {
	domain.Expense
	Receipts []domain.Attachment `json:"receipts"`
}

// CreateExpenseInput for manual expense rows.
type CreateExpenseInput struct {
	VehicleID   *uuid.UUID `json:"vehicle_id"`
	TeamID      *uuid.UUID `json:"team_id"`
	Category    string     `json:"category"`
	SpentOn     time.Time  `json:"spent_on"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	ReceiptPath string     `json:"receipt_path"`
}

// CreateExpense inserts a manual expense. The maintenance category is
// reserved for maintenance-created rows.
func (s *Service) CreateExpense(ctx context.Context, orgID uuid.UUID, in CreateExpenseInput) (*ExpenseView, error) {
	if in.Category == "" {
		return nil, fmt.Errorf("%w: category is required", apperrors.ErrValidation)
	}
	if in.Category == CategoryMaintenance {
		return nil, fmt.Errorf("%w: category %q is reserved for maintenance records", apperrors.ErrValidation, CategoryMaintenance)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if in.SpentOn.IsZero() {
		return nil, fmt.Errorf("%w: spent_on is required", apperrors.ErrValidation)
	}
	if in.VehicleID == nil && in.TeamID == nil {
		return nil, fmt.Errorf("%w: expense needs a vehicle or a team", apperrors.ErrValidation)
	}

	var out *ExpenseView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.VehicleID != nil {
			var v domain.Vehicle
			if err := tx.Where("vehicle_id = ? AND organization_id = ?", *in.VehicleID, orgID).First(&v).Error; err != nil {
				return apperrors.Wrap("vehicle", err)
			}
		}
		if in.TeamID != nil {
			var t domain.Team
			if err := tx.Where("team_id = ? AND organization_id = ?", *in.TeamID, orgID).First(&t).Error; err != nil {
				return apperrors.Wrap("team", err)
			}
		}
		e := &domain.Expense{
			OrganizationID: orgID,
			VehicleID:      in.VehicleID,
			TeamID:         in.TeamID,
			Category:       in.Category,
			SpentOn:        in.SpentOn,
			Amount:         in.Amount,
			Description:    in.Description,
		}
		if err := tx.Create(e).Error; err != nil {
			return apperrors.Wrap("expense", err)
		}
		view := &ExpenseView{Expense: *e, Receipts: []domain.Attachment{}}
		if in.ReceiptPath != "" {
			att := domain.Attachment{
				OrganizationID: orgID,
				OwnerType:      domain.AttachmentOwnerExpense,
				OwnerID:        e.ExpenseID,
				Position:       0,
				Path:           in.ReceiptPath,
				Category:       "expenses",
			}
			if err := tx.Create(&att).Error; err != nil {
				return apperrors.Wrap("attachment", err)
			}
			view.Receipts = append(view.Receipts, att)
		}
		out = view
		return nil
	})
	return out, err
}

// UpdateExpenseInput for expense edits; nil leaves a field unchanged.
type UpdateExpenseInput struct {
	Category    *string    `json:"category"`
	SpentOn     *time.Time `json:"spent_on"`
	Amount      *float64   `json:"amount"`
	Description *string    `json:"description"`
}

// UpdateExpense edits a manual expense. Maintenance-owned rows reject edits.
func (s *Service) UpdateExpense(ctx context.Context, orgID, expenseID uuid.UUID, in UpdateExpenseInput) (*domain.Expense, error) {
	var out *domain.Expense
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e domain.Expense
		if err := tx.Where("expense_id = ? AND organization_id = ?", expenseID, orgID).First(&e).Error; err != nil {
			return apperrors.Wrap("expense", err)
		}
		if e.MaintenanceID != nil {
			return fmt.Errorf("%w: expense is owned by a maintenance record", apperrors.ErrInvalidStateTransition)
		}
		if in.Category != nil {
			if *in.Category == "" || *in.Category == CategoryMaintenance {
				return fmt.Errorf("%w: invalid category", apperrors.ErrValidation)
			}
			e.Category = *in.Category
		}
		if in.SpentOn != nil {
			if in.SpentOn.IsZero() {
				return fmt.Errorf("%w: spent_on cannot be zero", apperrors.ErrValidation)
			}
			e.SpentOn = *in.SpentOn
		}
		if in.Amount != nil {
			if *in.Amount <= 0 {
				return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
			}
			e.Amount = *in.Amount
		}
		if in.Description != nil {
			e.Description = *in.Description
		}
		if err := tx.Save(&e).Error; err != nil {
			return apperrors.Wrap("expense", err)
		}
		out = &e
		return nil
	})
	return out, err
}

// GetExpense returns one expense with its receipts.
func (s *Service) GetExpense(ctx context.Context, orgID, expenseID uuid.UUID) (*ExpenseView, error) {
	var e domain.Expense
	if err := tenant.Scoped(ctx, s.DB, orgID).Where("expense_id = ?", expenseID).First(&e).Error; err != nil {
		return nil, apperrors.Wrap("expense", err)
	}
	receipts := []domain.Attachment{}
	if err := tenant.Scoped(ctx, s.DB, orgID).
		Where("owner_type = ? AND owner_id = ?", domain.AttachmentOwnerExpense, expenseID).
		Order("position").Find(&receipts).Error; err != nil {
		return nil, apperrors.Wrap("attachments", err)
	}
	return &ExpenseView{Expense: e, Receipts: receipts}, nil
}

// ExpenseFilter narrows ListExpenses.
type ExpenseFilter struct {
	VehicleID *uuid.UUID
	TeamID    *uuid.UUID
	Category  string
	From      *time.Time
	To        *time.Time
}

// ListExpenses returns expenses, newest first.
func (s *Service) ListExpenses(ctx context.Context, orgID uuid.UUID, f ExpenseFilter) ([]domain.Expense, error) {
	q := tenant.Scoped(ctx, s.DB, orgID)
	if f.VehicleID != nil {
		q = q.Where("vehicle_id = ?", *f.VehicleID)
	}
	if f.TeamID != nil {
		q = q.Where("team_id = ?", *f.TeamID)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.From != nil {
		q = q.Where("spent_on >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("spent_on <= ?", *f.To)
	}
	var out []domain.Expense
	if err := q.Order("spent_on DESC").Find(&out).Error; err != nil {
		return nil, apperrors.Wrap("expenses", err)
	}
	return out, nil
}

// DeleteExpense removes a manual expense and its receipts. Maintenance-owned
// rows reject deletion; delete the maintenance record instead.
func (s *Service) DeleteExpense(ctx context.Context, orgID, expenseID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e domain.Expense
		if err := tx.Where("expense_id = ? AND organization_id = ?", expenseID, orgID).First(&e).Error; err != nil {
			return apperrors.Wrap("expense", err)
		}
		if e.MaintenanceID != nil {
			return fmt.Errorf("%w: expense is owned by a maintenance record", apperrors.ErrInvalidStateTransition)
		}
		if err := tx.Where("owner_type = ? AND owner_id = ?", domain.AttachmentOwnerExpense, expenseID).
			Delete(&domain.Attachment{}).Error; err != nil {
			return apperrors.Wrap("attachments", err)
		}
		return apperrors.Wrap("expense", tx.Delete(&e).Error)
	})
}

// MaintenanceView is a maintenance record with its linked expense.
type MaintenanceView struct {
	domain.Maintenance
	Expense *domain.Expense `json:"expense"`
}

// CreateMaintenanceInput for maintenance records.
type CreateMaintenanceInput struct {
	VehicleID       uuid.UUID `json:"vehicle_id"`
	PerformedOn     time.Time `json:"performed_on"`
	MaintenanceType string    `json:"maintenance_type"`
	Description     string    `json:"description"`
	Cost            float64   `json:"cost"`
}

// CreateMaintenance inserts the maintenance record and its linked expense in
// one transaction.
func (s *Service) CreateMaintenance(ctx context.Context, orgID uuid.UUID, in CreateMaintenanceInput) (*MaintenanceView, error) {
	if in.MaintenanceType != domain.MaintenanceTypeInspection && in.MaintenanceType != domain.MaintenanceTypeRepair {
		return nil, fmt.Errorf("%w: unknown maintenance type %q", apperrors.ErrValidation, in.MaintenanceType)
	}
	if in.PerformedOn.IsZero() {
		return nil, fmt.Errorf("%w: performed_on is required", apperrors.ErrValidation)
	}
	if in.Cost < 0 {
		return nil, fmt.Errorf("%w: cost cannot be negative", apperrors.ErrValidation)
	}

	var out *MaintenanceView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v domain.Vehicle
		if err := tx.Where("vehicle_id = ? AND organization_id = ?", in.VehicleID, orgID).First(&v).Error; err != nil {
			return apperrors.Wrap("vehicle", err)
		}
		m := &domain.Maintenance{
			OrganizationID:  orgID,
			VehicleID:       in.VehicleID,
			PerformedOn:     in.PerformedOn,
			MaintenanceType: in.MaintenanceType,
			Description:     in.Description,
			Cost:            in.Cost,
		}
		if err := tx.Create(m).Error; err != nil {
			return apperrors.Wrap("maintenance", err)
		}
		e := &domain.Expense{
			OrganizationID: orgID,
			VehicleID:      &m.VehicleID,
			Category:       CategoryMaintenance,
			SpentOn:        m.PerformedOn,
			Amount:         m.Cost,
			Description:    m.Description,
			MaintenanceID:  &m.MaintenanceID,
		}
		if err := tx.Create(e).Error; err != nil {
			return apperrors.Wrap("expense", err)
		}
		out = &MaintenanceView{Maintenance: *m, Expense: e}
		return nil
	})
	return out, err
}

// ListMaintenance returns maintenance records for a vehicle, newest first.
func (s *Service) ListMaintenance(ctx context.Context, orgID, vehicleID uuid.UUID) ([]domain.Maintenance, error) {
	var out []domain.Maintenance
	if err := tenant.Scoped(ctx, s.DB, orgID).
		Where("vehicle_id = ?", vehicleID).
		Order("performed_on DESC").Find(&out).Error; err != nil {
		return nil, apperrors.Wrap("maintenance records", err)
	}
	return out, nil
}

// DeleteMaintenance removes the record and its linked expense together.
func (s *Service) DeleteMaintenance(ctx context.Context, orgID, maintenanceID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m domain.Maintenance
		if err := tx.Where("maintenance_id = ? AND organization_id = ?", maintenanceID, orgID).First(&m).Error; err != nil {
			return apperrors.Wrap("maintenance", err)
		}
		if err := tx.Where("maintenance_id = ? AND organization_id = ?", maintenanceID, orgID).
			Delete(&domain.Expense{}).Error; err != nil {
			return apperrors.Wrap("expense", err)
		}
		return apperrors.Wrap("maintenance", tx.Delete(&m).Error)
	})
}
