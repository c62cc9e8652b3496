package reports

import (
	"context"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/domain"
	"fleetdesk-backend/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service produces read-only aggregations over expenses and penalties.
type Service struct {
	DB *gorm.DB
}

func (s *Service) monthExpr(column string) string {
	if s.DB.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m', " + column + ")"
	}
	return "to_char(" + column + ", 'YYYY-MM')"
}

// ExpenseRow is one aggregated expense bucket.
type ExpenseRow struct {
	VehicleID *uuid.UUID `json:"vehicle_id"`
	TeamID    *uuid.UUID `json:"team_id"`
	Category  string     `json:"category"`
	Month     string     `json:"month"`
	Count     int64      `json:"count"`
	Total     float64    `json:"total"`
}

// ExpensesByVehicle groups expenses by vehicle, category and month.
func (s *Service) ExpensesByVehicle(ctx context.Context, orgID uuid.UUID) ([]ExpenseRow, error) {
	var rows []ExpenseRow
	err := tenant.ScopedModel(ctx, s.DB, orgID, &domain.Expense{}).
		Select("vehicle_id, category, " + s.monthExpr("spent_on") + " AS month, COUNT(*) AS count, SUM(amount) AS total").
		Where("vehicle_id IS NOT NULL").
		Group("vehicle_id, category, month").
		Order("month DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap("expense report", err)
	}
	return rows, nil
}

// ExpensesByTeam groups expenses by team, category and month.
func (s *Service) ExpensesByTeam(ctx context.Context, orgID uuid.UUID) ([]ExpenseRow, error) {
	var rows []ExpenseRow
	err := tenant.ScopedModel(ctx, s.DB, orgID, &domain.Expense{}).
		Select("team_id, category, " + s.monthExpr("spent_on") + " AS month, COUNT(*) AS count, SUM(amount) AS total").
		Where("team_id IS NOT NULL").
		Group("team_id, category, month").
		Order("month DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap("expense report", err)
	}
	return rows, nil
}

// ExpensesByCategory groups expenses by category and month across the
// organization.
func (s *Service) ExpensesByCategory(ctx context.Context, orgID uuid.UUID) ([]ExpenseRow, error) {
	var rows []ExpenseRow
	err := tenant.ScopedModel(ctx, s.DB, orgID, &domain.Expense{}).
		Select("category, " + s.monthExpr("spent_on") + " AS month, COUNT(*) AS count, SUM(amount) AS total").
		Group("category, month").
		Order("month DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap("expense report", err)
	}
	return rows, nil
}

// MaterialRow is one aggregated damage-charge bucket per team.
type MaterialRow struct {
	TeamID *uuid.UUID `json:"team_id"`
	Month  string     `json:"month"`
	Count  int64      `json:"count"`
	Total  float64    `json:"total"`
}

// DamageChargesByTeam groups equipment-damage penalties by team and month.
func (s *Service) DamageChargesByTeam(ctx context.Context, orgID uuid.UUID) ([]MaterialRow, error) {
	var rows []MaterialRow
	err := tenant.ScopedModel(ctx, s.DB, orgID, &domain.Penalty{}).
		Select("team_id, " + s.monthExpr("occurred_on") + " AS month, COUNT(*) AS count, SUM(amount) AS total").
		Where("origin = ?", domain.PenaltyOriginEquipmentDamage).
		Group("team_id, month").
		Order("month DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap("damage report", err)
	}
	return rows, nil
}
