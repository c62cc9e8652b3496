package penalties

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

// Service is the penalty ledger. Manual (traffic) penalties are created
// here; damage penalties are synthesized by the materials service. Payment
// is open -> paid exactly once and requires a receipt.
type Service struct {
	DB *gorm.DB
}

// CreateInput for a manually entered penalty.
type CreateInput struct {
	VehicleID   *uuid.UUID `json:"vehicle_id"`
	TeamID      *uuid.UUID `json:"team_id"`
	UserID      *uuid.UUID `json:"user_id"`
	OccurredOn  time.Time  `json:"occurred_on"`
	Amount      float64    `json:"amount"`
	Origin      string     `json:"origin"`
	Description string     `json:"description"`
}

// Create inserts an open penalty. Origin defaults to manual; damage origins
// are accepted so back-dated damage charges can be recorded by hand.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, in CreateInput) (*domain.Penalty, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if in.VehicleID == nil && in.TeamID == nil && in.UserID == nil {
		return nil, fmt.Errorf("%w: penalty needs a vehicle, team or user", apperrors.ErrValidation)
	}
	origin := in.Origin
	if origin == "" {
		origin = domain.PenaltyOriginManual
	}
	switch origin {
	case domain.PenaltyOriginManual, domain.PenaltyOriginEquipmentDamage, domain.PenaltyOriginMaterialDamage:
	default:
		return nil, fmt.Errorf("%w: unknown origin %q", apperrors.ErrValidation, origin)
	}
	if in.OccurredOn.IsZero() {
		in.OccurredOn = time.Now()
	}

	p := &domain.Penalty{
		OrganizationID: orgID,
		VehicleID:      in.VehicleID,
		TeamID:         in.TeamID,
		UserID:         in.UserID,
		OccurredOn:     in.OccurredOn,
		Amount:         in.Amount,
		Status:         domain.PenaltyStatusOpen,
		Origin:         origin,
		Description:    in.Description,
	}
	if err := s.DB.WithContext(ctx).Create(p).Error; err != nil {
		return nil, apperrors.Wrap("penalty", err)
	}
	return p, nil
}

// MarkPaid transitions a penalty open -> paid. The receipt path is required
// and appended as an attachment (receipts are additive). A second attempt on
// an already-paid penalty fails instead of recording a duplicate payment.
func (s *Service) MarkPaid(ctx context.Context, orgID, penaltyID uuid.UUID, receiptPath, notes string) (*domain.Penalty, error) {
	if receiptPath == "" {
		return nil, fmt.Errorf("%w: a receipt must be attached to pay a penalty", apperrors.ErrReceiptRequired)
	}

	var out *domain.Penalty
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Penalty
		if err := tx.Where("penalty_id = ? AND organization_id = ?", penaltyID, orgID).First(&p).Error; err != nil {
			return apperrors.Wrap("penalty", err)
		}

		now := time.Now()
		res := tx.Model(&domain.Penalty{}).
			Where("penalty_id = ? AND organization_id = ? AND status = ?", penaltyID, orgID, domain.PenaltyStatusOpen).
			Updates(map[string]interface{}{"status": domain.PenaltyStatusPaid, "paid_at": now})
		if res.Error != nil {
			return apperrors.Wrap("penalty", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: penalty is already paid", apperrors.ErrInvalidStateTransition)
		}

		var position int64
		if err := tx.Model(&domain.Attachment{}).
			Where("owner_type = ? AND owner_id = ?", domain.AttachmentOwnerPenalty, penaltyID).
			Count(&position).Error; err != nil {
			return apperrors.Wrap("attachments", err)
		}
		att := &domain.Attachment{
			OrganizationID: orgID,
			OwnerType:      domain.AttachmentOwnerPenalty,
			OwnerID:        penaltyID,
			Position:       int(position),
			Path:           receiptPath,
			Category:       "penalties",
		}
		if err := tx.Create(att).Error; err != nil {
			return apperrors.Wrap("attachment", err)
		}

		if notes != "" {
			joined := notes
			if p.PaymentNotes != "" {
				joined = p.PaymentNotes + "; " + notes
			}
			if err := tx.Model(&domain.Penalty{}).
				Where("penalty_id = ?", penaltyID).
				UpdateColumn("payment_notes", joined).Error; err != nil {
				return apperrors.Wrap("penalty", err)
			}
		}

		if err := tx.Where("penalty_id = ?", penaltyID).First(&p).Error; err != nil {
			return apperrors.Wrap("penalty", err)
		}
		out = &p
		return nil
	})
	return out, err
}

// AttachReceipt appends an additional receipt to a penalty (receipts
// accumulate; paying is not required first).
func (s *Service) AttachReceipt(ctx context.Context, orgID, penaltyID uuid.UUID, receiptPath string) error {
	if receiptPath == "" {
		return fmt.Errorf("%w: receipt path is required", apperrors.ErrValidation)
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Penalty
		if err := tx.Where("penalty_id = ? AND organization_id = ?", penaltyID, orgID).First(&p).Error; err != nil {
			return apperrors.Wrap("penalty", err)
		}
		var position int64
		if err := tx.Model(&domain.Attachment{}).
			Where("owner_type = ? AND owner_id = ?", domain.AttachmentOwnerPenalty, penaltyID).
			Count(&position).Error; err != nil {
			return apperrors.Wrap("attachments", err)
		}
		att := &domain.Attachment{
			OrganizationID: orgID,
			OwnerType:      domain.AttachmentOwnerPenalty,
			OwnerID:        penaltyID,
			Position:       int(position),
			Path:           receiptPath,
			Category:       "penalties",
		}
		return apperrors.Wrap("attachment", tx.Create(att).Error)
	})
}

// Delete hard-deletes a penalty and its receipt attachments.
func (s *Service) Delete(ctx context.Context, orgID, penaltyID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Penalty
		if err := tx.Where("penalty_id = ? AND organization_id = ?", penaltyID, orgID).First(&p).Error; err != nil {
			return apperrors.Wrap("penalty", err)
		}
		if err := tx.Where("owner_type = ? AND owner_id = ?", domain.AttachmentOwnerPenalty, penaltyID).
			Delete(&domain.Attachment{}).Error; err != nil {
			return apperrors.Wrap("attachments", err)
		}
		return apperrors.Wrap("penalty", tx.Delete(&p).Error)
	})
}

// Get returns a penalty with its receipts.
func (s *Service) Get(ctx context.Context, orgID, penaltyID uuid.UUID) (*domain.Penalty, []domain.Attachment, error) {
	var p domain.Penalty
	if err := tenant.Scoped(ctx, s.DB, orgID).Where("penalty_id = ?", penaltyID).First(&p).Error; err != nil {
		return nil, nil, apperrors.Wrap("penalty", err)
	}
	var receipts []domain.Attachment
	if err := tenant.Scoped(ctx, s.DB, orgID).
		Where("owner_type = ? AND owner_id = ?", domain.AttachmentOwnerPenalty, penaltyID).
		Order("position").Find(&receipts).Error; err != nil {
		return nil, nil, apperrors.Wrap("attachments", err)
	}
	return &p, receipts, nil
}

// List returns penalties, optionally filtered by status and origin.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, status, origin string) ([]domain.Penalty, error) {
	q := tenant.Scoped(ctx, s.DB, orgID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if origin != "" {
		q = q.Where("origin = ?", origin)
	}
	var out []domain.Penalty
	if err := q.Order("occurred_on DESC").Find(&out).Error; err != nil {
		return nil, apperrors.Wrap("penalties", err)
	}
	return out, nil
}

// SummaryRow is one aggregation bucket.
type SummaryRow struct {
	TeamID *uuid.UUID `json:"team_id"`
	Month  string     `json:"month"`
	Origin string     `json:"origin"`
	Count  int64      `json:"count"`
	Total  float64    `json:"total"`
}

// Summary groups penalties by team, month and origin. Pure reporting; the
// origin column separates traffic fines from damage charges.
func (s *Service) Summary(ctx context.Context, orgID uuid.UUID) ([]SummaryRow, error) {
	monthExpr := "to_char(occurred_on, 'YYYY-MM')"
	if s.DB.Dialector.Name() == "sqlite" {
		monthExpr = "strftime('%Y-%m', occurred_on)"
	}
	var rows []SummaryRow
	err := tenant.ScopedModel(ctx, s.DB, orgID, &domain.Penalty{}).
		Select("team_id, " + monthExpr + " AS month, origin, COUNT(*) AS count, SUM(amount) AS total").
		Group("team_id, month, origin").
		Order("month DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap("penalty summary", err)
	}
	return rows, nil
}
