package teams

import (
	"context"
	"fmt"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/domain"
	"fleetdesk-backend/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the team registry.
type Service struct {
	DB *gorm.DB
}

// CreateInput for team creation.
type CreateInput struct {
	Name       string     `json:"name"`
	LeadUserID *uuid.UUID `json:"lead_user_id"`
}

// Create inserts a team. The lead, when given, must be a user of the same
// organization.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, in CreateInput) (*domain.Team, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	var out *domain.Team
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.LeadUserID != nil {
			var lead domain.User
			if err := tx.Where("user_id = ? AND organization_id = ?", *in.LeadUserID, orgID).First(&lead).Error; err != nil {
				return apperrors.Wrap("lead user", err)
			}
		}
		t := &domain.Team{
			OrganizationID: orgID,
			Name:           in.Name,
			LeadUserID:     in.LeadUserID,
		}
		if err := tx.Create(t).Error; err != nil {
			return apperrors.Wrap("team", err)
		}
		out = t
		return nil
	})
	return out, err
}

// UpdateInput for team edits. SetLead distinguishes "clear the lead" from
// "leave it unchanged".
type UpdateInput struct {
	Name       *string    `json:"name"`
	LeadUserID *uuid.UUID `json:"lead_user_id"`
	SetLead    bool       `json:"-"`
}

// Update edits a team.
func (s *Service) Update(ctx context.Context, orgID, teamID uuid.UUID, in UpdateInput) (*domain.Team, error) {
	var out *domain.Team
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t domain.Team
		if err := tx.Where("team_id = ? AND organization_id = ?", teamID, orgID).First(&t).Error; err != nil {
			return apperrors.Wrap("team", err)
		}
		if in.Name != nil {
			if *in.Name == "" {
				return fmt.Errorf("%w: name must not be empty", apperrors.ErrValidation)
			}
			t.Name = *in.Name
		}
		if in.SetLead {
			if in.LeadUserID != nil {
				var lead domain.User
				if err := tx.Where("user_id = ? AND organization_id = ?", *in.LeadUserID, orgID).First(&lead).Error; err != nil {
					return apperrors.Wrap("lead user", err)
				}
			}
			t.LeadUserID = in.LeadUserID
		}
		if err := tx.Save(&t).Error; err != nil {
			return apperrors.Wrap("team", err)
		}
		out = &t
		return nil
	})
	return out, err
}

// Get returns one team.
func (s *Service) Get(ctx context.Context, orgID, teamID uuid.UUID) (*domain.Team, error) {
	var t domain.Team
	if err := tenant.Scoped(ctx, s.DB, orgID).Where("team_id = ?", teamID).First(&t).Error; err != nil {
		return nil, apperrors.Wrap("team", err)
	}
	return &t, nil
}

// List returns all teams for the organization.
func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]domain.Team, error) {
	var out []domain.Team
	if err := tenant.Scoped(ctx, s.DB, orgID).Order("name").Find(&out).Error; err != nil {
		return nil, apperrors.Wrap("teams", err)
	}
	return out, nil
}

// Delete hard-deletes a team. Rejected while the team has members or an
// active vehicle assignment.
func (s *Service) Delete(ctx context.Context, orgID, teamID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t domain.Team
		if err := tx.Where("team_id = ? AND organization_id = ?", teamID, orgID).First(&t).Error; err != nil {
			return apperrors.Wrap("team", err)
		}
		var members int64
		if err := tx.Model(&domain.User{}).Where("team_id = ? AND organization_id = ?", teamID, orgID).Count(&members).Error; err != nil {
			return apperrors.Wrap("team members", err)
		}
		if members > 0 {
			return fmt.Errorf("%w: team has %d member(s)", apperrors.ErrHasDependents, members)
		}
		var open int64
		if err := tx.Model(&domain.VehicleAssignment{}).
			Where("team_id = ? AND organization_id = ? AND end_date IS NULL", teamID, orgID).
			Count(&open).Error; err != nil {
			return apperrors.Wrap("vehicle assignments", err)
		}
		if open > 0 {
			return fmt.Errorf("%w: team has %d active vehicle assignment(s)", apperrors.ErrHasDependents, open)
		}
		return apperrors.Wrap("team", tx.Delete(&t).Error)
	})
}
