package users

import (
	"context"
	"fmt"
	"strings"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/constants"
	"fleetdesk-backend/internal/domain"
	"fleetdesk-backend/internal/pkg/validation"
	"fleetdesk-backend/internal/tenant"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service is the user registry.
type Service struct {
	DB *gorm.DB
}

// CreateInput for user creation.
type CreateInput struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Role      string     `json:"role"`
	TeamID    *uuid.UUID `json:"team_id"`
	Phone     *string    `json:"phone"`
}

// Create inserts a user with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, in CreateInput) (*domain.User, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if !validation.IsValidName(first) || !validation.IsValidName(last) {
		return nil, fmt.Errorf("%w: first and last name are required (letters, spaces, hyphens, apostrophes)", apperrors.ErrValidation)
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if !validation.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email format", apperrors.ErrValidation)
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, fmt.Errorf("%w: invalid password format", apperrors.ErrValidation)
	}
	role := in.Role
	if role == "" {
		role = constants.Worker
	}
	if !constants.IsValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
	}

	var out *domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dup domain.User
		if err := tx.Where("email = ?", email).First(&dup).Error; err == nil {
			return fmt.Errorf("%w: email already registered", apperrors.ErrUniquenessViolation)
		}
		if in.TeamID != nil {
			var team domain.Team
			if err := tx.Where("team_id = ? AND organization_id = ?", *in.TeamID, orgID).First(&team).Error; err != nil {
				return apperrors.Wrap("team", err)
			}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
		if err != nil {
			return err
		}
		u := &domain.User{
			OrganizationID: orgID,
			FirstName:      first,
			LastName:       last,
			Email:          email,
			PasswordHash:   string(hash),
			Role:           role,
			TeamID:         in.TeamID,
			Phone:          in.Phone,
		}
		if err := tx.Create(u).Error; err != nil {
			return apperrors.Wrap("user", err)
		}
		out = u
		return nil
	})
	return out, err
}

// UpdateInput for user edits. SetTeam distinguishes "remove from team" from
// "leave unchanged".
type UpdateInput struct {
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	Password  *string    `json:"password"`
	Role      *string    `json:"role"`
	TeamID    *uuid.UUID `json:"team_id"`
	SetTeam   bool       `json:"-"`
	Phone     *string    `json:"phone"`
}

// Update edits a user.
func (s *Service) Update(ctx context.Context, orgID, userID uuid.UUID, in UpdateInput) (*domain.User, error) {
	var out *domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.Where("user_id = ? AND organization_id = ?", userID, orgID).First(&u).Error; err != nil {
			return apperrors.Wrap("user", err)
		}
		if in.FirstName != nil {
			first := strings.TrimSpace(*in.FirstName)
			if !validation.IsValidName(first) {
				return fmt.Errorf("%w: invalid first name", apperrors.ErrValidation)
			}
			u.FirstName = first
		}
		if in.LastName != nil {
			last := strings.TrimSpace(*in.LastName)
			if !validation.IsValidName(last) {
				return fmt.Errorf("%w: invalid last name", apperrors.ErrValidation)
			}
			u.LastName = last
		}
		if in.Password != nil {
			if !validation.IsValidPassword(*in.Password) {
				return fmt.Errorf("%w: invalid password format", apperrors.ErrValidation)
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), 10)
			if err != nil {
				return err
			}
			u.PasswordHash = string(hash)
		}
		if in.Role != nil {
			if !constants.IsValidRole(*in.Role) {
				return fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, *in.Role)
			}
			u.Role = *in.Role
		}
		if in.SetTeam {
			if in.TeamID != nil {
				var team domain.Team
				if err := tx.Where("team_id = ? AND organization_id = ?", *in.TeamID, orgID).First(&team).Error; err != nil {
					return apperrors.Wrap("team", err)
				}
			}
			u.TeamID = in.TeamID
		}
		if in.Phone != nil {
			u.Phone = in.Phone
		}
		if err := tx.Save(&u).Error; err != nil {
			return apperrors.Wrap("user", err)
		}
		out = &u
		return nil
	})
	return out, err
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, orgID, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := tenant.Scoped(ctx, s.DB, orgID).Where("user_id = ?", userID).First(&u).Error; err != nil {
		return nil, apperrors.Wrap("user", err)
	}
	return &u, nil
}

// List returns all users, optionally filtered by team.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, teamID *uuid.UUID) ([]domain.User, error) {
	q := tenant.Scoped(ctx, s.DB, orgID)
	if teamID != nil {
		q = q.Where("team_id = ?", *teamID)
	}
	var out []domain.User
	if err := q.Order("last_name, first_name").Find(&out).Error; err != nil {
		return nil, apperrors.Wrap("users", err)
	}
	return out, nil
}

// Delete hard-deletes a user. Rejected while the user leads a team;
// leadership must be reassigned first.
func (s *Service) Delete(ctx context.Context, orgID, userID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.Where("user_id = ? AND organization_id = ?", userID, orgID).First(&u).Error; err != nil {
			return apperrors.Wrap("user", err)
		}
		var leads int64
		if err := tx.Model(&domain.Team{}).Where("lead_user_id = ? AND organization_id = ?", userID, orgID).Count(&leads).Error; err != nil {
			return apperrors.Wrap("teams", err)
		}
		if leads > 0 {
			return fmt.Errorf("%w: user leads %d team(s); reassign leadership first", apperrors.ErrHasDependents, leads)
		}
		return apperrors.Wrap("user", tx.Delete(&u).Error)
	})
}
