package users

import (
	"context"
	"errors"
	"testing"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/constants"
	"fleetdesk-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*Service, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Organization{}, &domain.User{}, &domain.Team{},
	))
	return &Service{DB: db}, uuid.New()
}

func TestCreateUser_HashesPassword(t *testing.T) {
	s, orgID := setupUserTest(t)

	u, err := s.Create(context.Background(), orgID, CreateInput{
		FirstName: "Mara",
		LastName:  "Klein",
		Email:     "Mara.Klein@Fleetdesk.IO",
		Password:  "sup3r-Secret!",
	})
	require.NoError(t, err)
	assert.Equal(t, "mara.klein@fleetdesk.io", u.Email)
	assert.Equal(t, constants.Worker, u.Role)
	assert.NotEqual(t, "sup3r-Secret!", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("sup3r-Secret!")))
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s, orgID := setupUserTest(t)
	ctx := context.Background()

	in := CreateInput{
		FirstName: "Mara", LastName: "Klein",
		Email: "mara@fleetdesk.io", Password: "sup3r-Secret!",
	}
	_, err := s.Create(ctx, orgID, in)
	require.NoError(t, err)

	// duplicate email is rejected even across organizations
	_, err = s.Create(ctx, uuid.New(), in)
	assert.True(t, errors.Is(err, apperrors.ErrUniquenessViolation))
}

func TestCreateUser_Validation(t *testing.T) {
	s, orgID := setupUserTest(t)
	ctx := context.Background()

	_, err := s.Create(ctx, orgID, CreateInput{
		FirstName: "Mara", LastName: "Klein",
		Email: "not-an-email", Password: "sup3r-Secret!",
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = s.Create(ctx, orgID, CreateInput{
		FirstName: "Mara", LastName: "Klein",
		Email: "mara@fleetdesk.io", Password: "short",
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = s.Create(ctx, orgID, CreateInput{
		FirstName: "Mara", LastName: "Klein",
		Email: "mara@fleetdesk.io", Password: "sup3r-Secret!", Role: "emperor",
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestCreateUser_TeamMustExist(t *testing.T) {
	s, orgID := setupUserTest(t)
	ctx := context.Background()

	ghost := uuid.New()
	_, err := s.Create(ctx, orgID, CreateInput{
		FirstName: "Mara", LastName: "Klein",
		Email: "mara@fleetdesk.io", Password: "sup3r-Secret!", TeamID: &ghost,
	})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestUpdateUser_RemoveFromTeam(t *testing.T) {
	s, orgID := setupUserTest(t)
	ctx := context.Background()

	team := &domain.Team{OrganizationID: orgID, Name: "Crew A"}
	require.NoError(t, s.DB.Create(team).Error)

	u, err := s.Create(ctx, orgID, CreateInput{
		FirstName: "Mara", LastName: "Klein",
		Email: "mara@fleetdesk.io", Password: "sup3r-Secret!", TeamID: &team.TeamID,
	})
	require.NoError(t, err)

	// no SetTeam: membership unchanged
	role := constants.TeamLead
	got, err := s.Update(ctx, orgID, u.UserID, UpdateInput{Role: &role})
	require.NoError(t, err)
	assert.NotNil(t, got.TeamID)

	got, err = s.Update(ctx, orgID, u.UserID, UpdateInput{SetTeam: true})
	require.NoError(t, err)
	assert.Nil(t, got.TeamID)
}

func TestDeleteUser_BlockedWhileLeadingTeam(t *testing.T) {
	s, orgID := setupUserTest(t)
	ctx := context.Background()

	u, err := s.Create(ctx, orgID, CreateInput{
		FirstName: "Mara", LastName: "Klein",
		Email: "mara@fleetdesk.io", Password: "sup3r-Secret!",
	})
	require.NoError(t, err)

	team := &domain.Team{OrganizationID: orgID, Name: "Crew A", LeadUserID: &u.UserID}
	require.NoError(t, s.DB.Create(team).Error)

	err = s.Delete(ctx, orgID, u.UserID)
	assert.True(t, errors.Is(err, apperrors.ErrHasDependents))

	require.NoError(t, s.DB.Model(team).Update("lead_user_id", nil).Error)
	assert.NoError(t, s.Delete(ctx, orgID, u.UserID))
}
