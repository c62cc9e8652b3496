package teams

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTeamTest(t *testing.T) (*Service, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Organization{}, &domain.Team{}, &domain.User{},
		&domain.VehicleAssignment{},
	))
	return &Service{DB: db}, uuid.New()
}

func seedUser(t *testing.T, db *gorm.DB, orgID uuid.UUID, teamID *uuid.UUID) *domain.User {
	u := &domain.User{
		OrganizationID: orgID,
		FirstName:      "Jo",
		LastName:       "Fischer",
		Email:          uuid.New().String() + "@fleetdesk.io",
		PasswordHash:   "x",
		Role:           "worker",
		TeamID:         teamID,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestCreateTeam_LeadMustExistInOrg(t *testing.T) {
	s, orgID := setupTeamTest(t)
	ctx := context.Background()

	ghost := uuid.New()
	_, err := s.Create(ctx, orgID, CreateInput{Name: "Crew A", LeadUserID: &ghost})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	lead := seedUser(t, s.DB, orgID, nil)
	team, err := s.Create(ctx, orgID, CreateInput{Name: "Crew A", LeadUserID: &lead.UserID})
	require.NoError(t, err)
	require.NotNil(t, team.LeadUserID)
	assert.Equal(t, lead.UserID, *team.LeadUserID)
}

func TestUpdateTeam_ClearLead(t *testing.T) {
	s, orgID := setupTeamTest(t)
	ctx := context.Background()

	lead := seedUser(t, s.DB, orgID, nil)
	team, err := s.Create(ctx, orgID, CreateInput{Name: "Crew A", LeadUserID: &lead.UserID})
	require.NoError(t, err)

	// no SetLead: lead unchanged
	name := "Crew Alpha"
	got, err := s.Update(ctx, orgID, team.TeamID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.NotNil(t, got.LeadUserID)

	// SetLead with nil clears
	got, err = s.Update(ctx, orgID, team.TeamID, UpdateInput{SetLead: true})
	require.NoError(t, err)
	assert.Nil(t, got.LeadUserID)
}

func TestDeleteTeam_BlockedByMembers(t *testing.T) {
	s, orgID := setupTeamTest(t)
	ctx := context.Background()

	team, err := s.Create(ctx, orgID, CreateInput{Name: "Crew A"})
	require.NoError(t, err)
	member := seedUser(t, s.DB, orgID, &team.TeamID)

	err = s.Delete(ctx, orgID, team.TeamID)
	assert.True(t, errors.Is(err, apperrors.ErrHasDependents))

	require.NoError(t, s.DB.Model(member).Update("team_id", nil).Error)
	assert.NoError(t, s.Delete(ctx, orgID, team.TeamID))
}

func TestDeleteTeam_BlockedByOpenVehicleAssignment(t *testing.T) {
	s, orgID := setupTeamTest(t)
	ctx := context.Background()

	team, err := s.Create(ctx, orgID, CreateInput{Name: "Crew A"})
	require.NoError(t, err)

	a := &domain.VehicleAssignment{
		OrganizationID: orgID,
		VehicleID:      uuid.New(),
		TeamID:         team.TeamID,
		StartDate:      time.Now(),
	}
	require.NoError(t, s.DB.Create(a).Error)

	err = s.Delete(ctx, orgID, team.TeamID)
	assert.True(t, errors.Is(err, apperrors.ErrHasDependents))

	// closed assignments do not block
	end := time.Now()
	require.NoError(t, s.DB.Model(a).Update("end_date", &end).Error)
	assert.NoError(t, s.Delete(ctx, orgID, team.TeamID))
}
