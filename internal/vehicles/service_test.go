package vehicles

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

const testVIN = "1HGCM82633A004352"

func setupVehicleTest(t *testing.T) (*Service, uuid.UUID, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Organization{}, &domain.Team{}, &domain.User{},
		&domain.Vehicle{}, &domain.VehicleAssignment{}, &domain.Penalty{},
		&domain.VehicleDocument{}, &domain.Expense{}, &domain.Maintenance{},
		&domain.Attachment{},
	))
	orgID := uuid.New()
	team := &domain.Team{OrganizationID: orgID, Name: "Crew A"}
	require.NoError(t, db.Create(team).Error)
	return &Service{DB: db}, orgID, team.TeamID
}

func createVehicle(t *testing.T, s *Service, orgID uuid.UUID) *domain.Vehicle {
	v, err := s.Create(context.Background(), orgID, CreateVehicleInput{
		Name:         "Transporter 1",
		LicensePlate: "B-FD 1234",
		VIN:          testVIN,
	})
	require.NoError(t, err)
	return v
}

func TestCreateVehicle_NormalizesAndChecksUniqueness(t *testing.T) {
	s, orgID, _ := setupVehicleTest(t)
	ctx := context.Background()

	v, err := s.Create(ctx, orgID, CreateVehicleInput{
		Name:         "Transporter 1",
		LicensePlate: "b-fd 1234",
		VIN:          "1hgcm82633a004352",
	})
	require.NoError(t, err)
	assert.Equal(t, "B-FD 1234", v.LicensePlate)
	assert.Equal(t, testVIN, v.VIN)
	assert.Equal(t, domain.VehicleStatusActive, v.Status)

	_, err = s.Create(ctx, orgID, CreateVehicleInput{
		Name:         "Transporter 2",
		LicensePlate: "B-FD 1234",
		VIN:          "1HGCM82633A004353",
	})
	assert.True(t, errors.Is(err, apperrors.ErrUniquenessViolation))

	// same plate in a different org is fine
	_, err = s.Create(ctx, uuid.New(), CreateVehicleInput{
		Name:         "Transporter 1",
		LicensePlate: "B-FD 1234",
		VIN:          testVIN,
	})
	assert.NoError(t, err)
}

func TestCreateVehicle_RejectsBadVIN(t *testing.T) {
	s, orgID, _ := setupVehicleTest(t)
	_, err := s.Create(context.Background(), orgID, CreateVehicleInput{
		Name:         "Bad",
		LicensePlate: "B-FD 1",
		VIN:          "TOOSHORT",
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestAssign_SingleOpenAssignment(t *testing.T) {
	s, orgID, teamID := setupVehicleTest(t)
	ctx := context.Background()
	v := createVehicle(t, s, orgID)

	start1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a1, err := s.Assign(ctx, orgID, AssignInput{VehicleID: v.VehicleID, TeamID: teamID, StartDate: start1})
	require.NoError(t, err)
	assert.Nil(t, a1.EndDate)

	otherTeam := &domain.Team{OrganizationID: orgID, Name: "Crew B"}
	require.NoError(t, s.DB.Create(otherTeam).Error)

	start2 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	a2, err := s.Assign(ctx, orgID, AssignInput{VehicleID: v.VehicleID, TeamID: otherTeam.TeamID, StartDate: start2})
	require.NoError(t, err)

	history, err := s.ListAssignments(ctx, orgID, v.VehicleID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	open := 0
	for _, a := range history {
		if a.EndDate == nil {
			open++
			assert.Equal(t, a2.AssignmentID, a.AssignmentID)
		} else {
			// old assignment closed at the new start date
			assert.True(t, a.EndDate.Equal(start2))
		}
	}
	assert.Equal(t, 1, open)
}

func TestEndAssignment_ExactlyOnce(t *testing.T) {
	s, orgID, teamID := setupVehicleTest(t)
	ctx := context.Background()
	v := createVehicle(t, s, orgID)

	a, err := s.Assign(ctx, orgID, AssignInput{VehicleID: v.VehicleID, TeamID: teamID})
	require.NoError(t, err)

	require.NoError(t, s.End(ctx, orgID, a.AssignmentID, time.Now()))
	err = s.End(ctx, orgID, a.AssignmentID, time.Now())
	assert.True(t, errors.Is(err, apperrors.ErrInvalidStateTransition))
}

func TestDeleteVehicle_BlockedByReferences(t *testing.T) {
	s, orgID, teamID := setupVehicleTest(t)
	ctx := context.Background()
	v := createVehicle(t, s, orgID)

	_, err := s.Assign(ctx, orgID, AssignInput{VehicleID: v.VehicleID, TeamID: teamID})
	require.NoError(t, err)

	err = s.Delete(ctx, orgID, v.VehicleID)
	assert.True(t, errors.Is(err, apperrors.ErrHasDependents))

	clean := createCleanVehicle(t, s, orgID)
	assert.NoError(t, s.Delete(ctx, orgID, clean.VehicleID))
}

func createCleanVehicle(t *testing.T, s *Service, orgID uuid.UUID) *domain.Vehicle {
	v, err := s.Create(context.Background(), orgID, CreateVehicleInput{
		Name:         "Spare",
		LicensePlate: "B-SP 99",
		VIN:          "1HGCM82633A004399",
	})
	require.NoError(t, err)
	return v
}

func TestUpdateVehicle_PlateConflict(t *testing.T) {
	s, orgID, _ := setupVehicleTest(t)
	ctx := context.Background()
	v1 := createVehicle(t, s, orgID)
	v2 := createCleanVehicle(t, s, orgID)

	plate := v1.LicensePlate
	_, err := s.Update(ctx, orgID, v2.VehicleID, UpdateVehicleInput{LicensePlate: &plate})
	assert.True(t, errors.Is(err, apperrors.ErrUniquenessViolation))

	status := domain.VehicleStatusRepair
	got, err := s.Update(ctx, orgID, v2.VehicleID, UpdateVehicleInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleStatusRepair, got.Status)
}
