package materials

import (
	"context"
	"errors"
	"testing"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLedgerTest(t *testing.T) (*Service, uuid.UUID, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Organization{}, &domain.Team{}, &domain.Material{},
		&domain.MaterialAssignment{}, &domain.AssignmentEvent{}, &domain.Penalty{},
	))
	orgID := uuid.New()
	require.NoError(t, db.Create(&domain.Organization{OrgID: orgID, Name: "Test Org"}).Error)
	team := &domain.Team{OrganizationID: orgID, Name: "Crew A"}
	require.NoError(t, db.Create(team).Error)
	return &Service{DB: db}, orgID, team.TeamID
}

func createEquipment(t *testing.T, s *Service, orgID uuid.UUID, name string, total int, price float64) *domain.Material {
	m, err := s.CreateMaterial(context.Background(), orgID, CreateMaterialInput{
		Name:          name,
		MaterialType:  domain.MaterialTypeEquipment,
		Unit:          "pcs",
		UnitPrice:     &price,
		TotalQuantity: total,
	})
	require.NoError(t, err)
	return m
}

func TestIssueConsumable_DecrementsStockPermanently(t *testing.T) {
	s, orgID, teamID := setupLedgerTest(t)
	ctx := context.Background()

	m, err := s.CreateMaterial(ctx, orgID, CreateMaterialInput{
		Name:          "Gloves",
		MaterialType:  domain.MaterialTypeConsumable,
		Unit:          "pairs",
		TotalQuantity: 100,
	})
	require.NoError(t, err)

	a, err := s.Issue(ctx, orgID, IssueInput{MaterialID: m.MaterialID, TeamID: teamID, Quantity: 40})
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusConsumed, a.Status)

	got, err := s.GetMaterial(ctx, orgID, m.MaterialID)
	require.NoError(t, err)
	assert.Equal(t, 60, got.TotalQuantity)
	assert.Equal(t, 0, got.AssignedQuantity)

	// consumed rows never enter the return cycle
	err = s.MarkForReturn(ctx, orgID, a.AssignmentID, nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidStateTransition))

	_, err = s.Issue(ctx, orgID, IssueInput{MaterialID: m.MaterialID, TeamID: teamID, Quantity: 61})
	assert.True(t, errors.Is(err, apperrors.ErrInsufficientStock))
}

func TestIssueEquipment_TracksAvailability(t *testing.T) {
	s, orgID, teamID := setupLedgerTest(t)
	ctx := context.Background()

	m := createEquipment(t, s, orgID, "Drill", 5, 100)

	a, err := s.Issue(ctx, orgID, IssueInput{MaterialID: m.MaterialID, TeamID: teamID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusActive, a.Status)

	got, err := s.GetMaterial(ctx, orgID, m.MaterialID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.TotalQuantity)
	assert.Equal(t, 3, got.AssignedQuantity)
	assert.Equal(t, 2, got.Available())

	_, err = s.Issue(ctx, orgID, IssueInput{MaterialID: m.MaterialID, TeamID: teamID, Quantity: 3})
	assert.True(t, errors.Is(err, apperrors.ErrInsufficientAvailability))

	// total untouched by the failed issue
	got, err = s.GetMaterial(ctx, orgID, m.MaterialID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.AssignedQuantity)
}

func TestTwoStepReturn_Returned(t *testing.T) {
	s, orgID, teamID := setupLedgerTest(t)
	ctx := context.Background()

	m := createEquipment(t, s, orgID, "Ladder", 2, 50)
	a, err := s.Issue(ctx, orgID, IssueInput{MaterialID: m.MaterialID, TeamID: teamID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, s.MarkForReturn(ctx, orgID, a.AssignmentID, nil))

	// marking releases nothing yet
	got, err := s.GetMaterial(ctx, orgID, m.MaterialID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AssignedQuantity)

	require.NoError(t, s.ConfirmReturn(ctx, orgID, a.AssignmentID, OutcomeReturned, nil))

	got, err = s.GetMaterial(ctx, orgID, m.MaterialID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AssignedQuantity)

	var penalties int64
	require.NoError(t, s.DB.Model(&domain.Penalty{}).Count(&penalties).Error)
	assert.Zero(t, penalties)

	events, err := s.ListEvents(ctx, orgID, a.AssignmentID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, domain.EventIssued, events[0].EventType)
	assert.Equal(t, domain.EventMarkedForReturn, events[1].EventType)
	assert.Equal(t, domain.EventReturned, events[2].EventType)
}

func TestTwoStepReturn_BrokenChargesTeam(t *testing.T) {
	s, orgID, teamID := setupLedgerTest(t)
	ctx := context.Background()

	m := createEquipment(t, s, orgID, "Drill", 5, 100)
	a, err := s.Issue(ctx, orgID, IssueInput{MaterialID: m.MaterialID, TeamID: teamID, Quantity: 3})
	require.NoError(t, err)

	require.NoError(t, s.MarkForReturn(ctx, orgID, a.AssignmentID, nil))
	require.NoError(t, s.ConfirmReturn(ctx, orgID, a.AssignmentID, OutcomeBroken, nil))

	got, err := s.GetMaterial(ctx, orgID, m.MaterialID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AssignedQuantity)

	var p domain.Penalty
	require.NoError(t, s.DB.First(&p).Error)
	assert.Equal(t, 300.0, p.Amount)
	assert.Equal(t, domain.PenaltyStatusOpen, p.Status)
	assert.Equal(t, domain.PenaltyOriginEquipmentDamage, p.Origin)
	require.NotNil(t, p.TeamID)
	assert.Equal(t, teamID, *p.TeamID)
}

func TestTerminalStatesAreFinal(t *testing.T) {
	s, orgID, teamID := setupLedgerTest(t)
	ctx := context.Background()

	m := createEquipment(t, s, orgID, "Saw", 4, 80)
	a, err := s.Issue(ctx, orgID, IssueInput{MaterialID: m.MaterialID, TeamID: teamID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, s.DirectReturn(ctx, orgID, a.AssignmentID, nil))

	for _, try := range []error{
		s.MarkForReturn(ctx, orgID, a.AssignmentID, nil),
		s.ConfirmReturn(ctx, orgID, a.AssignmentID, OutcomeReturned, nil),
		s.DirectReturn(ctx, orgID, a.AssignmentID, nil),
		s.DirectBreak(ctx, orgID, a.AssignmentID, FaultWorker, nil),
	} {
		assert.True(t, errors.Is(try, apperrors.ErrInvalidStateTransition))
	}

	// counter released exactly once
	got, err := s.GetMaterial(ctx, orgID, m.MaterialID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AssignedQuantity)
}

func TestDirectBreak_FaultDecidesCharge(t *testing.T) {
	s, orgID, teamID := setupLedgerTest(t)
	ctx := context.Background()

	m := createEquipment(t, s, orgID, "Grinder", 4, 120)

	a1, err := s.Issue(ctx, orgID, IssueInput{MaterialID: m.MaterialID, TeamID: teamID, Quantity: 1})
	require.NoError(t, err)
	a2, err := s.Issue(ctx, orgID, IssueInput{MaterialID: m.MaterialID, TeamID: teamID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, s.DirectBreak(ctx, orgID, a1.AssignmentID, FaultTechnical, nil))
	var penalties int64
	require.NoError(t, s.DB.Model(&domain.Penalty{}).Count(&penalties).Error)
	assert.Zero(t, penalties)

	require.NoError(t, s.DirectBreak(ctx, orgID, a2.AssignmentID, FaultWorker, nil))
	var p domain.Penalty
	require.NoError(t, s.DB.First(&p).Error)
	assert.Equal(t, 240.0, p.Amount)
}

func TestBrokenWithoutUnitPrice_NoPenalty(t *testing.T) {
	s, orgID, teamID := setupLedgerTest(t)
	ctx := context.Background()

	m, err := s.CreateMaterial(ctx, orgID, CreateMaterialInput{
		Name:          "Old Cart",
		MaterialType:  domain.MaterialTypeEquipment,
		TotalQuantity: 1,
	})
	require.NoError(t, err)

	a, err := s.Issue(ctx, orgID, IssueInput{MaterialID: m.MaterialID, TeamID: teamID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, s.DirectBreak(ctx, orgID, a.AssignmentID, FaultWorker, nil))

	var penalties int64
	require.NoError(t, s.DB.Model(&domain.Penalty{}).Count(&penalties).Error)
	assert.Zero(t, penalties)
}

func TestUpdateMaterial_TotalBelowAssignedRejected(t *testing.T) {
	s, orgID, teamID := setupLedgerTest(t)
	ctx := context.Background()

	m := createEquipment(t, s, orgID, "Jack", 5, 60)
	_, err := s.Issue(ctx, orgID, IssueInput{MaterialID: m.MaterialID, TeamID: teamID, Quantity: 4})
	require.NoError(t, err)

	three := 3
	_, err = s.UpdateMaterial(ctx, orgID, m.MaterialID, UpdateMaterialInput{TotalQuantity: &three})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	four := 4
	_, err = s.UpdateMaterial(ctx, orgID, m.MaterialID, UpdateMaterialInput{TotalQuantity: &four})
	assert.NoError(t, err)
}

func TestDeleteMaterial_BlockedByAssignments(t *testing.T) {
	s, orgID, teamID := setupLedgerTest(t)
	ctx := context.Background()

	m := createEquipment(t, s, orgID, "Hammer", 2, 10)
	a, err := s.Issue(ctx, orgID, IssueInput{MaterialID: m.MaterialID, TeamID: teamID, Quantity: 1})
	require.NoError(t, err)

	err = s.DeleteMaterial(ctx, orgID, m.MaterialID)
	assert.True(t, errors.Is(err, apperrors.ErrHasDependents))

	// settled assignments still count as history
	require.NoError(t, s.DirectReturn(ctx, orgID, a.AssignmentID, nil))
	err = s.DeleteMaterial(ctx, orgID, m.MaterialID)
	assert.True(t, errors.Is(err, apperrors.ErrHasDependents))
}

func TestTenantScoping_OtherOrgInvisible(t *testing.T) {
	s, orgID, teamID := setupLedgerTest(t)
	ctx := context.Background()

	m := createEquipment(t, s, orgID, "Drill", 5, 100)
	a, err := s.Issue(ctx, orgID, IssueInput{MaterialID: m.MaterialID, TeamID: teamID, Quantity: 1})
	require.NoError(t, err)

	otherOrg := uuid.New()
	_, err = s.GetMaterial(ctx, otherOrg, m.MaterialID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	err = s.MarkForReturn(ctx, otherOrg, a.AssignmentID, nil)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
