package reports

import (
	"context"
	"testing"
	"time"

	"fleetdesk-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupReportTest(t *testing.T) (*Service, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Expense{}, &domain.Penalty{}))
	return &Service{DB: db}, uuid.New()
}

func seedExpense(t *testing.T, db *gorm.DB, orgID uuid.UUID, vehicleID, teamID *uuid.UUID, category string, spentOn time.Time, amount float64) {
	t.Helper()
	require.NoError(t, db.Create(&domain.Expense{
		OrganizationID: orgID,
		VehicleID:      vehicleID,
		TeamID:         teamID,
		Category:       category,
		SpentOn:        spentOn,
		Amount:         amount,
	}).Error)
}

func TestExpensesByVehicle_GroupsByMonth(t *testing.T) {
	s, orgID := setupReportTest(t)
	vID := uuid.New()

	march := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	seedExpense(t, s.DB, orgID, &vID, nil, "fuel", march, 80)
	seedExpense(t, s.DB, orgID, &vID, nil, "fuel", march.AddDate(0, 0, 10), 70)
	seedExpense(t, s.DB, orgID, &vID, nil, "fuel", march.AddDate(0, 1, 0), 90)
	// team-only expense is excluded from the per-vehicle report
	tID := uuid.New()
	seedExpense(t, s.DB, orgID, nil, &tID, "tolls", march, 25)

	rows, err := s.ExpensesByVehicle(context.Background(), orgID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-04", rows[0].Month)
	assert.InDelta(t, 90, rows[0].Total, 0.001)
	assert.Equal(t, "2026-03", rows[1].Month)
	assert.EqualValues(t, 2, rows[1].Count)
	assert.InDelta(t, 150, rows[1].Total, 0.001)
}

func TestExpensesByCategory_TenantScoped(t *testing.T) {
	s, orgID := setupReportTest(t)

	spent := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	seedExpense(t, s.DB, orgID, nil, nil, "fuel", spent, 40)
	seedExpense(t, s.DB, uuid.New(), nil, nil, "fuel", spent, 9999)

	rows, err := s.ExpensesByCategory(context.Background(), orgID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "fuel", rows[0].Category)
	assert.InDelta(t, 40, rows[0].Total, 0.001)
}

func TestDamageChargesByTeam_FiltersOrigin(t *testing.T) {
	s, orgID := setupReportTest(t)
	teamID := uuid.New()

	occurred := time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.DB.Create(&domain.Penalty{
		OrganizationID: orgID, TeamID: &teamID, OccurredOn: occurred,
		Amount: 300, Status: domain.PenaltyStatusOpen,
		Origin: domain.PenaltyOriginEquipmentDamage,
	}).Error)
	// manual fines stay out of the damage report
	require.NoError(t, s.DB.Create(&domain.Penalty{
		OrganizationID: orgID, TeamID: &teamID, OccurredOn: occurred,
		Amount: 150, Status: domain.PenaltyStatusOpen,
		Origin: domain.PenaltyOriginManual,
	}).Error)

	rows, err := s.DamageChargesByTeam(context.Background(), orgID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-06", rows[0].Month)
	assert.InDelta(t, 300, rows[0].Total, 0.001)
	assert.EqualValues(t, 1, rows[0].Count)
}
