package materials

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"fleetdesk-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupHandlerTest(t *testing.T) (*fiber.App, *Service, uuid.UUID, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Organization{}, &domain.Team{}, &domain.Material{},
		&domain.MaterialAssignment{}, &domain.AssignmentEvent{}, &domain.Penalty{},
	))
	orgID := uuid.New()
	team := &domain.Team{OrganizationID: orgID, Name: "Crew A"}
	require.NoError(t, db.Create(team).Error)

	svc := &Service{DB: db}
	h := &Handlers{Service: svc}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("org_id", orgID)
		c.Locals("user", map[string]interface{}{
			"user_id": uuid.New().String(),
			"org_id":  orgID.String(),
		})
		return c.Next()
	})
	app.Post("/issue", h.Issue)
	app.Post("/confirm-return/:id", h.ConfirmReturn)
	app.Get("/get-material/:id", h.GetMaterial)
	return app, svc, orgID, team.TeamID
}

func TestIssueEndpoint(t *testing.T) {
	app, svc, orgID, teamID := setupHandlerTest(t)

	price := 100.0
	m, err := svc.CreateMaterial(context.Background(), orgID, CreateMaterialInput{
		Name: "Drill", MaterialType: domain.MaterialTypeEquipment,
		UnitPrice: &price, TotalQuantity: 5,
	})
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]interface{}{
		"material_id": m.MaterialID.String(),
		"team_id":     teamID.String(),
		"quantity":    3,
	})
	req := httptest.NewRequest("POST", "/issue", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "success", result["status"])

	// a second over-quota issue fails with 409
	body, _ = json.Marshal(map[string]interface{}{
		"material_id": m.MaterialID.String(),
		"team_id":     teamID.String(),
		"quantity":    3,
	})
	req = httptest.NewRequest("POST", "/issue", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestConfirmReturnEndpoint_RequiresOutcome(t *testing.T) {
	app, _, _, _ := setupHandlerTest(t)

	req := httptest.NewRequest("POST", "/confirm-return/"+uuid.New().String(), bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetMaterialEndpoint_ReportsAvailability(t *testing.T) {
	app, svc, orgID, teamID := setupHandlerTest(t)

	m, err := svc.CreateMaterial(context.Background(), orgID, CreateMaterialInput{
		Name: "Ladder", MaterialType: domain.MaterialTypeEquipment, TotalQuantity: 4,
	})
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), orgID, IssueInput{MaterialID: m.MaterialID, TeamID: teamID, Quantity: 1})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/get-material/"+m.MaterialID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	data := result["data"].(map[string]interface{})
	assert.EqualValues(t, 3, data["available"])
}
