package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fleetdesk-backend/internal/domain"
	"fleetdesk-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserFinder for tests: returns the configured user or an error.
type fakeUserFinder struct {
	user *domain.User
	err  error
}

func (f *fakeUserFinder) FindByEmailAndPassword(email, password string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil && f.user.Email == email && password == "password123" {
		return f.user, nil
	}
	if f.user != nil && f.user.Email == email {
		return nil, ErrIncorrectPassword
	}
	return nil, ErrInvalidEmail
}

func setupAuthHandlers(t *testing.T, finder UserFinder) (*Handlers, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	h := &Handlers{
		UserFinder: finder,
		Rdb:        rdb,
		Config: middleware.SessionConfig{
			AllowCrossSiteDev: false,
			IsProduction:      false,
		},
	}
	return h, rdb
}

func testUser() *domain.User {
	return &domain.User{
		UserID:         uuid.New(),
		OrganizationID: uuid.New(),
		FirstName:      "Mara",
		LastName:       "Klein",
		Email:          "mara@fleetdesk.io",
		Role:           "admin",
	}
}

func postLogin(t *testing.T, app *fiber.App, payload map[string]string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestLogin_MissingCredentials(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Post("/login", h.Login)

	resp := postLogin(t, app, map[string]string{"email": "mara@fleetdesk.io"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin_InvalidEmail(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Post("/login", h.Login)

	resp := postLogin(t, app, map[string]string{"email": "ghost@fleetdesk.io", "password": "any"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_IncorrectPassword(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{user: testUser()})
	app := fiber.New()
	app.Post("/login", h.Login)

	resp := postLogin(t, app, map[string]string{"email": "mara@fleetdesk.io", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_SuccessSetsCookieAndTracksSession(t *testing.T) {
	user := testUser()
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{user: user})
	app := fiber.New()
	app.Post("/login", h.Login)

	resp := postLogin(t, app, map[string]string{"email": "mara@fleetdesk.io", "password": "password123"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookies := resp.Header["Set-Cookie"]
	require.NotEmpty(t, cookies)
	assert.Contains(t, cookies[0], middleware.SessionCookieName+"=")

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "success", result["status"])
	data := result["data"].(map[string]interface{})
	u := data["user"].(map[string]interface{})
	assert.Equal(t, user.UserID.String(), u["user_id"])
	assert.Equal(t, user.OrganizationID.String(), u["org_id"])
	assert.Equal(t, "Mara Klein", u["name"])

	// session tracked under user_sessions:<user_id>
	n, err := rdb.SCard(context.Background(), userSessionsPrefix+user.UserID.String()).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMe_NotAuthenticated(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Get("/me", h.Me)

	req := httptest.NewRequest("GET", "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMe_WithSessionUser(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id": uuid.New().String(),
			"name":    "Mara Klein",
			"email":   "mara@fleetdesk.io",
			"role":    "admin",
			"org_id":  uuid.New().String(),
		})
		return c.Next()
	})
	app.Get("/me", h.Me)

	req := httptest.NewRequest("GET", "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLogout_ClearsSession(t *testing.T) {
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{})
	userID := uuid.New().String()
	sessionID := uuid.New().String()
	ctx := context.Background()
	require.NoError(t, rdb.SAdd(ctx, userSessionsPrefix+userID, sessionID).Err())
	require.NoError(t, rdb.Set(ctx, middleware.SessionRedisPrefix+sessionID, "{}", 0).Err())

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("session_id", sessionID)
		c.Locals("user", map[string]interface{}{"user_id": userID})
		return c.Next()
	})
	app.Delete("/logout", h.Logout)

	req := httptest.NewRequest("DELETE", "/logout", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	n, err := rdb.Exists(ctx, middleware.SessionRedisPrefix+sessionID).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
