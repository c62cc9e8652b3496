package middleware

import (
	"fleetdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const orgIDLocal = "org_id"

// RequireTenant parses the session user's org_id into Locals once so
// handlers read a typed uuid instead of re-parsing the session map. Must be
// mounted after RequireAuth.
func RequireTenant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		m, ok := user.(map[string]interface{})
		if !ok {
			return response.Error(c, "User is not associated with an organization", 403, nil)
		}
		raw, _ := m["org_id"].(string)
		orgID, err := uuid.Parse(raw)
		if err != nil || orgID == uuid.Nil {
			return response.Error(c, "User is not associated with an organization", 403, nil)
		}
		c.Locals(orgIDLocal, orgID)
		return c.Next()
	}
}

// GetOrgID returns the tenant org id set by RequireTenant (uuid.Nil if absent).
func GetOrgID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals(orgIDLocal).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetActorID returns the session user's id (nil pointer if absent or invalid).
func GetActorID(c *fiber.Ctx) *uuid.UUID {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return nil
	}
	raw, _ := m["user_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
