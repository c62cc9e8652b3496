package blob

import (
	"io"

	"fleetdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles upload/download handlers with the store.
type Handlers struct {
	Store *Store
}

// Upload POST /api/v1/uploads/:category — multipart form with a "file" field.
// Returns the stored path; the caller attaches it to its entity.
func (h *Handlers) Upload(c *fiber.Ctx) error {
	category := c.Params("category")
	if !ValidCategory(category) {
		return response.Error(c, "Unknown upload category", 400, nil)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, "file is required", 400, nil)
	}
	f, err := fh.Open()
	if err != nil {
		return response.Error(c, "Failed to read uploaded file", 400, nil)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return response.Error(c, "Failed to read uploaded file", 400, nil)
	}

	path, err := h.Store.Save(content, category, fh.Filename)
	if err != nil {
		log.Error().Err(err).Str("category", category).Msg("upload: failed to store file")
		return response.Error(c, "Failed to store file", 500, nil)
	}
	return response.SuccessCreated(c, "File stored", fiber.Map{"path": path}, nil)
}

// Download GET /api/v1/uploads/* — serves a stored blob by its path.
func (h *Handlers) Download(c *fiber.Ctx) error {
	path := c.Params("*")
	exists, err := h.Store.Exists(path)
	if err != nil || !exists {
		return response.Error(c, "File not found", 404, nil)
	}
	abs, err := h.Store.Open(path)
	if err != nil {
		return response.Error(c, "File not found", 404, nil)
	}
	return c.SendFile(abs)
}
