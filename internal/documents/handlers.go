package documents

import (
	"time"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/domain"
	"fleetdesk-backend/internal/middleware"
	"fleetdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles document HTTP handlers with the service.
type Handlers struct {
	Service *Service
}

func fail(c *fiber.Ctx, err error) error {
	return response.Error(c, err.Error(), apperrors.StatusCode(err), nil)
}

type createBody struct {
	DocumentType string     `json:"document_type"`
	Title        string     `json:"title"`
	DateIssued   time.Time  `json:"date_issued"`
	DateExpiry   *time.Time `json:"date_expiry"`
	FilePaths    []string   `json:"file_paths"`
}

func (b createBody) input() CreateInput {
	return CreateInput{
		DocumentType: b.DocumentType,
		Title:        b.Title,
		DateIssued:   b.DateIssued,
		DateExpiry:   b.DateExpiry,
		FilePaths:    b.FilePaths,
	}
}

// CreateVehicleDocument POST /api/v1/documents/create-vehicle-document/:vehicleId
func (h *Handlers) CreateVehicleDocument(c *fiber.Ctx) error {
	vehicleID, err := uuid.Parse(c.Params("vehicleId"))
	if err != nil {
		return response.Error(c, "Invalid vehicle id", 400, nil)
	}
	var body createBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	d, err := h.Service.CreateVehicleDocument(c.Context(), middleware.GetOrgID(c), vehicleID, body.input())
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Vehicle document created", d, nil)
}

// CreateUserDocument POST /api/v1/documents/create-user-document/:userId
func (h *Handlers) CreateUserDocument(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return response.Error(c, "Invalid user id", 400, nil)
	}
	var body createBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	d, err := h.Service.CreateUserDocument(c.Context(), middleware.GetOrgID(c), userID, body.input())
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "User document created", d, nil)
}

// ListVehicleDocuments GET /api/v1/documents/get-vehicle-documents/:vehicleId
func (h *Handlers) ListVehicleDocuments(c *fiber.Ctx) error {
	vehicleID, err := uuid.Parse(c.Params("vehicleId"))
	if err != nil {
		return response.Error(c, "Invalid vehicle id", 400, nil)
	}
	ds, err := h.Service.ListVehicleDocuments(c.Context(), middleware.GetOrgID(c), vehicleID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Vehicle documents fetched", ds, nil)
}

// ListUserDocuments GET /api/v1/documents/get-user-documents/:userId
func (h *Handlers) ListUserDocuments(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return response.Error(c, "Invalid user id", 400, nil)
	}
	ds, err := h.Service.ListUserDocuments(c.Context(), middleware.GetOrgID(c), userID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "User documents fetched", ds, nil)
}

// ListExpiring GET /api/v1/documents/get-expiring-documents
func (h *Handlers) ListExpiring(c *fiber.Ctx) error {
	vdocs, udocs, err := h.Service.ListExpiring(c.Context(), middleware.GetOrgID(c))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Expiring documents fetched", fiber.Map{
		"vehicle_documents": vdocs,
		"user_documents":    udocs,
	}, nil)
}

// AttachVehicleDocumentFile POST /api/v1/documents/attach-vehicle-document-file/:id
func (h *Handlers) AttachVehicleDocumentFile(c *fiber.Ctx) error {
	return h.attachFile(c, domain.AttachmentOwnerVehicleDocument)
}

// AttachUserDocumentFile POST /api/v1/documents/attach-user-document-file/:id
func (h *Handlers) AttachUserDocumentFile(c *fiber.Ctx) error {
	return h.attachFile(c, domain.AttachmentOwnerUserDocument)
}

func (h *Handlers) attachFile(c *fiber.Ctx, ownerType string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid document id", 400, nil)
	}
	var body struct {
		FilePath string `json:"file_path"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if err := h.Service.AttachFile(c.Context(), middleware.GetOrgID(c), ownerType, id, body.FilePath); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "File attached", nil, nil)
}

// DeleteVehicleDocument DELETE /api/v1/documents/delete-vehicle-document/:id
func (h *Handlers) DeleteVehicleDocument(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid document id", 400, nil)
	}
	if err := h.Service.DeactivateVehicleDocument(c.Context(), middleware.GetOrgID(c), id); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Vehicle document deleted", nil, nil)
}

// DeleteUserDocument DELETE /api/v1/documents/delete-user-document/:id
func (h *Handlers) DeleteUserDocument(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid document id", 400, nil)
	}
	if err := h.Service.DeactivateUserDocument(c.Context(), middleware.GetOrgID(c), id); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "User document deleted", nil, nil)
}
