package documents

import (
	"context"
	"fmt"
	"time"

	"fleetdesk-backend/internal/apperrors"
	"fleetdesk-backend/internal/domain"
	"fleetdesk-backend/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the document/expiry tracker for vehicle and user documents.
// Expiry status is recomputed on every read; files are ordered attachment
// rows; deletion is the is_active soft-delete flag.
type Service struct {
	DB *gorm.DB
}

// VehicleDocumentView is a vehicle document with its derived status and files.
type VehicleDocumentView struct {
	domain.VehicleDocument
	Status string              `json:"status"`
	Files  []domain.Attachment `json:"files"`
}

// UserDocumentView is a user document with its derived status and files.
type UserDocumentView struct {
	domain.UserDocument
	Status string              `json:"status"`
	Files  []domain.Attachment `json:"files"`
}

// CreateInput covers both document kinds; exactly one of VehicleID/UserID is
// set by the calling handler.
type CreateInput struct {
	DocumentType string     `json:"document_type"`
	Title        string     `json:"title"`
	DateIssued   time.Time  `json:"date_issued"`
	DateExpiry   *time.Time `json:"date_expiry"`
	FilePaths    []string   `json:"file_paths"`
}

func (in *CreateInput) validate() error {
	if in.DocumentType == "" || in.Title == "" {
		return fmt.Errorf("%w: document_type and title are required", apperrors.ErrValidation)
	}
	if in.DateIssued.IsZero() {
		return fmt.Errorf("%w: date_issued is required", apperrors.ErrValidation)
	}
	if in.DateExpiry != nil && in.DateExpiry.Before(in.DateIssued) {
		return fmt.Errorf("%w: date_expiry is before date_issued", apperrors.ErrValidation)
	}
	return nil
}

// CreateVehicleDocument inserts a vehicle document with its files.
func (s *Service) CreateVehicleDocument(ctx context.Context, orgID, vehicleID uuid.UUID, in CreateInput) (*VehicleDocumentView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var out *VehicleDocumentView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v domain.Vehicle
		if err := tx.Where("vehicle_id = ? AND organization_id = ?", vehicleID, orgID).First(&v).Error; err != nil {
			return apperrors.Wrap("vehicle", err)
		}
		d := &domain.VehicleDocument{
			OrganizationID: orgID,
			VehicleID:      vehicleID,
			DocumentType:   in.DocumentType,
			Title:          in.Title,
			DateIssued:     in.DateIssued,
			DateExpiry:     in.DateExpiry,
			IsActive:       true,
		}
		if err := tx.Create(d).Error; err != nil {
			return apperrors.Wrap("vehicle document", err)
		}
		files, err := s.createFiles(tx, orgID, domain.AttachmentOwnerVehicleDocument, d.DocumentID, in.FilePaths)
		if err != nil {
			return err
		}
		out = &VehicleDocumentView{VehicleDocument: *d, Status: Status(d.DateExpiry, time.Now()), Files: files}
		return nil
	})
	return out, err
}

// CreateUserDocument inserts a user document with its files.
func (s *Service) CreateUserDocument(ctx context.Context, orgID, userID uuid.UUID, in CreateInput) (*UserDocumentView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var out *UserDocumentView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.Where("user_id = ? AND organization_id = ?", userID, orgID).First(&u).Error; err != nil {
			return apperrors.Wrap("user", err)
		}
		d := &domain.UserDocument{
			OrganizationID: orgID,
			UserID:         userID,
			DocumentType:   in.DocumentType,
			Title:          in.Title,
			DateIssued:     in.DateIssued,
			DateExpiry:     in.DateExpiry,
			IsActive:       true,
		}
		if err := tx.Create(d).Error; err != nil {
			return apperrors.Wrap("user document", err)
		}
		files, err := s.createFiles(tx, orgID, domain.AttachmentOwnerUserDocument, d.DocumentID, in.FilePaths)
		if err != nil {
			return err
		}
		out = &UserDocumentView{UserDocument: *d, Status: Status(d.DateExpiry, time.Now()), Files: files}
		return nil
	})
	return out, err
}

func (s *Service) createFiles(tx *gorm.DB, orgID uuid.UUID, ownerType string, ownerID uuid.UUID, paths []string) ([]domain.Attachment, error) {
	files := make([]domain.Attachment, 0, len(paths))
	for i, p := range paths {
		if p == "" {
			return nil, fmt.Errorf("%w: empty file path", apperrors.ErrValidation)
		}
		att := domain.Attachment{
			OrganizationID: orgID,
			OwnerType:      ownerType,
			OwnerID:        ownerID,
			Position:       i,
			Path:           p,
			Category:       "documents",
		}
		if err := tx.Create(&att).Error; err != nil {
			return nil, apperrors.Wrap("attachment", err)
		}
		files = append(files, att)
	}
	return files, nil
}

// AttachFile appends a file to an existing document of either kind.
func (s *Service) AttachFile(ctx context.Context, orgID uuid.UUID, ownerType string, documentID uuid.UUID, path string) error {
	if path == "" {
		return fmt.Errorf("%w: file path is required", apperrors.ErrValidation)
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch ownerType {
		case domain.AttachmentOwnerVehicleDocument:
			var d domain.VehicleDocument
			if err := tx.Where("document_id = ? AND organization_id = ?", documentID, orgID).First(&d).Error; err != nil {
				return apperrors.Wrap("vehicle document", err)
			}
		case domain.AttachmentOwnerUserDocument:
			var d domain.UserDocument
			if err := tx.Where("document_id = ? AND organization_id = ?", documentID, orgID).First(&d).Error; err != nil {
				return apperrors.Wrap("user document", err)
			}
		default:
			return fmt.Errorf("%w: unknown document kind %q", apperrors.ErrValidation, ownerType)
		}
		var position int64
		if err := tx.Model(&domain.Attachment{}).
			Where("owner_type = ? AND owner_id = ?", ownerType, documentID).
			Count(&position).Error; err != nil {
			return apperrors.Wrap("attachments", err)
		}
		att := &domain.Attachment{
			OrganizationID: orgID,
			OwnerType:      ownerType,
			OwnerID:        documentID,
			Position:       int(position),
			Path:           path,
			Category:       "documents",
		}
		return apperrors.Wrap("attachment", tx.Create(att).Error)
	})
}

// ListVehicleDocuments returns active documents for a vehicle with derived
// statuses.
func (s *Service) ListVehicleDocuments(ctx context.Context, orgID, vehicleID uuid.UUID) ([]VehicleDocumentView, error) {
	var docs []domain.VehicleDocument
	if err := tenant.Scoped(ctx, s.DB, orgID).
		Where("vehicle_id = ? AND is_active = ?", vehicleID, true).
		Order("date_issued DESC").Find(&docs).Error; err != nil {
		return nil, apperrors.Wrap("vehicle documents", err)
	}
	now := time.Now()
	out := make([]VehicleDocumentView, 0, len(docs))
	for _, d := range docs {
		files, err := s.files(ctx, orgID, domain.AttachmentOwnerVehicleDocument, d.DocumentID)
		if err != nil {
			return nil, err
		}
		out = append(out, VehicleDocumentView{VehicleDocument: d, Status: Status(d.DateExpiry, now), Files: files})
	}
	return out, nil
}

// ListUserDocuments returns active documents for a user with derived statuses.
func (s *Service) ListUserDocuments(ctx context.Context, orgID, userID uuid.UUID) ([]UserDocumentView, error) {
	var docs []domain.UserDocument
	if err := tenant.Scoped(ctx, s.DB, orgID).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("date_issued DESC").Find(&docs).Error; err != nil {
		return nil, apperrors.Wrap("user documents", err)
	}
	now := time.Now()
	out := make([]UserDocumentView, 0, len(docs))
	for _, d := range docs {
		files, err := s.files(ctx, orgID, domain.AttachmentOwnerUserDocument, d.DocumentID)
		if err != nil {
			return nil, err
		}
		out = append(out, UserDocumentView{UserDocument: d, Status: Status(d.DateExpiry, now), Files: files})
	}
	return out, nil
}

// ListExpiring returns active documents of both kinds whose derived status
// is expiring or expired, for the dashboard warning list.
func (s *Service) ListExpiring(ctx context.Context, orgID uuid.UUID) ([]VehicleDocumentView, []UserDocumentView, error) {
	now := time.Now()
	var vdocs []domain.VehicleDocument
	if err := tenant.Scoped(ctx, s.DB, orgID).
		Where("is_active = ? AND date_expiry IS NOT NULL", true).
		Find(&vdocs).Error; err != nil {
		return nil, nil, apperrors.Wrap("vehicle documents", err)
	}
	var udocs []domain.UserDocument
	if err := tenant.Scoped(ctx, s.DB, orgID).
		Where("is_active = ? AND date_expiry IS NOT NULL", true).
		Find(&udocs).Error; err != nil {
		return nil, nil, apperrors.Wrap("user documents", err)
	}

	var vOut []VehicleDocumentView
	for _, d := range vdocs {
		st := Status(d.DateExpiry, now)
		if st == StatusValid {
			continue
		}
		vOut = append(vOut, VehicleDocumentView{VehicleDocument: d, Status: st})
	}
	var uOut []UserDocumentView
	for _, d := range udocs {
		st := Status(d.DateExpiry, now)
		if st == StatusValid {
			continue
		}
		uOut = append(uOut, UserDocumentView{UserDocument: d, Status: st})
	}
	return vOut, uOut, nil
}

// DeactivateVehicleDocument soft-deletes a vehicle document.
func (s *Service) DeactivateVehicleDocument(ctx context.Context, orgID, documentID uuid.UUID) error {
	res := tenant.ScopedModel(ctx, s.DB, orgID, &domain.VehicleDocument{}).
		Where("document_id = ? AND is_active = ?", documentID, true).
		UpdateColumn("is_active", false)
	if res.Error != nil {
		return apperrors.Wrap("vehicle document", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("vehicle document")
	}
	return nil
}

// DeactivateUserDocument soft-deletes a user document.
func (s *Service) DeactivateUserDocument(ctx context.Context, orgID, documentID uuid.UUID) error {
	res := tenant.ScopedModel(ctx, s.DB, orgID, &domain.UserDocument{}).
		Where("document_id = ? AND is_active = ?", documentID, true).
		UpdateColumn("is_active", false)
	if res.Error != nil {
		return apperrors.Wrap("user document", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user document")
	}
	return nil
}

func (s *Service) files(ctx context.Context, orgID uuid.UUID, ownerType string, ownerID uuid.UUID) ([]domain.Attachment, error) {
	var files []domain.Attachment
	if err := tenant.Scoped(ctx, s.DB, orgID).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("position").Find(&files).Error; err != nil {
		return nil, apperrors.Wrap("attachments", err)
	}
	return files, nil
}
