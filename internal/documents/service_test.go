package documents

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

func setupDocumentTest(t *testing.T) (*Service, uuid.UUID, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Organization{}, &domain.Vehicle{}, &domain.User{},
		&domain.VehicleDocument{}, &domain.UserDocument{}, &domain.Attachment{},
	))
	orgID := uuid.New()
	vehicle := &domain.Vehicle{
		OrganizationID: orgID,
		Name:           "Transporter 1",
		LicensePlate:   "B-FD 1234",
		VIN:            "1HGCM82633A004352",
		Status:         domain.VehicleStatusActive,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return &Service{DB: db}, orgID, vehicle.VehicleID
}

func TestCreateVehicleDocument_WithFiles(t *testing.T) {
	s, orgID, vehicleID := setupDocumentTest(t)
	ctx := context.Background()

	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry := issued.AddDate(1, 0, 0)
	d, err := s.CreateVehicleDocument(ctx, orgID, vehicleID, CreateInput{
		DocumentType: "insurance",
		Title:        "Liability policy",
		DateIssued:   issued,
		DateExpiry:   &expiry,
		FilePaths:    []string{"documents/a.pdf", "documents/b.pdf"},
	})
	require.NoError(t, err)
	assert.True(t, d.IsActive)
	assert.Equal(t, StatusValid, d.Status)
	require.Len(t, d.Files, 2)
	assert.Equal(t, 0, d.Files[0].Position)
	assert.Equal(t, 1, d.Files[1].Position)
}

func TestCreateVehicleDocument_ExpiryBeforeIssueRejected(t *testing.T) {
	s, orgID, vehicleID := setupDocumentTest(t)
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry := issued.AddDate(0, 0, -1)
	_, err := s.CreateVehicleDocument(context.Background(), orgID, vehicleID, CreateInput{
		DocumentType: "insurance",
		Title:        "Backwards",
		DateIssued:   issued,
		DateExpiry:   &expiry,
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestCreateVehicleDocument_UnknownVehicle(t *testing.T) {
	s, orgID, _ := setupDocumentTest(t)
	_, err := s.CreateVehicleDocument(context.Background(), orgID, uuid.New(), CreateInput{
		DocumentType: "insurance",
		Title:        "Nobody's",
		DateIssued:   time.Now(),
	})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSoftDelete_HidesFromList(t *testing.T) {
	s, orgID, vehicleID := setupDocumentTest(t)
	ctx := context.Background()

	d, err := s.CreateVehicleDocument(ctx, orgID, vehicleID, CreateInput{
		DocumentType: "registration",
		Title:        "Registration",
		DateIssued:   time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, s.DeactivateVehicleDocument(ctx, orgID, d.DocumentID))

	docs, err := s.ListVehicleDocuments(ctx, orgID, vehicleID)
	require.NoError(t, err)
	assert.Empty(t, docs)

	// the row still exists
	var count int64
	require.NoError(t, s.DB.Model(&domain.VehicleDocument{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// deactivating again fails
	err = s.DeactivateVehicleDocument(ctx, orgID, d.DocumentID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestAttachFile_AppendsInOrder(t *testing.T) {
	s, orgID, vehicleID := setupDocumentTest(t)
	ctx := context.Background()

	d, err := s.CreateVehicleDocument(ctx, orgID, vehicleID, CreateInput{
		DocumentType: "inspection",
		Title:        "TUV report",
		DateIssued:   time.Now(),
		FilePaths:    []string{"documents/report.pdf"},
	})
	require.NoError(t, err)

	require.NoError(t, s.AttachFile(ctx, orgID, domain.AttachmentOwnerVehicleDocument, d.DocumentID, "documents/appendix.pdf"))

	docs, err := s.ListVehicleDocuments(ctx, orgID, vehicleID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Files, 2)
	assert.Equal(t, "documents/appendix.pdf", docs[0].Files[1].Path)
}

func TestListExpiring_FiltersValid(t *testing.T) {
	s, orgID, vehicleID := setupDocumentTest(t)
	ctx := context.Background()

	mk := func(title string, expiry time.Time) {
		_, err := s.CreateVehicleDocument(ctx, orgID, vehicleID, CreateInput{
			DocumentType: "insurance",
			Title:        title,
			DateIssued:   expiry.AddDate(-1, 0, 0),
			DateExpiry:   &expiry,
		})
		require.NoError(t, err)
	}
	mk("fresh", time.Now().AddDate(0, 6, 0))
	mk("soon", time.Now().AddDate(0, 0, 10))
	mk("gone", time.Now().AddDate(0, 0, -10))

	vdocs, udocs, err := s.ListExpiring(ctx, orgID)
	require.NoError(t, err)
	assert.Empty(t, udocs)
	require.Len(t, vdocs, 2)
	statuses := map[string]string{}
	for _, d := range vdocs {
		statuses[d.Title] = d.Status
	}
	assert.Equal(t, StatusExpiring, statuses["soon"])
	assert.Equal(t, StatusExpired, statuses["gone"])
}
