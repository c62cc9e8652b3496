package auth

import (
	"testing"

	"fleetdesk-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return db
}

func seedLoginUser(t *testing.T, db *gorm.DB, email, password string) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	require.NoError(t, err)
	u := &domain.User{
		OrganizationID: uuid.New(),
		FirstName:      "Mara",
		LastName:       "Klein",
		Email:          email,
		PasswordHash:   string(hash),
		Role:           "admin",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestLoginUser_Success(t *testing.T) {
	db := setupAuthDB(t)
	seeded := seedLoginUser(t, db, "mara@fleetdesk.io", "sup3r-Secret!")

	u, err := LoginUser(db, LoginInput{Email: "mara@fleetdesk.io", Password: "sup3r-Secret!"})
	require.NoError(t, err)
	assert.Equal(t, seeded.UserID, u.UserID)
}

func TestLoginUser_Errors(t *testing.T) {
	db := setupAuthDB(t)
	seedLoginUser(t, db, "mara@fleetdesk.io", "sup3r-Secret!")

	_, err := LoginUser(db, LoginInput{Email: "", Password: "x"})
	assert.Equal(t, ErrEmailPasswordRequired, err)

	_, err = LoginUser(db, LoginInput{Email: "ghost@fleetdesk.io", Password: "x"})
	assert.Equal(t, ErrInvalidEmail, err)

	_, err = LoginUser(db, LoginInput{Email: "mara@fleetdesk.io", Password: "wrong"})
	assert.Equal(t, ErrIncorrectPassword, err)
}

func TestVerifyUser(t *testing.T) {
	_, err := VerifyUser(nil)
	assert.Equal(t, ErrNotAuthenticated, err)

	_, err = VerifyUser("garbage")
	assert.Equal(t, ErrNotAuthenticated, err)

	_, err = VerifyUser(map[string]interface{}{"name": "x"})
	assert.Equal(t, ErrNotAuthenticated, err)

	// org_id is mandatory: every session is tenant-bound
	_, err = VerifyUser(map[string]interface{}{"user_id": uuid.New().String()})
	assert.Equal(t, ErrNotAuthenticated, err)

	uid := uuid.New().String()
	oid := uuid.New().String()
	got, err := VerifyUser(map[string]interface{}{
		"user_id": uid,
		"name":    "Mara Klein",
		"email":   "mara@fleetdesk.io",
		"role":    "admin",
		"org_id":  oid,
	})
	require.NoError(t, err)
	assert.Equal(t, uid, got.UserID)
	assert.Equal(t, oid, got.OrgID)
	assert.Equal(t, "Mara Klein", got.Name)
}
