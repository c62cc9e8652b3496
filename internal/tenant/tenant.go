package tenant

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scoped returns a gorm handle pre-filtered by organization_id. Services
// build every tenant-owned query through this accessor so no call site can
// forget the tenant filter.
func Scoped(ctx context.Context, db *gorm.DB, orgID uuid.UUID) *gorm.DB {
	return db.WithContext(ctx).Where("organization_id = ?", orgID)
}

// ScopedModel is Scoped with the model set, for updates and deletes.
func ScopedModel(ctx context.Context, db *gorm.DB, orgID uuid.UUID, model interface{}) *gorm.DB {
	return db.WithContext(ctx).Model(model).Where("organization_id = ?", orgID)
}
