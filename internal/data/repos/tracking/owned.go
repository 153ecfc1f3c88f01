package tracking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
)

// MutationResult reports what an owner-scoped update or delete touched.
// Exists is only meaningful when Affected is zero: it tells a row owned by
// someone else apart from a row that does not exist.
type MutationResult struct {
	Affected int64
	Exists   bool
}

func updateOwned[T any](dbc dbctx.Context, db *gorm.DB, id, userID uuid.UUID, updates map[string]interface{}) (MutationResult, error) {
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	res := dbc.Conn(db).
		Model(new(T)).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return MutationResult{}, res.Error
	}
	if res.RowsAffected > 0 {
		return MutationResult{Affected: res.RowsAffected, Exists: true}, nil
	}
	exists, err := existsByID[T](dbc, db, id)
	if err != nil {
		return MutationResult{}, err
	}
	return MutationResult{Exists: exists}, nil
}

func deleteOwned[T any](dbc dbctx.Context, db *gorm.DB, id, userID uuid.UUID) (MutationResult, error) {
	res := dbc.Conn(db).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(new(T))
	if res.Error != nil {
		return MutationResult{}, res.Error
	}
	if res.RowsAffected > 0 {
		return MutationResult{Affected: res.RowsAffected, Exists: true}, nil
	}
	exists, err := existsByID[T](dbc, db, id)
	if err != nil {
		return MutationResult{}, err
	}
	return MutationResult{Exists: exists}, nil
}

func existsByID[T any](dbc dbctx.Context, db *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	if err := dbc.Conn(db).
		Model(new(T)).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func getOwned[T any](dbc dbctx.Context, db *gorm.DB, id, userID uuid.UUID) (*T, error) {
	var results []*T
	if err := dbc.Conn(db).
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}
