package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type ProfileRepo interface {
	GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error)
	GetByUsername(dbc dbctx.Context, username string) (*types.Profile, error)
	Ensure(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error)
	UpsertUsername(dbc dbctx.Context, userID uuid.UUID, username string) error
	UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	repoLog := baseLog.With("repo", "ProfileRepo")
	return &profileRepo{db: db, log: repoLog}
}

// GetByID returns nil, nil when the user has no profile row yet.
func (pr *profileRepo) GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error) {
	var results []*types.Profile
	if err := dbc.Conn(pr.db).
		Where("id = ?", userID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (pr *profileRepo) GetByUsername(dbc dbctx.Context, username string) (*types.Profile, error) {
	var results []*types.Profile
	if err := dbc.Conn(pr.db).
		Where("username = ?", username).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// Ensure creates an empty profile for userID when none exists. Sign-up calls it
// so the row is present before onboarding.
func (pr *profileRepo) Ensure(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error) {
	p := &types.Profile{ID: userID, UpdatedAt: time.Now()}
	if err := dbc.Conn(pr.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(p).Error; err != nil {
		return nil, err
	}
	return pr.GetByID(dbc, userID)
}

// UpsertUsername inserts or updates the profile's username. A username held by
// another profile surfaces as gorm.ErrDuplicatedKey.
func (pr *profileRepo) UpsertUsername(dbc dbctx.Context, userID uuid.UUID, username string) error {
	p := &types.Profile{ID: userID, Username: &username, UpdatedAt: time.Now()}
	return dbc.Conn(pr.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
		}).
		Create(p).Error
}

func (pr *profileRepo) UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return dbc.Conn(pr.db).
		Model(&types.Profile{}).
		Where("id = ?", userID).
		Updates(updates).Error
}
