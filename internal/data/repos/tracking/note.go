package tracking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type NoteRepo interface {
	Create(dbc dbctx.Context, notes []*types.Note) ([]*types.Note, error)
	GetOwned(dbc dbctx.Context, id, userID uuid.UUID) (*types.Note, error)
	// ListByUser returns newest first; limit <= 0 means no limit.
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Note, error)
	UpdateOwned(dbc dbctx.Context, id, userID uuid.UUID, updates map[string]interface{}) (MutationResult, error)
	DeleteOwned(dbc dbctx.Context, id, userID uuid.UUID) (MutationResult, error)
	// DetachSkill clears skill_id on the owner's notes filed under skillID.
	DetachSkill(dbc dbctx.Context, skillID, userID uuid.UUID) (int64, error)
}

type noteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	repoLog := baseLog.With("repo", "NoteRepo")
	return &noteRepo{db: db, log: repoLog}
}

func (nr *noteRepo) Create(dbc dbctx.Context, notes []*types.Note) ([]*types.Note, error) {
	if len(notes) == 0 {
		return []*types.Note{}, nil
	}
	if err := dbc.Conn(nr.db).Create(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (nr *noteRepo) GetOwned(dbc dbctx.Context, id, userID uuid.UUID) (*types.Note, error) {
	return getOwned[types.Note](dbc, nr.db, id, userID)
}

func (nr *noteRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Note, error) {
	var results []*types.Note
	q := dbc.Conn(nr.db).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (nr *noteRepo) UpdateOwned(dbc dbctx.Context, id, userID uuid.UUID, updates map[string]interface{}) (MutationResult, error) {
	return updateOwned[types.Note](dbc, nr.db, id, userID, updates)
}

func (nr *noteRepo) DeleteOwned(dbc dbctx.Context, id, userID uuid.UUID) (MutationResult, error) {
	return deleteOwned[types.Note](dbc, nr.db, id, userID)
}

func (nr *noteRepo) DetachSkill(dbc dbctx.Context, skillID, userID uuid.UUID) (int64, error) {
	res := dbc.Conn(nr.db).
		Model(&types.Note{}).
		Where("skill_id = ? AND user_id = ?", skillID, userID).
		Updates(map[string]interface{}{"skill_id": nil, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}
