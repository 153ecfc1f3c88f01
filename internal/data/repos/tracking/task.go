package tracking

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type TaskCounts struct {
	Total     int64
	Completed int64
}

type TaskRepo interface {
	Create(dbc dbctx.Context, tasks []*types.Task) ([]*types.Task, error)
	GetOwned(dbc dbctx.Context, id, userID uuid.UUID) (*types.Task, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Task, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (TaskCounts, error)
	UpdateOwned(dbc dbctx.Context, id, userID uuid.UUID, updates map[string]interface{}) (MutationResult, error)
	DeleteOwned(dbc dbctx.Context, id, userID uuid.UUID) (MutationResult, error)
	// DeleteBySkill removes the owner's tasks filed under skillID.
	DeleteBySkill(dbc dbctx.Context, skillID, userID uuid.UUID) (int64, error)
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	repoLog := baseLog.With("repo", "TaskRepo")
	return &taskRepo{db: db, log: repoLog}
}

func (tr *taskRepo) Create(dbc dbctx.Context, tasks []*types.Task) ([]*types.Task, error) {
	if len(tasks) == 0 {
		return []*types.Task{}, nil
	}
	if err := dbc.Conn(tr.db).Create(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (tr *taskRepo) GetOwned(dbc dbctx.Context, id, userID uuid.UUID) (*types.Task, error) {
	return getOwned[types.Task](dbc, tr.db, id, userID)
}

func (tr *taskRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Task, error) {
	var results []*types.Task
	if err := dbc.Conn(tr.db).
		Where("user_id = ?", userID).
		Order("deadline ASC").
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *taskRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (TaskCounts, error) {
	var out TaskCounts
	if err := dbc.Conn(tr.db).Model(&types.Task{}).
		Where("user_id = ?", userID).
		Count(&out.Total).Error; err != nil {
		return TaskCounts{}, err
	}
	if err := dbc.Conn(tr.db).Model(&types.Task{}).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Count(&out.Completed).Error; err != nil {
		return TaskCounts{}, err
	}
	return out, nil
}

func (tr *taskRepo) UpdateOwned(dbc dbctx.Context, id, userID uuid.UUID, updates map[string]interface{}) (MutationResult, error) {
	return updateOwned[types.Task](dbc, tr.db, id, userID, updates)
}

func (tr *taskRepo) DeleteOwned(dbc dbctx.Context, id, userID uuid.UUID) (MutationResult, error) {
	return deleteOwned[types.Task](dbc, tr.db, id, userID)
}

func (tr *taskRepo) DeleteBySkill(dbc dbctx.Context, skillID, userID uuid.UUID) (int64, error) {
	res := dbc.Conn(tr.db).
		Where("skill_id = ? AND user_id = ?", skillID, userID).
		Delete(&types.Task{})
	return res.RowsAffected, res.Error
}
