package tracking

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type SkillOrder string

const (
	SkillOrderCreated SkillOrder = "created_at ASC"
	SkillOrderName    SkillOrder = "skill_name ASC"
)

type SkillRepo interface {
	Create(dbc dbctx.Context, skills []*types.Skill) ([]*types.Skill, error)
	GetOwned(dbc dbctx.Context, id, userID uuid.UUID) (*types.Skill, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, order SkillOrder) ([]*types.Skill, error)
	UpdateOwned(dbc dbctx.Context, id, userID uuid.UUID, updates map[string]interface{}) (MutationResult, error)
	DeleteOwned(dbc dbctx.Context, id, userID uuid.UUID) (MutationResult, error)
}

type skillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillRepo(db *gorm.DB, baseLog *logger.Logger) SkillRepo {
	repoLog := baseLog.With("repo", "SkillRepo")
	return &skillRepo{db: db, log: repoLog}
}

func (sr *skillRepo) Create(dbc dbctx.Context, skills []*types.Skill) ([]*types.Skill, error) {
	if len(skills) == 0 {
		return []*types.Skill{}, nil
	}
	if err := dbc.Conn(sr.db).Create(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (sr *skillRepo) GetOwned(dbc dbctx.Context, id, userID uuid.UUID) (*types.Skill, error) {
	return getOwned[types.Skill](dbc, sr.db, id, userID)
}

func (sr *skillRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, order SkillOrder) ([]*types.Skill, error) {
	if order == "" {
		order = SkillOrderCreated
	}
	var results []*types.Skill
	if err := dbc.Conn(sr.db).
		Where("user_id = ?", userID).
		Order(string(order)).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *skillRepo) UpdateOwned(dbc dbctx.Context, id, userID uuid.UUID, updates map[string]interface{}) (MutationResult, error) {
	return updateOwned[types.Skill](dbc, sr.db, id, userID, updates)
}

func (sr *skillRepo) DeleteOwned(dbc dbctx.Context, id, userID uuid.UUID) (MutationResult, error) {
	return deleteOwned[types.Skill](dbc, sr.db, id, userID)
}
