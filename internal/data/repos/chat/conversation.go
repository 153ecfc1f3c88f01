package chat

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type ConversationRepo interface {
	Create(dbc dbctx.Context, rows []*types.Conversation) ([]*types.Conversation, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Conversation, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	repoLog := baseLog.With("repo", "ConversationRepo")
	return &conversationRepo{db: db, log: repoLog}
}

func (cr *conversationRepo) Create(dbc dbctx.Context, rows []*types.Conversation) ([]*types.Conversation, error) {
	if len(rows) == 0 {
		return []*types.Conversation{}, nil
	}
	if err := dbc.Conn(cr.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (cr *conversationRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Conversation, error) {
	var results []*types.Conversation
	if err := dbc.Conn(cr.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *conversationRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if err := dbc.Conn(cr.db).
		Model(&types.Conversation{}).
		Where("user_id = ?", userID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
