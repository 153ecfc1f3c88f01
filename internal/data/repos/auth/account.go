package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type AccountRepo interface {
	Create(dbc dbctx.Context, account *types.Account) (*types.Account, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Account, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.Account, error)
	MarkConfirmed(dbc dbctx.Context, id uuid.UUID, at time.Time) error
}

type accountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccountRepo(db *gorm.DB, baseLog *logger.Logger) AccountRepo {
	repoLog := baseLog.With("repo", "AccountRepo")
	return &accountRepo{db: db, log: repoLog}
}

func (ar *accountRepo) Create(dbc dbctx.Context, account *types.Account) (*types.Account, error) {
	account.Email = normalizeEmail(account.Email)
	if err := dbc.Conn(ar.db).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

func (ar *accountRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Account, error) {
	return ar.getOne(dbc, "id = ?", id)
}

func (ar *accountRepo) GetByEmail(dbc dbctx.Context, email string) (*types.Account, error) {
	return ar.getOne(dbc, "email = ?", normalizeEmail(email))
}

func (ar *accountRepo) getOne(dbc dbctx.Context, where string, arg interface{}) (*types.Account, error) {
	var results []*types.Account
	if err := dbc.Conn(ar.db).
		Where(where, arg).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (ar *accountRepo) MarkConfirmed(dbc dbctx.Context, id uuid.UUID, at time.Time) error {
	return dbc.Conn(ar.db).
		Model(&types.Account{}).
		Where("id = ? AND confirmed_at IS NULL", id).
		Updates(map[string]interface{}{
			"confirmed_at": at,
			"updated_at":   at,
		}).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
