package auth

import (
	"time"

	"gorm.io/gorm"

	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type AuthCodeRepo interface {
	Create(dbc dbctx.Context, code *types.AuthCode) (*types.AuthCode, error)
	// Consume deletes and returns an unexpired code. It returns nil, nil when the
	// code is unknown, expired or already used.
	Consume(dbc dbctx.Context, code string, now time.Time) (*types.AuthCode, error)
}

type authCodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuthCodeRepo(db *gorm.DB, baseLog *logger.Logger) AuthCodeRepo {
	repoLog := baseLog.With("repo", "AuthCodeRepo")
	return &authCodeRepo{db: db, log: repoLog}
}

func (acr *authCodeRepo) Create(dbc dbctx.Context, code *types.AuthCode) (*types.AuthCode, error) {
	if err := dbc.Conn(acr.db).Create(code).Error; err != nil {
		return nil, err
	}
	return code, nil
}

func (acr *authCodeRepo) Consume(dbc dbctx.Context, code string, now time.Time) (*types.AuthCode, error) {
	var results []*types.AuthCode
	if err := dbc.Conn(acr.db).
		Where("code = ?", code).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	row := results[0]
	res := dbc.Conn(acr.db).
		Where("id = ?", row.ID).
		Delete(&types.AuthCode{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 || now.After(row.ExpiresAt) {
		return nil, nil
	}
	return row, nil
}
