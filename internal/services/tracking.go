package services

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/grindgrid/grindgrid-backend/internal/data/repos"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	apperr "github.com/grindgrid/grindgrid-backend/internal/pkg/errors"
)

// ownedMutationErr turns a zero-row owner-scoped write into Forbidden when the
// row exists under another owner and NotFound otherwise.
func ownedMutationErr(res repos.MutationResult, noun string) error {
	if res.Affected > 0 {
		return nil
	}
	if res.Exists {
		return apperr.Newf(apperr.ErrForbidden, "%s belongs to another user", noun)
	}
	return apperr.Newf(apperr.ErrNotFound, "%s not found", noun)
}

func requireText(value, msg string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", apperr.New(apperr.ErrInvalidInput, msg)
	}
	return v, nil
}

func validateProgress(p *int) error {
	if p != nil && (*p < 0 || *p > 100) {
		return apperr.New(apperr.ErrInvalidInput, "Progress must be between 0 and 100.")
	}
	return nil
}

func parseID(raw, msg string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperr.New(apperr.ErrInvalidInput, msg)
	}
	return id, nil
}

// requireOwnedSkill rejects skill ids that do not belong to userID.
func requireOwnedSkill(dbc dbctx.Context, skillRepo repos.SkillRepo, skillID, userID uuid.UUID) error {
	skill, err := skillRepo.GetOwned(dbc, skillID, userID)
	if err != nil {
		return err
	}
	if skill == nil {
		return apperr.New(apperr.ErrNotFound, "skill not found")
	}
	return nil
}

var errNothingToUpdate = apperr.New(apperr.ErrInvalidInput, "no fields to update")

func parseDateInput(raw string) (*datatypes.Date, error) {
	d, err := ParseDate(raw)
	if err != nil {
		return nil, apperr.New(apperr.ErrInvalidInput, err.Error())
	}
	return d, nil
}

// nullable unwraps p for a gorm update map so nil becomes SQL NULL.
func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
