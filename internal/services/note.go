package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/grindgrid/grindgrid-backend/internal/data/repos"
	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/pointers"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type NoteInput struct {
	Content string `json:"content"`
	SkillID string `json:"skill_id"`
}

type NotePatch struct {
	Content OptionalString `json:"content"`
	SkillID OptionalUUID   `json:"skill_id"`
}

type NoteService interface {
	Create(dbc dbctx.Context, in NoteInput) (*types.Note, error)
	Update(dbc dbctx.Context, id uuid.UUID, patch NotePatch) (*types.Note, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	// List returns the caller's notes newest first.
	List(dbc dbctx.Context) ([]*types.Note, error)
}

type noteService struct {
	log       *logger.Logger
	sessions  SessionResolver
	noteRepo  repos.NoteRepo
	skillRepo repos.SkillRepo
	pages     *PageInvalidator
}

func NewNoteService(log *logger.Logger, sessions SessionResolver, noteRepo repos.NoteRepo, skillRepo repos.SkillRepo, pages *PageInvalidator) NoteService {
	return &noteService{
		log:       log.With("service", "NoteService"),
		sessions:  sessions,
		noteRepo:  noteRepo,
		skillRepo: skillRepo,
		pages:     pages,
	}
}

func (s *noteService) Create(dbc dbctx.Context, in NoteInput) (*types.Note, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}

	content, err := requireText(in.Content, "Please write something first.")
	if err != nil {
		return nil, err
	}
	var skillID *uuid.UUID
	if strings.TrimSpace(in.SkillID) != "" {
		id, err := parseID(in.SkillID, "invalid skill id")
		if err != nil {
			return nil, err
		}
		if err := requireOwnedSkill(dbc, s.skillRepo, id, ident.UserID); err != nil {
			return nil, err
		}
		skillID = pointers.Ptr(id)
	}

	created, err := s.noteRepo.Create(dbc, []*types.Note{{
		UserID:  ident.UserID,
		SkillID: skillID,
		Content: content,
	}})
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	s.pages.Invalidate(dbc.Ctx, ident.UserID, noteViews...)
	return created[0], nil
}

func (s *noteService) Update(dbc dbctx.Context, id uuid.UUID, patch NotePatch) (*types.Note, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Content.Set {
		content := ""
		if patch.Content.Value != nil {
			content = *patch.Content.Value
		}
		if content, err = requireText(content, "Please write something first."); err != nil {
			return nil, err
		}
		updates["content"] = content
	}
	if patch.SkillID.Set {
		if patch.SkillID.Value != nil {
			if err := requireOwnedSkill(dbc, s.skillRepo, *patch.SkillID.Value, ident.UserID); err != nil {
				return nil, err
			}
		}
		updates["skill_id"] = nullable(patch.SkillID.Value)
	}
	if len(updates) == 0 {
		return nil, errNothingToUpdate
	}

	res, err := s.noteRepo.UpdateOwned(dbc, id, ident.UserID, updates)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	if err := ownedMutationErr(res, "note"); err != nil {
		return nil, err
	}
	s.pages.Invalidate(dbc.Ctx, ident.UserID, noteViews...)
	return s.noteRepo.GetOwned(dbc, id, ident.UserID)
}

func (s *noteService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return err
	}
	res, err := s.noteRepo.DeleteOwned(dbc, id, ident.UserID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if err := ownedMutationErr(res, "note"); err != nil {
		return err
	}
	s.pages.Invalidate(dbc.Ctx, ident.UserID, noteViews...)
	return nil
}

func (s *noteService) List(dbc dbctx.Context) ([]*types.Note, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	return s.noteRepo.ListByUser(dbc, ident.UserID, 0)
}
