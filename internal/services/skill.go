package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grindgrid/grindgrid-backend/internal/data/repos"
	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/pointers"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type SkillInput struct {
	SkillName          string `json:"skill_name"`
	StartDate          string `json:"start_date"`
	Deadline           string `json:"deadline"`
	ProgressPercentage *int   `json:"progress_percentage"`
}

type SkillPatch struct {
	SkillName          OptionalString `json:"skill_name"`
	StartDate          OptionalDate   `json:"start_date"`
	Deadline           OptionalDate   `json:"deadline"`
	ProgressPercentage OptionalInt    `json:"progress_percentage"`
}

type SkillService interface {
	Create(dbc dbctx.Context, in SkillInput) (*types.Skill, error)
	Update(dbc dbctx.Context, id uuid.UUID, patch SkillPatch) (*types.Skill, error)
	// Delete removes the skill with its tasks and detaches its notes.
	Delete(dbc dbctx.Context, id uuid.UUID) error
	// List returns the caller's skills oldest first.
	List(dbc dbctx.Context) ([]*types.Skill, error)
}

type skillService struct {
	db        *gorm.DB
	log       *logger.Logger
	sessions  SessionResolver
	skillRepo repos.SkillRepo
	taskRepo  repos.TaskRepo
	noteRepo  repos.NoteRepo
	pages     *PageInvalidator
}

func NewSkillService(
	db *gorm.DB,
	log *logger.Logger,
	sessions SessionResolver,
	skillRepo repos.SkillRepo,
	taskRepo repos.TaskRepo,
	noteRepo repos.NoteRepo,
	pages *PageInvalidator,
) SkillService {
	return &skillService{
		db:        db,
		log:       log.With("service", "SkillService"),
		sessions:  sessions,
		skillRepo: skillRepo,
		taskRepo:  taskRepo,
		noteRepo:  noteRepo,
		pages:     pages,
	}
}

func (s *skillService) Create(dbc dbctx.Context, in SkillInput) (*types.Skill, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}

	name, err := requireText(in.SkillName, "Please enter a skill name.")
	if err != nil {
		return nil, err
	}
	if err := validateProgress(in.ProgressPercentage); err != nil {
		return nil, err
	}
	start, err := parseDateInput(in.StartDate)
	if err != nil {
		return nil, err
	}
	deadline, err := parseDateInput(in.Deadline)
	if err != nil {
		return nil, err
	}
	progress := pointers.Int(0)
	if in.ProgressPercentage != nil {
		progress = pointers.Int(*in.ProgressPercentage)
	}

	created, err := s.skillRepo.Create(dbc, []*types.Skill{{
		UserID:             ident.UserID,
		SkillName:          name,
		StartDate:          start,
		Deadline:           deadline,
		ProgressPercentage: progress,
	}})
	if err != nil {
		return nil, fmt.Errorf("create skill: %w", err)
	}
	s.pages.Invalidate(dbc.Ctx, ident.UserID, skillViews...)
	return created[0], nil
}

func (s *skillService) Update(dbc dbctx.Context, id uuid.UUID, patch SkillPatch) (*types.Skill, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.SkillName.Set {
		name := ""
		if patch.SkillName.Value != nil {
			name = *patch.SkillName.Value
		}
		if name, err = requireText(name, "Please enter a skill name."); err != nil {
			return nil, err
		}
		updates["skill_name"] = name
	}
	if patch.ProgressPercentage.Set {
		if err := validateProgress(patch.ProgressPercentage.Value); err != nil {
			return nil, err
		}
		updates["progress_percentage"] = nullable(patch.ProgressPercentage.Value)
	}
	if patch.StartDate.Set {
		updates["start_date"] = nullable(patch.StartDate.Value)
	}
	if patch.Deadline.Set {
		updates["deadline"] = nullable(patch.Deadline.Value)
	}
	if len(updates) == 0 {
		return nil, errNothingToUpdate
	}

	res, err := s.skillRepo.UpdateOwned(dbc, id, ident.UserID, updates)
	if err != nil {
		return nil, fmt.Errorf("update skill: %w", err)
	}
	if err := ownedMutationErr(res, "skill"); err != nil {
		return nil, err
	}
	s.pages.Invalidate(dbc.Ctx, ident.UserID, skillViews...)
	return s.skillRepo.GetOwned(dbc, id, ident.UserID)
}

func (s *skillService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return err
	}
	var res repos.MutationResult
	var removedTasks, detachedNotes int64
	err = s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.WithTx(dbc.Ctx, tx)
		var err error
		if res, err = s.skillRepo.DeleteOwned(inner, id, ident.UserID); err != nil || res.Affected == 0 {
			return err
		}
		if removedTasks, err = s.taskRepo.DeleteBySkill(inner, id, ident.UserID); err != nil {
			return err
		}
		detachedNotes, err = s.noteRepo.DetachSkill(inner, id, ident.UserID)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}
	if err := ownedMutationErr(res, "skill"); err != nil {
		return err
	}
	s.log.Debug("Skill deleted", "skill_id", id, "tasks_removed", removedTasks, "notes_detached", detachedNotes)
	s.pages.Invalidate(dbc.Ctx, ident.UserID, skillDeleteViews...)
	return nil
}

func (s *skillService) List(dbc dbctx.Context) ([]*types.Skill, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	return s.skillRepo.ListByUser(dbc, ident.UserID, repos.SkillOrderCreated)
}
