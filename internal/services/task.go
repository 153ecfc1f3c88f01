package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/grindgrid/grindgrid-backend/internal/data/repos"
	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	apperr "github.com/grindgrid/grindgrid-backend/internal/pkg/errors"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type TaskInput struct {
	TaskName    string `json:"task_name"`
	SkillID     string `json:"skill_id"`
	Deadline    string `json:"deadline"`
	IsCompleted bool   `json:"is_completed"`
}

type TaskPatch struct {
	TaskName    OptionalString `json:"task_name"`
	SkillID     OptionalUUID   `json:"skill_id"`
	Deadline    OptionalDate   `json:"deadline"`
	IsCompleted OptionalBool   `json:"is_completed"`
}

type TaskService interface {
	Create(dbc dbctx.Context, in TaskInput) (*types.Task, error)
	Update(dbc dbctx.Context, id uuid.UUID, patch TaskPatch) (*types.Task, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	// List returns the caller's tasks by deadline.
	List(dbc dbctx.Context) ([]*types.Task, error)
}

type taskService struct {
	log       *logger.Logger
	sessions  SessionResolver
	taskRepo  repos.TaskRepo
	skillRepo repos.SkillRepo
	pages     *PageInvalidator
}

func NewTaskService(log *logger.Logger, sessions SessionResolver, taskRepo repos.TaskRepo, skillRepo repos.SkillRepo, pages *PageInvalidator) TaskService {
	return &taskService{
		log:       log.With("service", "TaskService"),
		sessions:  sessions,
		taskRepo:  taskRepo,
		skillRepo: skillRepo,
		pages:     pages,
	}
}

func (s *taskService) Create(dbc dbctx.Context, in TaskInput) (*types.Task, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}

	name, err := requireText(in.TaskName, "Please enter a task name.")
	if err != nil {
		return nil, err
	}
	skillID, err := parseID(in.SkillID, "Please choose a skill.")
	if err != nil {
		return nil, err
	}
	deadline, err := parseDateInput(in.Deadline)
	if err != nil {
		return nil, err
	}
	if err := requireOwnedSkill(dbc, s.skillRepo, skillID, ident.UserID); err != nil {
		return nil, err
	}

	created, err := s.taskRepo.Create(dbc, []*types.Task{{
		UserID:      ident.UserID,
		SkillID:     skillID,
		TaskName:    name,
		Deadline:    deadline,
		IsCompleted: in.IsCompleted,
	}})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.pages.Invalidate(dbc.Ctx, ident.UserID, taskViews...)
	return created[0], nil
}

func (s *taskService) Update(dbc dbctx.Context, id uuid.UUID, patch TaskPatch) (*types.Task, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.TaskName.Set {
		name := ""
		if patch.TaskName.Value != nil {
			name = *patch.TaskName.Value
		}
		if name, err = requireText(name, "Please enter a task name."); err != nil {
			return nil, err
		}
		updates["task_name"] = name
	}
	if patch.SkillID.Set {
		if patch.SkillID.Value == nil || *patch.SkillID.Value == uuid.Nil {
			return nil, apperr.New(apperr.ErrInvalidInput, "Please choose a skill.")
		}
		if err := requireOwnedSkill(dbc, s.skillRepo, *patch.SkillID.Value, ident.UserID); err != nil {
			return nil, err
		}
		updates["skill_id"] = *patch.SkillID.Value
	}
	if patch.Deadline.Set {
		updates["deadline"] = nullable(patch.Deadline.Value)
	}
	if patch.IsCompleted.Set {
		if patch.IsCompleted.Value == nil {
			return nil, apperr.New(apperr.ErrInvalidInput, "is_completed cannot be null")
		}
		updates["is_completed"] = *patch.IsCompleted.Value
	}
	if len(updates) == 0 {
		return nil, errNothingToUpdate
	}

	res, err := s.taskRepo.UpdateOwned(dbc, id, ident.UserID, updates)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if err := ownedMutationErr(res, "task"); err != nil {
		return nil, err
	}
	s.pages.Invalidate(dbc.Ctx, ident.UserID, taskViews...)
	return s.taskRepo.GetOwned(dbc, id, ident.UserID)
}

func (s *taskService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return err
	}
	res, err := s.taskRepo.DeleteOwned(dbc, id, ident.UserID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if err := ownedMutationErr(res, "task"); err != nil {
		return err
	}
	s.pages.Invalidate(dbc.Ctx, ident.UserID, taskViews...)
	return nil
}

func (s *taskService) List(dbc dbctx.Context) ([]*types.Task, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	return s.taskRepo.ListByUser(dbc, ident.UserID)
}
