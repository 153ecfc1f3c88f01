package services

import (
	"fmt"
	"math"

	"github.com/grindgrid/grindgrid-backend/internal/data/repos"
	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

const recentNotesLimit = 3

type DashboardSummary struct {
	Username        *string        `json:"username"`
	AverageProgress int            `json:"average_progress"`
	SkillCount      int            `json:"skill_count"`
	TaskCount       int64          `json:"task_count"`
	CompletedTasks  int64          `json:"completed_tasks"`
	OpenTasks       int64          `json:"open_tasks"`
	Skills          []*types.Skill `json:"skills"`
	RecentNotes     []*types.Note  `json:"recent_notes"`
}

type SkillProgress struct {
	SkillID            string `json:"skill_id"`
	SkillName          string `json:"skill_name"`
	ProgressPercentage int    `json:"progress_percentage"`
}

type ProgressView struct {
	AverageProgress int             `json:"average_progress"`
	Skills          []SkillProgress `json:"skills"`
}

type TaskBoard struct {
	Tasks  []*types.Task  `json:"tasks"`
	Skills []*types.Skill `json:"skills"`
}

type DashboardService interface {
	Summary(dbc dbctx.Context) (*DashboardSummary, error)
	Progress(dbc dbctx.Context) (*ProgressView, error)
	TaskBoard(dbc dbctx.Context) (*TaskBoard, error)
}

type dashboardService struct {
	log         *logger.Logger
	sessions    SessionResolver
	profileRepo repos.ProfileRepo
	skillRepo   repos.SkillRepo
	taskRepo    repos.TaskRepo
	noteRepo    repos.NoteRepo
}

func NewDashboardService(
	log *logger.Logger,
	sessions SessionResolver,
	profileRepo repos.ProfileRepo,
	skillRepo repos.SkillRepo,
	taskRepo repos.TaskRepo,
	noteRepo repos.NoteRepo,
) DashboardService {
	return &dashboardService{
		log:         log.With("service", "DashboardService"),
		sessions:    sessions,
		profileRepo: profileRepo,
		skillRepo:   skillRepo,
		taskRepo:    taskRepo,
		noteRepo:    noteRepo,
	}
}

func (s *dashboardService) Summary(dbc dbctx.Context) (*DashboardSummary, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByID(dbc, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	skills, err := s.skillRepo.ListByUser(dbc, ident.UserID, repos.SkillOrderCreated)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	counts, err := s.taskRepo.CountByUser(dbc, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	notes, err := s.noteRepo.ListByUser(dbc, ident.UserID, recentNotesLimit)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	out := &DashboardSummary{
		AverageProgress: AverageProgress(skills),
		SkillCount:      len(skills),
		TaskCount:       counts.Total,
		CompletedTasks:  counts.Completed,
		OpenTasks:       counts.Total - counts.Completed,
		Skills:          skills,
		RecentNotes:     notes,
	}
	if profile != nil {
		out.Username = profile.Username
	}
	return out, nil
}

func (s *dashboardService) Progress(dbc dbctx.Context) (*ProgressView, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	skills, err := s.skillRepo.ListByUser(dbc, ident.UserID, repos.SkillOrderCreated)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	out := &ProgressView{AverageProgress: AverageProgress(skills), Skills: make([]SkillProgress, 0, len(skills))}
	for _, sk := range skills {
		out.Skills = append(out.Skills, SkillProgress{
			SkillID:            sk.ID.String(),
			SkillName:          sk.SkillName,
			ProgressPercentage: sk.Progress(),
		})
	}
	return out, nil
}

func (s *dashboardService) TaskBoard(dbc dbctx.Context) (*TaskBoard, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByUser(dbc, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	skills, err := s.skillRepo.ListByUser(dbc, ident.UserID, repos.SkillOrderName)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return &TaskBoard{Tasks: tasks, Skills: skills}, nil
}

// AverageProgress rounds the mean progress; NULL counts as 0 and no skills
// yields 0.
func AverageProgress(skills []*types.Skill) int {
	if len(skills) == 0 {
		return 0
	}
	total := 0
	for _, s := range skills {
		total += s.Progress()
	}
	return int(math.Round(float64(total) / float64(len(skills))))
}
