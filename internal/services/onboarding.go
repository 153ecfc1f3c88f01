package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/grindgrid/grindgrid-backend/internal/data/repos"
	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	apperr "github.com/grindgrid/grindgrid-backend/internal/pkg/errors"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/pointers"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

var errUsernameTaken = errors.New("username taken")

type OnboardingInput struct {
	Username  string `json:"username" form:"username"`
	SkillName string `json:"skill_name" form:"skill_name"`
	Deadline  string `json:"deadline" form:"deadline"`
}

type OnboardingResult struct {
	Profile *types.Profile `json:"profile"`
	Skill   *types.Skill   `json:"skill"`
}

type OnboardingService interface {
	// Complete records the username and the first skill atomically.
	Complete(dbc dbctx.Context, in OnboardingInput) (*OnboardingResult, error)
}

type onboardingService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessions    SessionResolver
	profileRepo repos.ProfileRepo
	skillRepo   repos.SkillRepo
	pages       *PageInvalidator
	now         func() time.Time
}

func NewOnboardingService(
	db *gorm.DB,
	log *logger.Logger,
	sessions SessionResolver,
	profileRepo repos.ProfileRepo,
	skillRepo repos.SkillRepo,
	pages *PageInvalidator,
) OnboardingService {
	return &onboardingService{
		db:          db,
		log:         log.With("service", "OnboardingService"),
		sessions:    sessions,
		profileRepo: profileRepo,
		skillRepo:   skillRepo,
		pages:       pages,
		now:         time.Now,
	}
}

func (s *onboardingService) Complete(dbc dbctx.Context, in OnboardingInput) (*OnboardingResult, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}

	skillName, err := requireText(in.SkillName, "Please enter a primary skill name.")
	if err != nil {
		return nil, err
	}
	username, err := requireText(in.Username, "Please choose a username.")
	if err != nil {
		return nil, err
	}
	if _, err := requireText(in.Deadline, "Please set a deadline."); err != nil {
		return nil, err
	}
	deadline, err := parseDateInput(in.Deadline)
	if err != nil {
		return nil, err
	}

	out := &OnboardingResult{}
	err = s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.WithTx(dbc.Ctx, tx)
		owner, err := s.profileRepo.GetByUsername(inner, username)
		if err != nil {
			return err
		}
		if owner != nil && owner.ID != ident.UserID {
			return errUsernameTaken
		}
		if err := s.profileRepo.UpsertUsername(inner, ident.UserID, username); err != nil {
			return err
		}
		created, err := s.skillRepo.Create(inner, []*types.Skill{{
			UserID:             ident.UserID,
			SkillName:          skillName,
			StartDate:          today(s.now()),
			Deadline:           deadline,
			ProgressPercentage: pointers.Int(0),
		}})
		if err != nil {
			return err
		}
		out.Skill = created[0]
		out.Profile, err = s.profileRepo.GetByID(inner, ident.UserID)
		return err
	})
	if errors.Is(err, errUsernameTaken) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.New(apperr.ErrConflict, "That username is already taken.")
	}
	if err != nil {
		return nil, fmt.Errorf("complete onboarding: %w", err)
	}

	ForgetSession(dbc.Ctx)
	s.log.Info("Onboarding completed", "user_id", ident.UserID)
	s.pages.Invalidate(dbc.Ctx, ident.UserID, onboardingViews...)
	return out, nil
}
