package services

import (
	"fmt"

	"github.com/grindgrid/grindgrid-backend/internal/data/repos"
	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type ProfilePatch struct {
	FullName  OptionalString `json:"full_name"`
	AvatarURL OptionalString `json:"avatar_url"`
	Website   OptionalString `json:"website"`
}

type ProfileView struct {
	Email   string         `json:"email"`
	Profile *types.Profile `json:"profile"`
}

type ProfileService interface {
	Get(dbc dbctx.Context) (*ProfileView, error)
	Update(dbc dbctx.Context, patch ProfilePatch) (*ProfileView, error)
}

type profileService struct {
	log         *logger.Logger
	sessions    SessionResolver
	profileRepo repos.ProfileRepo
	pages       *PageInvalidator
}

func NewProfileService(log *logger.Logger, sessions SessionResolver, profileRepo repos.ProfileRepo, pages *PageInvalidator) ProfileService {
	return &profileService{
		log:         log.With("service", "ProfileService"),
		sessions:    sessions,
		profileRepo: profileRepo,
		pages:       pages,
	}
}

func (s *profileService) Get(dbc dbctx.Context) (*ProfileView, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.profileRepo.Ensure(dbc, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &ProfileView{Email: ident.Email, Profile: p}, nil
}

func (s *profileService) Update(dbc dbctx.Context, patch ProfilePatch) (*ProfileView, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.FullName.Set {
		updates["full_name"] = nullable(patch.FullName.Value)
	}
	if patch.AvatarURL.Set {
		updates["avatar_url"] = nullable(patch.AvatarURL.Value)
	}
	if patch.Website.Set {
		updates["website"] = nullable(patch.Website.Value)
	}
	if len(updates) == 0 {
		return nil, errNothingToUpdate
	}

	if _, err := s.profileRepo.Ensure(dbc, ident.UserID); err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	if err := s.profileRepo.UpdateFields(dbc, ident.UserID, updates); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.pages.Invalidate(dbc.Ctx, ident.UserID, profileViews...)
	return s.Get(dbc)
}
