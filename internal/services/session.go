package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/grindgrid/grindgrid-backend/internal/data/repos"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	apperr "github.com/grindgrid/grindgrid-backend/internal/pkg/errors"
	"github.com/grindgrid/grindgrid-backend/internal/platform/ctxutil"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

// SessionState is the resolved view of the caller used for routing decisions.
type SessionState struct {
	Authenticated      bool      `json:"authenticated"`
	UserID             uuid.UUID `json:"user_id,omitempty"`
	Email              string    `json:"email,omitempty"`
	OnboardingComplete bool      `json:"onboarding_complete"`
}

type SessionResolver interface {
	// Resolve never fails: identity errors yield an unauthenticated state and
	// profile errors yield OnboardingComplete=false. The result is memoized in
	// the request's RequestData and nowhere else.
	Resolve(ctx context.Context) SessionState
	// Identify returns the caller's identity or ErrUnauthenticated.
	Identify(ctx context.Context) (Identity, error)
}

type sessionResolver struct {
	log         *logger.Logger
	identity    IdentityProvider
	profileRepo repos.ProfileRepo
}

func NewSessionResolver(log *logger.Logger, identity IdentityProvider, profileRepo repos.ProfileRepo) SessionResolver {
	return &sessionResolver{
		log:         log.With("service", "SessionResolver"),
		identity:    identity,
		profileRepo: profileRepo,
	}
}

func (s *sessionResolver) Resolve(ctx context.Context) SessionState {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return SessionState{}
	}
	if rd.Resolved {
		return stateFromRequestData(rd)
	}

	state := s.resolve(ctx, rd.AccessToken)
	rd.Resolved = true
	rd.Authenticated = state.Authenticated
	rd.UserID = state.UserID
	rd.Email = state.Email
	rd.OnboardingComplete = state.OnboardingComplete
	return state
}

func (s *sessionResolver) resolve(ctx context.Context, accessToken string) SessionState {
	if strings.TrimSpace(accessToken) == "" {
		return SessionState{}
	}
	ident, err := s.identity.GetUser(ctx, accessToken)
	if err != nil || ident == nil || ident.UserID == uuid.Nil {
		if err != nil {
			s.log.Debug("Session rejected", "error", err)
		}
		return SessionState{}
	}

	state := SessionState{Authenticated: true, UserID: ident.UserID, Email: ident.Email}
	profile, err := s.profileRepo.GetByID(dbctx.New(ctx), ident.UserID)
	if err != nil {
		s.log.Warn("Profile lookup failed; treating onboarding as incomplete", "user_id", ident.UserID, "error", err)
		return state
	}
	state.OnboardingComplete = profile.OnboardingComplete()
	return state
}

func (s *sessionResolver) Identify(ctx context.Context) (Identity, error) {
	state := s.Resolve(ctx)
	if !state.Authenticated {
		return Identity{}, apperr.New(apperr.ErrUnauthenticated, "Unauthorized")
	}
	return Identity{UserID: state.UserID, Email: state.Email}, nil
}

func stateFromRequestData(rd *ctxutil.RequestData) SessionState {
	return SessionState{
		Authenticated:      rd.Authenticated,
		UserID:             rd.UserID,
		Email:              rd.Email,
		OnboardingComplete: rd.OnboardingComplete,
	}
}

// ForgetSession clears the memoized state so the next Resolve re-reads the
// credentials; used after sign-in, refresh and onboarding within one request.
func ForgetSession(ctx context.Context) {
	if rd := ctxutil.GetRequestData(ctx); rd != nil {
		rd.Resolved = false
	}
}
