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

const (
	CallbackErrExchange     = "session_exchange_failed"
	CallbackErrUserNotFound = "user_not_found"
)

// SignUpOutcome carries the PKCE verifier the caller must keep until the
// confirmation callback.
type SignUpOutcome struct {
	Identity     Identity
	Session      *Session
	CodeVerifier string
}

// CallbackOutcome is where the browser goes after the auth callback. Session
// is set when a code was exchanged.
type CallbackOutcome struct {
	Location string
	Session  *Session
}

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (SignUpOutcome, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Callback(ctx context.Context, code, codeVerifier string) CallbackOutcome
	SignOut(ctx context.Context, accessToken string) error
	// OAuthStart returns the provider authorize URL and the verifier to store.
	OAuthStart(provider, redirectTo string) (string, string, error)
}

type authService struct {
	log         *logger.Logger
	identity    IdentityProvider
	sessions    SessionResolver
	profileRepo repos.ProfileRepo
	pages       *PageInvalidator
}

func NewAuthService(log *logger.Logger, identity IdentityProvider, sessions SessionResolver, profileRepo repos.ProfileRepo, pages *PageInvalidator) AuthService {
	return &authService{
		log:         log.With("service", "AuthService"),
		identity:    identity,
		sessions:    sessions,
		profileRepo: profileRepo,
		pages:       pages,
	}
}

func (as *authService) SignUp(ctx context.Context, email, password string) (SignUpOutcome, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return SignUpOutcome{}, apperr.New(apperr.ErrInvalidInput, "Email and password are required.")
	}
	verifier, err := NewCodeVerifier()
	if err != nil {
		return SignUpOutcome{}, err
	}
	res, err := as.identity.SignUp(ctx, email, password, CodeChallengeS256(verifier))
	if err != nil {
		return SignUpOutcome{}, err
	}
	if res.Identity.UserID != uuid.Nil {
		if _, err := as.profileRepo.Ensure(dbctx.New(ctx), res.Identity.UserID); err != nil {
			as.log.Warn("Profile row not created at sign-up", "user_id", res.Identity.UserID, "error", err)
		}
	}
	as.log.Info("Account registered", "user_id", res.Identity.UserID, "confirmed", res.Session != nil)
	return SignUpOutcome{Identity: res.Identity, Session: res.Session, CodeVerifier: verifier}, nil
}

func (as *authService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperr.New(apperr.ErrInvalidInput, "Email and password are required.")
	}
	sess, err := as.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if _, err := as.profileRepo.Ensure(dbctx.New(ctx), sess.Identity.UserID); err != nil {
		as.log.Warn("Profile row not ensured at sign-in", "user_id", sess.Identity.UserID, "error", err)
	}
	return sess, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperr.New(apperr.ErrUnauthenticated, "Unauthorized")
	}
	return as.identity.Refresh(ctx, refreshToken)
}

func (as *authService) Callback(ctx context.Context, code, codeVerifier string) CallbackOutcome {
	var (
		out   CallbackOutcome
		token string
	)
	if code != "" {
		sess, err := as.identity.ExchangeCode(ctx, code, codeVerifier)
		if err != nil {
			as.log.Warn("Code exchange failed", "error", err)
			return CallbackOutcome{Location: loginError(CallbackErrExchange)}
		}
		out.Session = sess
		token = sess.AccessToken
	} else if rd := ctxutil.GetRequestData(ctx); rd != nil {
		token = rd.AccessToken
	}

	var ident *Identity
	if token != "" {
		var err error
		if ident, err = as.identity.GetUser(ctx, token); err != nil {
			as.log.Warn("Callback user lookup failed", "error", err)
			ident = nil
		}
	}
	if ident == nil {
		return CallbackOutcome{Location: loginError(CallbackErrUserNotFound)}
	}

	profile, err := as.profileRepo.GetByID(dbctx.New(ctx), ident.UserID)
	switch {
	case err != nil:
		as.log.Warn("Profile lookup failed in callback", "user_id", ident.UserID, "error", err)
		out.Location = PathOnboarding
	case profile.OnboardingComplete():
		out.Location = PathDashboard
	default:
		out.Location = PathOnboarding
	}
	return out
}

func (as *authService) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if ident, err := as.sessions.Identify(ctx); err == nil {
		as.pages.Forget(ctx, ident.UserID)
	}
	return as.identity.SignOut(ctx, accessToken)
}

func (as *authService) OAuthStart(provider, redirectTo string) (string, string, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return "", "", apperr.New(apperr.ErrInvalidInput, "provider is required")
	}
	verifier, err := NewCodeVerifier()
	if err != nil {
		return "", "", err
	}
	url, err := as.identity.AuthorizeURL(provider, redirectTo, CodeChallengeS256(verifier))
	if err != nil {
		return "", "", err
	}
	return url, verifier, nil
}

func loginError(code string) string {
	return PathLogin + "?error=" + code
}
