package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	apperr "github.com/grindgrid/grindgrid-backend/internal/pkg/errors"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/httpx"
	"github.com/grindgrid/grindgrid-backend/internal/platform/gotrue"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

// GoTrueAPI is the subset of the GoTrue REST client the provider calls.
type GoTrueAPI interface {
	SignUp(ctx context.Context, email, password, codeChallenge string) (*gotrue.SignUpResponse, error)
	SignInWithPassword(ctx context.Context, email, password string) (*gotrue.Session, error)
	ExchangeCode(ctx context.Context, authCode, codeVerifier string) (*gotrue.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*gotrue.Session, error)
	GetUser(ctx context.Context, accessToken string) (*gotrue.User, error)
	SignOut(ctx context.Context, accessToken string) error
	AuthorizeURL(provider, redirectTo, codeChallenge string) string
}

type supabaseIdentity struct {
	api GoTrueAPI
	log *logger.Logger
}

func NewSupabaseIdentity(api GoTrueAPI, log *logger.Logger) IdentityProvider {
	return &supabaseIdentity{api: api, log: log.With("service", "SupabaseIdentity")}
}

func (s *supabaseIdentity) SignUp(ctx context.Context, email, password, codeChallenge string) (SignUpResult, error) {
	res, err := s.api.SignUp(ctx, email, password, codeChallenge)
	if err != nil {
		return SignUpResult{}, s.mapErr("sign up", err)
	}
	out := SignUpResult{Identity: Identity{UserID: res.User.ID, Email: res.User.Email}}
	if res.Session != nil {
		out.Session = fromGoTrueSession(res.Session)
	}
	return out, nil
}

func (s *supabaseIdentity) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	sess, err := s.api.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, s.mapErr("sign in", err)
	}
	return fromGoTrueSession(sess), nil
}

func (s *supabaseIdentity) ExchangeCode(ctx context.Context, code, codeVerifier string) (*Session, error) {
	sess, err := s.api.ExchangeCode(ctx, code, codeVerifier)
	if err != nil {
		return nil, s.mapErr("exchange code", err)
	}
	return fromGoTrueSession(sess), nil
}

func (s *supabaseIdentity) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	sess, err := s.api.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, s.mapErr("refresh", err)
	}
	return fromGoTrueSession(sess), nil
}

func (s *supabaseIdentity) GetUser(ctx context.Context, accessToken string) (*Identity, error) {
	u, err := s.api.GetUser(ctx, accessToken)
	if err != nil {
		return nil, s.mapErr("get user", err)
	}
	return &Identity{UserID: u.ID, Email: u.Email}, nil
}

func (s *supabaseIdentity) SignOut(ctx context.Context, accessToken string) error {
	if err := s.api.SignOut(ctx, accessToken); err != nil {
		return s.mapErr("sign out", err)
	}
	return nil
}

func (s *supabaseIdentity) AuthorizeURL(provider, redirectTo, codeChallenge string) (string, error) {
	if provider == "" {
		return "", apperr.New(apperr.ErrInvalidInput, "provider is required")
	}
	return s.api.AuthorizeURL(provider, redirectTo, codeChallenge), nil
}

// mapErr keeps the auth server's message for client errors and hides
// transport failures behind ErrUpstream.
func (s *supabaseIdentity) mapErr(op string, err error) error {
	var apiErr *gotrue.APIError
	if errors.As(err, &apiErr) {
		switch code := httpx.StatusCode(err); {
		case code == http.StatusTooManyRequests:
			return apperr.New(apperr.ErrRateLimited, apiErr.Error())
		case code == http.StatusUnprocessableEntity && isAlreadyRegistered(apiErr.Error()):
			return apperr.New(apperr.ErrConflict, apiErr.Error())
		case code >= 400 && code < 500:
			return apperr.New(apperr.ErrInvalidCredential, apiErr.Error())
		}
	}
	s.log.Warn("identity provider call failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %v", apperr.ErrUpstream, op, err)
}

func isAlreadyRegistered(msg string) bool {
	return msg == "User already registered"
}

func fromGoTrueSession(s *gotrue.Session) *Session {
	if s == nil {
		return nil
	}
	return &Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
		Identity:     Identity{UserID: s.User.ID, Email: s.User.Email},
	}
}
