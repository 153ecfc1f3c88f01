package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	apperr "github.com/grindgrid/grindgrid-backend/internal/pkg/errors"
	"github.com/grindgrid/grindgrid-backend/internal/platform/ctxutil"
)

// brokenProfiles fails every lookup.
type brokenProfiles struct{}

func (brokenProfiles) GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error) {
	return nil, errors.New("connection refused")
}
func (brokenProfiles) GetByUsername(dbc dbctx.Context, username string) (*types.Profile, error) {
	return nil, errors.New("connection refused")
}
func (brokenProfiles) Ensure(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error) {
	return nil, errors.New("connection refused")
}
func (brokenProfiles) UpsertUsername(dbc dbctx.Context, userID uuid.UUID, username string) error {
	return errors.New("connection refused")
}
func (brokenProfiles) UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error {
	return errors.New("connection refused")
}

func TestResolveRejectedCredentialIsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	ctx := ctxutil.WithAccessToken(context.Background(), "forged")

	state := env.sessions.Resolve(ctx)
	require.Equal(t, SessionState{}, state)

	_, err := env.sessions.Identify(ctx)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestResolveWithoutRequestData(t *testing.T) {
	env := newTestEnv(t)
	require.False(t, env.sessions.Resolve(context.Background()).Authenticated)
	require.Zero(t, env.idp.calls)
}

func TestResolveOnboardingFromProfile(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	dbc := env.as(userID)
	state := env.sessions.Resolve(dbc.Ctx)
	require.True(t, state.Authenticated)
	require.Equal(t, userID, state.UserID)
	require.False(t, state.OnboardingComplete, "missing profile row")

	require.NoError(t, env.profiles.UpsertUsername(dbctx.New(context.Background()), userID, "alice"))
	state = env.sessions.Resolve(env.as(userID).Ctx)
	require.True(t, state.OnboardingComplete)
}

func TestResolveMemoizesWithinRequest(t *testing.T) {
	env := newTestEnv(t)
	dbc := env.as(uuid.New())

	first := env.sessions.Resolve(dbc.Ctx)
	second := env.sessions.Resolve(dbc.Ctx)
	require.Equal(t, first, second)
	require.Equal(t, 1, env.idp.calls)

	ForgetSession(dbc.Ctx)
	env.sessions.Resolve(dbc.Ctx)
	require.Equal(t, 2, env.idp.calls)
}

func TestResolveProfileErrorMeansIncomplete(t *testing.T) {
	env := newTestEnv(t)
	sessions := NewSessionResolver(env.log, env.idp, brokenProfiles{})

	state := sessions.Resolve(env.as(uuid.New()).Ctx)
	require.True(t, state.Authenticated)
	require.False(t, state.OnboardingComplete)
}
