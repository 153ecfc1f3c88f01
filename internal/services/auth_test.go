package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	"github.com/grindgrid/grindgrid-backend/internal/platform/ctxutil"
)

func TestCallbackRedirects(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.log, env.idp, env.sessions, env.profiles, env.pages)
	ctx := context.Background()

	fresh := uuid.New()
	freshCode := env.idp.login(fresh, "fresh@example.com")
	out := svc.Callback(ctx, freshCode, "verifier")
	require.Equal(t, "/onboarding", out.Location)
	require.NotNil(t, out.Session)

	onboarded := uuid.New()
	require.NoError(t, env.profiles.UpsertUsername(dbctx.New(ctx), onboarded, "bob"))
	out = svc.Callback(ctx, env.idp.login(onboarded, "bob@example.com"), "verifier")
	require.Equal(t, "/dashboard", out.Location)

	out = svc.Callback(ctx, "", "")
	require.Equal(t, "/login?error=user_not_found", out.Location)
	require.Nil(t, out.Session)

	env.idp.exchangeErr = errors.New("code expired")
	out = svc.Callback(ctx, freshCode, "verifier")
	require.Equal(t, "/login?error=session_exchange_failed", out.Location)
}

func TestCallbackProfileErrorGoesToOnboarding(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.log, env.idp, env.sessions, brokenProfiles{}, env.pages)

	out := svc.Callback(context.Background(), env.idp.login(uuid.New(), "x@example.com"), "v")
	require.Equal(t, "/onboarding", out.Location)
}

func TestSignUpIssuesVerifierAndProfile(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	env.idp.signUp = SignUpResult{Identity: Identity{UserID: userID, Email: "new@example.com"}}
	svc := NewAuthService(env.log, env.idp, env.sessions, env.profiles, env.pages)

	out, err := svc.SignUp(context.Background(), "new@example.com", "secret1")
	require.NoError(t, err)
	require.Len(t, out.CodeVerifier, 43)
	require.Nil(t, out.Session)

	p, err := env.profiles.GetByID(dbctx.New(context.Background()), userID)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.False(t, p.OnboardingComplete())
}

func TestOAuthStartCarriesChallenge(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.log, env.idp, env.sessions, env.profiles, env.pages)

	url, verifier, err := svc.OAuthStart("GitHub", "http://localhost:8080/auth/callback")
	require.NoError(t, err)
	require.True(t, strings.Contains(url, "provider=github"))
	require.True(t, strings.HasSuffix(url, "code_challenge="+CodeChallengeS256(verifier)))
}

func TestCodeChallengeS256KnownVector(t *testing.T) {
	// RFC 7636 appendix B.
	got := CodeChallengeS256("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")
	require.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", got)
}

func TestSignOutPurgesCachedPages(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.log, env.idp, env.sessions, env.profiles, env.pages)
	owner := uuid.New()
	ctx := env.as(owner).Ctx
	token := ctxutil.GetRequestData(ctx).AccessToken

	require.NoError(t, svc.SignOut(ctx, token))
	require.Equal(t, []uuid.UUID{owner}, env.cache.purgedUsers())

	_, err := env.idp.GetUser(context.Background(), token)
	require.Error(t, err)

	// Without a resolvable session there is nothing to purge.
	require.NoError(t, svc.SignOut(anonymous().Ctx, "stale"))
	require.Len(t, env.cache.purgedUsers(), 1)
}
