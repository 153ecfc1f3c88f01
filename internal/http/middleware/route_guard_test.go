package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
	"github.com/grindgrid/grindgrid-backend/internal/services"
)

// stubResolver returns a fixed state and counts resolutions.
type stubResolver struct {
	state services.SessionState
	panic bool
	calls int
}

func (s *stubResolver) Resolve(ctx context.Context) services.SessionState {
	s.calls++
	if s.panic {
		panic("profile table missing")
	}
	return s.state
}

func (s *stubResolver) Identify(ctx context.Context) (services.Identity, error) {
	st := s.Resolve(ctx)
	return services.Identity{UserID: st.UserID, Email: st.Email}, nil
}

var (
	anon       = services.SessionState{}
	incomplete = services.SessionState{Authenticated: true, UserID: uuid.New()}
	complete   = services.SessionState{Authenticated: true, UserID: uuid.New(), OnboardingComplete: true}
)

func TestDecide(t *testing.T) {
	allow := Decision{Action: Allow}
	to := func(loc string) Decision { return Decision{Action: Redirect, Location: loc} }

	cases := []struct {
		name  string
		path  string
		state services.SessionState
		want  Decision
	}{
		{"anon dashboard", "/dashboard", anon, to("/login")},
		{"anon dashboard child", "/dashboard/skills", anon, to("/login")},
		{"anon onboarding", "/onboarding", anon, to("/login")},
		{"anon login", "/login", anon, allow},
		{"anon signup", "/signup", anon, allow},
		{"anon lookalike", "/dashboards", anon, allow},
		{"anon lookalike suffix", "/dashboardx", anon, allow},
		{"anon onboarding lookalike", "/onboardingx", anon, allow},
		{"incomplete lookalike", "/dashboardx", incomplete, to("/onboarding")},
		{"complete onboarding child", "/onboarding/step-2", complete, to("/dashboard")},
		{"complete onboarding lookalike", "/onboardingx", complete, allow},
		{"incomplete dashboard", "/dashboard/tasks", incomplete, to("/onboarding")},
		{"incomplete onboarding", "/onboarding", incomplete, allow},
		{"incomplete login", "/login", incomplete, allow},
		{"incomplete signup", "/signup", incomplete, allow},
		{"complete onboarding", "/onboarding", complete, to("/dashboard")},
		{"complete dashboard", "/dashboard/ai", complete, allow},
		{"complete login", "/login", complete, allow},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, Decide(tc.path, tc.state)); diff != "" {
			t.Fatalf("%s (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestIsAssetPath(t *testing.T) {
	for path, want := range map[string]bool{
		"/":                true,
		"/api/skills":      true,
		"/auth/callback":   true,
		"/static/app.js":   true,
		"/favicon.ico":     true,
		"/healthcheck":     true,
		"/logo.svg":        true,
		"/dashboard":       false,
		"/onboarding":      false,
		"/login":           false,
		"/dashboard/notes": false,
		"/apix":            false,
	} {
		if got := IsAssetPath(path); got != want {
			t.Fatalf("IsAssetPath(%q): got=%v want=%v", path, got, want)
		}
	}
}

func guardedEngine(res services.SessionResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RouteGuard(logger.Nop(), res))
	ok := func(c *gin.Context) { c.String(http.StatusOK, "page") }
	r.GET("/dashboard", ok)
	r.GET("/onboarding", ok)
	r.GET("/static/app.js", ok)
	r.GET("/api/skills", ok)
	return r
}

func serve(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouteGuardRedirects(t *testing.T) {
	res := &stubResolver{state: anon}
	rec := serve(guardedEngine(res), "/dashboard")
	if rec.Code != http.StatusFound {
		t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("location: got=%q want=%q", loc, "/login")
	}

	res.state = complete
	rec = serve(guardedEngine(res), "/onboarding")
	if loc := rec.Header().Get("Location"); rec.Code != http.StatusFound || loc != "/dashboard" {
		t.Fatalf("complete onboarding: got=%d %q", rec.Code, loc)
	}
}

func TestRouteGuardBypassNeverResolves(t *testing.T) {
	res := &stubResolver{state: anon}
	r := guardedEngine(res)
	for _, path := range []string{"/static/app.js", "/api/skills"} {
		if rec := serve(r, path); rec.Code != http.StatusOK {
			t.Fatalf("%s: got=%d want=%d", path, rec.Code, http.StatusOK)
		}
	}
	if res.calls != 0 {
		t.Fatalf("resolver calls: got=%d want=0", res.calls)
	}
}

func TestRouteGuardFailsOpen(t *testing.T) {
	res := &stubResolver{panic: true}
	rec := serve(guardedEngine(res), "/dashboard")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "page" {
		t.Fatalf("body: got=%q", rec.Body.String())
	}
}
