package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
	"github.com/grindgrid/grindgrid-backend/internal/services"
)

type Action int

const (
	Allow Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "allow"
}

type Decision struct {
	Action   Action
	Location string
}

var bypassPrefixes = []string{"/api/", "/auth/", "/static/", "/favicon", "/healthcheck"}

// IsAssetPath reports paths served without consulting the session.
func IsAssetPath(path string) bool {
	if path == "/" {
		return true
	}
	for _, p := range bypassPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return strings.Contains(path, ".")
}

// inZone matches whole path segments, so /dashboardx is not a dashboard
// route and falls through to the public rules.
func inZone(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Decide applies the page routing rules for one path and session state.
// Authenticated callers may always view /login and /signup.
func Decide(path string, state services.SessionState) Decision {
	onboarding := inZone(path, services.PathOnboarding)
	dashboard := inZone(path, services.PathDashboard)
	public := inZone(path, services.PathLogin) || inZone(path, services.PathSignup)

	switch {
	case !state.Authenticated:
		if onboarding || dashboard {
			return Decision{Action: Redirect, Location: services.PathLogin}
		}
	case !state.OnboardingComplete:
		if !onboarding && !public {
			return Decision{Action: Redirect, Location: services.PathOnboarding}
		}
	case onboarding:
		return Decision{Action: Redirect, Location: services.PathDashboard}
	}
	return Decision{Action: Allow}
}

// RouteGuard runs Decide for every page request. A panic while resolving the
// session lets the request through.
func RouteGuard(log *logger.Logger, sessions services.SessionResolver) gin.HandlerFunc {
	log = log.With("Middleware", "RouteGuard")
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if IsAssetPath(path) {
			c.Next()
			return
		}

		decision, ok := guardedDecide(log, sessions, c, path)
		if ok && decision.Action == Redirect {
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
			return
		}
		c.Next()
	}
}

func guardedDecide(log *logger.Logger, sessions services.SessionResolver, c *gin.Context, path string) (d Decision, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Session resolution panicked; allowing request", "path", path, "panic", r)
			d, ok = Decision{Action: Allow}, false
		}
	}()
	return Decide(path, sessions.Resolve(c.Request.Context())), true
}
