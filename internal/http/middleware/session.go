package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/grindgrid/grindgrid-backend/internal/platform/ctxutil"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
	"github.com/grindgrid/grindgrid-backend/internal/services"
)

type SessionMiddleware struct {
	log      *logger.Logger
	sessions services.SessionResolver
	auth     services.AuthService
	cookies  CookieOptions
}

func NewSessionMiddleware(log *logger.Logger, sessions services.SessionResolver, auth services.AuthService, cookies CookieOptions) *SessionMiddleware {
	return &SessionMiddleware{
		log:      log.With("Middleware", "SessionMiddleware"),
		sessions: sessions,
		auth:     auth,
		cookies:  cookies,
	}
}

// Attach puts the caller's credentials on the request context. Nothing is
// verified here; the resolver does that lazily. When the credentials came
// from cookies and the access token is rejected, the refresh cookie is
// exchanged once and both cookies are rewritten.
func (sm *SessionMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &ctxutil.RequestData{}
		fromHeader := false
		if tok := bearerToken(c); tok != "" {
			rd.AccessToken = tok
			fromHeader = true
		} else {
			rd.AccessToken, _ = c.Cookie(CookieAccessToken)
			rd.RefreshToken, _ = c.Cookie(CookieRefreshToken)
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), rd)
		c.Request = c.Request.WithContext(ctx)

		if !fromHeader && rd.RefreshToken != "" && !IsAssetPath(c.Request.URL.Path) {
			sm.refreshIfRejected(c, rd)
		}
		c.Next()
	}
}

func (sm *SessionMiddleware) refreshIfRejected(c *gin.Context, rd *ctxutil.RequestData) {
	ctx := c.Request.Context()
	if sm.sessions.Resolve(ctx).Authenticated {
		return
	}
	sess, err := sm.auth.Refresh(ctx, rd.RefreshToken)
	if err != nil {
		sm.log.Debug("Session refresh failed", "error", err)
		sm.cookies.ClearSession(c)
		return
	}
	rd.AccessToken = sess.AccessToken
	rd.RefreshToken = sess.RefreshToken
	services.ForgetSession(ctx)
	sm.cookies.SetSession(c, sess)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
