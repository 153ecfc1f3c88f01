package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grindgrid/grindgrid-backend/internal/services"
)

const (
	CookieAccessToken  = "gg-access-token"
	CookieRefreshToken = "gg-refresh-token"
	CookieCodeVerifier = "gg-code-verifier"

	refreshCookieTTL  = 30 * 24 * time.Hour
	verifierCookieTTL = 24 * time.Hour
)

// CookieOptions controls the attributes of the session cookies.
type CookieOptions struct {
	Secure bool
	Domain string
}

func (o CookieOptions) set(c *gin.Context, name, value string, maxAge time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(maxAge.Seconds()), "/", o.Domain, o.Secure, true)
}

// SetSession writes both session cookies.
func (o CookieOptions) SetSession(c *gin.Context, sess *services.Session) {
	if sess == nil {
		return
	}
	accessTTL := time.Duration(sess.ExpiresIn) * time.Second
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	o.set(c, CookieAccessToken, sess.AccessToken, accessTTL)
	o.set(c, CookieRefreshToken, sess.RefreshToken, refreshCookieTTL)
}

func (o CookieOptions) ClearSession(c *gin.Context) {
	o.set(c, CookieAccessToken, "", -time.Second)
	o.set(c, CookieRefreshToken, "", -time.Second)
}

func (o CookieOptions) SetVerifier(c *gin.Context, verifier string) {
	o.set(c, CookieCodeVerifier, verifier, verifierCookieTTL)
}

func (o CookieOptions) ClearVerifier(c *gin.Context) {
	o.set(c, CookieCodeVerifier, "", -time.Second)
}
