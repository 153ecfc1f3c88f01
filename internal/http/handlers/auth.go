package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/grindgrid/grindgrid-backend/internal/http/middleware"
	"github.com/grindgrid/grindgrid-backend/internal/http/response"
	"github.com/grindgrid/grindgrid-backend/internal/platform/ctxutil"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
	"github.com/grindgrid/grindgrid-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
	cookies     middleware.CookieOptions
	publicURL   string
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService, cookies middleware.CookieOptions, publicURL string) *AuthHandler {
	return &AuthHandler{
		log:         log.With("handler", "AuthHandler"),
		authService: authService,
		cookies:     cookies,
		publicURL:   strings.TrimRight(publicURL, "/"),
	}
}

type credentials struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// POST /api/auth/signup
func (ah *AuthHandler) SignUp(c *gin.Context) {
	var req credentials
	if err := c.ShouldBind(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := ah.authService.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	ah.cookies.SetVerifier(c, out.CodeVerifier)
	if out.Session != nil {
		ah.cookies.SetSession(c, out.Session)
	}
	response.RespondOK(c, gin.H{
		"user_id":               out.Identity.UserID,
		"email":                 out.Identity.Email,
		"confirmation_required": out.Session == nil,
	})
}

// POST /api/auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBind(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sess, err := ah.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	ah.cookies.SetSession(c, sess)
	services.ForgetSession(c.Request.Context())
	response.RespondOK(c, gin.H{
		"access_token":  sess.AccessToken,
		"refresh_token": sess.RefreshToken,
		"expires_in":    sess.ExpiresIn,
		"user_id":       sess.Identity.UserID,
	})
}

// POST /api/auth/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	token := ""
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		token = rd.AccessToken
	}
	if err := ah.authService.SignOut(c.Request.Context(), token); err != nil {
		ah.log.Warn("Sign-out failed upstream", "error", err)
	}
	ah.cookies.ClearSession(c)
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /auth/oauth/:provider
func (ah *AuthHandler) OAuth(c *gin.Context) {
	authorizeURL, verifier, err := ah.authService.OAuthStart(c.Param("provider"), ah.publicURL+"/auth/callback")
	if err != nil {
		c.Redirect(http.StatusFound, services.PathLogin+"?error="+url.QueryEscape("oauth_unavailable"))
		return
	}
	ah.cookies.SetVerifier(c, verifier)
	c.Redirect(http.StatusFound, authorizeURL)
}

// GET /auth/callback?code=
func (ah *AuthHandler) Callback(c *gin.Context) {
	verifier, _ := c.Cookie(middleware.CookieCodeVerifier)
	out := ah.authService.Callback(c.Request.Context(), c.Query("code"), verifier)
	if out.Session != nil {
		ah.cookies.SetSession(c, out.Session)
		ah.cookies.ClearVerifier(c)
	}
	c.Redirect(http.StatusFound, out.Location)
}
