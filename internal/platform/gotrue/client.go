package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	auth "github.com/supabase-community/auth-go"
	authtypes "github.com/supabase-community/auth-go/types"

	"github.com/grindgrid/grindgrid-backend/internal/pkg/httpx"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

// User is the identity record returned by the auth server.
type User struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// SignUpResponse carries a Session when the project auto-confirms emails and
// only the User otherwise.
type SignUpResponse struct {
	User    User
	Session *Session
}

// APIError is a non-2xx answer from the auth server.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("gotrue http %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type Config struct {
	URL        string
	AnonKey    string
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to the auth server through auth-go. Sign-up is posted
// directly because auth-go's request type has no PKCE fields.
type Client struct {
	api        auth.Client
	baseURL    string
	anonKey    string
	timeout    time.Duration
	transport  http.RoundTripper
	maxRetries int
	backoff    time.Duration
	log        *logger.Logger
}

func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, fmt.Errorf("missing auth server URL")
	}
	if strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, fmt.Errorf("missing auth server public key")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}
	return &Client{
		api:        auth.New("", cfg.AnonKey).WithCustomAuthURL(base + "/auth/v1"),
		baseURL:    base + "/auth/v1",
		anonKey:    cfg.AnonKey,
		timeout:    timeout,
		transport:  http.DefaultTransport,
		maxRetries: maxRetries,
		backoff:    500 * time.Millisecond,
		log:        log.With("client", "GoTrueClient"),
	}, nil
}

func (c *Client) SignUp(ctx context.Context, email, password, codeChallenge string) (*SignUpResponse, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	if codeChallenge != "" {
		body["code_challenge"] = codeChallenge
		body["code_challenge_method"] = "s256"
	}

	var raw struct {
		User
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
		Nested       *User  `json:"user"`
	}
	if err := c.post(ctx, "/signup", body, &raw); err != nil {
		return nil, err
	}

	out := &SignUpResponse{User: raw.User}
	if raw.AccessToken != "" {
		if raw.Nested != nil {
			out.User = *raw.Nested
		}
		out.Session = &Session{
			AccessToken:  raw.AccessToken,
			RefreshToken: raw.RefreshToken,
			TokenType:    raw.TokenType,
			ExpiresIn:    raw.ExpiresIn,
			User:         out.User,
		}
	}
	return out, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return c.token(ctx, authtypes.TokenRequest{GrantType: "password", Email: email, Password: password})
}

func (c *Client) ExchangeCode(ctx context.Context, authCode, codeVerifier string) (*Session, error) {
	return c.token(ctx, authtypes.TokenRequest{GrantType: "pkce", Code: authCode, CodeVerifier: codeVerifier})
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	return c.token(ctx, authtypes.TokenRequest{GrantType: "refresh_token", RefreshToken: refreshToken})
}

func (c *Client) token(ctx context.Context, req authtypes.TokenRequest) (*Session, error) {
	var res *authtypes.TokenResponse
	err := c.call(ctx, "token:"+req.GrantType, "", false, func(api auth.Client) error {
		var err error
		res, err = api.Token(req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fromAuthSession(res.Session), nil
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var res *authtypes.UserResponse
	err := c.call(ctx, "user", accessToken, true, func(api auth.Client) error {
		var err error
		res, err = api.GetUser()
		return err
	})
	if err != nil {
		return nil, err
	}
	if res == nil || res.ID == uuid.Nil {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: "user not found"}
	}
	u := fromAuthUser(res.User)
	return &u, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.call(ctx, "logout", accessToken, false, func(api auth.Client) error {
		return api.Logout()
	})
}

// AuthorizeURL builds the browser redirect for a third-party sign-in.
func (c *Client) AuthorizeURL(provider, redirectTo, codeChallenge string) string {
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	if codeChallenge != "" {
		q.Set("code_challenge", codeChallenge)
		q.Set("code_challenge_method", "s256")
	}
	return c.baseURL + "/authorize?" + q.Encode()
}

// call runs fn against an auth-go client bound to ctx. Only reads are
// replayed; token grants rotate server state.
func (c *Client) call(ctx context.Context, op, bearer string, retry bool, fn func(auth.Client) error) error {
	backoff := c.backoff
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		api, rec := c.bind(attemptCtx, bearer)
		start := time.Now()
		err := toAPIError(fn(api))
		cancel()
		c.log.Debug("gotrue request", "op", op, "status", rec.status(), "duration_ms", time.Since(start).Milliseconds())
		if err == nil {
			return nil
		}

		if !retry || attempt >= c.maxRetries || !httpx.IsRetryableError(err) {
			return err
		}
		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(rec.last, backoff, 5*time.Second))
		c.log.Warn("gotrue request retrying", "op", op, "attempt", attempt+1, "sleep", sleepFor.String(), "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}
}

func (c *Client) bind(ctx context.Context, bearer string) (auth.Client, *recorder) {
	rec := &recorder{ctx: ctx, base: c.transport}
	api := c.api.WithClient(http.Client{Transport: rec})
	if bearer != "" {
		api = api.WithToken(bearer)
	}
	return api, rec
}

// recorder attaches the caller's context to requests auth-go builds and keeps
// the last response for Retry-After.
type recorder struct {
	ctx  context.Context
	base http.RoundTripper
	last *http.Response
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.base.RoundTrip(req.WithContext(r.ctx))
	if resp != nil {
		r.last = resp
	}
	return resp, err
}

func (r *recorder) status() int {
	if r.last == nil {
		return 0
	}
	return r.last.StatusCode
}

// toAPIError recovers the status and body from auth-go's
// "response status code N: body" errors.
func toAPIError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, authtypes.ErrInvalidTokenRequest) {
		return &APIError{StatusCode: http.StatusBadRequest, Message: "Invalid login credentials", Body: err.Error()}
	}
	msg := err.Error()
	var code int
	if _, scanErr := fmt.Sscanf(msg, "response status code %d", &code); scanErr != nil {
		return err
	}
	body := ""
	if i := strings.Index(msg, ": "); i >= 0 {
		body = msg[i+2:]
	}
	return &APIError{StatusCode: code, Message: errorMessage([]byte(body)), Body: body}
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.anonKey)

	start := time.Now()
	resp, err := (&http.Client{Transport: c.transport, Timeout: c.timeout}).Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	c.log.Debug("gotrue request", "op", strings.TrimPrefix(path, "/"), "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw), Body: string(raw)}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("gotrue decode error: %w", err)
	}
	return nil
}

func fromAuthUser(u authtypes.User) User {
	return User{ID: u.ID, Email: u.Email, EmailConfirmedAt: u.EmailConfirmedAt}
}

func fromAuthSession(s authtypes.Session) *Session {
	return &Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		ExpiresIn:    s.ExpiresIn,
		User:         fromAuthUser(s.User),
	}
}

// errorMessage picks the human readable field out of the several error shapes
// the auth server uses.
func errorMessage(raw []byte) string {
	var e struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if json.Unmarshal(raw, &e) != nil {
		return ""
	}
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
