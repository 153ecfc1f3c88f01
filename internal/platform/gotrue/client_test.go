package gotrue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{URL: srv.URL, AnonKey: "anon"}, logger.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestSignInWithPassword(t *testing.T) {
	userID := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.String())
		}
		if r.Header.Get("apikey") != "anon" {
			t.Errorf("apikey header: got=%q want=anon", r.Header.Get("apikey"))
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@example.com" || body["password"] != "pw" {
			t.Errorf("body: got=%v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at",
			"refresh_token": "rt",
			"expires_in":    3600,
			"user":          map[string]any{"id": userID.String(), "email": "a@example.com"},
		})
	})

	s, err := c.SignInWithPassword(context.Background(), "a@example.com", "pw")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if s.AccessToken != "at" || s.RefreshToken != "rt" || s.User.ID != userID {
		t.Fatalf("session: got=%+v", s)
	}
}

func TestSignUpWithoutSession(t *testing.T) {
	userID := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["code_challenge"] != "chal" || body["code_challenge_method"] != "s256" {
			t.Errorf("pkce fields: got=%v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": userID.String(), "email": "a@example.com"})
	})

	res, err := c.SignUp(context.Background(), "a@example.com", "pw", "chal")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if res.Session != nil {
		t.Fatalf("expected no session, got %+v", res.Session)
	}
	if res.User.ID != userID {
		t.Fatalf("user id: got=%v want=%v", res.User.ID, userID)
	}
}

func TestGetUserUsesBearer(t *testing.T) {
	userID := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer user-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": userID.String(), "email": "a@example.com"})
	})

	u, err := c.GetUser(context.Background(), "user-token")
	if err != nil || u.ID != userID {
		t.Fatalf("GetUser: err=%v user=%+v", err, u)
	}

	_, err = c.GetUser(context.Background(), "bad")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Error() != "invalid JWT" {
		t.Fatalf("APIError: got status=%d msg=%q", apiErr.StatusCode, apiErr.Error())
	}
}

func TestGetUserRetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": uuid.NewString(), "email": "a@example.com"})
	})
	c.backoff = time.Millisecond

	if _, err := c.GetUser(context.Background(), "user-token"); err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("calls: got=%d want=2", got)
	}
}

func TestTokenGrantIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c.backoff = time.Millisecond

	if _, err := c.Refresh(context.Background(), "refresh"); err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls: got=%d want=1", got)
	}
}

func TestSignInErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Email not confirmed"}`))
	})
	_, err := c.SignInWithPassword(context.Background(), "a@example.com", "pw")
	if err == nil || err.Error() != "Email not confirmed" {
		t.Fatalf("error: got=%v want=Email not confirmed", err)
	}
}

func TestAuthorizeURL(t *testing.T) {
	c, err := NewClient(Config{URL: "https://project.supabase.co/", AnonKey: "anon"}, logger.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	raw := c.AuthorizeURL("github", "http://localhost:8080/auth/callback", "chal")
	if !strings.HasPrefix(raw, "https://project.supabase.co/auth/v1/authorize?") {
		t.Fatalf("authorize url: got=%s", raw)
	}
	u, _ := url.Parse(raw)
	q := u.Query()
	if q.Get("provider") != "github" || q.Get("code_challenge") != "chal" || q.Get("redirect_to") != "http://localhost:8080/auth/callback" {
		t.Fatalf("query: got=%v", q)
	}
}

func TestNewClientRequiresConfig(t *testing.T) {
	if _, err := NewClient(Config{AnonKey: "k"}, logger.Nop()); err == nil {
		t.Fatalf("expected error for missing URL")
	}
	if _, err := NewClient(Config{URL: "http://x"}, logger.Nop()); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestExchangeCodeSendsVerifier(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") != "pkce" {
			t.Errorf("grant_type: got=%q want=pkce", r.URL.Query().Get("grant_type"))
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["auth_code"] != "code-1" || body["code_verifier"] != "verifier-1" {
			t.Errorf("body: got=%v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at",
			"user":         map[string]any{"id": uuid.NewString(), "email": "a@example.com"},
		})
	})

	s, err := c.ExchangeCode(context.Background(), "code-1", "verifier-1")
	if err != nil || s.AccessToken != "at" {
		t.Fatalf("ExchangeCode: err=%v session=%+v", err, s)
	}
}

func TestRateLimitKeepsStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"msg":"For security purposes, you can only request this once every 60 seconds"}`))
	})

	_, err := c.SignInWithPassword(context.Background(), "a@example.com", "pw")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 APIError, got %v", err)
	}
	if !strings.HasPrefix(apiErr.Error(), "For security purposes") {
		t.Fatalf("message: got=%q", apiErr.Error())
	}
}

func TestEmptyPasswordIsRejectedLocally(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := c.SignInWithPassword(context.Background(), "a@example.com", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
	if got := calls.Load(); got != 0 {
		t.Fatalf("calls: got=%d want=0", got)
	}
}

func TestGetUserHonoursCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := c.GetUser(ctx, "user-token"); err == nil {
		t.Fatal("expected error after deadline")
	}
}
