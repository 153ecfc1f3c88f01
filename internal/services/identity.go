package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Identity is the authenticated principal behind a credential.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// Session is a credential pair issued by the identity provider.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	Identity     Identity
}

// SignUpResult reports a new account. Session is nil while email confirmation
// is pending.
type SignUpResult struct {
	Identity Identity
	Session  *Session
}

// IdentityProvider is the managed authentication backend. Implementations are
// the hosted GoTrue service and the self-hosted local provider.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, codeChallenge string) (SignUpResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	GetUser(ctx context.Context, accessToken string) (*Identity, error)
	SignOut(ctx context.Context, accessToken string) error
	AuthorizeURL(provider, redirectTo, codeChallenge string) (string, error)
}

// NewCodeVerifier returns a random PKCE verifier (43 url-safe characters).
func NewCodeVerifier() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("code verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CodeChallengeS256 derives the PKCE challenge for verifier.
func CodeChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
