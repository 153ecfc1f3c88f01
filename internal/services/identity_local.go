package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/grindgrid/grindgrid-backend/internal/data/repos"
	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	apperr "github.com/grindgrid/grindgrid-backend/internal/pkg/errors"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

const (
	minPasswordLength = 6
	authCodeTTL       = 24 * time.Hour
)

type LocalIdentityConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// PublicURL prefixes the confirmation link written to the log.
	PublicURL string
}

type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// LocalIdentity is a self-hosted IdentityProvider backed by the accounts,
// auth_codes and user_tokens tables.
type LocalIdentity struct {
	db            *gorm.DB
	log           *logger.Logger
	accountRepo   repos.AccountRepo
	authCodeRepo  repos.AuthCodeRepo
	userTokenRepo repos.UserTokenRepo
	cfg           LocalIdentityConfig
	now           func() time.Time
}

func NewLocalIdentity(
	db *gorm.DB,
	log *logger.Logger,
	accountRepo repos.AccountRepo,
	authCodeRepo repos.AuthCodeRepo,
	userTokenRepo repos.UserTokenRepo,
	cfg LocalIdentityConfig,
) (*LocalIdentity, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET_KEY is required for the local identity provider", apperr.ErrConfiguration)
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	return &LocalIdentity{
		db:            db,
		log:           log.With("service", "LocalIdentity"),
		accountRepo:   accountRepo,
		authCodeRepo:  authCodeRepo,
		userTokenRepo: userTokenRepo,
		cfg:           cfg,
		now:           time.Now,
	}, nil
}

func (l *LocalIdentity) SignUp(ctx context.Context, email, password, codeChallenge string) (SignUpResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return SignUpResult{}, apperr.New(apperr.ErrInvalidInput, "Unable to validate email address: invalid format")
	}
	if len(password) < minPasswordLength {
		return SignUpResult{}, apperr.Newf(apperr.ErrInvalidInput, "Password should be at least %d characters.", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return SignUpResult{}, fmt.Errorf("hash password: %w", err)
	}
	code, err := randomToken(24)
	if err != nil {
		return SignUpResult{}, fmt.Errorf("auth code: %w", err)
	}

	var account *types.Account
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.WithTx(ctx, tx)
		created, err := l.accountRepo.Create(inner, &types.Account{Email: email, PasswordHash: string(hash)})
		if err != nil {
			return err
		}
		account = created
		_, err = l.authCodeRepo.Create(inner, &types.AuthCode{
			Code:          code,
			AccountID:     created.ID,
			CodeChallenge: codeChallenge,
			ExpiresAt:     l.now().Add(authCodeTTL),
		})
		return err
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return SignUpResult{}, apperr.New(apperr.ErrConflict, "User already registered")
	}
	if err != nil {
		return SignUpResult{}, fmt.Errorf("create account: %w", err)
	}

	l.log.Info("Confirmation link issued", "email", email, "confirmation_url", l.cfg.PublicURL+"/auth/callback?code="+code)
	return SignUpResult{Identity: Identity{UserID: account.ID, Email: account.Email}}, nil
}

func (l *LocalIdentity) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	account, err := l.accountRepo.GetByEmail(dbctx.New(ctx), email)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if account == nil || bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, apperr.New(apperr.ErrInvalidCredential, "Invalid login credentials")
	}
	if !account.Confirmed() {
		return nil, apperr.New(apperr.ErrInvalidCredential, "Email not confirmed")
	}
	return l.issue(dbctx.New(ctx), account.ID, account.Email)
}

func (l *LocalIdentity) ExchangeCode(ctx context.Context, code, codeVerifier string) (*Session, error) {
	var sess *Session
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.WithTx(ctx, tx)
		row, err := l.authCodeRepo.Consume(inner, code, l.now())
		if err != nil {
			return err
		}
		if row == nil {
			return apperr.New(apperr.ErrInvalidCredential, "invalid or expired code")
		}
		if row.CodeChallenge != "" && CodeChallengeS256(codeVerifier) != row.CodeChallenge {
			return apperr.New(apperr.ErrInvalidCredential, "code verifier does not match")
		}
		account, err := l.accountRepo.GetByID(inner, row.AccountID)
		if err != nil {
			return err
		}
		if account == nil {
			return apperr.New(apperr.ErrNotFound, "user not found")
		}
		if !account.Confirmed() {
			if err := l.accountRepo.MarkConfirmed(inner, account.ID, l.now()); err != nil {
				return err
			}
		}
		sess, err = l.issue(inner, account.ID, account.Email)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (l *LocalIdentity) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var sess *Session
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.WithTx(ctx, tx)
		row, err := l.userTokenRepo.GetByRefreshToken(inner, refreshToken)
		if err != nil {
			return err
		}
		if row == nil || l.now().After(row.ExpiresAt) {
			return apperr.New(apperr.ErrInvalidCredential, "Invalid Refresh Token")
		}
		account, err := l.accountRepo.GetByID(inner, row.UserID)
		if err != nil {
			return err
		}
		if account == nil {
			return apperr.New(apperr.ErrInvalidCredential, "Invalid Refresh Token")
		}
		if err := l.userTokenRepo.DeleteByIDs(inner, []uuid.UUID{row.ID}); err != nil {
			return err
		}
		sess, err = l.issue(inner, account.ID, account.Email)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (l *LocalIdentity) GetUser(ctx context.Context, accessToken string) (*Identity, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(l.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(l.now))
	if err != nil || !token.Valid {
		return nil, apperr.New(apperr.ErrInvalidCredential, "invalid JWT")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperr.New(apperr.ErrInvalidCredential, "invalid JWT subject")
	}

	// Signed-out tokens are removed from user_tokens even before they expire.
	row, err := l.userTokenRepo.GetByAccessToken(dbctx.New(ctx), accessToken)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if row == nil {
		return nil, apperr.New(apperr.ErrInvalidCredential, "session not found")
	}
	return &Identity{UserID: userID, Email: claims.Email}, nil
}

func (l *LocalIdentity) SignOut(ctx context.Context, accessToken string) error {
	dbc := dbctx.New(ctx)
	if err := l.userTokenRepo.DeleteByAccessToken(dbc, accessToken); err != nil {
		return err
	}
	if n, err := l.userTokenRepo.DeleteExpired(dbc, l.now()); err != nil {
		l.log.Warn("Pruning expired sessions failed", "error", err)
	} else if n > 0 {
		l.log.Debug("Pruned expired sessions", "count", n)
	}
	return nil
}

func (l *LocalIdentity) AuthorizeURL(provider, redirectTo, codeChallenge string) (string, error) {
	return "", apperr.Newf(apperr.ErrInvalidInput, "sign-in with %q is not available", provider)
}

func (l *LocalIdentity) issue(dbc dbctx.Context, userID uuid.UUID, email string) (*Session, error) {
	now := l.now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.cfg.AccessTTL)),
			ID:        uuid.NewString(),
		},
		Email: email,
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(l.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := randomToken(32)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if _, err := l.userTokenRepo.Create(dbc, []*types.UserToken{{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(l.cfg.RefreshTTL),
	}}); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(l.cfg.AccessTTL.Seconds()),
		Identity:     Identity{UserID: userID, Email: email},
	}, nil
}
