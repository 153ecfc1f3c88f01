package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Page is a rendered GET response kept for one user and path.
type Page struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// PageCache stores per-user rendered views. Invalidate drops the given paths
// for one user; mutations call it after a successful write. InvalidateUser
// drops every page the user has cached and runs on sign-out.
type PageCache interface {
	Get(ctx context.Context, userID uuid.UUID, path string) (*Page, bool, error)
	Set(ctx context.Context, userID uuid.UUID, path string, page *Page) error
	Invalidate(ctx context.Context, userID uuid.UUID, paths ...string) error
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
}

func Key(userID uuid.UUID, path string) string {
	return fmt.Sprintf("page:%s:%s", userID.String(), path)
}

const DefaultTTL = 60 * time.Second
