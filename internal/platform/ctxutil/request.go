package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData carries the caller's credentials and, once resolved, the
// caller's identity for the lifetime of a single request.
type RequestData struct {
	AccessToken  string
	RefreshToken string

	Resolved           bool
	Authenticated      bool
	UserID             uuid.UUID
	Email              string
	OnboardingComplete bool
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// WithAccessToken is a shorthand used by tests and background callers.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return WithRequestData(ctx, &RequestData{AccessToken: token})
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
