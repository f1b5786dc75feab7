package contexthelpers

import (
	"context"
	"net/http"
	"time"
)

func AuthenticateContext(r *http.Request, userID int) *http.Request {
	return r.WithContext(WithUser(r.Context(), userID))
}

// WithUser marks ctx as authenticated for userID. Used outside HTTP handlers, e.g. in the CLI and tests.
func WithUser(ctx context.Context, userID int) context.Context {
	ctx = context.WithValue(ctx, IsAuthenticatedContextKey, true)
	return context.WithValue(ctx, AuthenticatedUserIDContextKey, userID)
}

func SetCurrentPath(r *http.Request, currentPath string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, CurrentPathContextKey, currentPath)
	return r.WithContext(ctx)
}

func SetTimezone(r *http.Request, loc *time.Location) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, TimezoneContextKey, loc)
	return r.WithContext(ctx)
}
