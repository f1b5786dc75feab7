package contexthelpers

import (
	"context"
	"time"
)

func IsAuthenticated(ctx context.Context) bool {
	isAuthenticated, ok := ctx.Value(IsAuthenticatedContextKey).(bool)
	if !ok {
		return false
	}

	return isAuthenticated
}

// AuthenticatedUserID returns the id of the user owning every record touched in this request, or 0.
func AuthenticatedUserID(ctx context.Context) int {
	userID, ok := ctx.Value(AuthenticatedUserIDContextKey).(int)
	if !ok {
		return 0
	}

	return userID
}

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(CurrentPathContextKey).(string)
	if !ok {
		return ""
	}

	return currentPath
}

// Timezone returns the location used to turn instants into date keys. Defaults to UTC.
func Timezone(ctx context.Context) *time.Location {
	loc, ok := ctx.Value(TimezoneContextKey).(*time.Location)
	if !ok || loc == nil {
		return time.UTC
	}
	return loc
}
