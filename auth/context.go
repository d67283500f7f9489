package auth

import (
	"context"
)

const (
	usernameKey privateKey = "username"
)

type privateKey string

// SetUsername stores the signed-in username on the context.
func SetUsername(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, usernameKey, name)
}

// GetUsername returns the signed-in username, or "" when the request is
// anonymous.
func GetUsername(ctx context.Context) string {
	if temp := ctx.Value(usernameKey); temp != nil {
		if name, ok := temp.(string); ok {
			return name
		}
	}
	return ""
}
