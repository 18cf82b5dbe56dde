// Package auth identifies the user behind a request.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrExpired is returned when the user tries to authenticate with an expired token.
var ErrExpired = errors.New("token expired")

// Provider parses requests to extract authorization info.
type Provider interface {
	FromRequest(r *http.Request) (Info, error)
}

// Deleter removes a user's sign-in identity. It's called last when an
// account is deleted.
type Deleter interface {
	DeleteIdentity(ctx context.Context, id string) error
}

// Info stores information about the current user
type Info struct {
	ID       string
	Email    string
	Name     string
	PhotoURL string
	IsAdmin  bool

	// AuthTime is when the user last entered their credentials. It's zero when
	// the provider doesn't know.
	AuthTime time.Time
}

// WithContext decorates a context with this auth.Info object. Use auth.User
// to retrieve the auth.Info from the context.
func (i Info) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxMarkerKey, i)
}

// SignedInSince reports whether the user entered their credentials at or
// after t.
func (i Info) SignedInSince(t time.Time) bool {
	return !i.AuthTime.IsZero() && !i.AuthTime.Before(t)
}
