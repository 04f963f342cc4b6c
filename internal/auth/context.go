package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/agencyhub/internal/models"
)

// Session is the caller identity carried by a verified access token.
type Session struct {
	UserID uuid.UUID
	Email  string
}

type contextKey string

const (
	sessionKey contextKey = "session"
	profileKey contextKey = "profile"
)

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// UserID returns the caller id, or uuid.Nil for anonymous requests.
func UserID(ctx context.Context) uuid.UUID {
	if s := SessionFromContext(ctx); s != nil {
		return s.UserID
	}
	return uuid.Nil
}

func WithProfile(ctx context.Context, p *models.Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

func ProfileFromContext(ctx context.Context) *models.Profile {
	p, _ := ctx.Value(profileKey).(*models.Profile)
	return p
}
