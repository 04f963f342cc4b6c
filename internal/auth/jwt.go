package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/agencyhub/internal/api/render"
	"github.com/nikhilbhutani/agencyhub/internal/apperr"
	"github.com/nikhilbhutani/agencyhub/internal/models"
)

// Claims are the Supabase access token claims the service reads.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ProfileLookup resolves the caller's profile row.
type ProfileLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

type Middleware struct {
	secret   []byte
	profiles ProfileLookup
}

func NewMiddleware(secret string, profiles ProfileLookup) *Middleware {
	return &Middleware{
		secret:   []byte(secret),
		profiles: profiles,
	}
}

// Authenticate attaches the session when a bearer token is present. Requests
// without a token pass through anonymously; an invalid token is rejected.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractBearerToken(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.Verify(tokenStr)
		if err != nil {
			render.Error(w, r, apperr.Unauthorized("invalid or expired session"))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// Verify parses an HS256 access token and returns its session.
func (m *Middleware) Verify(tokenStr string) (*Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	return &Session{UserID: userID, Email: claims.Email}, nil
}

// RequireUser rejects anonymous requests with 401.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) == nil {
			render.Error(w, r, apperr.Unauthorized("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin lets through only callers whose profile role is admin. It runs
// before any body is read, so non-admins get 403 whatever they send.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session == nil {
			render.Error(w, r, apperr.Unauthorized("authentication required"))
			return
		}

		p, err := m.profiles.Get(r.Context(), session.UserID)
		if err != nil {
			render.Error(w, r, apperr.Database(err))
			return
		}
		if !p.IsAdmin() {
			render.Error(w, r, apperr.Forbidden("admin access required"))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), p)))
	})
}

// LoadProfile attaches the caller's profile when there is a session, for
// handlers that branch on role without requiring one.
func (m *Middleware) LoadProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session == nil {
			next.ServeHTTP(w, r)
			return
		}
		p, err := m.profiles.Get(r.Context(), session.UserID)
		if err != nil {
			render.Error(w, r, apperr.Database(err))
			return
		}
		if p != nil {
			r = r.WithContext(WithProfile(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
