// Package cleanup removes every trace of a user account by email. It is an
// admin hygiene tool: each step runs even when an earlier one fails.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/agencyhub/internal/audit"
	"github.com/nikhilbhutani/agencyhub/internal/validation"
)

type Store interface {
	DeleteIdentitiesByEmail(ctx context.Context, email string) (int, error)
	DeleteProfilesByEmail(ctx context.Context, email string) (int, error)
}

// AuthAdmin is the auth provider's user administration API.
type AuthAdmin interface {
	FindUserIDByEmail(ctx context.Context, email string) (uuid.UUID, bool, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type Result struct {
	Email      string   `json:"email"`
	Identities int      `json:"identities"`
	Profiles   int      `json:"profiles"`
	Users      int      `json:"users"`
	Errors     []string `json:"errors"`
}

type Service struct {
	store Store
	auth  AuthAdmin
	audit *audit.Service
}

func NewService(s Store, a AuthAdmin, auditSvc *audit.Service) *Service {
	return &Service{store: s, auth: a, audit: auditSvc}
}

func (s *Service) Purge(ctx context.Context, in validation.UserCleanupInput) (*Result, error) {
	in.Normalize()
	if verr := validation.Struct(&in); verr != nil {
		return nil, verr
	}

	res := &Result{Email: in.Email, Errors: []string{}}
	// The cause stays in the server log; callers only learn which step failed.
	fail := func(step string, err error) {
		slog.Error("user cleanup step failed", "step", step, "email", in.Email, "error", err)
		res.Errors = append(res.Errors, step+": step failed")
	}

	if n, err := s.store.DeleteIdentitiesByEmail(ctx, in.Email); err != nil {
		fail("identities", err)
	} else {
		res.Identities = n
	}

	if n, err := s.store.DeleteProfilesByEmail(ctx, in.Email); err != nil {
		fail("profiles", err)
	} else {
		res.Profiles = n
	}

	if s.auth == nil {
		fail("users", fmt.Errorf("auth admin API is not configured"))
	} else if id, found, err := s.auth.FindUserIDByEmail(ctx, in.Email); err != nil {
		fail("users", err)
	} else if found {
		if err := s.auth.DeleteUser(ctx, id); err != nil {
			fail("users", err)
		} else {
			res.Users = 1
		}
	}

	s.audit.Log(ctx, audit.LogEntry{
		Action:       audit.ActionUserCleanup,
		ResourceType: "user",
		Details: map[string]interface{}{
			"email":      in.Email,
			"identities": res.Identities,
			"profiles":   res.Profiles,
			"users":      res.Users,
			"errors":     len(res.Errors),
		},
	})
	return res, nil
}
