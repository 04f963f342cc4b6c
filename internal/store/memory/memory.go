// Package memory is an in-process implementation of every store interface.
// It backs the tests and lets the API run in development without Postgres.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/agencyhub/internal/agency"
	"github.com/nikhilbhutani/agencyhub/internal/audit"
	"github.com/nikhilbhutani/agencyhub/internal/claim"
	"github.com/nikhilbhutani/agencyhub/internal/models"
	"github.com/nikhilbhutani/agencyhub/internal/store"
)

type Store struct {
	mu         sync.RWMutex
	seq        int
	order      map[uuid.UUID]int
	profiles   map[uuid.UUID]models.Profile
	identities map[uuid.UUID]string
	users      map[uuid.UUID]string
	agencies   map[uuid.UUID]models.Agency
	claims     map[uuid.UUID]models.ClaimRequest
	compliance map[uuid.UUID]map[models.ComplianceType]models.ComplianceItem
	labor      map[uuid.UUID]models.LaborRequest
	audit      []models.AuditLog
}

func New() *Store {
	return &Store{
		order:      make(map[uuid.UUID]int),
		profiles:   make(map[uuid.UUID]models.Profile),
		identities: make(map[uuid.UUID]string),
		users:      make(map[uuid.UUID]string),
		agencies:   make(map[uuid.UUID]models.Agency),
		claims:     make(map[uuid.UUID]models.ClaimRequest),
		compliance: make(map[uuid.UUID]map[models.ComplianceType]models.ComplianceItem),
		labor:      make(map[uuid.UUID]models.LaborRequest),
	}
}

func (s *Store) track(id uuid.UUID) {
	s.seq++
	s.order[id] = s.seq
}

// newerFirst orders by created_at descending, then by insertion descending.
func (s *Store) newerFirst(aID uuid.UUID, aAt time.Time, bID uuid.UUID, bAt time.Time) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return s.order[aID] > s.order[bID]
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// Users and identities stand in for the auth provider's tables.

// AddUser registers an auth user with a matching identity row.
func (s *Store) AddUser(id uuid.UUID, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = email
	s.identities[id] = email
}

func (s *Store) FindUserIDByEmail(_ context.Context, email string) (uuid.UUID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, e := range s.users {
		if strings.EqualFold(e, email) {
			return id, true, nil
		}
	}
	return uuid.Nil, false, nil
}

func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) DeleteIdentitiesByEmail(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.identities {
		if strings.EqualFold(e, email) {
			delete(s.identities, id)
			n++
		}
	}
	return n, nil
}

// Profiles

func (s *Store) PutProfile(p models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.profiles[p.ID] = p
}

func (s *Store) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListProfiles(_ context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) DeleteProfilesByEmail(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, p := range s.profiles {
		if strings.EqualFold(p.Email, email) {
			delete(s.profiles, id)
			n++
		}
	}
	return n, nil
}

// Agencies

func (s *Store) ListAgencies(_ context.Context, f agency.Filter) ([]models.Agency, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	var matched []models.Agency
	for _, a := range s.agencies {
		if search != "" && !strings.Contains(strings.ToLower(a.Name), search) {
			continue
		}
		switch f.Status {
		case agency.StatusActive:
			if !a.IsActive {
				continue
			}
		case agency.StatusInactive:
			if a.IsActive {
				continue
			}
		}
		switch f.Claimed {
		case agency.ClaimedYes:
			if !a.IsClaimed {
				continue
			}
		case agency.ClaimedNo:
			if a.IsClaimed {
				continue
			}
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		return s.newerFirst(matched[i].ID, matched[i].CreatedAt, matched[j].ID, matched[j].CreatedAt)
	})
	return page(matched, f.Limit, f.Offset), len(matched), nil
}

func (s *Store) GetAgency(_ context.Context, id uuid.UUID) (*models.Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agencies[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *Store) GetAgencyBySlug(_ context.Context, slug string) (*models.Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.agencies {
		if a.Slug == slug {
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) AgencyNameExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.agencies {
		if strings.EqualFold(a.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) AgencySlugExists(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slugTaken(slug), nil
}

func (s *Store) slugTaken(slug string) bool {
	for _, a := range s.agencies {
		if a.Slug == slug {
			return true
		}
	}
	return false
}

func (s *Store) InsertAgency(_ context.Context, a *models.Agency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agencies[a.ID]; ok || s.slugTaken(a.Slug) {
		return store.ErrDuplicate
	}
	for _, other := range s.agencies {
		if strings.EqualFold(other.Name, a.Name) {
			return store.ErrDuplicateName
		}
	}
	s.agencies[a.ID] = *a
	s.track(a.ID)
	return nil
}

func (s *Store) SetAgencyStatus(_ context.Context, id uuid.UUID, active bool, editor uuid.UUID, at time.Time) (*models.Agency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agencies[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	a.IsActive = active
	a.LastEditedBy = &editor
	a.LastEditedAt = &at
	a.UpdatedAt = at
	s.agencies[id] = a
	return &a, nil
}

func (s *Store) UpdateAgencyProfile(_ context.Context, a *models.Agency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.agencies[a.ID]
	if !ok {
		return store.ErrNotFound
	}
	cur.ApplyFields(a.Fields())
	cur.ProfileCompletionPercentage = a.ProfileCompletionPercentage
	cur.LastEditedBy = a.LastEditedBy
	cur.LastEditedAt = a.LastEditedAt
	cur.UpdatedAt = a.UpdatedAt
	s.agencies[a.ID] = cur
	return nil
}

// Claims

func (s *Store) HasOpenClaim(_ context.Context, agencyID, userID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openClaim(agencyID, userID), nil
}

func (s *Store) openClaim(agencyID, userID uuid.UUID) bool {
	for _, c := range s.claims {
		if c.AgencyID == agencyID && c.UserID == userID && !c.Status.Terminal() {
			return true
		}
	}
	return false
}

func (s *Store) InsertClaim(_ context.Context, c *models.ClaimRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openClaim(c.AgencyID, c.UserID) {
		return store.ErrDuplicate
	}
	s.claims[c.ID] = *c
	s.track(c.ID)
	return nil
}

func (s *Store) GetClaim(_ context.Context, id uuid.UUID) (*models.ClaimRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c.AgencyName = s.agencies[c.AgencyID].Name
	return &c, nil
}

func (s *Store) ListClaims(_ context.Context, f claim.Filter) ([]models.ClaimRequest, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.ClaimRequest
	for _, c := range s.claims {
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		if f.UserID != nil && c.UserID != *f.UserID {
			continue
		}
		c.AgencyName = s.agencies[c.AgencyID].Name
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool {
		return s.newerFirst(matched[i].ID, matched[i].CreatedAt, matched[j].ID, matched[j].CreatedAt)
	})
	return page(matched, f.Limit, f.Offset), len(matched), nil
}

func (s *Store) ApproveClaim(_ context.Context, id, reviewer uuid.UUID, at time.Time, check func(*models.ClaimRequest, *models.Agency) error) (*models.ClaimRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	a, ok := s.agencies[c.AgencyID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := check(&c, &a); err != nil {
		return nil, err
	}

	a.IsClaimed = true
	a.ClaimedBy = &c.UserID
	a.ClaimedAt = &at
	a.UpdatedAt = at
	s.agencies[a.ID] = a

	c.Status = models.ClaimStatusApproved
	c.ReviewedBy = &reviewer
	c.ReviewedAt = &at
	c.UpdatedAt = at
	s.claims[id] = c

	if p, ok := s.profiles[c.UserID]; ok && p.Role == models.RoleUser {
		p.Role = models.RoleAgencyOwner
		s.profiles[p.ID] = p
	}

	c.AgencyName = a.Name
	return &c, nil
}

func (s *Store) TransitionClaim(_ context.Context, id uuid.UUID, next models.ClaimStatus, reviewer uuid.UUID, at time.Time, reason *string, check func(*models.ClaimRequest) error) (*models.ClaimRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := check(&c); err != nil {
		return nil, err
	}
	c.Status = next
	c.ReviewedBy = &reviewer
	c.ReviewedAt = &at
	c.UpdatedAt = at
	if reason != nil {
		c.RejectionReason = reason
	}
	s.claims[id] = c

	c.AgencyName = s.agencies[c.AgencyID].Name
	return &c, nil
}

// Compliance

func (s *Store) ListCompliance(_ context.Context, agencyID uuid.UUID) ([]models.ComplianceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.compliance[agencyID]
	out := make([]models.ComplianceItem, 0, len(rows))
	for _, t := range models.ComplianceTypes {
		if it, ok := rows[t]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *Store) UpsertCompliance(_ context.Context, items []models.ComplianceItem) ([]models.ComplianceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		if _, ok := s.agencies[it.AgencyID]; !ok {
			return nil, store.ErrNotFound
		}
	}
	out := make([]models.ComplianceItem, len(items))
	for i, it := range items {
		rows := s.compliance[it.AgencyID]
		if rows == nil {
			rows = make(map[models.ComplianceType]models.ComplianceItem)
			s.compliance[it.AgencyID] = rows
		}
		if cur, ok := rows[it.Type]; ok {
			it.ID = cur.ID
			it.CreatedAt = cur.CreatedAt
		}
		rows[it.Type] = it
		out[i] = it
	}
	return out, nil
}

// Labor requests

func (s *Store) InsertLaborRequest(_ context.Context, r *models.LaborRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.labor[r.ID]; ok {
		return store.ErrDuplicate
	}
	cp := *r
	cp.Crafts = append([]models.CraftRequirement(nil), r.Crafts...)
	s.labor[r.ID] = cp
	s.track(r.ID)
	return nil
}

func (s *Store) ListLaborRequests(_ context.Context, limit, offset int) ([]models.LaborRequest, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]models.LaborRequest, 0, len(s.labor))
	for _, r := range s.labor {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		return s.newerFirst(all[i].ID, all[i].CreatedAt, all[j].ID, all[j].CreatedAt)
	})
	return page(all, limit, offset), len(all), nil
}

// Audit log

func (s *Store) InsertAuditLog(_ context.Context, l *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, *l)
	s.track(l.ID)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, q audit.Query) ([]models.AuditLog, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.AuditLog
	for _, l := range s.audit {
		if q.Action != "" && l.Action != q.Action {
			continue
		}
		if q.ActorID != nil && (l.ActorID == nil || *l.ActorID != *q.ActorID) {
			continue
		}
		if q.StartDate != nil && l.CreatedAt.Before(*q.StartDate) {
			continue
		}
		if q.EndDate != nil && l.CreatedAt.After(*q.EndDate) {
			continue
		}
		matched = append(matched, l)
	}
	sort.Slice(matched, func(i, j int) bool {
		return s.newerFirst(matched[i].ID, matched[i].CreatedAt, matched[j].ID, matched[j].CreatedAt)
	})
	return page(matched, q.Limit, q.Offset), len(matched), nil
}
