package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SupabaseAdmin calls the GoTrue admin API with the service role key.
type SupabaseAdmin struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	perPage    int
}

func NewSupabaseAdmin(supabaseURL, serviceKey string) *SupabaseAdmin {
	return &SupabaseAdmin{
		baseURL:    strings.TrimRight(supabaseURL, "/") + "/auth/v1",
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		perPage:    200,
	}
}

type adminUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type listUsersResponse struct {
	Users []adminUser `json:"users"`
}

// FindUserIDByEmail pages through the auth users and matches the email
// case-insensitively.
func (a *SupabaseAdmin) FindUserIDByEmail(ctx context.Context, email string) (uuid.UUID, bool, error) {
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/admin/users?page=%d&per_page=%d", a.baseURL, page, a.perPage)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("create list users request: %w", err)
		}
		a.authorize(req)

		resp, err := a.httpClient.Do(req)
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("list users: %w", err)
		}

		var body listUsersResponse
		err = decodeResponse(resp, &body)
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("list users: %w", err)
		}

		for _, u := range body.Users {
			if strings.EqualFold(u.Email, email) {
				return u.ID, true, nil
			}
		}
		if len(body.Users) < a.perPage {
			return uuid.Nil, false, nil
		}
	}
}

func (a *SupabaseAdmin) DeleteUser(ctx context.Context, id uuid.UUID) error {
	url := fmt.Sprintf("%s/admin/users/%s", a.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("create delete user request: %w", err)
	}
	a.authorize(req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := decodeResponse(resp, nil); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (a *SupabaseAdmin) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.serviceKey)
	req.Header.Set("apikey", a.serviceKey)
}

func decodeResponse(resp *http.Response, dst interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if dst == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
