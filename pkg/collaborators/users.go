package collaborators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ErrUserNotFound is returned when the directory has no user for an id.
var ErrUserNotFound = errors.New("user not found")

// User is a directory entry an assign_conversation action can target.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserDirectory resolves assignable users for assign_conversation actions.
type UserDirectory struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewUserDirectory creates a user directory client.
func NewUserDirectory(baseURL string, logger *slog.Logger) *UserDirectory {
	return &UserDirectory{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
		logger:  logger,
	}
}

// Users lists the assignable users.
func (d *UserDirectory) Users(ctx context.Context) ([]*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/users", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query user directory: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			d.logger.WarnContext(ctx, "failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user directory returned status %d", resp.StatusCode)
	}

	var users []*User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode directory response: %w", err)
	}

	return users, nil
}

// UserByID resolves a single user.
func (d *UserDirectory) UserByID(ctx context.Context, id string) (*User, error) {
	endpoint := d.baseURL + "/users/" + url.PathEscape(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query user directory: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			d.logger.WarnContext(ctx, "failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("user %s: %w", id, ErrUserNotFound)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user directory returned status %d", resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode directory response: %w", err)
	}

	return &user, nil
}
