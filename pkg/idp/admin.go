package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// AdminClient exposes the realm admin API. Its HTTP client carries a
// service-account token obtained via the client_credentials grant, so the
// backing OAuth2 client must have the realm management roles it needs
// (view-users, manage-users).
type AdminClient struct {
	client     *Client
	httpClient *http.Client
}

// UserRepresentation is the admin API's user payload. Only the fields the
// registration flow touches are modelled.
type UserRepresentation struct {
	ID            string `json:"id,omitempty"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	Enabled       bool   `json:"enabled"`
	EmailVerified bool   `json:"emailVerified"`
}

// RoleRepresentation is the admin API's realm role payload.
type RoleRepresentation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type credentialRepresentation struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

// EmailExists reports whether a user with exactly this email is already
// registered in the realm.
func (a *AdminClient) EmailExists(ctx context.Context, email string) (bool, error) {
	q := url.Values{
		"email": {email},
		"exact": {"true"},
	}

	var users []UserRepresentation
	if err := a.getJSON(ctx, "/users?"+q.Encode(), &users); err != nil {
		return false, err
	}
	return len(users) > 0, nil
}

// CreateUser creates a user and returns the provider-assigned id, which the
// admin API reports only through the Location header of the 201 response.
// A username or email collision returns ErrConflict.
func (a *AdminClient) CreateUser(ctx context.Context, user UserRepresentation) (string, error) {
	payload, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("failed to encode user: %w", err)
	}

	resp, err := a.do(ctx, http.MethodPost, "/users", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", errorFromResponse(resp.StatusCode, body)
	}

	location := resp.Header.Get("Location")
	id := location[strings.LastIndex(location, "/")+1:]
	if id == "" {
		return "", fmt.Errorf("idp: create user response missing Location header")
	}
	return id, nil
}

// SetPassword sets a permanent password credential on the user.
func (a *AdminClient) SetPassword(ctx context.Context, userID, password string) error {
	payload, err := json.Marshal(credentialRepresentation{
		Type:      "password",
		Value:     password,
		Temporary: false,
	})
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	resp, err := a.do(ctx, http.MethodPut, "/users/"+userID+"/reset-password", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return errorFromResponse(resp.StatusCode, body)
	}
	return nil
}

// RealmRole resolves a realm role by name, as needed for role mapping
// requests which address roles by id.
func (a *AdminClient) RealmRole(ctx context.Context, name string) (RoleRepresentation, error) {
	var role RoleRepresentation
	if err := a.getJSON(ctx, "/roles/"+url.PathEscape(name), &role); err != nil {
		return RoleRepresentation{}, err
	}
	return role, nil
}

// AssignRealmRoles maps the named realm roles onto the user. Roles that do
// not exist in the realm are skipped rather than failing the whole call.
func (a *AdminClient) AssignRealmRoles(ctx context.Context, userID string, names []string) error {
	var roles []RoleRepresentation
	for _, name := range names {
		role, err := a.RealmRole(ctx, name)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return err
		}
		roles = append(roles, role)
	}
	if len(roles) == 0 {
		return nil
	}

	payload, err := json.Marshal(roles)
	if err != nil {
		return fmt.Errorf("failed to encode roles: %w", err)
	}

	resp, err := a.do(ctx, http.MethodPost, "/users/"+userID+"/role-mappings/realm", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return errorFromResponse(resp.StatusCode, body)
	}
	return nil
}

// UserRealmRoles returns the names of the realm roles mapped to the user.
func (a *AdminClient) UserRealmRoles(ctx context.Context, userID string) ([]string, error) {
	var roles []RoleRepresentation
	if err := a.getJSON(ctx, "/users/"+userID+"/role-mappings/realm", &roles); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return names, nil
}

func (a *AdminClient) getJSON(ctx context.Context, path string, target any) error {
	resp, err := a.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return errorFromResponse(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (a *AdminClient) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.client.adminURL(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}
