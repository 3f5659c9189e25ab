package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// TokenResponse is the provider's token endpoint payload.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in,omitempty"`
	Scope            string `json:"scope,omitempty"`
}

// PasswordGrant exchanges a username and password for tokens. A rejected
// grant returns ErrInvalidCredentials.
func (c *Client) PasswordGrant(ctx context.Context, username, password string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	}
	return c.requestToken(ctx, data)
}

// RefreshGrant exchanges a refresh token for a fresh token pair. An expired
// or revoked refresh token returns ErrInvalidCredentials.
func (c *Client) RefreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return c.requestToken(ctx, data)
}

// Logout invalidates the provider-side session for the given refresh token.
// An already-invalid token is not an error; logout is idempotent from the
// caller's point of view.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	data := url.Values{
		"client_id":     {c.ClientID},
		"refresh_token": {refreshToken},
	}
	if c.clientSecret != "" {
		data.Set("client_secret", c.clientSecret)
	}

	resp, err := c.postForm(ctx, c.realmURL("/protocol/openid-connect/logout"), data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK, http.StatusBadRequest, http.StatusUnauthorized:
		// The provider answers 400/401 for tokens it no longer knows;
		// the session is gone either way.
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	return errorFromResponse(resp.StatusCode, body)
}

func (c *Client) requestToken(ctx context.Context, data url.Values) (*TokenResponse, error) {
	data.Set("client_id", c.ClientID)
	if c.clientSecret != "" {
		data.Set("client_secret", c.clientSecret)
	}

	resp, err := c.postForm(ctx, c.realmURL("/protocol/openid-connect/token"), data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp.StatusCode, body)
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &tokenResp, nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, data url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}
