// Package idp is a thin client for the OpenID Connect identity provider
// that backs the platform. It covers the two surfaces the services need:
// the public token endpoint (password and refresh grants, logout) and the
// realm admin API (user lookup, creation, credentials, role mappings).
package idp

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Client talks to a single realm of the identity provider on behalf of one
// OAuth2 client. The zero value is not usable; construct with NewClient.
type Client struct {
	BaseURL    string
	Realm      string
	ClientID   string
	HTTPClient *http.Client

	clientSecret string
}

// NewClient creates a realm-scoped provider client. The secret may be empty
// for public clients.
func NewClient(baseURL, realm, clientID, clientSecret string) *Client {
	return &Client{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		Realm:    realm,
		ClientID: clientID,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		clientSecret: clientSecret,
	}
}

// realmURL builds a URL under the realm's public endpoints.
func (c *Client) realmURL(path string) string {
	return c.BaseURL + "/realms/" + c.Realm + path
}

// adminURL builds a URL under the realm's admin API.
func (c *Client) adminURL(path string) string {
	return c.BaseURL + "/admin/realms/" + c.Realm + path
}

// Admin returns an admin-API client whose requests authenticate with the
// client_credentials grant. The returned client caches and refreshes its
// service-account token transparently via the oauth2 token source.
func (c *Client) Admin(ctx context.Context) *AdminClient {
	cfg := clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.clientSecret,
		TokenURL:     c.realmURL("/protocol/openid-connect/token"),
	}

	// Route the token exchange through our own HTTP client so its timeout
	// applies to the grant as well as the admin calls.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.HTTPClient)

	return &AdminClient{
		client:     c,
		httpClient: cfg.Client(ctx),
	}
}
