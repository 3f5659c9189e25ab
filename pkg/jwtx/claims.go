package jwtx

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims this platform cares about. Tokens are
// minted by the identity provider and relayed unmodified, so the shape here
// mirrors the provider's token rather than anything we control.
type Claims struct {
	jwt.RegisteredClaims

	// RealmAccess carries the provider's role list ("realm_access.roles").
	RealmAccess RealmAccess `json:"realm_access,omitempty"`

	/* Profile claims, present on user tokens */

	PreferredUsername string `json:"preferred_username,omitempty"`
	Name              string `json:"name,omitempty"`
	GivenName         string `json:"given_name,omitempty"`
	FamilyName        string `json:"family_name,omitempty"`
	Email             string `json:"email,omitempty"`
}

// RealmAccess is the roles container claim. Its unmarshaller is tolerant:
// a missing claim, a non-object value, or a roles entry that is not a list
// of strings all decode to zero roles rather than a parse failure.
type RealmAccess struct {
	Roles []string `json:"roles"`
}

func (ra *RealmAccess) UnmarshalJSON(data []byte) error {
	ra.Roles = nil

	var probe struct {
		Roles []any `json:"roles"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil // wrong shape means no authorities, not an error
	}

	for _, r := range probe.Roles {
		if s, ok := r.(string); ok {
			ra.Roles = append(ra.Roles, s)
		}
	}
	return nil
}

// Roles returns the authority list from the roles claim, preserving the
// claim's ordering. Absent roles yield an empty, non-nil slice.
func (c *Claims) Roles() []string {
	if c.RealmAccess.Roles == nil {
		return []string{}
	}
	return c.RealmAccess.Roles
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
