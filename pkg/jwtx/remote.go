package jwtx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// discoveryDocument is the subset of the OIDC discovery document we need.
type discoveryDocument struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// RemoteVerifierOptions configures a RemoteVerifier.
type RemoteVerifierOptions struct {
	// IssuerURI is the identity provider's issuer. Tokens must carry it in
	// "iss", and it is used to discover the JWKS endpoint when JWKSURL is
	// not set explicitly.
	IssuerURI string

	// JWKSURL overrides OIDC discovery when the key endpoint is known.
	JWKSURL string

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration

	// HTTPClient is used for discovery and key fetches. Defaults to a
	// client with a 10s timeout so a hung provider can't wedge requests.
	HTTPClient *http.Client
}

// RemoteVerifier validates RS256 tokens against the identity provider's
// published key set. Keys are fetched lazily, cached per JWKS URL, and
// refreshed in the background; readers see the last successfully fetched
// set while a refresh is in flight.
type RemoteVerifier struct {
	issuer  string
	jwksURL string
	leeway  time.Duration

	cache  *jwk.Cache
	parser *jwt.Parser

	// Lazy JWKS registration so startup doesn't block on the provider.
	registerMu sync.Mutex
	registered bool
}

// NewRemoteVerifier builds a verifier for the given issuer. The JWKS URL is
// discovered from {issuer}/.well-known/openid-configuration unless provided.
func NewRemoteVerifier(ctx context.Context, opts RemoteVerifierOptions) (*RemoteVerifier, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	jwksURL := opts.JWKSURL
	if jwksURL == "" {
		if opts.IssuerURI == "" {
			return nil, errors.New("jwtx: issuer or JWKS URL required")
		}
		doc, err := discoverConfiguration(ctx, client, opts.IssuerURI)
		if err != nil {
			return nil, err
		}
		jwksURL = doc.JWKSURI
	}

	cache, err := jwk.NewCache(ctx, httprc.NewClient(httprc.WithHTTPClient(client)))
	if err != nil {
		return nil, fmt.Errorf("jwtx: create JWKS cache: %w", err)
	}

	return &RemoteVerifier{
		issuer:  opts.IssuerURI,
		jwksURL: jwksURL,
		leeway:  opts.Leeway,
		cache:   cache,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256"}),
			// Expiry and issuer are validated explicitly below so failures
			// map onto this package's sentinel errors.
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Verify implements Verifier: signature first, then issuer, then expiry.
func (v *RemoteVerifier) Verify(ctx context.Context, raw string) (Claims, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return v.keyFor(ctx, t)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownKID):
			return Claims{}, ErrUnknownKID
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, fmt.Errorf("%w: %w", ErrInvalidSig, err)
		}
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryWithLeeway(v.leeway); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// keyFor resolves the verification key for a parsed-but-unverified token.
func (v *RemoteVerifier) keyFor(ctx context.Context, t *jwt.Token) (any, error) {
	if err := v.ensureRegistered(ctx); err != nil {
		return nil, err
	}

	kid, ok := t.Header["kid"].(string)
	if !ok || kid == "" {
		return nil, ErrUnknownKID
	}

	set, err := v.cache.Lookup(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("jwtx: JWKS lookup: %w", err)
	}

	key, found := set.LookupKeyID(kid)
	if !found {
		return nil, ErrUnknownKID
	}

	var rawKey any
	if err := jwk.Export(key, &rawKey); err != nil {
		return nil, fmt.Errorf("jwtx: export key %q: %w", kid, err)
	}

	return rawKey, nil
}

// ensureRegistered registers the JWKS URL with the cache on first use.
// Registration performs the initial fetch, so doing it lazily keeps a slow
// provider from blocking process startup. Only success is remembered: a
// provider outage at first use is retried on the next verification instead
// of disabling validation for the life of the process.
func (v *RemoteVerifier) ensureRegistered(ctx context.Context) error {
	v.registerMu.Lock()
	defer v.registerMu.Unlock()

	if v.registered {
		return nil
	}

	regCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// A previous attempt may have added the resource before its initial
	// fetch failed; re-registering it would error.
	if v.cache.IsRegistered(regCtx, v.jwksURL) {
		v.registered = true
		return nil
	}

	if err := v.cache.Register(regCtx, v.jwksURL); err != nil {
		return fmt.Errorf("jwtx: register JWKS URL: %w", err)
	}
	v.registered = true

	return nil
}

// discoverConfiguration fetches the issuer's well-known OIDC document.
func discoverConfiguration(ctx context.Context, client *http.Client, issuer string) (*discoveryDocument, error) {
	wellKnown := strings.TrimSuffix(issuer, "/") + "/.well-known/openid-configuration"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnown, nil)
	if err != nil {
		return nil, fmt.Errorf("jwtx: create discovery request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jwtx: fetch OIDC configuration: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwtx: OIDC discovery returned status %d", resp.StatusCode)
	}

	var doc discoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("jwtx: decode OIDC configuration: %w", err)
	}
	if doc.JWKSURI == "" {
		return nil, errors.New("jwtx: OIDC configuration missing jwks_uri")
	}

	return &doc, nil
}
