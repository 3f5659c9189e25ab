package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/renzoproject/workforce/internal/auth/service"
	"github.com/renzoproject/workforce/pkg/cookiex"
	"github.com/renzoproject/workforce/pkg/employeesdk"
	"github.com/renzoproject/workforce/pkg/idp"
	"github.com/renzoproject/workforce/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// stubVerifier accepts any token whose value is a known principal name and
// returns canned claims for it.
type stubVerifier struct {
	principals map[string]jwtx.Claims
}

func (s *stubVerifier) Verify(_ context.Context, token string) (jwtx.Claims, error) {
	c, ok := s.principals[token]
	if !ok {
		return jwtx.Claims{}, jwtx.ErrInvalidSig
	}
	return c, nil
}

type fakeProvider struct {
	tok      *idp.TokenResponse
	grantErr error

	passwordCalls int
	refreshCalls  int
	logoutCalls   int
}

func (f *fakeProvider) PasswordGrant(_ context.Context, _, _ string) (*idp.TokenResponse, error) {
	f.passwordCalls++
	if f.grantErr != nil {
		return nil, f.grantErr
	}
	return f.tok, nil
}

func (f *fakeProvider) RefreshGrant(_ context.Context, _ string) (*idp.TokenResponse, error) {
	f.refreshCalls++
	if f.grantErr != nil {
		return nil, f.grantErr
	}
	return f.tok, nil
}

func (f *fakeProvider) Logout(_ context.Context, _ string) error {
	f.logoutCalls++
	return nil
}

type fakeAdmin struct {
	roles    map[string][]string
	rolesErr error

	emailTaken bool
	userID     string
}

func (f *fakeAdmin) EmailExists(_ context.Context, _ string) (bool, error) {
	return f.emailTaken, nil
}

func (f *fakeAdmin) CreateUser(_ context.Context, _ idp.UserRepresentation) (string, error) {
	return f.userID, nil
}

func (f *fakeAdmin) SetPassword(_ context.Context, _, _ string) error { return nil }

func (f *fakeAdmin) AssignRealmRoles(_ context.Context, _ string, _ []string) error { return nil }

func (f *fakeAdmin) UserRealmRoles(_ context.Context, userID string) ([]string, error) {
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return f.roles[userID], nil
}

type fakeEmployees struct {
	err error
}

func (f *fakeEmployees) CreateEmployee(_ context.Context, req employeesdk.NewEmployeeRequest, _ string) (*employeesdk.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &employeesdk.Employee{ID: "emp-1", FirstName: req.FirstName}, nil
}

func newAuthRouter(t *testing.T, provider *fakeProvider, admin *fakeAdmin, employees *fakeEmployees) *Router {
	t.Helper()

	verifier := &stubVerifier{principals: map[string]jwtx.Claims{
		"admin-token": {
			RegisteredClaims:  jwt.RegisteredClaims{Subject: "admin-1"},
			PreferredUsername: "root",
			RealmAccess:       jwtx.RealmAccess{Roles: []string{"ADMIN"}},
		},
		"user-token": {
			RegisteredClaims:  jwt.RegisteredClaims{Subject: "user-7"},
			PreferredUsername: "jdoe",
			Name:              "Jane Doe",
			GivenName:         "Jane",
			FamilyName:        "Doe",
			Email:             "jane.doe@example.com",
			RealmAccess:       jwtx.RealmAccess{Roles: []string{"VIEWER"}},
		},
	}}

	r := NewRouter(verifier, "test", cookiex.DefaultPolicy(), slog.Default())
	r.AuthService = &service.AuthService{
		IdP:       provider,
		Admin:     admin,
		Employees: employees,
	}
	r.ApplyRoutes()
	return r
}

func do(t *testing.T, router *Router, method, path, token, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func cookieByName(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestLoginSetsSessionCookies(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{tok: &idp.TokenResponse{AccessToken: "at-1", RefreshToken: "rt-1"}}
	router := newAuthRouter(t, provider, &fakeAdmin{}, &fakeEmployees{})

	w := do(t, router, http.MethodPost, "/auth/login", "", `{"username":"jdoe","password":"hunter2!"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Body.String())

	access := cookieByName(t, w, cookiex.AccessTokenCookie)
	require.Equal(t, "at-1", access.Value)
	require.True(t, access.HttpOnly)
	require.True(t, access.Secure)
	require.Equal(t, http.SameSiteStrictMode, access.SameSite)

	refresh := cookieByName(t, w, cookiex.RefreshTokenCookie)
	require.Equal(t, "rt-1", refresh.Value)
	require.True(t, refresh.HttpOnly)
}

func TestLoginRejectionSetsNoCookies(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{grantErr: idp.ErrInvalidCredentials}
	router := newAuthRouter(t, provider, &fakeAdmin{}, &fakeEmployees{})

	w := do(t, router, http.MethodPost, "/auth/login", "", `{"username":"jdoe","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	require.Empty(t, w.Result().Cookies())
}

func TestLoginProviderOutageIsUnauthorized(t *testing.T) {
	t.Parallel()

	// A hung provider surfaces as a deadline error, not a credential
	// rejection; the browser must still see the uniform 401.
	provider := &fakeProvider{grantErr: context.DeadlineExceeded}
	router := newAuthRouter(t, provider, &fakeAdmin{}, &fakeEmployees{})

	w := do(t, router, http.MethodPost, "/auth/login", "", `{"username":"jdoe","password":"hunter2!"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	require.Empty(t, w.Result().Cookies())
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	t.Run("reissues the access cookie only", func(t *testing.T) {
		provider := &fakeProvider{tok: &idp.TokenResponse{AccessToken: "at-2", RefreshToken: "rt-2"}}
		router := newAuthRouter(t, provider, &fakeAdmin{}, &fakeEmployees{})

		w := do(t, router, http.MethodPost, "/auth/refresh", "", "",
			&http.Cookie{Name: cookiex.RefreshTokenCookie, Value: "rt-1"})
		require.Equal(t, http.StatusOK, w.Code)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, cookiex.AccessTokenCookie, cookies[0].Name)
		require.Equal(t, "at-2", cookies[0].Value)
	})

	t.Run("missing cookie is a 401 without a provider call", func(t *testing.T) {
		provider := &fakeProvider{}
		router := newAuthRouter(t, provider, &fakeAdmin{}, &fakeEmployees{})

		w := do(t, router, http.MethodPost, "/auth/refresh", "", "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Zero(t, provider.refreshCalls)
	})

	t.Run("rejected refresh token is a 401", func(t *testing.T) {
		provider := &fakeProvider{grantErr: idp.ErrInvalidCredentials}
		router := newAuthRouter(t, provider, &fakeAdmin{}, &fakeEmployees{})

		w := do(t, router, http.MethodPost, "/auth/refresh", "", "",
			&http.Cookie{Name: cookiex.RefreshTokenCookie, Value: "stale"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("provider outage is a 401 with no reissued cookie", func(t *testing.T) {
		provider := &fakeProvider{grantErr: context.DeadlineExceeded}
		router := newAuthRouter(t, provider, &fakeAdmin{}, &fakeEmployees{})

		w := do(t, router, http.MethodPost, "/auth/refresh", "", "",
			&http.Cookie{Name: cookiex.RefreshTokenCookie, Value: "rt-1"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
		require.Empty(t, w.Result().Cookies())
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("clears both cookies and revokes the session", func(t *testing.T) {
		provider := &fakeProvider{}
		router := newAuthRouter(t, provider, &fakeAdmin{}, &fakeEmployees{})

		w := do(t, router, http.MethodPost, "/auth/logout", "", "",
			&http.Cookie{Name: cookiex.RefreshTokenCookie, Value: "rt-1"})
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, 1, provider.logoutCalls)

		for _, name := range []string{cookiex.AccessTokenCookie, cookiex.RefreshTokenCookie} {
			c := cookieByName(t, w, name)
			require.Empty(t, c.Value)
			require.Equal(t, -1, c.MaxAge)
		}
	})

	t.Run("without a session it still clears cookies, repeatably", func(t *testing.T) {
		provider := &fakeProvider{}
		router := newAuthRouter(t, provider, &fakeAdmin{}, &fakeEmployees{})

		first := do(t, router, http.MethodPost, "/auth/logout", "", "")
		second := do(t, router, http.MethodPost, "/auth/logout", "", "")

		for _, w := range []*httptest.ResponseRecorder{first, second} {
			require.Equal(t, http.StatusOK, w.Code)
			require.Len(t, w.Result().Cookies(), 2)
		}
		require.Equal(t, first.Header().Values("Set-Cookie"), second.Header().Values("Set-Cookie"))
		require.Zero(t, provider.logoutCalls)
	})
}

func TestSessionRequiresToken(t *testing.T) {
	t.Parallel()

	router := newAuthRouter(t, &fakeProvider{}, &fakeAdmin{}, &fakeEmployees{})

	w := do(t, router, http.MethodGet, "/auth/session", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodGet, "/auth/session", "user-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"authenticated":true}`, w.Body.String())
}

func TestUserInfoFromClaims(t *testing.T) {
	t.Parallel()

	router := newAuthRouter(t, &fakeProvider{}, &fakeAdmin{}, &fakeEmployees{})

	w := do(t, router, http.MethodGet, "/auth/user-info", "user-token", "")
	require.Equal(t, http.StatusOK, w.Code)

	var details AccountDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	require.Equal(t, "user-7", details.UserID)
	require.Equal(t, "jdoe", details.Username)
	require.Equal(t, "Jane Doe", details.FullName)
	require.Equal(t, "jane.doe@example.com", details.Email)
}

func TestTokenEchoesBearer(t *testing.T) {
	t.Parallel()

	router := newAuthRouter(t, &fakeProvider{}, &fakeAdmin{}, &fakeEmployees{})

	w := do(t, router, http.MethodGet, "/auth/token", "user-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-token", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestRoleEndpoints(t *testing.T) {
	t.Parallel()

	admin := &fakeAdmin{roles: map[string][]string{
		"user-7":  {"VIEWER"},
		"user-42": {"ADMIN", "VIEWER"},
	}}

	t.Run("roles/me resolves the caller", func(t *testing.T) {
		router := newAuthRouter(t, &fakeProvider{}, admin, &fakeEmployees{})

		w := do(t, router, http.MethodGet, "/auth/roles/me", "user-token", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `["VIEWER"]`, w.Body.String())
	})

	t.Run("roles by user id requires ADMIN", func(t *testing.T) {
		router := newAuthRouter(t, &fakeProvider{}, admin, &fakeEmployees{})

		w := do(t, router, http.MethodGet, "/auth/roles/user-42", "user-token", "")
		require.Equal(t, http.StatusForbidden, w.Code)
		require.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())

		w = do(t, router, http.MethodGet, "/auth/roles/user-42", "admin-token", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `["ADMIN","VIEWER"]`, w.Body.String())
	})

	t.Run("provider outage is a 502", func(t *testing.T) {
		broken := &fakeAdmin{rolesErr: errors.New("admin API down")}
		router := newAuthRouter(t, &fakeProvider{}, broken, &fakeEmployees{})

		w := do(t, router, http.MethodGet, "/auth/roles/me", "user-token", "")
		require.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	body := `{
		"username": "jdoe",
		"password": "hunter2!",
		"role": "VIEWER",
		"employee": {
			"firstName": "Jane",
			"lastName": "Doe",
			"jobTitle": "Engineer",
			"contactInformation": {"email": "jane.doe@example.com", "phoneNumber": "555-0100"}
		}
	}`

	t.Run("success reports the provider account id", func(t *testing.T) {
		router := newAuthRouter(t, &fakeProvider{}, &fakeAdmin{userID: "user-42"}, &fakeEmployees{})

		w := do(t, router, http.MethodPost, "/auth/register", "", body)
		require.Equal(t, http.StatusOK, w.Code)

		var resp service.RegisterResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, "user-42", resp.UserID)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		router := newAuthRouter(t, &fakeProvider{}, &fakeAdmin{emailTaken: true}, &fakeEmployees{})

		w := do(t, router, http.MethodPost, "/auth/register", "", body)
		require.Equal(t, http.StatusConflict, w.Code)
		require.JSONEq(t, `{"error":"email already exists"}`, w.Body.String())
	})

	t.Run("invalid payload is a 400", func(t *testing.T) {
		router := newAuthRouter(t, &fakeProvider{}, &fakeAdmin{}, &fakeEmployees{})

		w := do(t, router, http.MethodPost, "/auth/register", "", `{"username":""}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("employee service outage is a 502", func(t *testing.T) {
		router := newAuthRouter(t, &fakeProvider{}, &fakeAdmin{userID: "user-42"},
			&fakeEmployees{err: errors.New("connection refused")})

		w := do(t, router, http.MethodPost, "/auth/register", "", body)
		require.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestHealthEndpointsArePublic(t *testing.T) {
	t.Parallel()

	router := newAuthRouter(t, &fakeProvider{}, &fakeAdmin{}, &fakeEmployees{})

	for _, path := range []string{"/livez", "/readyz"} {
		w := do(t, router, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}
