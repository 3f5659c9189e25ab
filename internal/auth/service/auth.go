// Package service implements the auth service's business logic: session
// grants brokered to the identity provider and registration orchestration
// across the provider and the employee service.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/renzoproject/workforce/pkg/employeesdk"
	"github.com/renzoproject/workforce/pkg/idp"
	"github.com/renzoproject/workforce/pkg/slogx"
)

var (
	// ErrInvalidCredentials is returned when the provider rejects a login
	// or refresh grant.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailExists is returned when registration targets an email the
	// provider already knows.
	ErrEmailExists = errors.New("email already exists")

	// ErrValidation wraps registration input failures.
	ErrValidation = errors.New("validation failed")

	// ErrEmployeeRecord is returned when the identity was created but the
	// employee record was not. The provider account is left in place; see
	// the registration docs for the recovery path.
	ErrEmployeeRecord = errors.New("failed to create employee record")
)

// identityProvider is the slice of the IdP client the service uses for
// session grants.
type identityProvider interface {
	PasswordGrant(ctx context.Context, username, password string) (*idp.TokenResponse, error)
	RefreshGrant(ctx context.Context, refreshToken string) (*idp.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

// adminAPI is the slice of the IdP admin client used by registration and
// role queries.
type adminAPI interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user idp.UserRepresentation) (string, error)
	SetPassword(ctx context.Context, userID, password string) error
	AssignRealmRoles(ctx context.Context, userID string, names []string) error
	UserRealmRoles(ctx context.Context, userID string) ([]string, error)
}

// employeeAPI creates the employee record that backs a registered account.
type employeeAPI interface {
	CreateEmployee(ctx context.Context, req employeesdk.NewEmployeeRequest, onBehalfOf string) (*employeesdk.Employee, error)
}

// AuthService brokers sessions and registration against the identity
// provider. It holds no credential state of its own.
type AuthService struct {
	IdP       identityProvider
	Admin     adminAPI
	Employees employeeAPI

	// SettlingDelay is how long registration waits between creating the
	// provider account and issuing dependent calls, giving the provider
	// time to finish propagating the new user. Zero skips the wait.
	SettlingDelay time.Duration
}

// Login exchanges credentials for a token pair. Any provider rejection
// surfaces as ErrInvalidCredentials; transport failures pass through.
func (s *AuthService) Login(ctx context.Context, username, password string) (*idp.TokenResponse, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	tok, err := s.IdP.PasswordGrant(ctx, username, password)
	if err != nil {
		if errors.Is(err, idp.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return tok, nil
}

// Refresh exchanges a refresh token for a fresh token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*idp.TokenResponse, error) {
	tok, err := s.IdP.RefreshGrant(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, idp.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return tok, nil
}

// Logout invalidates the provider session for the refresh token. Failures
// are logged, never surfaced: the client's cookies are cleared regardless.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	if err := s.IdP.Logout(ctx, refreshToken); err != nil {
		slogx.FromContext(ctx).Warn("provider logout failed", "err", err)
	}
}

// UserRoles returns the realm roles mapped to the user.
func (s *AuthService) UserRoles(ctx context.Context, userID string) ([]string, error) {
	return s.Admin.UserRealmRoles(ctx, userID)
}

// RegisterRequest is the registration payload: the new account's
// credentials plus the employee profile to create for it.
type RegisterRequest struct {
	Username string                        `json:"username"`
	Password string                        `json:"password"`
	Role     string                        `json:"role,omitempty"`
	Employee employeesdk.NewEmployeeRequest `json:"employee"`
}

// RegisterResponse reports the provider-assigned account id.
type RegisterResponse struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// Register creates the account at the identity provider, then the employee
// record at the employee service. The provider is the source of truth for
// the account id; the employee record is tagged with it. If the employee
// call fails the provider account is left in place and ErrEmployeeRecord
// is returned.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	log := slogx.FromContext(ctx)

	if err := validateRegister(req); err != nil {
		return RegisterResponse{}, err
	}
	email := req.Employee.ContactInformation.Email

	exists, err := s.Admin.EmailExists(ctx, email)
	if err != nil {
		return RegisterResponse{}, fmt.Errorf("email lookup: %w", err)
	}
	if exists {
		return RegisterResponse{}, ErrEmailExists
	}

	userID, err := s.Admin.CreateUser(ctx, idp.UserRepresentation{
		Username:      req.Username,
		Email:         email,
		FirstName:     req.Employee.FirstName,
		LastName:      req.Employee.LastName,
		Enabled:       true,
		EmailVerified: true,
	})
	if err != nil {
		if errors.Is(err, idp.ErrConflict) {
			return RegisterResponse{}, ErrEmailExists
		}
		return RegisterResponse{}, fmt.Errorf("create provider account: %w", err)
	}

	if err := s.Admin.SetPassword(ctx, userID, req.Password); err != nil {
		return RegisterResponse{}, fmt.Errorf("set password: %w", err)
	}

	if req.Role != "" {
		// Role mapping is best effort; a missing role must not strand the
		// account.
		if err := s.Admin.AssignRealmRoles(ctx, userID, []string{req.Role}); err != nil {
			log.Warn("role assignment failed", "user_id", userID, "role", req.Role, "err", err)
		}
	}

	// Give the provider time to finish propagating the new account before
	// dependent services validate tokens or look it up.
	if err := s.settle(ctx); err != nil {
		return RegisterResponse{}, err
	}

	if _, err := s.Employees.CreateEmployee(ctx, req.Employee, userID); err != nil {
		log.Error("employee record creation failed", "user_id", userID, "err", err)
		return RegisterResponse{}, fmt.Errorf("%w: %s", ErrEmployeeRecord, err)
	}

	log.Info("user registered", "user_id", userID)
	return RegisterResponse{
		UserID:  userID,
		Message: "User registered successfully",
	}, nil
}

func (s *AuthService) settle(ctx context.Context) error {
	if s.SettlingDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.SettlingDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func validateRegister(req RegisterRequest) error {
	switch {
	case req.Username == "":
		return fmt.Errorf("%w: username is required", ErrValidation)
	case req.Password == "":
		return fmt.Errorf("%w: password is required", ErrValidation)
	case req.Employee.ContactInformation == nil || req.Employee.ContactInformation.Email == "":
		return fmt.Errorf("%w: employee email is required", ErrValidation)
	case req.Employee.FirstName == "" || req.Employee.LastName == "":
		return fmt.Errorf("%w: employee name is required", ErrValidation)
	}
	return nil
}
