package idp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned when the provider rejects a
	// password or refresh grant. Callers translate it to 401 without
	// leaking which part of the grant failed.
	ErrInvalidCredentials = errors.New("idp: invalid credentials")

	// ErrConflict is returned when a resource already exists, e.g. a user
	// with the same username or email.
	ErrConflict = errors.New("idp: conflict")

	// ErrNotFound is returned when the addressed resource does not exist.
	ErrNotFound = errors.New("idp: not found")
)

// ProviderError carries a non-2xx provider response that does not map to one
// of the sentinel errors above.
type ProviderError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("idp: %s: %s (status %d)", e.Code, e.Description, e.StatusCode)
	}
	return fmt.Sprintf("idp: request failed with status %d", e.StatusCode)
}

// errorFromResponse maps a provider error payload onto the package's error
// taxonomy. Token-endpoint errors follow RFC 6749; admin-API errors use an
// errorMessage field. Anything unparseable falls back to a bare status.
func errorFromResponse(statusCode int, body []byte) error {
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorMessage     string `json:"errorMessage"`
	}
	_ = json.Unmarshal(body, &payload)

	switch {
	case statusCode == http.StatusUnauthorized,
		payload.Error == "invalid_grant":
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, payload.ErrorDescription)
	case statusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, payload.ErrorMessage)
	case statusCode == http.StatusNotFound:
		return ErrNotFound
	}

	desc := payload.ErrorDescription
	if desc == "" {
		desc = payload.ErrorMessage
	}
	return &ProviderError{
		StatusCode:  statusCode,
		Code:        payload.Error,
		Description: desc,
	}
}
