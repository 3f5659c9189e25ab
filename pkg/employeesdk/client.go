// Package employeesdk is a typed client for the employee service's HTTP
// API, used for service-to-service calls. It authenticates with the
// client_credentials grant against the identity provider, the same way any
// external consumer of the API would.
package employeesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Client calls the employee service with a service-account bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config carries the target service and the OAuth2 client that the calls
// authenticate as.
type Config struct {
	// BaseURL is the employee service root, e.g. http://employee:8082.
	BaseURL string

	// TokenURL is the identity provider's token endpoint.
	TokenURL string

	ClientID     string
	ClientSecret string
}

// New builds a client whose requests carry a cached, auto-refreshed
// service-account token.
func New(ctx context.Context, cfg Config) *Client {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
		Timeout: 10 * time.Second,
	})

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: cc.Client(ctx),
	}
}

// ContactInformation mirrors the employee service's nested contact shape.
type ContactInformation struct {
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Email       string `json:"email"`
}

// NewEmployeeRequest is the payload for creating an employee record. It
// mirrors the employee service's create contract.
type NewEmployeeRequest struct {
	FirstName          string              `json:"firstName"`
	MiddleName         string              `json:"middleName,omitempty"`
	LastName           string              `json:"lastName"`
	JobTitle           string              `json:"jobTitle,omitempty"`
	ContactInformation *ContactInformation `json:"contactInformation,omitempty"`
}

// Employee is the subset of the employee record the SDK surfaces.
type Employee struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	JobTitle  string `json:"jobTitle,omitempty"`
}

// APIError carries a non-2xx employee service response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("employee service: status %d: %s", e.StatusCode, e.Message)
}

// CreateEmployee creates an employee record and returns it. The onBehalfOf
// id, when set, is forwarded as the authenticated user so the record's audit
// fields name the registering user rather than the service account.
func (c *Client) CreateEmployee(ctx context.Context, req NewEmployeeRequest, onBehalfOf string) (*Employee, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/api/v1/employees",
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if onBehalfOf != "" {
		httpReq.Header.Set("X-User-Id", onBehalfOf)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp.StatusCode, body)
	}

	var emp Employee
	if err := json.Unmarshal(body, &emp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &emp, nil
}

func apiError(statusCode int, body []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}
