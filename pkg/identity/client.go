package identity

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

	"github.com/canteenhub/canteen-backend/pkg/config"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/logger"
)

const (
	// Canonical messages surfaced to clients regardless of how the
	// provider phrases the underlying rejection.
	MsgPasswordTooWeak  = "Password must be at least 8 characters"
	MsgUsernameTaken    = "Username is already taken"
	MsgUserFetchFailed  = "Failed to fetch employee from authentication service"
	MsgUserCreateFailed = "Failed to create employee in authentication service"
	MsgUserUpdateFailed = "Failed to update employee in authentication service"
	MsgUserDeleteFailed = "Failed to delete employee from authentication service"
)

var (
	errBaseURLRequired = errors.New("identity base url is required")
	errAPIKeyRequired  = errors.New("identity api key is required")
	errLoggerRequired  = errors.New("identity logger is required")
)

// User is the provider-side account record. The provider owns
// credentials and profile names; the local directory only stores the ID.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CreateUserParams carries the fields required to provision a user.
type CreateUserParams struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UpdateUserParams carries a partial update. Nil fields are omitted
// from the request so the provider leaves them untouched.
type UpdateUserParams struct {
	Username  *string `json:"username,omitempty"`
	Password  *string `json:"password,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// Empty reports whether the update would change nothing remotely.
func (p UpdateUserParams) Empty() bool {
	return p.Username == nil && p.Password == nil && p.FirstName == nil && p.LastName == nil
}

// Client wraps the identity provider's HTTP API with centralized auth
// and error mapping.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logger.Logger
}

// NewClient validates the configuration and returns the wrapper.
func NewClient(cfg config.IdentityConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logg,
	}, nil
}

// GetUser fetches a single user by provider ID.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identity user id is required")
	}
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, c.mapError(err, "get user", MsgUserFetchFailed)
	}
	return &user, nil
}

// CreateUser provisions a user with credentials at the provider.
func (c *Client) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/users", params, &user); err != nil {
		return nil, c.mapError(err, "create user", MsgUserCreateFailed)
	}
	return &user, nil
}

// UpdateUser applies a partial update to an existing user.
func (c *Client) UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identity user id is required")
	}
	var user User
	if err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), params, &user); err != nil {
		return nil, c.mapError(err, "update user", MsgUserUpdateFailed)
	}
	return &user, nil
}

// DeleteUser removes the user from the provider.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "identity user id is required")
	}
	if err := c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil); err != nil {
		return c.mapError(err, "delete user", MsgUserDeleteFailed)
	}
	return nil
}

// Ping verifies the provider is reachable with the configured key.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("identity client not initialized")
	}
	if err := c.do(ctx, http.MethodGet, "/users?limit=1", nil, nil); err != nil {
		return fmt.Errorf("identity ping: %w", err)
	}
	return nil
}

// apiError is the provider's structured failure payload.
type apiError struct {
	StatusCode int
	Errors     []providerError
	raw        string
}

type providerError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	LongMessage string `json:"long_message"`
}

func (e *apiError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("identity api status %d: %s", e.StatusCode, e.Errors[0].Code)
	}
	return fmt.Sprintf("identity api status %d: %s", e.StatusCode, e.raw)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding identity request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer closeBody(ctx, c.logger, resp.Body)

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		apiErr := &apiError{StatusCode: resp.StatusCode, raw: strings.TrimSpace(string(raw))}
		var payload struct {
			Errors []providerError `json:"errors"`
		}
		if jsonErr := json.Unmarshal(raw, &payload); jsonErr == nil {
			apiErr.Errors = payload.Errors
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding identity response: %w", err)
	}
	return nil
}

// mapError folds provider failures into the domain taxonomy at a single
// point so callers never inspect provider codes themselves.
func (c *Client) mapError(err error, op, fallback string) error {
	if err == nil {
		return nil
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		for _, provErr := range apiErr.Errors {
			switch provErr.Code {
			case "form_password_pwned", "form_password_length_too_short", "form_password_not_strong_enough":
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, MsgPasswordTooWeak).
					WithDetails(map[string]string{"password": MsgPasswordTooWeak})
			case "form_identifier_exists":
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, MsgUsernameTaken).
					WithDetails(map[string]string{"username": MsgUsernameTaken})
			}
		}
		if apiErr.StatusCode == http.StatusNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("identity %s failed", op))
		}
		message := fallback
		if len(apiErr.Errors) > 0 && apiErr.Errors[0].LongMessage != "" {
			message = apiErr.Errors[0].LongMessage
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fallback)
}

func closeBody(ctx context.Context, logg *logger.Logger, body io.Closer) {
	if body == nil {
		return
	}
	if err := body.Close(); err != nil && logg != nil {
		logg.Warn(ctx, "closing identity response body failed")
	}
}
