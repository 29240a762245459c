// Package fleetapi implements the typed HTTP gateway to the remote fleet API.
// Every operation is a thin pass-through: the console adds the bearer token,
// forwards the payload, and parses the response. No responses are cached.
package fleetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/printwatch/fleet-console/internal/api/metrics"
	"github.com/printwatch/fleet-console/internal/core/domain"
	"github.com/printwatch/fleet-console/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// APIError is a failed fleet API call. Message is the server-provided message
// when the response carried one, else a per-operation fallback.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the fleet API. Authenticated calls take the bearer token as
// an explicit argument; the client itself is stateless and safe for
// concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  zerolog.Logger
}

var _ ports.FleetClient = (*Client)(nil)

// New builds a Client for the given base URL (e.g. "https://fleet.example.com/api").
func New(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the fleet API's login payload: the token plus the user's
// fields flattened alongside it.
type authResponse struct {
	Token    string      `json:"token"`
	ID       int64       `json:"id"`
	FullName string      `json:"fullName"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

type usersEnvelope struct {
	// The fleet API paginates; only the current page's items are consumed.
	Content []domain.User `json:"content"`
}

type createUserRequest struct {
	FullName string      `json:"fullName"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type updateUserRequest struct {
	FullName string      `json:"fullName"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Login exchanges credentials for a bearer token and the user's identity.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	var resp authResponse
	err := c.doJSON(ctx, "login", http.MethodPost, "/auth/login", "", loginRequest(creds), &resp, "Login failed")
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{
		Token: resp.Token,
		User: domain.User{
			ID:       resp.ID,
			FullName: resp.FullName,
			Email:    resp.Email,
			Role:     resp.Role,
		},
	}, nil
}

// CurrentUser resolves the identity behind a token ("who am I").
func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	err := c.doJSON(ctx, "current_user", http.MethodGet, "/auth/me", token, nil, &user, "Failed to fetch current user")
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers fetches the current page of accounts.
func (c *Client) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	var env usersEnvelope
	err := c.doJSON(ctx, "list_users", http.MethodGet, "/users", token, nil, &env, "Failed to fetch users")
	if err != nil {
		return nil, err
	}
	return env.Content, nil
}

// CreateUser creates a new account (admin-driven).
func (c *Client) CreateUser(ctx context.Context, token string, in ports.CreateUserInput) (*domain.User, error) {
	var user domain.User
	err := c.doJSON(ctx, "create_user", http.MethodPost, "/users", token, createUserRequest(in), &user, "User creation failed")
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates an account's editable fields.
func (c *Client) UpdateUser(ctx context.Context, token string, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	var user domain.User
	fallback := fmt.Sprintf("Failed to update user with ID: %d", id)
	err := c.doJSON(ctx, "update_user", http.MethodPut, "/users/"+strconv.FormatInt(id, 10), token, updateUserRequest(in), &user, fallback)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, token string, id int64) error {
	fallback := fmt.Sprintf("Failed to delete user with ID: %d", id)
	return c.doJSON(ctx, "delete_user", http.MethodDelete, "/users/"+strconv.FormatInt(id, 10), token, nil, nil, fallback)
}

// ChangePassword rotates an account's password after the fleet API verifies
// the current one.
func (c *Client) ChangePassword(ctx context.Context, token string, id int64, in ports.ChangePasswordInput) error {
	path := "/users/" + strconv.FormatInt(id, 10) + "/password"
	return c.doJSON(ctx, "change_password", http.MethodPut, path, token, changePasswordRequest(in), nil, "Failed to change password")
}

// ForgotPassword submits a reset request. The fleet API takes the raw email
// as text/plain and answers with a plain-text confirmation that never reveals
// whether the account exists.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/forgot-password", strings.NewReader(email))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	body, apiErr := c.roundTrip("forgot_password", req, "Failed to send reset link")
	if apiErr != nil {
		return "", apiErr
	}
	return strings.TrimSpace(string(body)), nil
}

// Profile fetches the caller's own account record.
func (c *Client) Profile(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	err := c.doJSON(ctx, "profile", http.MethodGet, "/users/profile", token, nil, &user, "Failed to load user profile")
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// doJSON performs one JSON round trip. A nil payload sends no body; a nil out
// discards the response body.
func (c *Client) doJSON(ctx context.Context, operation, method, path, token string, payload, out any, fallback string) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", operation, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	raw, apiErr := c.roundTrip(operation, req, fallback)
	if apiErr != nil {
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

// roundTrip executes the request, records metrics, and maps any non-2xx
// outcome to an *APIError.
func (c *Client) roundTrip(operation string, req *http.Request, fallback string) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpc.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(operation, "error").Inc()
		c.logger.Error().Err(err).Str("operation", operation).Msg("fleet api unreachable")
		return nil, &APIError{StatusCode: 0, Message: fallback}
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := serverMessage(body)
		if msg == "" {
			msg = fallback
		}
		c.logger.Debug().
			Str("operation", operation).
			Int("status", resp.StatusCode).
			Str("message", msg).
			Msg("fleet api rejected request")
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return body, nil
}

// serverMessage pulls the human-readable message out of a fleet API error
// body, which is {"message": "..."} when present.
func serverMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return strings.TrimSpace(envelope.Message)
}
