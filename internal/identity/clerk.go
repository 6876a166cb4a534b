package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ClerkConfig configures the Clerk Backend API client.
type ClerkConfig struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// ClerkProvider manages accounts through the Clerk Backend API.
type ClerkProvider struct {
	secretKey string
	baseURL   string
	client    *http.Client
	logger    *zap.Logger
}

// ClerkError is a non-2xx response from Clerk.
type ClerkError struct {
	Status  int
	Code    string
	Message string
}

func (e *ClerkError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("clerk: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("clerk: status %d: %s (%s)", e.Status, e.Message, e.Code)
}

type clerkErrorBody struct {
	Errors []struct {
		Code        string `json:"code"`
		Message     string `json:"message"`
		LongMessage string `json:"long_message"`
	} `json:"errors"`
}

type clerkCreateUser struct {
	Username       string            `json:"username"`
	Password       string            `json:"password"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	EmailAddress   []string          `json:"email_address,omitempty"`
	PublicMetadata map[string]string `json:"public_metadata"`
}

type clerkUpdateUser struct {
	Username  *string `json:"username,omitempty"`
	Password  *string `json:"password,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

type clerkUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// NewClerkProvider constructs a ClerkProvider.
func NewClerkProvider(cfg ClerkConfig, client *http.Client, logger *zap.Logger) *ClerkProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &ClerkProvider{
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    client,
		logger:    logger,
	}
}

// CreateIdentity creates a Clerk user carrying the role in its public metadata.
func (p *ClerkProvider) CreateIdentity(ctx context.Context, in NewIdentity) (Identity, error) {
	body := clerkCreateUser{
		Username:       in.Username,
		Password:       in.Password,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		PublicMetadata: map[string]string{"role": string(in.Role)},
	}
	if in.Email != nil && *in.Email != "" {
		body.EmailAddress = []string{*in.Email}
	}

	var created clerkUser
	if err := p.do(ctx, http.MethodPost, "/users", body, &created); err != nil {
		return Identity{}, err
	}
	if created.ID == "" {
		return Identity{}, fmt.Errorf("clerk: create user returned no id")
	}
	return Identity{ID: created.ID, Username: created.Username, Role: in.Role}, nil
}

// UpdateIdentity patches the Clerk user; absent fields are omitted from the request.
func (p *ClerkProvider) UpdateIdentity(ctx context.Context, id string, in IdentityUpdate) error {
	body := clerkUpdateUser{
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if in.Password != nil && *in.Password != "" {
		body.Password = in.Password
	}
	return p.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), body, nil)
}

// DeleteIdentity deletes the Clerk user.
func (p *ClerkProvider) DeleteIdentity(ctx context.Context, id string) error {
	return p.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

func (p *ClerkProvider) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("clerk: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("clerk: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("clerk: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("clerk: read response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return p.responseError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("clerk: decode response: %w", err)
		}
	}
	return nil
}

func (p *ClerkProvider) responseError(status int, raw []byte) error {
	clerkErr := &ClerkError{Status: status, Message: http.StatusText(status)}

	var body clerkErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Errors) > 0 {
		first := body.Errors[0]
		clerkErr.Code = first.Code
		clerkErr.Message = first.Message
		if first.LongMessage != "" {
			clerkErr.Message = first.LongMessage
		}
	}

	p.logger.Warn("clerk request failed", zap.Int("status", status), zap.String("code", clerkErr.Code))

	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, clerkErr)
	case clerkErr.Code == "form_identifier_exists":
		return fmt.Errorf("%w: %v", ErrUsernameTaken, clerkErr)
	default:
		return clerkErr
	}
}
