// Package supabase adapts the Supabase GoTrue API to the CredentialVerifier
// interface. The client is stateless: every call carries the project anon key
// and no authenticated session is ever held on the struct, so one client can
// serve concurrent requests for different users.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/cronoplan/cronoplan-api/internal/auth"
)

const defaultTimeout = 10 * time.Second

// Config holds the project coordinates.
type Config struct {
	// ProjectURL is the Supabase project base URL, e.g. https://xyz.supabase.co.
	ProjectURL string
	// AnonKey is the public API key sent with every auth call.
	AnonKey string

	HTTPClient *http.Client
	Logger     auth.Logger
}

// Client talks to GoTrue's signup and password-grant endpoints.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     auth.Logger
}

var _ auth.CredentialVerifier = (*Client)(nil)

// New creates a GoTrue client.
func New(cfg Config) (*Client, error) {
	if cfg.ProjectURL == "" {
		return nil, goerrors.New("supabase project URL is required", goerrors.CategoryBadInput)
	}
	if cfg.AnonKey == "" {
		return nil, goerrors.New("supabase anon key is required", goerrors.CategoryBadInput)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = auth.DefaultLogger()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.ProjectURL, "/"),
		anonKey:    cfg.AnonKey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type gotrueUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type gotrueResponse struct {
	// Signup returns the user inline; the token grant nests it.
	gotrueUser
	User *gotrueUser `json:"user"`
}

type gotrueError struct {
	Code             string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

// SignUp registers a new identity with GoTrue, forwarding profile metadata so
// the upstream trigger can materialize the profile row.
func (c *Client) SignUp(ctx context.Context, email, password string, data auth.SignUpData) (*auth.ExternalIdentity, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}

	meta := map[string]any{}
	if data.FullName != "" {
		meta["full_name"] = data.FullName
	}
	if data.Phone != "" {
		meta["phone"] = data.Phone
	}
	if len(meta) > 0 {
		body["data"] = meta
	}

	return c.post(ctx, "/auth/v1/signup", body)
}

// SignIn exchanges credentials for an upstream session via the password grant.
// The upstream tokens are discarded; only the verified identity matters here.
func (c *Client) SignIn(ctx context.Context, email, password string) (*auth.ExternalIdentity, error) {
	identity, err := c.post(ctx, "/auth/v1/token?grant_type=password", map[string]any{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return identity, nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]any) (*auth.ExternalIdentity, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode gotrue request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build gotrue request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "identity provider unreachable")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read gotrue response")
	}

	if res.StatusCode >= http.StatusBadRequest {
		return nil, c.classifyError(path, res.StatusCode, raw)
	}

	var decoded gotrueResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode gotrue response")
	}

	user := decoded.gotrueUser
	if decoded.User != nil {
		user = *decoded.User
	}

	if user.ID == "" {
		return nil, goerrors.New("gotrue returned no user", goerrors.CategoryInternal)
	}

	return &auth.ExternalIdentity{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  metaString(user.UserMetadata, "full_name"),
		Phone:     metaString(user.UserMetadata, "phone"),
		AvatarURL: metaString(user.UserMetadata, "avatar_url"),
	}, nil
}

// classifyError maps GoTrue's machine readable error codes onto the typed
// taxonomy. No message text is ever inspected.
func (c *Client) classifyError(path string, status int, raw []byte) error {
	var decoded gotrueError
	_ = json.Unmarshal(raw, &decoded)

	switch decoded.Code {
	case "user_already_exists", "email_exists":
		return auth.ErrAlreadyRegistered
	case "validation_failed", "email_address_invalid":
		return auth.ErrInvalidEmail
	case "email_not_confirmed":
		return auth.ErrConfirmationRequired
	case "invalid_credentials", "invalid_grant":
		return auth.ErrInvalidCredentials
	}

	// Older GoTrue deployments omit error_code. On the token endpoint every
	// 4xx is a credential rejection; enumeration safety requires collapsing
	// them anyway.
	if strings.HasPrefix(path, "/auth/v1/token") && status < http.StatusInternalServerError {
		return auth.ErrInvalidCredentials
	}

	message := decoded.Msg
	if message == "" {
		message = decoded.Message
	}
	if message == "" {
		message = decoded.ErrorDescription
	}

	c.logger.Error("gotrue call failed", "path", path, "status", status, "error_code", decoded.Code)

	return goerrors.New(
		fmt.Sprintf("identity provider error (%d): %s", status, message),
		goerrors.CategoryInternal,
	)
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}
