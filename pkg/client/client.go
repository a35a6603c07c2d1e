package client

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
	"sync"
	"time"

	"github.com/Pankajse/YardStick/pkg/jwtutil"
	"github.com/golang-jwt/jwt/v4"
)

// ErrNotLoggedIn is returned by calls that need a token before Login succeeded
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx response from the notes API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notes api: %d %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Client talks to the notes API and keeps the session token after Login
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu    sync.RWMutex
	token string
}

// TenantResponse is returned by RegisterTenant
type TenantResponse struct {
	TenantID string `json:"tenantId"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
}

// InvitedUser is returned by InviteUser
type InvitedUser struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Tenant string `json:"tenant"`
}

// InviteRequest is the body of InviteUser
type InviteRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	TenantSlug string `json:"tenantSlug"`
}

// Tenant is the tenant as the API renders it
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpgradeResponse is returned by UpgradeTenant
type UpgradeResponse struct {
	Message string `json:"message"`
	Tenant  Tenant `json:"tenant"`
}

// Note is a note as the API renders it
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	TenantID  string    `json:"tenantId"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteUpdate is the body of UpdateNote; nil fields are left unchanged
type NoteUpdate struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Session is the unverified content of the stored token
type Session struct {
	jwtutil.Identity
	ExpiresAt time.Time
}

// Expired reports whether the token's exp has passed
func (s Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Token returns the stored session token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken installs a token obtained elsewhere
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Logout forgets the stored token
func (c *Client) Logout() {
	c.SetToken("")
}

// Session decodes the stored token without verifying its signature. The
// server remains the only authority; this is for display and routing.
func (c *Client) Session() (*Session, error) {
	token := c.Token()
	if token == "" {
		return nil, ErrNotLoggedIn
	}

	claims := &jwtutil.UserClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	session := &Session{Identity: claims.Identity}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", false, nil, nil)
}

func (c *Client) RegisterTenant(ctx context.Context, name, slug string) (*TenantResponse, error) {
	var resp TenantResponse
	body := map[string]string{"name": name, "slug": slug}
	if err := c.do(ctx, http.MethodPost, "/tenant", false, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates and stores the returned token for later calls
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, body, &resp); err != nil {
		return "", err
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

func (c *Client) InviteUser(ctx context.Context, req InviteRequest) (*InvitedUser, error) {
	var resp InvitedUser
	if err := c.do(ctx, http.MethodPost, "/users", true, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpgradeTenant(ctx context.Context, slug string) (*UpgradeResponse, error) {
	var resp UpgradeResponse
	path := "/tenants/" + url.PathEscape(slug) + "/upgrade"
	if err := c.do(ctx, http.MethodPost, path, true, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateNote(ctx context.Context, title, content string) (*Note, error) {
	var note Note
	body := map[string]string{"title": title, "content": content}
	if err := c.do(ctx, http.MethodPost, "/notes", true, body, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) ListNotes(ctx context.Context) ([]Note, error) {
	var notes []Note
	if err := c.do(ctx, http.MethodGet, "/notes", true, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) GetNote(ctx context.Context, id string) (*Note, error) {
	var note Note
	if err := c.do(ctx, http.MethodGet, "/notes/"+url.PathEscape(id), true, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, update NoteUpdate) (*Note, error) {
	var note Note
	if err := c.do(ctx, http.MethodPut, "/notes/"+url.PathEscape(id), true, update, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), true, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, authenticated bool, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		token := c.Token()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &errResp); err != nil || errResp.Message == "" {
			errResp.Message = strings.TrimSpace(string(raw))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
