// Package client is the Go SDK for the Vocalia API. Requests carry the
// session cookie automatically; errors surface the server's message.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"
)

const DefaultBaseURL = "http://localhost:3000"

// Fallback messages for non-2xx responses: msgNetworkError when the error
// body itself does not parse, msgRequestFailed when it parses but carries
// no message.
const (
	msgNetworkError  = "Network error"
	msgRequestFailed = "Request failed"
)

type Client struct {
	baseURL string
	http    *http.Client
	appID   string
}

type Option func(*Client)

// WithAppID stamps requests with an X-App-ID header so the backend
// attributes them to a registered frontend app.
func WithAppID(appID string) Option {
	return func(c *Client) { c.appID = appID }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}
	return c, nil
}

// do issues a credentialed JSON request. Non-2xx responses become errors
// carrying the server's message when one can be parsed.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.appID != "" {
		req.Header.Set("X-App-ID", c.appID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return errors.New(msgNetworkError)
		}
		if apiErr.Message == "" {
			return errors.New(msgRequestFailed)
		}
		return errors.New(apiErr.Message)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/sign-in", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/sign-up", registerRequest{Name: name, Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/sign-out", nil, nil)
}

// GetSession returns the current user, or nil on ANY failure: "no
// session" and "request failed" are indistinguishable to callers. The
// logged-out UI is the answer to both.
func (c *Client) GetSession(ctx context.Context) *User {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, &resp); err != nil {
		return nil
	}
	if resp.User.ID == "" {
		return nil
	}
	return &resp.User
}

func (c *Client) GetUserProfile(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetModes(ctx context.Context) ([]PracticeMode, error) {
	var modes []PracticeMode
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/modes", nil, &modes); err != nil {
		return nil, err
	}
	return modes, nil
}

func (c *Client) GetUserDetails(ctx context.Context) (*UserDetails, error) {
	var details UserDetails
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/user-details", nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) GetProgress(ctx context.Context) (*UserProgress, error) {
	var progress UserProgress
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/progress", nil, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func (c *Client) GetPlans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	if err := c.do(ctx, http.MethodGet, "/api/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}
