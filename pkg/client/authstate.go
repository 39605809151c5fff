package client

import (
	"context"
	"sync"

	"github.com/vocalia/vocalia-backend/pkg/access"
)

// AuthState is the explicit auth-state object an app creates at start and
// passes where gating decisions are made. It is the single source of
// truth: mutations refresh it, sign-out clears it, and nothing else is
// consulted.
type AuthState struct {
	mu      sync.RWMutex
	client  *Client
	pending bool
	user    *User
}

func NewAuthState(c *Client) *AuthState {
	return &AuthState{client: c, pending: true}
}

// Refresh settles the state with one session fetch. Callers block their
// first render on it; until it returns, Session() reports pending and the
// guard renders a loading state.
func (a *AuthState) Refresh(ctx context.Context) {
	user := a.client.GetSession(ctx)
	a.mu.Lock()
	a.user = user
	a.pending = false
	a.mu.Unlock()
}

func (a *AuthState) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	resp, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	a.set(&resp.User)
	return resp, nil
}

func (a *AuthState) SignUp(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	resp, err := a.client.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	a.set(&resp.User)
	return resp, nil
}

// SignOut clears the local state even when the server call fails: a user
// asking to leave must always end up logged out locally.
func (a *AuthState) SignOut(ctx context.Context) error {
	err := a.client.Logout(ctx)
	a.set(nil)
	return err
}

// User returns the current user, or nil.
func (a *AuthState) User() *User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

// Session converts the state for the shared route guard.
func (a *AuthState) Session() access.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.pending {
		return access.Session{Pending: true}
	}
	if a.user == nil {
		return access.Session{}
	}
	return access.Session{User: &access.User{
		ID:    a.user.ID,
		Email: a.user.Email,
		Role:  a.user.Role,
	}}
}

// Guard evaluates the shared route guard against the current state.
func (a *AuthState) Guard(p access.Policy) access.Decision {
	return access.Evaluate(a.Session(), p)
}

func (a *AuthState) set(user *User) {
	a.mu.Lock()
	a.user = user
	a.pending = false
	a.mu.Unlock()
}
