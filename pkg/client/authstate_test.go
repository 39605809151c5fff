package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocalia/vocalia-backend/pkg/access"
)

func TestAuthState_PendingUntilRefresh(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	state := NewAuthState(c)

	assert.True(t, state.Session().Pending)
	decision := state.Guard(access.Policy{RequireAuth: true})
	assert.Equal(t, access.Pending, decision.Verdict)

	state.Refresh(context.Background())

	session := state.Session()
	assert.False(t, session.Pending)
	assert.Nil(t, session.User)

	decision = state.Guard(access.Policy{RequireAuth: true})
	assert.Equal(t, access.Redirect, decision.Verdict)
	assert.Equal(t, "/login", decision.Path)
}

func TestAuthState_SignInSetsUserAndSignOutClears(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/sign-in", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AuthResponse{User: User{ID: "u-1", Email: "asha@example.com", Role: "admin"}})
	})
	mux.HandleFunc("POST /api/auth/sign-out", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "signed out"})
	})

	state := NewAuthState(newTestClient(t, mux))

	_, err := state.SignIn(context.Background(), "asha@example.com", "secret123")
	require.NoError(t, err)
	require.NotNil(t, state.User())
	assert.Equal(t, "admin", state.Session().User.Role)

	decision := state.Guard(access.Policy{RequireAuth: true, RequireAdmin: true})
	assert.Equal(t, access.Allow, decision.Verdict)

	require.NoError(t, state.SignOut(context.Background()))
	assert.Nil(t, state.User())
}

func TestAuthState_SignOutClearsEvenOnServerError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/sign-in", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AuthResponse{User: User{ID: "u-1", Email: "asha@example.com", Role: "user"}})
	})
	mux.HandleFunc("POST /api/auth/sign-out", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "session store down"})
	})

	state := NewAuthState(newTestClient(t, mux))

	_, err := state.SignIn(context.Background(), "asha@example.com", "secret123")
	require.NoError(t, err)

	err = state.SignOut(context.Background())
	require.Error(t, err)
	assert.Nil(t, state.User(), "local state cleared regardless of server outcome")
}
