package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func user(role string) *User {
	return &User{ID: "u-1", Email: "user@test.com", Role: role}
}

func TestEvaluate_PendingRendersLoadingOnly(t *testing.T) {
	t.Parallel()

	policies := []Policy{
		{RequireAuth: true},
		{RequireAuth: false},
		{RequireAuth: true, RequireAdmin: true},
	}
	for _, p := range policies {
		d := Evaluate(Session{Pending: true}, p)
		assert.Equal(t, Pending, d.Verdict)
		assert.Empty(t, d.Path)
	}
}

func TestEvaluate_RequireAuthRedirectsToLogin(t *testing.T) {
	t.Parallel()

	d := Evaluate(Session{}, Policy{RequireAuth: true})
	assert.Equal(t, Redirect, d.Verdict)
	assert.Equal(t, "/login", d.Path)
	assert.True(t, d.Replace, "blocked page must not be reachable via back-navigation")
}

func TestEvaluate_AuthenticatedOnPublicPageGoesHome(t *testing.T) {
	t.Parallel()

	d := Evaluate(Session{User: user("user")}, Policy{RequireAuth: false})
	assert.Equal(t, Redirect, d.Verdict)
	assert.Equal(t, "/dashboard", d.Path)
	assert.True(t, d.Replace)
}

func TestEvaluate_AdminPolicy(t *testing.T) {
	t.Parallel()

	p := Policy{RequireAuth: true, RequireAdmin: true}

	d := Evaluate(Session{User: user("user")}, p)
	assert.Equal(t, Redirect, d.Verdict)
	assert.Equal(t, "/dashboard", d.Path)

	d = Evaluate(Session{User: user("admin")}, p)
	assert.Equal(t, Allow, d.Verdict)
}

func TestEvaluate_AllowRendersChildren(t *testing.T) {
	t.Parallel()

	d := Evaluate(Session{User: user("user")}, Policy{RequireAuth: true})
	assert.Equal(t, Allow, d.Verdict)

	d = Evaluate(Session{}, Policy{})
	assert.Equal(t, Allow, d.Verdict, "anonymous user on a public page")
}

func TestEvaluate_CustomPaths(t *testing.T) {
	t.Parallel()

	p := Policy{RequireAuth: true, LoginPath: "/signin", HomePath: "/home"}
	d := Evaluate(Session{}, p)
	assert.Equal(t, "/signin", d.Path)

	d = Evaluate(Session{User: user("user")}, Policy{HomePath: "/home"})
	assert.Equal(t, "/home", d.Path)
}
