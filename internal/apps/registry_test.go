package apps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocalia/vocalia-backend/pkg/access"
)

func testRegistry() *Registry {
	r := NewRegistry()
	r.Register(&AppConfig{
		AppID: "web", Origin: "http://localhost:5173",
		LoginPath: "/login", HomePath: "/dashboard", EnforceAdminRole: true,
	})
	r.Register(&AppConfig{
		AppID: "dashboard", Origin: "http://localhost:5174",
		LoginPath: "/login", HomePath: "/", EnforceAdminRole: false,
	})
	return r
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "apps.json")
	payload := `{"apps":[{"app_id":"web","origin":"http://localhost:5173","enforce_admin_role":true}]}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	r, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, r.Exists("web"))
	assert.Equal(t, "web", r.Default().AppID)
}

func TestByOriginAndCORS(t *testing.T) {
	t.Parallel()

	r := testRegistry()
	assert.Equal(t, "dashboard", r.ByOrigin("http://localhost:5174").AppID)
	assert.Nil(t, r.ByOrigin("http://evil.example"))
	assert.Equal(t, "http://localhost:5173,http://localhost:5174", r.CORSOrigins())
}

// The dashboard app opted out of client-side admin enforcement; its guard
// must never issue the admin redirect, while the web app's guard must.
func TestPolicyFor_AdminEnforcementPerApp(t *testing.T) {
	t.Parallel()

	r := testRegistry()
	base := access.Policy{RequireAuth: true, RequireAdmin: true}
	nonAdmin := access.Session{User: &access.User{ID: "u-1", Role: "user"}}

	webPolicy := r.PolicyFor("web", base)
	d := access.Evaluate(nonAdmin, webPolicy)
	assert.Equal(t, access.Redirect, d.Verdict)
	assert.Equal(t, "/dashboard", d.Path)

	dashPolicy := r.PolicyFor("dashboard", base)
	assert.False(t, dashPolicy.RequireAdmin)
	d = access.Evaluate(nonAdmin, dashPolicy)
	assert.Equal(t, access.Allow, d.Verdict, "dashboard guard defers role checks to admin screens")
}

func TestPolicyFor_UnknownAppFallsBackToDefault(t *testing.T) {
	t.Parallel()

	r := testRegistry()
	p := r.PolicyFor("nope", access.Policy{RequireAuth: true})
	assert.Equal(t, "/login", p.LoginPath)
	assert.Equal(t, "/dashboard", p.HomePath)
}
