// Package access is the single route-guard implementation shared by the
// server middleware and the client SDK. Both frontend apps used to carry
// their own near-duplicate guard; they now configure this one through the
// app registry.
package access

const (
	DefaultLoginPath = "/login"
	DefaultHomePath  = "/dashboard"

	adminRole = "admin"
)

// User is the authenticated principal a guard decision is based on.
type User struct {
	ID    string
	Email string
	Role  string
}

// Session is the authoritative auth state. There is deliberately no second
// source of truth: callers must not gate on locally cached flags.
type Session struct {
	// Pending is true while the session fetch has not settled yet.
	Pending bool
	User    *User
}

func (s Session) Authenticated() bool {
	return !s.Pending && s.User != nil
}

// Policy configures the guard for one route.
type Policy struct {
	RequireAuth  bool
	RequireAdmin bool
	LoginPath    string
	HomePath     string
}

type Verdict int

const (
	// Pending means the caller must keep showing its loading state and
	// make no redirect decision yet.
	Pending Verdict = iota
	Allow
	Redirect
)

type Decision struct {
	Verdict Verdict
	// Path is the redirect target when Verdict == Redirect.
	Path string
	// Replace indicates history replacement, so the blocked page is not
	// reachable via back-navigation.
	Replace bool
}

// Evaluate applies the guard rules in order: loading gate, auth
// requirement, authenticated-on-public-page bounce, admin requirement.
func Evaluate(s Session, p Policy) Decision {
	login := p.LoginPath
	if login == "" {
		login = DefaultLoginPath
	}
	home := p.HomePath
	if home == "" {
		home = DefaultHomePath
	}

	if s.Pending {
		return Decision{Verdict: Pending}
	}

	authed := s.User != nil
	switch {
	case p.RequireAuth && !authed:
		return Decision{Verdict: Redirect, Path: login, Replace: true}
	case !p.RequireAuth && authed:
		return Decision{Verdict: Redirect, Path: home, Replace: true}
	case p.RequireAdmin && (!authed || s.User.Role != adminRole):
		return Decision{Verdict: Redirect, Path: home, Replace: true}
	}
	return Decision{Verdict: Allow}
}
