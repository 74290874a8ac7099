// internal/auth/session.go
//
// Session is the client-side capability that proves who is calling.  It is
// created once at login and handed to the API client explicitly; nothing
// looks the token up from ambient storage.

package auth

import "net/http"

// Session carries a bearer token.  The zero value is anonymous.
type Session struct {
	token string
}

// NewSession wraps token.
func NewSession(token string) Session { return Session{token: token} }

// Anonymous reports whether the session carries no token.
func (s Session) Anonymous() bool { return s.token == "" }

// Authorize stamps r with the bearer header.  Anonymous sessions leave r
// unchanged so the server can answer 403.
func (s Session) Authorize(r *http.Request) {
	if s.token != "" {
		r.Header.Set("Authorization", "Bearer "+s.token)
	}
}

// String never reveals the token.
func (s Session) String() string {
	if s.Anonymous() {
		return "session(anonymous)"
	}
	return "session(bearer)"
}
