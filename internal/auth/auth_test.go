package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestIssueVerifyRoundTrip(t *testing.T) {
	v := NewVerifier(secret, "formdesk", 0)
	tok, err := v.Issue(Identity{ID: "u1", Email: "a@x.com"}, time.Minute)
	require.NoError(t, err)

	id, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "u1", Email: "a@x.com"}, id)
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier(secret, "", 0)

	expired, _ := v.Issue(Identity{Email: "a@x.com"}, -time.Minute)
	other, _ := NewVerifier("another-secret-another-secret", "", 0).Issue(Identity{Email: "a@x.com"}, time.Minute)
	noEmail, _ := v.Issue(Identity{ID: "u1"}, time.Minute)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "a@x.com"}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, tok := range map[string]string{
		"expired":   expired,
		"wrong key": other,
		"no email":  noEmail,
		"alg none":  none,
		"garbage":   "not.a.token",
	} {
		_, err := v.Verify(tok)
		assert.True(t, errors.Is(err, ErrInvalidToken), name)
	}
}

func TestIdentifyMiddleware(t *testing.T) {
	v := NewVerifier(secret, "", 0)
	var seen string
	h := Identify(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Owner(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	// Anonymous passes through.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, seen)

	// Valid token attaches identity via the Session capability.
	tok, _ := v.Issue(Identity{Email: "a@x.com"}, time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	NewSession(tok).Authorize(req)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "a@x.com", seen)

	// Bad token is refused.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer junk")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid or expired token."}`, rec.Body.String())
}

func TestSessionHidesToken(t *testing.T) {
	s := NewSession("secret-token")
	assert.NotContains(t, s.String(), "secret-token")
	assert.True(t, Session{}.Anonymous())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	Session{}.Authorize(req)
	assert.Empty(t, req.Header.Get("Authorization"))
}
