// internal/auth/context.go
//
// Caller identity carried through request contexts.
//
// Usage
// -----
//     // Attach the verified caller (done by the Identify middleware).
//     ctx = auth.WithIdentity(ctx, auth.Identity{ID: "u1", Email: "a@x.com"})
//
//     // Downstream code retrieves the owner key.
//     owner := auth.Owner(ctx)   // "a@x.com", or "" when anonymous
//
// Notes
// -----
// • Forms are owned by the caller's email, which is what the token issuer
//   puts in every token.
// • Oxford commas, two spaces after periods.

package auth

import "context"

// Identity is the verified caller.
type Identity struct {
	ID    string
	Email string
}

// identityKey is unexported to avoid context-key collisions.
type identityKey struct{}

// WithIdentity returns a new context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the caller.  It returns (Identity{}, false) when the
// request is anonymous.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Owner returns the owner key for ctx, or "" when anonymous.
func Owner(ctx context.Context) string {
	id, _ := IdentityFrom(ctx)
	return id.Email
}
