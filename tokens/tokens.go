// Package tokens defines the one-time authorization token contract. Tokens are
// issued out-of-band by the internal backend; resolving one consumes it and
// yields the profile identity it was minted for.
package tokens

import "context"

// Profile is the internal identity triple a one-time token binds to.
type Profile struct {
	UserID         string
	MemberUserID   string
	MultiverseName string
}

// Resolver consumes one-time tokens. Resolving an unknown or already-consumed
// token returns errors.ErrInvalidToken.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*Profile, error)
}
