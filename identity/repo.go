package identity

import "context"

// Permission flag names consulted before completing a /login.
const (
	// FlagAllowMemberLogin is read for the principal: do they allow members to
	// authenticate through an external application.
	FlagAllowMemberLogin = "allow_member_external_login"
	// FlagAllowSelfLogin is read for the member: do they allow their own
	// identity to be used from an external application.
	FlagAllowSelfLogin = "allow_self_external_login"
)

// Repo resolves internal identities and their credentials.
type Repo interface {
	// Exists reports whether a username resolves to an internal identity.
	Exists(ctx context.Context, username string) (bool, error)

	// UserID resolves a username to its internal user ID, or
	// errors.ErrUserNotFound.
	UserID(ctx context.Context, username string) (string, error)

	// ActiveCredential returns the single active, login-enabled credential for
	// a username, or nil when none exists.
	ActiveCredential(ctx context.Context, username string) (*Credential, error)
}

// PermissionRepo reads per-identity settings flags.
type PermissionRepo interface {
	// ReadFlag returns the stored value of a flag for the given identity scope,
	// or nil when the flag has never been set.
	ReadFlag(ctx context.Context, username, memberUsername, multiverseName, flag string) (*bool, error)
}
