package sessions

import "context"

// Repo defines session storage. Implementations must make Ensure safe under
// concurrent first-contact messages for the same key: insert ignoring a key
// conflict, then re-read, so the returned row is always the single canonical one.
type Repo interface {
	// Ensure idempotently creates the session with LoggedIn=false if absent
	// and returns the current row.
	Ensure(ctx context.Context, appID, appUserID string) (*Session, error)

	// LoadWithBinding returns the session joined with its optional binding,
	// or errors.ErrSessionNotFound if the session does not exist.
	LoadWithBinding(ctx context.Context, appID, appUserID string) (*View, error)

	// SetLoggedIn updates the stored flag. It never creates a row and must be
	// preceded by Ensure.
	SetLoggedIn(ctx context.Context, appID, appUserID string, loggedIn bool) error
}

// BindingRepo owns the multiverse binding rows keyed by the session key.
type BindingRepo interface {
	// Upsert creates or overwrites the binding for (b.AppID, b.AppUserID).
	Upsert(ctx context.Context, b *Binding) error
}
