package sessions

// Session is the per-(appID, appUserID) record for an external chat identity.
// It is created on first contact and never deleted; login transitions only flip
// the LoggedIn flag.
type Session struct {
	AppID     string            // External application (bot installation) identifier
	AppUserID string            // External chat-platform user identifier
	LoggedIn  bool              // Stored login flag; meaningful only with a binding
	Attrs     map[string]string // Opaque extension data
}

// Binding is the durable association from an external identity to an internal
// multiverse identity triple. At most one exists per session key.
type Binding struct {
	AppID          string
	AppUserID      string
	UserID         string            // Principal identity
	MemberUserID   string            // Member identity acting under the principal
	MultiverseName string            // Namespace/scope identifier
	Attrs          map[string]string // Opaque extension data
}

// View joins a session with its optional binding and carries the derived
// authentication state used by the protocol.
type View struct {
	Session Session
	Binding *Binding // nil when the session has never been bound
}

// EnabledLogin reports whether a binding exists, i.e. the session has completed
// the one-time-token flow or a password login at some point.
func (v *View) EnabledLogin() bool {
	return v.Binding != nil
}

// IsLoggedIn reports the effective login state: a binding must exist and the
// stored flag must be set.
func (v *View) IsLoggedIn() bool {
	return v.Binding != nil && v.Session.LoggedIn
}
