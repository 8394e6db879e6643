package bridge

import "strings"

// ParseMultiverseAddress parses the addressing token of a /login command into
// (username, memberUsername, multiverseName), defaulting unresolved parts to
// empty strings.
//
// The accepted grammar is member '@' principal, with an optional '/' multiverse
// suffix and an optional scheme:// prefix, e.g. "alice@bob" or
// "tbc://alice@bob/local". Anything that does not fit degrades to treating the
// whole token as the member username: the command syntax is free text typed by
// a chat user, so permissive parsing is preferred to hard rejection and the
// subsequent identity existence checks are the real validation gate. The parser
// is total; it never fails.
func ParseMultiverseAddress(token string) (username, memberUsername, multiverseName string) {
	addr := token
	if i := strings.Index(addr, "://"); i >= 0 {
		addr = addr[i+len("://"):]
	}

	member, rest, ok := strings.Cut(addr, "@")
	if !ok || member == "" || rest == "" {
		return "", token, ""
	}

	principal, scope, _ := strings.Cut(rest, "/")
	if principal == "" {
		return "", token, ""
	}
	if i := strings.Index(scope, "/"); i >= 0 {
		scope = scope[:i]
	}
	return principal, member, scope
}
