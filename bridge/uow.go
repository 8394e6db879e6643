package bridge

import (
	"context"

	"github.com/jrsteele09/go-chat-bridge/identity"
	"github.com/jrsteele09/go-chat-bridge/multiverse"
	"github.com/jrsteele09/go-chat-bridge/sessions"
	"github.com/jrsteele09/go-chat-bridge/tokens"
)

// UnitOfWork bundles the storage and collaborator handles for one message,
// all bound to the same atomic unit of work. No ambient state: every
// operation receives this explicitly.
type UnitOfWork struct {
	Sessions    sessions.Repo
	Bindings    sessions.BindingRepo
	Identity    identity.Repo
	Permissions identity.PermissionRepo
	Tokens      tokens.Resolver
	Forwarder   multiverse.Forwarder
}

// Runner executes a function inside one atomic unit of work: commit when fn
// returns nil, roll back every storage mutation when it errors.
type Runner interface {
	ExecuteTransaction(ctx context.Context, fn func(uow UnitOfWork) error) error
}
