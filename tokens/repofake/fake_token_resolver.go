package repofake

import (
	"context"
	"sync"

	interrors "github.com/jrsteele09/go-chat-bridge/internal/errors"
	"github.com/jrsteele09/go-chat-bridge/tokens"
)

var _ tokens.Resolver = (*FakeTokenResolver)(nil)

// FakeTokenResolver is an in-memory consume-once token store for tests.
type FakeTokenResolver struct {
	profiles map[string]tokens.Profile
	lock     sync.Mutex
}

func NewFakeTokenResolver() *FakeTokenResolver {
	return &FakeTokenResolver{profiles: make(map[string]tokens.Profile)}
}

// Issue registers a token for the given profile.
func (tr *FakeTokenResolver) Issue(token string, profile tokens.Profile) {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.profiles[token] = profile
}

func (tr *FakeTokenResolver) Resolve(_ context.Context, token string) (*tokens.Profile, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	profile, ok := tr.profiles[token]
	if !ok {
		return nil, interrors.ErrInvalidToken
	}
	delete(tr.profiles, token)
	return &profile, nil
}
