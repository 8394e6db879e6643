package repofakes

import (
	"context"
	"sync"

	interrors "github.com/jrsteele09/go-chat-bridge/internal/errors"
	"github.com/jrsteele09/go-chat-bridge/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)
var _ sessions.BindingRepo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory session and binding store for tests.
type FakeSessionRepo struct {
	sessions map[string]*sessions.Session
	bindings map[string]*sessions.Binding
	lock     sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]*sessions.Session),
		bindings: make(map[string]*sessions.Binding),
	}
}

func key(appID, appUserID string) string {
	return appID + "\x00" + appUserID
}

func (sr *FakeSessionRepo) Ensure(_ context.Context, appID, appUserID string) (*sessions.Session, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	k := key(appID, appUserID)
	if _, ok := sr.sessions[k]; !ok {
		sr.sessions[k] = &sessions.Session{
			AppID:     appID,
			AppUserID: appUserID,
			Attrs:     map[string]string{},
		}
	}
	s := *sr.sessions[k]
	return &s, nil
}

func (sr *FakeSessionRepo) LoadWithBinding(_ context.Context, appID, appUserID string) (*sessions.View, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	k := key(appID, appUserID)
	s, ok := sr.sessions[k]
	if !ok {
		return nil, interrors.ErrSessionNotFound
	}
	view := &sessions.View{Session: *s}
	if b, ok := sr.bindings[k]; ok {
		binding := *b
		view.Binding = &binding
	}
	return view, nil
}

func (sr *FakeSessionRepo) SetLoggedIn(_ context.Context, appID, appUserID string, loggedIn bool) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	s, ok := sr.sessions[key(appID, appUserID)]
	if !ok {
		return interrors.ErrSessionNotFound
	}
	s.LoggedIn = loggedIn
	return nil
}

func (sr *FakeSessionRepo) Upsert(_ context.Context, b *sessions.Binding) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	binding := *b
	sr.bindings[key(b.AppID, b.AppUserID)] = &binding
	return nil
}

// Binding returns the stored binding for a key, for test assertions.
func (sr *FakeSessionRepo) Binding(appID, appUserID string) *sessions.Binding {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.bindings[key(appID, appUserID)]
}

// Session returns the stored session for a key, for test assertions.
func (sr *FakeSessionRepo) Session(appID, appUserID string) *sessions.Session {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.sessions[key(appID, appUserID)]
}
