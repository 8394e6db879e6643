package repofake

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-chat-bridge/identity"
	interrors "github.com/jrsteele09/go-chat-bridge/internal/errors"
)

var _ identity.Repo = (*FakeIdentityRepo)(nil)
var _ identity.PermissionRepo = (*FakeIdentityRepo)(nil)

// FakeIdentityRepo is an in-memory identity, credential and permission store
// for tests.
type FakeIdentityRepo struct {
	userIDs     map[string]string // username -> user ID
	credentials map[string]*identity.Credential
	flags       map[string]bool
	lock        sync.RWMutex
}

func NewFakeIdentityRepo() *FakeIdentityRepo {
	return &FakeIdentityRepo{
		userIDs:     make(map[string]string),
		credentials: make(map[string]*identity.Credential),
		flags:       make(map[string]bool),
	}
}

// AddUser registers a username and returns its generated user ID.
func (ir *FakeIdentityRepo) AddUser(username string) string {
	ir.lock.Lock()
	defer ir.lock.Unlock()

	id, ok := ir.userIDs[username]
	if !ok {
		id = uuid.New().String()
		ir.userIDs[username] = id
	}
	return id
}

// AddCredential stores a credential record, registering the user if needed.
func (ir *FakeIdentityRepo) AddCredential(cred identity.Credential) {
	if cred.UserID == "" {
		cred.UserID = ir.AddUser(cred.Username)
	}
	ir.lock.Lock()
	defer ir.lock.Unlock()
	ir.credentials[cred.Username] = &cred
}

// SetFlag stores a permission flag value.
func (ir *FakeIdentityRepo) SetFlag(username, memberUsername, multiverseName, flag string, value bool) {
	ir.lock.Lock()
	defer ir.lock.Unlock()
	ir.flags[flagKey(username, memberUsername, multiverseName, flag)] = value
}

func (ir *FakeIdentityRepo) Exists(_ context.Context, username string) (bool, error) {
	ir.lock.RLock()
	defer ir.lock.RUnlock()
	_, ok := ir.userIDs[username]
	return ok, nil
}

func (ir *FakeIdentityRepo) UserID(_ context.Context, username string) (string, error) {
	ir.lock.RLock()
	defer ir.lock.RUnlock()
	id, ok := ir.userIDs[username]
	if !ok {
		return "", interrors.ErrUserNotFound
	}
	return id, nil
}

func (ir *FakeIdentityRepo) ActiveCredential(_ context.Context, username string) (*identity.Credential, error) {
	ir.lock.RLock()
	defer ir.lock.RUnlock()
	cred, ok := ir.credentials[username]
	if !ok || !cred.Enabled {
		return nil, nil
	}
	c := *cred
	return &c, nil
}

func (ir *FakeIdentityRepo) ReadFlag(_ context.Context, username, memberUsername, multiverseName, flag string) (*bool, error) {
	ir.lock.RLock()
	defer ir.lock.RUnlock()
	v, ok := ir.flags[flagKey(username, memberUsername, multiverseName, flag)]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func flagKey(username, memberUsername, multiverseName, flag string) string {
	return username + "\x00" + memberUsername + "\x00" + multiverseName + "\x00" + flag
}
