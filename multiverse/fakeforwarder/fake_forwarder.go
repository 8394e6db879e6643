package fakeforwarder

import (
	"context"
	"sync"

	"github.com/google/uuid"

	interrors "github.com/jrsteele09/go-chat-bridge/internal/errors"
	"github.com/jrsteele09/go-chat-bridge/multiverse"
)

var _ multiverse.Forwarder = (*FakeForwarder)(nil)

// FakeForwarder records forwarded posts for test assertions.
type FakeForwarder struct {
	timelines map[string]string // "user\x00member\x00multiverse" -> timeline ID
	posts     []multiverse.PostParams
	failWith  error
	lock      sync.Mutex
}

func NewFakeForwarder() *FakeForwarder {
	return &FakeForwarder{timelines: make(map[string]string)}
}

// AddTimeline registers a timeline for a triple and returns its generated ID.
func (ff *FakeForwarder) AddTimeline(userID, memberUserID, multiverseName string) string {
	ff.lock.Lock()
	defer ff.lock.Unlock()
	id := uuid.New().String()
	ff.timelines[userID+"\x00"+memberUserID+"\x00"+multiverseName] = id
	return id
}

// FailWith makes both forwarder calls return err, to simulate a backend outage.
func (ff *FakeForwarder) FailWith(err error) {
	ff.lock.Lock()
	defer ff.lock.Unlock()
	ff.failWith = err
}

func (ff *FakeForwarder) ResolveTimeline(_ context.Context, userID, memberUserID, multiverseName string) (string, error) {
	ff.lock.Lock()
	defer ff.lock.Unlock()
	if ff.failWith != nil {
		return "", ff.failWith
	}
	id, ok := ff.timelines[userID+"\x00"+memberUserID+"\x00"+multiverseName]
	if !ok {
		return "", interrors.ErrTimelineNotFound
	}
	return id, nil
}

func (ff *FakeForwarder) PostMessage(_ context.Context, p multiverse.PostParams) (string, error) {
	ff.lock.Lock()
	defer ff.lock.Unlock()
	if ff.failWith != nil {
		return "", ff.failWith
	}
	ff.posts = append(ff.posts, p)
	return uuid.New().String(), nil
}

// Posts returns the recorded posts.
func (ff *FakeForwarder) Posts() []multiverse.PostParams {
	ff.lock.Lock()
	defer ff.lock.Unlock()
	out := make([]multiverse.PostParams, len(ff.posts))
	copy(out, ff.posts)
	return out
}
