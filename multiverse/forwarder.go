// Package multiverse defines the boundary to the internal timeline backend.
// The bridge resolves a destination timeline for a bound identity triple and
// appends a post to it; both calls are externally-managed atomic operations and
// are never retried here.
package multiverse

import "context"

const (
	// ScopeLocal is the scope posts are written under.
	ScopeLocal = "local"
	// DefaultName is the multiverse assumed when a login address omits one.
	DefaultName = "local"
	// ContentText is the content type of forwarded chat messages.
	ContentText = "content_text"
	// PublicOutputTimeline is the timeline name forwarded posts land on.
	PublicOutputTimeline = "local_public_output_timeline"
)

// PostParams carries everything needed to append one post.
type PostParams struct {
	ScopeID      string
	ParentUserID string // Principal acting as the default parent of the post
	UserID       string
	MemberUserID string
	TimelineID   string
	Text         string
	ContentType  string
}

// Forwarder resolves destination timelines and appends posts.
type Forwarder interface {
	// ResolveTimeline returns the timeline ID for the bound identity triple.
	// When the member identity is absent or equals the principal, the
	// principal's own timeline is resolved; otherwise the user-member timeline.
	ResolveTimeline(ctx context.Context, userID, memberUserID, multiverseName string) (string, error)

	// PostMessage appends a post and returns its ID.
	PostMessage(ctx context.Context, p PostParams) (string, error)
}
