package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	interrors "github.com/jrsteele09/go-chat-bridge/internal/errors"
	"github.com/jrsteele09/go-chat-bridge/multiverse"
)

var _ multiverse.Forwarder = (*forwarder)(nil)

type forwarder struct {
	q dbtx
}

func (f *forwarder) ResolveTimeline(ctx context.Context, userID, memberUserID, multiverseName string) (string, error) {
	// A member distinct from the principal posts to the user-member timeline;
	// otherwise the principal's own public output timeline is the target.
	member := ""
	if memberUserID != "" && memberUserID != userID {
		member = memberUserID
	}

	var timelineID string
	err := f.q.QueryRowContext(ctx, `
		SELECT timeline_id FROM timelines
		WHERE user_id = ? AND member_user_id = ? AND timeline_name = ?`,
		userID, member, multiverse.PublicOutputTimeline).Scan(&timelineID)
	if err == sql.ErrNoRows {
		return "", interrors.ErrTimelineNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: resolve timeline: %w", err)
	}
	return timelineID, nil
}

func (f *forwarder) PostMessage(ctx context.Context, p multiverse.PostParams) (string, error) {
	messageID := uuid.New().String()
	_, err := f.q.ExecContext(ctx, `
		INSERT INTO timeline_messages
			(message_id, scope_id, parent_user_id, user_id, member_user_id, timeline_id, message_text, content_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		messageID, p.ScopeID, p.ParentUserID, p.UserID, p.MemberUserID, p.TimelineID, p.Text, p.ContentType)
	if err != nil {
		return "", fmt.Errorf("store: post message: %w", err)
	}
	return messageID, nil
}
