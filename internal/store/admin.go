package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-chat-bridge/identity"
	"github.com/jrsteele09/go-chat-bridge/tokens"
)

// Administrative operations used by system initialisation and tests. These run
// directly on the database handle, outside any message's unit of work.

// CreateUser registers a username if absent and returns its user ID.
func (s *Store) CreateUser(ctx context.Context, username string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id FROM users WHERE username = ?`, username).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("store: lookup user: %w", err)
	}

	id = uuid.New().String()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, username) VALUES (?, ?)`, id, username); err != nil {
		return "", fmt.Errorf("store: create user: %w", err)
	}
	return id, nil
}

// UpsertCredential stores a credential record for a username.
func (s *Store) UpsertCredential(ctx context.Context, cred identity.Credential) error {
	validFrom := formatNullTime(cred.ValidFrom)
	validUntil := formatNullTime(cred.ValidUntil)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials
			(username, user_id, password_hash, salt, algorithm, enabled, valid_from, valid_until)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			user_id       = excluded.user_id,
			password_hash = excluded.password_hash,
			salt          = excluded.salt,
			algorithm     = excluded.algorithm,
			enabled       = excluded.enabled,
			valid_from    = excluded.valid_from,
			valid_until   = excluded.valid_until`,
		cred.Username, cred.UserID, cred.PasswordHash, cred.Salt, cred.Algorithm,
		boolToInt(cred.Enabled), validFrom, validUntil)
	if err != nil {
		return fmt.Errorf("store: upsert credential: %w", err)
	}
	return nil
}

// SetPermissionFlag stores a flag value for an identity scope.
func (s *Store) SetPermissionFlag(ctx context.Context, username, memberUsername, multiverseName, flag string, value bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO permission_flags (username, member_username, multiverse_name, flag, value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (username, member_username, multiverse_name, flag) DO UPDATE SET
			value = excluded.value`,
		username, memberUsername, multiverseName, flag, boolToInt(value))
	if err != nil {
		return fmt.Errorf("store: set permission flag: %w", err)
	}
	return nil
}

// IssueToken registers a one-time token for a profile and returns the token.
// When token is empty a random one is generated.
func (s *Store) IssueToken(ctx context.Context, token string, profile tokens.Profile) (string, error) {
	if token == "" {
		token = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO one_time_tokens (token, user_id, member_user_id, multiverse_name)
		VALUES (?, ?, ?, ?)`,
		token, profile.UserID, profile.MemberUserID, profile.MultiverseName)
	if err != nil {
		return "", fmt.Errorf("store: issue token: %w", err)
	}
	return token, nil
}

// CreateTimeline registers a timeline if absent and returns its ID. Pass an
// empty memberUserID for a principal's own timeline.
func (s *Store) CreateTimeline(ctx context.Context, userID, memberUserID, timelineName string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT timeline_id FROM timelines
		WHERE user_id = ? AND member_user_id = ? AND timeline_name = ?`,
		userID, memberUserID, timelineName).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("store: lookup timeline: %w", err)
	}

	id = uuid.New().String()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO timelines (timeline_id, user_id, member_user_id, timeline_name)
		VALUES (?, ?, ?, ?)`,
		id, userID, memberUserID, timelineName); err != nil {
		return "", fmt.Errorf("store: create timeline: %w", err)
	}
	return id, nil
}

// TimelineMessages returns the text of every message on a timeline, oldest
// first, for assertions and diagnostics.
func (s *Store) TimelineMessages(ctx context.Context, timelineID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_text FROM timeline_messages
		WHERE timeline_id = ? ORDER BY created_at, message_id`,
		timelineID)
	if err != nil {
		return nil, fmt.Errorf("store: timeline messages: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("store: scan message: %w", err)
		}
		texts = append(texts, text)
	}
	return texts, rows.Err()
}

func formatNullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
