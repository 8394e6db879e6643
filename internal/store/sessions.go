package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	interrors "github.com/jrsteele09/go-chat-bridge/internal/errors"
	"github.com/jrsteele09/go-chat-bridge/sessions"
)

var _ sessions.Repo = (*sessionRepo)(nil)

type sessionRepo struct {
	q dbtx
}

func (sr *sessionRepo) Ensure(ctx context.Context, appID, appUserID string) (*sessions.Session, error) {
	// Insert-ignoring-conflict then re-read: two near-simultaneous first
	// messages for the same key both end up reading the single canonical row.
	_, err := sr.q.ExecContext(ctx, `
		INSERT INTO external_sessions (app_id, app_user_id)
		VALUES (?, ?)
		ON CONFLICT (app_id, app_user_id) DO NOTHING`,
		appID, appUserID)
	if err != nil {
		return nil, fmt.Errorf("store: ensure session: %w", err)
	}

	row := sr.q.QueryRowContext(ctx, `
		SELECT app_id, app_user_id, logged_in, session_attrs
		FROM external_sessions
		WHERE app_id = ? AND app_user_id = ?`,
		appID, appUserID)
	return scanSession(row)
}

func (sr *sessionRepo) LoadWithBinding(ctx context.Context, appID, appUserID string) (*sessions.View, error) {
	row := sr.q.QueryRowContext(ctx, `
		SELECT s.app_id, s.app_user_id, s.logged_in, s.session_attrs,
		       b.user_id, b.member_user_id, b.multiverse_name, b.binding_attrs
		FROM external_sessions s
		LEFT JOIN multiverse_bindings b
		  ON b.app_id = s.app_id AND b.app_user_id = s.app_user_id
		WHERE s.app_id = ? AND s.app_user_id = ?`,
		appID, appUserID)

	var (
		s            sessions.Session
		loggedIn     int
		sessionAttrs string
		userID       sql.NullString
		memberUserID sql.NullString
		multiverse   sql.NullString
		bindingAttrs sql.NullString
	)
	err := row.Scan(&s.AppID, &s.AppUserID, &loggedIn, &sessionAttrs,
		&userID, &memberUserID, &multiverse, &bindingAttrs)
	if err == sql.ErrNoRows {
		return nil, interrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load session with binding: %w", err)
	}

	s.LoggedIn = loggedIn != 0
	if err := json.Unmarshal([]byte(sessionAttrs), &s.Attrs); err != nil {
		return nil, fmt.Errorf("store: decode session attrs: %w", err)
	}

	view := &sessions.View{Session: s}
	if userID.Valid {
		b := &sessions.Binding{
			AppID:          s.AppID,
			AppUserID:      s.AppUserID,
			UserID:         userID.String,
			MemberUserID:   memberUserID.String,
			MultiverseName: multiverse.String,
		}
		if err := json.Unmarshal([]byte(bindingAttrs.String), &b.Attrs); err != nil {
			return nil, fmt.Errorf("store: decode binding attrs: %w", err)
		}
		view.Binding = b
	}
	return view, nil
}

func (sr *sessionRepo) SetLoggedIn(ctx context.Context, appID, appUserID string, loggedIn bool) error {
	res, err := sr.q.ExecContext(ctx, `
		UPDATE external_sessions
		SET logged_in = ?, updated_at = datetime('now')
		WHERE app_id = ? AND app_user_id = ?`,
		boolToInt(loggedIn), appID, appUserID)
	if err != nil {
		return fmt.Errorf("store: set logged in: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: set logged in rows affected: %w", err)
	}
	if affected == 0 {
		return interrors.ErrSessionNotFound
	}
	return nil
}

func scanSession(row *sql.Row) (*sessions.Session, error) {
	var (
		s        sessions.Session
		loggedIn int
		attrs    string
	)
	if err := row.Scan(&s.AppID, &s.AppUserID, &loggedIn, &attrs); err != nil {
		if err == sql.ErrNoRows {
			return nil, interrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("store: scan session: %w", err)
	}
	s.LoggedIn = loggedIn != 0
	if err := json.Unmarshal([]byte(attrs), &s.Attrs); err != nil {
		return nil, fmt.Errorf("store: decode session attrs: %w", err)
	}
	return &s, nil
}

var _ sessions.BindingRepo = (*bindingRepo)(nil)

type bindingRepo struct {
	q dbtx
}

func (br *bindingRepo) Upsert(ctx context.Context, b *sessions.Binding) error {
	attrs, err := json.Marshal(orEmpty(b.Attrs))
	if err != nil {
		return fmt.Errorf("store: encode binding attrs: %w", err)
	}
	_, err = br.q.ExecContext(ctx, `
		INSERT INTO multiverse_bindings
			(app_id, app_user_id, user_id, member_user_id, multiverse_name, binding_attrs)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (app_id, app_user_id) DO UPDATE SET
			user_id         = excluded.user_id,
			member_user_id  = excluded.member_user_id,
			multiverse_name = excluded.multiverse_name,
			binding_attrs   = excluded.binding_attrs,
			updated_at      = datetime('now')`,
		b.AppID, b.AppUserID, b.UserID, b.MemberUserID, b.MultiverseName, string(attrs))
	if err != nil {
		return fmt.Errorf("store: upsert binding: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
