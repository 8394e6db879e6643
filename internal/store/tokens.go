package store

import (
	"context"
	"database/sql"
	"fmt"

	interrors "github.com/jrsteele09/go-chat-bridge/internal/errors"
	"github.com/jrsteele09/go-chat-bridge/tokens"
)

var _ tokens.Resolver = (*tokenResolver)(nil)

type tokenResolver struct {
	q dbtx
}

func (tr *tokenResolver) Resolve(ctx context.Context, token string) (*tokens.Profile, error) {
	// Consume first: the conditional update makes the token single-use even
	// under concurrent resolution attempts.
	res, err := tr.q.ExecContext(ctx,
		`UPDATE one_time_tokens SET consumed = 1 WHERE token = ? AND consumed = 0`, token)
	if err != nil {
		return nil, fmt.Errorf("store: consume token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("store: consume token rows affected: %w", err)
	}
	if affected == 0 {
		return nil, interrors.ErrInvalidToken
	}

	var profile tokens.Profile
	err = tr.q.QueryRowContext(ctx, `
		SELECT user_id, member_user_id, multiverse_name
		FROM one_time_tokens WHERE token = ?`,
		token).Scan(&profile.UserID, &profile.MemberUserID, &profile.MultiverseName)
	if err == sql.ErrNoRows {
		return nil, interrors.ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("store: resolve token: %w", err)
	}
	return &profile, nil
}
