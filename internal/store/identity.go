package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jrsteele09/go-chat-bridge/identity"
	interrors "github.com/jrsteele09/go-chat-bridge/internal/errors"
)

var _ identity.Repo = (*identityRepo)(nil)

type identityRepo struct {
	q dbtx
}

func (ir *identityRepo) Exists(ctx context.Context, username string) (bool, error) {
	var n int
	err := ir.q.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE username = ?`, username).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: identity exists: %w", err)
	}
	return n > 0, nil
}

func (ir *identityRepo) UserID(ctx context.Context, username string) (string, error) {
	var id string
	err := ir.q.QueryRowContext(ctx,
		`SELECT user_id FROM users WHERE username = ?`, username).Scan(&id)
	if err == sql.ErrNoRows {
		return "", interrors.ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: resolve user id: %w", err)
	}
	return id, nil
}

func (ir *identityRepo) ActiveCredential(ctx context.Context, username string) (*identity.Credential, error) {
	row := ir.q.QueryRowContext(ctx, `
		SELECT username, user_id, password_hash, salt, algorithm, enabled, valid_from, valid_until
		FROM credentials
		WHERE username = ? AND enabled = 1`,
		username)

	var (
		cred       identity.Credential
		enabled    int
		validFrom  sql.NullString
		validUntil sql.NullString
	)
	err := row.Scan(&cred.Username, &cred.UserID, &cred.PasswordHash, &cred.Salt,
		&cred.Algorithm, &enabled, &validFrom, &validUntil)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load credential: %w", err)
	}

	cred.Enabled = enabled != 0
	if cred.ValidFrom, err = parseNullTime(validFrom); err != nil {
		return nil, fmt.Errorf("store: credential valid_from: %w", err)
	}
	if cred.ValidUntil, err = parseNullTime(validUntil); err != nil {
		return nil, fmt.Errorf("store: credential valid_until: %w", err)
	}
	return &cred, nil
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

var _ identity.PermissionRepo = (*permissionRepo)(nil)

type permissionRepo struct {
	q dbtx
}

func (pr *permissionRepo) ReadFlag(ctx context.Context, username, memberUsername, multiverseName, flag string) (*bool, error) {
	var value int
	err := pr.q.QueryRowContext(ctx, `
		SELECT value FROM permission_flags
		WHERE username = ? AND member_username = ? AND multiverse_name = ? AND flag = ?`,
		username, memberUsername, multiverseName, flag).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read flag: %w", err)
	}
	v := value != 0
	return &v, nil
}
