package server

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-chat-bridge/identity"
	"github.com/jrsteele09/go-chat-bridge/internal/config"
	"github.com/jrsteele09/go-chat-bridge/internal/store"
	"github.com/jrsteele09/go-chat-bridge/multiverse"
)

// InitialiseSystem seeds the optional bootstrap principal/member pair so a
// fresh deployment can complete a /login without out-of-band setup. It is
// idempotent and a no-op when the bootstrap env vars are unset.
func InitialiseSystem(ctx context.Context, cfg config.Config, st *store.Store) error {
	username := cfg.GetBootstrapUsername()
	memberUsername := cfg.GetBootstrapMemberUsername()
	password := cfg.GetBootstrapPassword()
	if username == "" || memberUsername == "" || password == "" {
		return nil
	}
	multiverseName := cfg.GetBootstrapMultiverse()

	userID, err := st.CreateUser(ctx, username)
	if err != nil {
		return errors.Wrap(err, "[InitialiseSystem] CreateUser principal")
	}
	memberUserID, err := st.CreateUser(ctx, memberUsername)
	if err != nil {
		return errors.Wrap(err, "[InitialiseSystem] CreateUser member")
	}

	passwordHash, err := identity.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "[InitialiseSystem] HashPassword")
	}
	if err := st.UpsertCredential(ctx, identity.Credential{
		Username:     memberUsername,
		UserID:       memberUserID,
		PasswordHash: passwordHash,
		Algorithm:    identity.AlgorithmBcrypt,
		Enabled:      true,
	}); err != nil {
		return errors.Wrap(err, "[InitialiseSystem] UpsertCredential")
	}

	for _, flag := range []string{identity.FlagAllowMemberLogin, identity.FlagAllowSelfLogin} {
		if err := st.SetPermissionFlag(ctx, username, memberUsername, multiverseName, flag, true); err != nil {
			return errors.Wrap(err, "[InitialiseSystem] SetPermissionFlag")
		}
	}

	if _, err := st.CreateTimeline(ctx, userID, "", multiverse.PublicOutputTimeline); err != nil {
		return errors.Wrap(err, "[InitialiseSystem] CreateTimeline principal")
	}
	if _, err := st.CreateTimeline(ctx, userID, memberUserID, multiverse.PublicOutputTimeline); err != nil {
		return errors.Wrap(err, "[InitialiseSystem] CreateTimeline member")
	}

	log.Info().Str("username", username).Str("member", memberUsername).Msg("bootstrap identities initialised")
	return nil
}
