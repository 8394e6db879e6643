// Package bridge implements the session and command protocol between an
// external chat application and the internal multiverse backend: session
// bootstrap, command classification, credential login, one-time-token
// authorization and the routing decision that turns a chat message into a
// timeline post.
package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-chat-bridge/identity"
	interrors "github.com/jrsteele09/go-chat-bridge/internal/errors"
	"github.com/jrsteele09/go-chat-bridge/internal/utils"
	"github.com/jrsteele09/go-chat-bridge/multiverse"
	"github.com/jrsteele09/go-chat-bridge/sessions"
)

// Reply texts sent back to the chat user. Validation and authentication
// failures are answered with these; they never raise to the transport layer.
const (
	ReplyAlreadyLoggedIn = "you are already logged in"
	ReplyLoginSucceeded  = "login succeeded"
	ReplyLoginFailed     = "login failed"
	ReplyBadFormat       = "bad format"
	ReplyLoggedOff       = "logged off"
	ReplyLoginFirst      = "please log in first"
	ReplyAuthorized      = "authorization succeeded"
	ReplyAuthorizeFailed = "authorization failed"
)

// ReplyFunc delivers one reply text back to the external chat platform. The
// protocol invokes it at most once per message.
type ReplyFunc func(text string)

// Service is the session protocol state machine. It is stateless between
// messages; all session state lives in the storage handles of the UnitOfWork.
type Service struct {
	nowTime func() time.Time
}

// ServiceOption modifies a Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func NewService(options ...ServiceOption) *Service {
	s := &Service{nowTime: time.Now}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// HandleMessage processes one inbound message for an external identity. It must
// be executed inside a caller-supplied transaction boundary that commits on nil
// return and rolls back on error. User-level failures (bad command, wrong
// password, missing permissions) are answered through reply and return nil;
// collaborator and storage failures return an error so the unit of work aborts
// with no partial session mutation.
func (s *Service) HandleMessage(ctx context.Context, uow UnitOfWork, appID, appUserID, rawText string, reply ReplyFunc) error {
	if _, err := uow.Sessions.Ensure(ctx, appID, appUserID); err != nil {
		return errors.Wrap(err, "[Service.HandleMessage] Ensure")
	}

	view, err := uow.Sessions.LoadWithBinding(ctx, appID, appUserID)
	if err != nil {
		if interrors.Is(err, interrors.ErrSessionNotFound) {
			// Cannot happen after a successful Ensure; a bug, not a user failure.
			return errors.Wrap(interrors.ErrInternal, "[Service.HandleMessage] session missing after Ensure")
		}
		return errors.Wrap(err, "[Service.HandleMessage] LoadWithBinding")
	}

	cmd := Classify(rawText)
	switch cmd.Kind {
	case KindLogin:
		return s.handleLogin(ctx, uow, view, cmd, reply)
	case KindLogoff:
		return s.handleLogoff(ctx, uow, view, reply)
	case KindAuthorize:
		return s.handleAuthorize(ctx, uow, view, cmd, reply)
	case KindSend, KindDefault:
		return s.handleForward(ctx, uow, view, cmd.Body(), reply)
	}
	return errors.Errorf("[Service.HandleMessage] unhandled command kind %d", cmd.Kind)
}

func (s *Service) handleLogin(ctx context.Context, uow UnitOfWork, view *sessions.View, cmd Command, reply ReplyFunc) error {
	if view.IsLoggedIn() {
		reply(ReplyAlreadyLoggedIn)
		return nil
	}

	address, password := cmd.LoginArgs()
	if address == "" {
		// A previously bound session may re-login without credentials. This is
		// a shortcut for already-authorized sessions only, never for unbound ones.
		if !view.EnabledLogin() {
			reply(ReplyBadFormat)
			return nil
		}
		if err := uow.Sessions.SetLoggedIn(ctx, view.Session.AppID, view.Session.AppUserID, true); err != nil {
			return errors.Wrap(err, "[Service.handleLogin] SetLoggedIn")
		}
		reply(ReplyLoginSucceeded)
		return nil
	}

	username, memberUsername, multiverseName := ParseMultiverseAddress(address)
	if multiverseName == "" {
		multiverseName = multiverse.DefaultName
	}
	for _, u := range []string{username, memberUsername} {
		exists, err := uow.Identity.Exists(ctx, u)
		if err != nil {
			return errors.Wrap(err, "[Service.handleLogin] Exists")
		}
		if !exists {
			reply(ReplyBadFormat)
			return nil
		}
	}

	// A denied flag is deliberately indistinguishable from malformed input in
	// the user-visible reply.
	for _, flag := range []string{identity.FlagAllowMemberLogin, identity.FlagAllowSelfLogin} {
		value, err := uow.Permissions.ReadFlag(ctx, username, memberUsername, multiverseName, flag)
		if err != nil {
			return errors.Wrap(err, "[Service.handleLogin] ReadFlag")
		}
		if !utils.Value(value) {
			reply(ReplyBadFormat)
			return nil
		}
	}

	verifier := identity.NewVerifier(uow.Identity, identity.WithNowTime(s.nowTime))
	result, err := verifier.Verify(ctx, memberUsername, password)
	if err != nil {
		if interrors.Is(err, interrors.ErrUnknownOrDisabledUser) {
			reply(ReplyLoginFailed)
			return nil
		}
		return errors.Wrap(err, "[Service.handleLogin] Verify")
	}
	if !result.Verified {
		reply(ReplyLoginFailed)
		return nil
	}

	userID, err := uow.Identity.UserID(ctx, username)
	if err != nil {
		return errors.Wrap(err, "[Service.handleLogin] UserID")
	}

	if err := uow.Sessions.SetLoggedIn(ctx, view.Session.AppID, view.Session.AppUserID, true); err != nil {
		return errors.Wrap(err, "[Service.handleLogin] SetLoggedIn")
	}
	if err := uow.Bindings.Upsert(ctx, &sessions.Binding{
		AppID:          view.Session.AppID,
		AppUserID:      view.Session.AppUserID,
		UserID:         userID,
		MemberUserID:   result.UserID,
		MultiverseName: multiverseName,
		Attrs:          map[string]string{},
	}); err != nil {
		return errors.Wrap(err, "[Service.handleLogin] Bindings.Upsert")
	}

	reply(ReplyLoginSucceeded)
	return nil
}

func (s *Service) handleLogoff(ctx context.Context, uow UnitOfWork, view *sessions.View, reply ReplyFunc) error {
	if !view.IsLoggedIn() {
		reply(ReplyLoginFirst)
		return nil
	}
	if err := uow.Sessions.SetLoggedIn(ctx, view.Session.AppID, view.Session.AppUserID, false); err != nil {
		return errors.Wrap(err, "[Service.handleLogoff] SetLoggedIn")
	}
	reply(ReplyLoggedOff)
	return nil
}

func (s *Service) handleAuthorize(ctx context.Context, uow UnitOfWork, view *sessions.View, cmd Command, reply ReplyFunc) error {
	if view.IsLoggedIn() {
		reply(ReplyAlreadyLoggedIn)
		return nil
	}

	profile, err := uow.Tokens.Resolve(ctx, cmd.Token())
	if err != nil {
		if interrors.Is(err, interrors.ErrInvalidToken) {
			reply(ReplyAuthorizeFailed)
			return nil
		}
		return errors.Wrap(err, "[Service.handleAuthorize] Tokens.Resolve")
	}

	if err := uow.Bindings.Upsert(ctx, &sessions.Binding{
		AppID:          view.Session.AppID,
		AppUserID:      view.Session.AppUserID,
		UserID:         profile.UserID,
		MemberUserID:   profile.MemberUserID,
		MultiverseName: profile.MultiverseName,
		Attrs:          map[string]string{},
	}); err != nil {
		return errors.Wrap(err, "[Service.handleAuthorize] Bindings.Upsert")
	}

	reply(ReplyAuthorized)
	return nil
}

func (s *Service) handleForward(ctx context.Context, uow UnitOfWork, view *sessions.View, body string, reply ReplyFunc) error {
	if !view.IsLoggedIn() {
		reply(ReplyLoginFirst)
		return nil
	}

	binding := view.Binding
	timelineID, err := uow.Forwarder.ResolveTimeline(ctx, binding.UserID, binding.MemberUserID, binding.MultiverseName)
	if err != nil {
		return errors.Wrap(err, "[Service.handleForward] ResolveTimeline")
	}

	if _, err := uow.Forwarder.PostMessage(ctx, multiverse.PostParams{
		ScopeID:      multiverse.ScopeLocal,
		ParentUserID: binding.UserID,
		UserID:       binding.UserID,
		MemberUserID: binding.MemberUserID,
		TimelineID:   timelineID,
		Text:         body,
		ContentType:  multiverse.ContentText,
	}); err != nil {
		return errors.Wrap(err, "[Service.handleForward] PostMessage")
	}

	reply(fmt.Sprintf("sent %q", body))
	return nil
}
