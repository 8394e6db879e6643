package bridge_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-chat-bridge/bridge"
	"github.com/jrsteele09/go-chat-bridge/identity"
	identityrepofake "github.com/jrsteele09/go-chat-bridge/identity/repofake"
	"github.com/jrsteele09/go-chat-bridge/multiverse"
	"github.com/jrsteele09/go-chat-bridge/multiverse/fakeforwarder"
	"github.com/jrsteele09/go-chat-bridge/sessions/repofakes"
	"github.com/jrsteele09/go-chat-bridge/tokens"
	tokenrepofake "github.com/jrsteele09/go-chat-bridge/tokens/repofake"
)

const (
	testAppID      = "A-test-app"
	testAppUserID  = "U-chat-user"
	testUsername   = "bob"
	testMember     = "alice"
	testMultiverse = "local"
	testPassword   = "secret123"
)

// testFixture holds all test dependencies
type testFixture struct {
	sessionRepo  *repofakes.FakeSessionRepo
	identityRepo *identityrepofake.FakeIdentityRepo
	tokenRepo    *tokenrepofake.FakeTokenResolver
	forwarder    *fakeforwarder.FakeForwarder
	service      *bridge.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	return &testFixture{
		sessionRepo:  repofakes.NewFakeSessionRepo(),
		identityRepo: identityrepofake.NewFakeIdentityRepo(),
		tokenRepo:    tokenrepofake.NewFakeTokenResolver(),
		forwarder:    fakeforwarder.NewFakeForwarder(),
		service:      bridge.NewService(),
	}
}

func (f *testFixture) uow() bridge.UnitOfWork {
	return bridge.UnitOfWork{
		Sessions:    f.sessionRepo,
		Bindings:    f.sessionRepo,
		Identity:    f.identityRepo,
		Permissions: f.identityRepo,
		Tokens:      f.tokenRepo,
		Forwarder:   f.forwarder,
	}
}

// handle runs one message through the protocol and returns the reply text.
func (f *testFixture) handle(t *testing.T, text string) string {
	t.Helper()

	var reply string
	err := f.service.HandleMessage(context.Background(), f.uow(), testAppID, testAppUserID, text, func(r string) {
		reply = r
	})
	require.NoError(t, err)
	return reply
}

// createLoginIdentities seeds the principal and member identities, their
// permission flags and the member's credential, and returns the member's
// user-member timeline ID.
func (f *testFixture) createLoginIdentities(t *testing.T) (userID, memberUserID, timelineID string) {
	t.Helper()

	userID = f.identityRepo.AddUser(testUsername)
	memberUserID = f.identityRepo.AddUser(testMember)

	passwordHash, err := identity.HashPassword(testPassword)
	require.NoError(t, err)
	f.identityRepo.AddCredential(identity.Credential{
		Username:     testMember,
		UserID:       memberUserID,
		PasswordHash: passwordHash,
		Algorithm:    identity.AlgorithmBcrypt,
		Enabled:      true,
	})

	f.identityRepo.SetFlag(testUsername, testMember, testMultiverse, identity.FlagAllowMemberLogin, true)
	f.identityRepo.SetFlag(testUsername, testMember, testMultiverse, identity.FlagAllowSelfLogin, true)

	timelineID = f.forwarder.AddTimeline(userID, memberUserID, testMultiverse)
	return userID, memberUserID, timelineID
}

// TestLogin_Success covers the full /login path: identities exist, flags are
// set, password matches.
func TestLogin_Success(t *testing.T) {
	f := setupTestFixture(t)
	userID, memberUserID, _ := f.createLoginIdentities(t)

	reply := f.handle(t, "/login alice@bob/local secret123")

	require.Equal(t, bridge.ReplyLoginSucceeded, reply)
	require.True(t, f.sessionRepo.Session(testAppID, testAppUserID).LoggedIn)

	binding := f.sessionRepo.Binding(testAppID, testAppUserID)
	require.NotNil(t, binding)
	require.Equal(t, userID, binding.UserID)
	require.Equal(t, memberUserID, binding.MemberUserID)
	require.Equal(t, testMultiverse, binding.MultiverseName)
}

// TestLogin_AddressWithoutMultiverse: an address without a multiverse segment
// falls back to the default multiverse, so flags and timelines registered
// under "local" still apply.
func TestLogin_AddressWithoutMultiverse(t *testing.T) {
	f := setupTestFixture(t)
	f.createLoginIdentities(t)

	reply := f.handle(t, "/login alice@bob secret123")

	require.Equal(t, bridge.ReplyLoginSucceeded, reply)
	binding := f.sessionRepo.Binding(testAppID, testAppUserID)
	require.NotNil(t, binding)
	require.Equal(t, multiverse.DefaultName, binding.MultiverseName)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := setupTestFixture(t)
	f.createLoginIdentities(t)

	reply := f.handle(t, "/login alice@bob/local wrong-password")

	require.Equal(t, bridge.ReplyLoginFailed, reply)
	require.False(t, f.sessionRepo.Session(testAppID, testAppUserID).LoggedIn)
	require.Nil(t, f.sessionRepo.Binding(testAppID, testAppUserID))
}

func TestLogin_UnknownIdentity(t *testing.T) {
	f := setupTestFixture(t)
	f.createLoginIdentities(t)

	reply := f.handle(t, "/login nobody@bob/local secret123")

	require.Equal(t, bridge.ReplyBadFormat, reply)
	require.Nil(t, f.sessionRepo.Binding(testAppID, testAppUserID))
}

func TestLogin_UnparseableAddress(t *testing.T) {
	f := setupTestFixture(t)
	f.createLoginIdentities(t)

	// Fallback parsing treats the token as a member username with no
	// principal; the existence check rejects it.
	reply := f.handle(t, "/login alice secret123")

	require.Equal(t, bridge.ReplyBadFormat, reply)
}

// TestLogin_FlagsDenied checks that a denied permission flag is answered with
// the same reply as malformed input.
func TestLogin_FlagsDenied(t *testing.T) {
	f := setupTestFixture(t)
	f.createLoginIdentities(t)
	f.identityRepo.SetFlag(testUsername, testMember, testMultiverse, identity.FlagAllowMemberLogin, false)

	reply := f.handle(t, "/login alice@bob/local secret123")

	require.Equal(t, bridge.ReplyBadFormat, reply)
	require.False(t, f.sessionRepo.Session(testAppID, testAppUserID).LoggedIn)
}

func TestLogin_MissingFlagReadsAsDenied(t *testing.T) {
	f := setupTestFixture(t)
	f.createLoginIdentities(t)

	// Flags were only set for the "local" multiverse.
	reply := f.handle(t, "/login alice@bob/other secret123")

	require.Equal(t, bridge.ReplyBadFormat, reply)
}

func TestLogin_DisabledCredential(t *testing.T) {
	f := setupTestFixture(t)
	_, memberUserID, _ := f.createLoginIdentities(t)

	passwordHash, err := identity.HashPassword(testPassword)
	require.NoError(t, err)
	f.identityRepo.AddCredential(identity.Credential{
		Username:     testMember,
		UserID:       memberUserID,
		PasswordHash: passwordHash,
		Algorithm:    identity.AlgorithmBcrypt,
		Enabled:      false,
	})

	reply := f.handle(t, "/login alice@bob/local secret123")

	require.Equal(t, bridge.ReplyLoginFailed, reply)
}

func TestLogin_AlreadyLoggedIn(t *testing.T) {
	f := setupTestFixture(t)
	f.createLoginIdentities(t)
	f.handle(t, "/login alice@bob/local secret123")

	reply := f.handle(t, "/login alice@bob/local secret123")

	require.Equal(t, bridge.ReplyAlreadyLoggedIn, reply)
}

// TestLogin_PasswordlessShortcut: a bare /login succeeds without a password
// check when a binding already exists.
func TestLogin_PasswordlessShortcut(t *testing.T) {
	f := setupTestFixture(t)
	f.createLoginIdentities(t)
	f.handle(t, "/login alice@bob/local secret123")
	f.handle(t, "/logoff")

	reply := f.handle(t, "/login")

	require.Equal(t, bridge.ReplyLoginSucceeded, reply)
	require.True(t, f.sessionRepo.Session(testAppID, testAppUserID).LoggedIn)
}

func TestLogin_BareLoginWithoutBinding(t *testing.T) {
	f := setupTestFixture(t)

	reply := f.handle(t, "/login")

	require.Equal(t, bridge.ReplyBadFormat, reply)
	require.False(t, f.sessionRepo.Session(testAppID, testAppUserID).LoggedIn)
}

func TestLogoff_FromLoggedIn(t *testing.T) {
	f := setupTestFixture(t)
	f.createLoginIdentities(t)
	f.handle(t, "/login alice@bob/local secret123")

	reply := f.handle(t, "/logoff")

	require.Equal(t, bridge.ReplyLoggedOff, reply)
	require.False(t, f.sessionRepo.Session(testAppID, testAppUserID).LoggedIn)
	// The binding survives a logoff.
	require.NotNil(t, f.sessionRepo.Binding(testAppID, testAppUserID))
}

func TestLogoff_WithoutLogin(t *testing.T) {
	f := setupTestFixture(t)

	reply := f.handle(t, "/logoff")

	require.Equal(t, bridge.ReplyLoginFirst, reply)
}

func TestAuthorize_Success(t *testing.T) {
	f := setupTestFixture(t)
	profile := tokens.Profile{UserID: "uid-1", MemberUserID: "uid-2", MultiverseName: testMultiverse}
	f.tokenRepo.Issue("tok-1", profile)

	reply := f.handle(t, "/authorize tok-1")

	require.Equal(t, bridge.ReplyAuthorized, reply)
	binding := f.sessionRepo.Binding(testAppID, testAppUserID)
	require.NotNil(t, binding)
	require.Equal(t, profile.UserID, binding.UserID)
	require.Equal(t, profile.MemberUserID, binding.MemberUserID)
	require.Equal(t, profile.MultiverseName, binding.MultiverseName)

	// Authorization binds the session but does not log it in.
	require.False(t, f.sessionRepo.Session(testAppID, testAppUserID).LoggedIn)
}

func TestAuthorize_InvalidToken(t *testing.T) {
	f := setupTestFixture(t)

	reply := f.handle(t, "/authorize bogus")

	require.Equal(t, bridge.ReplyAuthorizeFailed, reply)
	require.Nil(t, f.sessionRepo.Binding(testAppID, testAppUserID))
}

func TestAuthorize_TokenIsConsumedOnce(t *testing.T) {
	f := setupTestFixture(t)
	f.tokenRepo.Issue("tok-1", tokens.Profile{UserID: "uid-1", MemberUserID: "uid-2", MultiverseName: testMultiverse})

	require.Equal(t, bridge.ReplyAuthorized, f.handle(t, "/authorize tok-1"))
	require.Equal(t, bridge.ReplyAuthorizeFailed, f.handle(t, "/authorize tok-1"))
}

func TestAuthorize_AlreadyLoggedIn(t *testing.T) {
	f := setupTestFixture(t)
	f.createLoginIdentities(t)
	f.handle(t, "/login alice@bob/local secret123")

	reply := f.handle(t, "/authorize tok-1")

	require.Equal(t, bridge.ReplyAlreadyLoggedIn, reply)
}

// TestSend_ForwardsToTimeline covers the /send path while logged in.
func TestSend_ForwardsToTimeline(t *testing.T) {
	f := setupTestFixture(t)
	userID, memberUserID, timelineID := f.createLoginIdentities(t)
	f.handle(t, "/login alice@bob/local secret123")

	reply := f.handle(t, "/send hello world")

	require.Equal(t, `sent "hello world"`, reply)
	posts := f.forwarder.Posts()
	require.Len(t, posts, 1)
	require.Equal(t, multiverse.ScopeLocal, posts[0].ScopeID)
	require.Equal(t, userID, posts[0].UserID)
	require.Equal(t, userID, posts[0].ParentUserID)
	require.Equal(t, memberUserID, posts[0].MemberUserID)
	require.Equal(t, timelineID, posts[0].TimelineID)
	require.Equal(t, "hello world", posts[0].Text)
	require.Equal(t, multiverse.ContentText, posts[0].ContentType)
}

func TestDefaultText_ForwardsToTimeline(t *testing.T) {
	f := setupTestFixture(t)
	f.createLoginIdentities(t)
	f.handle(t, "/login alice@bob/local secret123")

	reply := f.handle(t, "just some chatter")

	require.Equal(t, `sent "just some chatter"`, reply)
	require.Len(t, f.forwarder.Posts(), 1)
}

func TestSend_WithoutLogin(t *testing.T) {
	f := setupTestFixture(t)

	reply := f.handle(t, "/send hello")

	require.Equal(t, bridge.ReplyLoginFirst, reply)
	require.Empty(t, f.forwarder.Posts())
}

func TestDefaultText_WhileAuthorizedOnly(t *testing.T) {
	f := setupTestFixture(t)
	f.tokenRepo.Issue("tok-1", tokens.Profile{UserID: "uid-1", MemberUserID: "uid-2", MultiverseName: testMultiverse})
	f.handle(t, "/authorize tok-1")

	reply := f.handle(t, "random text")

	require.Equal(t, bridge.ReplyLoginFirst, reply)
	require.Empty(t, f.forwarder.Posts())
}

// TestSend_ForwarderFailurePropagates: backend errors abort the unit of work
// instead of being answered with a reply.
func TestSend_ForwarderFailurePropagates(t *testing.T) {
	f := setupTestFixture(t)
	f.createLoginIdentities(t)
	f.handle(t, "/login alice@bob/local secret123")
	f.forwarder.FailWith(errors.New("backend down"))

	var replied bool
	err := f.service.HandleMessage(context.Background(), f.uow(), testAppID, testAppUserID, "/send hello", func(string) {
		replied = true
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "backend down")
	require.False(t, replied, "no reply on collaborator failure; the transport acknowledges the error")
}

// TestSessionIsCreatedOnFirstContact: any first message creates the session
// row in UNAUTHENTICATED state.
func TestSessionIsCreatedOnFirstContact(t *testing.T) {
	f := setupTestFixture(t)

	f.handle(t, "hello?")

	s := f.sessionRepo.Session(testAppID, testAppUserID)
	require.NotNil(t, s)
	require.False(t, s.LoggedIn)
}
