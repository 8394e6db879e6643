package bridge_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-chat-bridge/bridge"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind bridge.Kind
		wantArgs string
	}{
		{
			name:     "login with address and password",
			raw:      "/login alice@bob secret123",
			wantKind: bridge.KindLogin,
			wantArgs: "alice@bob secret123",
		},
		{
			name:     "bare login",
			raw:      "/login",
			wantKind: bridge.KindLogin,
			wantArgs: "",
		},
		{
			name:     "logoff",
			raw:      "/logoff",
			wantKind: bridge.KindLogoff,
			wantArgs: "",
		},
		{
			name:     "authorize with token",
			raw:      "/authorize abc-123",
			wantKind: bridge.KindAuthorize,
			wantArgs: "abc-123",
		},
		{
			name:     "send with body",
			raw:      "/send hello world",
			wantKind: bridge.KindSend,
			wantArgs: "hello world",
		},
		{
			name:     "default text",
			raw:      "random text",
			wantKind: bridge.KindDefault,
			wantArgs: "random text",
		},
		{
			name:     "surrounding whitespace is trimmed",
			raw:      "   /logoff   ",
			wantKind: bridge.KindLogoff,
			wantArgs: "",
		},
		{
			name:     "fenced block is unwrapped",
			raw:      "```\n/login alice@bob secret123\n```",
			wantKind: bridge.KindLogin,
			wantArgs: "alice@bob secret123",
		},
		{
			name:     "fenced default text",
			raw:      "look at this ```some content``` thanks",
			wantKind: bridge.KindDefault,
			wantArgs: "some content",
		},
		{
			name:     "reserved verb wins over default content",
			raw:      "/login is a command I wanted to talk about",
			wantKind: bridge.KindLogin,
			wantArgs: "is a command I wanted to talk about",
		},
		{
			name:     "empty text",
			raw:      "",
			wantKind: bridge.KindDefault,
			wantArgs: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := bridge.Classify(tt.raw)
			require.Equal(t, tt.wantKind, cmd.Kind)
			require.Equal(t, tt.wantArgs, cmd.Args)
		})
	}
}

func TestCommand_LoginArgs(t *testing.T) {
	address, password := bridge.Classify("/login alice@bob secret123").LoginArgs()
	require.Equal(t, "alice@bob", address)
	require.Equal(t, "secret123", password)

	address, password = bridge.Classify("/login alice@bob").LoginArgs()
	require.Equal(t, "alice@bob", address)
	require.Empty(t, password)

	address, password = bridge.Classify("/login").LoginArgs()
	require.Empty(t, address)
	require.Empty(t, password)
}

func TestCommand_Token(t *testing.T) {
	require.Equal(t, "tok-1", bridge.Classify("/authorize tok-1").Token())
	require.Empty(t, bridge.Classify("/authorize").Token())
}

func TestCommand_Body(t *testing.T) {
	require.Equal(t, "hello world", bridge.Classify("/send hello world").Body())
	require.Equal(t, "hello world", bridge.Classify("hello world").Body())
}
