package bridge_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-chat-bridge/bridge"
)

func TestParseMultiverseAddress(t *testing.T) {
	tests := []struct {
		name           string
		token          string
		wantUsername   string
		wantMember     string
		wantMultiverse string
	}{
		{
			name:         "member at principal",
			token:        "alice@bob",
			wantUsername: "bob",
			wantMember:   "alice",
		},
		{
			name:           "member at principal with multiverse",
			token:          "alice@bob/local",
			wantUsername:   "bob",
			wantMember:     "alice",
			wantMultiverse: "local",
		},
		{
			name:           "uri shaped address",
			token:          "tbc://alice@bob/local",
			wantUsername:   "bob",
			wantMember:     "alice",
			wantMultiverse: "local",
		},
		{
			name:           "trailing path segments are dropped",
			token:          "alice@bob/local/extra",
			wantUsername:   "bob",
			wantMember:     "alice",
			wantMultiverse: "local",
		},
		{
			name:       "bare token falls back to member",
			token:      "alice",
			wantMember: "alice",
		},
		{
			name:       "missing principal falls back",
			token:      "alice@",
			wantMember: "alice@",
		},
		{
			name:       "missing member falls back",
			token:      "@bob",
			wantMember: "@bob",
		},
		{
			name:  "empty token",
			token: "",
		},
		{
			name:       "garbage never fails",
			token:      ":*@/@@//:",
			wantMember: ":*@/@@//:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			username, member, multiverseName := bridge.ParseMultiverseAddress(tt.token)
			require.Equal(t, tt.wantUsername, username)
			require.Equal(t, tt.wantMember, member)
			require.Equal(t, tt.wantMultiverse, multiverseName)
		})
	}
}
