package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	"github.com/Black-And-White-Club/royale-bot/config"
	"github.com/Black-And-White-Club/royale-bot/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(secret string) *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: secret, Issuer: "royale-bot", DefaultTTL: time.Hour}}
}

func TestMintToken(t *testing.T) {
	cfg := testConfig("secret")

	var out bytes.Buffer
	require.NoError(t, mintToken(&out, cfg, "ops", jwt.RoleOperator, 0))

	tokens := jwt.NewService(cfg.JWT.Secret, cfg.JWT.DefaultTTL, cfg.JWT.Issuer)
	claims, err := tokens.ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, string(jwt.RoleOperator), claims.Role)
}

func TestMintToken_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
		role jwt.Role
		want string
	}{
		{name: "unknown role", cfg: testConfig("secret"), role: "admin", want: "unknown role"},
		{name: "missing secret", cfg: testConfig(""), role: jwt.RoleViewer, want: "jwt secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := mintToken(&out, tt.cfg, "ops", tt.role, 0)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, out.String())
		})
	}
}

func TestLobbyCommand(t *testing.T) {
	cmd := lobbyCommand()
	names := make([]string, 0, len(cmd.Subcommands))
	for _, sub := range cmd.Subcommands {
		names = append(names, sub.Name)
		require.Len(t, sub.Flags, 2)
		assert.Equal(t, []string{"game", "g"}, sub.Flags[0].Names())
		assert.Equal(t, []string{"lobby", "l"}, sub.Flags[1].Names())
	}
	assert.Equal(t, []string{"add", "remove"}, names)

	var out bytes.Buffer
	require.NoError(t, writeLobbies(&out, "removed", 7, 11, []multiplayerdomain.LobbyID{10}))
	assert.Equal(t, "removed lobby 11; game 7 waits on lobbies [10]\n", out.String())
}
