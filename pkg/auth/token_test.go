package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pickpackhq/pickpack-backend/pkg/config"
	"github.com/pickpackhq/pickpack-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "pickpack-test",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseActorToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	now := time.Now().UTC()

	signed, err := MintActorToken(cfg, now, ActorTokenPayload{
		UserID: userID,
		Role:   enums.ActorRolePicker,
	})
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := ParseActorToken(cfg, signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, enums.ActorRolePicker, claims.Role)
	assert.Equal(t, cfg.Issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestMintActorTokenRejectsInvalidInput(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	_, err := MintActorToken(cfg, now, ActorTokenPayload{Role: enums.ActorRolePicker})
	assert.Error(t, err)

	_, err = MintActorToken(cfg, now, ActorTokenPayload{UserID: uuid.New(), Role: enums.ActorRole("ghost")})
	assert.Error(t, err)

	cfg.Secret = ""
	_, err = MintActorToken(cfg, now, ActorTokenPayload{UserID: uuid.New(), Role: enums.ActorRoleAdmin})
	assert.Error(t, err)
}

func TestParseActorTokenRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintActorToken(cfg, time.Now(), ActorTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRolePacker,
	})
	require.NoError(t, err)

	other := cfg
	other.Secret = "different"
	_, err = ParseActorToken(other, signed)
	assert.Error(t, err)
}

func TestParseActorTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintActorToken(cfg, time.Now().Add(-2*time.Hour), ActorTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleAdmin,
	})
	require.NoError(t, err)

	_, err = ParseActorToken(cfg, signed)
	assert.Error(t, err)
}
