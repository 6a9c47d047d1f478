package security

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "01234567890123456789012345678901"

func TestNewPasetoMaker(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		maker, err := NewPasetoMaker(testKey)
		assert.NoError(t, err)
		assert.NotNil(t, maker)
	})

	t.Run("short key", func(t *testing.T) {
		_, err := NewPasetoMaker("too-short")
		assert.Error(t, err)
	})
}

func TestPasetoMakerRoundTrip(t *testing.T) {
	maker, err := NewPasetoMaker(testKey)
	require.NoError(t, err)

	actor := uuid.New()
	token, payload, err := maker.CreateToken(actor, RoleOracle, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotNil(t, payload)

	got, err := maker.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor, got.ActorID)
	assert.Equal(t, RoleOracle, got.Role)
	assert.WithinDuration(t, payload.ExpiredAt, got.ExpiredAt, time.Second)
}

func TestPasetoMakerExpired(t *testing.T) {
	maker, err := NewPasetoMaker(testKey)
	require.NoError(t, err)

	token, _, err := maker.CreateToken(uuid.New(), RoleBettor, -time.Minute)
	require.NoError(t, err)

	_, err = maker.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPasetoMakerInvalidToken(t *testing.T) {
	maker, err := NewPasetoMaker(testKey)
	require.NoError(t, err)

	_, err = maker.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewPayloadRejectsUnknownRole(t *testing.T) {
	_, err := NewPayload(uuid.New(), "superuser", time.Minute)
	assert.ErrorIs(t, err, ErrInvalidRole)
}
