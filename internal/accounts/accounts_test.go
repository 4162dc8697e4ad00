package accounts

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePIN(t *testing.T) {
	assert.NoError(t, ValidatePIN("0420"))
	for _, bad := range []string{"", "123", "12345", "12a4", "١٢٣٤"} {
		assert.ErrorIs(t, ValidatePIN(bad), ErrInvalidPIN, bad)
	}
}

func TestHashAndCheckPIN(t *testing.T) {
	hash, err := HashPIN("1234")
	require.NoError(t, err)
	assert.NotEqual(t, "1234", hash)

	assert.NoError(t, CheckPIN(hash, "1234"))
	assert.ErrorIs(t, CheckPIN(hash, "4321"), ErrInvalidPIN)
	assert.ErrorIs(t, CheckPIN("", "1234"), ErrInvalidPIN)

	_, err = HashPIN("12")
	assert.ErrorIs(t, err, ErrInvalidPIN)
}

func TestNormalizeName(t *testing.T) {
	name, err := normalizeName("  ada  ")
	require.NoError(t, err)
	assert.Equal(t, "ada", name)

	_, err = normalizeName("   ")
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = normalizeName("a-very-long-display-name-that-goes-on")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestTokenRoundTrip(t *testing.T) {
	signed, exp, err := IssueToken("secret", 42, "ada", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ParseToken("secret", signed)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.PlayerID)
	assert.Equal(t, "ada", claims.DisplayName)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
}

func TestParseTokenRejects(t *testing.T) {
	signed, _, err := IssueToken("secret", 42, "ada", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := IssueToken("secret", 42, "ada", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A token signed with another algorithm is refused even with the right key.
	other := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"player_id": 42, "exp": time.Now().Add(time.Hour).Unix()})
	otherSigned, err := other.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseToken("secret", otherSigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noID := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	noIDSigned, err := noID.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseToken("secret", noIDSigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("secret", "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
