package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grocerymarts/backend/internal/models"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret-pass"))
	assert.Error(t, CheckPassword(hash, "wrong-pass"))
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Generate(42, models.RoleAdmin)
	require.NoError(t, err)

	accountID, role, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), accountID)
	assert.Equal(t, models.RoleAdmin, role)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Generate(1, models.RoleUser)
	require.NoError(t, err)

	_, _, err = NewTokenManager("secret-b", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestTokenExpiryRejected(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Generate(1, models.RoleUser)
	require.NoError(t, err)

	_, _, err = tm.Parse(token)
	assert.Error(t, err)
}
