package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateUserToken(t *testing.T) {
	config := Config{Secret: "test-secret", TokenTTL: time.Hour}

	token, err := GenerateUserToken(config, "user-1", "Maria", "Admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(config.Secret, token)
	require.NoError(t, err)
	assert.Equal(t, SubjectUser, claims.Kind)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Maria", claims.Name)
	assert.Equal(t, "Admin", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateAndValidateRobotToken(t *testing.T) {
	config := Config{Secret: "test-secret"}

	token, err := GenerateRobotToken(config, "robot-uuid", "R1")
	require.NoError(t, err)

	claims, err := ValidateToken(config.Secret, token)
	require.NoError(t, err)
	assert.Equal(t, SubjectRobot, claims.Kind)
	assert.Equal(t, "robot-uuid", claims.RobotID)
	assert.Equal(t, "R1", claims.Identifier)

	// Robot tokens carry no expiry
	assert.Nil(t, claims.ExpiresAt)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	config := Config{Secret: "secret-a", TokenTTL: time.Hour}

	token, err := GenerateUserToken(config, "user-1", "Maria", "Admin")
	require.NoError(t, err)

	_, err = ValidateToken("secret-b", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	config := Config{Secret: "test-secret", TokenTTL: -time.Minute}

	token, err := GenerateUserToken(config, "user-1", "Maria", "Admin")
	require.NoError(t, err)

	_, err = ValidateToken(config.Secret, token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("test-secret", "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
