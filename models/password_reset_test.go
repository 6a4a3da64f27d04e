package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResetToken(t *testing.T) {
	token, err := NewResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)

	// 两次生成不应相同
	token2, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
}

func TestPasswordReset_IsValid(t *testing.T) {
	fresh := &PasswordReset{ExpiresAt: time.Now().Add(30 * time.Minute)}
	assert.False(t, fresh.IsExpired())
	assert.True(t, fresh.IsValid())

	expired := &PasswordReset{ExpiresAt: time.Now().Add(-time.Minute)}
	assert.True(t, expired.IsExpired())
	assert.False(t, expired.IsValid())

	used := &PasswordReset{ExpiresAt: time.Now().Add(30 * time.Minute), Used: true}
	assert.False(t, used.IsValid())
}
