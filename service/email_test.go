package service

import (
	"testing"

	"fintrack/config"

	"github.com/stretchr/testify/assert"
)

func TestEmailService_Disabled(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: false})

	assert.False(t, svc.Enabled())
	err := svc.SendPasswordResetEmail("user@example.com", "tom", "http://localhost/reset")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "邮件服务未启用")
}

func TestEmailService_BuildResetEmailBody(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: true})

	body := svc.buildResetEmailBody("tom", "http://localhost:8080/reset-password?token=abc123")
	assert.Contains(t, body, "tom")
	assert.Contains(t, body, "http://localhost:8080/reset-password?token=abc123")
	assert.Contains(t, body, "重 置 密 码")
}
