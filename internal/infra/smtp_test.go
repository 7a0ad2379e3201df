package infra

import (
	"testing"

	"github.com/dSumitabha/multi-tenant/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewMailer_FromAddress(t *testing.T) {
	cfg := &config.Config{
		SMTPHost:   "smtp.example.com",
		SMTPPort:   587,
		SMTPUser:   "relay@example.com",
		AlertsFrom: "alerts@example.com",
	}
	m := NewMailer(cfg)
	assert.Equal(t, "alerts@example.com", m.from)
	assert.Equal(t, "smtp.example.com:587", m.addr)
}

func TestNewMailer_FromFallsBackToSMTPUser(t *testing.T) {
	m := NewMailer(&config.Config{SMTPUser: "relay@example.com"})
	assert.Equal(t, "relay@example.com", m.from)
}
