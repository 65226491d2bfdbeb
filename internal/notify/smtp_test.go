package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kavachhq/kavach-backend/internal/config"
	"github.com/kavachhq/kavach-backend/internal/models"
)

func TestSendAlert_NotConfigured(t *testing.T) {
	m := NewMailer(config.SMTPConfig{})

	err := m.SendAlert(context.Background(), "user@example.com", models.Alert{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAlertEmailBody(t *testing.T) {
	body := alertEmailBody(models.Alert{
		Type:      models.AlertTypeLandslide,
		Level:     models.SeverityEmergency,
		Value:     92.5,
		Threshold: 70,
		Message:   "Landslide risk at 92.5% exceeds threshold",
		Location:  "Shimla",
		Timestamp: "2026-03-14 09:26:53",
	})

	assert.True(t, strings.Contains(body, "EMERGENCY"))
	assert.True(t, strings.Contains(body, "Landslide"))
	assert.True(t, strings.Contains(body, "Shimla"))
	assert.True(t, strings.Contains(body, "92.5"))
	assert.True(t, strings.Contains(body, "2026-03-14 09:26:53"))
	assert.True(t, strings.Contains(body, "stay safe"))
}
