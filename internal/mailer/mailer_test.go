package mailer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPromotionActivatedBody(t *testing.T) {
	until := time.Date(2025, 4, 30, 12, 0, 0, 0, time.UTC)
	body := promotionActivatedBody("Fontanería García", until)

	assert.Contains(t, body, "Fontanería García")
	assert.Contains(t, body, "30 April 2025")
}
