package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/club-scheduler/internal/booking"
)

func sampleRequest() booking.Request {
	return booking.Request{
		ID:        42,
		UserID:    7,
		ChatID:    1001,
		FirstName: "Marta",
		Sport:     booking.SportPadel,
		Date:      time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		Hour:      "08:00",
		Tier:      booking.TierPremium,
	}
}

func TestConfirmationTextListsPlayers(t *testing.T) {
	players := []booking.Player{
		{NIF: "46151293E", Name: "ANA GARCIA"},
		{NIF: "60105994W", Name: "LUIS PEREZ"},
	}
	text := ConfirmationText(sampleRequest(), players)

	assert.Contains(t, text, "padel")
	assert.Contains(t, text, "2024-03-20")
	assert.Contains(t, text, "08:00")
	assert.Contains(t, text, "ANA GARCIA (46151293E)")
	assert.Contains(t, text, "LUIS PEREZ (60105994W)")
}

func TestFailureTextOmitsDiagnostics(t *testing.T) {
	text := FailureText(sampleRequest())

	assert.Contains(t, text, "2024-03-20")
	assert.Contains(t, text, "08:00")
	assert.Contains(t, text, "not charged")
	assert.NotContains(t, text, "request=")
	assert.NotContains(t, text, "ElementTimeout")
}

func TestInsufficientCreditText(t *testing.T) {
	text := InsufficientCreditText(sampleRequest())
	assert.Contains(t, text, "credits")
	assert.Contains(t, text, "2024-03-20")
}

func TestOperatorReportCarriesDiagnostics(t *testing.T) {
	text := OperatorReport(sampleRequest(), "ValidationRejected: player id \"X0000000T\" not accepted")

	assert.Contains(t, text, "request=42")
	assert.Contains(t, text, "user=7")
	assert.Contains(t, text, "Marta")
	assert.Contains(t, text, "tier=premium")
	assert.Contains(t, text, "ValidationRejected")
}
