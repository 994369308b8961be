// Package notify emits result messages to requesters and the operator.
// Messages are published to a durable queue consumed by the chat
// front-end; delivery is at-least-once and independent of outcome
// persistence.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/club-scheduler/internal/booking"
)

type Notifier interface {
	NotifyUser(ctx context.Context, chatID int64, text string) error
	NotifyOperator(ctx context.Context, text string) error
}

// ConfirmationText is sent to the requester after a completed booking.
func ConfirmationText(req booking.Request, players []booking.Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your %s booking for %s at %s is confirmed ✅\n",
		req.Sport, req.Date.Format("2006-01-02"), req.Hour)
	for _, p := range players {
		fmt.Fprintf(&b, "• %s (%s)\n", p.Name, p.NIF)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FailureText is the generic notice sent to the requester. Details go to
// the operator only.
func FailureText(req booking.Request) string {
	return fmt.Sprintf("Sorry, we could not book %s on %s at %s. You were not charged.",
		req.Sport, req.Date.Format("2006-01-02"), req.Hour)
}

// InsufficientCreditText is sent when a premium attempt is skipped
// before any session starts.
func InsufficientCreditText(req booking.Request) string {
	return fmt.Sprintf("Your booking for %s at %s was not attempted: no booking credits left. Top up and it will run on the next scheduled pass.",
		req.Date.Format("2006-01-02"), req.Hour)
}

// OperatorReport carries enough detail to debug a failed attempt.
func OperatorReport(req booking.Request, reason string) string {
	return fmt.Sprintf("booking failed: request=%d user=%d (%s) %s %s %s tier=%s reason=%s",
		req.ID, req.UserID, req.FirstName, req.Sport, req.Date.Format("2006-01-02"), req.Hour, req.Tier, reason)
}
