package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/club-scheduler/internal/nif"
)

type Sport string

const (
	SportPadel  Sport = "padel"
	SportTennis Sport = "tennis"
)

// PlayerCount is the number of participant identifiers the club portal
// requires for a booking of this sport. The member making the booking is
// not counted; padel courts require the three other players.
func (s Sport) PlayerCount() int {
	switch s {
	case SportPadel:
		return 3
	case SportTennis:
		return 1
	}
	return 0
}

func ParseSport(s string) (Sport, error) {
	switch Sport(strings.ToLower(strings.TrimSpace(s))) {
	case SportPadel:
		return SportPadel, nil
	case SportTennis:
		return SportTennis, nil
	}
	return "", fmt.Errorf("unknown sport %q", s)
}

type Tier string

const (
	TierPremium  Tier = "premium"
	TierStandard Tier = "standard"
)

func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierPremium:
		return TierPremium, nil
	case TierStandard:
		return TierStandard, nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// CanTransition reports whether a request may move from to the given
// status. Only pending requests move; terminal states never change.
func (s Status) CanTransition(to Status) bool {
	if s != StatusPending {
		return false
	}
	switch to {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Credentials is a member's portal login, decrypted from the user row for
// the duration of a run. Never persisted in the clear.
type Credentials struct {
	Username string
	Password string
}

// Request is one reservation request owned by the external store. The
// orchestrator only ever writes status and executed_at.
type Request struct {
	ID        int64
	UserID    int64
	ChatID    int64
	FirstName string

	Sport     Sport
	Date      time.Time // civil date of the slot, midnight in the portal timezone
	Hour      string    // "HH:MM"
	PlayerIDs []string
	Tier      Tier
	Status    Status

	CreatedAt  time.Time
	ExecutedAt *time.Time

	Credentials Credentials
}

func (r Request) Validate() error {
	if r.Sport.PlayerCount() == 0 {
		return fmt.Errorf("unknown sport %q", r.Sport)
	}
	if want, got := r.Sport.PlayerCount(), len(r.PlayerIDs); got != want {
		return fmt.Errorf("%s requires exactly %d player ids, got %d", r.Sport, want, got)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("booking date required")
	}
	if _, err := time.Parse("15:04", r.Hour); err != nil {
		return fmt.Errorf("invalid booking time %q (want HH:MM)", r.Hour)
	}
	for _, id := range r.PlayerIDs {
		if err := nif.Validate(id); err != nil {
			return fmt.Errorf("player id %q: %w", id, err)
		}
	}
	return nil
}

// Player is a participant identifier paired with the display name the
// portal resolved for it during the session.
type Player struct {
	NIF  string
	Name string
}

// SessionResult is the terminal outcome of one portal session.
type SessionResult struct {
	Success bool
	Players []Player
	Reason  string
}

func Failure(reason string) SessionResult {
	return SessionResult{Reason: reason}
}
