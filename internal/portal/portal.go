// Package portal isolates everything that touches the club's reservation
// website. The site has no API; all interaction goes through its rendered
// pages, and that brittle page-structure logic stays behind the Session
// interface so orchestration never sees a selector.
package portal

import (
	"context"
	"errors"

	"github.com/example/club-scheduler/internal/booking"
)

// Day is the value of the portal's date dropdown.
type Day int

const (
	DayToday Day = iota
	DayTomorrow
)

// Session is one authenticated automation run against the portal.
// Implementations own an isolated browser profile; sessions must not
// share cookies or storage with each other.
type Session interface {
	// Login opens the portal, clears the consent prompt and enters the
	// members area. Returns ErrAuthFailed on rejected credentials.
	Login(ctx context.Context, creds booking.Credentials) error

	// SelectDay picks the target day in the reservation view.
	SelectDay(ctx context.Context, day Day) error

	// SelectSlot clicks the hour row for the sport. Returns
	// ErrSlotUnavailable when the slot is absent or closed.
	SelectSlot(ctx context.Context, sport booking.Sport, hour string) error

	// EnterPlayer fills participant field i (0-based) and waits for the
	// portal's server-side validation to resolve the identifier to a
	// display name. Returns ErrValidationRejected when it never resolves.
	EnterPlayer(ctx context.Context, i int, sport booking.Sport, playerID string) (string, error)

	// AcceptTerms ticks the conditions checkbox.
	AcceptTerms(ctx context.Context) error

	// Submit clicks the final reserve button.
	Submit(ctx context.Context) error

	Close()
}

var (
	ErrAuthFailed         = errors.New("portal: authentication failed")
	ErrElementTimeout     = errors.New("portal: expected page state never appeared")
	ErrValidationRejected = errors.New("portal: participant identifier rejected")
	ErrSlotUnavailable    = errors.New("portal: slot unavailable")
	ErrInfra              = errors.New("portal: session infrastructure failure")
)

// FailureReason maps a session error onto the outcome taxonomy recorded
// with failed requests and reported to the operator.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrAuthFailed):
		return "AuthenticationFailure"
	case errors.Is(err, ErrValidationRejected):
		return "ValidationRejected"
	case errors.Is(err, ErrSlotUnavailable):
		return "SlotUnavailable"
	case errors.Is(err, ErrElementTimeout):
		return "ElementTimeout"
	case errors.Is(err, ErrInfra):
		return "InfrastructureError"
	}
	return "InfrastructureError"
}

// BookingParams drives one pass through the reservation form.
type BookingParams struct {
	Sport       booking.Sport
	Day         Day
	Hour        string
	Credentials booking.Credentials
	PlayerIDs   []string

	// TestMode stops short of the final confirmation so the flow can be
	// exercised without consuming a real slot.
	TestMode bool

	// Gate, when set, blocks immediately before the slot click so the
	// click lands at the release instant rather than whenever login and
	// navigation happened to finish.
	Gate func(ctx context.Context) error
}

// RunBooking walks a session through the full reservation sequence and
// returns the resolved participants. Steps are strictly sequential; the
// first failing step aborts the run. The caller owns session teardown.
func RunBooking(ctx context.Context, s Session, p BookingParams) ([]booking.Player, error) {
	if err := s.Login(ctx, p.Credentials); err != nil {
		return nil, err
	}
	if err := s.SelectDay(ctx, p.Day); err != nil {
		return nil, err
	}
	if p.Gate != nil {
		if err := p.Gate(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.SelectSlot(ctx, p.Sport, p.Hour); err != nil {
		return nil, err
	}

	players := make([]booking.Player, 0, len(p.PlayerIDs))
	for i, id := range p.PlayerIDs {
		name, err := s.EnterPlayer(ctx, i, p.Sport, id)
		if err != nil {
			return nil, err
		}
		players = append(players, booking.Player{NIF: id, Name: name})
	}

	if err := s.AcceptTerms(ctx); err != nil {
		return nil, err
	}
	if !p.TestMode {
		if err := s.Submit(ctx); err != nil {
			return nil, err
		}
	}
	return players, nil
}
