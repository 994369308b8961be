// Package gate suspends a booking session until the instant the portal
// opens next-day reservations. The portal releases tomorrow's slots at a
// fixed local time; clicking earlier does nothing, and the whole point is
// clicking first, so sessions do all their navigation up front and then
// block here right before the slot click.
package gate

import (
	"context"
	"time"
)

// Gate describes the portal's release instant in its own civil timezone,
// independent of the timezone the process happens to run in.
type Gate struct {
	Location   *time.Location
	OpenHour   int
	OpenMinute int
}

func New(tz string, hour, minute int) (Gate, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Gate{}, err
	}
	return Gate{Location: loc, OpenHour: hour, OpenMinute: minute}, nil
}

// Cutoff returns the wall-clock instant at which the portal opens
// bookings for targetDate: the opening time on the preceding day, in the
// portal's timezone.
func (g Gate) Cutoff(targetDate time.Time) time.Time {
	open := targetDate.AddDate(0, 0, -1)
	return time.Date(open.Year(), open.Month(), open.Day(), g.OpenHour, g.OpenMinute, 0, 0, g.Location)
}

// WaitUntil blocks until the cutoff instant, as measured by now. Returns
// immediately when the cutoff has already passed. The now func exists so
// tests can substitute a fake clock.
func WaitUntil(ctx context.Context, cutoff time.Time, now func() time.Time) error {
	d := cutoff.Sub(now())
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Wait blocks until bookings for targetDate are open.
func (g Gate) Wait(ctx context.Context, targetDate time.Time) error {
	return WaitUntil(ctx, g.Cutoff(targetDate), time.Now)
}
