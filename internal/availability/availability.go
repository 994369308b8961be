// Package availability polls the reservation calendar and logs free
// court counts. A read-only ops aid; it never books anything.
package availability

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/club-scheduler/internal/booking"
	"github.com/example/club-scheduler/internal/portal"
	"github.com/example/club-scheduler/internal/portal/chrome"
)

// Session is the slice of the portal driver the monitor needs.
type Session interface {
	Login(ctx context.Context, creds booking.Credentials) error
	SelectDay(ctx context.Context, day portal.Day) error
	Availability(ctx context.Context) ([]chrome.CourtAvailability, error)
}

type Monitor struct {
	Session  Session
	Interval time.Duration

	// Rounds bounds the poll; 0 means poll until the context ends.
	Rounds int
}

// Run logs in once and samples tomorrow's availability on a fixed
// interval.
func (m *Monitor) Run(ctx context.Context, creds booking.Credentials) error {
	if err := m.Session.Login(ctx, creds); err != nil {
		return err
	}

	for round := 1; m.Rounds == 0 || round <= m.Rounds; round++ {
		if err := m.Session.SelectDay(ctx, portal.DayTomorrow); err != nil {
			return err
		}
		readings, err := m.Session.Availability(ctx)
		if err != nil {
			return err
		}

		log := logrus.WithField("round", round)
		if len(readings) == 0 {
			log.Info("no open slots")
		}
		for _, r := range readings {
			log.WithFields(logrus.Fields{
				"sport": r.Sport,
				"hour":  r.Hour,
				"free":  r.Free,
			}).Info("availability")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.Interval):
		}
	}
	return nil
}
