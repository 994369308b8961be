package chrome

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/club-scheduler/internal/booking"
	"github.com/example/club-scheduler/internal/gate"
	"github.com/example/club-scheduler/internal/portal"
)

// Booker runs complete booking sessions: one fresh browser arena per
// request, an optional trace recorder attached for the session's
// lifetime, and the timing gate applied to next-day slots. It is the
// concrete session runner handed to the orchestrator.
type Booker struct {
	Chrome Config
	Gate   gate.Gate

	Record         bool
	RecordDir      string
	RecordInterval time.Duration
}

// recorderGrace bounds how long teardown waits for the last frame.
const recorderGrace = 2 * time.Second

// Run drives one reservation attempt from login through submission and
// always returns a structured result; resources are released on every
// path. Errors never escape to the caller.
func (b *Booker) Run(ctx context.Context, req booking.Request, testMode bool) booking.SessionResult {
	log := logrus.WithFields(logrus.Fields{"request": req.ID, "sport": req.Sport, "hour": req.Hour})

	day, gateFn, err := b.resolveDay(req.Date)
	if err != nil {
		log.WithError(err).Warn("request date not bookable")
		return booking.Failure(fmt.Sprintf("%s: %v", portal.FailureReason(err), err))
	}

	d, err := NewDriver(b.Chrome)
	if err != nil {
		log.WithError(err).Error("session setup failed")
		return booking.Failure(portal.FailureReason(err) + ": " + err.Error())
	}
	defer d.Close()

	var rec *Recorder
	if b.Record {
		rec, err = StartRecorder(d, b.RecordDir, TraceName(req.ID, time.Now()), b.RecordInterval)
		if err != nil {
			// The trace is diagnostic; a session without one still runs.
			log.WithError(err).Warn("recorder unavailable, continuing without trace")
		} else {
			defer rec.Stop(recorderGrace)
		}
	}

	players, err := portal.RunBooking(ctx, d, portal.BookingParams{
		Sport:       req.Sport,
		Day:         day,
		Hour:        req.Hour,
		Credentials: req.Credentials,
		PlayerIDs:   req.PlayerIDs,
		TestMode:    testMode,
		Gate:        gateFn,
	})
	if err != nil {
		if rec != nil {
			rec.CaptureNow()
		}
		log.WithError(err).Warn("booking session failed")
		return booking.Failure(fmt.Sprintf("%s: %v", portal.FailureReason(err), err))
	}

	log.Info("booking session completed")
	return booking.SessionResult{Success: true, Players: players}
}

// resolveDay maps the requested civil date onto the portal's day control.
// The dropdown only offers today and tomorrow; any other date can never
// reach the right calendar, so it fails here instead of after a gate wait.
func (b *Booker) resolveDay(date time.Time) (portal.Day, func(context.Context) error, error) {
	today := time.Now().In(b.Gate.Location)
	switch {
	case sameDate(date, today):
		return portal.DayToday, nil, nil
	case sameDate(date, today.AddDate(0, 0, 1)):
		gateFn := func(ctx context.Context) error {
			return gate.WaitUntil(ctx, b.Gate.Cutoff(date), time.Now)
		}
		return portal.DayTomorrow, gateFn, nil
	}
	return 0, nil, fmt.Errorf("%w: %s is neither today nor tomorrow", portal.ErrSlotUnavailable, date.Format("2006-01-02"))
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
