// Package orchestrator runs one scheduled booking pass: fetch the due
// requests for a date and tier, fan out one isolated session per
// request, fan the results back in, and apply persistence and
// notification side effects exactly once per request.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/club-scheduler/internal/booking"
	"github.com/example/club-scheduler/internal/notify"
)

type RequestSource interface {
	DueRequests(ctx context.Context, date time.Time, tier booking.Tier) ([]booking.Request, error)
}

type OutcomeSink interface {
	RecordOutcome(ctx context.Context, requestID int64, outcome booking.Status) error
}

type CreditLedger interface {
	DeductCredit(ctx context.Context, userID int64) (bool, error)
	RefundCredit(ctx context.Context, userID int64) error
}

// SessionRunner executes one complete portal session and always returns
// a structured result; it never panics through to the orchestrator by
// contract, and the orchestrator guards against it anyway.
type SessionRunner interface {
	Run(ctx context.Context, req booking.Request, testMode bool) booking.SessionResult
}

type Orchestrator struct {
	Requests RequestSource
	Outcomes OutcomeSink
	Credits  CreditLedger
	Runner   SessionRunner
	Notifier notify.Notifier

	// TestMode makes every session stop short of final submission.
	TestMode bool
}

type task struct {
	req      booking.Request
	deducted bool
	result   booking.SessionResult
}

// RunOnce processes all pending requests for the date and tier. Worker
// failures are contained per request; the returned error reflects only
// run-level problems (the fetch), never an individual booking outcome.
func (o *Orchestrator) RunOnce(ctx context.Context, date time.Time, tier booking.Tier) error {
	reqs, err := o.Requests.DueRequests(ctx, date, tier)
	if err != nil {
		return fmt.Errorf("fetch due requests: %w", err)
	}
	log := logrus.WithFields(logrus.Fields{"date": date.Format("2006-01-02"), "tier": tier})
	if len(reqs) == 0 {
		log.Info("no pending requests")
		return nil
	}
	log.WithField("count", len(reqs)).Info("starting booking run")

	results := make(chan task, len(reqs))
	var wg sync.WaitGroup

	for _, req := range reqs {
		// Malformed requests never get a session. Recorded as failed so
		// they are not retried forever.
		if err := req.Validate(); err != nil {
			o.finish(ctx, task{req: req, result: booking.Failure("ValidationRejected: " + err.Error())})
			continue
		}

		deducted := false
		if req.Tier == booking.TierPremium {
			ok, err := o.Credits.DeductCredit(ctx, req.UserID)
			if err != nil {
				// Leave the request pending; the next scheduled pass
				// picks it up once the store recovers.
				logrus.WithError(err).WithField("request", req.ID).Error("credit deduction failed, skipping")
				continue
			}
			if !ok {
				o.notifyUser(ctx, req.ChatID, notify.InsufficientCreditText(req))
				continue
			}
			deducted = true
		}

		wg.Add(1)
		go func(req booking.Request, deducted bool) {
			defer wg.Done()
			results <- task{req: req, deducted: deducted, result: o.runSession(ctx, req)}
		}(req, deducted)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	completed, failed := 0, 0
	for t := range results {
		o.finish(ctx, t)
		if t.result.Success {
			completed++
		} else {
			failed++
		}
	}
	log.WithFields(logrus.Fields{"completed": completed, "failed": failed}).Info("booking run finished")
	return nil
}

// runSession isolates one worker: a panic in a session becomes a failure
// outcome for that request and nothing else.
func (o *Orchestrator) runSession(ctx context.Context, req booking.Request) (res booking.SessionResult) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("request", req.ID).Errorf("session panicked: %v", r)
			res = booking.Failure(fmt.Sprintf("InfrastructureError: panic: %v", r))
		}
	}()
	return o.Runner.Run(ctx, req, o.TestMode)
}

// finish applies the terminal side effects for one request: status
// transition, premium refund on failure, and notifications. Notification
// errors are logged, never propagated; persistence and delivery are
// independent at-least-once effects.
func (o *Orchestrator) finish(ctx context.Context, t task) {
	outcome := booking.StatusFailed
	if t.result.Success {
		outcome = booking.StatusCompleted
	}
	if err := o.Outcomes.RecordOutcome(ctx, t.req.ID, outcome); err != nil {
		logrus.WithError(err).WithField("request", t.req.ID).Error("outcome not recorded")
	}

	if t.result.Success {
		o.notifyUser(ctx, t.req.ChatID, notify.ConfirmationText(t.req, t.result.Players))
		return
	}

	if t.deducted {
		if err := o.Credits.RefundCredit(ctx, t.req.UserID); err != nil {
			logrus.WithError(err).WithField("request", t.req.ID).Error("credit refund failed")
		}
	}
	o.notifyUser(ctx, t.req.ChatID, notify.FailureText(t.req))
	if err := o.Notifier.NotifyOperator(ctx, notify.OperatorReport(t.req, t.result.Reason)); err != nil {
		logrus.WithError(err).WithField("request", t.req.ID).Warn("operator report not delivered")
	}
}

func (o *Orchestrator) notifyUser(ctx context.Context, chatID int64, text string) {
	if err := o.Notifier.NotifyUser(ctx, chatID, text); err != nil {
		logrus.WithError(err).WithField("chat", chatID).Warn("notification not delivered")
	}
}
