package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/example/club-scheduler/internal/booking"
	"github.com/example/club-scheduler/internal/gate"
	"github.com/example/club-scheduler/internal/notify"
	"github.com/example/club-scheduler/internal/orchestrator"
	"github.com/example/club-scheduler/internal/portal/chrome"
)

func newRunCmd() *cobra.Command {
	var (
		dateArg  string
		tierArg  string
		testMode bool
	)

	c := &cobra.Command{
		Use:   "run",
		Short: "Process all pending requests for a date and tier, once",
		Long: `Fetches the pending reservation requests for the target date and
priority tier and books them concurrently, one isolated browser session
per request. Meant to be invoked by cron shortly before the portal
opens next-day bookings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := booking.ParseTier(tierArg)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, d, repo, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			g, err := gate.New(cfg.PortalTimezone, cfg.OpenHour, cfg.OpenMinute)
			if err != nil {
				return fmt.Errorf("portal timezone: %w", err)
			}

			date, err := resolveDate(dateArg, g.Location)
			if err != nil {
				return err
			}

			notifier, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.NotifyQueue, cfg.OperatorChatID)
			if err != nil {
				return fmt.Errorf("notifier: %w", err)
			}
			defer notifier.Close()

			booker := &chrome.Booker{
				Chrome: chrome.Config{
					BaseURL:        cfg.PortalURL,
					Headless:       cfg.Headless,
					StepTimeout:    cfg.StepTimeout,
					ValidationWait: cfg.ValidationWait,
				},
				Gate:           g,
				Record:         cfg.Record,
				RecordDir:      cfg.RecordDir,
				RecordInterval: cfg.RecordInterval,
			}

			o := &orchestrator.Orchestrator{
				Requests: repo,
				Outcomes: repo,
				Credits:  repo,
				Runner:   booker,
				Notifier: notifier,
				TestMode: testMode,
			}

			if testMode {
				logrus.Warn("test mode: sessions stop short of final submission")
			}
			return o.RunOnce(ctx, date, tier)
		},
	}

	c.Flags().StringVar(&dateArg, "date", "tomorrow", `target date (YYYY-MM-DD or "tomorrow")`)
	c.Flags().StringVar(&tierArg, "tier", "", "priority tier: premium or standard")
	c.Flags().BoolVar(&testMode, "test", false, "dry run: walk the form but never submit")
	_ = c.MarkFlagRequired("tier")
	return c
}

// resolveDate turns the --date flag into a civil date. "tomorrow" is
// relative to the portal's timezone, not the process's.
func resolveDate(s string, loc *time.Location) (time.Time, error) {
	if strings.EqualFold(strings.TrimSpace(s), "tomorrow") {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf(`invalid --date %q (want YYYY-MM-DD or "tomorrow")`, s)
	}
	return d, nil
}
