package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/club-scheduler/internal/availability"
	"github.com/example/club-scheduler/internal/portal/chrome"
)

func newMonitorCmd() *cobra.Command {
	var (
		chatID   int64
		interval time.Duration
		rounds   int
	)

	c := &cobra.Command{
		Use:   "monitor",
		Short: "Poll tomorrow's court availability and log it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, d, repo, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			creds, err := repo.CredentialsByChatID(ctx, chatID)
			if err != nil {
				return err
			}

			driver, err := chrome.NewDriver(chrome.Config{
				BaseURL:        cfg.PortalURL,
				Headless:       cfg.Headless,
				StepTimeout:    cfg.StepTimeout,
				ValidationWait: cfg.ValidationWait,
			})
			if err != nil {
				return err
			}
			defer driver.Close()

			m := &availability.Monitor{
				Session:  driver,
				Interval: interval,
				Rounds:   rounds,
			}
			return m.Run(ctx, creds)
		},
	}

	c.Flags().Int64Var(&chatID, "chat-id", 0, "member whose portal credentials to use")
	c.Flags().DurationVar(&interval, "interval", 20*time.Second, "time between polls")
	c.Flags().IntVar(&rounds, "rounds", 0, "number of polls (0 = until interrupted)")
	_ = c.MarkFlagRequired("chat-id")
	return c
}
