package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/club-scheduler/internal/auth"
	"github.com/example/club-scheduler/internal/web"
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the operator dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, d, repo, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return err
			}

			ws := &web.Server{
				Auth:      auth.NewStore(d, cfg.CookieHashKey, cfg.CookieBlockKey),
				Requests:  repo,
				RecordDir: cfg.RecordDir,
			}
			return web.Start(ctx, cfg.ListenAddr, ws.Routes())
		},
	}
}
