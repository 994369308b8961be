package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/example/club-scheduler/internal/booking"
	"github.com/example/club-scheduler/internal/config"
	"github.com/example/club-scheduler/internal/crypto"
	"github.com/example/club-scheduler/internal/db"
	"github.com/example/club-scheduler/internal/migrate"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clubsched",
		Short: "Books club sport slots the instant the portal opens them",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		},
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newKeysCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newServerCmd())
	root.AddCommand(newMonitorCmd())
	root.AddCommand(newRequestCmd())
	root.AddCommand(newUserCmd())
	root.AddCommand(newOperatorCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore wires config, database, migrations and the booking repo for
// commands that need the store. Callers must Close the returned DB.
func openStore(ctx context.Context) (config.Config, *db.DB, *booking.Repo, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	if err := cfg.RequireCredentialsKey(); err != nil {
		return config.Config{}, nil, nil, err
	}

	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	if err := migrate.Up(ctx, d); err != nil {
		d.Close()
		return config.Config{}, nil, nil, err
	}

	aead, err := crypto.New(cfg.CredentialsKey)
	if err != nil {
		d.Close()
		return config.Config{}, nil, nil, err
	}
	return cfg, d, booking.NewRepo(d, aead), nil
}
