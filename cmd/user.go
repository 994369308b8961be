package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/club-scheduler/internal/booking"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage member profiles",
	}
	cmd.AddCommand(newUserAddCmd())
	cmd.AddCommand(newUserCreditCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var (
		chatID         int64
		username       string
		firstName      string
		portalUsername string
		portalPassword string
		tier           string
	)

	c := &cobra.Command{
		Use:   "add",
		Short: "Create or update a member profile with portal credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, d, repo, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			tr, err := booking.ParseTier(tier)
			if err != nil {
				return err
			}
			id, err := repo.UpsertUser(ctx, chatID, username, firstName, portalUsername, portalPassword, tr)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "member id=%d chat=%d tier=%s\n", id, chatID, tr)
			return nil
		},
	}

	c.Flags().Int64Var(&chatID, "chat-id", 0, "chat id")
	c.Flags().StringVar(&username, "username", "", "chat username")
	c.Flags().StringVar(&firstName, "first-name", "", "display name")
	c.Flags().StringVar(&portalUsername, "portal-username", "", "club portal login")
	c.Flags().StringVar(&portalPassword, "portal-password", "", "club portal password (sealed at rest)")
	c.Flags().StringVar(&tier, "tier", "standard", "premium or standard")
	_ = c.MarkFlagRequired("chat-id")
	return c
}

func newUserCreditCmd() *cobra.Command {
	var (
		chatID int64
		amount int
	)

	c := &cobra.Command{
		Use:   "credit",
		Short: "Grant booking credits to a member",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, d, repo, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			userID, err := repo.UserIDByChatID(ctx, chatID)
			if err != nil {
				return fmt.Errorf("no member with chat id %d: %w", chatID, err)
			}
			if err := repo.AddCredits(ctx, userID, amount); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "granted %d credits to member %d\n", amount, userID)
			return nil
		},
	}

	c.Flags().Int64Var(&chatID, "chat-id", 0, "chat id")
	c.Flags().IntVar(&amount, "amount", 1, "credits to add")
	_ = c.MarkFlagRequired("chat-id")
	return c
}
