package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/club-scheduler/internal/booking"
)

func newRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Manage reservation requests (admin, bypasses the chat front-end)",
	}
	cmd.AddCommand(newRequestCreateCmd())
	cmd.AddCommand(newRequestListCmd())
	return cmd
}

func newRequestCreateCmd() *cobra.Command {
	var (
		chatID  int64
		sport   string
		date    string
		hour    string
		players string
		tier    string
	)

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a pending request for a member",
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

			sp, err := booking.ParseSport(sport)
			if err != nil {
				return err
			}
			tr, err := booking.ParseTier(tier)
			if err != nil {
				return err
			}
			bd, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("invalid --date (want YYYY-MM-DD)")
			}

			q := booking.Request{
				UserID:    userID,
				Sport:     sp,
				Date:      bd,
				Hour:      hour,
				PlayerIDs: splitCSV(players),
				Tier:      tr,
			}
			id, err := repo.CreateRequest(ctx, q)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created request id=%d %s %s %s tier=%s\n", id, sp, date, hour, tr)
			return nil
		},
	}

	c.Flags().Int64Var(&chatID, "chat-id", 0, "member chat id")
	c.Flags().StringVar(&sport, "sport", "", "padel or tennis")
	c.Flags().StringVar(&date, "date", "", "booking date YYYY-MM-DD")
	c.Flags().StringVar(&hour, "time", "", "slot time HH:MM")
	c.Flags().StringVar(&players, "players", "", "comma-separated player NIFs")
	c.Flags().StringVar(&tier, "tier", "standard", "premium or standard")
	_ = c.MarkFlagRequired("chat-id")
	_ = c.MarkFlagRequired("sport")
	_ = c.MarkFlagRequired("date")
	_ = c.MarkFlagRequired("time")
	_ = c.MarkFlagRequired("players")
	return c
}

func newRequestListCmd() *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "list",
		Short: "List recent requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, d, repo, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			reqs, err := repo.ListRequests(ctx, limit)
			if err != nil {
				return err
			}
			for _, q := range reqs {
				executed := "-"
				if q.ExecutedAt != nil {
					executed = q.ExecutedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(os.Stdout, "id=%d member=%q %s %s %s tier=%s status=%s executed=%s\n",
					q.ID, q.FirstName, q.Sport, q.Date.Format("2006-01-02"), q.Hour, q.Tier, q.Status, executed)
			}
			return nil
		},
	}
	c.Flags().IntVar(&limit, "limit", 50, "max rows")
	return c
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
