package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fardannozami/leetcode-tracker/internal/app/usecase"
	"github.com/fardannozami/leetcode-tracker/internal/infra/httpapi"
	"github.com/fardannozami/leetcode-tracker/internal/infra/wa"
	"github.com/fardannozami/leetcode-tracker/internal/scheduler"
)

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tracker",
		Short:         "LeetCode progress tracker: daily snapshots, refresh gate and leaderboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newPruneBansCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the scheduler and (optionally) the WhatsApp bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var notifier scheduler.Notifier
			if a.cfg.WhatsAppEnabled {
				bot, svc, err := startWhatsApp(ctx, a)
				if err != nil {
					return err
				}
				defer svc.Disconnect()
				if a.cfg.AnnounceDaily && a.cfg.GroupID != "" {
					notifier = bot
				}
			}

			sched := scheduler.New(a.updateAll, a.leaderboard, a.bans, notifier, a.cal, scheduler.Config{
				Daily:         a.cfg.ScheduleDaily,
				SweepInterval: a.cfg.BanSweepPeriod,
			}, a.log)
			// Registered after a.Close and svc.Disconnect, so it runs before them.
			defer runInBackground(ctx, sched)()

			srv := &http.Server{
				Addr: a.cfg.HTTPAddr,
				Handler: httpapi.NewRouter(&httpapi.Handler{
					Signup:      a.register,
					Accounts:    a.accounts,
					Stats:       a.stats,
					Refresh:     a.refresh,
					Leaderboard: a.leaderboard,
					Batch:       a.updateAll,
					DB:          a.db,
					Calendar:    a.cal,
					CronSecret:  a.cfg.CronSecret,
					Log:         a.log,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
			}

			a.log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

type backgroundRunner interface {
	Run(ctx context.Context) error
}

// runInBackground starts r and returns a stop func that cancels it and blocks
// until Run has returned.
func runInBackground(ctx context.Context, r backgroundRunner) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

func startWhatsApp(ctx context.Context, a *app) (*wa.Bot, *wa.Service, error) {
	svc := wa.NewService(a.cfg.WhatsAppDBPath, a.log)
	bot := wa.NewBot(svc, a.messages, wa.BotConfig{
		GroupID:         a.cfg.GroupID,
		ReplyDelayMinMs: a.cfg.ReplyDelayMinMs,
		ReplyDelayMaxMs: a.cfg.ReplyDelayMaxMs,
		ShowTyping:      a.cfg.ShowTyping,
	}, a.log)

	if err := svc.Initialize(ctx); err != nil {
		return nil, nil, fmt.Errorf("initialize whatsapp: %w", err)
	}
	if err := svc.Login(ctx, a.cfg.BotPhone); err != nil {
		return nil, nil, err
	}
	return bot, svc, nil
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Fetch every user's stats once and recompute today's progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.updateAll.Execute(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}
}

func newLeaderboardCmd() *cobra.Command {
	var day string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the leaderboard for a day (default: today in Los Angeles)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.leaderboard.Execute(cmd.Context(), day)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, entries)
			}
			if key, err := a.cal.ResolveDay(day); err == nil {
				day = key
			}
			fmt.Fprintln(cmd.OutOrStdout(), usecase.FormatLeaderboard(day, entries))
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "Day to rank (YYYY-MM-DD, today or yesterday)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func newPruneBansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-bans",
		Short: "Delete expired refresh bans",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.bans.PruneExpired(cmd.Context(), a.cal.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d expired bans\n", n)
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
