package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/neuroquant/api"
	"github.com/seenimoa/neuroquant/internal/logger"
	"github.com/seenimoa/neuroquant/internal/report"
	"github.com/seenimoa/neuroquant/internal/watch"
)

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		withWatch, _ := cmd.Flags().GetBool("watch")
		ctx := cmd.Context()

		orch, err := buildOrchestrator(ctx)
		if err != nil {
			return err
		}
		srv, err := api.NewServer(cfg, orch, version)
		if err != nil {
			return err
		}

		if withWatch {
			sched, err := watch.New(orch, cfg.Watch,
				watch.WithTimeout(time.Duration(cfg.API.TimeoutSec)*time.Second),
				watch.WithHandler(func(_ context.Context, res watch.Result) {
					if res.Err == nil {
						srv.BroadcastReport(res.Report)
					}
				}))
			if err != nil {
				return err
			}
			if err := sched.Start(ctx); err != nil {
				return err
			}
			defer sched.Stop()
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 Starting NeuroQuant API server on %s\n", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().Bool("watch", false, "also re-analyse the watchlist on its schedule and broadcast results")
}

// --- Watch Command ---

var watchCmd = &cobra.Command{
	Use:   "watch [tickers...]",
	Short: "Re-analyse the watchlist on a cron schedule",
	Long: `Analyse every watchlist ticker now and then on each tick of the
schedule (watch.schedule, e.g. "@every 15m"), printing one line per ticker.
Tickers given as arguments replace the configured watchlist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		once, _ := cmd.Flags().GetBool("once")
		schedule, _ := cmd.Flags().GetString("schedule")
		ctx := cmd.Context()

		wc := cfg.Watch
		if len(args) > 0 {
			wc.Tickers = args
		}
		if schedule != "" {
			wc.Schedule = schedule
		}

		orch, err := buildOrchestrator(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		sched, err := watch.New(orch, wc,
			watch.WithTimeout(2*time.Minute),
			watch.WithHandler(func(_ context.Context, res watch.Result) {
				if res.Err != nil {
					fmt.Fprintf(out, "%-8s error: %v\n", res.Ticker, res.Err)
					return
				}
				fmt.Fprintln(out, report.Summary(res.Report))
			}))
		if err != nil {
			return err
		}

		sched.RunOnce(ctx)
		if once {
			return nil
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		sched.Stop()
		logger.Info(context.Background(), "watch stopped")
		return nil
	},
}

func init() {
	watchCmd.Flags().Bool("once", false, "run a single round and exit")
	watchCmd.Flags().String("schedule", "", "cron spec override, e.g. \"@every 5m\"")
}
