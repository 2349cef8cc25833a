package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/neuroquant/internal/backtest"
	"github.com/seenimoa/neuroquant/internal/forecast"
	"github.com/seenimoa/neuroquant/internal/logger"
	"github.com/seenimoa/neuroquant/internal/report"
	"github.com/seenimoa/neuroquant/pkg/models"
	"github.com/seenimoa/neuroquant/pkg/utils"
)

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Forecast, score the news and decide for one ticker",
	Long: `Run the full pipeline for a ticker: price history and indicators,
a forecast of the next trading days, headline sentiment, and the rule-based
verdict with optional AI commentary.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		htmlPath, _ := cmd.Flags().GetString("html")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		orch, err := buildOrchestrator(ctx)
		if err != nil {
			return err
		}
		rep, err := orch.Analyze(ctx, args[0])
		if err != nil {
			return err
		}

		if htmlPath != "" {
			history, err := orch.History(ctx, rep.Ticker)
			if err != nil {
				logger.Warn(ctx, "history unavailable for chart", "error", err)
			}
			page, err := report.GenerateHTML(rep, history)
			if err != nil {
				return err
			}
			if err := os.WriteFile(htmlPath, []byte(page), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", htmlPath, err)
			}
			logger.Info(ctx, "html report written", "path", htmlPath)
		}

		if asJSON {
			return writeJSON(cmd, rep)
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Terminal(rep))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "print the report as JSON")
	analyzeCmd.Flags().String("html", "", "also write a standalone HTML report to this path")
	analyzeCmd.Flags().Duration("timeout", 2*time.Minute, "deadline for the whole analysis")
}

// --- Evaluate Command ---

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [ticker]",
	Short: "Walk-forward check of the forecast model's direction calls",
	Long: `Replay the configured forecast model over past candles. At each bar the
model sees the preceding window; its first-step call is scored against the
change realised next, and a long-when-up strategy is compared with buy and
hold.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		period, _ := cmd.Flags().GetString("period")
		holdout, _ := cmd.Flags().GetInt("holdout")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		if period == "" {
			period = cfg.Market.Period
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		orch, err := buildOrchestrator(ctx)
		if err != nil {
			return err
		}
		ticker := utils.NormalizeTicker(args[0])
		bars, err := orch.Market().GetHistory(ctx, ticker, period, models.Timeframe(cfg.Market.Interval))
		if err != nil {
			return err
		}

		h := orch.Handles()
		eng := backtest.NewEngine(backtest.Config{
			Window:  cfg.Forecast.Window,
			Holdout: holdout,
			Target:  forecast.Target(cfg.Forecast.Target),
			Scaler:  h.Scaler,
		})
		res, err := eng.Run(ctx, h.Model, ticker, bars)
		if err != nil {
			return err
		}

		if asJSON {
			return writeJSON(cmd, res)
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Evaluation(res))
		return nil
	},
}

func init() {
	evaluateCmd.Flags().Bool("json", false, "print the result as JSON")
	evaluateCmd.Flags().String("period", "", "history range to replay (default: market.period)")
	evaluateCmd.Flags().Int("holdout", 5, "trailing bars excluded from prediction points")
	evaluateCmd.Flags().Duration("timeout", 5*time.Minute, "deadline for the whole evaluation")
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
