package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	service "github.com/jayant1554/credit-score-defi/internal/app"
	"github.com/jayant1554/credit-score-defi/internal/config"
	"github.com/jayant1554/credit-score-defi/internal/domain/calibration"
	"github.com/jayant1554/credit-score-defi/internal/domain/features"
	"github.com/jayant1554/credit-score-defi/internal/domain/normalize"
	"github.com/jayant1554/credit-score-defi/internal/eventio"
	"github.com/jayant1554/credit-score-defi/internal/ranking"
	"github.com/jayant1554/credit-score-defi/pkg/logger"
	"github.com/jayant1554/credit-score-defi/pkg/metrics"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
)

const pushTimeout = 10 * time.Second

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func usage(w io.Writer, flags *flag.FlagSet) {
	_, _ = fmt.Fprintln(w, "Usage: creditscore [flags] <input_json_file>")
	flags.SetOutput(w)
	flags.PrintDefaults()
}

// parseInterspersed parses args allowing flags on either side of positional
// arguments, which it returns in order. A "--" ends flag parsing.
func parseInterspersed(flags *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := flags.Parse(args); err != nil {
			return nil, err
		}
		rest := flags.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		// everything after a "--" terminator is positional
		consumed := len(args) - len(rest)
		if consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// run executes one scoring run and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return exitFailure
	}

	flags := flag.NewFlagSet("creditscore", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	output := flags.String("output", cfg.Output.Path, "Output file for wallet scores")
	format := flags.String("format", cfg.Output.Format, "Output format: json or csv")
	topN := flags.Int("top", cfg.Report.TopN, "Number of top wallets to print (0 disables)")
	wallet := flags.String("wallet", "", "Print the rank of this wallet")
	positional, err := parseInterspersed(flags, args)
	if err != nil || len(positional) != 1 {
		usage(stdout, flags)
		return exitFailure
	}
	input := positional[0]

	outFormat, err := eventio.ParseFormat(*format)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "\nError: %v\n", err)
		return exitFailure
	}

	// Initialize logging
	if err := logger.Init(logger.WithWriter(stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		_, _ = fmt.Fprintf(stderr, "failed to initialize logging: %v\n", err)
		return exitFailure
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	defer exportMetrics(ctx, log, cfg)

	_, _ = fmt.Fprintln(stdout, "Initiating credit scoring process...")

	raw, err := eventio.ReadEventsFile(input)
	if err != nil {
		return fail(stderr, input, err)
	}
	_, _ = fmt.Fprintf(stdout, "Loaded and parsed %d records from '%s'.\n", len(raw), input)

	opts := append(service.FromConfig(cfg), service.WithLogger(log.Named("pipeline")), service.WithTopN(*topN))
	svc, err := service.New(opts...)
	if err != nil {
		return fail(stderr, input, err)
	}
	recs, sum, err := svc.Run(ctx, raw)
	if err != nil {
		return fail(stderr, input, err)
	}
	_, _ = fmt.Fprintf(stdout, "Engineered features for %d unique wallets.\n", sum.Wallets)
	_, _ = fmt.Fprintln(stdout, "Completed Phase 1: Rule-based scores generated.")
	_, _ = fmt.Fprintln(stdout, "Completed Phase 2: Calibration model trained and final scores generated.")

	if err := eventio.WriteScoresFile(*output, recs, outFormat); err != nil {
		return fail(stderr, input, err)
	}
	_, _ = fmt.Fprintln(stdout, "Credit scoring process complete.")

	total := sum.Ranking.Count(ctx)
	if len(sum.Top) > 0 {
		_, _ = fmt.Fprintf(stdout, "\nTop %d of %d wallets by credit score:\n", len(sum.Top), total)
		for _, e := range sum.Top {
			_, _ = fmt.Fprintf(stdout, "%4d  %s  credit=%d rule=%d\n", e.Rank, e.Wallet, e.CreditScore, e.RuleBasedScore)
		}
	}
	if *wallet != "" {
		printWalletRank(ctx, stdout, sum.Ranking, *wallet, total)
	}
	_, _ = fmt.Fprintf(stdout, "\nProcess finished successfully. Results saved to '%s'.\n", *output)
	return exitOK
}

// printWalletRank prints the rank of one wallet, or a note when it was not scored.
func printWalletRank(ctx context.Context, w io.Writer, store ranking.Store, wallet string, total int) {
	e, err := store.Rank(ctx, wallet)
	if err != nil {
		_, _ = fmt.Fprintf(w, "\nWallet %s was not scored in this run.\n", wallet)
		return
	}
	_, _ = fmt.Fprintf(w, "\nWallet %s ranks %d of %d: credit=%d rule=%d\n", e.Wallet, e.Rank, total, e.CreditScore, e.RuleBasedScore)
}

// fail prints the error category for err and returns the failure exit code.
func fail(stderr io.Writer, input string, err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		_, _ = fmt.Fprintf(stderr, "\nError: The file was not found at the specified path: %s\n", input)
	case errors.Is(err, eventio.ErrMalformedJSON),
		errors.Is(err, normalize.ErrMalformedInput),
		errors.Is(err, features.ErrEmptyResult),
		errors.Is(err, calibration.ErrInsufficientPopulation):
		_, _ = fmt.Fprintf(stderr, "\nError: Failed to process data. The file may be malformed or data processing failed.\nDetails: %v\n", err)
	default:
		_, _ = fmt.Fprintf(stderr, "\nAn unexpected error occurred: %v\n", err)
	}
	return exitFailure
}

// exportMetrics writes the textfile and pushes to the gateway when configured.
func exportMetrics(ctx context.Context, log logger.Logger, cfg *config.Config) {
	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn(ctx, "failed to write metrics textfile", logger.String("path", cfg.Metrics.Textfile), logger.Error(err))
		}
	}
	if cfg.Metrics.PushgatewayURL != "" {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
		defer cancel()
		if err := metrics.Push(pctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			log.Warn(ctx, "failed to push metrics", logger.String("url", cfg.Metrics.PushgatewayURL), logger.Error(err))
		}
	}
}
