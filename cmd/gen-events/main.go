package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jayant1554/credit-score-defi/internal/eventgen"
	"github.com/jayant1554/credit-score-defi/internal/eventio"
	"github.com/jayant1554/credit-score-defi/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	def := eventgen.DefaultConfig()

	flags := flag.NewFlagSet("gen-events", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		wallets  = flags.Int("wallets", def.Wallets, "Number of wallets to generate")
		seed     = flags.Int64("seed", def.Seed, "Random seed")
		start    = flags.String("start", def.Start.Format(time.DateOnly), "Earliest event date (YYYY-MM-DD)")
		spanDays = flags.Int("span", def.SpanDays, "Number of days the events are spread over")
		workers  = flags.Int("workers", runtime.NumCPU(), "Number of concurrent generators")
		output   = flags.String("output", "generated_events.json", "Output file for generated events")
		verbose  = flags.Bool("verbose", false, "Enable verbose logging")
	)
	if err := flags.Parse(args); err != nil {
		return 1
	}

	if err := logger.Init(logger.WithWriter(stderr)); err != nil {
		_, _ = fmt.Fprintf(stderr, "failed to initialize logging: %v\n", err)
		return 1
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	from, err := time.Parse(time.DateOnly, *start)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid -start: %v\n", err)
		return 1
	}

	cfg := def
	cfg.Wallets = *wallets
	cfg.Seed = *seed
	cfg.Start = from
	cfg.SpanDays = *spanDays
	cfg.Workers = *workers

	recs, stats, err := eventgen.Generate(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "failed to generate events: %v\n", err)
		return 1
	}

	err = eventio.WriteFile(*output, func(w io.Writer) error {
		return eventio.WriteJSON(w, recs)
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "failed to write events: %v\n", err)
		return 1
	}

	_, _ = fmt.Fprintf(stdout, "Generated %d events for %d wallets into '%s'.\n", stats.Events, stats.Wallets, *output)
	for _, p := range eventgen.Profiles {
		_, _ = fmt.Fprintf(stdout, "  %-10s %d\n", p.String(), stats.ByProfile[p.String()])
	}
	return 0
}
