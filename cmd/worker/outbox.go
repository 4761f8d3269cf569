package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/internal/bootstrap"
	"github.com/buildhub-th/procure-backend/internal/logging"
	"github.com/buildhub-th/procure-backend/internal/outbox"
)

var drainRounds int

var (
	outboxCmd = &cobra.Command{
		Use:   "outbox",
		Short: "Notification outbox maintenance",
	}

	outboxDrainCmd = &cobra.Command{
		Use:   "drain",
		Short: "Deliver due outbox entries once and print the totals",
		RunE:  runOutboxDrain,
	}
)

func init() {
	outboxDrainCmd.Flags().IntVar(&drainRounds, "rounds", 1, "number of batches to process; stops early when a batch finds no work")
	outboxCmd.AddCommand(outboxDrainCmd)
}

func runOutboxDrain(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithContext(ctx, logger)

	app, err := bootstrap.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	total, err := drain(ctx, app.Dispatcher, drainRounds)
	logger.Info("outbox drain finished", zap.Any("stats", total))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(total)
}

type drainer interface {
	Drain(ctx context.Context) (outbox.Stats, error)
}

func drain(ctx context.Context, d drainer, rounds int) (outbox.Stats, error) {
	var total outbox.Stats
	if rounds < 1 {
		rounds = 1
	}
	for i := 0; i < rounds; i++ {
		st, err := d.Drain(ctx)
		total.Sent += st.Sent
		total.Skipped += st.Skipped
		total.Retried += st.Retried
		total.Failed += st.Failed
		total.Busy += st.Busy
		if err != nil {
			return total, err
		}
		if st == (outbox.Stats{}) {
			break
		}
	}
	return total, nil
}
