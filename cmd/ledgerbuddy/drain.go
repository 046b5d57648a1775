package main

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ledgerbuddy/internal/cli"
	"ledgerbuddy/internal/common"
	"ledgerbuddy/internal/consumer"
	"ledgerbuddy/internal/model"
	"ledgerbuddy/internal/outbox"
)

func drainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Deliver undelivered confirmed transactions to the consumer",
		Long: `Drain the outbox: deliver every confirmed transaction that has not
yet been acknowledged by the downstream consumer, removing each entry
only once the consumer acknowledges it. If the consumer becomes
unreachable mid-drain, the remaining entries stay in place for the next
run.`,
		RunE: runDrain,
	}

	cmd.Flags().String("out", "", "deliver to this JSON-lines file")

	return cmd
}

func runDrain(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	outPath := consumerPath(cmd)
	if outPath == "" {
		return fmt.Errorf("%w: pass --out or set consumer.path", common.ErrNoConsumer)
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	total, err := store.CountOutbox(ctx)
	if err != nil {
		return fmt.Errorf("failed to count outbox: %w", err)
	}
	if total == 0 {
		fmt.Println(cli.SubtleStyle.Render("Outbox is empty."))
		return nil
	}

	sink, err := consumer.NewJSONLConsumer(outPath)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Draining outbox"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	tracked := consumer.Func(func(ctx context.Context, rec model.Record) error {
		if err := sink.Deliver(ctx, rec); err != nil {
			return err
		}
		_ = bar.Add(1)
		return nil
	})

	reconciler := outbox.New(store, consumer.NewRegistry())
	delivered, err := reconciler.Drain(ctx, tracked)
	_ = bar.Finish()
	if err != nil {
		return err
	}

	if delivered < total {
		fmt.Println(cli.WarningStyle.Render(
			fmt.Sprintf("Delivered %d of %d, consumer stopped acknowledging; remaining entries kept", delivered, total)))
		return nil
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Delivered %d transaction(s) to %s", delivered, outPath)))
	return nil
}
