package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ledgerbuddy/internal/cli"
	"ledgerbuddy/internal/consumer"
	"ledgerbuddy/internal/engine"
	"ledgerbuddy/internal/model"
	"ledgerbuddy/internal/outbox"
	"ledgerbuddy/internal/storage"
)

func decideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decide <fingerprint>",
		Short: "Resolve a pending duplicate confirmation",
		Long: `Answer a pending "is this a new transaction?" question out of band.
--yes confirms the transaction and schedules it for delivery; --no
discards it. Deciding an already-resolved fingerprint changes nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: runDecide,
	}

	cmd.Flags().Bool("yes", false, "confirm the transaction as new")
	cmd.Flags().Bool("no", false, "discard the transaction as a duplicate")
	cmd.MarkFlagsOneRequired("yes", "no")
	cmd.MarkFlagsMutuallyExclusive("yes", "no")

	return cmd
}

func runDecide(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	yes, _ := cmd.Flags().GetBool("yes")
	decision := model.DecisionNo
	if yes {
		decision = model.DecisionYes
	}

	eng := engine.New(store, nil, nil)
	result, err := eng.ResolveDecision(ctx, model.DecisionEvent{
		Fingerprint: args[0],
		Decision:    decision,
	})
	if err != nil {
		return err
	}

	switch result.Status {
	case engine.DecisionSaved:
		fmt.Println(cli.SuccessStyle.Render("✓ Transaction confirmed"))
		printRecord(*result.Record)
		drainIfConfigured(cmd, store)
	case engine.DecisionDiscarded:
		fmt.Println(cli.SubtleStyle.Render("- Transaction discarded"))
	case engine.DecisionUnknown:
		fmt.Println(cli.WarningStyle.Render("? No pending transaction with that fingerprint"))
	}

	return nil
}

// drainIfConfigured pushes the freshly confirmed transaction to the
// configured consumer right away instead of waiting for the next drain.
func drainIfConfigured(cmd *cobra.Command, store *storage.SQLiteStore) {
	outPath := viper.GetString("consumer.path")
	if outPath == "" {
		return
	}

	sink, err := consumer.NewJSONLConsumer(outPath)
	if err != nil {
		slog.Warn("Consumer unavailable, entry stays in outbox", "error", err)
		return
	}

	reconciler := outbox.New(store, consumer.NewRegistry())
	if _, err := reconciler.Drain(cmd.Context(), sink); err != nil {
		slog.Warn("Outbox drain failed, entry stays in outbox", "error", err)
	}
}
