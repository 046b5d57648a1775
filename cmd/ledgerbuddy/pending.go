package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ledgerbuddy/internal/cli"
)

func pendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List transactions held for duplicate confirmation",
		RunE:  runPending,
	}
}

func runPending(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending transactions: %w", err)
	}

	if len(records) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No pending transactions."))
		return nil
	}

	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Pending transactions (%d)", len(records))))
	for _, rec := range records {
		var b strings.Builder
		fmt.Fprintf(&b, "%10.2f  %-7s  %-13s  %s\n", rec.Amount, rec.Direction, rec.Category, rec.Date)
		if rec.Note != "" {
			b.WriteString(cli.SubtleStyle.Render(rec.Note))
			b.WriteString("\n")
		}
		b.WriteString(cli.SubtleStyle.Render("decide " + rec.Fingerprint + " --yes | --no"))
		fmt.Println(cli.BoxStyle.Render(b.String()))
	}

	return nil
}
