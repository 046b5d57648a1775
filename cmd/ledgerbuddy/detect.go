package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ledgerbuddy/internal/cli"
	"ledgerbuddy/internal/engine"
	"ledgerbuddy/internal/model"
)

func detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect [text...]",
		Short: "Run a single notification text through the detection pipeline",
		Long: `Parse one notification and record the outcome, exactly as the watch
command would. Useful for testing parser behavior against real
notification text:

  ledgerbuddy detect "You paid Rs. 250 to Swiggy"
  ledgerbuddy detect --source com.phonepe.app --title "Payment" "Rs. 120 debited from your account"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runDetect,
	}

	cmd.Flags().String("source", "manual", "source application package name")
	cmd.Flags().String("title", "", "notification title")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	source, _ := cmd.Flags().GetString("source")
	title, _ := cmd.Flags().GetString("title")

	// Manual detections bypass the financial-source gate: the operator
	// typed the text in, so the package name is not evidence.
	cfg := engine.DefaultConfig()
	cfg.FilterSources = false

	eng := engine.NewWithConfig(store, cli.NewNoticePrompter(os.Stdout), nil, cfg)

	ev := model.DetectionEvent{
		SourceApp: source,
		Title:     title,
		Body:      strings.Join(args, " "),
	}

	result, err := eng.ProcessDetection(ctx, ev)
	if err != nil {
		return err
	}

	switch result.Status {
	case engine.DetectionSaved:
		fmt.Println(cli.SuccessStyle.Render("✓ Transaction saved"))
		printRecord(*result.Record)
	case engine.DetectionPending:
		fmt.Println(cli.WarningStyle.Render(
			fmt.Sprintf("? Held for confirmation (%d similar in the last 24h)", result.SimilarCount)))
		printRecord(*result.Record)
	case engine.DetectionQueued:
		fmt.Println(cli.WarningStyle.Render("~ Queued for review: " + result.Reason))
	case engine.DetectionIgnored:
		fmt.Println(cli.SubtleStyle.Render("- Ignored: " + result.Reason))
	}

	return nil
}

func printRecord(rec model.Record) {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %.2f\n", "Amount:", rec.Amount)
	fmt.Fprintf(&b, "%-12s %s\n", "Direction:", rec.Direction)
	fmt.Fprintf(&b, "%-12s %s\n", "Category:", rec.Category)
	fmt.Fprintf(&b, "%-12s %s\n", "Date:", rec.Date)
	fmt.Fprintf(&b, "%-12s %s", "Fingerprint:", rec.Fingerprint)
	fmt.Println(cli.SubtleStyle.Render(b.String()))
}
