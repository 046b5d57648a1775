package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ledgerbuddy/internal/cli"
	"ledgerbuddy/internal/common"
	"ledgerbuddy/internal/consumer"
	"ledgerbuddy/internal/engine"
	"ledgerbuddy/internal/model"
	"ledgerbuddy/internal/outbox"
	"ledgerbuddy/internal/service"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the detection engine against a stream of notification events",
		Long: `Read detection events as JSON lines, one object per line:

  {"sourceApp": "com.phonepe.app", "title": "Payment", "body": "You paid Rs. 250 to Swiggy"}

Each event is parsed, judged against recent history and either saved
directly, held for confirmation, queued for review, or ignored.
Confirmed transactions are drained to the configured consumer in the
background.

With --events pointing at a file or FIFO, stdin stays free and duplicate
confirmations are answered interactively. When events arrive on stdin,
confirmations are display-only and resolved via the decide command.`,
		RunE: runWatch,
	}

	cmd.Flags().String("events", "", "read detection events from this file or FIFO instead of stdin")
	cmd.Flags().String("out", "", "deliver confirmed transactions to this JSON-lines file")

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	registry := consumer.NewRegistry()
	if outPath := consumerPath(cmd); outPath != "" {
		sink, sinkErr := consumer.NewJSONLConsumer(outPath)
		if sinkErr != nil {
			return sinkErr
		}
		registry.Attach(sink)
		slog.Info("Consumer attached", "path", outPath)
	} else {
		slog.Info("No consumer configured, confirmed transactions accumulate in the outbox")
	}

	reconciler := outbox.New(store, registry)

	// Pick the event source and matching confirmation surface.
	eventsPath, _ := cmd.Flags().GetString("events")
	var events io.ReadCloser = os.Stdin
	var prompter service.ConfirmationPrompter
	var terminal *cli.TerminalPrompter

	if eventsPath != "" {
		f, openErr := os.Open(eventsPath)
		if openErr != nil {
			return fmt.Errorf("failed to open event source: %w", openErr)
		}
		events = f
		terminal = cli.NewTerminalPrompter(os.Stdin, os.Stdout)
		prompter = terminal
	} else {
		prompter = cli.NewNoticePrompter(os.Stdout)
	}
	defer func() { _ = events.Close() }()

	eng := engine.New(store, prompter, reconciler)

	if err := eng.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if stopErr := eng.Stop(); stopErr != nil {
			slog.Warn("Engine stop failed", "error", stopErr)
		}
	}()

	go reconciler.Run(ctx)
	if terminal != nil {
		go terminal.Run(ctx, eng)
	}
	reconciler.TriggerSync()

	slog.Info("Watching for detection events", "source", eventSourceName(eventsPath))

	scanner := bufio.NewScanner(events)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev model.DetectionEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			slog.Warn("Skipping malformed event line", "error", err)
			continue
		}

		result, err := eng.ProcessDetection(ctx, ev)
		if err != nil {
			common.LogError(err, "Failed to process detection", common.Fields{
				"source": ev.SourceApp,
			})
			continue
		}
		common.LogInfo("Detection processed", common.Fields{
			"status":      result.Status,
			"fingerprint": result.Fingerprint,
			"reason":      result.Reason,
		})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("event stream failed: %w", err)
	}
	return nil
}

func eventSourceName(path string) string {
	if path == "" {
		return "stdin"
	}
	return path
}

// consumerPath resolves the delivery target: the command's --out flag
// when given, otherwise the configured consumer.path.
func consumerPath(cmd *cobra.Command) string {
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		return out
	}
	return viper.GetString("consumer.path")
}
