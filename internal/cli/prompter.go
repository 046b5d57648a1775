package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"ledgerbuddy/internal/model"
	"ledgerbuddy/internal/service"
)

// TerminalPrompter is the interactive confirmation collaborator for the
// watch command. RequestConfirmation only queues the request; Run
// prompts the user one request at a time and submits the resulting
// decisions to the sink, so ingestion is never blocked on a human.
type TerminalPrompter struct {
	out      io.Writer
	reader   *NonBlockingReader
	requests chan service.ConfirmationRequest
}

// NewTerminalPrompter creates a prompter reading answers from in and
// writing prompts to out. The decision sink is supplied to Run.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		out:      out,
		reader:   NewNonBlockingReader(in),
		requests: make(chan service.ConfirmationRequest, 16),
	}
}

// RequestConfirmation queues a confirmation request. It is
// fire-and-forget: a full queue drops the request, and the still-pending
// record is re-offered on the next startup.
func (p *TerminalPrompter) RequestConfirmation(_ context.Context, req service.ConfirmationRequest) error {
	select {
	case p.requests <- req:
		return nil
	default:
		return fmt.Errorf("confirmation queue full, dropping request for %s", req.Fingerprint)
	}
}

// Run prompts for queued confirmations until the context is canceled,
// submitting each answer to sink.
func (p *TerminalPrompter) Run(ctx context.Context, sink service.DecisionSink) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-p.requests:
			p.promptOne(ctx, req, sink)
		}
	}
}

func (p *TerminalPrompter) promptOne(ctx context.Context, req service.ConfirmationRequest, sink service.DecisionSink) {
	fmt.Fprintln(p.out, BoxStyle.Render(formatConfirmation(req)))
	fmt.Fprint(p.out, "Is this a new transaction? [y/n]: ")

	for {
		line, err := p.reader.ReadLine(ctx)
		if err != nil {
			slog.Debug("Confirmation prompt aborted",
				"fingerprint", req.Fingerprint,
				"error", err)
			return
		}

		var decision model.Decision
		switch strings.ToLower(line) {
		case "y", "yes":
			decision = model.DecisionYes
		case "n", "no":
			decision = model.DecisionNo
		default:
			fmt.Fprint(p.out, "Please answer y or n: ")
			continue
		}

		ev := model.DecisionEvent{Fingerprint: req.Fingerprint, Decision: decision}
		if err := sink.SubmitDecision(ev); err != nil {
			slog.Warn("Failed to submit decision",
				"fingerprint", req.Fingerprint,
				"error", err)
		}
		return
	}
}

func formatConfirmation(req service.ConfirmationRequest) string {
	glyph := "💸"
	if req.Direction == model.DirectionIncome {
		glyph = "💰"
	}

	var b strings.Builder
	b.WriteString(WarningStyle.Render("Possible duplicate transaction"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %.2f  %s  %s\n", glyph, req.Amount, req.Direction, req.Category)
	fmt.Fprintf(&b, "Found %d similar transaction(s) in the last 24 hours.\n", req.SimilarCount)
	if req.Note != "" {
		b.WriteString(SubtleStyle.Render(req.Note))
	}
	return b.String()
}
