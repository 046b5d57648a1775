package cli

import (
	"context"
	"fmt"
	"io"

	"ledgerbuddy/internal/service"
)

// NoticePrompter displays confirmation requests without collecting an
// answer. It is used when stdin carries the event stream and no
// interactive channel is available; decisions then arrive out of band
// through the decide command.
type NoticePrompter struct {
	out io.Writer
}

// NewNoticePrompter creates a display-only prompter writing to out.
func NewNoticePrompter(out io.Writer) *NoticePrompter {
	return &NoticePrompter{out: out}
}

// RequestConfirmation renders the request and how to resolve it.
func (p *NoticePrompter) RequestConfirmation(_ context.Context, req service.ConfirmationRequest) error {
	fmt.Fprintln(p.out, BoxStyle.Render(formatConfirmation(req)))
	fmt.Fprintln(p.out, SubtleStyle.Render(
		fmt.Sprintf("Resolve with: ledgerbuddy decide %s --yes | --no", req.Fingerprint)))
	return nil
}
