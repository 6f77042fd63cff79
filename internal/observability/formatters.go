// Package observability provides formatted console output for summary runs.
package observability

import (
	"fmt"
	"io"
	"strings"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
)

// RunInfo describes a run for the verbose header box.
type RunInfo struct {
	RunID    string
	Provider string
	Model    string
	Dirs     []string
	Output   string
}

// Printer writes per-article progress and the final tally.
// Failures go to errOut so they stand out when stdout is redirected.
type Printer struct {
	out    io.Writer
	errOut io.Writer
}

// NewPrinter creates a new Printer. A nil errOut sends failures to out.
func NewPrinter(out, errOut io.Writer) *Printer {
	if errOut == nil {
		errOut = out
	}
	return &Printer{out: out, errOut: errOut}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunInfo outputs the run configuration.
func (p *Printer) PrintRunInfo(info RunInfo) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", info.RunID))
	sb.WriteString(fmt.Sprintf("Provider: %s\n", info.Provider))
	sb.WriteString(fmt.Sprintf("Model:    %s\n", info.Model))
	sb.WriteString(fmt.Sprintf("Dirs:     %s\n", strings.Join(info.Dirs, ", ")))
	sb.WriteString(fmt.Sprintf("Output:   %s", info.Output))

	p.printBox("SUMMARY RUN", sb.String())
}

// Generated reports a summary returned by the service.
//
//nolint:errcheck
func (p *Printer) Generated(label, summary string) {
	fmt.Fprintf(p.out, "✓ %s: %s\n", label, summary)
}

// Failed reports a request failure; the article got a fallback summary.
//
//nolint:errcheck
func (p *Printer) Failed(label string, err error) {
	fmt.Fprintf(p.errOut, "✗ %s: %v\n", label, err)
}

// Skipped reports an article that already had a summary.
//
//nolint:errcheck
func (p *Printer) Skipped(label string) {
	fmt.Fprintf(p.out, "⏭ %s: already has summary, skipped\n", label)
}

// Tally prints the final counts.
//
//nolint:errcheck
func (p *Printer) Tally(newCount, skippedCount int) {
	fmt.Fprintf(p.out, "\nGenerated %d new summaries, skipped %d existing\n", newCount, skippedCount)
}

// Wrote confirms where the cache was written.
//
//nolint:errcheck
func (p *Printer) Wrote(path string) {
	fmt.Fprintf(p.out, "\nWrote summaries to %s\n", path)
}

// Status prints one line of the pending/cached listing.
//
//nolint:errcheck
func (p *Printer) Status(label string, cached bool) {
	state := "pending"
	if cached {
		state = "cached"
	}
	fmt.Fprintf(p.out, "%-8s %s\n", state, label)
}

// StatusTally prints the pending/cached counts.
//
//nolint:errcheck
func (p *Printer) StatusTally(pending, cached int) {
	fmt.Fprintf(p.out, "\n%d pending, %d cached\n", pending, cached)
}
