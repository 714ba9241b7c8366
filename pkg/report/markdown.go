package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/scenariokit/scenariokit/pkg/harness"
)

// MarkdownOptions configures the Markdown rendering of a run.
type MarkdownOptions struct {
	Title string
	RunAt time.Time
}

// GenerateMarkdown writes a Markdown-formatted report to w, suitable for a
// PR comment or a run summary.
func GenerateMarkdown(w io.Writer, rep *harness.Report, opts MarkdownOptions) error {
	title := opts.Title
	if title == "" {
		title = "Scenario Evaluation Report"
	}
	if _, err := fmt.Fprintf(w, "## %s\n\n", title); err != nil {
		return err
	}

	if !opts.RunAt.IsZero() {
		if _, err := fmt.Fprintf(w, "**Run at:** %s\n\n", opts.RunAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}

	buckets := rep.ResultsByStatus()
	total := len(buckets.Success) + len(buckets.Failure) + len(buckets.Unknown)
	verdict := "PASSED"
	if !rep.Success() {
		verdict = "FAILED"
	}
	if _, err := fmt.Fprintf(w, "**Verdict:** %s — %d evaluations, %d succeeded, %d failed, %d unknown\n\n",
		verdict, total, len(buckets.Success), len(buckets.Failure), len(buckets.Unknown)); err != nil {
		return err
	}

	if total == 0 {
		if _, err := fmt.Fprintln(w, "_No criteria evaluated._"); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(w, "| Criterion | Status | Reason |"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, "|-----------|--------|--------|"); err != nil {
			return err
		}
		for _, e := range rep.Results() {
			if !e.IsEval() {
				continue
			}
			if _, err := fmt.Fprintf(w, "| %s | %s | %s |\n",
				escapeCell(e.Criterion.Name()), statusLabel(e.Result.Status), escapeCell(e.Result.Reason)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "**Transcript:** %d messages\n\n", len(rep.Messages())); err != nil {
		return err
	}
	for _, m := range rep.Messages() {
		if _, err := fmt.Fprintf(w, "- **%s:** %s\n", m.Role, escapeCell(m.Content)); err != nil {
			return err
		}
	}
	return nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
