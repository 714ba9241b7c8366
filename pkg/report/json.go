// Package report serializes a finished evaluation run. The harness itself
// persists nothing; callers that want a durable record go through here.
package report

import (
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/scenariokit/scenariokit/pkg/criterion"
	"github.com/scenariokit/scenariokit/pkg/harness"
)

// JSONReport is the serialized form of one evaluation run.
type JSONReport struct {
	Version   string      `json:"version"`
	Timestamp string      `json:"timestamp"`
	Success   bool        `json:"success"`
	Summary   JSONSummary `json:"summary"`
	Entries   []JSONEntry `json:"entries"`
}

// JSONSummary counts evaluation entries per status bucket.
type JSONSummary struct {
	Evaluations int `json:"evaluations"`
	Success     int `json:"success"`
	Failure     int `json:"failure"`
	Unknown     int `json:"unknown"`
}

// JSONEntry is one resolved entry, message or evaluation, in emission order.
type JSONEntry struct {
	Kind string `json:"kind"`

	// Message entries.
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`

	// Evaluation entries.
	Criterion string `json:"criterion,omitempty"`
	Status    string `json:"status,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Error     string `json:"error,omitempty"`
}

// GenerateJSON serializes the report.
func GenerateJSON(rep *harness.Report) ([]byte, error) {
	out := JSONReport{
		Version:   "1.0",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Success:   rep.Success(),
	}

	buckets := rep.ResultsByStatus()
	out.Summary = JSONSummary{
		Evaluations: len(buckets.Success) + len(buckets.Failure) + len(buckets.Unknown),
		Success:     len(buckets.Success),
		Failure:     len(buckets.Failure),
		Unknown:     len(buckets.Unknown),
	}

	for _, e := range rep.Results() {
		out.Entries = append(out.Entries, toJSONEntry(e))
	}

	return json.MarshalIndent(out, "", "  ")
}

func toJSONEntry(e harness.Entry) JSONEntry {
	if e.Message != nil {
		return JSONEntry{
			Kind:    "message",
			Role:    string(e.Message.Role),
			Content: e.Message.Content,
		}
	}

	je := JSONEntry{
		Kind:      "eval",
		Criterion: e.Criterion.Name(),
		Status:    statusLabel(e.Result.Status),
		Reason:    e.Result.Reason,
	}
	if e.Result.Err != nil {
		je.Error = e.Result.Err.Error()
	}
	return je
}

func statusLabel(s criterion.Status) string {
	if s == "" {
		return "unknown"
	}
	return string(s)
}
