package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"
	"time"

	"bastion-hq/gateway/pkg/audit"
)

// CSVExporter exports audit entries as CSV. Violations are joined with "; "
// and metadata is written as a JSON object.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Header returns the column names.
func (e *CSVExporter) Header() []string {
	return []string{
		"id", "timestamp", "user_id", "action", "provider",
		"prompt", "response", "guardrail_violations", "metadata",
		"ip_address", "user_agent", "digest",
	}
}

// Export writes entries to w.
func (e *CSVExporter) Export(ctx context.Context, entries []audit.Entry, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(e.Header()); err != nil {
			return audit.NewExportError("csv", len(entries), err)
		}
	}

	for i := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := e.entryToRow(&entries[i])
		if err != nil {
			return audit.NewExportError("csv", len(entries), err)
		}
		if err := writer.Write(row); err != nil {
			return audit.NewExportError("csv", len(entries), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return audit.NewExportError("csv", len(entries), err)
	}
	return nil
}

func (e *CSVExporter) entryToRow(entry *audit.Entry) ([]string, error) {
	metadata := ""
	if len(entry.Metadata) > 0 {
		data, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = string(data)
	}

	return []string{
		entry.ID,
		entry.Timestamp.Format(time.RFC3339Nano),
		entry.UserID,
		string(entry.Action),
		entry.Provider,
		entry.Prompt,
		entry.Response,
		strings.Join(entry.Violations, "; "),
		metadata,
		entry.IPAddress,
		entry.UserAgent,
		entry.Digest,
	}, nil
}

// ForFormat returns the exporter for "json" or "csv".
func ForFormat(format string, pretty bool) (audit.Exporter, bool) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONExporter(pretty), true
	case "csv":
		return NewCSVExporter(true), true
	}
	return nil, false
}
