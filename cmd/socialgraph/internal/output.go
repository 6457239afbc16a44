package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/zero-day-ai/socialgraph/internal/social"
	"github.com/zero-day-ai/socialgraph/internal/types"
)

// OutputFormat selects how command results are written.
type OutputFormat string

const (
	// FormatText is an aligned table or a one-line status
	FormatText OutputFormat = "text"
	// FormatJSON is indented JSON for scripting
	FormatJSON OutputFormat = "json"
)

// reportColumns are the table columns of a batch report, one row per item.
var reportColumns = []string{"operation", "input", "outcome", "result"}

// Formatter writes the results of socialgraph commands.
type Formatter interface {
	// PrintReports writes every item of every report in order.
	PrintReports(reports ...social.BatchReport) error
	// PrintHealth writes a database health check result.
	PrintHealth(status types.HealthStatus) error
	// PrintVersion writes build metadata.
	PrintVersion(summary string, info map[string]string) error
}

// NewFormatter returns the Formatter for format. Unknown formats fall back to
// text, and a nil writer means stdout.
func NewFormatter(format OutputFormat, w io.Writer) Formatter {
	if w == nil {
		w = os.Stdout
	}
	if format == FormatJSON {
		return &JSONFormatter{writer: w}
	}
	return &TextFormatter{writer: w}
}

// TextFormatter writes tables and status lines for people.
type TextFormatter struct {
	writer io.Writer
}

// PrintReports writes one table covering all reports. Unsuccessful items
// show their error in the result column.
func (f *TextFormatter) PrintReports(reports ...social.BatchReport) error {
	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)

	header := make([]string, len(reportColumns))
	rule := make([]string, len(reportColumns))
	for i, col := range reportColumns {
		header[i] = strings.ToUpper(col)
		rule[i] = strings.Repeat("-", len(col))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(tw, strings.Join(rule, "\t")); err != nil {
		return err
	}

	for _, report := range reports {
		for _, item := range report.Items {
			result := strings.Join(item.Values, ", ")
			if item.Err != nil {
				result = item.Err.Error()
			}
			row := []string{report.Operation.String(), item.Input, item.Outcome.String(), result}
			if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}

// PrintHealth writes "✓ message (latency)" or "✗ message".
func (f *TextFormatter) PrintHealth(status types.HealthStatus) error {
	var err error
	if status.IsHealthy() {
		_, err = fmt.Fprintf(f.writer, "✓ %s (%s)\n", status.Message, status.Latency)
	} else {
		_, err = fmt.Fprintf(f.writer, "✗ %s\n", status.Message)
	}
	return err
}

// PrintVersion writes the one-line summary.
func (f *TextFormatter) PrintVersion(summary string, _ map[string]string) error {
	_, err := fmt.Fprintln(f.writer, summary)
	return err
}

// JSONFormatter writes indented JSON documents.
type JSONFormatter struct {
	writer io.Writer
}

// PrintReports writes the reports as a JSON array. An empty call still
// produces an array.
func (f *JSONFormatter) PrintReports(reports ...social.BatchReport) error {
	if reports == nil {
		reports = []social.BatchReport{}
	}
	return f.encode(reports)
}

func (f *JSONFormatter) PrintHealth(status types.HealthStatus) error {
	return f.encode(status)
}

func (f *JSONFormatter) PrintVersion(_ string, info map[string]string) error {
	return f.encode(info)
}

func (f *JSONFormatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
