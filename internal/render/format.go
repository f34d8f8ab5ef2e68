// Package render turns dashboard results into terminal, Markdown or JSON output.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/moviedash/internal/analysis"
	"github.com/KaramelBytes/moviedash/internal/dataset"
	"github.com/goccy/go-json"
)

// Format selects an output representation.
type Format string

const (
	FormatTerminal Format = "terminal"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts terminal|text, markdown|md or json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "terminal", "text", "tty":
		return FormatTerminal, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported format: %s (use terminal|markdown|json)", s)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteBoard renders a full dashboard.
func WriteBoard(w io.Writer, f Format, b *analysis.Board) error {
	var s string
	switch f {
	case FormatJSON:
		return WriteJSON(w, b)
	case FormatMarkdown:
		s = Markdown(b)
	default:
		s = Terminal(b)
	}
	_, err := io.WriteString(w, s)
	return err
}

// WriteView renders a single aggregate view.
func WriteView(w io.Writer, f Format, title string, v analysis.View) error {
	var s string
	switch f {
	case FormatJSON:
		return WriteJSON(w, v)
	case FormatMarkdown:
		s = markdownView(title, v)
	default:
		s = terminalView(title, v)
	}
	_, err := io.WriteString(w, s)
	return err
}

// WriteRanking renders a top-N movie ranking.
func WriteRanking(w io.Writer, f Format, title string, m analysis.Measure, rows []analysis.RankedMovie) error {
	var s string
	switch f {
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatMarkdown:
		s = markdownRanking(title, m, rows)
	default:
		s = terminalRanking(title, m, rows)
	}
	_, err := io.WriteString(w, s)
	return err
}

// Money abbreviates a currency amount, e.g. $2.79B.
func Money(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	}
	return fmt.Sprintf("$%.0f", v)
}

// Value formats a measure value for display.
func Value(m analysis.Measure, agg analysis.Agg, v float64) string {
	if agg == analysis.AggCount || m == analysis.MeasureMovies || m == analysis.MeasureTitles {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	switch m {
	case analysis.MeasureRevenue, analysis.MeasureBudget:
		return Money(v)
	case analysis.MeasureRuntime:
		return fmt.Sprintf("%.0f min", v)
	case analysis.MeasureRating:
		return fmt.Sprintf("%.2f", v)
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func nullable(f dataset.Float, format func(float64) string) string {
	if !f.Valid {
		return "n/a"
	}
	return format(f.Value)
}

func rating(v float64) string { return fmt.Sprintf("%.1f", v) }

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
