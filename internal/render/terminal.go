package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/moviedash/internal/analysis"
	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.Color("#E50914")
	muted  = lipgloss.Color("#888888")
	gold   = lipgloss.Color("#F5C518")
	white  = lipgloss.Color("#FFFFFF")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(white)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle  = lipgloss.NewStyle().Foreground(muted)
	barStyle    = lipgloss.NewStyle().Foreground(gold)
	metricValue = lipgloss.NewStyle().Bold(true).Foreground(gold)
	metricLabel = lipgloss.NewStyle().Foreground(muted)
	metricCard  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 2).Align(lipgloss.Center).Width(18)
)

const (
	barMaxWidth  = 32
	labelWidth   = 28
	valueColumns = 12
)

// Terminal renders the board as metric cards and horizontal bar charts.
func Terminal(b *analysis.Board) string {
	var sb strings.Builder
	p := b.Predicates
	sb.WriteString(titleStyle.Render("Movie Dashboard"))
	sb.WriteString("\n")
	filters := fmt.Sprintf("years %d-%d  rating %.1f-%.1f", p.YearMin, p.YearMax, p.RatingMin, p.RatingMax)
	if len(p.Genres) > 0 {
		filters += "  genres " + strings.Join(p.Genres, ", ")
	}
	if len(p.Companies) > 0 {
		filters += "  companies " + strings.Join(p.Companies, ", ")
	}
	sb.WriteString(mutedStyle.Render(filters))
	sb.WriteString("\n\n")

	s := b.Summary
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card(strconv.Itoa(s.Movies), "Total Movies"),
		card(Money(s.Revenue), "Total Revenue"),
		card(strconv.Itoa(s.Years), "Years"),
		card(nullable(s.AvgRating, rating), "Avg. Rating"),
	))
	sb.WriteString("\n\n")

	sb.WriteString(terminalRanking(fmt.Sprintf("Top %d Movies by Revenue", len(b.TopMovies)), analysis.MeasureRevenue, b.TopMovies))
	sb.WriteString("\n")
	sb.WriteString(terminalView("Average Rating by Year", b.RatingByYear))
	sb.WriteString("\n")
	sb.WriteString(terminalView("Revenue by Year", b.RevenueByYear))
	sb.WriteString("\n")
	sb.WriteString(terminalView("Top Production Companies by Revenue", b.TopCompanies))
	sb.WriteString("\n")
	sb.WriteString(terminalView("Top Genres by Movie Count", b.TopGenresByCount))
	sb.WriteString("\n")
	sb.WriteString(terminalView("Top Genres by Revenue", b.TopGenresByRevenue))
	return sb.String()
}

func card(value, label string) string {
	return metricCard.Render(metricValue.Render(value) + "\n" + metricLabel.Render(label))
}

func terminalView(title string, v analysis.View) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("▸ " + title))
	sb.WriteString("\n")
	if len(v.Rows) == 0 {
		sb.WriteString(mutedStyle.Render("  no data"))
		sb.WriteString("\n")
		return sb.String()
	}
	var max float64
	for _, r := range v.Rows {
		if r.Value > max {
			max = r.Value
		}
	}
	for _, r := range v.Rows {
		sb.WriteString(barLine(r.Key, r.Value, max, Value(v.Measure, v.Agg, r.Value)))
	}
	return sb.String()
}

func terminalRanking(title string, m analysis.Measure, rows []analysis.RankedMovie) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("▸ " + title))
	sb.WriteString("\n")
	if len(rows) == 0 {
		sb.WriteString(mutedStyle.Render("  no data"))
		sb.WriteString("\n")
		return sb.String()
	}
	var max float64
	for _, r := range rows {
		if r.Value.Valid && r.Value.Value > max {
			max = r.Value.Value
		}
	}
	for _, r := range rows {
		val := nullable(r.Value, func(v float64) string { return Value(m, analysis.AggSum, v) })
		val += mutedStyle.Render(" ★ " + nullable(r.Rating, rating))
		sb.WriteString(barLine(r.Title, r.Value.Value, max, val))
	}
	return sb.String()
}

func barLine(label string, v, peak float64, text string) string {
	width := 0
	if ratio := v / peak; peak > 0 && v > 0 && !math.IsNaN(ratio) && !math.IsInf(ratio, 0) {
		width = min(int(ratio*float64(barMaxWidth)), barMaxWidth)
		if width <= 0 {
			width = 1
		}
	}
	label = truncate(safeName(label), labelWidth)
	return fmt.Sprintf("  %-*s %s%s %*s\n",
		labelWidth, label,
		barStyle.Render(strings.Repeat("█", width)),
		strings.Repeat(" ", barMaxWidth-width),
		valueColumns, text)
}
