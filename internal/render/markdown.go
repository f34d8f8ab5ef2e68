package render

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/moviedash/internal/analysis"
)

// Markdown renders a compact report of the board.
func Markdown(b *analysis.Board) string {
	var sb strings.Builder
	p := b.Predicates
	sb.WriteString("[OVERVIEW]\n")
	sb.WriteString(fmt.Sprintf("Years: %d-%d\n", p.YearMin, p.YearMax))
	sb.WriteString(fmt.Sprintf("Rating: %.1f-%.1f\n", p.RatingMin, p.RatingMax))
	if len(p.Genres) > 0 {
		sb.WriteString(fmt.Sprintf("Genres: %s\n", strings.Join(p.Genres, ", ")))
	}
	if len(p.Companies) > 0 {
		sb.WriteString(fmt.Sprintf("Companies: %s\n", strings.Join(p.Companies, ", ")))
	}
	s := b.Summary
	sb.WriteString(fmt.Sprintf("- Total movies: %d\n", s.Movies))
	sb.WriteString(fmt.Sprintf("- Total revenue: %s\n", Money(s.Revenue)))
	sb.WriteString(fmt.Sprintf("- Years: %d\n", s.Years))
	sb.WriteString(fmt.Sprintf("- Avg. rating: %s\n", nullable(s.AvgRating, rating)))

	sb.WriteString("\n")
	sb.WriteString(markdownRanking(fmt.Sprintf("TOP %d MOVIES BY REVENUE", len(b.TopMovies)), analysis.MeasureRevenue, b.TopMovies))
	sb.WriteString("\n")
	sb.WriteString(markdownView("AVERAGE RATING BY YEAR", b.RatingByYear))
	sb.WriteString("\n")
	sb.WriteString(markdownView("REVENUE BY YEAR", b.RevenueByYear))
	sb.WriteString("\n")
	sb.WriteString(markdownView("TOP PRODUCTION COMPANIES BY REVENUE", b.TopCompanies))
	sb.WriteString("\n")
	sb.WriteString(markdownView("TOP GENRES BY MOVIE COUNT", b.TopGenresByCount))
	sb.WriteString("\n")
	sb.WriteString(markdownView("TOP GENRES BY REVENUE", b.TopGenresByRevenue))
	return sb.String()
}

func markdownView(title string, v analysis.View) string {
	var sb strings.Builder
	sb.WriteString("[" + strings.ToUpper(title) + "]\n")
	if len(v.Rows) == 0 {
		sb.WriteString("(no data)\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("| %s | %s (%s) |\n", v.Dimension, v.Measure, v.Agg))
	sb.WriteString("| --- | --- |\n")
	for _, r := range v.Rows {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", safeVal(safeName(r.Key)), Value(v.Measure, v.Agg, r.Value)))
	}
	return sb.String()
}

func markdownRanking(title string, m analysis.Measure, rows []analysis.RankedMovie) string {
	var sb strings.Builder
	sb.WriteString("[" + strings.ToUpper(title) + "]\n")
	if len(rows) == 0 {
		sb.WriteString("(no data)\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("| # | title | %s | rating |\n", m))
	sb.WriteString("| --- | --- | --- | --- |\n")
	for i, r := range rows {
		val := nullable(r.Value, func(v float64) string { return Value(m, analysis.AggSum, v) })
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", i+1, safeVal(truncate(safeName(r.Title), 80)), val, nullable(r.Rating, rating)))
	}
	return sb.String()
}
