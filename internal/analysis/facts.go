package analysis

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/KaramelBytes/moviedash/internal/dataset"
)

// Facts returns trivia about the dataset. Records, runtime and year facts
// are drawn from the full table; genre and company facts come from the
// board's filtered views. Facts without data are left out.
func Facts(t *dataset.Table, b *Board) []string {
	var facts []string
	var all []dataset.Movie
	if t != nil {
		all = t.Movies
	}
	if top := TopN(all, MeasureRevenue, 1); len(top) == 1 && top[0].Value.Valid {
		facts = append(facts, fmt.Sprintf("The highest-grossing movie is '%s' with $%s revenue!", top[0].Title, thousands(top[0].Value.Value)))
	}
	if b != nil && len(b.TopGenresByCount.Rows) > 0 {
		g := b.TopGenresByCount.Rows[0]
		facts = append(facts, fmt.Sprintf("The most common genre is '%s' with %d movies.", g.Key, g.Count))
	}
	if rt := meanOf(all, MeasureRuntime); rt.Valid {
		facts = append(facts, fmt.Sprintf("The average movie runtime is %.1f minutes.", rt.Value))
	}
	if d := DomainsOf(t); d.HasYears {
		facts = append(facts, fmt.Sprintf("The oldest movie in the dataset is from %d.", d.YearMin))
	}
	if busiest := GroupByCount(all, DimYear, MeasureMovies); len(busiest.Rows) > 0 {
		r := busiest.Rows[0]
		facts = append(facts, fmt.Sprintf("The most productive year was %d with %d movies released.", r.Year, r.Count))
	}
	if b != nil && len(b.TopCompanies.Rows) > 0 {
		facts = append(facts, fmt.Sprintf("The company with the highest total revenue is '%s'.", b.TopCompanies.Rows[0].Key))
	}
	return facts
}

// RandomFact picks one fact using rng. ok is false when facts is empty.
func RandomFact(facts []string, rng *rand.Rand) (fact string, ok bool) {
	if len(facts) == 0 {
		return "", false
	}
	return facts[rng.Intn(len(facts))], true
}

func meanOf(movies []dataset.Movie, measure Measure) dataset.Float {
	var sum float64
	var n int
	for i := range movies {
		if v := measure.Of(&movies[i]); v.Valid {
			sum += v.Value
			n++
		}
	}
	if n == 0 {
		return dataset.Float{}
	}
	return dataset.Some(sum / float64(n))
}

// thousands formats v rounded to an integer with comma grouping.
func thousands(v float64) string {
	s := strconv.FormatFloat(math.Round(math.Abs(v)), 'f', 0, 64)
	var b strings.Builder
	if v < 0 && s != "0" {
		b.WriteByte('-')
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}
