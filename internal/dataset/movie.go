// Package dataset loads the movie metadata table and normalizes its raw string
// cells into typed, queryable columns.
package dataset

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Column names the rest of the system depends on.
const (
	ColTitle     = "title"
	ColBudget    = "budget"
	ColRevenue   = "revenue"
	ColRuntime   = "runtime"
	ColRating    = "vote_average"
	ColRelease   = "release_date"
	ColGenres    = "genres"
	ColCompanies = "production_companies"
)

// RequiredColumns lists the columns a source must carry to be loadable.
var RequiredColumns = []string{
	ColTitle, ColBudget, ColRevenue, ColRuntime, ColRating, ColRelease, ColGenres, ColCompanies,
}

// Float is a nullable float64.
type Float struct {
	Value float64
	Valid bool
}

// Some returns a valid Float.
func Some(v float64) Float { return Float{Value: v, Valid: true} }

// MarshalJSON renders null for invalid and non-finite values.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid || math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f.Value, 'f', -1, 64), nil
}

// UnmarshalJSON accepts a number or null.
func (f *Float) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" {
		*f = Float{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("dataset: invalid float %s", s)
	}
	*f = Some(v)
	return nil
}

// Int is a nullable int.
type Int struct {
	Value int
	Valid bool
}

// SomeInt returns a valid Int.
func SomeInt(v int) Int { return Int{Value: v, Valid: true} }

// MarshalJSON renders null for invalid values.
func (i Int) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, int64(i.Value), 10), nil
}

// UnmarshalJSON accepts an integer or null.
func (i *Int) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" {
		*i = Int{}
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("dataset: invalid int %s", s)
	}
	*i = SomeInt(v)
	return nil
}

// Movie is one normalized row of the dataset.
type Movie struct {
	Title     string   `json:"title"`
	Budget    Float    `json:"budget"`
	Revenue   Float    `json:"revenue"`
	Runtime   Float    `json:"runtime"`
	Rating    Float    `json:"vote_average"`
	Year      Int      `json:"release_year"`
	Genres    []string `json:"genres"`
	Companies []string `json:"production_companies"`

	// Row is the zero-based data row index in the source.
	Row int `json:"-"`
	// Raw holds the source cells, in header order.
	Raw []string `json:"-"`
}

// Table is the normalized dataset. It is never mutated after Load returns.
type Table struct {
	ID       string
	Source   string
	Header   []string
	Movies   []Movie
	ModTime  time.Time
	Size     int64
	LoadedAt time.Time
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Movies)
}
