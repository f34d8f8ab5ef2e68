package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Options controls how a source file is read.
type Options struct {
	// Delimiter for delimited text. If 0, sniffed from the file extension.
	Delimiter rune
	// Sheet selects the XLSX worksheet; empty means the first sheet.
	Sheet string
}

// Load reads path and returns the normalized table. Only structural problems
// fail; malformed cells degrade to null values or empty lists.
func Load(path string, opt Options) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &DataSourceError{Path: path, Op: "stat", Err: err}
	}
	if info.IsDir() {
		return nil, &DataSourceError{Path: path, Op: "stat", Err: errors.New("is a directory")}
	}
	var header []string
	var rows [][]string
	if IsXLSX(path) {
		header, rows, err = readXLSX(path, opt.Sheet)
	} else {
		delim := opt.Delimiter
		if delim == 0 {
			delim = SniffDelimiter(path)
		}
		header, rows, err = readDelimited(path, delim)
	}
	if err != nil {
		return nil, err
	}
	t, err := FromRecords(path, header, rows)
	if err != nil {
		return nil, err
	}
	t.ModTime = info.ModTime()
	t.Size = info.Size()
	return t, nil
}

// FromRecords normalizes an already-read header and row grid.
func FromRecords(source string, header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, &DataSourceError{Path: source, Op: "read header", Err: io.EOF}
	}
	hdr := make([]string, len(header))
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		hdr[i] = h
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &DataSourceError{Path: source, Op: "schema", Missing: missing}
	}

	t := &Table{
		ID:       uuid.NewString(),
		Source:   source,
		Header:   hdr,
		Movies:   make([]Movie, len(rows)),
		LoadedAt: time.Now(),
	}
	cell := func(rec []string, col string) string {
		if i := idx[col]; i < len(rec) {
			return rec[i]
		}
		return ""
	}
	for r, rec := range rows {
		if len(rec) < len(hdr) {
			// pad
			tmp := make([]string, len(hdr))
			copy(tmp, rec)
			rec = tmp
		}
		t.Movies[r] = Movie{
			Title:     cell(rec, ColTitle),
			Budget:    ParseFloat(cell(rec, ColBudget)),
			Revenue:   ParseFloat(cell(rec, ColRevenue)),
			Runtime:   ParseFloat(cell(rec, ColRuntime)),
			Rating:    ParseFloat(cell(rec, ColRating)),
			Year:      ParseYear(cell(rec, ColRelease)),
			Genres:    ParseNameList(cell(rec, ColGenres)),
			Companies: ParseNameList(cell(rec, ColCompanies)),
			Row:       r,
			Raw:       rec,
		}
	}
	return t, nil
}

func readDelimited(path string, delim rune) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &DataSourceError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		return nil, nil, &DataSourceError{Path: path, Op: "read header", Err: err}
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, &DataSourceError{Path: path, Op: fmt.Sprintf("read row %d", len(rows)+1), Err: err}
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

func readXLSX(path, sheet string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, &DataSourceError{Path: path, Op: "open xlsx", Err: err}
	}
	defer f.Close()
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			if list := f.GetSheetList(); len(list) > 0 {
				sheet = list[0]
			}
		}
	}
	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, &DataSourceError{Path: path, Op: "read sheet " + sheet, Err: err}
	}
	if len(grid) == 0 {
		return nil, nil, &DataSourceError{Path: path, Op: "read header", Err: io.EOF}
	}
	return grid[0], grid[1:], nil
}

// IsXLSX reports whether path names an Excel workbook.
func IsXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// SniffDelimiter picks the delimiter from the file name: tab for .tsv, comma otherwise.
func SniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// ParseFloat parses a numeric cell; blank, unparseable and non-finite cells
// (NaN, Inf) are null.
func ParseFloat(s string) Float {
	s = strings.TrimSpace(s)
	if s == "" {
		return Float{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Float{}
	}
	return Some(f)
}

var dateLayouts = []string{
	"2006-01-02", "2006/01/02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04",
	"01/02/2006", "1/2/2006", "2006",
}

// ParseYear extracts the year of a date cell; unparseable dates are null.
func ParseYear(s string) Int {
	s = strings.TrimSpace(s)
	if s == "" {
		return Int{}
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return SomeInt(t.Year())
		}
	}
	return Int{}
}
