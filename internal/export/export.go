// Package export writes filtered movie rows back out in their source cell
// format, as CSV or as a single-sheet XLSX workbook.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/moviedash/internal/dataset"
	"github.com/KaramelBytes/moviedash/internal/utils"
	"github.com/xuri/excelize/v2"
)

// DefaultName is the artifact name used when no output path is given.
const DefaultName = "movies_filtered.csv"

// SheetName is the worksheet XLSX exports are written to.
const SheetName = "movies"

// WriteCSV writes header followed by the raw cells of each movie. A zero
// delimiter means comma.
func WriteCSV(w io.Writer, header []string, movies []dataset.Movie, delim rune) error {
	cw := csv.NewWriter(w)
	if delim != 0 {
		cw.Comma = delim
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for i := range movies {
		if err := cw.Write(cells(header, &movies[i])); err != nil {
			return fmt.Errorf("csv: write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same grid as WriteCSV to a single worksheet.
func WriteXLSX(w io.Writer, header []string, movies []dataset.Movie) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("xlsx: stream writer: %w", err)
	}
	if err := setRow(sw, 1, header); err != nil {
		return err
	}
	for i := range movies {
		if err := setRow(sw, i+2, cells(header, &movies[i])); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("xlsx: flush: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func setRow(sw *excelize.StreamWriter, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx: row %d: %w", row, err)
	}
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := sw.SetRow(cell, vals); err != nil {
		return fmt.Errorf("xlsx: write row %d: %w", row, err)
	}
	return nil
}

// ToFile writes movies to path, choosing XLSX or delimited text from the
// extension. The file is replaced atomically.
func ToFile(path string, header []string, movies []dataset.Movie, delim rune) error {
	var buf bytes.Buffer
	var err error
	if dataset.IsXLSX(path) {
		err = WriteXLSX(&buf, header, movies)
	} else {
		if delim == 0 {
			delim = dataset.SniffDelimiter(path)
		}
		err = WriteCSV(&buf, header, movies, delim)
	}
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// cells returns the row's source cells. Rows built without raw cells (for
// example in memory) fall back to the normalized values.
func cells(header []string, m *dataset.Movie) []string {
	if m.Raw != nil {
		return m.Raw
	}
	out := make([]string, len(header))
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case dataset.ColTitle:
			out[i] = m.Title
		case dataset.ColBudget:
			out[i] = floatCell(m.Budget)
		case dataset.ColRevenue:
			out[i] = floatCell(m.Revenue)
		case dataset.ColRuntime:
			out[i] = floatCell(m.Runtime)
		case dataset.ColRating:
			out[i] = floatCell(m.Rating)
		case dataset.ColRelease:
			if m.Year.Valid {
				out[i] = fmt.Sprintf("%04d", m.Year.Value)
			}
		case dataset.ColGenres:
			out[i] = dataset.FormatNameList(m.Genres)
		case dataset.ColCompanies:
			out[i] = dataset.FormatNameList(m.Companies)
		}
	}
	return out
}

func floatCell(f dataset.Float) string {
	if !f.Valid {
		return ""
	}
	return fmt.Sprint(f.Value)
}
