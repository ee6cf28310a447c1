// Package loader reads raw catalog rows from external files.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"popflix/pkg/models"
)

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("loader: missing required column")

// Columns are the header names the movies CSV must carry.
var Columns = []string{"id", "title", "genres", "keywords", "cast", "director", "overview"}

// ReadCSV reads a header-indexed movies CSV. Extra columns are ignored and
// short rows yield empty fields, which the index builder treats as missing.
func ReadCSV(r io.Reader) ([]models.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	for _, col := range Columns {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var rows []models.RawRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+2, err)
		}
		if len(rec) == 0 {
			continue
		}
		rows = append(rows, models.RawRow{
			ID:       valueAt(header, rec, "id"),
			Title:    valueAt(header, rec, "title"),
			Overview: valueAt(header, rec, "overview"),
			Genres:   valueAt(header, rec, "genres"),
			Keywords: valueAt(header, rec, "keywords"),
			Cast:     valueAt(header, rec, "cast"),
			Director: valueAt(header, rec, "director"),
		})
	}
	return rows, nil
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string) ([]models.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		name = strings.TrimPrefix(name, "\ufeff")
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// WriteCSV writes rows with a Columns header, readable again by ReadCSV.
func WriteCSV(w io.Writer, rows []models.RawRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.ID, r.Title, r.Genres, r.Keywords, r.Cast, r.Director, r.Overview}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
