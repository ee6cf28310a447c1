// Package catalog turns raw catalog rows into a corpus of movie records and
// derives the fixed vocabulary and bag-of-words feature matrix from it.
//
// Nothing in this package performs I/O or logs; rows are handed in by an
// external loader and the derived structures are returned to the caller.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"popflix/pkg/models"
)

// Corpus is the ordered, immutable set of movie records an index is built from.
type Corpus struct {
	records []models.MovieRecord
}

// LoadStats reports what Load did with its input.
type LoadStats struct {
	Rows    int `json:"rows"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
	// Duplicates counts rows dropped because an earlier row claimed their id;
	// they are included in Dropped.
	Duplicates int `json:"duplicates"`
}

// Load filters rows missing any required field and returns the survivors in
// input order. The first row with an integer id and a title claims that id;
// later rows with the same id are dropped even when the claiming row was
// itself incomplete. Only a fully empty result is an error.
func Load(rows []models.RawRow) (*Corpus, LoadStats, error) {
	stats := LoadStats{Rows: len(rows)}
	records := make([]models.MovieRecord, 0, len(rows))
	claimed := make(map[int]struct{}, len(rows))

	for _, row := range rows {
		if id, ok := rowKey(row); ok {
			if _, dup := claimed[id]; dup {
				stats.Dropped++
				stats.Duplicates++
				continue
			}
			claimed[id] = struct{}{}
		}
		rec, ok := toRecord(row)
		if !ok {
			stats.Dropped++
			continue
		}
		records = append(records, rec)
	}
	stats.Kept = len(records)

	if len(records) == 0 {
		return nil, stats, fmt.Errorf("%w: no usable rows out of %d", ErrEmptyCatalog, len(rows))
	}
	return &Corpus{records: records}, stats, nil
}

// NewCorpus wraps already validated records, e.g. when restoring a snapshot.
func NewCorpus(records []models.MovieRecord) (*Corpus, error) {
	if len(records) == 0 {
		return nil, ErrEmptyCatalog
	}
	out := make([]models.MovieRecord, len(records))
	copy(out, records)
	return &Corpus{records: out}, nil
}

// rowKey is the id a row can be stored under, if any.
func rowKey(row models.RawRow) (int, bool) {
	if strings.TrimSpace(row.Title) == "" {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(row.ID))
	return id, err == nil
}

func toRecord(row models.RawRow) (models.MovieRecord, bool) {
	fields := []string{row.ID, row.Title, row.Overview, row.Genres, row.Keywords, row.Cast, row.Director}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return models.MovieRecord{}, false
		}
	}

	id, err := strconv.Atoi(strings.TrimSpace(row.ID))
	if err != nil {
		return models.MovieRecord{}, false
	}

	return models.MovieRecord{
		ID:       id,
		Title:    row.Title,
		Overview: row.Overview,
		Genres:   row.Genres,
		Keywords: row.Keywords,
		Cast:     row.Cast,
		Director: row.Director,
	}, true
}

// Len returns the number of movies.
func (c *Corpus) Len() int { return len(c.records) }

// At returns the record at position i.
func (c *Corpus) At(i int) models.MovieRecord { return c.records[i] }

// Records returns a copy of all records in corpus order.
func (c *Corpus) Records() []models.MovieRecord {
	out := make([]models.MovieRecord, len(c.records))
	copy(out, c.records)
	return out
}

// IndexOf returns the position of the first record whose title equals title
// exactly. Duplicate titles resolve to the earliest row.
func (c *Corpus) IndexOf(title string) (int, bool) {
	for i, r := range c.records {
		if r.Title == title {
			return i, true
		}
	}
	return -1, false
}

// Titles lists every title in corpus order.
func (c *Corpus) Titles() []string {
	out := make([]string, len(c.records))
	for i, r := range c.records {
		out[i] = r.Title
	}
	return out
}

// Text returns the lower-cased blob that feature extraction runs on.
func Text(r models.MovieRecord) string {
	return strings.ToLower(r.Overview + " " + r.Genres + " " + r.Keywords + " " + r.Cast + " " + r.Director)
}
