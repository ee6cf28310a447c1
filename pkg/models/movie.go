package models

// RawRow is one catalog row as handed over by a loader (CSV file, SQLite table).
//
// Every field is kept as raw text. A field that is empty after trimming is
// treated as missing by the index builder; no fix-ups are attempted.
type RawRow struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Overview string `json:"overview"`
	Genres   string `json:"genres"`
	Keywords string `json:"keywords"`
	Cast     string `json:"cast"`
	Director string `json:"director"`
}

// MovieRecord is the validated, internal form of a catalog row used by the
// index builder and the ranker.
//
// Genres, Keywords and Cast hold whitespace-separated terms exactly as the
// source catalog stores them.
type MovieRecord struct {
	ID       int    `json:"id"`    // external identifier (TMDB movie id)
	Title    string `json:"title"` // lookup key, first match wins
	Overview string `json:"overview"`
	Genres   string `json:"genres"`
	Keywords string `json:"keywords"`
	Cast     string `json:"cast"`
	Director string `json:"director"`
}

// Recommendation is one ranked result: the similar movie's title and
// external id, plus the cosine score it was ranked by.
type Recommendation struct {
	Title string  `json:"title"`
	ID    int     `json:"id"`
	Score float64 `json:"score"`
}
