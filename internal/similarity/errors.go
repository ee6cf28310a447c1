package similarity

import "errors"

var (
	// ErrTitleNotFound is returned when the query title is not in the corpus.
	ErrTitleNotFound = errors.New("similarity: title not found")

	// ErrInvalidK is returned when k is non-positive or exceeds the number of other movies.
	ErrInvalidK = errors.New("similarity: invalid k")

	// ErrDimension is returned when a matrix and a corpus disagree on size.
	ErrDimension = errors.New("similarity: dimension mismatch")
)
