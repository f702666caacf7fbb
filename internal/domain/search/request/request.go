package request

import (
	"fmt"

	"github.com/kailas-cloud/dpex/internal/domain"
	"github.com/kailas-cloud/dpex/internal/domain/dpe"
)

// Search parameter limits.
const (
	// PageSize is the fixed number of lines requested from the dataset.
	PageSize = 500
	// MaxQueryLength is the maximum allowed query string length.
	MaxQueryLength = 4096
)

// SortByDateDesc orders lines by diagnosis date, newest first.
var SortByDateDesc = "-" + dpe.FieldDate

// Request is a bounded search against the dataset.
type Request struct {
	query string
	size  int
	sort  string
}

// New creates a request for a built query string. An empty query means an
// unfiltered search.
func New(query string) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars): %w", MaxQueryLength, domain.ErrInvalidQuery)
	}
	return Request{query: query, size: PageSize, sort: SortByDateDesc}, nil
}

// Query returns the query string (may be empty).
func (r Request) Query() string { return r.query }

// Size returns the page size.
func (r Request) Size() int { return r.size }

// Sort returns the sort key, prefixed with "-" for descending order.
func (r Request) Sort() string { return r.sort }
