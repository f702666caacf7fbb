package search

import (
	"context"

	"github.com/kailas-cloud/dpex/internal/domain/dpe"
	"github.com/kailas-cloud/dpex/internal/domain/search/request"
)

// Searcher is the remote dataset API.
type Searcher interface {
	Search(ctx context.Context, req request.Request) ([]dpe.Record, error)
}

// URLBuilder renders the raw API URL for a request, for display.
type URLBuilder interface {
	URL(req request.Request) string
}

// QuotaChecker guards the upstream request budget.
type QuotaChecker interface {
	Check(ctx context.Context) error
	Record(requests int64)
}
