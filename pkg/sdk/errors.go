package dpex

import (
	"github.com/kailas-cloud/dpex/internal/domain"
	searchuc "github.com/kailas-cloud/dpex/internal/usecase/search"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound      = domain.ErrNotFound
	ErrInvalidQuery  = domain.ErrInvalidQuery
	ErrUpstream      = domain.ErrUpstream
	ErrQuotaExceeded = domain.ErrQuotaExceeded
)

// UpstreamError carries the HTTP status of a failed dataset API call.
// Use errors.As() to extract it.
type UpstreamError = domain.UpstreamError

// UserMessage turns a search error into a short message fit for end users.
func UserMessage(err error) string {
	return searchuc.UserMessage(err)
}
