package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dpex/internal/domain"
	"github.com/kailas-cloud/dpex/internal/domain/dpe"
	"github.com/kailas-cloud/dpex/internal/domain/geo"
	"github.com/kailas-cloud/dpex/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/dpex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/dpex/internal/usecase/search"
)

// --- Fakes ---

type fakeRemote struct {
	records []dpe.Record
	err     error
	queries []string
}

func (f *fakeRemote) Search(_ context.Context, req request.Request) ([]dpe.Record, error) {
	f.queries = append(f.queries, req.Query())
	return f.records, f.err
}

func (f *fakeRemote) URL(req request.Request) string {
	return "https://example.test/lines?qs=" + req.Query()
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeQuota struct{ err error }

func (f fakeQuota) Check(context.Context) error { return f.err }
func (fakeQuota) Record(int64)                  {}

func newTestRouter(remote *fakeRemote, quota searchuc.QuotaChecker, upstreamErr error) http.Handler {
	svc := searchuc.New(remote)
	if quota != nil {
		svc.WithQuota(quota)
	}
	health := healthuc.New(fakePinger{err: upstreamErr}, nil)
	srv := NewServer(svc, health, geo.DefaultViewConfig(), zap.NewNop())
	return HandlerWithOptions(srv, ChiServerOptions{ErrorHandlerFunc: WriteBadRequest})
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func sampleRecords() []dpe.Record {
	return []dpe.Record{
		{"numero_dpe": "1", "etiquette_dpe": "A", "date_etablissement_dpe": "2024-03-01", "y": 45.75, "x": 4.85},
		{"numero_dpe": "2", "etiquette_dpe": "C", "date_etablissement_dpe": "2024-03-02", "y": 45.76, "x": 4.83},
		{"numero_dpe": "3", "etiquette_dpe": "B", "date_etablissement_dpe": "2024-03-03"},
	}
}

// --- Tests ---

func TestSearch_BindsAndFilters(t *testing.T) {
	remote := &fakeRemote{records: sampleRecords()}
	h := newTestRouter(remote, nil, nil)

	rec := do(t, h, "/api/v1/search?postal_code=69001&labels=a,B&surface_min=abc&start_date=2024-13-45")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	want := "((code_postal_ban:69001 OR code_postal_brut:69001)) AND etiquette_dpe:(A OR B)"
	if diff := cmp.Diff([]string{want}, remote.queries); diff != "" {
		t.Errorf("queries mismatch (-want +got):\n%s", diff)
	}

	resp := decode[SearchResponse](t, rec)
	if resp.Count != 2 || resp.Records[0].ID() != "1" || resp.Records[1].ID() != "3" {
		t.Errorf("unexpected records: %+v", resp.Records)
	}
	if resp.Loading {
		t.Error("loading must be false in a completed response")
	}
	if resp.Query != want || resp.URL == "" {
		t.Errorf("query=%q url=%q", resp.Query, resp.URL)
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		remote error
		quota  error
		status int
		code   ErrorResponseCode
	}{
		{"upstream status", domain.NewUpstreamError(500, errors.New("boom")), nil, http.StatusBadGateway, ErrorResponseCodeUpstreamError},
		{"upstream timeout", domain.NewUpstreamError(0, context.DeadlineExceeded), nil, http.StatusGatewayTimeout, ErrorResponseCodeUpstreamTimeout},
		{"quota", nil, domain.ErrQuotaExceeded, http.StatusTooManyRequests, ErrorResponseCodeQuotaExceeded},
		{"unknown", errors.New("weird"), nil, http.StatusInternalServerError, ErrorResponseCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&fakeRemote{err: tt.remote}, fakeQuota{err: tt.quota}, nil)

			rec := do(t, h, "/api/v1/search")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			resp := decode[ErrorResponse](t, rec)
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if resp.Message == "" {
				t.Error("message must not be empty")
			}
		})
	}
}

func TestMarkers(t *testing.T) {
	h := newTestRouter(&fakeRemote{records: sampleRecords()}, nil, nil)

	rec := do(t, h, "/api/v1/markers")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[MarkersResponse](t, rec)
	if resp.Count != 3 || resp.Plotted != 2 {
		t.Errorf("count=%d plotted=%d", resp.Count, resp.Plotted)
	}
	if resp.View.Kind != geo.ViewBounds || resp.View.Bounds == nil {
		t.Fatalf("view = %+v", resp.View)
	}
	for _, m := range resp.Markers {
		if !resp.View.Bounds.Contains(m.Point) {
			t.Errorf("marker %s outside bounds", m.ID)
		}
	}
	if resp.View.Padding != 40 {
		t.Errorf("padding = %d", resp.View.Padding)
	}
}

func TestMarkers_NoPoints(t *testing.T) {
	h := newTestRouter(&fakeRemote{}, nil, nil)

	resp := decode[MarkersResponse](t, do(t, h, "/api/v1/markers"))
	if resp.View.Kind != geo.ViewDefault || resp.View.Zoom != 6 {
		t.Errorf("view = %+v", resp.View)
	}
	if resp.Markers == nil {
		t.Error("markers must encode as an empty array")
	}
}

func TestBuildQuery_DoesNotCallAPI(t *testing.T) {
	remote := &fakeRemote{}
	h := newTestRouter(remote, nil, nil)

	rec := do(t, h, "/api/v1/query?commune=Su%20ry&building_type=Maison")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[QueryResponse](t, rec)
	if resp.Query != "type_batiment:maison AND nom_commune_ban:Su?ry*" {
		t.Errorf("query = %q", resp.Query)
	}
	if len(remote.queries) != 0 {
		t.Errorf("API must not be called, got %v", remote.queries)
	}
}

func TestGetRecord(t *testing.T) {
	h := newTestRouter(&fakeRemote{records: sampleRecords()}, nil, nil)

	rec := do(t, h, "/api/v1/records/2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decode[dpe.Record](t, rec); got.ID() != "2" {
		t.Errorf("id = %q", got.ID())
	}

	if rec := do(t, h, "/api/v1/records/999"); rec.Code != http.StatusNotFound {
		t.Errorf("missing record status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, "/api/v1/records/a%20b"); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	rec := do(t, newTestRouter(&fakeRemote{}, nil, nil), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decode[HealthResponse](t, rec); resp.Status != "ok" || resp.Checks["upstream"] != "ok" {
		t.Errorf("resp = %+v", resp)
	}

	rec = do(t, newTestRouter(&fakeRemote{}, nil, errors.New("down")), "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestRouter(&fakeRemote{}, nil, nil), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
