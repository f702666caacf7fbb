package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	down := errors.New("down")
	tests := []struct {
		name     string
		upstream error
		db       Pinger
		want     Status
		wantDB   CheckResult
	}{
		{"all healthy", nil, &mockPinger{}, Healthy, CheckOK},
		{"database down", nil, &mockPinger{err: down}, Degraded, CheckError},
		{"upstream down", down, &mockPinger{}, Unhealthy, CheckOK},
		{"both down", down, &mockPinger{err: down}, Unhealthy, CheckError},
		{"no database", nil, nil, Healthy, ""},
		{"no database upstream down", down, nil, Unhealthy, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&mockPinger{err: tt.upstream}, tt.db).Check(context.Background())

			if r.Status != tt.want {
				t.Errorf("status = %q, want %q", r.Status, tt.want)
			}
			wantUp := CheckOK
			if tt.upstream != nil {
				wantUp = CheckError
			}
			if r.Checks[ComponentUpstream] != wantUp {
				t.Errorf("upstream = %q, want %q", r.Checks[ComponentUpstream], wantUp)
			}
			got, ok := r.Checks[ComponentDatabase]
			if tt.db == nil {
				if ok {
					t.Error("database check should be absent without a store")
				}
				return
			}
			if got != tt.wantDB {
				t.Errorf("database = %q, want %q", got, tt.wantDB)
			}
		})
	}
}
