package health

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is down; searches still work.
	Degraded Status = "degraded"
	// Unhealthy indicates the dataset API is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names used as Report.Checks keys.
const (
	ComponentUpstream = "upstream"
	ComponentDatabase = "database"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	upstream Pinger
	db       Pinger
}

// New creates a Service. db is nil when counters are kept in memory.
func New(upstream, db Pinger) *Service {
	return &Service{upstream: upstream, db: db}
}

// Check pings all components concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, 2)
	)
	g, gctx := errgroup.WithContext(ctx)
	probe := func(name string, p Pinger) {
		g.Go(func() error {
			res := CheckOK
			if err := p.Ping(gctx); err != nil {
				res = CheckError
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
			return nil
		})
	}

	probe(ComponentUpstream, s.upstream)
	if s.db != nil {
		probe(ComponentDatabase, s.db)
	}
	_ = g.Wait()

	status := Healthy
	switch {
	case checks[ComponentUpstream] == CheckError:
		status = Unhealthy
	case checks[ComponentDatabase] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
