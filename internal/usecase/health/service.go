package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the engine cannot serve queries.
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

// Check names.
const (
	CheckCorpus       = "corpus"
	CheckContentStore = "content_store"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	engine Readiness
	store  StorePinger
}

// New creates a Service. store can be nil.
func New(engine Readiness, store StorePinger) *Service {
	return &Service{engine: engine, store: store}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.engine.Ready() {
		checks[CheckCorpus] = CheckOK
	} else {
		checks[CheckCorpus] = CheckError
	}

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			checks[CheckContentStore] = CheckError
		} else {
			checks[CheckContentStore] = CheckOK
		}
	}

	status := Healthy
	switch {
	case checks[CheckCorpus] == CheckError:
		status = Unhealthy
	case checks[CheckContentStore] == CheckError:
		// last good corpus keeps serving
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
