package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the service works but without its cache.
	Degraded Status = "degraded"
	// Unhealthy indicates matching cannot run at all.
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

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks. The embedding provider is the load
// bearing dependency: without it no matching can happen, so its failure
// marks the service unhealthy. The cache only saves API calls, so a cache
// failure merely degrades.
type Service struct {
	cache     CachePinger
	embedding EmbeddingChecker
}

// New creates a Service. Either dependency can be nil; a nil dependency
// is simply absent from the report.
func New(cache CachePinger, embedding EmbeddingChecker) *Service {
	return &Service{cache: cache, embedding: embedding}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
			status = Degraded
		} else {
			checks["cache"] = CheckOK
		}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
			status = Unhealthy
		} else {
			checks["embedding"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
