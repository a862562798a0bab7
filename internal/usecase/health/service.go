package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the catalog is served but a backing store is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates no catalog can be served.
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

// Service coordinates health checks.
type Service struct {
	catalog CatalogChecker
	db      DBPinger
}

// New creates a Service. db is nil when the catalog is read from a file.
func New(catalog CatalogChecker, db DBPinger) *Service {
	return &Service{catalog: catalog, db: db}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)
	status := Healthy

	if err := s.catalog.Ready(ctx); err != nil {
		checks["catalog"] = CheckError
		status = Unhealthy
	} else {
		checks["catalog"] = CheckOK
	}

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			checks["database"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["database"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
