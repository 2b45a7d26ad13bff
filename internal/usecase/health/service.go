package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results. Snapshot fields are filled when a
// snapshot is published.
type Report struct {
	Status          Status
	Checks          map[string]CheckResult
	SnapshotVersion uint64
	SnapshotAge     time.Duration
	SnapshotRecords int
}

// Service coordinates health checks.
type Service struct {
	db    DBPinger
	snaps SnapshotSource
	nowFn func() time.Time
}

// New creates a Service.
func New(db DBPinger, snaps SnapshotSource) *Service {
	return &Service{db: db, snaps: snaps, nowFn: time.Now}
}

// Check runs health checks. A missing snapshot degrades readiness but queries
// against an unpublished store already fail cleanly, so the store ping is the
// liveness signal.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	r := Report{Checks: checks}
	sn, err := s.snaps.Current()
	if err != nil {
		checks["snapshot"] = CheckError
	} else {
		checks["snapshot"] = CheckOK
		r.SnapshotVersion = sn.Version()
		r.SnapshotAge = s.nowFn().Sub(sn.BuiltAt())
		r.SnapshotRecords = sn.Len()
	}

	r.Status = Healthy
	for _, v := range checks {
		if v == CheckError {
			r.Status = Degraded
			break
		}
	}
	return r
}
