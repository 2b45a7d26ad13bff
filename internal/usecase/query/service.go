// Package query executes validated search requests against the published
// snapshot: predicate filtering, deterministic ranking, and pagination.
package query

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/okulbul/okulbul/internal/domain/search/request"
	"github.com/okulbul/okulbul/internal/domain/search/result"
	"github.com/okulbul/okulbul/internal/metrics"
)

// cancelCheckInterval is how many records are scanned between context checks.
const cancelCheckInterval = 1024

// Service runs searches. Stateless between requests: every call computes its
// filtered, ordered view from scratch against one snapshot.
type Service struct {
	snaps  SnapshotSource
	logger *zap.Logger
}

// New creates a query service.
func New(snaps SnapshotSource, logger *zap.Logger) *Service {
	return &Service{snaps: snaps, logger: logger}
}

// Search filters, orders, and paginates against the current snapshot. An
// over-constrained query returns an empty page with total 0, not an error.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	start := time.Now()

	sn, err := s.snaps.Current()
	if err != nil {
		return result.Page{}, fmt.Errorf("get snapshot: %w", err)
	}

	// Property membership is OR across the supplied set: precompute the
	// positions carrying any of them so the per-record check is a lookup.
	var propPos map[int]struct{}
	switch {
	case len(req.PropertyIDs()) > 0:
		propPos = sn.PositionsWithAnyPropertyID(req.PropertyIDs())
	case len(req.PropertyNames()) > 0:
		propPos = sn.PositionsWithAnyPropertyName(req.PropertyNames())
	}

	cands := make([]candidate, 0, 64)
	for i := 0; i < sn.Len(); i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return result.Page{}, fmt.Errorf("search cancelled: %w", err)
			}
		}
		rec := sn.At(i)
		dist, ok := matches(rec, req, propPos, i)
		if !ok {
			continue
		}
		cands = append(cands, candidate{rec: rec, distanceKm: dist})
	}

	order(cands, req.Sort(), req.Direction())
	page := paginate(cands, req, sn.Version())

	mode := string(req.Mode())
	metrics.SearchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	metrics.SearchResultsTotal.WithLabelValues(mode).Observe(float64(page.Total))

	return page, nil
}

// paginate slices the ordered candidates into the requested page. Total is
// the full filtered count; a page past the end yields empty items.
func paginate(cands []candidate, req *request.Request, version uint64) result.Page {
	total := len(cands)
	startIdx := req.Page() * req.Size()
	if startIdx > total {
		startIdx = total
	}
	end := startIdx + req.Size()
	if end > total {
		end = total
	}

	items := make([]result.Item, 0, end-startIdx)
	for _, c := range cands[startIdx:end] {
		items = append(items, result.Item{Record: *c.rec, DistanceKm: c.distanceKm})
	}

	return result.Page{
		Items:           items,
		Total:           total,
		Page:            req.Page(),
		Size:            req.Size(),
		SnapshotVersion: version,
	}
}
