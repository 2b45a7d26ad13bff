// Package refresh rebuilds the search projection: it joins the normalized
// source entities into one immutable SearchRecord per active school and
// publishes the result as a whole snapshot. A failed cycle keeps the previous
// snapshot in place; a single bad school never aborts a cycle.
package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/okulbul/okulbul/internal/db"
	"github.com/okulbul/okulbul/internal/domain"
	"github.com/okulbul/okulbul/internal/domain/catalog"
	"github.com/okulbul/okulbul/internal/domain/geo"
	"github.com/okulbul/okulbul/internal/metrics"
	"github.com/okulbul/okulbul/internal/repository/source"
	"github.com/okulbul/okulbul/internal/snapshot"
)

// Stats summarizes one completed refresh cycle.
type Stats struct {
	Records     int
	Skipped     int
	Warnings    int
	Version     uint64
	Fingerprint string
	Duration    time.Duration
}

// Service is the projection builder.
type Service struct {
	src    SourceReader
	store  Publisher
	policy ScorePolicy
	logger *zap.Logger

	meta    db.KVStore
	metaKey string

	nowFn   func() time.Time
	running atomic.Bool
}

// cycleRecord is the bookkeeping row persisted after each published cycle.
type cycleRecord struct {
	Fingerprint string    `json:"fingerprint"`
	Version     uint64    `json:"version"`
	Records     int       `json:"records"`
	CompletedAt time.Time `json:"completedAt"`
}

// New creates a refresh service.
func New(src SourceReader, store Publisher, policy ScorePolicy, logger *zap.Logger) *Service {
	return &Service{
		src:    src,
		store:  store,
		policy: policy,
		logger: logger,
		nowFn:  time.Now,
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.nowFn = now
	return s
}

// WithBookkeeping persists a record of each published cycle under key, so
// restarted replicas can tell whether source content changed across cycles.
func (s *Service) WithBookkeeping(kv db.KVStore, key string) *Service {
	s.meta = kv
	s.metaKey = key
	return s
}

// Refresh runs one full projection cycle: load, join, score, publish.
// Only one cycle runs at a time; a concurrent call fails with
// domain.ErrRefreshInProgress. A cycle that would publish zero records fails
// with domain.ErrRefreshFailed and leaves the previous snapshot in place.
func (s *Service) Refresh(ctx context.Context) (Stats, error) {
	if !s.running.CompareAndSwap(false, true) {
		return Stats{}, domain.ErrRefreshInProgress
	}
	defer s.running.Store(false)

	start := s.nowFn()

	ds, err := s.src.LoadAll(ctx)
	if err != nil {
		metrics.RefreshFailuresTotal.Inc()
		return Stats{}, fmt.Errorf("%w: %w", domain.ErrRefreshFailed, err)
	}
	for _, w := range ds.Warnings {
		s.logger.Warn("source row unreadable", zap.String("key", w.Key), zap.Error(w.Err))
	}

	records, skipped := s.buildRecords(ds)
	if len(records) == 0 {
		metrics.RefreshFailuresTotal.Inc()
		return Stats{}, fmt.Errorf("%w: join produced zero records", domain.ErrRefreshFailed)
	}

	sn, err := snapshot.New(records, start)
	if err != nil {
		metrics.RefreshFailuresTotal.Inc()
		return Stats{}, fmt.Errorf("%w: %w", domain.ErrRefreshFailed, err)
	}

	if s.meta != nil {
		if prev, ok := s.readBookkeeping(ctx); ok && prev.Fingerprint == sn.Fingerprint() {
			s.logger.Info("source content unchanged since previous cycle",
				zap.String("fingerprint", prev.Fingerprint),
				zap.Time("previous_completed_at", prev.CompletedAt),
			)
		}
	}

	version := s.store.Publish(sn)

	stats := Stats{
		Records:     sn.Len(),
		Skipped:     skipped,
		Warnings:    len(ds.Warnings),
		Version:     version,
		Fingerprint: sn.Fingerprint(),
		Duration:    s.nowFn().Sub(start),
	}

	metrics.RefreshDuration.Observe(stats.Duration.Seconds())
	metrics.RefreshRecords.Set(float64(stats.Records))
	metrics.SnapshotPublishedTimestamp.Set(float64(sn.BuiltAt().Unix()))

	if s.meta != nil {
		s.writeBookkeeping(ctx, cycleRecord{
			Fingerprint: stats.Fingerprint,
			Version:     stats.Version,
			Records:     stats.Records,
			CompletedAt: s.nowFn(),
		})
	}

	s.logger.Info("projection published",
		zap.Uint64("version", stats.Version),
		zap.Int("records", stats.Records),
		zap.Int("skipped", stats.Skipped),
		zap.String("fingerprint", stats.Fingerprint),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}

func (s *Service) readBookkeeping(ctx context.Context) (cycleRecord, bool) {
	raw, err := s.meta.Get(ctx, s.metaKey)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			s.logger.Warn("refresh bookkeeping read failed", zap.Error(err))
		}
		return cycleRecord{}, false
	}
	var rec cycleRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Warn("refresh bookkeeping unreadable", zap.Error(err))
		return cycleRecord{}, false
	}
	return rec, true
}

func (s *Service) writeBookkeeping(ctx context.Context, rec cycleRecord) {
	raw, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn("refresh bookkeeping encode failed", zap.Error(err))
		return
	}
	if err := s.meta.Set(ctx, s.metaKey, raw); err != nil {
		s.logger.Warn("refresh bookkeeping write failed", zap.Error(err))
	}
}

// buildRecords joins the dataset into SearchRecords. Schools that cannot
// resolve a mandatory relationship are skipped with a data-quality warning.
func (s *Service) buildRecords(ds *source.Dataset) ([]catalog.SearchRecord, int) {
	ids := make([]int64, 0, len(ds.Schools))
	for id := range ds.Schools {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	now := s.nowFn()
	records := make([]catalog.SearchRecord, 0, len(ids))
	skipped := 0

	for _, id := range ids {
		school := ds.Schools[id]
		if !school.Active {
			continue
		}
		rec, err := s.buildRecord(ds, school, now)
		if err != nil {
			skipped++
			metrics.RefreshSkipsTotal.Inc()
			s.logger.Warn("school skipped",
				zap.Int64("school_id", school.ID),
				zap.Error(err),
			)
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

func (s *Service) buildRecord(
	ds *source.Dataset, school source.School, now time.Time,
) (catalog.SearchRecord, error) {
	campus, ok := ds.Campuses[school.CampusID]
	if !ok {
		return catalog.SearchRecord{}, fmt.Errorf("school %d: campus %d not found", school.ID, school.CampusID)
	}
	itype, ok := ds.Types[school.TypeID]
	if !ok {
		return catalog.SearchRecord{}, fmt.Errorf("school %d: institution type %d not found", school.ID, school.TypeID)
	}
	loc, err := resolveLocation(ds, campus)
	if err != nil {
		return catalog.SearchRecord{}, fmt.Errorf("school %d: %w", school.ID, err)
	}

	rec := catalog.SearchRecord{
		SchoolID:            school.ID,
		SchoolName:          school.Name,
		SchoolSlug:          school.Slug,
		InstitutionTypeID:   itype.ID,
		InstitutionTypeName: itype.Name,
		TypeGroupID:         itype.GroupID,
		TypeGroupName:       itype.GroupName,
		CampusID:            campus.ID,
		CampusName:          campus.Name,
		Subscribed:          campus.Subscribed,
		Verified:            campus.Verified,
		Location:            loc,
		Curriculum:          school.Curriculum,
		Language:            school.Language,
		Capacity: catalog.Capacity{
			MinAge:     school.MinAge,
			MaxAge:     school.MaxAge,
			Capacity:   school.Capacity,
			Enrollment: school.Enrollment,
			ClassSize:  school.ClassSize,
		},
		Engagement: catalog.Engagement{
			ViewCount:   school.ViewCount,
			LikeCount:   school.LikeCount,
			RatingCount: school.RatingCount,
			RatingAvg:   school.RatingAvg,
		},
		CreatedAt: school.CreatedAt,
		UpdatedAt: school.UpdatedAt,
	}

	if brand, ok := ds.Brands[campus.BrandID]; ok {
		rec.BrandID = brand.ID
		rec.BrandName = brand.Name
	}

	if campus.Lat != nil && campus.Lon != nil {
		pt := geo.Point{Lat: *campus.Lat, Lon: *campus.Lon}
		if pt.Valid() {
			rec.Coordinates = &pt
		} else {
			s.logger.Warn("campus coordinates out of range",
				zap.Int64("campus_id", campus.ID),
				zap.Float64("lat", pt.Lat),
				zap.Float64("lon", pt.Lon),
			)
		}
	}

	if pricing, ok := ds.Pricing[school.ID]; ok {
		rec.Pricing = catalog.Pricing{
			MonthlyFee:      pricing.MonthlyFee,
			AnnualFee:       pricing.AnnualFee,
			RegistrationFee: pricing.RegistrationFee,
			Currency:        pricing.Currency,
		}
	}

	rec.Properties = s.flattenProperties(ds, school.ID, campus.ID)
	rec.ComputeDerived()
	rec.Scores = s.policy.Score(&rec, now)

	return rec, nil
}

// resolveLocation walks the campus place chain. Country and province are
// mandatory; district and neighborhood fill in when present.
func resolveLocation(ds *source.Dataset, campus source.Campus) (catalog.Location, error) {
	country, ok := ds.Countries[campus.CountryID]
	if !ok {
		return catalog.Location{}, fmt.Errorf("campus %d: country %d not found", campus.ID, campus.CountryID)
	}
	province, ok := ds.Provinces[campus.ProvinceID]
	if !ok {
		return catalog.Location{}, fmt.Errorf("campus %d: province %d not found", campus.ID, campus.ProvinceID)
	}

	loc := catalog.Location{
		CountryID:    country.ID,
		CountryName:  country.Name,
		CountrySlug:  country.Slug,
		ProvinceID:   province.ID,
		ProvinceName: province.Name,
		ProvinceSlug: province.Slug,
	}
	if district, ok := ds.Districts[campus.DistrictID]; ok {
		loc.DistrictID = district.ID
		loc.DistrictName = district.Name
		loc.DistrictSlug = district.Slug
	}
	if hood, ok := ds.Neighborhood[campus.NeighborhoodID]; ok {
		loc.NeighborhoodID = hood.ID
		loc.NeighborhoodName = hood.Name
		loc.NeighborhoodSlug = hood.Slug
	}
	return loc, nil
}

// flattenProperties merges campus-shared and school-own property values
// (school wins on conflict), resolves them against the definitions, and
// returns the list ordered by property id. Unknown definitions and
// unparsable values are dropped with a warning.
func (s *Service) flattenProperties(
	ds *source.Dataset, schoolID, campusID int64,
) []catalog.Property {
	merged := make(map[int64]string)
	for propID, raw := range ds.CampusPropVals[campusID] {
		merged[propID] = raw
	}
	for propID, raw := range ds.SchoolPropVals[schoolID] {
		merged[propID] = raw
	}
	if len(merged) == 0 {
		return nil
	}

	propIDs := make([]int64, 0, len(merged))
	for id := range merged {
		propIDs = append(propIDs, id)
	}
	sort.Slice(propIDs, func(i, j int) bool { return propIDs[i] < propIDs[j] })

	props := make([]catalog.Property, 0, len(propIDs))
	for _, propID := range propIDs {
		def, ok := ds.PropertyDefs[propID]
		if !ok {
			s.logger.Warn("property definition missing",
				zap.Int64("school_id", schoolID),
				zap.Int64("property_id", propID),
			)
			continue
		}
		val, err := catalog.ParseValue(def.DataType, merged[propID])
		if err != nil {
			s.logger.Warn("property value unparsable",
				zap.Int64("school_id", schoolID),
				zap.Int64("property_id", propID),
				zap.Error(err),
			)
			continue
		}
		props = append(props, catalog.Property{
			ID:          def.ID,
			DisplayName: def.DisplayName,
			Category:    def.Category,
			Value:       val,
		})
	}
	if len(props) == 0 {
		return nil
	}
	return props
}
