package refresh

import (
	"math"
	"time"

	"github.com/okulbul/okulbul/internal/domain/catalog"
)

// Weights tunes the score formulas. The formulas themselves only promise to
// be monotonic in their inputs and bounded to [0,1]; the weights are policy
// and come from configuration.
type Weights struct {
	// Saturation points: the counter value at which that signal reaches 0.5.
	ViewSaturation   float64
	LikeSaturation   float64
	RatingSaturation float64

	// ListingAgeSaturationDays is the listing age at which the age signal of
	// trust reaches 0.5.
	ListingAgeSaturationDays float64
	// ActivityHalfLifeDays controls how fast the recency weight of activity decays.
	ActivityHalfLifeDays float64

	// Quality blend; normalized internally, so only ratios matter.
	QualityPopularity   float64
	QualityCompleteness float64
	QualityRating       float64
}

// DefaultWeights returns the production defaults.
func DefaultWeights() Weights {
	return Weights{
		ViewSaturation:           1000,
		LikeSaturation:           200,
		RatingSaturation:         50,
		ListingAgeSaturationDays: 365,
		ActivityHalfLifeDays:     90,
		QualityPopularity:        0.4,
		QualityCompleteness:      0.3,
		QualityRating:            0.3,
	}
}

func (w Weights) withDefaults() Weights {
	d := DefaultWeights()
	if w.ViewSaturation <= 0 {
		w.ViewSaturation = d.ViewSaturation
	}
	if w.LikeSaturation <= 0 {
		w.LikeSaturation = d.LikeSaturation
	}
	if w.RatingSaturation <= 0 {
		w.RatingSaturation = d.RatingSaturation
	}
	if w.ListingAgeSaturationDays <= 0 {
		w.ListingAgeSaturationDays = d.ListingAgeSaturationDays
	}
	if w.ActivityHalfLifeDays <= 0 {
		w.ActivityHalfLifeDays = d.ActivityHalfLifeDays
	}
	if w.QualityPopularity+w.QualityCompleteness+w.QualityRating <= 0 {
		w.QualityPopularity = d.QualityPopularity
		w.QualityCompleteness = d.QualityCompleteness
		w.QualityRating = d.QualityRating
	}
	return w
}

// ScorePolicy computes the ranking scores of a record. Pluggable so weights
// can be tuned without touching filter or ranking logic.
type ScorePolicy interface {
	Score(rec *catalog.SearchRecord, now time.Time) catalog.Scores
}

// WeightedPolicy is the default saturating-counter policy.
type WeightedPolicy struct {
	w Weights
}

// NewWeightedPolicy creates the default policy; zero weight fields fall back
// to DefaultWeights.
func NewWeightedPolicy(w Weights) *WeightedPolicy {
	return &WeightedPolicy{w: w.withDefaults()}
}

// Score computes all four scores. Each is monotonic in its inputs and clamped
// to [0,1].
func (p *WeightedPolicy) Score(rec *catalog.SearchRecord, now time.Time) catalog.Scores {
	e := rec.Engagement

	popularity := clamp01(
		0.5*saturate(float64(e.ViewCount), p.w.ViewSaturation) +
			0.3*saturate(float64(e.LikeCount), p.w.LikeSaturation) +
			0.2*saturate(float64(e.RatingCount), p.w.RatingSaturation))

	trust := clamp01(
		0.4*boolSignal(rec.Subscribed) +
			0.3*boolSignal(rec.Verified) +
			0.3*saturate(daysSince(rec.CreatedAt, now), p.w.ListingAgeSaturationDays))

	completeness := saturate(float64(len(rec.Properties)), 10)
	rating := 0.0
	if e.RatingCount > 0 {
		rating = clamp01(e.RatingAvg / 5)
	}
	blend := p.w.QualityPopularity + p.w.QualityCompleteness + p.w.QualityRating
	quality := clamp01((p.w.QualityPopularity*popularity +
		p.w.QualityCompleteness*completeness +
		p.w.QualityRating*rating) / blend)

	recency := math.Exp2(-daysSince(rec.UpdatedAt, now) / p.w.ActivityHalfLifeDays)
	activity := clamp01(0.5*recency + 0.5*popularity)

	return catalog.Scores{
		Popularity: popularity,
		Trust:      trust,
		Quality:    quality,
		Activity:   activity,
	}
}

// saturate maps [0,inf) to [0,1), reaching 0.5 at x == half.
func saturate(x, half float64) float64 {
	if x <= 0 {
		return 0
	}
	return x / (x + half)
}

func boolSignal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func daysSince(t time.Time, now time.Time) float64 {
	if t.IsZero() || t.After(now) {
		return 0
	}
	return now.Sub(t).Hours() / 24
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
