// Package services – EstimateService
//
// This file implements the wait-time estimator: a display heuristic that
// multiplies the recent average service duration of an office by the current
// queue depth. The output is advisory only; it gates no transition and makes
// no scheduling commitment.
package services

import (
	"context"
	"math"

	"gorm.io/gorm"

	"github.com/janseva/go-queue-backend/internal/repo"
)

// Estimator defaults, overridable per instance.
const (
	DefaultSampleSize     = 10
	DefaultServiceMinutes = 15.0
	DefaultOutlierMinutes = 120.0
	highConfidenceSamples = 5
)

// Estimate is the advisory wait projection for an office queue.
type Estimate struct {
	EstimatedMinutes  int     `json:"estimated_minutes"`
	AvgServiceMinutes float64 `json:"avg_service_minutes"`
	QueueLength       int     `json:"queue_length"`
	SampleCount       int     `json:"sample_count"`
	// Confidence is "high" with more than five usable samples, otherwise
	// "medium".
	Confidence string `json:"confidence"`
}

// EstimateService computes per-office wait estimates from recent completed
// service durations. Sampling is per office only: the source schema has no
// reliable service foreign key on tokens, so per-service estimation is not
// attempted.
type EstimateService struct {
	DB *gorm.DB

	// SampleSize is how many recent completed tokens to sample (default 10).
	SampleSize int
	// DefaultMinutes is the assumed service duration with no usable samples.
	DefaultMinutes float64
	// OutlierMinutes discards durations above this bound as data-entry noise.
	OutlierMinutes float64
}

// NewEstimateService constructs an estimator with the default tuning.
func NewEstimateService(db *gorm.DB) *EstimateService {
	return &EstimateService{
		DB:             db,
		SampleSize:     DefaultSampleSize,
		DefaultMinutes: DefaultServiceMinutes,
		OutlierMinutes: DefaultOutlierMinutes,
	}
}

// ForOffice computes the estimate for one office queue, optionally narrowed
// to a department for the queue-depth count (duration samples are always
// office-wide).
func (s *EstimateService) ForOffice(ctx context.Context, officeID, departmentID string) (*Estimate, error) {
	avg, samples, err := s.averageServiceMinutes(ctx, officeID)
	if err != nil {
		return nil, err
	}
	depth, err := repo.CountActive(ctx, s.DB, officeID, departmentID)
	if err != nil {
		return nil, err
	}

	confidence := "medium"
	if samples > highConfidenceSamples {
		confidence = "high"
	}
	return &Estimate{
		EstimatedMinutes:  int(math.Round(avg * float64(depth+1))),
		AvgServiceMinutes: avg,
		QueueLength:       int(depth),
		SampleCount:       samples,
		Confidence:        confidence,
	}, nil
}

// averageServiceMinutes samples the most recent completed tokens of an
// office and averages their created-to-served durations, discarding
// non-positive and outlier values. With no usable sample it falls back to
// the configured default.
func (s *EstimateService) averageServiceMinutes(ctx context.Context, officeID string) (avg float64, samples int, err error) {
	size := s.SampleSize
	if size <= 0 {
		size = DefaultSampleSize
	}
	recent, err := repo.RecentCompleted(ctx, s.DB, officeID, size)
	if err != nil {
		return 0, 0, err
	}

	var sum float64
	for _, t := range recent {
		if t.ServedAt == nil {
			continue
		}
		minutes := t.ServedAt.Sub(t.CreatedAt).Minutes()
		if minutes <= 0 || minutes > s.outlierBound() {
			continue
		}
		sum += minutes
		samples++
	}
	if samples == 0 {
		return s.defaultMinutes(), 0, nil
	}
	return sum / float64(samples), samples, nil
}

func (s *EstimateService) outlierBound() float64 {
	if s.OutlierMinutes <= 0 {
		return DefaultOutlierMinutes
	}
	return s.OutlierMinutes
}

func (s *EstimateService) defaultMinutes() float64 {
	if s.DefaultMinutes <= 0 {
		return DefaultServiceMinutes
	}
	return s.DefaultMinutes
}
