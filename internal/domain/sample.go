package domain

import "time"

// Sample is one PVT calibration measurement for a completion.
// Corresponds to completion_pvt_samples table.
// Samples are immutable once stored; key is (completion_id, test_date, pressure).
type Sample struct {
	CompletionID string     // opaque completion identifier
	TestDate     time.Time  // measurement date (UTC, midnight)
	Pressure     float64    // measurement pressure
	Properties   Properties // nine fluid properties, each nullable
}

// Value returns the sample's value for p, nil if absent.
func (s *Sample) Value(p Property) *float64 {
	return s.Properties.Get(p)
}

// Key returns the natural key used for duplicate detection.
func (s *Sample) Key() SampleKey {
	return SampleKey{
		CompletionID: s.CompletionID,
		TestDate:     TruncateDay(s.TestDate),
		Pressure:     s.Pressure,
	}
}

// SampleKey is the natural key of a Sample.
type SampleKey struct {
	CompletionID string
	TestDate     time.Time
	Pressure     float64
}

// ActiveSample is a sample together with its validity window [TestDate, EndDate).
// EndDate is the next strictly later test date of the same completion,
// or EndOfTime when no later sample exists.
type ActiveSample struct {
	Sample
	EndDate time.Time
}

// Covers reports whether d falls inside the validity window.
func (a *ActiveSample) Covers(d time.Time) bool {
	d = TruncateDay(d)
	return !a.TestDate.After(d) && d.Before(a.EndDate)
}
