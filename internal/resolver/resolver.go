// Package resolver computes a fluid-property profile at a target pressure from
// the samples active in a snapshot.
//
// Resolution walks a fixed list of rules and applies the first that matches:
//
//	exact_match        a sample within PressureTolerance of the target
//	interpolate        samples strictly below and strictly above the target
//	extrapolate_below  target under the lowest pressure, two distinct pressures known
//	extrapolate_above  target over the highest pressure, two distinct pressures known
//	clamp_single       a single distinct pressure: its properties at the target pressure
//	no_data            nothing active: every property absent
//
// Candidates are always scanned in (pressure ASC, test date DESC) order, so
// among samples at the same pressure the most recent test wins.
package resolver

import (
	"errors"
	"sort"

	"github.com/rotisserie/eris"

	"pvt-resolver/internal/domain"
	"pvt-resolver/internal/linear"
)

// PressureTolerance is the largest pressure difference treated as an exact match.
const PressureTolerance = 1e-5

// ErrInvalidPressure is returned for a NaN or infinite target pressure.
var ErrInvalidPressure = errors.New("target pressure must be a finite number")

type lineFunc func(x, x1, x2 float64, y1, y2 *float64) (*float64, error)

// plan describes how a matched rule produces its result.
// Either verbatim is set, or a and b are the two reference samples for line.
type plan struct {
	pressure float64
	verbatim *domain.ActiveSample
	a, b     *domain.ActiveSample
	line     lineFunc
}

type rule struct {
	c     domain.Case
	match func(v *view) (plan, bool)
}

// rules is the dispatch order. The first match wins.
var rules = []rule{
	{domain.CaseExactMatch, matchExact},
	{domain.CaseInterpolate, matchInterpolate},
	{domain.CaseExtrapolateBelow, matchExtrapolateBelow},
	{domain.CaseExtrapolateAbove, matchExtrapolateAbove},
	{domain.CaseClampSingle, matchClamp},
	{domain.CaseNoData, matchNoData},
}

// Resolve computes the profile at target from the active samples.
// The result carries the case that fired; CompletionID and SnapshotDate are left
// for the caller to fill in. Every numeric output is rounded to Decimals places.
func Resolve(active []domain.ActiveSample, target float64) (domain.Result, error) {
	if !domain.IsFinite(target) {
		return domain.Result{}, ErrInvalidPressure
	}

	v := newView(active, target)
	for _, r := range rules {
		p, ok := r.match(v)
		if !ok {
			continue
		}
		props, err := p.properties()
		if err != nil {
			return domain.Result{}, eris.Wrapf(err, "resolver: %s", r.c)
		}
		return domain.Result{
			Case:       r.c,
			Pressure:   Round(domain.Float(p.pressure)),
			Properties: RoundAll(props),
		}, nil
	}

	// matchNoData always matches.
	return domain.Result{}, eris.New("resolver: no rule matched")
}

func (p plan) properties() (domain.Properties, error) {
	switch {
	case p.verbatim != nil:
		return p.verbatim.Properties.Copy(), nil
	case p.a != nil && p.b != nil:
		var out domain.Properties
		for _, prop := range domain.AllProperties() {
			y, err := p.line(p.pressure, p.a.Pressure, p.b.Pressure, p.a.Value(prop), p.b.Value(prop))
			if err != nil {
				return domain.Properties{}, eris.Wrapf(err, "%s", prop)
			}
			out.Set(prop, y)
		}
		return out, nil
	default:
		return domain.Properties{}, nil
	}
}

// view is the active sample set ordered for scanning.
type view struct {
	target  float64
	samples []domain.ActiveSample // pressure ASC, test date DESC
}

func newView(active []domain.ActiveSample, target float64) *view {
	samples := make([]domain.ActiveSample, 0, len(active))
	for _, a := range active {
		if domain.IsFinite(a.Pressure) {
			samples = append(samples, a)
		}
	}
	sort.SliceStable(samples, func(i, j int) bool {
		if samples[i].Pressure != samples[j].Pressure {
			return samples[i].Pressure < samples[j].Pressure
		}
		return samples[i].TestDate.After(samples[j].TestDate)
	})
	return &view{target: target, samples: samples}
}

func matchExact(v *view) (plan, bool) {
	var best *domain.ActiveSample
	for i := range v.samples {
		s := &v.samples[i]
		d := s.Pressure - v.target
		if d >= PressureTolerance || d <= -PressureTolerance {
			continue
		}
		if best == nil || s.TestDate.After(best.TestDate) {
			best = s
		}
	}
	if best == nil {
		return plan{}, false
	}
	return plan{pressure: best.Pressure, verbatim: best}, true
}

func matchInterpolate(v *view) (plan, bool) {
	lower, upper := v.bracket()
	if lower == nil || upper == nil {
		return plan{}, false
	}
	return plan{pressure: v.target, a: lower, b: upper, line: linear.Interpolate}, true
}

// bracket returns the tightest samples strictly below and strictly above the target.
func (v *view) bracket() (lower, upper *domain.ActiveSample) {
	var lowerGap, upperGap float64
	for i := range v.samples {
		s := &v.samples[i]
		switch {
		case s.Pressure < v.target:
			if gap := v.target - s.Pressure; lower == nil || gap < lowerGap {
				lower, lowerGap = s, gap
			}
		case s.Pressure > v.target:
			if gap := s.Pressure - v.target; upper == nil || gap < upperGap {
				upper, upperGap = s, gap
			}
		}
	}
	return lower, upper
}

func matchExtrapolateBelow(v *view) (plan, bool) {
	if len(v.samples) == 0 || v.target >= v.samples[0].Pressure {
		return plan{}, false
	}
	lowest := &v.samples[0]
	for i := 1; i < len(v.samples); i++ {
		if v.samples[i].Pressure > lowest.Pressure {
			return plan{pressure: v.target, a: lowest, b: &v.samples[i], line: linear.Extrapolate}, true
		}
	}
	return plan{}, false
}

func matchExtrapolateAbove(v *view) (plan, bool) {
	n := len(v.samples)
	if n == 0 || v.target <= v.samples[n-1].Pressure {
		return plan{}, false
	}
	highest := v.groupStart(n - 1)
	if highest == 0 {
		return plan{}, false
	}
	second := v.groupStart(highest - 1)
	return plan{pressure: v.target, a: &v.samples[highest], b: &v.samples[second], line: linear.Extrapolate}, true
}

// groupStart returns the index of the first sample sharing samples[i]'s pressure,
// which is the most recent test at that pressure.
func (v *view) groupStart(i int) int {
	for i > 0 && v.samples[i-1].Pressure == v.samples[i].Pressure {
		i--
	}
	return i
}

func matchClamp(v *view) (plan, bool) {
	if len(v.samples) == 0 {
		return plan{}, false
	}
	return plan{pressure: v.target, verbatim: &v.samples[0]}, true
}

func matchNoData(v *view) (plan, bool) {
	return plan{pressure: v.target}, true
}
