package domain

import "time"

// Case identifies which resolution rule produced a Result.
type Case string

const (
	CaseExactMatch       Case = "exact_match"
	CaseInterpolate      Case = "interpolate"
	CaseExtrapolateBelow Case = "extrapolate_below"
	CaseExtrapolateAbove Case = "extrapolate_above"
	CaseClampSingle      Case = "clamp_single"
	CaseNoData           Case = "no_data"
)

// String returns the string representation of Case.
func (c Case) String() string {
	return string(c)
}

// IsValid checks if the case is a known value.
func (c Case) IsValid() bool {
	switch c {
	case CaseExactMatch, CaseInterpolate, CaseExtrapolateBelow,
		CaseExtrapolateAbove, CaseClampSingle, CaseNoData:
		return true
	}
	return false
}

// Request asks for the fluid properties of a completion at a pressure as of a date.
type Request struct {
	CompletionID   string
	TargetPressure float64
	AsOf           time.Time
}

// Result is a resolved fluid-property profile.
// Pressure and every property are rounded to 5 decimals or absent.
type Result struct {
	CompletionID string     `json:"completion_id"`
	SnapshotDate time.Time  `json:"snapshot_date"`
	Case         Case       `json:"case"`
	Pressure     *float64   `json:"pressure"`
	Properties   Properties `json:"properties"`
}

// Values returns the ten output values in column order:
// pressure followed by the nine properties.
func (r *Result) Values() [NumProperties + 1]*float64 {
	var out [NumProperties + 1]*float64
	out[0] = r.Pressure
	copy(out[1:], r.Properties[:])
	return out
}

// Columns returns the column names matching Values.
func Columns() []string {
	cols := make([]string, 0, NumProperties+1)
	cols = append(cols, "pressure")
	for _, p := range AllProperties() {
		cols = append(cols, p.String())
	}
	return cols
}
