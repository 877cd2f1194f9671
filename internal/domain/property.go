package domain

import (
	"encoding/json"
	"math"
)

// Property identifies one of the nine fluid properties carried by a PVT sample.
// The numeric order is the output column order.
type Property int

const (
	OilFVF Property = iota
	GasFVF
	WaterFVF
	SolutionGOR
	ViscosityOil
	ViscosityWater
	ViscosityGas
	InjectedGasFVF
	InjectedWaterFVF
)

// NumProperties is the number of fluid properties on a sample.
const NumProperties = 9

var propertyNames = [NumProperties]string{
	"oil_formation_volume_factor",
	"gas_formation_volume_factor",
	"water_formation_volume_factor",
	"solution_gas_oil_ratio",
	"viscosity_oil",
	"viscosity_water",
	"viscosity_gas",
	"injected_gas_formation_volume_factor",
	"injected_water_formation_volume_factor",
}

// AllProperties returns every property in column order.
func AllProperties() []Property {
	out := make([]Property, NumProperties)
	for i := range out {
		out[i] = Property(i)
	}
	return out
}

// String returns the snake_case column name of the property.
func (p Property) String() string {
	if !p.IsValid() {
		return "unknown"
	}
	return propertyNames[p]
}

// IsValid checks if the property is a known value.
func (p Property) IsValid() bool {
	return p >= 0 && p < NumProperties
}

// ParseProperty maps a column name back to its Property.
func ParseProperty(name string) (Property, bool) {
	for i, n := range propertyNames {
		if n == name {
			return Property(i), true
		}
	}
	return 0, false
}

// Properties holds the nine fluid properties indexed by Property.
// A nil entry means the value is absent.
type Properties [NumProperties]*float64

// Get returns the value of p, nil if absent.
func (ps *Properties) Get(p Property) *float64 {
	if !p.IsValid() {
		return nil
	}
	return ps[p]
}

// Set stores v for p. A nil v marks the property absent.
func (ps *Properties) Set(p Property, v *float64) {
	if !p.IsValid() {
		return
	}
	ps[p] = v
}

// Clean replaces NaN and infinite values with absent.
func (ps *Properties) Clean() {
	for i, v := range ps {
		if v != nil && !IsFinite(*v) {
			ps[i] = nil
		}
	}
}

// Copy returns a deep copy so callers cannot alias stored values.
func (ps Properties) Copy() Properties {
	var out Properties
	for i, v := range ps {
		if v != nil {
			out[i] = Float(*v)
		}
	}
	return out
}

// MarshalJSON encodes the properties as an object keyed by column name, absent values as null.
func (ps Properties) MarshalJSON() ([]byte, error) {
	return json.Marshal(propertiesJSON{
		OilFVF:           ps[OilFVF],
		GasFVF:           ps[GasFVF],
		WaterFVF:         ps[WaterFVF],
		SolutionGOR:      ps[SolutionGOR],
		ViscosityOil:     ps[ViscosityOil],
		ViscosityWater:   ps[ViscosityWater],
		ViscosityGas:     ps[ViscosityGas],
		InjectedGasFVF:   ps[InjectedGasFVF],
		InjectedWaterFVF: ps[InjectedWaterFVF],
	})
}

// UnmarshalJSON decodes the object form written by MarshalJSON.
func (ps *Properties) UnmarshalJSON(data []byte) error {
	var v propertiesJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*ps = Properties{
		v.OilFVF, v.GasFVF, v.WaterFVF, v.SolutionGOR,
		v.ViscosityOil, v.ViscosityWater, v.ViscosityGas,
		v.InjectedGasFVF, v.InjectedWaterFVF,
	}
	return nil
}

type propertiesJSON struct {
	OilFVF           *float64 `json:"oil_formation_volume_factor"`
	GasFVF           *float64 `json:"gas_formation_volume_factor"`
	WaterFVF         *float64 `json:"water_formation_volume_factor"`
	SolutionGOR      *float64 `json:"solution_gas_oil_ratio"`
	ViscosityOil     *float64 `json:"viscosity_oil"`
	ViscosityWater   *float64 `json:"viscosity_water"`
	ViscosityGas     *float64 `json:"viscosity_gas"`
	InjectedGasFVF   *float64 `json:"injected_gas_formation_volume_factor"`
	InjectedWaterFVF *float64 `json:"injected_water_formation_volume_factor"`
}

// Float returns a pointer to a copy of v.
func Float(v float64) *float64 {
	return &v
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
