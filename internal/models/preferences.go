// internal/models/preferences.go
package models

// Preferences are the user's standing tastes. Every empty set is a wildcard
// ("no constraint"), never "match nothing"; the one exception is
// ExperienceTypes, see recommend.FilterExperiences.
type Preferences struct {
	HousingType        []string   `json:"housing_type"`
	PreferredAmenities []string   `json:"preferred_amenities"`
	SafetyLevel        *Safety    `json:"safety_level,omitempty"`
	PriceRange         PriceRange `json:"price_range"`
	CuisineTypes       []string   `json:"cuisine_types"`
	ExperienceTypes    []string   `json:"experience_types"`
}

// SafetyConstraint returns the requested safety level, if any.
func (p Preferences) SafetyConstraint() (Safety, bool) {
	if p.SafetyLevel == nil || *p.SafetyLevel == "" {
		return "", false
	}
	return *p.SafetyLevel, true
}

// PriceRange is an inclusive [Min, Max] nightly cost interval. The zero
// value accepts every price.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// IsZero reports an unset range.
func (r PriceRange) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// Contains is inclusive on both ends.
func (r PriceRange) Contains(v float64) bool {
	if r.IsZero() {
		return true
	}
	return r.Min <= v && v <= r.Max
}

// MarshalJSON writes the [min, max] pair form the clients send.
func (r PriceRange) MarshalJSON() ([]byte, error) {
	return marshalPair(r.Min, r.Max)
}

// UnmarshalJSON accepts both [min, max] and {"min":..,"max":..}.
func (r *PriceRange) UnmarshalJSON(data []byte) error {
	min, max, err := unmarshalPair(data)
	if err != nil {
		return err
	}
	r.Min, r.Max = min, max
	return nil
}

// TravelContext describes one trip. CuisinePreferences and
// ExperiencePreferences are denormalized copies used when Preferences leaves
// the matching set empty.
type TravelContext struct {
	Location              string   `json:"location"`
	Dates                 []string `json:"dates"`
	Travelers             int      `json:"travelers"`
	DesiredAmenities      []string `json:"desired_amenities"`
	TotalBudget           float64  `json:"total_budget,omitempty"`
	CuisinePreferences    []string `json:"cuisine_preferences,omitempty"`
	ExperiencePreferences []string `json:"experience_preferences,omitempty"`
}

// SafetyPtr is a convenience for building Preferences literals.
func SafetyPtr(s Safety) *Safety {
	return &s
}
