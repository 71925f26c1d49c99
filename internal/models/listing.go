// internal/models/listing.go
package models

import "strings"

// Safety is the ordinal safety level of a housing unit.
type Safety string

const (
	SafetyLow    Safety = "Low"
	SafetyMedium Safety = "Medium"
	SafetyHigh   Safety = "High"
)

// ParseSafety accepts any casing of the three levels.
func ParseSafety(s string) (Safety, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SafetyLow, true
	case "medium":
		return SafetyMedium, true
	case "high":
		return SafetyHigh, true
	}
	return "", false
}

// Rank orders safety levels; unknown levels rank 0.
func (s Safety) Rank() int {
	switch s {
	case SafetyLow:
		return 1
	case SafetyMedium:
		return 2
	case SafetyHigh:
		return 3
	}
	return 0
}

// Pricing is the ordinal price band of cuisine and experience listings.
type Pricing string

const (
	PricingLow       Pricing = "low"
	PricingMedium    Pricing = "medium"
	PricingHigh      Pricing = "high"
	PricingUltraHigh Pricing = "ultra-high"
)

// ParsePricing also accepts "ultra high" and "ultra_high".
func ParsePricing(s string) (Pricing, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "-", "_", "-").Replace(norm)
	switch Pricing(norm) {
	case PricingLow, PricingMedium, PricingHigh, PricingUltraHigh:
		return Pricing(norm), true
	}
	return "", false
}

// Housing is one lodging listing. IDs are namespaced "H<n>".
type Housing struct {
	ID             string   `json:"id"`
	Location       string   `json:"location"`
	Neighborhood   string   `json:"neighborhood,omitempty"`
	HousingType    string   `json:"housing_type"`
	RentalType     string   `json:"rental_type,omitempty"`
	CostPerNight   float64  `json:"cost_per_night"`
	Amenities      []string `json:"amenities"`
	Safety         Safety   `json:"safety,omitempty"`
	SafetyRating   float64  `json:"safety_rating,omitempty"`
	ScheduledDates []string `json:"scheduled_dates,omitempty"`
	Reviews        []string `json:"reviews,omitempty"`
	Bedrooms       int      `json:"bedrooms,omitempty"`
	Bathrooms      int      `json:"bathrooms,omitempty"`
	Beds           int      `json:"beds,omitempty"`
}

// HasAmenity is case-sensitive, matching how the catalogs are authored.
func (h Housing) HasAmenity(amenity string) bool {
	for _, a := range h.Amenities {
		if a == amenity {
			return true
		}
	}
	return false
}

// AvailableOn reports whether date is one of the scheduled dates.
func (h Housing) AvailableOn(date string) bool {
	for _, d := range h.ScheduledDates {
		if d == date {
			return true
		}
	}
	return false
}

// Cuisine is one dining listing. IDs are namespaced "C<n>".
type Cuisine struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	Location    string  `json:"location"`
	CuisineType string  `json:"cuisine_type"`
	Pricing     Pricing `json:"pricing,omitempty"`
}

// Experience is one activity listing. IDs are namespaced "E<n>".
type Experience struct {
	ID         string  `json:"id"`
	Location   string  `json:"location"`
	Experience string  `json:"experience"`
	Company    string  `json:"company,omitempty"`
	Pricing    Pricing `json:"pricing,omitempty"`
	Keyword    string  `json:"keyword"`
}

// ID prefixes per category.
const (
	HousingIDPrefix    = "H"
	CuisineIDPrefix    = "C"
	ExperienceIDPrefix = "E"
)
