// Package recommend narrows the listing catalog to bounded shortlists: pure
// filters over each category followed by a ranker that caps the result.
//
// Every preference set left empty is a wildcard. The single exception is the
// experience keyword set: with no accepted keyword, no experience matches.
package recommend

import "travelease/internal/models"

// FilterHousing keeps units in tc.Location that satisfy every set constraint.
// The result is a subsequence of pool.
func FilterHousing(prefs models.Preferences, tc models.TravelContext, pool []models.Housing) []models.Housing {
	safety, wantSafety := prefs.SafetyConstraint()
	types := toSet(prefs.HousingType)
	amenities := DesiredAmenities(prefs, tc)

	out := make([]models.Housing, 0, len(pool))
	for _, h := range pool {
		if h.Location != tc.Location {
			continue
		}
		if wantSafety && h.Safety != safety {
			continue
		}
		if len(types) > 0 && !types.has(h.HousingType) {
			continue
		}
		if !prefs.PriceRange.Contains(h.CostPerNight) {
			continue
		}
		if len(amenities) > 0 && countAmenities(h, amenities) == 0 {
			continue
		}
		if !availableOnAll(h, tc.Dates) {
			continue
		}
		out = append(out, h)
	}
	return out
}

// FilterCuisine keeps listings in tc.Location whose type is accepted. The
// accepted set is prefs.CuisineTypes, or tc.CuisinePreferences when that is
// empty; both empty accepts every type.
func FilterCuisine(prefs models.Preferences, tc models.TravelContext, pool []models.Cuisine) []models.Cuisine {
	accepted := toSet(firstNonEmpty(prefs.CuisineTypes, tc.CuisinePreferences))

	out := make([]models.Cuisine, 0, len(pool))
	for _, c := range pool {
		if c.Location != tc.Location {
			continue
		}
		if len(accepted) > 0 && !accepted.has(c.CuisineType) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FilterExperiences keeps listings in tc.Location whose keyword is accepted.
// There is no wildcard: with neither prefs.ExperienceTypes nor
// tc.ExperiencePreferences set, the result is empty.
func FilterExperiences(prefs models.Preferences, tc models.TravelContext, pool []models.Experience) []models.Experience {
	accepted := toSet(firstNonEmpty(prefs.ExperienceTypes, tc.ExperiencePreferences))

	out := make([]models.Experience, 0, len(pool))
	for _, e := range pool {
		if e.Location != tc.Location {
			continue
		}
		if !accepted.has(e.Keyword) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// DesiredAmenities is the amenity set used for both filtering and scoring:
// the trip's desired amenities, else the standing preferred amenities.
func DesiredAmenities(prefs models.Preferences, tc models.TravelContext) []string {
	return firstNonEmpty(tc.DesiredAmenities, prefs.PreferredAmenities)
}

func countAmenities(h models.Housing, wanted []string) int {
	n := 0
	for _, a := range dedup(wanted) {
		if h.HasAmenity(a) {
			n++
		}
	}
	return n
}

func availableOnAll(h models.Housing, dates []string) bool {
	for _, d := range dates {
		if !h.AvailableOn(d) {
			return false
		}
	}
	return true
}

type stringSet map[string]struct{}

func toSet(values []string) stringSet {
	s := make(stringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s stringSet) has(v string) bool {
	_, ok := s[v]
	return ok
}

func firstNonEmpty(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}

func dedup(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
