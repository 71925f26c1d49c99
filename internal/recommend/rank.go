// internal/recommend/rank.go
package recommend

import (
	"sort"

	"travelease/internal/catalog"
	"travelease/internal/models"
)

const safetyMatchBonus = 2

// HousingScore is +2 for a safety match (when a level is requested) plus one
// per desired amenity the unit has.
func HousingScore(h models.Housing, prefs models.Preferences, tc models.TravelContext) int {
	score := 0
	if safety, ok := prefs.SafetyConstraint(); ok && h.Safety == safety {
		score += safetyMatchBonus
	}
	return score + countAmenities(h, DesiredAmenities(prefs, tc))
}

// RankHousing orders pool by descending score, ties keeping pool order, and
// keeps at most limit units. limit <= 0 means models.DefaultShortlistLimit.
func RankHousing(pool []models.Housing, prefs models.Preferences, tc models.TravelContext, limit int) []models.Housing {
	type scored struct {
		h     models.Housing
		score int
	}

	items := make([]scored, len(pool))
	for i, h := range pool {
		items[i] = scored{h: h, score: HousingScore(h, prefs, tc)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	out := make([]models.Housing, 0, min(len(items), effectiveLimit(limit)))
	for _, it := range items {
		if len(out) == cap(out) {
			break
		}
		out = append(out, it.h)
	}
	return out
}

// Bound keeps the first limit items of pool in their existing order. Cuisine
// and experience shortlists are not scored.
func Bound[T any](pool []T, limit int) []T {
	n := min(len(pool), effectiveLimit(limit))
	out := make([]T, n)
	copy(out, pool[:n])
	return out
}

func effectiveLimit(limit int) int {
	if limit <= 0 {
		return models.DefaultShortlistLimit
	}
	return limit
}

// BuildShortlists filters and bounds every category of store for one trip.
// Pools records the full filtered pool each shortlist was drawn from.
func BuildShortlists(store *catalog.Store, prefs models.Preferences, tc models.TravelContext, limit int) models.Shortlists {
	housing := FilterHousing(prefs, tc, store.Housing())
	cuisine := FilterCuisine(prefs, tc, store.Cuisine())
	experiences := FilterExperiences(prefs, tc, store.Experiences())

	s := models.Shortlists{
		Housing:    RankHousing(housing, prefs, tc, limit),
		Cuisine:    Bound(cuisine, limit),
		Experience: Bound(experiences, limit),
		Pools:      make(map[models.Category][]string, len(models.Categories)),
	}
	s.Pools[models.CategoryHousing] = housingIDs(housing)
	s.Pools[models.CategoryCuisine] = cuisineIDs(cuisine)
	s.Pools[models.CategoryExperience] = experienceIDs(experiences)
	return s
}

func housingIDs(pool []models.Housing) []string {
	ids := make([]string, len(pool))
	for i, h := range pool {
		ids[i] = h.ID
	}
	return ids
}

func cuisineIDs(pool []models.Cuisine) []string {
	ids := make([]string, len(pool))
	for i, c := range pool {
		ids[i] = c.ID
	}
	return ids
}

func experienceIDs(pool []models.Experience) []string {
	ids := make([]string, len(pool))
	for i, e := range pool {
		ids[i] = e.ID
	}
	return ids
}
