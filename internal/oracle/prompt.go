// internal/oracle/prompt.go
package oracle

import "travelease/internal/models"

const selectionPrompt = `You are a travel planner choosing candidates for a trip.
Inspect listings with the inspect_listing tool before choosing.
Choose only from valid_housing_ids, valid_cuisine_ids and valid_experience_ids.
Answer with one JSON object: {"housing_ids": [...], "cuisine_ids": [...], "experience_ids": [...]}.`

type housingView struct {
	ID           string        `json:"id"`
	HousingType  string        `json:"housing_type"`
	Neighborhood string        `json:"neighborhood,omitempty"`
	CostPerNight float64       `json:"cost_per_night"`
	Amenities    []string      `json:"amenities"`
	Safety       models.Safety `json:"safety,omitempty"`
}

type cuisineView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	CuisineType string         `json:"cuisine_type"`
	Pricing     models.Pricing `json:"pricing,omitempty"`
}

type experienceView struct {
	ID         string         `json:"id"`
	Experience string         `json:"experience"`
	Keyword    string         `json:"keyword"`
	Pricing    models.Pricing `json:"pricing,omitempty"`
}

// selectionContext carries the trimmed listings and the whitelists the
// answer is checked against.
func selectionContext(prefs models.Preferences, tc models.TravelContext, sl models.Shortlists,
	whitelists map[models.Category][]string, minInspections int) map[string]interface{} {

	housing := make([]housingView, 0, len(sl.Housing))
	for _, h := range sl.Housing {
		housing = append(housing, housingView{
			ID:           h.ID,
			HousingType:  h.HousingType,
			Neighborhood: h.Neighborhood,
			CostPerNight: h.CostPerNight,
			Amenities:    h.Amenities,
			Safety:       h.Safety,
		})
	}
	cuisine := make([]cuisineView, 0, len(sl.Cuisine))
	for _, c := range sl.Cuisine {
		cuisine = append(cuisine, cuisineView{ID: c.ID, Name: c.Name, CuisineType: c.CuisineType, Pricing: c.Pricing})
	}
	experiences := make([]experienceView, 0, len(sl.Experience))
	for _, e := range sl.Experience {
		experiences = append(experiences, experienceView{ID: e.ID, Experience: e.Experience, Keyword: e.Keyword, Pricing: e.Pricing})
	}

	return map[string]interface{}{
		"preferences":          prefs,
		"travel_info":          tc,
		"housing":              housing,
		"cuisine":              cuisine,
		"experiences":          experiences,
		"valid_housing_ids":    whitelists[models.CategoryHousing],
		"valid_cuisine_ids":    whitelists[models.CategoryCuisine],
		"valid_experience_ids": whitelists[models.CategoryExperience],
		"min_inspections":      minInspections,
	}
}
