// internal/catalog/details.go
package catalog

import "travelease/internal/models"

// HousingDetail is the client-facing subset of a housing listing.
type HousingDetail struct {
	ID           string        `json:"id"`
	HousingType  string        `json:"housing_type,omitempty"`
	Neighborhood string        `json:"neighborhood,omitempty"`
	Location     string        `json:"location,omitempty"`
	CostPerNight float64       `json:"cost_per_night,omitempty"`
	Amenities    []string      `json:"amenities,omitempty"`
	Safety       models.Safety `json:"safety,omitempty"`
	SafetyRating float64       `json:"safety_rating,omitempty"`
	Reviews      []string      `json:"reviews,omitempty"`
}

type CuisineDetail struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	CuisineType string         `json:"cuisine_type,omitempty"`
	Location    string         `json:"location,omitempty"`
	Pricing     models.Pricing `json:"pricing,omitempty"`
}

type ExperienceDetail struct {
	ID         string `json:"id"`
	Experience string `json:"experience,omitempty"`
	Location   string `json:"location,omitempty"`
	Keyword    string `json:"keyword,omitempty"`
}

// Details groups resolved detail views per category.
type Details struct {
	Housing    []HousingDetail    `json:"housing"`
	Cuisine    []CuisineDetail    `json:"cuisine"`
	Experience []ExperienceDetail `json:"experience"`
}

// Details resolves ids to detail views in request order. Unknown IDs are
// omitted without error.
func (s *Store) Details(housingIDs, cuisineIDs, experienceIDs []string) Details {
	d := Details{
		Housing:    []HousingDetail{},
		Cuisine:    []CuisineDetail{},
		Experience: []ExperienceDetail{},
	}
	for _, id := range housingIDs {
		h, ok := s.HousingByID(id)
		if !ok {
			continue
		}
		d.Housing = append(d.Housing, HousingDetail{
			ID:           h.ID,
			HousingType:  h.HousingType,
			Neighborhood: h.Neighborhood,
			Location:     h.Location,
			CostPerNight: h.CostPerNight,
			Amenities:    cloneStrings(h.Amenities),
			Safety:       h.Safety,
			SafetyRating: h.SafetyRating,
			Reviews:      cloneStrings(h.Reviews),
		})
	}
	for _, id := range cuisineIDs {
		c, ok := s.CuisineByID(id)
		if !ok {
			continue
		}
		d.Cuisine = append(d.Cuisine, CuisineDetail{
			ID:          c.ID,
			Name:        c.Name,
			CuisineType: c.CuisineType,
			Location:    c.Location,
			Pricing:     c.Pricing,
		})
	}
	for _, id := range experienceIDs {
		e, ok := s.ExperienceByID(id)
		if !ok {
			continue
		}
		d.Experience = append(d.Experience, ExperienceDetail{
			ID:         e.ID,
			Experience: e.Experience,
			Location:   e.Location,
			Keyword:    e.Keyword,
		})
	}
	return d
}
