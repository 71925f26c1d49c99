// internal/models/shortlist.go
package models

import "encoding/json"

// DefaultShortlistLimit bounds every category's shortlist.
const DefaultShortlistLimit = 10

// Shortlists are the bounded, ordered candidates per category. Housing is
// score-descending, cuisine and experience keep catalog order. Pools holds
// the IDs of the filtered pool each shortlist was drawn from.
type Shortlists struct {
	Housing    []Housing             `json:"housing"`
	Cuisine    []Cuisine             `json:"cuisine"`
	Experience []Experience          `json:"experience"`
	Pools      map[Category][]string `json:"pools,omitempty"`
}

// IDs returns the shortlist IDs of c in shortlist order.
func (s Shortlists) IDs(c Category) []string {
	var ids []string
	switch c {
	case CategoryHousing:
		ids = make([]string, 0, len(s.Housing))
		for _, h := range s.Housing {
			ids = append(ids, h.ID)
		}
	case CategoryCuisine:
		ids = make([]string, 0, len(s.Cuisine))
		for _, c := range s.Cuisine {
			ids = append(ids, c.ID)
		}
	case CategoryExperience:
		ids = make([]string, 0, len(s.Experience))
		for _, e := range s.Experience {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Len returns the shortlist size of c.
func (s Shortlists) Len(c Category) int {
	switch c {
	case CategoryHousing:
		return len(s.Housing)
	case CategoryCuisine:
		return len(s.Cuisine)
	case CategoryExperience:
		return len(s.Experience)
	}
	return 0
}

// PoolSize returns how many listings of c passed the filter, before the
// shortlist bound.
func (s Shortlists) PoolSize(c Category) int {
	return len(s.Pools[c])
}

// Selection is the per-category list of chosen IDs. Fallback marks a
// selection produced without the oracle's answer.
type Selection struct {
	HousingIDs    []string `json:"housing_ids"`
	CuisineIDs    []string `json:"cuisine_ids"`
	ExperienceIDs []string `json:"experience_ids"`
	Fallback      bool     `json:"fallback"`
	Reason        string   `json:"reason,omitempty"`
}

// IDs returns the selected IDs of c.
func (s Selection) IDs(c Category) []string {
	switch c {
	case CategoryHousing:
		return s.HousingIDs
	case CategoryCuisine:
		return s.CuisineIDs
	case CategoryExperience:
		return s.ExperienceIDs
	}
	return nil
}

// Set replaces the selected IDs of c.
func (s *Selection) Set(c Category, ids []string) {
	switch c {
	case CategoryHousing:
		s.HousingIDs = ids
	case CategoryCuisine:
		s.CuisineIDs = ids
	case CategoryExperience:
		s.ExperienceIDs = ids
	}
}

// Likes holds liked IDs per category, in the order they were liked.
type Likes struct {
	Housing    []string `json:"housing"`
	Cuisine    []string `json:"cuisine"`
	Experience []string `json:"experience"`
}

// UnmarshalJSON also accepts the plural "experiences" key.
func (l *Likes) UnmarshalJSON(data []byte) error {
	var raw struct {
		Housing     []string `json:"housing"`
		Cuisine     []string `json:"cuisine"`
		Experience  []string `json:"experience"`
		Experiences []string `json:"experiences"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.Housing = raw.Housing
	l.Cuisine = raw.Cuisine
	l.Experience = append(raw.Experience, raw.Experiences...)
	return nil
}

// IDs returns the liked IDs of c.
func (l Likes) IDs(c Category) []string {
	switch c {
	case CategoryHousing:
		return l.Housing
	case CategoryCuisine:
		return l.Cuisine
	case CategoryExperience:
		return l.Experience
	}
	return nil
}

// Empty reports whether nothing was liked.
func (l Likes) Empty() bool {
	return len(l.Housing) == 0 && len(l.Cuisine) == 0 && len(l.Experience) == 0
}
