// internal/catalog/store.go
package catalog

import (
	"context"
	"fmt"
	"sort"

	"travelease/internal/models"
)

// Source loads the three listing collections.
type Source interface {
	Load(ctx context.Context) (*Store, error)
	Name() string
}

// Store is the immutable, in-process listing catalog. All accessors return
// copies; nothing downstream can mutate the loaded listings.
type Store struct {
	housing     []models.Housing
	cuisine     []models.Cuisine
	experiences []models.Experience

	housingByID    map[string]int
	cuisineByID    map[string]int
	experienceByID map[string]int
}

// NewStore copies the inputs and indexes them by ID. Duplicate IDs within a
// category are rejected.
func NewStore(housing []models.Housing, cuisine []models.Cuisine, experiences []models.Experience) (*Store, error) {
	s := &Store{
		housing:        make([]models.Housing, len(housing)),
		cuisine:        make([]models.Cuisine, len(cuisine)),
		experiences:    make([]models.Experience, len(experiences)),
		housingByID:    make(map[string]int, len(housing)),
		cuisineByID:    make(map[string]int, len(cuisine)),
		experienceByID: make(map[string]int, len(experiences)),
	}

	for i, h := range housing {
		if h.ID == "" {
			return nil, fmt.Errorf("housing listing %d has no id", i)
		}
		if _, dup := s.housingByID[h.ID]; dup {
			return nil, fmt.Errorf("duplicate housing id %q", h.ID)
		}
		s.housing[i] = cloneHousing(h)
		s.housingByID[h.ID] = i
	}
	for i, c := range cuisine {
		if c.ID == "" {
			return nil, fmt.Errorf("cuisine listing %d has no id", i)
		}
		if _, dup := s.cuisineByID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate cuisine id %q", c.ID)
		}
		s.cuisine[i] = c
		s.cuisineByID[c.ID] = i
	}
	for i, e := range experiences {
		if e.ID == "" {
			return nil, fmt.Errorf("experience listing %d has no id", i)
		}
		if _, dup := s.experienceByID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate experience id %q", e.ID)
		}
		if e.Keyword == "" {
			e.Keyword = Categorize(e.Experience)
		}
		s.experiences[i] = e
		s.experienceByID[e.ID] = i
	}
	return s, nil
}

// Housing returns every housing listing in load order.
func (s *Store) Housing() []models.Housing {
	out := make([]models.Housing, len(s.housing))
	for i, h := range s.housing {
		out[i] = cloneHousing(h)
	}
	return out
}

// Cuisine returns every cuisine listing in load order.
func (s *Store) Cuisine() []models.Cuisine {
	out := make([]models.Cuisine, len(s.cuisine))
	copy(out, s.cuisine)
	return out
}

// Experiences returns every experience listing in load order.
func (s *Store) Experiences() []models.Experience {
	out := make([]models.Experience, len(s.experiences))
	copy(out, s.experiences)
	return out
}

func (s *Store) HousingByID(id string) (models.Housing, bool) {
	i, ok := s.housingByID[id]
	if !ok {
		return models.Housing{}, false
	}
	return cloneHousing(s.housing[i]), true
}

func (s *Store) CuisineByID(id string) (models.Cuisine, bool) {
	i, ok := s.cuisineByID[id]
	if !ok {
		return models.Cuisine{}, false
	}
	return s.cuisine[i], true
}

func (s *Store) ExperienceByID(id string) (models.Experience, bool) {
	i, ok := s.experienceByID[id]
	if !ok {
		return models.Experience{}, false
	}
	return s.experiences[i], true
}

// Has reports whether id exists in category c.
func (s *Store) Has(c models.Category, id string) bool {
	var ok bool
	switch c {
	case models.CategoryHousing:
		_, ok = s.housingByID[id]
	case models.CategoryCuisine:
		_, ok = s.cuisineByID[id]
	case models.CategoryExperience:
		_, ok = s.experienceByID[id]
	}
	return ok
}

// Counts returns the number of listings per category.
func (s *Store) Counts() map[models.Category]int {
	return map[models.Category]int{
		models.CategoryHousing:    len(s.housing),
		models.CategoryCuisine:    len(s.cuisine),
		models.CategoryExperience: len(s.experiences),
	}
}

// Locations returns every distinct listing location, sorted.
func (s *Store) Locations() []string {
	seen := make(map[string]struct{})
	for _, h := range s.housing {
		seen[h.Location] = struct{}{}
	}
	for _, c := range s.cuisine {
		seen[c.Location] = struct{}{}
	}
	for _, e := range s.experiences {
		seen[e.Location] = struct{}{}
	}
	delete(seen, "")

	out := make([]string, 0, len(seen))
	for loc := range seen {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

func cloneHousing(h models.Housing) models.Housing {
	h.Amenities = cloneStrings(h.Amenities)
	h.ScheduledDates = cloneStrings(h.ScheduledDates)
	h.Reviews = cloneStrings(h.Reviews)
	return h
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
