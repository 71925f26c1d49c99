package recommend

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelease/internal/catalog"
	"travelease/internal/models"
)

const boston = "Boston, USA"

func TestFilterHousing_ApartmentScenario(t *testing.T) {
	prefs := models.Preferences{
		HousingType: []string{"Apartment"},
		PriceRange:  models.PriceRange{Min: 50, Max: 150},
		SafetyLevel: models.SafetyPtr(models.SafetyHigh),
	}
	tc := models.TravelContext{Location: boston, DesiredAmenities: []string{"WiFi"}}
	pool := []models.Housing{
		{ID: "H1", Location: boston, HousingType: "Apartment", CostPerNight: 100, Safety: models.SafetyHigh, Amenities: []string{"WiFi"}},
		{ID: "H2", Location: boston, HousingType: "House", CostPerNight: 100, Safety: models.SafetyHigh, Amenities: []string{"WiFi"}},
	}

	got := FilterHousing(prefs, tc, pool)
	assert.Equal(t, []string{"H1"}, housingIDs(got))
}

func TestFilterHousing_Constraints(t *testing.T) {
	base := models.Housing{
		ID: "H1", Location: boston, HousingType: "Apartment", CostPerNight: 100,
		Safety: models.SafetyHigh, Amenities: []string{"WiFi", "Kitchen"},
		ScheduledDates: []string{"2025-06-01", "2025-06-02"},
	}

	tests := []struct {
		name  string
		prefs models.Preferences
		tc    models.TravelContext
		mut   func(h *models.Housing)
		keep  bool
	}{
		{name: "all wildcards", tc: models.TravelContext{Location: boston}, keep: true},
		{name: "wrong location", tc: models.TravelContext{Location: "Paris"}, keep: false},
		{name: "safety mismatch", prefs: models.Preferences{SafetyLevel: models.SafetyPtr(models.SafetyLow)}, tc: models.TravelContext{Location: boston}, keep: false},
		{name: "safety missing on listing", prefs: models.Preferences{SafetyLevel: models.SafetyPtr(models.SafetyHigh)}, tc: models.TravelContext{Location: boston}, mut: func(h *models.Housing) { h.Safety = "" }, keep: false},
		{name: "empty safety pointer is wildcard", prefs: models.Preferences{SafetyLevel: models.SafetyPtr("")}, tc: models.TravelContext{Location: boston}, keep: true},
		{name: "price at min bound", prefs: models.Preferences{PriceRange: models.PriceRange{Min: 100, Max: 200}}, tc: models.TravelContext{Location: boston}, keep: true},
		{name: "price at max bound", prefs: models.Preferences{PriceRange: models.PriceRange{Min: 50, Max: 100}}, tc: models.TravelContext{Location: boston}, keep: true},
		{name: "price above range", prefs: models.Preferences{PriceRange: models.PriceRange{Min: 10, Max: 99.99}}, tc: models.TravelContext{Location: boston}, keep: false},
		{name: "one amenity overlaps", tc: models.TravelContext{Location: boston, DesiredAmenities: []string{"Pool", "Kitchen"}}, keep: true},
		{name: "no amenity overlaps", tc: models.TravelContext{Location: boston, DesiredAmenities: []string{"Pool"}}, keep: false},
		{name: "preferred amenities used when trip has none", prefs: models.Preferences{PreferredAmenities: []string{"Pool"}}, tc: models.TravelContext{Location: boston}, keep: false},
		{name: "all dates available", tc: models.TravelContext{Location: boston, Dates: []string{"2025-06-01", "2025-06-02"}}, keep: true},
		{name: "one date unavailable", tc: models.TravelContext{Location: boston, Dates: []string{"2025-06-01", "2025-06-09"}}, keep: false},
		{name: "type not accepted", prefs: models.Preferences{HousingType: []string{"Hotel"}}, tc: models.TravelContext{Location: boston}, keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := base
			h.Amenities = append([]string(nil), base.Amenities...)
			if tt.mut != nil {
				tt.mut(&h)
			}
			got := FilterHousing(tt.prefs, tt.tc, []models.Housing{h})
			if tt.keep {
				assert.Len(t, got, 1)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

// An empty constraint field never excludes a listing on its own.
func TestFilters_EmptySetIsWildcard(t *testing.T) {
	tc := models.TravelContext{Location: boston}
	housing := []models.Housing{
		{ID: "H1", Location: boston, HousingType: "Loft", CostPerNight: 999},
		{ID: "H2", Location: boston, HousingType: "Castle"},
	}
	cuisine := []models.Cuisine{
		{ID: "C1", Location: boston, CuisineType: "Thai"},
		{ID: "C2", Location: boston, CuisineType: ""},
	}

	assert.Len(t, FilterHousing(models.Preferences{}, tc, housing), 2)
	assert.Len(t, FilterCuisine(models.Preferences{}, tc, cuisine), 2)
}

func TestFilterCuisine(t *testing.T) {
	pool := []models.Cuisine{
		{ID: "C1", Location: boston, CuisineType: "Italian"},
		{ID: "C2", Location: boston, CuisineType: "Chinese"},
		{ID: "C3", Location: "Paris", CuisineType: "Italian"},
	}
	tc := models.TravelContext{Location: boston}

	got := FilterCuisine(models.Preferences{CuisineTypes: []string{"Italian"}}, tc, pool)
	require.Len(t, got, 1)
	assert.Equal(t, "C1", got[0].ID)

	// denormalized trip preferences apply when the standing set is empty
	tc.CuisinePreferences = []string{"Chinese"}
	got = FilterCuisine(models.Preferences{}, tc, pool)
	require.Len(t, got, 1)
	assert.Equal(t, "C2", got[0].ID)
}

func TestFilterExperiences_NoWildcard(t *testing.T) {
	pool := []models.Experience{
		{ID: "E1", Location: boston, Keyword: "Historic"},
		{ID: "E2", Location: boston, Keyword: "Adventure"},
		{ID: "E3", Location: "Paris", Keyword: "Historic"},
	}
	tc := models.TravelContext{Location: boston}

	assert.Empty(t, FilterExperiences(models.Preferences{}, tc, pool))

	got := FilterExperiences(models.Preferences{ExperienceTypes: []string{"Historic"}}, tc, pool)
	require.Len(t, got, 1)
	assert.Equal(t, "E1", got[0].ID)

	tc.ExperiencePreferences = []string{"Adventure"}
	got = FilterExperiences(models.Preferences{}, tc, pool)
	require.Len(t, got, 1)
	assert.Equal(t, "E2", got[0].ID)
}

func TestFilters_DoNotMutatePool(t *testing.T) {
	pool := []models.Housing{
		{ID: "H1", Location: boston, Amenities: []string{"WiFi"}},
		{ID: "H2", Location: "Paris"},
	}
	before := fmt.Sprintf("%+v", pool)

	FilterHousing(models.Preferences{}, models.TravelContext{Location: boston, DesiredAmenities: []string{"WiFi"}}, pool)
	RankHousing(pool, models.Preferences{}, models.TravelContext{DesiredAmenities: []string{"WiFi"}}, 1)

	assert.Equal(t, before, fmt.Sprintf("%+v", pool))
}

func TestHousingScore(t *testing.T) {
	h := models.Housing{Safety: models.SafetyHigh, Amenities: []string{"WiFi", "Kitchen", "Pool"}}
	tc := models.TravelContext{DesiredAmenities: []string{"WiFi", "Pool", "Gym", "WiFi"}}

	assert.Equal(t, 2, HousingScore(h, models.Preferences{}, tc))
	assert.Equal(t, 4, HousingScore(h, models.Preferences{SafetyLevel: models.SafetyPtr(models.SafetyHigh)}, tc))
	assert.Equal(t, 2, HousingScore(h, models.Preferences{SafetyLevel: models.SafetyPtr(models.SafetyLow)}, tc))
}

func TestHousingScore_PriceIsNotScored(t *testing.T) {
	prefs := models.Preferences{PriceRange: models.PriceRange{Min: 50, Max: 150}}
	tc := models.TravelContext{DesiredAmenities: []string{"WiFi"}}

	cheap := models.Housing{CostPerNight: 55, Amenities: []string{"WiFi"}}
	pricey := models.Housing{CostPerNight: 149, Amenities: []string{"WiFi"}}
	outside := models.Housing{CostPerNight: 900, Amenities: []string{"WiFi"}}

	assert.Equal(t, 1, HousingScore(cheap, prefs, tc))
	assert.Equal(t, HousingScore(cheap, prefs, tc), HousingScore(pricey, prefs, tc))
	assert.Equal(t, HousingScore(cheap, prefs, tc), HousingScore(outside, prefs, tc), "price only filters")
}

func TestRankHousing_StableDescending(t *testing.T) {
	prefs := models.Preferences{SafetyLevel: models.SafetyPtr(models.SafetyHigh)}
	tc := models.TravelContext{DesiredAmenities: []string{"WiFi", "Pool"}}
	pool := []models.Housing{
		{ID: "A", Safety: models.SafetyLow},                                       // 0
		{ID: "B", Safety: models.SafetyHigh, Amenities: []string{"WiFi"}},         // 3
		{ID: "C", Safety: models.SafetyLow, Amenities: []string{"WiFi", "Pool"}},  // 2
		{ID: "D", Safety: models.SafetyHigh, Amenities: []string{"Pool"}},         // 3
		{ID: "E", Safety: models.SafetyMedium},                                    // 0
		{ID: "F", Safety: models.SafetyHigh, Amenities: []string{"WiFi", "Pool"}}, // 4
	}

	got := RankHousing(pool, prefs, tc, 10)
	assert.Equal(t, []string{"F", "B", "D", "C", "A", "E"}, housingIDs(got))

	got = RankHousing(pool, prefs, tc, 3)
	assert.Equal(t, []string{"F", "B", "D"}, housingIDs(got))
}

// The ranker never returns more than it was given, nor fewer when the pool
// fits within the limit.
func TestRankHousing_NoTruncationBelowInput(t *testing.T) {
	for size := 0; size <= 12; size++ {
		pool := make([]models.Housing, size)
		for i := range pool {
			pool[i] = models.Housing{ID: fmt.Sprintf("H%d", i+1)}
		}
		got := RankHousing(pool, models.Preferences{}, models.TravelContext{}, 10)
		assert.Equal(t, min(size, 10), len(got), "size %d", size)
		assert.Equal(t, min(size, 10), len(Bound(pool, 10)), "size %d", size)
	}
}

func TestBound(t *testing.T) {
	pool := []string{"a", "b", "c"}
	assert.Equal(t, []string{"a", "b"}, Bound(pool, 2))
	assert.Equal(t, pool, Bound(pool, 0), "non-positive limit means the default")

	out := Bound(pool, 3)
	out[0] = "z"
	assert.Equal(t, "a", pool[0])
}

func TestBuildShortlists(t *testing.T) {
	store, err := catalog.NewMemorySource().Load(context.Background())
	require.NoError(t, err)

	prefs := models.Preferences{
		HousingType:     []string{"Apartment", "Hotel"},
		SafetyLevel:     models.SafetyPtr(models.SafetyHigh),
		PriceRange:      models.PriceRange{Min: 50, Max: 150},
		CuisineTypes:    []string{"Italian", "French"},
		ExperienceTypes: []string{"Historic", "Adventure"},
	}
	tc := models.TravelContext{Location: boston, DesiredAmenities: []string{"WiFi", "Air conditioning"}}

	s := BuildShortlists(store, prefs, tc, 10)

	// H1 and H4 both score 4, pool order breaks the tie
	assert.Equal(t, []string{"H1", "H4"}, s.IDs(models.CategoryHousing))
	assert.Equal(t, []string{"C8", "C11"}, s.IDs(models.CategoryCuisine))
	assert.Equal(t, []string{"E8", "E9"}, s.IDs(models.CategoryExperience))
	assert.Equal(t, []string{"H1", "H4"}, s.Pools[models.CategoryHousing])
	assert.Equal(t, 2, s.PoolSize(models.CategoryHousing))
	assert.Equal(t, len(s.Pools[models.CategoryCuisine]), s.PoolSize(models.CategoryCuisine))
}

func TestBuildShortlists_PoolSizeCountsBeyondTheBound(t *testing.T) {
	store, err := catalog.NewMemorySource().Load(context.Background())
	require.NoError(t, err)

	prefs := models.Preferences{ExperienceTypes: catalog.KeywordCategories()}
	tc := models.TravelContext{Location: boston}
	s := BuildShortlists(store, prefs, tc, 1)

	for _, c := range models.Categories {
		require.Positive(t, s.PoolSize(c), c)
		assert.LessOrEqual(t, s.Len(c), 1, c)
		assert.GreaterOrEqual(t, s.PoolSize(c), s.Len(c), c)
	}
	assert.Equal(t, len(FilterHousing(prefs, tc, store.Housing())), s.PoolSize(models.CategoryHousing))
	assert.Greater(t, s.PoolSize(models.CategoryHousing), s.Len(models.CategoryHousing))
}

func TestBuildShortlists_EmptyPoolIsNotAnError(t *testing.T) {
	store, err := catalog.NewMemorySource().Load(context.Background())
	require.NoError(t, err)

	s := BuildShortlists(store, models.Preferences{}, models.TravelContext{Location: "Atlantis"}, 10)
	assert.Empty(t, s.Housing)
	assert.Empty(t, s.Cuisine)
	assert.Empty(t, s.Experience)
	assert.NotNil(t, s.Pools)
}
