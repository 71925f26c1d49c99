// internal/catalog/memory.go
package catalog

import (
	"context"

	"travelease/internal/models"
)

// MemorySource serves a fixed seed catalog. It is the default source and the
// one tests run against.
type MemorySource struct {
	Housing     []models.Housing
	Cuisine     []models.Cuisine
	Experiences []models.Experience
}

// NewMemorySource returns a source over the built-in seed catalog.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		Housing:     seedHousing(),
		Cuisine:     seedCuisine(),
		Experiences: seedExperiences(),
	}
}

func (m *MemorySource) Name() string { return "memory" }

func (m *MemorySource) Load(ctx context.Context) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewStore(m.Housing, m.Cuisine, m.Experiences)
}

const boston = "Boston, USA"

var bostonJuneDates = []string{"2025-06-01", "2025-06-02", "2025-06-03", "2025-06-04"}

func seedHousing() []models.Housing {
	return []models.Housing{
		{ID: "H1", Location: boston, Neighborhood: "Back Bay", HousingType: "Apartment", RentalType: "Entire place",
			CostPerNight: 120, Amenities: []string{"WiFi", "Kitchen", "Washer", "Air conditioning"},
			Safety: models.SafetyHigh, SafetyRating: 4.8, ScheduledDates: bostonJuneDates, Bedrooms: 2, Bathrooms: 1, Beds: 2,
			Reviews: []string{"Spacious and central", "Clean and tidy"}},
		{ID: "H2", Location: boston, Neighborhood: "North End", HousingType: "House", RentalType: "Entire place",
			CostPerNight: 140, Amenities: []string{"WiFi", "Free parking", "Patio"},
			Safety: models.SafetyHigh, SafetyRating: 4.6, ScheduledDates: bostonJuneDates, Bedrooms: 3, Bathrooms: 2, Beds: 4,
			Reviews: []string{"Great host, very responsive", "Quiet street"}},
		{ID: "H3", Location: boston, Neighborhood: "Beacon Hill", HousingType: "Apartment", RentalType: "Private room",
			CostPerNight: 85, Amenities: []string{"WiFi", "Heating", "Self check-in"},
			Safety: models.SafetyMedium, SafetyRating: 4.2, ScheduledDates: bostonJuneDates[:2], Bedrooms: 1, Bathrooms: 1, Beds: 1,
			Reviews: []string{"Easy check-in process."}},
		{ID: "H4", Location: boston, Neighborhood: "South End", HousingType: "Hotel", RentalType: "Private room",
			CostPerNight: 149, Amenities: []string{"WiFi", "Gym", "Air conditioning", "TV"},
			Safety: models.SafetyHigh, SafetyRating: 4.9, ScheduledDates: bostonJuneDates, Bedrooms: 1, Bathrooms: 1, Beds: 1,
			Reviews: []string{"Stylish and modern apartment.", "Would definitely stay again"}},
		{ID: "H5", Location: boston, Neighborhood: "Allston", HousingType: "Apartment", RentalType: "Shared room",
			CostPerNight: 55, Amenities: []string{"Kitchen", "TV"},
			Safety: models.SafetyLow, SafetyRating: 3.7, ScheduledDates: bostonJuneDates, Bedrooms: 1, Bathrooms: 1, Beds: 2,
			Reviews: []string{"Great value for the price."}},
		{ID: "H6", Location: boston, Neighborhood: "Fenway-Kenmore", HousingType: "Condo", RentalType: "Entire place",
			CostPerNight: 135, Amenities: []string{"WiFi", "Dedicated workspace", "Washer", "Dryer"},
			Safety: models.SafetyHigh, SafetyRating: 4.5, ScheduledDates: bostonJuneDates, Bedrooms: 2, Bathrooms: 1, Beds: 3,
			Reviews: []string{"Close to public transport"}},
		{ID: "H7", Location: "Paris, France", HousingType: "Hotel", RentalType: "Private",
			CostPerNight: 50, Amenities: []string{"Walking", "Eating", "Shopping"},
			Safety: models.SafetyHigh, ScheduledDates: []string{"2025-01-01", "2025-01-02", "2025-01-03"},
			Reviews: []string{"Great place to stay", "Bad place to stay", "Average place to stay"}},
		{ID: "H8", Location: "Tokyo, Japan", HousingType: "2-bedroom House", RentalType: "Private",
			CostPerNight: 80, Amenities: []string{"WiFi", "Kitchen", "Balcony"},
			Safety: models.SafetyMedium, ScheduledDates: []string{"2025-02-10", "2025-02-11", "2025-02-12"},
			Reviews: []string{"Cozy and clean", "Nice host", "Would stay again"}},
		{ID: "H9", Location: "Seoul, South Korea", HousingType: "Hostel", RentalType: "Private",
			CostPerNight: 25, Amenities: []string{"Shared Room", "Breakfast", "Lockers"},
			Safety: models.SafetyLow, ScheduledDates: []string{"2025-03-15", "2025-03-16", "2025-03-17"},
			Reviews: []string{"Good for backpackers", "Noisy at night", "Friendly staff"}},
		{ID: "H10", Location: "Maui, Hawaii", HousingType: "2-bedroom House", RentalType: "Entire",
			CostPerNight: 150, Amenities: []string{"Pool", "Spa", "Beach Access"},
			Safety: models.SafetyHigh, ScheduledDates: []string{"2025-04-20", "2025-04-21", "2025-04-22"},
			Reviews: []string{"Luxurious experience", "Great amenities", "Expensive but worth it"}},
	}
}

func seedCuisine() []models.Cuisine {
	return []models.Cuisine{
		{ID: "C1", Location: "Paris", CuisineType: "French", Pricing: models.PricingHigh},
		{ID: "C2", Location: "Paris", CuisineType: "Italian", Pricing: models.PricingMedium},
		{ID: "C3", Location: "Paris", CuisineType: "Japanese", Pricing: models.PricingUltraHigh},
		{ID: "C4", Location: "New York", CuisineType: "American", Pricing: models.PricingMedium},
		{ID: "C5", Location: "New York", CuisineType: "Chinese", Pricing: models.PricingLow},
		{ID: "C6", Location: "Tokyo", CuisineType: "Japanese", Pricing: models.PricingHigh},
		{ID: "C7", Location: "Tokyo", CuisineType: "French", Pricing: models.PricingUltraHigh},
		{ID: "C8", Name: "North End Trattoria", Location: boston, CuisineType: "Italian", Pricing: models.PricingMedium},
		{ID: "C9", Name: "Harborside Oyster Bar", Location: boston, CuisineType: "Seafood", Pricing: models.PricingHigh},
		{ID: "C10", Name: "Chinatown Noodle House", Location: boston, CuisineType: "Chinese", Pricing: models.PricingLow},
		{ID: "C11", Name: "Back Bay Bistro", Location: boston, CuisineType: "French", Pricing: models.PricingHigh},
		{ID: "C12", Name: "Kenmore Sushi", Location: boston, CuisineType: "Japanese", Pricing: models.PricingMedium},
	}
}

func seedExperiences() []models.Experience {
	return []models.Experience{
		{ID: "E1", Location: "Paris", Experience: "Eiffel Tower Tour", Pricing: models.PricingHigh},
		{ID: "E2", Location: "Paris", Experience: "Wine Tasting", Pricing: models.PricingMedium},
		{ID: "E3", Location: "Paris", Experience: "Seine River Cruise", Pricing: models.PricingMedium},
		{ID: "E4", Location: "New York", Experience: "Broadway Show", Pricing: models.PricingUltraHigh},
		{ID: "E5", Location: "New York", Experience: "Central Park Picnic", Pricing: models.PricingLow},
		{ID: "E6", Location: "Tokyo", Experience: "Sushi Making Class", Pricing: models.PricingHigh},
		{ID: "E7", Location: "Tokyo", Experience: "Cherry Blossom Viewing", Pricing: models.PricingMedium},
		{ID: "E8", Location: boston, Experience: "Guided historic walking tour of the Freedom Trail", Company: "Freedom Trail Guides", Pricing: models.PricingLow},
		{ID: "E9", Location: boston, Experience: "Charles River kayaking", Company: "Charles River Paddle Co", Pricing: models.PricingMedium},
		{ID: "E10", Location: boston, Experience: "Museum of Fine Arts visit", Pricing: models.PricingMedium},
		{ID: "E11", Location: boston, Experience: "Improv comedy night", Company: "Back Bay Improv", Pricing: models.PricingLow},
		{ID: "E12", Location: boston, Experience: "Harbor sunset cruise", Company: "Boston Harbor Lines", Pricing: models.PricingHigh},
		{ID: "E13", Location: boston, Experience: "Public Garden picnic", Pricing: models.PricingLow},
		{ID: "E14", Location: boston, Experience: "Robotics workshop at the science center", Pricing: models.PricingMedium},
	}
}
