// internal/models/itinerary.go
package models

// Itinerary is the day-structured plan assembled from liked listings.
type Itinerary struct {
	Itinerary   []ItineraryDay `json:"itinerary"`
	PackingList []string       `json:"packing_list"`
	Events      []string       `json:"events"`
}

// ItineraryDay fills one day's housing, dining and experience slots with
// listing IDs.
type ItineraryDay struct {
	Day         int      `json:"day"`
	Date        string   `json:"date,omitempty"`
	Housing     string   `json:"housing,omitempty"`
	Dining      []string `json:"dining"`
	Experiences []string `json:"experiences"`
	Notes       string   `json:"notes,omitempty"`
}

// EmptyItinerary is the skeleton returned whenever assembly fails. Slices are
// non-nil so they encode as [] rather than null.
func EmptyItinerary() Itinerary {
	return Itinerary{
		Itinerary:   []ItineraryDay{},
		PackingList: []string{},
		Events:      []string{},
	}
}

// IsEmpty reports whether the itinerary has no content at all.
func (it Itinerary) IsEmpty() bool {
	return len(it.Itinerary) == 0 && len(it.PackingList) == 0 && len(it.Events) == 0
}
