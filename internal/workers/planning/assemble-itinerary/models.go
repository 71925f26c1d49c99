package assembleitinerary

import (
	"context"

	"travelease/internal/models"
)

type Input struct {
	Username   string               `json:"username,omitempty"`
	Likes      models.Likes         `json:"likes"`
	TravelInfo models.TravelContext `json:"travelInfo"`
}

// Output is merged back into the process instance. ItineraryEmpty lets a
// gateway route around a failed assembly without inspecting the document.
type Output struct {
	Itinerary      models.Itinerary `json:"itinerary"`
	ItineraryEmpty bool             `json:"itineraryEmpty"`
}

type Planner interface {
	Itinerary(ctx context.Context, user string, likes models.Likes, tc models.TravelContext) models.Itinerary
}
