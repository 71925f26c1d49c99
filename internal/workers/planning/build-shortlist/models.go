package buildshortlist

import (
	"context"

	"travelease/internal/models"
	"travelease/internal/planner"
)

// Input is the job's process variables.
type Input struct {
	Username    string               `json:"username,omitempty"`
	Preferences *models.Preferences  `json:"preferences,omitempty"`
	TravelInfo  models.TravelContext `json:"travelInfo"`
}

// Output is merged back into the process instance.
type Output struct {
	HousingIDs    []string             `json:"housingIds"`
	CuisineIDs    []string             `json:"cuisineIds"`
	ExperienceIDs []string             `json:"experienceIds"`
	Fallback      bool                 `json:"fallback"`
	TravelInfo    models.TravelContext `json:"travelInfo"`
}

// Planner is the part of planner.Service the worker drives.
type Planner interface {
	Plan(ctx context.Context, req planner.PlanRequest) (*planner.PlanResult, error)
}
