// Package planner runs the recommendation pipeline end to end: resolve the
// trip, shortlist the catalog, let the oracle select, collect swipes and
// assemble the itinerary.
package planner

import (
	"context"
	"strings"
	"time"

	"travelease/internal/catalog"
	"travelease/internal/common/errors"
	"travelease/internal/common/logger"
	"travelease/internal/common/metrics"
	"travelease/internal/common/observability"
	"travelease/internal/extract"
	"travelease/internal/itinerary"
	"travelease/internal/models"
	"travelease/internal/oracle"
	"travelease/internal/recommend"
	"travelease/internal/swipe"
	"travelease/internal/userstore"
)

// Pipeline stages, used as observability labels.
const (
	StagePlan      = "plan"
	StageItinerary = "itinerary"
	StageSwipe     = "swipe"
)

// PlanRequest carries either explicit preferences and travel info, or
// freeform text with optional date and traveler overrides. The explicit form
// is used only when both objects are present.
type PlanRequest struct {
	Username      string                `json:"username,omitempty"`
	FreeformText  string                `json:"freeform_text,omitempty"`
	Dates         []string              `json:"dates,omitempty"`
	Travelers     *int                  `json:"travelers,omitempty"`
	Preferences   *models.Preferences   `json:"user_preferences,omitempty"`
	TravelContext *models.TravelContext `json:"travel_info,omitempty"`
}

// PlanResult is the oracle's selection plus the resolved inputs.
type PlanResult struct {
	HousingIDs    []string             `json:"housing_ids"`
	CuisineIDs    []string             `json:"cuisine_ids"`
	ExperienceIDs []string             `json:"experience_ids"`
	Preferences   models.Preferences   `json:"user_preferences"`
	TravelContext models.TravelContext `json:"travel_info"`
	Fallback      bool                 `json:"fallback"`
	// PoolSizes counts the filtered listings per category the shortlists
	// were cut from.
	PoolSizes map[models.Category]int `json:"pool_sizes,omitempty"`
}

func (r *PlanResult) selection() models.Selection {
	return models.Selection{HousingIDs: r.HousingIDs, CuisineIDs: r.CuisineIDs, ExperienceIDs: r.ExperienceIDs, Fallback: r.Fallback}
}

// Config tunes the pipeline.
type Config struct {
	ShortlistLimit int
}

// Dependencies are the collaborators of a Service. Users and Obs may be nil.
type Dependencies struct {
	Catalog   *catalog.Store
	Adapter   *oracle.Adapter
	Assembler *itinerary.Assembler
	Swipes    *swipe.Manager
	Users     userstore.Store
	Obs       *observability.Observability
	Logger    logger.Logger
}

// Service is the planner pipeline.
type Service struct {
	config    Config
	catalog   *catalog.Store
	adapter   *oracle.Adapter
	assembler *itinerary.Assembler
	swipes    *swipe.Manager
	users     userstore.Store
	obs       *observability.Observability
	logger    logger.Logger
}

func NewService(cfg Config, deps Dependencies) *Service {
	return &Service{
		config:    cfg,
		catalog:   deps.Catalog,
		adapter:   deps.Adapter,
		assembler: deps.Assembler,
		swipes:    deps.Swipes,
		users:     deps.Users,
		obs:       deps.Obs,
		logger:    deps.Logger.With(map[string]interface{}{"component": "planner"}),
	}
}

// Catalog returns the listing store the service plans from.
func (s *Service) Catalog() *catalog.Store {
	return s.catalog
}

// Plan resolves req, shortlists the catalog and asks the oracle to select.
// Only INVALID_INPUT errors are returned; oracle trouble ends in the
// deterministic fallback.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	start := time.Now()

	prefs, tc, err := s.Resolve(req)
	if err != nil {
		s.obs.RecordPipelineRun(ctx, StagePlan, "invalid", time.Since(start))
		return nil, err
	}

	sl := recommend.BuildShortlists(s.catalog, prefs, tc, s.config.ShortlistLimit)
	pools := make(map[models.Category]int, len(models.Categories))
	for _, c := range models.Categories {
		pools[c] = sl.PoolSize(c)
		metrics.FilteredPoolSize.WithLabelValues(string(c)).Observe(float64(pools[c]))
		metrics.ShortlistSize.WithLabelValues(string(c)).Observe(float64(sl.Len(c)))
	}

	sel := s.adapter.RequestShortlistSelection(ctx, prefs, tc, sl)
	result := &PlanResult{
		HousingIDs:    sel.HousingIDs,
		CuisineIDs:    sel.CuisineIDs,
		ExperienceIDs: sel.ExperienceIDs,
		Preferences:   prefs,
		TravelContext: tc,
		Fallback:      sel.Fallback,
		PoolSizes:     pools,
	}

	user := swipe.NormalizeUser(req.Username)
	s.remember(ctx, user, map[string]interface{}{
		userstore.KeyPreferences: prefs,
		userstore.KeyState: map[string]interface{}{
			"stage":          StagePlan,
			"travel_info":    tc,
			"housing_ids":    result.HousingIDs,
			"cuisine_ids":    result.CuisineIDs,
			"experience_ids": result.ExperienceIDs,
		},
	})

	status := "ok"
	if sel.Fallback {
		status = "fallback"
	}
	s.obs.RecordPipelineRun(ctx, StagePlan, status, time.Since(start))
	s.logger.Info("Plan built", map[string]interface{}{
		"user":        user,
		"location":    tc.Location,
		"housing":     len(result.HousingIDs),
		"cuisine":     len(result.CuisineIDs),
		"experiences": len(result.ExperienceIDs),
		"pools":       pools,
		"fallback":    sel.Fallback,
		"reason":      sel.Reason,
	})
	return result, nil
}

// Resolve turns a request into preferences and travel context.
func (s *Service) Resolve(req PlanRequest) (models.Preferences, models.TravelContext, error) {
	if req.Travelers != nil && *req.Travelers < 0 {
		return models.Preferences{}, models.TravelContext{}, errors.NewInvalidInputError("travelers", "must not be negative")
	}

	if req.Preferences != nil && req.TravelContext != nil {
		prefs, tc := *req.Preferences, *req.TravelContext
		if err := validateExplicit(prefs, tc); err != nil {
			return models.Preferences{}, models.TravelContext{}, err
		}
		if tc.Dates == nil {
			tc.Dates = []string{}
		}
		return prefs, tc, nil
	}

	extracted := extract.Extract(req.FreeformText, s.catalog.Locations())
	if len(req.Dates) > 0 {
		extracted.Dates = req.Dates
	}
	if req.Travelers != nil {
		extracted.Travelers = *req.Travelers
	}
	prefs, tc := extracted.Resolve()
	return prefs, tc, nil
}

func validateExplicit(prefs models.Preferences, tc models.TravelContext) error {
	if strings.TrimSpace(tc.Location) == "" {
		return errors.NewInvalidInputError("travel_info.location", "location is required")
	}
	if tc.Travelers < 0 {
		return errors.NewInvalidInputError("travel_info.travelers", "must not be negative")
	}
	if prefs.PriceRange.Min > prefs.PriceRange.Max {
		return errors.NewInvalidInputError("user_preferences.price_range", "min is greater than max")
	}
	if safety, ok := prefs.SafetyConstraint(); ok {
		if _, valid := models.ParseSafety(string(safety)); !valid {
			return errors.NewInvalidInputError("user_preferences.safety_level", "unknown safety level "+string(safety))
		}
	}
	return nil
}

// Itinerary assembles the trip from likes. It never fails; on any oracle
// problem the result is the empty skeleton.
func (s *Service) Itinerary(ctx context.Context, user string, likes models.Likes, tc models.TravelContext) models.Itinerary {
	start := time.Now()
	user = swipe.NormalizeUser(user)

	it := s.assembler.Assemble(ctx, user, likes, tc)

	status := "ok"
	if it.IsEmpty() {
		status = "empty"
	}
	s.obs.RecordPipelineRun(ctx, StageItinerary, status, time.Since(start))
	s.remember(ctx, user, map[string]interface{}{
		userstore.KeyState: map[string]interface{}{"stage": StageItinerary},
	})
	return it
}

// Details resolves listing IDs to detail views, omitting unknown IDs.
func (s *Service) Details(housingIDs, cuisineIDs, experienceIDs []string) catalog.Details {
	return s.catalog.Details(housingIDs, cuisineIDs, experienceIDs)
}

// StartSwipes plans req and opens a swipe session over the selection,
// replacing any session the user had.
func (s *Service) StartSwipes(ctx context.Context, req PlanRequest) (*PlanResult, *swipe.Session, error) {
	result, err := s.Plan(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	sess, err := s.swipes.Start(ctx, req.Username, result.Preferences, result.TravelContext, result.selection())
	if err != nil {
		return nil, nil, err
	}
	return result, sess, nil
}

// Swipes exposes the session manager for the card-by-card operations.
func (s *Service) Swipes() *swipe.Manager {
	return s.swipes
}

// FinishSwipes reads the user's likes and assembles the itinerary for the
// session's trip. The session is left in place.
func (s *Service) FinishSwipes(ctx context.Context, user string) (models.Likes, models.Itinerary, error) {
	start := time.Now()
	likes, sess, err := s.swipes.Finalize(ctx, user)
	if err != nil {
		s.obs.RecordPipelineRun(ctx, StageSwipe, "no_session", time.Since(start))
		return models.Likes{}, models.Itinerary{}, err
	}
	s.obs.RecordPipelineRun(ctx, StageSwipe, "finalized", time.Since(start))
	return likes, s.Itinerary(ctx, sess.User, likes, sess.TravelContext), nil
}

func (s *Service) remember(ctx context.Context, user string, updates map[string]interface{}) {
	if s.users == nil {
		return
	}
	if _, err := s.users.Update(ctx, user, updates); err != nil {
		s.logger.Warn("Updating user store failed", map[string]interface{}{
			"user":  user,
			"error": err.Error(),
		})
	}
}
