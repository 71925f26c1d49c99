// Package itinerary assembles a day-by-day plan from the listings a user
// liked. Assembly never fails: any problem yields the empty skeleton.
package itinerary

import (
	"context"
	"encoding/json"
	"time"

	"travelease/internal/catalog"
	"travelease/internal/common/logger"
	"travelease/internal/common/metrics"
	"travelease/internal/common/validation"
	"travelease/internal/lookup"
	"travelease/internal/models"
	"travelease/internal/oracle"
	"travelease/internal/userstore"
)

const itineraryPrompt = `You are a travel planner building a day-by-day itinerary.
Use only the liked listings you are given, referenced by id.
Each day has one housing id, dining ids and experience ids.
Use the weather to write a packing list and pick nearby events.
Answer with one JSON object: {"itinerary": [{"day": 1, "date": "...", "housing": "H1", "dining": [...], "experiences": [...], "notes": "..."}], "packing_list": [...], "events": [...]}.`

// Assembler builds itineraries through the oracle.
type Assembler struct {
	store   *catalog.Store
	adapter *oracle.Adapter
	lookup  lookup.Service
	users   userstore.Store
	logger  logger.Logger
	now     func() time.Time
}

// NewAssembler wires an assembler. lk and users may be nil.
func NewAssembler(store *catalog.Store, adapter *oracle.Adapter, lk lookup.Service, users userstore.Store, log logger.Logger) *Assembler {
	return &Assembler{
		store:   store,
		adapter: adapter,
		lookup:  lk,
		users:   users,
		logger:  log.With(map[string]interface{}{"component": "itinerary"}),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Assemble plans the trip in tc from likes. Dislikes are not consulted.
// Every ID in the result was liked and exists in the catalog.
func (a *Assembler) Assemble(ctx context.Context, user string, likes models.Likes, tc models.TravelContext) models.Itinerary {
	liked := a.store.Details(likes.Housing, likes.Cuisine, likes.Experience)

	req := &oracle.Request{
		Operation: oracle.OperationItinerary,
		Prompt:    itineraryPrompt,
		Context: map[string]interface{}{
			"liked":       liked,
			"travel_info": tc,
			"weather":     a.weather(ctx, tc),
			"events":      a.events(ctx, tc),
		},
	}

	resp, err := a.adapter.Invoke(ctx, req)
	if err != nil {
		return a.empty(user, "oracle_failed", err)
	}

	it, err := decodeItinerary(resp.Text)
	if err != nil {
		return a.empty(user, "malformed_answer", err)
	}

	it = Restrict(it, liked)
	a.record(ctx, user, likes, tc, it)
	a.logger.Info("Itinerary assembled", map[string]interface{}{
		"user":      user,
		"requestId": req.ID,
		"days":      len(it.Itinerary),
	})
	return it
}

func (a *Assembler) empty(user, reason string, cause error) models.Itinerary {
	metrics.OracleFallbacks.WithLabelValues(oracle.OperationItinerary, reason).Inc()
	a.logger.Warn("Returning empty itinerary", map[string]interface{}{
		"user":   user,
		"reason": reason,
		"error":  cause.Error(),
	})
	return models.EmptyItinerary()
}

func (a *Assembler) weather(ctx context.Context, tc models.TravelContext) string {
	if a.lookup == nil {
		return ""
	}
	return a.lookup.Weather(ctx, tc.Location, tripMonth(tc.Dates))
}

func (a *Assembler) events(ctx context.Context, tc models.TravelContext) string {
	if a.lookup == nil {
		return ""
	}
	start, end := "", ""
	if len(tc.Dates) > 0 {
		start, end = tc.Dates[0], tc.Dates[len(tc.Dates)-1]
	}
	return a.lookup.Events(ctx, tc.Location, start, end)
}

// tripMonth names the month of the first ISO date, or "" when there is none.
func tripMonth(dates []string) string {
	for _, d := range dates {
		if t, err := time.Parse("2006-01-02", d); err == nil {
			return t.Month().String()
		}
	}
	return ""
}

func (a *Assembler) record(ctx context.Context, user string, likes models.Likes, tc models.TravelContext, it models.Itinerary) {
	if a.users == nil || user == "" {
		return
	}
	entry := map[string]interface{}{
		"type":       "itinerary",
		"created_at": a.now().Format(time.RFC3339),
		"location":   tc.Location,
		"likes":      likes,
		"itinerary":  it,
	}
	if err := userstore.AppendHistory(ctx, a.users, user, entry); err != nil {
		a.logger.Warn("Recording itinerary history failed", map[string]interface{}{"user": user, "error": err.Error()})
	}
}

func decodeItinerary(text string) (models.Itinerary, error) {
	raw, err := oracle.ExtractJSON(text)
	if err != nil {
		return models.Itinerary{}, err
	}
	if res := validation.ItinerarySchema.ValidateJSON(raw); !res.Valid {
		return models.Itinerary{}, res.Err()
	}
	var it models.Itinerary
	if err := json.Unmarshal(raw, &it); err != nil {
		return models.Itinerary{}, err
	}
	return it, nil
}

// Restrict drops every slot that does not reference a liked listing present
// in liked, and normalizes nil lists to empty ones.
func Restrict(it models.Itinerary, liked catalog.Details) models.Itinerary {
	housing := make(map[string]bool, len(liked.Housing))
	for _, h := range liked.Housing {
		housing[h.ID] = true
	}
	cuisine := make(map[string]bool, len(liked.Cuisine))
	for _, c := range liked.Cuisine {
		cuisine[c.ID] = true
	}
	experience := make(map[string]bool, len(liked.Experience))
	for _, e := range liked.Experience {
		experience[e.ID] = true
	}

	out := models.EmptyItinerary()
	for _, day := range it.Itinerary {
		if !housing[day.Housing] {
			day.Housing = ""
		}
		day.Dining = keep(day.Dining, cuisine)
		day.Experiences = keep(day.Experiences, experience)
		out.Itinerary = append(out.Itinerary, day)
	}
	if it.PackingList != nil {
		out.PackingList = it.PackingList
	}
	if it.Events != nil {
		out.Events = it.Events
	}
	return out
}

func keep(ids []string, allowed map[string]bool) []string {
	out := []string{}
	for _, id := range ids {
		if allowed[id] {
			out = append(out, id)
		}
	}
	return out
}
