package itinerary

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelease/internal/catalog"
	"travelease/internal/common/logger"
	"travelease/internal/lookup"
	"travelease/internal/models"
	"travelease/internal/oracle"
	"travelease/internal/userstore"
)

func setupAssembler(t *testing.T, o oracle.Oracle, users userstore.Store) *Assembler {
	store, err := catalog.NewMemorySource().Load(context.Background())
	require.NoError(t, err)
	log := logger.NewTestLogger(t)
	adapter := oracle.NewAdapter(o, oracle.AdapterConfig{Timeout: 50 * time.Millisecond}, log, nil)
	lk := lookup.Static{WeatherText: "cold, bring a coat", EventsText: "Harborfest"}
	return NewAssembler(store, adapter, lk, users, log)
}

var bostonTrip = models.TravelContext{Location: "Boston, USA", Dates: []string{"2025-02-10", "2025-02-11"}, Travelers: 2}

func TestAssemble_OracleFailuresYieldEmptySkeleton(t *testing.T) {
	tests := []struct {
		name   string
		oracle oracle.Oracle
	}{
		{"timeout", oracle.Func(func(ctx context.Context, req *oracle.Request) (*oracle.Response, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})},
		{"error", oracle.Func(func(ctx context.Context, req *oracle.Request) (*oracle.Response, error) {
			return nil, stderrors.New("upstream exploded")
		})},
		{"not json", oracle.Func(func(ctx context.Context, req *oracle.Request) (*oracle.Response, error) {
			return &oracle.Response{Text: "Day 1: go to the harbor"}, nil
		})},
		{"wrong shape", oracle.Func(func(ctx context.Context, req *oracle.Request) (*oracle.Response, error) {
			return &oracle.Response{Text: `{"itinerary": [{"day": 0}]}`}, nil
		})},
		{"no oracle", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := setupAssembler(t, tt.oracle, nil)
			got := a.Assemble(context.Background(), "guest", models.Likes{Housing: []string{"H1"}}, bostonTrip)

			assert.Equal(t, models.EmptyItinerary(), got)
			assert.JSONEq(t, `{"itinerary": [], "packing_list": [], "events": []}`, mustJSON(t, got))
		})
	}
}

func TestAssemble_KeepsOnlyLikedIDs(t *testing.T) {
	var sent *oracle.Request
	o := oracle.Func(func(ctx context.Context, req *oracle.Request) (*oracle.Response, error) {
		sent = req
		return &oracle.Response{Text: "```json\n" + `{
			"itinerary": [
				{"day": 1, "date": "2025-02-10", "housing": "H1", "dining": ["C8", "C9"], "experiences": ["E8", "E99"]},
				{"day": 2, "date": "2025-02-11", "housing": "H4", "dining": ["C8"], "experiences": []}
			],
			"packing_list": ["coat"],
			"events": ["Harborfest"]
		}` + "\n```"}, nil
	})

	users := userstore.NewMemoryStore()
	a := setupAssembler(t, o, users)
	likes := models.Likes{Housing: []string{"H1", "H404"}, Cuisine: []string{"C8"}, Experience: []string{"E8"}}

	got := a.Assemble(context.Background(), "alice", likes, bostonTrip)

	require.Len(t, got.Itinerary, 2)
	assert.Equal(t, models.ItineraryDay{Day: 1, Date: "2025-02-10", Housing: "H1", Dining: []string{"C8"}, Experiences: []string{"E8"}}, got.Itinerary[0])
	assert.Equal(t, "", got.Itinerary[1].Housing, "H4 was not liked")
	assert.Equal(t, []string{"coat"}, got.PackingList)
	assert.Equal(t, []string{"Harborfest"}, got.Events)

	require.NotNil(t, sent)
	assert.Equal(t, oracle.OperationItinerary, sent.Operation)
	assert.Equal(t, "cold, bring a coat", sent.Context["weather"])
	assert.Equal(t, "Harborfest", sent.Context["events"])
	liked := sent.Context["liked"].(catalog.Details)
	require.Len(t, liked.Housing, 1, "unknown liked IDs are not sent")
	assert.Equal(t, "H1", liked.Housing[0].ID)

	u, err := users.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, u.History(), 1)
}

func TestRestrict_NilListsBecomeEmpty(t *testing.T) {
	got := Restrict(models.Itinerary{Itinerary: []models.ItineraryDay{{Day: 1}}}, catalog.Details{})
	require.Len(t, got.Itinerary, 1)
	assert.NotNil(t, got.Itinerary[0].Dining)
	assert.NotNil(t, got.Itinerary[0].Experiences)
	assert.NotNil(t, got.PackingList)
	assert.NotNil(t, got.Events)
}

func TestTripMonth(t *testing.T) {
	assert.Equal(t, "February", tripMonth([]string{"Feb 10", "2025-02-11"}))
	assert.Equal(t, "", tripMonth(nil))
}

type recordingLookup struct {
	weather, events [][]string
}

func (r *recordingLookup) Weather(_ context.Context, location, month string) string {
	r.weather = append(r.weather, []string{location, month})
	return ""
}

func (r *recordingLookup) Events(_ context.Context, location, start, end string) string {
	r.events = append(r.events, []string{location, start, end})
	return ""
}

func TestAssemble_LookupArguments(t *testing.T) {
	store, err := catalog.NewMemorySource().Load(context.Background())
	require.NoError(t, err)
	log := logger.NewTestLogger(t)
	rec := &recordingLookup{}
	a := NewAssembler(store, oracle.NewAdapter(nil, oracle.AdapterConfig{}, log, nil), rec, nil, log)

	a.Assemble(context.Background(), "guest", models.Likes{}, bostonTrip)

	assert.Equal(t, [][]string{{"Boston, USA", "February"}}, rec.weather)
	assert.Equal(t, [][]string{{"Boston, USA", "2025-02-10", "2025-02-11"}}, rec.events)
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}
