package planner

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelease/internal/catalog"
	"travelease/internal/common/errors"
	"travelease/internal/common/logger"
	"travelease/internal/itinerary"
	"travelease/internal/lookup"
	"travelease/internal/models"
	"travelease/internal/oracle"
	"travelease/internal/recommend"
	"travelease/internal/swipe"
	"travelease/internal/userstore"
)

type fixture struct {
	svc   *Service
	store *catalog.Store
	users *userstore.MemoryStore
}

func setup(t *testing.T, o oracle.Oracle) fixture {
	t.Helper()
	store, err := catalog.NewMemorySource().Load(context.Background())
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	users := userstore.NewMemoryStore()
	adapter := oracle.NewAdapter(o, oracle.AdapterConfig{Timeout: time.Second}, log, nil)
	assembler := itinerary.NewAssembler(store, adapter, lookup.Static{}, users, log)

	svc := NewService(Config{ShortlistLimit: 10}, Dependencies{
		Catalog:   store,
		Adapter:   adapter,
		Assembler: assembler,
		Swipes:    swipe.NewManager(swipe.NewMemoryStore(), log),
		Users:     users,
		Logger:    log,
	})
	return fixture{svc: svc, store: store, users: users}
}

func bostonRequest() PlanRequest {
	return PlanRequest{
		Username:      "alice",
		Preferences:   &models.Preferences{ExperienceTypes: []string{catalog.KeywordHistoric, catalog.KeywordAdventure}},
		TravelContext: &models.TravelContext{Location: "Boston, USA", Travelers: 2},
	}
}

func firstK(ids []string, k int) []string {
	if len(ids) > k {
		return ids[:k]
	}
	return ids
}

func TestPlan_WithoutOracleFallsBackToShortlistHeads(t *testing.T) {
	f := setup(t, nil)
	req := bostonRequest()

	got, err := f.svc.Plan(context.Background(), req)
	require.NoError(t, err)

	sl := recommend.BuildShortlists(f.store, *req.Preferences, *req.TravelContext, 10)
	require.NotEmpty(t, sl.IDs(models.CategoryHousing))

	assert.True(t, got.Fallback)
	assert.Equal(t, firstK(sl.IDs(models.CategoryHousing), 3), got.HousingIDs)
	assert.Equal(t, firstK(sl.IDs(models.CategoryCuisine), 3), got.CuisineIDs)
	assert.Equal(t, firstK(sl.IDs(models.CategoryExperience), 3), got.ExperienceIDs)
	assert.Equal(t, "Boston, USA", got.TravelContext.Location)
	for _, c := range models.Categories {
		assert.Equal(t, sl.PoolSize(c), got.PoolSizes[c], c)
		assert.GreaterOrEqual(t, got.PoolSizes[c], sl.Len(c), c)
	}

	u, err := f.users.Get(context.Background(), "alice")
	require.NoError(t, err)
	state := u[userstore.KeyState].(map[string]interface{})
	assert.Equal(t, StagePlan, state["stage"])
}

func TestPlan_OracleSelectionIsWhitelisted(t *testing.T) {
	var offered []string
	o := oracle.Func(func(ctx context.Context, req *oracle.Request) (*oracle.Response, error) {
		offered = req.Context["valid_housing_ids"].([]string)
		resp := &oracle.Response{}
		for _, id := range offered {
			resp.Inspections = append(resp.Inspections, oracle.Inspection{Tool: oracle.ToolInspectListing, ID: id})
		}
		answer, _ := json.Marshal(map[string][]string{
			"housing_ids":    {offered[len(offered)-1], "H99"},
			"cuisine_ids":    {"C1"},
			"experience_ids": {},
		})
		resp.Text = "Here you go:\n" + string(answer)
		return resp, nil
	})
	f := setup(t, o)

	got, err := f.svc.Plan(context.Background(), bostonRequest())
	require.NoError(t, err)

	require.NotEmpty(t, offered)
	assert.False(t, got.Fallback)
	assert.Equal(t, []string{offered[len(offered)-1]}, got.HousingIDs, "H99 was never offered")
	assert.Empty(t, got.CuisineIDs, "C1 is a Paris listing")
	assert.NotNil(t, got.CuisineIDs)
}

func TestPlan_InvalidInput(t *testing.T) {
	negative := -1
	tests := []struct {
		name  string
		req   PlanRequest
		field string
	}{
		{
			name:  "missing location",
			req:   PlanRequest{Preferences: &models.Preferences{}, TravelContext: &models.TravelContext{}},
			field: "travel_info.location",
		},
		{
			name: "inverted price range",
			req: PlanRequest{
				Preferences:   &models.Preferences{PriceRange: models.PriceRange{Min: 200, Max: 100}},
				TravelContext: &models.TravelContext{Location: "Boston, USA"},
			},
			field: "user_preferences.price_range",
		},
		{
			name: "unknown safety",
			req: PlanRequest{
				Preferences:   &models.Preferences{SafetyLevel: models.SafetyPtr("Extreme")},
				TravelContext: &models.TravelContext{Location: "Boston, USA"},
			},
			field: "user_preferences.safety_level",
		},
		{
			name:  "negative travelers",
			req:   PlanRequest{FreeformText: "Boston", Travelers: &negative},
			field: "travelers",
		},
	}

	f := setup(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Plan(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidInput(err))
			stdErr, _ := errors.AsStandard(err)
			assert.Equal(t, tt.field, stdErr.Metadata["field"])
		})
	}
}

func TestResolve_FreeformWithOverrides(t *testing.T) {
	f := setup(t, nil)
	three := 3

	prefs, tc, err := f.svc.Resolve(PlanRequest{
		FreeformText: "Two of us heading to Paris for French food and a museum or two",
		Dates:        []string{"2025-05-01", "2025-05-03"},
		Travelers:    &three,
	})
	require.NoError(t, err)

	assert.Equal(t, "Paris, France", tc.Location)
	assert.Equal(t, []string{"2025-05-01", "2025-05-03"}, tc.Dates)
	assert.Equal(t, 3, tc.Travelers)
	assert.Equal(t, []string{"French"}, prefs.CuisineTypes)
	assert.Equal(t, models.SafetyHigh, *prefs.SafetyLevel)
}

func TestResolve_HalfExplicitUsesExtraction(t *testing.T) {
	f := setup(t, nil)

	_, tc, err := f.svc.Resolve(PlanRequest{
		Preferences: &models.Preferences{HousingType: []string{"Hostel"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Boston, USA", tc.Location)
}

func TestSwipeFlow(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	result, sess, err := f.svc.StartSwipes(ctx, bostonRequest())
	require.NoError(t, err)
	assert.Equal(t, result.HousingIDs, sess.Candidates[models.CategoryHousing])

	card, err := f.svc.Swipes().CurrentCard(ctx, "alice")
	require.NoError(t, err)
	require.False(t, card.Finished)
	_, err = f.svc.Swipes().RecordSwipe(ctx, "alice", card.ID, string(card.Category), "right")
	require.NoError(t, err)

	likes, it, err := f.svc.FinishSwipes(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{card.ID}, likes.IDs(card.Category))
	assert.Equal(t, models.EmptyItinerary(), it, "no oracle means the empty skeleton")
}

func TestFinishSwipes_NoSession(t *testing.T) {
	f := setup(t, nil)
	_, _, err := f.svc.FinishSwipes(context.Background(), "nobody")
	assert.Equal(t, errors.ErrCodeSessionNotFound, errors.CodeOf(err))
}

func TestDetails_OmitsUnknownIDs(t *testing.T) {
	f := setup(t, nil)
	d := f.svc.Details([]string{"H1", "H404"}, []string{"C404"}, []string{"E8"})

	require.Len(t, d.Housing, 1)
	assert.Equal(t, "H1", d.Housing[0].ID)
	assert.Empty(t, d.Cuisine)
	require.Len(t, d.Experience, 1)
	assert.Equal(t, catalog.KeywordHistoric, d.Experience[0].Keyword)
}
