package assembleitinerary

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"travelease/internal/common/config"
	"travelease/internal/common/errors"
	"travelease/internal/common/logger"
	"travelease/internal/models"
)

type MockPlanner struct {
	mock.Mock
}

func (m *MockPlanner) Itinerary(ctx context.Context, user string, likes models.Likes, tc models.TravelContext) models.Itinerary {
	args := m.Called(ctx, user, likes, tc)
	return args.Get(0).(models.Itinerary)
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "travel-planning",
		ElementId:          "Activity_AssembleItinerary",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func newTestHandler(t *testing.T, p Planner) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: DefaultConfig(),
		Planner:      p,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, &MockPlanner{})

	job := createMockJob(1, map[string]interface{}{
		"username": "alice",
		"likes": map[string]interface{}{
			"housing":     []string{"H1"},
			"cuisine":     []string{"C8", "C9"},
			"experiences": []string{"E8"},
		},
		"travelInfo": map[string]interface{}{
			"location": "Boston, USA",
			"dates":    []string{"2025-02-01", "2025-02-03"},
		},
	})

	input, err := h.parseInput(job)
	require.NoError(t, err)
	assert.Equal(t, "alice", input.Username)
	assert.Equal(t, models.Likes{
		Housing:    []string{"H1"},
		Cuisine:    []string{"C8", "C9"},
		Experience: []string{"E8"},
	}, input.Likes)
	assert.Equal(t, []string{"2025-02-01", "2025-02-03"}, input.TravelInfo.Dates)
}

func TestHandler_ParseInput_Invalid(t *testing.T) {
	h := newTestHandler(t, &MockPlanner{})

	tests := []struct {
		name string
		vars map[string]interface{}
	}{
		{"missing likes", map[string]interface{}{
			"travelInfo": map[string]interface{}{"location": "Boston, USA"},
		}},
		{"missing travel info", map[string]interface{}{
			"likes": map[string]interface{}{"housing": []string{"H1"}},
		}},
		{"likes ids are not strings", map[string]interface{}{
			"likes":      map[string]interface{}{"housing": []int{1}},
			"travelInfo": map[string]interface{}{"location": "Boston, USA"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.parseInput(createMockJob(2, tt.vars))
			require.Error(t, err)
			assert.True(t, errors.IsInvalidInput(err))
		})
	}
}

func TestHandler_Execute(t *testing.T) {
	likes := models.Likes{Housing: []string{"H1"}, Experience: []string{"E8"}}
	tc := models.TravelContext{Location: "Boston, USA"}

	t.Run("assembled", func(t *testing.T) {
		mp := &MockPlanner{}
		h := newTestHandler(t, mp)
		it := models.Itinerary{
			Itinerary:   []models.ItineraryDay{{Day: 1, Housing: "H1", Dining: []string{}, Experiences: []string{"E8"}}},
			PackingList: []string{"umbrella"},
			Events:      []string{},
		}
		mp.On("Itinerary", mock.Anything, "alice", likes, tc).Return(it)

		out := h.Execute(context.Background(), &Input{Username: "alice", Likes: likes, TravelInfo: tc})
		assert.Equal(t, it, out.Itinerary)
		assert.False(t, out.ItineraryEmpty)
		mp.AssertExpectations(t)
	})

	t.Run("empty skeleton", func(t *testing.T) {
		mp := &MockPlanner{}
		h := newTestHandler(t, mp)
		mp.On("Itinerary", mock.Anything, "", likes, tc).Return(models.EmptyItinerary())

		out := h.Execute(context.Background(), &Input{Likes: likes, TravelInfo: tc})
		assert.True(t, out.ItineraryEmpty)

		raw, err := json.Marshal(out)
		require.NoError(t, err)
		assert.JSONEq(t, `{"itinerary":{"itinerary":[],"packing_list":[],"events":[]},"itineraryEmpty":true}`, string(raw))
	})
}

func TestHandler_NewHandler_RequiresPlanner(t *testing.T) {
	_, err := NewHandler(HandlerOptions{CustomConfig: DefaultConfig(), Logger: logger.NewNoOpLogger()})
	require.Error(t, err)
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	cfg := createConfigFromAppConfig(nil, nil)
	assert.Equal(t, 125*time.Second, cfg.Timeout)
	assert.True(t, cfg.Enabled)

	appCfg := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: true, Timeout: 90000},
	}}
	cfg = createConfigFromAppConfig(appCfg, nil)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxJobsActive)
}
