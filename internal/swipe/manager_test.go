package swipe

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelease/internal/common/errors"
	"travelease/internal/common/logger"
	"travelease/internal/models"
)

func testSelection() models.Selection {
	return models.Selection{
		HousingIDs:    []string{"H1", "H2"},
		CuisineIDs:    []string{"C1"},
		ExperienceIDs: []string{"E1", "E2"},
	}
}

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func newTestManager(t *testing.T) *Manager {
	return NewManager(NewMemoryStore(), logger.NewTestLogger(t))
}

func startSession(t *testing.T, m *Manager, user string) {
	_, err := m.Start(context.Background(), user, models.Preferences{}, models.TravelContext{Location: "Boston, USA"}, testSelection())
	require.NoError(t, err)
}

func TestRecordSwipe_Idempotent(t *testing.T) {
	m := newTestManager(t)
	startSession(t, m, "alice")
	ctx := context.Background()

	first, err := m.RecordSwipe(ctx, "alice", "H1", "housing", "like")
	require.NoError(t, err)
	assert.True(t, first.Changed)

	second, err := m.RecordSwipe(ctx, "alice", "H1", "housing", "like")
	require.NoError(t, err)
	assert.False(t, second.Changed)

	assert.Equal(t, first.Likes, second.Likes)
	assert.Equal(t, first.Dislikes, second.Dislikes)
	assert.Equal(t, []string{"H1"}, second.Likes.Housing)
}

func TestRecordSwipe_MutualExclusion(t *testing.T) {
	m := newTestManager(t)
	startSession(t, m, "bob")
	ctx := context.Background()

	actions := []string{"like", "dislike", "right", "left", "like", "like", "dislike"}
	for _, a := range actions {
		res, err := m.RecordSwipe(ctx, "bob", "E1", "experiences", a)
		require.NoError(t, err)

		inLikes := contains(res.Likes.Experience, "E1")
		inDislikes := contains(res.Dislikes.Experience, "E1")
		assert.False(t, inLikes && inDislikes, "E1 in both lists after %s", a)
		assert.True(t, inLikes || inDislikes)
	}

	likes, _, err := m.Finalize(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, likes.Experience, "last action was a dislike")
}

func TestRecordSwipe_InvalidInput(t *testing.T) {
	m := newTestManager(t)
	startSession(t, m, "carol")
	ctx := context.Background()

	tests := []struct {
		name, id, category, action, field string
	}{
		{"empty id", "", "housing", "like", "id"},
		{"blank id", "  ", "housing", "like", "id"},
		{"unknown category", "H1", "flights", "like", "category"},
		{"unknown action", "H1", "housing", "superlike", "action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.RecordSwipe(ctx, "carol", tt.id, tt.category, tt.action)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidInput(err))
			stdErr, ok := errors.AsStandard(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, stdErr.Metadata["field"])
		})
	}

	// nothing was recorded
	likes, _, err := m.Finalize(ctx, "carol")
	require.NoError(t, err)
	assert.True(t, likes.Empty())
}

func TestRecordSwipe_NoSession(t *testing.T) {
	m := newTestManager(t)
	_, err := m.RecordSwipe(context.Background(), "nobody", "H1", "housing", "like")
	assert.Equal(t, errors.ErrCodeSessionNotFound, errors.CodeOf(err))
}

func TestCurrentCard_WalksCategoriesInOrder(t *testing.T) {
	m := newTestManager(t)
	startSession(t, m, "")
	ctx := context.Background()

	var seen []string
	for i := 0; i < 10; i++ {
		card, err := m.CurrentCard(ctx, "")
		require.NoError(t, err)
		if card.Finished {
			break
		}
		seen = append(seen, fmt.Sprintf("%s:%s", card.Category, card.ID))
		_, err = m.RecordSwipe(ctx, "", card.ID, string(card.Category), "like")
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"housing:H1", "housing:H2", "cuisine:C1", "experience:E1", "experience:E2"}, seen)

	card, err := m.CurrentCard(ctx, DefaultUser)
	require.NoError(t, err)
	assert.True(t, card.Finished, "exhaustion is terminal")

	likes, s, err := m.Finalize(ctx, "guest")
	require.NoError(t, err)
	assert.True(t, s.Exhausted)
	assert.Equal(t, models.Likes{
		Housing:    []string{"H1", "H2"},
		Cuisine:    []string{"C1"},
		Experience: []string{"E1", "E2"},
	}, likes)
}

func TestCurrentCard_SkipsEmptyCategories(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	_, err := m.Start(ctx, "dan", models.Preferences{}, models.TravelContext{},
		models.Selection{ExperienceIDs: []string{"E7"}})
	require.NoError(t, err)

	card, err := m.CurrentCard(ctx, "dan")
	require.NoError(t, err)
	assert.Equal(t, Card{Category: models.CategoryExperience, ID: "E7", Index: 0, Total: 1}, *card)
}

func TestStart_ReplacesSession(t *testing.T) {
	m := newTestManager(t)
	startSession(t, m, "erin")
	ctx := context.Background()

	_, err := m.RecordSwipe(ctx, "erin", "H1", "housing", "like")
	require.NoError(t, err)

	startSession(t, m, "erin")
	likes, _, err := m.Finalize(ctx, "erin")
	require.NoError(t, err)
	assert.True(t, likes.Empty())

	require.NoError(t, m.Reset(ctx, "erin"))
	_, _, err = m.Finalize(ctx, "erin")
	assert.Equal(t, errors.ErrCodeSessionNotFound, errors.CodeOf(err))
}

// Concurrent swipes of one user are serialized; none is lost.
func TestRecordSwipe_ConcurrentSameUser(t *testing.T) {
	client, _ := setupRedis(t)
	m := NewManager(NewRedisStore(client, time.Hour), logger.NewTestLogger(t))
	startSession(t, m, "frank")
	ctx := context.Background()

	ids := []string{"H1", "H2", "H3", "H4", "H5", "H6", "H7", "H8"}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := m.RecordSwipe(ctx, "frank", id, "housing", "like")
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	likes, s, err := m.Finalize(ctx, "frank")
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, likes.Housing)
	assert.Equal(t, len(ids), s.Cursor[models.CategoryHousing])
}

func TestSwipeCurrent_ConcurrentCallsTakeDistinctCards(t *testing.T) {
	client, _ := setupRedis(t)
	m := NewManager(NewRedisStore(client, time.Hour), logger.NewTestLogger(t))
	startSession(t, m, "grace")
	ctx := context.Background()

	// testSelection holds five cards
	var wg sync.WaitGroup
	var mu sync.Mutex
	var swiped []string
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := m.SwipeCurrent(ctx, "grace", "right")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			swiped = append(swiped, string(res.Category)+"/"+res.ID)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []string{
		"housing/H1", "housing/H2", "cuisine/C1", "experience/E1", "experience/E2",
	}, swiped)

	likes, _, err := m.Finalize(ctx, "grace")
	require.NoError(t, err)
	assert.Equal(t, []string{"C1"}, likes.Cuisine)
	assert.ElementsMatch(t, []string{"H1", "H2"}, likes.Housing)
	assert.ElementsMatch(t, []string{"E1", "E2"}, likes.Experience)

	_, err = m.SwipeCurrent(ctx, "grace", "like")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestSwipeCurrent_Rejections(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.SwipeCurrent(ctx, "henry", "like")
	assert.Equal(t, errors.ErrCodeSessionNotFound, errors.CodeOf(err))

	startSession(t, m, "henry")
	_, err = m.SwipeCurrent(ctx, "henry", "sideways")
	assert.True(t, errors.IsInvalidInput(err))

	card, err := m.CurrentCard(ctx, "henry")
	require.NoError(t, err)
	assert.Equal(t, "H1", card.ID, "a rejected swipe leaves the cursor alone")
}

func TestRedisStore(t *testing.T) {
	client, mr := setupRedis(t)
	store := NewRedisStore(client, 30*time.Minute)
	ctx := context.Background()

	_, err := store.Get(ctx, "gina")
	assert.ErrorIs(t, err, ErrNotFound)

	s := NewSession("gina", testSelection(), models.Preferences{SafetyLevel: models.SafetyPtr(models.SafetyHigh)},
		models.TravelContext{Location: "Boston, USA"}, time.Now().UTC())
	s.Apply("H2", models.CategoryHousing, models.ActionLike)
	require.NoError(t, store.Put(ctx, s))

	assert.True(t, mr.Exists(RedisKeyPrefix+"gina"))
	assert.Equal(t, 30*time.Minute, mr.TTL(RedisKeyPrefix+"gina"))

	got, err := store.Get(ctx, "gina")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, []string{"H2"}, got.Likes[models.CategoryHousing])
	assert.Equal(t, 1, got.Cursor[models.CategoryHousing])
	assert.Equal(t, models.SafetyHigh, *got.Preferences.SafetyLevel)

	require.NoError(t, store.Delete(ctx, "gina"))
	assert.False(t, mr.Exists(RedisKeyPrefix+"gina"))
}

func TestRedisStore_CorruptValue(t *testing.T) {
	client, mr := setupRedis(t)
	require.NoError(t, mr.Set(RedisKeyPrefix+"hank", "{not json"))

	_, err := NewRedisStore(client, 0).Get(context.Background(), "hank")
	assert.Equal(t, errors.ErrCodeStoreFailed, errors.CodeOf(err))
}

func TestMemoryStore_CopiesSessions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	s := NewSession("ivy", testSelection(), models.Preferences{}, models.TravelContext{}, time.Now())
	require.NoError(t, store.Put(ctx, s))

	s.Apply("H1", models.CategoryHousing, models.ActionLike)

	got, err := store.Get(ctx, "ivy")
	require.NoError(t, err)
	assert.Empty(t, got.Likes[models.CategoryHousing])
}
