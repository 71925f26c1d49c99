// internal/swipe/manager.go
package swipe

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"travelease/internal/common/errors"
	"travelease/internal/common/logger"
	"travelease/internal/common/metrics"
	"travelease/internal/models"
)

// SwipeResult reports the session after one swipe.
type SwipeResult struct {
	ID       string             `json:"id"`
	Category models.Category    `json:"category"`
	Action   models.SwipeAction `json:"action"`
	Changed  bool               `json:"changed"`
	Likes    models.Likes       `json:"likes"`
	Dislikes models.Likes       `json:"dislikes"`
	Next     Card               `json:"next"`
}

// Manager serializes each user's session mutations behind a per-user lock,
// so concurrent swipes from one user apply one after the other.
type Manager struct {
	store  Store
	logger logger.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(store Store, log logger.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: log.With(map[string]interface{}{"component": "swipe"}),
		now:    func() time.Time { return time.Now().UTC() },
		locks:  make(map[string]*sync.Mutex),
	}
}

// NormalizeUser maps an empty user key to DefaultUser.
func NormalizeUser(user string) string {
	if u := strings.TrimSpace(user); u != "" {
		return u
	}
	return DefaultUser
}

func (m *Manager) lock(user string) func() {
	m.mu.Lock()
	l, ok := m.locks[user]
	if !ok {
		l = &sync.Mutex{}
		m.locks[user] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (m *Manager) load(ctx context.Context, user string) (*Session, error) {
	s, err := m.store.Get(ctx, user)
	if stderrors.Is(err, ErrNotFound) {
		return nil, errors.NewSessionNotFoundError(user)
	}
	return s, err
}

// Start replaces any session of user with a fresh one over sel.
func (m *Manager) Start(ctx context.Context, user string, prefs models.Preferences, tc models.TravelContext, sel models.Selection) (*Session, error) {
	user = NormalizeUser(user)
	unlock := m.lock(user)
	defer unlock()

	s := NewSession(user, sel, prefs, tc, m.now())
	if err := m.store.Put(ctx, s); err != nil {
		return nil, err
	}

	m.logger.Info("Swipe session started", map[string]interface{}{
		"user":        user,
		"sessionId":   s.ID,
		"housing":     len(s.Candidates[models.CategoryHousing]),
		"cuisine":     len(s.Candidates[models.CategoryCuisine]),
		"experiences": len(s.Candidates[models.CategoryExperience]),
	})
	return s, nil
}

// RecordSwipe applies one like or dislike. category and action are the raw
// values sent by the client; anything outside the known enums, or an empty
// id, is INVALID_INPUT.
func (m *Manager) RecordSwipe(ctx context.Context, user, id, category, action string) (*SwipeResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidInputError("id", "id is required")
	}
	c, ok := models.ParseCategory(category)
	if !ok {
		return nil, errors.NewInvalidInputError("category", "unknown category: "+category)
	}
	a, ok := models.ParseSwipeAction(action)
	if !ok {
		return nil, errors.NewInvalidInputError("action", "unknown action: "+action)
	}

	user = NormalizeUser(user)
	unlock := m.lock(user)
	defer unlock()

	s, err := m.load(ctx, user)
	if err != nil {
		return nil, err
	}
	return m.apply(ctx, user, s, id, c, a)
}

// SwipeCurrent applies action to the card on screen. Resolving the card and
// recording the swipe happen under one lock, so two concurrent calls never
// act on the same card.
func (m *Manager) SwipeCurrent(ctx context.Context, user, action string) (*SwipeResult, error) {
	a, ok := models.ParseSwipeAction(action)
	if !ok {
		return nil, errors.NewInvalidInputError("action", "unknown action: "+action)
	}

	user = NormalizeUser(user)
	unlock := m.lock(user)
	defer unlock()

	s, err := m.load(ctx, user)
	if err != nil {
		return nil, err
	}
	card := s.Current()
	if card.Finished {
		return nil, errors.NewInvalidInputError("id", "no card left to swipe")
	}
	return m.apply(ctx, user, s, card.ID, card.Category, a)
}

// apply records one swipe on s and persists it. Callers hold user's lock.
func (m *Manager) apply(ctx context.Context, user string, s *Session, id string, c models.Category, a models.SwipeAction) (*SwipeResult, error) {
	changed := s.Apply(id, c, a)
	next := s.Current()
	s.UpdatedAt = m.now()
	if err := m.store.Put(ctx, s); err != nil {
		return nil, err
	}

	metrics.Swipes.WithLabelValues(string(c), string(a)).Inc()
	m.logger.Debug("Swipe recorded", map[string]interface{}{
		"user":     user,
		"id":       id,
		"category": string(c),
		"action":   string(a),
		"changed":  changed,
	})

	return &SwipeResult{
		ID:       id,
		Category: c,
		Action:   a,
		Changed:  changed,
		Likes:    s.LikesView(),
		Dislikes: s.DislikesView(),
		Next:     next,
	}, nil
}

// CurrentCard returns the card to show next. Category rollover is persisted.
func (m *Manager) CurrentCard(ctx context.Context, user string) (*Card, error) {
	user = NormalizeUser(user)
	unlock := m.lock(user)
	defer unlock()

	s, err := m.load(ctx, user)
	if err != nil {
		return nil, err
	}

	active, exhausted := s.Active, s.Exhausted
	card := s.Current()
	if s.Active != active || s.Exhausted != exhausted {
		s.UpdatedAt = m.now()
		if err := m.store.Put(ctx, s); err != nil {
			return nil, err
		}
	}
	return &card, nil
}

// Finalize returns the likes of user's session without changing it.
func (m *Manager) Finalize(ctx context.Context, user string) (models.Likes, *Session, error) {
	user = NormalizeUser(user)
	unlock := m.lock(user)
	defer unlock()

	s, err := m.load(ctx, user)
	if err != nil {
		return models.Likes{}, nil, err
	}
	return s.LikesView(), s, nil
}

// Reset discards user's session.
func (m *Manager) Reset(ctx context.Context, user string) error {
	user = NormalizeUser(user)
	unlock := m.lock(user)
	defer unlock()

	return m.store.Delete(ctx, user)
}
