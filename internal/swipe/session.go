// Package swipe keeps the per-user like/dislike state of the swipe flow.
//
// A session walks the three categories in fixed order. Within a category the
// cursor points at the next card; once it passes the end of the category's
// candidates the session moves on, and after the last category it is
// exhausted. Exhaustion is a terminal state, not an error.
package swipe

import (
	"time"

	"github.com/google/uuid"

	"travelease/internal/models"
)

// DefaultUser keys sessions of callers that did not identify themselves.
const DefaultUser = "guest"

// Session is one user's swipe state.
type Session struct {
	ID            string                       `json:"id"`
	User          string                       `json:"user"`
	Candidates    map[models.Category][]string `json:"candidates"`
	Likes         map[models.Category][]string `json:"likes"`
	Dislikes      map[models.Category][]string `json:"dislikes"`
	Cursor        map[models.Category]int      `json:"cursor"`
	Active        models.Category              `json:"active"`
	Exhausted     bool                         `json:"exhausted"`
	Preferences   models.Preferences           `json:"preferences"`
	TravelContext models.TravelContext         `json:"travel_info"`
	Fallback      bool                         `json:"fallback,omitempty"`
	CreatedAt     time.Time                    `json:"created_at"`
	UpdatedAt     time.Time                    `json:"updated_at"`
}

// NewSession starts browsing sel from the first card of the first category.
func NewSession(user string, sel models.Selection, prefs models.Preferences, tc models.TravelContext, now time.Time) *Session {
	s := &Session{
		ID:            uuid.NewString(),
		User:          user,
		Candidates:    make(map[models.Category][]string, len(models.Categories)),
		Likes:         make(map[models.Category][]string, len(models.Categories)),
		Dislikes:      make(map[models.Category][]string, len(models.Categories)),
		Cursor:        make(map[models.Category]int, len(models.Categories)),
		Active:        models.Categories[0],
		Preferences:   prefs,
		TravelContext: tc,
		Fallback:      sel.Fallback,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, c := range models.Categories {
		s.Candidates[c] = append([]string{}, sel.IDs(c)...)
		s.Likes[c] = []string{}
		s.Dislikes[c] = []string{}
		s.Cursor[c] = 0
	}
	return s
}

// Apply records action on id and advances the category's cursor. The id is
// added to the action's list when absent and removed from the opposite list,
// so it is never in both. It reports whether the lists changed.
func (s *Session) Apply(id string, c models.Category, action models.SwipeAction) bool {
	target, opposite := s.Likes, s.Dislikes
	if action == models.ActionDislike {
		target, opposite = s.Dislikes, s.Likes
	}

	changed := false
	if !contains(target[c], id) {
		target[c] = append(target[c], id)
		changed = true
	}
	if i := indexOf(opposite[c], id); i >= 0 {
		opposite[c] = append(opposite[c][:i:i], opposite[c][i+1:]...)
		changed = true
	}

	s.Cursor[c]++
	return changed
}

// Card is what the swipe UI shows next.
type Card struct {
	Category models.Category `json:"category,omitempty"`
	ID       string          `json:"id,omitempty"`
	Index    int             `json:"index"`
	Total    int             `json:"total"`
	Finished bool            `json:"finished"`
}

// Current returns the card under the cursor of the active category, moving
// to the next category (with its cursor reset to 0) whenever the active one
// has no cards left.
func (s *Session) Current() Card {
	for !s.Exhausted {
		c := s.Active
		if cur := s.Cursor[c]; cur < len(s.Candidates[c]) {
			return Card{Category: c, ID: s.Candidates[c][cur], Index: cur, Total: len(s.Candidates[c])}
		}
		next, ok := c.Next()
		if !ok {
			s.Exhausted = true
			break
		}
		s.Active = next
		s.Cursor[next] = 0
	}
	return Card{Finished: true}
}

// LikesView returns a copy of the likes.
func (s *Session) LikesView() models.Likes {
	return models.Likes{
		Housing:    append([]string{}, s.Likes[models.CategoryHousing]...),
		Cuisine:    append([]string{}, s.Likes[models.CategoryCuisine]...),
		Experience: append([]string{}, s.Likes[models.CategoryExperience]...),
	}
}

// DislikesView returns a copy of the dislikes. Nothing downstream reads them
// yet; they are kept for display.
func (s *Session) DislikesView() models.Likes {
	return models.Likes{
		Housing:    append([]string{}, s.Dislikes[models.CategoryHousing]...),
		Cuisine:    append([]string{}, s.Dislikes[models.CategoryCuisine]...),
		Experience: append([]string{}, s.Dislikes[models.CategoryExperience]...),
	}
}

func contains(ids []string, id string) bool {
	return indexOf(ids, id) >= 0
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
