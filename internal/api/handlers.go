package api

import (
	"net/http"
	"strings"
	"time"

	"travelease/internal/common/errors"
	"travelease/internal/models"
	"travelease/internal/planner"
	"travelease/internal/swipe"
)

const cookieMaxAge = 30 * 24 * time.Hour

// userKey picks the user: an explicit username, then the cookie, then guest.
func (rt *Router) userKey(r *http.Request, username string) string {
	if u := strings.TrimSpace(username); u != "" {
		return u
	}
	if u := strings.TrimSpace(r.URL.Query().Get("username")); u != "" {
		return u
	}
	if c, err := r.Cookie(rt.opts.CookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return c.Value
	}
	return swipe.DefaultUser
}

func (rt *Router) setUserCookie(w http.ResponseWriter, user string) {
	http.SetCookie(w, &http.Cookie{
		Name:     rt.opts.CookieName,
		Value:    user,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (rt *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (rt *Router) handleReady(w http.ResponseWriter, r *http.Request) {
	if rt.opts.Ready != nil {
		if err := rt.opts.Ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"ready": false, "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

type planResponse struct {
	Success bool `json:"success"`
	*planner.PlanResult
}

func (rt *Router) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planner.PlanRequest
	if err := decodeBody(r, &req, true); err != nil {
		rt.writeError(w, err)
		return
	}
	req.Username = rt.userKey(r, req.Username)

	result, err := rt.planner.Plan(r.Context(), req)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, planResponse{Success: true, PlanResult: result})
}

type itineraryRequest struct {
	Username      string                `json:"username"`
	Likes         *models.Likes         `json:"likes"`
	TravelContext *models.TravelContext `json:"travel_info"`
}

type itineraryResponse struct {
	Success bool `json:"success"`
	models.Itinerary
}

func (rt *Router) handleItinerary(w http.ResponseWriter, r *http.Request) {
	var req itineraryRequest
	if err := decodeBody(r, &req, false); err != nil {
		rt.writeError(w, err)
		return
	}
	if req.Likes == nil {
		rt.writeError(w, errors.NewInvalidInputError("likes", "likes is required"))
		return
	}
	if req.TravelContext == nil {
		rt.writeError(w, errors.NewInvalidInputError("travel_info", "travel_info is required"))
		return
	}

	it := rt.planner.Itinerary(r.Context(), rt.userKey(r, req.Username), *req.Likes, *req.TravelContext)
	writeJSON(w, http.StatusOK, itineraryResponse{Success: true, Itinerary: it})
}

type detailsRequest struct {
	HousingIDs    []string `json:"housing_ids"`
	CuisineIDs    []string `json:"cuisine_ids"`
	ExperienceIDs []string `json:"experience_ids"`
}

func (rt *Router) handleDetails(w http.ResponseWriter, r *http.Request) {
	var req detailsRequest
	if err := decodeBody(r, &req, true); err != nil {
		rt.writeError(w, err)
		return
	}
	d := rt.planner.Details(req.HousingIDs, req.CuisineIDs, req.ExperienceIDs)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"housing":    d.Housing,
		"cuisine":    d.Cuisine,
		"experience": d.Experience,
	})
}

func (rt *Router) handleSwipeStart(w http.ResponseWriter, r *http.Request) {
	var req planner.PlanRequest
	if err := decodeBody(r, &req, true); err != nil {
		rt.writeError(w, err)
		return
	}
	req.Username = rt.userKey(r, req.Username)

	result, sess, err := rt.planner.StartSwipes(r.Context(), req)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	card, err := rt.planner.Swipes().CurrentCard(r.Context(), sess.User)
	if err != nil {
		rt.writeError(w, err)
		return
	}

	rt.setUserCookie(w, sess.User)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"session_id":     sess.ID,
		"username":       sess.User,
		"housing_ids":    result.HousingIDs,
		"cuisine_ids":    result.CuisineIDs,
		"experience_ids": result.ExperienceIDs,
		"fallback":       result.Fallback,
		"card":           card,
		"listing":        rt.listing(card),
	})
}

func (rt *Router) handleSwipeCard(w http.ResponseWriter, r *http.Request) {
	card, err := rt.planner.Swipes().CurrentCard(r.Context(), rt.userKey(r, ""))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"finished": card.Finished,
		"card":     card,
		"listing":  rt.listing(card),
	})
}

// listing resolves the card's listing for display, or nil when there is none.
func (rt *Router) listing(card *swipe.Card) interface{} {
	if card == nil || card.Finished {
		return nil
	}
	ids := []string{card.ID}
	switch card.Category {
	case models.CategoryHousing:
		if d := rt.planner.Details(ids, nil, nil); len(d.Housing) > 0 {
			return d.Housing[0]
		}
	case models.CategoryCuisine:
		if d := rt.planner.Details(nil, ids, nil); len(d.Cuisine) > 0 {
			return d.Cuisine[0]
		}
	case models.CategoryExperience:
		if d := rt.planner.Details(nil, nil, ids); len(d.Experience) > 0 {
			return d.Experience[0]
		}
	}
	return nil
}

type swipeRequest struct {
	Username  string `json:"username"`
	ID        string `json:"id"`
	Category  string `json:"category"`
	Action    string `json:"action"`
	Direction string `json:"direction"`
}

func (rt *Router) handleSwipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := decodeBody(r, &req, false); err != nil {
		rt.writeError(w, err)
		return
	}
	user := rt.userKey(r, req.Username)
	ctx := r.Context()

	action := req.Action
	if action == "" {
		action = req.Direction
	}

	var res *swipe.SwipeResult
	var err error
	if req.ID == "" && req.Category == "" {
		// no explicit target: swipe the card on screen
		res, err = rt.planner.Swipes().SwipeCurrent(ctx, user, action)
	} else {
		res, err = rt.planner.Swipes().RecordSwipe(ctx, user, req.ID, req.Category, action)
	}
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"id":             res.ID,
		"category":       res.Category,
		"action":         res.Action,
		"changed":        res.Changed,
		"likes":          res.Likes,
		"dislikes":       res.Dislikes,
		"liked_count":    len(res.Likes.IDs(res.Category)),
		"disliked_count": len(res.Dislikes.IDs(res.Category)),
		"next":           res.Next,
	})
}

func (rt *Router) handleSwipeFinalize(w http.ResponseWriter, r *http.Request) {
	likes, it, err := rt.planner.FinishSwipes(r.Context(), rt.userKey(r, ""))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"liked_items":     likes,
		"final_itinerary": it,
	})
}

func (rt *Router) handleSwipeReset(w http.ResponseWriter, r *http.Request) {
	if err := rt.planner.Swipes().Reset(r.Context(), rt.userKey(r, "")); err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Session reset"})
}
