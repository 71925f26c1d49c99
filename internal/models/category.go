// internal/models/category.go
package models

import "strings"

// Category names one of the three listing families.
type Category string

const (
	CategoryHousing    Category = "housing"
	CategoryCuisine    Category = "cuisine"
	CategoryExperience Category = "experience"
)

// Categories is the fixed browsing order of a swipe session.
var Categories = []Category{CategoryHousing, CategoryCuisine, CategoryExperience}

// ParseCategory accepts the plural "experiences" used by the swipe UI.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "housing":
		return CategoryHousing, true
	case "cuisine":
		return CategoryCuisine, true
	case "experience", "experiences":
		return CategoryExperience, true
	}
	return "", false
}

// Next returns the category after c in browsing order.
func (c Category) Next() (Category, bool) {
	for i, cat := range Categories {
		if cat == c && i+1 < len(Categories) {
			return Categories[i+1], true
		}
	}
	return "", false
}

// IDPrefix returns the namespace prefix of listing IDs in c.
func (c Category) IDPrefix() string {
	switch c {
	case CategoryHousing:
		return HousingIDPrefix
	case CategoryCuisine:
		return CuisineIDPrefix
	case CategoryExperience:
		return ExperienceIDPrefix
	}
	return ""
}

// SwipeAction is a like or dislike.
type SwipeAction string

const (
	ActionLike    SwipeAction = "like"
	ActionDislike SwipeAction = "dislike"
)

// ParseSwipeAction accepts swipe directions: right likes, left dislikes.
func ParseSwipeAction(s string) (SwipeAction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "like", "right":
		return ActionLike, true
	case "dislike", "left":
		return ActionDislike, true
	}
	return "", false
}

// Opposite returns the other action.
func (a SwipeAction) Opposite() SwipeAction {
	if a == ActionLike {
		return ActionDislike
	}
	return ActionLike
}
