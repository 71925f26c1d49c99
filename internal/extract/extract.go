// Package extract turns a freeform trip description into preferences and a
// travel context.
package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"travelease/internal/catalog"
	"travelease/internal/models"
)

// Defaults applied by Resolve when the text does not say.
const DefaultLocation = "Boston, USA"

var (
	DefaultHousingTypes = []string{"House", "Apartment", "Hotel"}
	DefaultPriceRange   = models.PriceRange{Min: 50, Max: 150}
	DefaultSafety       = models.SafetyHigh
)

// Extracted holds what was found in the text. Zero values mean "not said".
type Extracted struct {
	Location         string            `json:"location,omitempty"`
	Dates            []string          `json:"dates"`
	Travelers        int               `json:"travelers,omitempty"`
	TotalBudget      float64           `json:"total_budget,omitempty"`
	DesiredAmenities []string          `json:"desired_amenities"`
	HousingTypes     []string          `json:"housing_type"`
	CuisineTypes     []string          `json:"cuisine_types"`
	ExperienceTypes  []string          `json:"experience_types"`
	SafetyLevel      models.Safety     `json:"safety_level,omitempty"`
	PriceRange       models.PriceRange `json:"price_range"`
}

// term maps a pattern found in the text to the catalog's spelling.
type term struct {
	re    *regexp.Regexp
	value string
}

func terms(pairs ...string) []term {
	out := make([]term, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, term{re: regexp.MustCompile(`(?i)\b(?:` + pairs[i] + `)\b`), value: pairs[i+1]})
	}
	return out
}

var (
	amenityTerms = terms(
		`wi-?fi`, "WiFi",
		`kitchen`, "Kitchen",
		`balcony`, "Balcony",
		`pool`, "Pool",
		`air[- ]conditioning|a/c`, "Air conditioning",
		`washing machine|washer`, "Washer",
		`gym`, "Gym",
		`parking`, "Free parking",
	)
	housingTerms = terms(
		`houses?`, "House",
		`apartments?`, "Apartment",
		`hotels?`, "Hotel",
		`hostels?`, "Hostel",
		`condos?`, "Condo",
	)
	cuisineTerms = terms(
		`italian`, "Italian",
		`japanese|sushi`, "Japanese",
		`chinese`, "Chinese",
		`mexican`, "Mexican",
		`indian`, "Indian",
		`french`, "French",
		`thai`, "Thai",
		`korean`, "Korean",
		`seafood`, "Seafood",
	)
	experienceTerms = terms(
		`comedy|stand-?up|improv`, catalog.KeywordComedy,
		`education(?:al)?|workshops?|learn(?:ing)?`, catalog.KeywordEducation,
		`museums?|galler(?:y|ies)`, catalog.KeywordMuseum,
		`histor(?:y|ic|ical)|culture|cultural`, catalog.KeywordHistoric,
		`sightseeing|tours?`, catalog.KeywordSightseeing,
		`adventure|hiking|kayak(?:ing)?|nature`, catalog.KeywordAdventure,
		`relax(?:ing|ation)?|spa`, catalog.KeywordRelaxing,
	)

	months       = `January|February|March|April|May|June|July|August|September|October|November|December`
	dateRe       = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b(?:` + months + `)\s+\d{1,2}\b`)
	monthRe      = regexp.MustCompile(`^(?:` + months + `)$`)
	isoDateRe    = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	placeRe      = regexp.MustCompile(`\b(?:in|to|visit|visiting)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)`)
	travelersRe  = regexp.MustCompile(`(?i)\b(\d+|one|two|three|four|five|six|seven|eight|nine|ten)\s+(?:people|persons|travell?ers|adults|guests)\b`)
	budgetRe     = regexp.MustCompile(`(?i)budget[^$\d]{0,20}\$?\s*(\d[\d,]*(?:\.\d+)?)`)
	betweenRe    = regexp.MustCompile(`(?i)between\s+\$?(\d+)\s+and\s+\$?(\d+)`)
	dollarPairRe = regexp.MustCompile(`\$(\d+)\s*(?:-|–|to)\s*\$?(\d+)`)
	unitPairRe   = regexp.MustCompile(`(?i)\b(\d+)\s*(?:-|–|to)\s*(\d+)\s*(?:dollars|usd|\$|per night|/night|a night)`)
	safetyRe     = regexp.MustCompile(`(?i)\b(high|medium|low)\b[\w\s]{0,12}\bsafe(?:ty)?\b|\bsafe(?:ty)?\b[\w\s]{0,12}\b(high|medium|low)\b`)
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// Extract reads text. knownLocations are catalog locations such as
// "Boston, USA"; the earliest one whose city is mentioned wins.
func Extract(text string, knownLocations []string) Extracted {
	e := Extracted{
		Location:         findLocation(text, knownLocations),
		Dates:            dateRe.FindAllString(text, -1),
		Travelers:        findTravelers(text),
		TotalBudget:      findBudget(text),
		DesiredAmenities: findTerms(text, amenityTerms),
		HousingTypes:     findTerms(text, housingTerms),
		CuisineTypes:     findTerms(text, cuisineTerms),
		ExperienceTypes:  findTerms(text, experienceTerms),
		SafetyLevel:      findSafety(text),
		PriceRange:       findPriceRange(text),
	}
	if e.Dates == nil {
		e.Dates = []string{}
	}
	return e
}

// Resolve fills in the defaults and splits the result into preferences and
// trip context.
func (e Extracted) Resolve() (models.Preferences, models.TravelContext) {
	housing := e.HousingTypes
	if len(housing) == 0 {
		housing = append([]string{}, DefaultHousingTypes...)
	}
	safety := e.SafetyLevel
	if safety == "" {
		safety = DefaultSafety
	}
	price := e.PriceRange
	if price.IsZero() {
		price = DefaultPriceRange
	}
	location := e.Location
	if location == "" {
		location = DefaultLocation
	}
	travelers := e.Travelers
	if travelers <= 0 {
		travelers = 1
	}

	prefs := models.Preferences{
		HousingType:        housing,
		PreferredAmenities: e.DesiredAmenities,
		SafetyLevel:        models.SafetyPtr(safety),
		PriceRange:         price,
		CuisineTypes:       e.CuisineTypes,
		ExperienceTypes:    e.ExperienceTypes,
	}
	tc := models.TravelContext{
		Location:              location,
		Dates:                 e.Dates,
		Travelers:             travelers,
		DesiredAmenities:      e.DesiredAmenities,
		TotalBudget:           e.TotalBudget,
		CuisinePreferences:    e.CuisineTypes,
		ExperiencePreferences: e.ExperienceTypes,
	}
	return prefs, tc
}

func findLocation(text string, known []string) string {
	lower := strings.ToLower(text)
	best, bestAt := "", -1
	for _, loc := range known {
		city := strings.TrimSpace(strings.SplitN(loc, ",", 2)[0])
		if city == "" {
			continue
		}
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(city)) + `\b`)
		m := re.FindStringIndex(lower)
		if m == nil {
			continue
		}
		// On a tie the fuller name ("Paris, France" over "Paris") wins.
		if bestAt < 0 || m[0] < bestAt || (m[0] == bestAt && len(loc) > len(best)) {
			best, bestAt = loc, m[0]
		}
	}
	if best != "" {
		return best
	}

	for _, m := range placeRe.FindAllStringSubmatch(text, -1) {
		if !isMonth(m[1]) {
			return m[1]
		}
	}
	return ""
}

func isMonth(s string) bool {
	return monthRe.MatchString(strings.Fields(s)[0])
}

func findTravelers(text string) int {
	m := travelersRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	if n, ok := numberWords[strings.ToLower(m[1])]; ok {
		return n
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func findBudget(text string) float64 {
	m := budgetRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, _ := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	return v
}

// findTerms returns the values of terms mentioned in text, in order of first
// mention, without repeats.
func findTerms(text string, ts []term) []string {
	type hit struct {
		at    int
		value string
	}
	var hits []hit
	seen := map[string]bool{}
	for _, t := range ts {
		if seen[t.value] {
			continue
		}
		if loc := t.re.FindStringIndex(text); loc != nil {
			hits = append(hits, hit{at: loc[0], value: t.value})
			seen[t.value] = true
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].at < hits[j].at })

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.value)
	}
	return out
}

func findSafety(text string) models.Safety {
	m := safetyRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	level := m[1]
	if level == "" {
		level = m[2]
	}
	s, _ := models.ParseSafety(level)
	return s
}

func findPriceRange(text string) models.PriceRange {
	// ISO dates look like "2025-06" ranges
	text = isoDateRe.ReplaceAllString(text, " ")

	for _, re := range []*regexp.Regexp{betweenRe, dollarPairRe, unitPairRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		if lo > hi {
			lo, hi = hi, lo
		}
		return models.PriceRange{Min: lo, Max: hi}
	}
	return models.PriceRange{}
}
