// internal/catalog/keywords.go
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Experience keyword categories.
const (
	KeywordComedy      = "Comedy"
	KeywordEducation   = "Education"
	KeywordMuseum      = "Museum"
	KeywordHistoric    = "Historic"
	KeywordSightseeing = "Sightseeing"
	KeywordAdventure   = "Adventure"
	KeywordRelaxing    = "Relaxing"
)

// KeywordColumn is the header AddKeywords appends to an experiences CSV.
const KeywordColumn = "Keyword"

type keywordRule struct {
	category string
	terms    []string
}

// Checked in order, first hit wins. Historic sits ahead of Sightseeing so a
// "historic walking tour" is not swallowed by the generic "tour"/"walk" terms.
var keywordRules = []keywordRule{
	{KeywordComedy, []string{"comedy", "improv", "stand-up", "stand up", "laugh"}},
	{KeywordEducation, []string{"class", "workshop", "lesson", "course", "lecture", "science", "robotics", "stem"}},
	{KeywordMuseum, []string{"museum", "exhibit", "gallery", "observatory", "planetarium"}},
	{KeywordHistoric, []string{"historic", "history", "historical", "freedom trail", "old state", "colonial", "presidential", "tour of"}},
	{KeywordSightseeing, []string{"tour", "cruise", "view", "sightseeing", "panoramic", "observatory", "walk", "trail", "boat"}},
	{KeywordAdventure, []string{"kayak", "kayaking", "bike", "biking", "hike", "hiking", "adventure", "canoe", "zipline"}},
	{KeywordRelaxing, []string{"picnic", "tea", "relax", "quiet", "garden", "courtyard"}},
}

// KeywordCategories lists every category Categorize can return.
func KeywordCategories() []string {
	out := make([]string, 0, len(keywordRules))
	for _, r := range keywordRules {
		out = append(out, r.category)
	}
	return out
}

// Categorize maps a free-text description to its keyword category by
// case-insensitive substring scan. Unmatched text is Sightseeing.
func Categorize(text string) string {
	t := strings.ToLower(text)
	for _, rule := range keywordRules {
		for _, term := range rule.terms {
			if strings.Contains(t, term) {
				return rule.category
			}
		}
	}
	return KeywordSightseeing
}

// AddKeywords copies an experiences CSV from in to out, appending (or
// overwriting) the Keyword column. The text categorized is the description
// column, else the company column, else the whole row.
func AddKeywords(in io.Reader, out io.Writer) (int, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	cols := headerIndex(header)

	keywordIdx, ok := cols[normalizeHeader(KeywordColumn)]
	if !ok {
		header = append(header, KeywordColumn)
		keywordIdx = len(header) - 1
	}

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	rows := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("read row %d: %w", rows+1, err)
		}
		for len(record) < len(header) {
			record = append(record, "")
		}

		text := column(record, cols, "experience_description", "description", "experience")
		if text == "" {
			text = column(record, cols, "company_name", "company")
		}
		if text == "" {
			text = strings.Join(record, " ")
		}
		record[keywordIdx] = Categorize(text)

		if err := w.Write(record); err != nil {
			return rows, fmt.Errorf("write row %d: %w", rows+1, err)
		}
		rows++
	}

	w.Flush()
	return rows, w.Error()
}
