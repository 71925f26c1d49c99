// internal/oracle/scratchpad.go
package oracle

import "travelease/internal/models"

// Scratchpad is the working memory of a single oracle call. It is created
// per request and dropped once the answer has been judged; nothing in it
// outlives the call.
type Scratchpad struct {
	offered   map[models.Category]map[string]struct{}
	inspected map[models.Category][]string
	seen      map[models.Category]map[string]struct{}
	ignored   int
}

// NewScratchpad starts a scratchpad over the IDs offered per category.
func NewScratchpad(whitelists map[models.Category][]string) *Scratchpad {
	p := &Scratchpad{
		offered:   make(map[models.Category]map[string]struct{}, len(whitelists)),
		inspected: make(map[models.Category][]string),
		seen:      make(map[models.Category]map[string]struct{}),
	}
	for c, ids := range whitelists {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		p.offered[c] = set
	}
	return p
}

// Record notes one inspection and reports whether it counted. Only
// inspect_listing actions naming an offered ID count; repeats of the same ID
// count once. An inspection without a category is matched against every
// category.
func (p *Scratchpad) Record(in Inspection) bool {
	if in.Tool != ToolInspectListing || in.ID == "" {
		p.ignored++
		return false
	}

	category, ok := p.resolve(in)
	if !ok {
		p.ignored++
		return false
	}

	if p.seen[category] == nil {
		p.seen[category] = make(map[string]struct{})
	}
	if _, dup := p.seen[category][in.ID]; dup {
		return false
	}
	p.seen[category][in.ID] = struct{}{}
	p.inspected[category] = append(p.inspected[category], in.ID)
	return true
}

func (p *Scratchpad) resolve(in Inspection) (models.Category, bool) {
	if in.Category != "" {
		_, ok := p.offered[in.Category][in.ID]
		return in.Category, ok
	}
	for _, c := range models.Categories {
		if _, ok := p.offered[c][in.ID]; ok {
			return c, true
		}
	}
	return "", false
}

// RecordAll records every inspection of resp.
func (p *Scratchpad) RecordAll(inspections []Inspection) {
	for _, in := range inspections {
		p.Record(in)
	}
}

// Count is the number of distinct offered listings inspected.
func (p *Scratchpad) Count() int {
	n := 0
	for _, ids := range p.inspected {
		n += len(ids)
	}
	return n
}

// Inspected returns the inspected IDs of c in inspection order.
func (p *Scratchpad) Inspected(c models.Category) []string {
	return append([]string(nil), p.inspected[c]...)
}

// Ignored is the number of actions that did not count.
func (p *Scratchpad) Ignored() int {
	return p.ignored
}
