// Package oracle talks to the external reasoning service that picks from, or
// arranges, the candidates it is shown. Nothing the service answers is
// trusted until it has been parsed, schema-checked and intersected with what
// was offered.
package oracle

import (
	"context"

	"travelease/internal/models"
)

// Operations the oracle is asked to perform.
const (
	OperationSelect    = "shortlist-selection"
	OperationItinerary = "itinerary"
)

// ToolInspectListing is the tool the oracle calls to look at one listing.
const ToolInspectListing = "inspect_listing"

// Request is one oracle invocation.
type Request struct {
	ID        string                 `json:"request_id"`
	Operation string                 `json:"operation"`
	Prompt    string                 `json:"prompt"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Tools     []string               `json:"tools,omitempty"`
}

// Inspection is one tool action the oracle took before answering.
type Inspection struct {
	Tool     string          `json:"tool"`
	Category models.Category `json:"category,omitempty"`
	ID       string          `json:"id"`
}

// Response is the oracle's free-form answer plus the actions it took.
type Response struct {
	Text        string       `json:"text"`
	Inspections []Inspection `json:"inspections,omitempty"`
}

// Oracle completes a request. Implementations return errors from the
// common errors taxonomy (ORACLE_UNAVAILABLE, ORACLE_TIMEOUT, ORACLE_MALFORMED).
type Oracle interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Func adapts a function to Oracle.
type Func func(ctx context.Context, req *Request) (*Response, error)

func (f Func) Complete(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// categoryOf maps a tool argument onto a category; unknown names map to ""
// which the scratchpad matches against every category.
func categoryOf(s string) models.Category {
	c, _ := models.ParseCategory(s)
	return c
}
