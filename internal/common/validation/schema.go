// Package validation checks JSON documents against the schemas of the
// planner's structured contracts: oracle answers and job worker inputs.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationResult lists every violation found in a document.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Err folds the result into a single error, nil when valid.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

// Schema is a compiled JSON schema.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// Compile parses a JSON schema document.
func Compile(name, src string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

// MustCompile is Compile for package-level schemas known to be well formed.
func MustCompile(name, src string) *Schema {
	s, err := Compile(name, src)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Name() string { return s.name }

// Validate checks a Go value (maps, slices, structs) against the schema.
func (s *Schema) Validate(doc interface{}) *ValidationResult {
	return s.validate(gojsonschema.NewGoLoader(doc))
}

// ValidateJSON checks raw JSON bytes against the schema.
func (s *Schema) ValidateJSON(raw []byte) *ValidationResult {
	return s.validate(gojsonschema.NewBytesLoader(raw))
}

func (s *Schema) validate(loader gojsonschema.JSONLoader) *ValidationResult {
	result, err := s.schema.Validate(loader)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_DOCUMENT",
			}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

const idList = `{"type": "array", "items": {"type": "string"}}`

// SelectionSchema is the shape the oracle must answer a shortlist selection
// with. Extra keys such as a rationale are tolerated.
var SelectionSchema = MustCompile("selection", `{
	"type": "object",
	"required": ["housing_ids", "cuisine_ids", "experience_ids"],
	"properties": {
		"housing_ids": `+idList+`,
		"cuisine_ids": `+idList+`,
		"experience_ids": `+idList+`
	}
}`)

// ItinerarySchema is the shape of an assembled itinerary.
var ItinerarySchema = MustCompile("itinerary", `{
	"type": "object",
	"required": ["itinerary"],
	"properties": {
		"itinerary": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["day"],
				"properties": {
					"day": {"type": "integer", "minimum": 1},
					"date": {"type": "string"},
					"housing": {"type": "string"},
					"dining": `+idList+`,
					"experiences": `+idList+`,
					"notes": {"type": "string"}
				}
			}
		},
		"packing_list": {"type": "array", "items": {"type": "string"}},
		"events": {"type": "array", "items": {"type": "string"}}
	}
}`)

const travelInfo = `{
	"type": "object",
	"required": ["location"],
	"properties": {
		"location": {"type": "string", "minLength": 1},
		"dates": {"type": "array", "items": {"type": "string"}},
		"travelers": {"type": "integer", "minimum": 1},
		"desired_amenities": {"type": "array", "items": {"type": "string"}}
	}
}`

// ShortlistInputSchema validates the variables of a build-shortlist job.
var ShortlistInputSchema = MustCompile("build-shortlist-input", `{
	"type": "object",
	"required": ["travelInfo"],
	"properties": {
		"preferences": {"type": "object"},
		"travelInfo": `+travelInfo+`
	}
}`)

// ItineraryInputSchema validates the variables of an assemble-itinerary job.
var ItineraryInputSchema = MustCompile("assemble-itinerary-input", `{
	"type": "object",
	"required": ["likes", "travelInfo"],
	"properties": {
		"username": {"type": "string"},
		"likes": {
			"type": "object",
			"properties": {
				"housing": `+idList+`,
				"cuisine": `+idList+`,
				"experience": `+idList+`,
				"experiences": `+idList+`
			}
		},
		"travelInfo": `+travelInfo+`
	}
}`)
