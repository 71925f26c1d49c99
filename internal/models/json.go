// internal/models/json.go
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnmarshalJSON normalizes casing and rejects unknown levels. An empty string
// decodes to the empty Safety, which filters treat as "not set".
func (s *Safety) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("safety level must be a string: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		*s = ""
		return nil
	}
	parsed, ok := ParseSafety(raw)
	if !ok {
		return fmt.Errorf("unknown safety level %q", raw)
	}
	*s = parsed
	return nil
}

// UnmarshalJSON tolerates the "ultra high" spelling used by older catalogs.
func (p *Pricing) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("pricing must be a string: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		*p = ""
		return nil
	}
	parsed, ok := ParsePricing(raw)
	if !ok {
		return fmt.Errorf("unknown pricing %q", raw)
	}
	*p = parsed
	return nil
}

func marshalPair(a, b float64) ([]byte, error) {
	return json.Marshal([2]float64{a, b})
}

func unmarshalPair(data []byte) (float64, float64, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return 0, 0, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return 0, 0, fmt.Errorf("price range: %w", err)
		}
		switch len(pair) {
		case 0:
			return 0, 0, nil
		case 2:
			if pair[0] > pair[1] {
				return 0, 0, fmt.Errorf("price range: min %v exceeds max %v", pair[0], pair[1])
			}
			return pair[0], pair[1], nil
		default:
			return 0, 0, fmt.Errorf("price range: want [min, max], got %d values", len(pair))
		}
	}

	var obj struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return 0, 0, fmt.Errorf("price range: %w", err)
	}
	if obj.Min > obj.Max {
		return 0, 0, fmt.Errorf("price range: min %v exceeds max %v", obj.Min, obj.Max)
	}
	return obj.Min, obj.Max, nil
}
