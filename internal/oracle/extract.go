// internal/oracle/extract.go
package oracle

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"strings"
)

var errNoJSONObject = stderrors.New("no JSON object in oracle text")

// ExtractJSON pulls the first JSON object out of free-form oracle text. The
// object may be wrapped in a markdown code fence or surrounded by prose.
func ExtractJSON(text string) ([]byte, error) {
	if fenced, ok := fencedBlock(text); ok {
		if obj, err := firstObject(fenced); err == nil {
			return obj, nil
		}
	}
	return firstObject(text)
}

func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	// skip the info string ("json") up to the end of the line
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return rest, true
	}
	return rest[:end], true
}

// firstObject tries every '{' in order and returns the first position that
// decodes as a complete JSON object.
func firstObject(text string) ([]byte, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
			return trimmed, nil
		}
	}
	return nil, errNoJSONObject
}
