package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Nulls records the top-level keys of a JSON object that were sent as null,
// so partial updates can tell "clear this field" apart from "leave it alone".
type Nulls map[string]bool

// NullKeys decodes body as a JSON object and collects its null-valued keys.
func NullKeys(body []byte) (Nulls, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("request body must be a JSON object: %w", err)
	}
	nulls := Nulls{}
	for k, v := range raw {
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			nulls[k] = true
		}
	}
	return nulls, nil
}

// Blank normalizes an optional text value: a nil pointer or one holding only
// whitespace is treated as absent.
func Blank(p *string) bool {
	return p == nil || strings.TrimSpace(*p) == ""
}

// NullableText applies one nullable column of a partial update. A value sent as
// null or as a blank string clears the column; an absent key leaves it untouched.
func NullableText(current **string, patch *string, key string, nulls Nulls) {
	switch {
	case nulls[key]:
		*current = nil
	case patch == nil:
	case strings.TrimSpace(*patch) == "":
		*current = nil
	default:
		v := *patch
		*current = &v
	}
}

// Trimmed returns p with blank strings turned into nil, for create payloads.
func Trimmed(p *string) *string {
	if Blank(p) {
		return nil
	}
	return p
}

// RequireIfPresent adds a "required" message for every required key that was sent as null.
func (n Nulls) RequireIfPresent(errs *Errors, keys ...string) {
	for _, k := range keys {
		if n[k] {
			errs.Add(k, fmt.Sprintf("The %s field is required.", strings.ReplaceAll(k, "_", " ")))
		}
	}
}
