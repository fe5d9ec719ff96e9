package judge

import (
	"errors"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

var trailingComma = regexp.MustCompile(`,\s*([\]}])`)

// ExtractJSON recovers a JSON object from free-form judge text: it keeps the
// span from the first '{' to the last '}', closes an unterminated object and
// drops trailing commas. The result is guaranteed to be valid JSON.
func ExtractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	if start < 0 {
		return "", &ExtractionError{Raw: raw, Err: errors.New("no JSON object found")}
	}
	var candidate string
	if end := strings.LastIndex(raw, "}"); end > start {
		candidate = raw[start : end+1]
	} else {
		candidate = raw[start:] + "}"
	}
	candidate = trailingComma.ReplaceAllString(candidate, "$1")
	if !json.Valid([]byte(candidate)) {
		return "", &ExtractionError{Raw: raw, Err: errors.New("invalid JSON object")}
	}
	return candidate, nil
}

// Decode extracts the JSON object from raw, checks it against schema and
// unmarshals it into out.
func Decode(raw string, schema *Schema, out any) error {
	body, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return &ExtractionError{Raw: raw, Err: err}
	}
	if schema != nil {
		if err := schema.Check(obj); err != nil {
			return &ExtractionError{Raw: raw, Err: err}
		}
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return &ExtractionError{Raw: raw, Err: err}
	}
	return nil
}
