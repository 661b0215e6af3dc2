package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fenceRe matches a markdown code fence with an optional language tag.
var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// numberedKeyRe matches a leading "1. " style numbering that some
// models prepend to JSON keys.
var numberedKeyRe = regexp.MustCompile(`^\s*\d+\.\s*`)

// extractJSON pulls the JSON payload out of a model response. It
// handles three shapes: a bare JSON document, a document wrapped in
// markdown fences, and a document surrounded by prose (the outermost
// brace or bracket pair is taken).
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if m := fenceRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}

	// Fall back to the outermost object or array.
	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		start := strings.IndexByte(response, pair[0])
		end := strings.LastIndexByte(response, pair[1])
		if start >= 0 && end > start {
			return response[start : end+1]
		}
	}

	return response
}

// decodeObject decodes a model response into out, tolerating markdown
// fences, surrounding prose, and numbered keys ("1. title": ...).
func decodeObject(response string, out any) error {
	payload := extractJSON(response)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return fmt.Errorf("response is not a JSON object: %w", err)
	}

	cleaned := make(map[string]json.RawMessage, len(raw))
	for key, value := range raw {
		cleaned[numberedKeyRe.ReplaceAllString(key, "")] = value
	}

	normalized, err := json.Marshal(cleaned)
	if err != nil {
		return err
	}
	return json.Unmarshal(normalized, out)
}

// decodeStringArray decodes a model response into a string slice,
// tolerating fences and prose. Non-string array elements are skipped.
func decodeStringArray(response string) ([]string, error) {
	payload := extractJSON(response)

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}

	out := make([]string, 0, len(raw))
	for _, elem := range raw {
		var s string
		if err := json.Unmarshal(elem, &s); err == nil {
			out = append(out, s)
		}
	}
	return out, nil
}

// decodeIntArray decodes a model response into an int slice, tolerating
// fences, prose, and numbers quoted as strings.
func decodeIntArray(response string) ([]int, error) {
	payload := extractJSON(response)

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}

	out := make([]int, 0, len(raw))
	for _, elem := range raw {
		var n int
		if err := json.Unmarshal(elem, &n); err == nil {
			out = append(out, n)
			continue
		}
		var s string
		if err := json.Unmarshal(elem, &s); err == nil {
			if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n); err == nil {
				out = append(out, n)
			}
		}
	}
	return out, nil
}
