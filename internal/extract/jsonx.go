package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	arrayPattern       = regexp.MustCompile(`(?s)\[.*?\]`)
	fencedJSONPattern  = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	fencedBlockPattern = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
	objectPattern      = regexp.MustCompile(`(?s)\{.*?\}`)
)

// ParseModelOutput pulls the record array out of raw model text. Vision
// models rarely honor "JSON only" strictly, so several shapes are tried in
// order: a bare JSON array, a ```json fenced block, a plain fenced block,
// and finally a single object which is wrapped in a one-element slice.
// Returns nil when nothing parses.
func ParseModelOutput(text string) []map[string]any {
	for _, m := range arrayPattern.FindAllString(text, -1) {
		if records := tryDecode(m); records != nil {
			return records
		}
	}
	for _, groups := range fencedJSONPattern.FindAllStringSubmatch(text, -1) {
		if records := tryDecode(strings.TrimSpace(groups[1])); records != nil {
			return records
		}
	}
	for _, groups := range fencedBlockPattern.FindAllStringSubmatch(text, -1) {
		if records := tryDecode(strings.TrimSpace(groups[1])); records != nil {
			return records
		}
	}
	for _, m := range objectPattern.FindAllString(text, -1) {
		if records := tryDecode(m); records != nil {
			return records
		}
	}
	return nil
}

func tryDecode(candidate string) []map[string]any {
	var arr []map[string]any
	if err := json.Unmarshal([]byte(candidate), &arr); err == nil {
		return arr
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
		return []map[string]any{obj}
	}
	return nil
}
