package render

import (
	"maps"
	"slices"
	"strings"
)

// Feedback is validation output split between the inputs it belongs to and
// the banner at the top of the page.
type Feedback struct {
	Fields map[string][]string
	Page   []string
}

// SplitFeedback routes each entry of errs to the field with the same name.
// Keys naming no rendered field (including "") land on the page so nothing a
// handler reported is dropped. Messages are trimmed and deduplicated; page
// messages follow the sorted order of their keys.
func SplitFeedback(fields []string, errs map[string][]string) Feedback {
	var out Feedback
	if len(errs) == 0 {
		return out
	}

	for _, key := range slices.Sorted(maps.Keys(errs)) {
		messages := uniqueMessages(errs[key])
		if len(messages) == 0 {
			continue
		}
		name := strings.TrimSpace(key)
		if name == "" || !slices.Contains(fields, name) {
			out.Page = append(out.Page, messages...)
			continue
		}
		if out.Fields == nil {
			out.Fields = make(map[string][]string)
		}
		out.Fields[name] = uniqueMessages(append(out.Fields[name], messages...))
	}
	out.Page = uniqueMessages(out.Page)
	return out
}

func uniqueMessages(messages []string) []string {
	var out []string
	for _, message := range messages {
		message = strings.TrimSpace(message)
		if message != "" && !slices.Contains(out, message) {
			out = append(out, message)
		}
	}
	return out
}
