// Package validation checks strategy parameter values against the hints of
// their parameter templates.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

// Issue is a problem with one parameter value.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) Error() string {
	return i.Field + ": " + i.Message
}

// Result collects the issues of a set of values.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Errors groups issue messages by field, the shape render options expect.
func (r Result) Errors() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

// Value checks one value. Blank values only fail for required parameters;
// otherwise the template type decides what is accepted:
//
//	number, integer  any decimal number
//	percentage       a whole number from 0 to 100
//	boolean, bool    "true" or "false"
//
// Other types accept any text.
func Value(name string, tmpl strategy.ParameterTemplate, value string) error {
	if issue, bad := check(name, tmpl, value); bad {
		return issue
	}
	return nil
}

func check(name string, tmpl strategy.ParameterTemplate, value string) (Issue, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if tmpl.Required {
			return Issue{Field: name, Message: fmt.Sprintf("%s is required", name)}, true
		}
		return Issue{}, false
	}

	switch strings.ToLower(strings.TrimSpace(tmpl.Type)) {
	case "number", "integer":
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			return Issue{Field: name, Message: fmt.Sprintf("%s must be a number", name)}, true
		}
	case "percentage":
		n, err := strconv.Atoi(trimmed)
		if err != nil || n < 0 || n > 100 {
			return Issue{Field: name, Message: fmt.Sprintf("%s must be a whole number between 0 and 100", name)}, true
		}
	case "boolean", "bool":
		if trimmed != "true" && trimmed != "false" {
			return Issue{Field: name, Message: fmt.Sprintf("%s must be true or false", name)}, true
		}
	}
	return Issue{}, false
}

// Values checks every submitted value whose name is part of schema, in
// schema order. Names outside the schema are ignored.
func Values(schema *strategy.ParameterSchema, values map[string]string) Result {
	result := Result{Valid: true}
	for name, tmpl := range schema.All() {
		value, ok := values[name]
		if !ok {
			continue
		}
		if issue, bad := check(name, tmpl, value); bad {
			result.Valid = false
			result.Issues = append(result.Issues, issue)
		}
	}
	return result
}
