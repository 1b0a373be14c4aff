package autosave

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/OnlyWorlds/worldtool/pkg/record"
)

// coerce converts a raw editor value (usually the string a form control
// holds) into the shape the field's declared kind expects. Non-string
// values pass through: the editor already produced a typed value.
func coerce(fs record.FieldSchema, v any) any {
	s, isString := v.(string)
	if !isString {
		return v
	}

	switch fs.Kind {
	case record.ScalarBool:
		// Checkbox state spellings.
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "on", "checked", "1", "yes":
			return true
		default:
			return false
		}
	case record.ScalarNumber:
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return nil
		}
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return n
		}
		return nil
	case record.MultiRef:
		// Comma-separated target IDs. An entry that is not ID-shaped
		// cannot reference anything and would make the whole list
		// malformed on the wire, so it is dropped.
		parts := strings.Split(s, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); record.IsRecordID(p) {
				out = append(out, p)
			}
		}
		return out
	case record.StringList:
		parts := strings.Split(s, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case record.Object:
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err == nil {
			return parsed
		}
		// Unparsable JSON stays a string rather than destroying the edit.
		return s
	default:
		return s
	}
}
