package record

// Kind classifies what a field holds. The codec and the renderer switch
// over Kind exhaustively; adding a value here means extending both.
type Kind int

const (
	ScalarString Kind = iota
	ScalarNumber
	ScalarBool
	ScalarDate
	LongText
	StringList
	Object
	SingleRef
	MultiRef
)

// String returns the lowercase name used in schema.yaml and CLI output.
func (k Kind) String() string {
	switch k {
	case ScalarString:
		return "string"
	case ScalarNumber:
		return "number"
	case ScalarBool:
		return "bool"
	case ScalarDate:
		return "date"
	case LongText:
		return "long-text"
	case StringList:
		return "string-list"
	case Object:
		return "object"
	case SingleRef:
		return "single-ref"
	case MultiRef:
		return "multi-ref"
	default:
		return "unknown"
	}
}

// KindFromString parses the schema.yaml spelling of a Kind.
// Unrecognized spellings map to ScalarString, the universal fallback.
func KindFromString(s string) Kind {
	switch s {
	case "number":
		return ScalarNumber
	case "bool":
		return ScalarBool
	case "date":
		return ScalarDate
	case "long-text":
		return LongText
	case "string-list":
		return StringList
	case "object":
		return Object
	case "single-ref":
		return SingleRef
	case "multi-ref":
		return MultiRef
	default:
		return ScalarString
	}
}

// FieldSchema describes one field: its kind and, for reference kinds, the
// record type it points at. Target == "" on a reference kind means the
// target is not a single fixed type (a generic reference); callers must
// treat the value as an opaque ID.
type FieldSchema struct {
	Kind   Kind
	Target string
}

// IsReference reports whether the field links to other records.
func (f FieldSchema) IsReference() bool {
	return f.Kind == SingleRef || f.Kind == MultiRef
}
