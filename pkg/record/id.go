package record

import "regexp"

// idShape is the canonical 8-4-4-4-12 hexadecimal grouping with the
// version nibble constrained to 1-8 and the variant nibble to 8/9/a/b.
// Classification all over the engine hangs on this check, so it is exact:
// a string with dashes in the wrong places is not an ID.
var idShape = regexp.MustCompile(
	`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-8][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

// IsRecordID reports whether s has the canonical record ID shape.
func IsRecordID(s string) bool {
	return idShape.MatchString(s)
}
