package record

// Record type names, matching the remote API's collection paths.
const (
	TypeAbility     = "ability"
	TypeCharacter   = "character"
	TypeCreature    = "creature"
	TypeEvent       = "event"
	TypeFamily      = "family"
	TypeInstitution = "institution"
	TypeLanguage    = "language"
	TypeLaw         = "law"
	TypeLocation    = "location"
	TypeMap         = "map"
	TypeMarker      = "marker"
	TypeNarrative   = "narrative"
	TypeObject      = "object"
	TypePhenomenon  = "phenomenon"
	TypePin         = "pin"
	TypeRelation    = "relation"
	TypeSpecies     = "species"
	TypeTitle       = "title"
	TypeTrait       = "trait"
	TypeZone        = "zone"
	TypeWorld       = "world"
)

// recordTypes lists every collection, in the order export walks them.
// World is last so an export file reads bottom-up: leaves before owner.
var recordTypes = []string{
	TypeAbility, TypeCharacter, TypeCreature, TypeEvent, TypeFamily,
	TypeInstitution, TypeLanguage, TypeLaw, TypeLocation, TypeMap,
	TypeMarker, TypeNarrative, TypeObject, TypePhenomenon, TypePin,
	TypeRelation, TypeSpecies, TypeTitle, TypeTrait, TypeZone, TypeWorld,
}

var validTypes = func() map[string]bool {
	m := make(map[string]bool, len(recordTypes))
	for _, t := range recordTypes {
		m[t] = true
	}
	return m
}()

// Types returns a copy of the known record type names.
func Types() []string {
	out := make([]string, len(recordTypes))
	copy(out, recordTypes)
	return out
}

// IsValidType reports whether name is a known record type.
func IsValidType(name string) bool {
	return validTypes[name]
}
