// Package record defines the Record type, field schema variants, the
// persistence Service contract, and standard errors for the worldtool
// relationship engine.
//
// A Record is a schema-less mapping from field name to value, as returned
// by the remote world API. The engine packages under internal/ consume the
// contracts defined here; they never depend on each other's concrete types.
package record
