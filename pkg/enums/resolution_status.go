package enums

// ResolutionStatus tags how a submission's catalog reference was resolved
// when building activity entries.
type ResolutionStatus string

const (
	// ResolutionResolved means the referenced catalog item or product line
	// still exists and was matched by id.
	ResolutionResolved ResolutionStatus = "resolved"
	// ResolutionFallback means the id lookup failed but a unique product line
	// in the same wave matched the snapshotted value per unit.
	ResolutionFallback ResolutionStatus = "fallback"
	// ResolutionUnresolved means no confident match exists; values still
	// derive from the submission snapshot.
	ResolutionUnresolved ResolutionStatus = "unresolved"
)

// String implements fmt.Stringer.
func (r ResolutionStatus) String() string {
	return string(r)
}
