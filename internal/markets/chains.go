package markets

import "strings"

// Grouping is a dashboard-level retail chain bucket. Raw market chain labels
// are free text entered at import time; many labels map onto one grouping.
type Grouping string

const (
	GroupingEdeka    Grouping = "edeka"
	GroupingRewe     Grouping = "rewe"
	GroupingKaufland Grouping = "kaufland"
	GroupingGlobus   Grouping = "globus"
	GroupingOther    Grouping = "other"
)

// groupingAliases maps normalized label prefixes onto groupings. Order
// matters: first match wins.
var groupingAliases = []struct {
	prefix string
	group  Grouping
}{
	{"edeka", GroupingEdeka},
	{"e-center", GroupingEdeka},
	{"e center", GroupingEdeka},
	{"marktkauf", GroupingEdeka},
	{"rewe", GroupingRewe},
	{"nahkauf", GroupingRewe},
	{"kaufland", GroupingKaufland},
	{"globus", GroupingGlobus},
}

// GroupForLabel resolves a raw chain label to its dashboard grouping.
// Unrecognized labels land in GroupingOther.
func GroupForLabel(label string) Grouping {
	normalized := strings.ToLower(strings.TrimSpace(label))
	for _, alias := range groupingAliases {
		if strings.HasPrefix(normalized, alias.prefix) {
			return alias.group
		}
	}
	return GroupingOther
}

// ParseGrouping validates a grouping name from a query parameter.
func ParseGrouping(raw string) (Grouping, bool) {
	switch Grouping(strings.ToLower(strings.TrimSpace(raw))) {
	case GroupingEdeka:
		return GroupingEdeka, true
	case GroupingRewe:
		return GroupingRewe, true
	case GroupingKaufland:
		return GroupingKaufland, true
	case GroupingGlobus:
		return GroupingGlobus, true
	case GroupingOther:
		return GroupingOther, true
	default:
		return "", false
	}
}
