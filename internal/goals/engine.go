package goals

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RepFilter narrows goal and progress computations to a subset of reps.
// The zero value (or AllReps) means no filter. An explicitly empty selection
// is the sentinel "no reps selected": every derived figure must be zero.
type RepFilter struct {
	ids      []uuid.UUID
	filtered bool
}

// AllReps returns the unfiltered selection.
func AllReps() RepFilter {
	return RepFilter{}
}

// Reps returns a filter for the given rep ids. Calling it with no ids yields
// the empty-selection sentinel, not the unfiltered state.
func Reps(ids ...uuid.UUID) RepFilter {
	return RepFilter{ids: ids, filtered: true}
}

// Filtered reports whether a rep subset is active.
func (f RepFilter) Filtered() bool {
	return f.filtered
}

// Empty reports whether the filter is the "no reps selected" sentinel.
func (f RepFilter) Empty() bool {
	return f.filtered && len(f.ids) == 0
}

// IDs returns the selected rep ids, nil when unfiltered.
func (f RepFilter) IDs() []uuid.UUID {
	return f.ids
}

// Ratio returns owned/total as a decimal, resolving 0/0 to zero.
func Ratio(owned, total int) decimal.Decimal {
	if total <= 0 || owned <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(owned)).Div(decimal.NewFromInt(int64(total)))
}

// ProportionalCount apportions a unit target by market share, rounding up:
// a fractional "required unit" is not actionable in the field.
func ProportionalCount(target, owned, total int) int {
	if total <= 0 || owned <= 0 || target <= 0 {
		return 0
	}
	scaled := target * owned
	goal := scaled / total
	if scaled%total != 0 {
		goal++
	}
	return goal
}

// ProportionalValue apportions a monetary target by market share, rounded to
// two decimals.
func ProportionalValue(target decimal.Decimal, owned, total int) decimal.Decimal {
	if total <= 0 || owned <= 0 || target.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return target.Mul(Ratio(owned, total)).Round(2)
}
