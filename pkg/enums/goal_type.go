package enums

import "fmt"

// GoalType distinguishes percentage-based wave goals from absolute value goals.
type GoalType string

const (
	GoalTypePercentage GoalType = "percentage"
	GoalTypeValue      GoalType = "value"
)

var validGoalTypes = []GoalType{
	GoalTypePercentage,
	GoalTypeValue,
}

// String implements fmt.Stringer.
func (g GoalType) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GoalType.
func (g GoalType) IsValid() bool {
	for _, candidate := range validGoalTypes {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGoalType converts raw input into a GoalType.
func ParseGoalType(value string) (GoalType, error) {
	for _, candidate := range validGoalTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid goal type %q", value)
}
