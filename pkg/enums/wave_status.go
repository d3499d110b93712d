package enums

import "fmt"

// WaveStatus is the derived lifecycle state of a wave. It is never persisted.
type WaveStatus string

const (
	WaveStatusUpcoming WaveStatus = "upcoming"
	WaveStatusActive   WaveStatus = "active"
	WaveStatusFinished WaveStatus = "finished"
)

var validWaveStatuses = []WaveStatus{
	WaveStatusUpcoming,
	WaveStatusActive,
	WaveStatusFinished,
}

// String implements fmt.Stringer.
func (w WaveStatus) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WaveStatus.
func (w WaveStatus) IsValid() bool {
	for _, candidate := range validWaveStatuses {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWaveStatus converts raw input into a WaveStatus.
func ParseWaveStatus(value string) (WaveStatus, error) {
	for _, candidate := range validWaveStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wave status %q", value)
}
