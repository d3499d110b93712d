package waves

import (
	"time"

	"github.com/merchpilot/fieldops-backend/pkg/db/models"
	"github.com/merchpilot/fieldops-backend/pkg/enums"
)

// sellPoint orders (iso week, weekday) pairs, Monday=1 through Sunday=7.
type sellPoint struct {
	week    int
	weekday int
}

func (p sellPoint) before(other sellPoint) bool {
	if p.week != other.week {
		return p.week < other.week
	}
	return p.weekday < other.weekday
}

// StatusFor derives the lifecycle state of a wave at the given instant.
// Waves without sell windows follow the plain date window. Pre-order waves
// carry (iso week, weekday) sell windows; those take precedence and the wave
// is active exactly between the earliest and latest configured point.
func StatusFor(wave models.Wave, now time.Time) enums.WaveStatus {
	if len(wave.SellWindows) > 0 {
		return sellWindowStatus(wave.SellWindows, now)
	}
	return dateWindowStatus(wave, now)
}

func dateWindowStatus(wave models.Wave, now time.Time) enums.WaveStatus {
	today := truncateToDay(now)
	start := truncateToDay(wave.StartsOn)
	end := truncateToDay(wave.EndsOn)

	switch {
	case today.Before(start):
		return enums.WaveStatusUpcoming
	case today.After(end):
		return enums.WaveStatusFinished
	default:
		return enums.WaveStatusActive
	}
}

func sellWindowStatus(windows []models.WaveSellWindow, now time.Time) enums.WaveStatus {
	_, week := now.ISOWeek()
	current := sellPoint{week: week, weekday: isoWeekday(now)}

	min := sellPoint{week: windows[0].ISOWeek, weekday: windows[0].Weekday}
	max := min
	for _, w := range windows[1:] {
		point := sellPoint{week: w.ISOWeek, weekday: w.Weekday}
		if point.before(min) {
			min = point
		}
		if max.before(point) {
			max = point
		}
	}

	switch {
	case current.before(min):
		return enums.WaveStatusUpcoming
	case max.before(current):
		return enums.WaveStatusFinished
	default:
		return enums.WaveStatusActive
	}
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
