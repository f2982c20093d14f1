package progress

import (
	"time"

	"github.com/learnpath/backend/internal/models"
)

// streakTick reports what a completion did to the streak counters.
type streakTick struct {
	// advanced is true when the daily streak changed (first completion of
	// the day). Same-day repeat completions leave every counter alone.
	advanced bool
}

// tickStreaks updates the daily streak and consecutive-module counters for
// a completion at now. At most one increment per UTC calendar date: a
// completion on the same date as lastCompletionDate is a no-op, yesterday
// continues the streak, and any larger gap resets it to 1.
func tickStreaks(agg *models.ProgressAggregate, now time.Time) streakTick {
	today := dateOf(now)

	switch {
	case agg.LastCompletionDate == nil:
		agg.DailyStreak = 1
		agg.ConsecutiveModules = 1
	case dateOf(*agg.LastCompletionDate).Equal(today):
		return streakTick{}
	case dateOf(*agg.LastCompletionDate).Equal(today.AddDate(0, 0, -1)):
		agg.DailyStreak++
		agg.ConsecutiveModules++
	default:
		agg.DailyStreak = 1
		agg.ConsecutiveModules = 1
	}

	ts := now
	agg.LastCompletionDate = &ts
	if agg.DailyStreak > agg.MaxDailyStreak {
		agg.MaxDailyStreak = agg.DailyStreak
	}
	return streakTick{advanced: true}
}

// dateOf truncates a timestamp to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
