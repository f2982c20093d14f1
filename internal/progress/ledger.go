package progress

import (
	"time"

	"github.com/learnpath/backend/internal/models"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// recordPoints books one event's net point gain into the daily, weekly and
// monthly ledgers, creating the bucket for the event's date when it does
// not exist yet. Called once per event with the full delta, so a persisted
// aggregate always carries the whole transaction's points or none of them.
func recordPoints(agg *models.ProgressAggregate, amount int64, when time.Time) {
	if amount <= 0 {
		return
	}

	day := when.UTC().Format(dayLayout)
	found := false
	for i := range agg.DailyPoints {
		if agg.DailyPoints[i].Day == day {
			agg.DailyPoints[i].Points += amount
			found = true
			break
		}
	}
	if !found {
		agg.DailyPoints = append(agg.DailyPoints, models.DailyBucket{Day: day, Points: amount})
	}

	start := weekStart(when)
	ws := start.Format(dayLayout)
	we := start.AddDate(0, 0, 6).Format(dayLayout)
	found = false
	for i := range agg.WeeklyPoints {
		if agg.WeeklyPoints[i].WeekStart == ws && agg.WeeklyPoints[i].WeekEnd == we {
			agg.WeeklyPoints[i].Points += amount
			found = true
			break
		}
	}
	if !found {
		agg.WeeklyPoints = append(agg.WeeklyPoints, models.WeeklyBucket{WeekStart: ws, WeekEnd: we, Points: amount})
	}

	month := when.UTC().Format(monthLayout)
	found = false
	for i := range agg.MonthlyPoints {
		if agg.MonthlyPoints[i].Month == month {
			agg.MonthlyPoints[i].Points += amount
			found = true
			break
		}
	}
	if !found {
		agg.MonthlyPoints = append(agg.MonthlyPoints, models.MonthlyBucket{Month: month, Points: amount})
	}
}

// weekStart returns the most recent Monday at midnight UTC on or before t.
// A Sunday belongs to the week that started six days earlier.
func weekStart(t time.Time) time.Time {
	day := dateOf(t)
	offset := (int(day.Weekday()) - int(time.Monday) + 7) % 7
	return day.AddDate(0, 0, -offset)
}
