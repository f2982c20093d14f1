package progress

import (
	"testing"
	"time"

	"github.com/learnpath/backend/internal/models"
)

func TestTickStreaks(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	threeDaysAgo := now.AddDate(0, 0, -3)

	tests := []struct {
		name            string
		last            *time.Time
		daily           int
		consecutive     int
		wantDaily       int
		wantConsecutive int
		wantAdvanced    bool
	}{
		{
			name:            "first completion ever",
			last:            nil,
			wantDaily:       1,
			wantConsecutive: 1,
			wantAdvanced:    true,
		},
		{
			name:            "same day is a no-op",
			last:            &now,
			daily:           4,
			consecutive:     2,
			wantDaily:       4,
			wantConsecutive: 2,
			wantAdvanced:    false,
		},
		{
			name:            "yesterday continues the streak",
			last:            &yesterday,
			daily:           4,
			consecutive:     2,
			wantDaily:       5,
			wantConsecutive: 3,
			wantAdvanced:    true,
		},
		{
			name:            "gap resets to 1",
			last:            &threeDaysAgo,
			daily:           12,
			consecutive:     7,
			wantDaily:       1,
			wantConsecutive: 1,
			wantAdvanced:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := &models.ProgressAggregate{
				DailyStreak:        tt.daily,
				ConsecutiveModules: tt.consecutive,
				LastCompletionDate: tt.last,
			}
			tick := tickStreaks(agg, now)

			if tick.advanced != tt.wantAdvanced {
				t.Errorf("advanced = %v, want %v", tick.advanced, tt.wantAdvanced)
			}
			if agg.DailyStreak != tt.wantDaily {
				t.Errorf("DailyStreak = %d, want %d", agg.DailyStreak, tt.wantDaily)
			}
			if agg.ConsecutiveModules != tt.wantConsecutive {
				t.Errorf("ConsecutiveModules = %d, want %d", agg.ConsecutiveModules, tt.wantConsecutive)
			}
		})
	}
}

func TestTickStreaksMaxTracking(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	agg := &models.ProgressAggregate{
		DailyStreak:        6,
		MaxDailyStreak:     6,
		LastCompletionDate: &yesterday,
	}
	tickStreaks(agg, now)
	if agg.MaxDailyStreak != 7 {
		t.Errorf("MaxDailyStreak = %d, want 7", agg.MaxDailyStreak)
	}

	// A reset must not touch the recorded maximum.
	later := now.AddDate(0, 0, 5)
	tickStreaks(agg, later)
	if agg.DailyStreak != 1 {
		t.Errorf("DailyStreak after gap = %d, want 1", agg.DailyStreak)
	}
	if agg.MaxDailyStreak != 7 {
		t.Errorf("MaxDailyStreak after gap = %d, want 7", agg.MaxDailyStreak)
	}
}

func TestTickStreaksUpdatesLastCompletion(t *testing.T) {
	morning := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

	agg := &models.ProgressAggregate{}
	tickStreaks(agg, morning)
	if agg.LastCompletionDate == nil || !agg.LastCompletionDate.Equal(morning) {
		t.Fatalf("LastCompletionDate = %v, want %v", agg.LastCompletionDate, morning)
	}

	// Same-day event leaves the timestamp alone.
	tickStreaks(agg, evening)
	if !agg.LastCompletionDate.Equal(morning) {
		t.Errorf("LastCompletionDate = %v, want unchanged %v", agg.LastCompletionDate, morning)
	}
}
