package progress

import (
	"sort"

	"github.com/learnpath/backend/internal/models"
)

// Rank orders users by points descending and assigns competition-style
// ranks: tied scores share a rank, and the next distinct score takes its
// 1-based position in the sorted order. Recomputed from scratch on every
// call; nothing is cached.
func Rank(users []models.RankedUser) []models.RankingEntry {
	sorted := make([]models.RankedUser, len(users))
	copy(sorted, users)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Points > sorted[j].Points
	})

	total := len(sorted)
	entries := make([]models.RankingEntry, 0, total)
	rank := 0
	for i, u := range sorted {
		if i == 0 || u.Points != sorted[i-1].Points {
			rank = i + 1
		}
		entries = append(entries, models.RankingEntry{
			UserID:      u.UserID,
			DisplayName: u.DisplayName,
			Points:      u.Points,
			Rank:        rank,
			Percentile:  percentile(rank, total),
		})
	}
	return entries
}

// percentile computes ceil((pos/total)*100) in integer arithmetic. Tied
// users pass in the shared rank, so they share the first tied position's
// percentile.
func percentile(pos, total int) int {
	if total == 0 {
		return 0
	}
	return (pos*100 + total - 1) / total
}
