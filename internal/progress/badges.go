package progress

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/learnpath/backend/internal/catalog"
	"github.com/learnpath/backend/internal/models"
)

// awarder accumulates badge grants for a single event. It tracks the names
// of badges awarded and the total point delta so the ledger can be credited
// once per event.
type awarder struct {
	registry BadgeRegistry
	now      time.Time
	awarded  []string
	delta    int64
}

func newAwarder(registry BadgeRegistry, now time.Time) *awarder {
	return &awarder{registry: registry, now: now, awarded: []string{}}
}

// awardOnce grants the named badge unless the user already holds it or the
// registry has no definition for the name. The badge's point value goes to
// points and, when category is set, to that category subtotal. Safe to call
// any number of times per event.
func (a *awarder) awardOnce(ctx context.Context, agg *models.ProgressAggregate, name, category string) error {
	badge, err := a.registry.FindBadgeByName(ctx, name)
	if err != nil {
		return fmt.Errorf("lookup badge %q: %w", name, err)
	}
	if badge == nil || agg.HasBadge(badge.ID) {
		return nil
	}
	a.grant(agg, badge, category)
	return nil
}

// awardAllOfType grants every badge of a registry type the user does not
// hold yet. Used for section- and theme-completion awards.
func (a *awarder) awardAllOfType(ctx context.Context, agg *models.ProgressAggregate, badgeType, category string) error {
	badges, err := a.registry.FindBadgesByType(ctx, badgeType)
	if err != nil {
		return fmt.Errorf("lookup badges of type %q: %w", badgeType, err)
	}
	for i := range badges {
		if agg.HasBadge(badges[i].ID) {
			continue
		}
		a.grant(agg, &badges[i], category)
	}
	return nil
}

func (a *awarder) grant(agg *models.ProgressAggregate, badge *models.Badge, category string) {
	agg.Badges = append(agg.Badges, models.AwardedBadge{BadgeID: badge.ID, AwardedAt: a.now})
	agg.Points += badge.Points
	switch category {
	case models.CategoryModule:
		agg.ModulePoints += badge.Points
	case models.CategorySection:
		agg.SectionPoints += badge.Points
	case models.CategoryTheme:
		agg.ThemePoints += badge.Points
	}
	a.delta += badge.Points
	a.awarded = append(a.awarded, badge.Name)
}

// moduleCompletionPoints credits the module-completion badge's value for
// one completion. Every completion earns the value; the badge itself joins
// the user's collection only on the first one.
func (a *awarder) moduleCompletionPoints(ctx context.Context, agg *models.ProgressAggregate) (int64, error) {
	badge, err := a.registry.FindBadgeByName(ctx, catalog.BadgeModuleCompleted)
	if err != nil {
		return 0, fmt.Errorf("lookup badge %q: %w", catalog.BadgeModuleCompleted, err)
	}
	if badge == nil {
		return 0, nil
	}
	if !agg.HasBadge(badge.ID) {
		agg.Badges = append(agg.Badges, models.AwardedBadge{BadgeID: badge.ID, AwardedAt: a.now})
		a.awarded = append(a.awarded, badge.Name)
	}
	agg.Points += badge.Points
	agg.ModulePoints += badge.Points
	a.delta += badge.Points
	return badge.Points, nil
}

// checkModuleCountBadges evaluates every completed-module rule against the
// current count: cumulative thresholds for the learner tiers, exact counts
// for the milestone badges.
func (a *awarder) checkModuleCountBadges(ctx context.Context, agg *models.ProgressAggregate) error {
	count := len(agg.CompletedModules)

	thresholds := []struct {
		count int
		name  string
	}{
		{1, catalog.BadgeBronzeLearner},
		{3, catalog.BadgeSilverLearner},
		{5, catalog.BadgeGoldLearner},
		{10, catalog.BadgePlatinumLearner},
	}
	for _, t := range thresholds {
		if count < t.count {
			continue
		}
		if err := a.awardOnce(ctx, agg, t.name, models.CategoryModule); err != nil {
			return err
		}
	}

	// Milestones fire on the exact count only. A replayed event cannot
	// double-award because the count moves one step at a time.
	milestones := map[int]string{
		5:   catalog.BadgeHighFive,
		20:  catalog.BadgeScholar,
		50:  catalog.BadgeHalfCentury,
		100: catalog.BadgeCenturion,
		150: catalog.BadgeUnstoppable,
	}
	if name, ok := milestones[count]; ok {
		return a.awardOnce(ctx, agg, name, "")
	}
	return nil
}

// checkStreakBadges runs after a streak tick. The weekly streak advances
// each time the daily streak lands on a multiple of 5.
func (a *awarder) checkStreakBadges(ctx context.Context, agg *models.ProgressAggregate, tick streakTick) error {
	if !tick.advanced {
		return nil
	}
	if agg.DailyStreak > 0 && agg.DailyStreak%5 == 0 {
		agg.WeeklyStreak++
		if agg.WeeklyStreak > agg.MaxWeeklyStreak {
			agg.MaxWeeklyStreak = agg.WeeklyStreak
		}
		if err := a.awardOnce(ctx, agg, catalog.BadgeFiveDayDevotion, ""); err != nil {
			return err
		}
	}
	if agg.DailyStreak == 30 {
		if err := a.awardOnce(ctx, agg, catalog.BadgeMonthlyDevotion, ""); err != nil {
			return err
		}
	}

	consecutive := map[int]string{
		3:  catalog.BadgeHatTrick,
		5:  catalog.BadgeOnARoll,
		10: catalog.BadgeTenStraight,
	}
	if name, ok := consecutive[agg.ConsecutiveModules]; ok {
		return a.awardOnce(ctx, agg, name, "")
	}
	return nil
}

// checkFeedbackBadges awards based on what the feedback contains. Comment
// matching is a case-insensitive substring check.
func (a *awarder) checkFeedbackBadges(ctx context.Context, agg *models.ProgressAggregate, comment string) error {
	if err := a.awardOnce(ctx, agg, catalog.BadgeModuleCritic, ""); err != nil {
		return err
	}
	trimmed := strings.TrimSpace(comment)
	if trimmed == "" {
		return nil
	}
	if err := a.awardOnce(ctx, agg, catalog.BadgeCommentator, ""); err != nil {
		return err
	}
	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, "suggest") {
		if err := a.awardOnce(ctx, agg, catalog.BadgeIdeaMachine, ""); err != nil {
			return err
		}
	}
	if strings.Contains(lower, "issue") || strings.Contains(lower, "error") || strings.Contains(lower, "problem") {
		if err := a.awardOnce(ctx, agg, catalog.BadgeBugHunter, ""); err != nil {
			return err
		}
	}
	return nil
}
