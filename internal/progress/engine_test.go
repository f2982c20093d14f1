package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/learnpath/backend/internal/catalog"
	"github.com/learnpath/backend/internal/models"
)

// ── Fixtures ────────────────────────────────────────────

type fixtureCatalog struct {
	modules   map[int64]*models.Module
	sections  map[int64]*models.Section
	bySection map[int64][]models.Module
	byTheme   map[int64][]models.Section
}

func (c *fixtureCatalog) FindModule(_ context.Context, id int64) (*models.Module, error) {
	m, ok := c.modules[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return m, nil
}

func (c *fixtureCatalog) FindSection(_ context.Context, id int64) (*models.Section, error) {
	s, ok := c.sections[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return s, nil
}

func (c *fixtureCatalog) FindModulesBySection(_ context.Context, sectionID int64) ([]models.Module, error) {
	return c.bySection[sectionID], nil
}

func (c *fixtureCatalog) FindSectionsByTheme(_ context.Context, themeID int64) ([]models.Section, error) {
	return c.byTheme[themeID], nil
}

// twoModuleCatalog is one theme holding one section with two modules.
func twoModuleCatalog() *fixtureCatalog {
	modA := &models.Module{ID: 101, SectionID: 1, Title: "Intro", Skills: []string{"basics"}}
	modB := &models.Module{ID: 102, SectionID: 1, Title: "Practice", Skills: []string{"drills"}}
	section := &models.Section{ID: 1, ThemeID: 1, Title: "Foundations"}
	return &fixtureCatalog{
		modules:   map[int64]*models.Module{101: modA, 102: modB},
		sections:  map[int64]*models.Section{1: section},
		bySection: map[int64][]models.Module{1: {*modA, *modB}},
		byTheme:   map[int64][]models.Section{1: {*section}},
	}
}

type fixtureRegistry struct {
	badges []models.Badge
}

// newFixtureRegistry serves the default badge definitions with ids
// assigned by seed order.
func newFixtureRegistry() *fixtureRegistry {
	badges := make([]models.Badge, len(catalog.DefaultBadges))
	copy(badges, catalog.DefaultBadges)
	for i := range badges {
		badges[i].ID = int64(i + 1)
	}
	return &fixtureRegistry{badges: badges}
}

func (r *fixtureRegistry) FindBadgeByName(_ context.Context, name string) (*models.Badge, error) {
	for i := range r.badges {
		if r.badges[i].Name == name {
			b := r.badges[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (r *fixtureRegistry) FindBadgesByType(_ context.Context, badgeType string) ([]models.Badge, error) {
	var out []models.Badge
	for _, b := range r.badges {
		if b.BadgeType == badgeType {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fixtureRegistry) mustID(t *testing.T, name string) int64 {
	t.Helper()
	b, _ := r.FindBadgeByName(context.Background(), name)
	if b == nil {
		t.Fatalf("fixture registry is missing badge %q", name)
	}
	return b.ID
}

func newAggregate() *models.ProgressAggregate {
	return &models.ProgressAggregate{UserID: 1}
}

// ── Awarder ─────────────────────────────────────────────

func TestAwardOnceIdempotent(t *testing.T) {
	registry := newFixtureRegistry()
	agg := newAggregate()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	aw := newAwarder(registry, now)

	for i := 0; i < 3; i++ {
		if err := aw.awardOnce(context.Background(), agg, catalog.BadgePerfectScore, ""); err != nil {
			t.Fatalf("awardOnce: %v", err)
		}
	}

	if len(agg.Badges) != 1 {
		t.Errorf("Badges has %d entries, want 1", len(agg.Badges))
	}
	if agg.Points != 20 {
		t.Errorf("Points = %d, want the badge value 20 added once", agg.Points)
	}
	if len(aw.awarded) != 1 {
		t.Errorf("awarded names = %v, want one entry", aw.awarded)
	}
}

func TestAwardOnceUnknownBadge(t *testing.T) {
	registry := newFixtureRegistry()
	agg := newAggregate()
	aw := newAwarder(registry, time.Now())

	if err := aw.awardOnce(context.Background(), agg, "No Such Badge", ""); err != nil {
		t.Fatalf("awardOnce: %v", err)
	}
	if len(agg.Badges) != 0 || agg.Points != 0 {
		t.Errorf("unknown badge mutated the aggregate: %d badges, %d points", len(agg.Badges), agg.Points)
	}
}

func TestAwardOnceCategoryAttribution(t *testing.T) {
	registry := newFixtureRegistry()
	agg := newAggregate()
	aw := newAwarder(registry, time.Now())

	if err := aw.awardOnce(context.Background(), agg, catalog.BadgeSectionConqueror, models.CategorySection); err != nil {
		t.Fatalf("awardOnce: %v", err)
	}
	if agg.SectionPoints != 50 {
		t.Errorf("SectionPoints = %d, want 50", agg.SectionPoints)
	}
	if agg.Points != 50 {
		t.Errorf("Points = %d, want 50", agg.Points)
	}
}

// ── CompleteModule ──────────────────────────────────────

func TestCompleteModuleRejectsRepeat(t *testing.T) {
	engine := NewEngine(twoModuleCatalog(), newFixtureRegistry())
	agg := newAggregate()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	module, _ := engine.catalog.FindModule(context.Background(), 101)

	if _, err := engine.CompleteModule(context.Background(), agg, module, 9, now); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	pointsBefore := agg.Points

	_, err := engine.CompleteModule(context.Background(), agg, module, 9, now.Add(time.Hour))
	if !errors.Is(err, models.ErrAlreadyCompleted) {
		t.Fatalf("second completion error = %v, want ErrAlreadyCompleted", err)
	}
	if agg.Points != pointsBefore {
		t.Errorf("Points changed on rejected completion: %d -> %d", pointsBefore, agg.Points)
	}
	if len(agg.CompletedModules) != 1 {
		t.Errorf("CompletedModules has %d entries, want 1", len(agg.CompletedModules))
	}
}

func TestCompleteModuleSectionAndThemeRollUp(t *testing.T) {
	cat := twoModuleCatalog()
	registry := newFixtureRegistry()
	engine := NewEngine(cat, registry)
	agg := newAggregate()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	modA, _ := cat.FindModule(ctx, 101)
	summary, err := engine.CompleteModule(ctx, agg, modA, 9, now)
	if err != nil {
		t.Fatalf("complete module A: %v", err)
	}

	// Half the section done: in progress, no completion badge yet.
	if summary.Section == nil || summary.Section.CompletionPercentage != 50 {
		t.Fatalf("section summary = %+v, want 50%%", summary.Section)
	}
	if summary.Section.Status != models.StatusInProgress {
		t.Errorf("section status = %s, want in_progress", summary.Section.Status)
	}
	if agg.HasBadge(registry.mustID(t, catalog.BadgeSectionConqueror)) {
		t.Error("section-completion badge awarded at 50%")
	}
	if summary.PointsEarned != 10 {
		t.Errorf("PointsEarned = %d, want the module badge value 10", summary.PointsEarned)
	}
	if !agg.HasBadge(registry.mustID(t, catalog.BadgeModuleCompleted)) {
		t.Error("module-completion badge missing")
	}
	if !agg.HasBadge(registry.mustID(t, catalog.BadgeBronzeLearner)) {
		t.Error("first-module threshold badge missing")
	}

	modB, _ := cat.FindModule(ctx, 102)
	summary, err = engine.CompleteModule(ctx, agg, modB, 10, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("complete module B: %v", err)
	}

	if summary.Section == nil || summary.Section.CompletionPercentage != 100 {
		t.Fatalf("section summary = %+v, want 100%%", summary.Section)
	}
	if summary.Section.Status != models.StatusCompleted {
		t.Errorf("section status = %s, want completed", summary.Section.Status)
	}
	if summary.Section.CompletedAt == nil {
		t.Error("section CompletedAt not set on full completion")
	}
	if !agg.HasBadge(registry.mustID(t, catalog.BadgePerfectScore)) {
		t.Error("perfect-score badge missing for a 10")
	}
	if !agg.HasBadge(registry.mustID(t, catalog.BadgeSectionConqueror)) {
		t.Error("section-completion badge missing at 100%")
	}
	if !agg.HasBadge(registry.mustID(t, catalog.BadgeThemeChampion)) {
		t.Error("theme-completion badge missing once its only section finished")
	}
	if summary.Theme == nil || summary.Theme.Status != models.StatusCompleted {
		t.Errorf("theme summary = %+v, want completed", summary.Theme)
	}

	if agg.SectionPoints != 50 {
		t.Errorf("SectionPoints = %d, want 50", agg.SectionPoints)
	}
	if agg.ThemePoints != 100 {
		t.Errorf("ThemePoints = %d, want 100", agg.ThemePoints)
	}

	// Same-day completions land in a single daily bucket.
	if len(agg.DailyPoints) != 1 {
		t.Fatalf("DailyPoints has %d entries, want 1", len(agg.DailyPoints))
	}
	if agg.DailyPoints[0].Points != agg.Points {
		t.Errorf("daily bucket %d does not match total points %d", agg.DailyPoints[0].Points, agg.Points)
	}
}

func TestCompleteModuleEmptyContainers(t *testing.T) {
	// A module whose section lists no modules (and whose theme lists no
	// sections) must complete without a division-by-zero roll-up.
	mod := &models.Module{ID: 201, SectionID: 9}
	cat := &fixtureCatalog{
		modules:   map[int64]*models.Module{201: mod},
		sections:  map[int64]*models.Section{9: {ID: 9, ThemeID: 3}},
		bySection: map[int64][]models.Module{},
		byTheme:   map[int64][]models.Section{},
	}
	engine := NewEngine(cat, newFixtureRegistry())
	agg := newAggregate()

	summary, err := engine.CompleteModule(context.Background(), agg, mod, 9, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("complete module: %v", err)
	}
	if summary.Section != nil || summary.Theme != nil {
		t.Errorf("empty containers produced progress entries: section %+v, theme %+v", summary.Section, summary.Theme)
	}
	if len(agg.CompletedModules) != 1 {
		t.Errorf("CompletedModules has %d entries, want 1", len(agg.CompletedModules))
	}
}

func TestModuleCountMilestoneExactMatch(t *testing.T) {
	registry := newFixtureRegistry()
	ctx := context.Background()
	now := time.Now()

	// Exactly 5 completed modules earns the milestone.
	agg := newAggregate()
	for i := int64(1); i <= 4; i++ {
		agg.CompletedModules = append(agg.CompletedModules, models.CompletedModule{ModuleID: i})
	}
	aw := newAwarder(registry, now)
	agg.CompletedModules = append(agg.CompletedModules, models.CompletedModule{ModuleID: 5})
	if err := aw.checkModuleCountBadges(ctx, agg); err != nil {
		t.Fatalf("checkModuleCountBadges: %v", err)
	}
	if !agg.HasBadge(registry.mustID(t, catalog.BadgeHighFive)) {
		t.Error("exact-count milestone not awarded at 5")
	}

	// A count past the milestone without ever equaling it stays unawarded.
	agg = newAggregate()
	for i := int64(1); i <= 6; i++ {
		agg.CompletedModules = append(agg.CompletedModules, models.CompletedModule{ModuleID: i})
	}
	aw = newAwarder(registry, now)
	if err := aw.checkModuleCountBadges(ctx, agg); err != nil {
		t.Fatalf("checkModuleCountBadges: %v", err)
	}
	if agg.HasBadge(registry.mustID(t, catalog.BadgeHighFive)) {
		t.Error("exact-count milestone awarded at 6")
	}
	// The cumulative thresholds still apply at any count past them.
	if !agg.HasBadge(registry.mustID(t, catalog.BadgeGoldLearner)) {
		t.Error("threshold badge missing at 6 completed modules")
	}
}

func TestCompleteModuleLearnsSkills(t *testing.T) {
	cat := twoModuleCatalog()
	engine := NewEngine(cat, newFixtureRegistry())
	agg := newAggregate()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	modA, _ := cat.FindModule(ctx, 101)
	if _, err := engine.CompleteModule(ctx, agg, modA, 9, now); err != nil {
		t.Fatalf("complete module: %v", err)
	}
	if len(agg.LearnedSkills) != 1 || agg.LearnedSkills[0] != "basics" {
		t.Errorf("LearnedSkills = %v, want [basics]", agg.LearnedSkills)
	}
}

func TestCompleteModuleStreakBadges(t *testing.T) {
	registry := newFixtureRegistry()
	engine := NewEngine(twoModuleCatalog(), registry)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	agg := newAggregate()
	agg.DailyStreak = 4
	agg.MaxDailyStreak = 4
	agg.ConsecutiveModules = 2
	agg.LastCompletionDate = &yesterday

	modA, _ := engine.catalog.FindModule(ctx, 101)
	if _, err := engine.CompleteModule(ctx, agg, modA, 9, now); err != nil {
		t.Fatalf("complete module: %v", err)
	}

	if agg.DailyStreak != 5 {
		t.Fatalf("DailyStreak = %d, want 5", agg.DailyStreak)
	}
	if agg.WeeklyStreak != 1 {
		t.Errorf("WeeklyStreak = %d, want 1", agg.WeeklyStreak)
	}
	if !agg.HasBadge(registry.mustID(t, catalog.BadgeFiveDayDevotion)) {
		t.Error("5-day streak badge missing")
	}
	if agg.ConsecutiveModules != 3 {
		t.Fatalf("ConsecutiveModules = %d, want 3", agg.ConsecutiveModules)
	}
	if !agg.HasBadge(registry.mustID(t, catalog.BadgeHatTrick)) {
		t.Error("3-in-a-row badge missing")
	}
}

// ── RecordScore ─────────────────────────────────────────

func TestRecordScoreQuickReviewReward(t *testing.T) {
	cat := twoModuleCatalog()
	engine := NewEngine(cat, newFixtureRegistry())
	agg := newAggregate()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	modA, _ := cat.FindModule(ctx, 101)

	summary, err := engine.RecordScore(ctx, agg, modA, models.AttemptQuickReview, 7, now)
	if err != nil {
		t.Fatalf("record score: %v", err)
	}
	if summary.PointsEarned != QuickReviewRewardPoints {
		t.Errorf("PointsEarned = %d, want %d", summary.PointsEarned, QuickReviewRewardPoints)
	}
	if agg.Points != QuickReviewRewardPoints {
		t.Errorf("Points = %d, want %d", agg.Points, QuickReviewRewardPoints)
	}
	if len(agg.DailyPoints) != 1 || agg.DailyPoints[0].Points != QuickReviewRewardPoints {
		t.Errorf("DailyPoints = %+v, want one bucket with %d", agg.DailyPoints, QuickReviewRewardPoints)
	}
}

func TestRecordScoreBelowRewardThreshold(t *testing.T) {
	cat := twoModuleCatalog()
	engine := NewEngine(cat, newFixtureRegistry())
	agg := newAggregate()
	ctx := context.Background()
	modA, _ := cat.FindModule(ctx, 101)

	summary, err := engine.RecordScore(ctx, agg, modA, models.AttemptQuickReview, 6, time.Now())
	if err != nil {
		t.Fatalf("record score: %v", err)
	}
	if summary.PointsEarned != 0 || agg.Points != 0 {
		t.Errorf("score below threshold earned points: summary %d, total %d", summary.PointsEarned, agg.Points)
	}
}

func TestRecordScoreHistory(t *testing.T) {
	cat := twoModuleCatalog()
	registry := newFixtureRegistry()
	engine := NewEngine(cat, registry)
	agg := newAggregate()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	modA, _ := cat.FindModule(ctx, 101)

	scores := []int{6, 9, 7}
	var last *models.ScoreSummary
	for i, score := range scores {
		var err error
		last, err = engine.RecordScore(ctx, agg, modA, models.AttemptQuiz, score, now.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatalf("record score %d: %v", score, err)
		}
	}

	if last.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", last.Attempts)
	}
	if last.HighestScore != 9 {
		t.Errorf("HighestScore = %d, want 9", last.HighestScore)
	}
	// Quiz attempts earn no flat reward.
	if agg.Points != 0 {
		t.Errorf("Points = %d, want 0", agg.Points)
	}

	// A perfect quiz still earns the score badge.
	if _, err := engine.RecordScore(ctx, agg, modA, models.AttemptQuiz, 10, now.Add(4*time.Hour)); err != nil {
		t.Fatalf("record perfect score: %v", err)
	}
	if !agg.HasBadge(registry.mustID(t, catalog.BadgePerfectScore)) {
		t.Error("perfect-score badge missing for a perfect quiz")
	}
}

// ── SubmitFeedback ──────────────────────────────────────

func TestSubmitFeedbackBadges(t *testing.T) {
	tests := []struct {
		name       string
		comment    string
		wantBadges []string
		notAwarded []string
	}{
		{
			name:       "rating alone",
			comment:    "",
			wantBadges: []string{catalog.BadgeModuleCritic},
			notAwarded: []string{catalog.BadgeCommentator, catalog.BadgeIdeaMachine, catalog.BadgeBugHunter},
		},
		{
			name:       "plain comment",
			comment:    "Really enjoyed this one",
			wantBadges: []string{catalog.BadgeModuleCritic, catalog.BadgeCommentator},
			notAwarded: []string{catalog.BadgeIdeaMachine, catalog.BadgeBugHunter},
		},
		{
			name:       "suggestion",
			comment:    "I'd SUGGEST adding more drills",
			wantBadges: []string{catalog.BadgeModuleCritic, catalog.BadgeCommentator, catalog.BadgeIdeaMachine},
			notAwarded: []string{catalog.BadgeBugHunter},
		},
		{
			name:       "issue report",
			comment:    "Found an error in question 3",
			wantBadges: []string{catalog.BadgeModuleCritic, catalog.BadgeCommentator, catalog.BadgeBugHunter},
			notAwarded: []string{catalog.BadgeIdeaMachine},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := twoModuleCatalog()
			registry := newFixtureRegistry()
			engine := NewEngine(cat, registry)
			agg := newAggregate()
			ctx := context.Background()
			modA, _ := cat.FindModule(ctx, 101)

			summary, err := engine.SubmitFeedback(ctx, agg, modA, 4, tt.comment, time.Now())
			if err != nil {
				t.Fatalf("submit feedback: %v", err)
			}

			for _, name := range tt.wantBadges {
				if !agg.HasBadge(registry.mustID(t, name)) {
					t.Errorf("badge %q not awarded", name)
				}
			}
			for _, name := range tt.notAwarded {
				if agg.HasBadge(registry.mustID(t, name)) {
					t.Errorf("badge %q awarded unexpectedly", name)
				}
			}
			if len(summary.BadgesAwarded) != len(tt.wantBadges) {
				t.Errorf("BadgesAwarded = %v, want %d entries", summary.BadgesAwarded, len(tt.wantBadges))
			}
			if len(agg.Feedback) != 1 {
				t.Errorf("Feedback has %d entries, want 1", len(agg.Feedback))
			}
		})
	}
}

func TestSubmitFeedbackLeavesStreaksAlone(t *testing.T) {
	cat := twoModuleCatalog()
	engine := NewEngine(cat, newFixtureRegistry())
	agg := newAggregate()
	agg.DailyStreak = 3
	ctx := context.Background()
	modA, _ := cat.FindModule(ctx, 101)

	if _, err := engine.SubmitFeedback(ctx, agg, modA, 5, "great", time.Now()); err != nil {
		t.Fatalf("submit feedback: %v", err)
	}
	if agg.DailyStreak != 3 || agg.LastCompletionDate != nil {
		t.Errorf("feedback touched streak state: daily %d, last %v", agg.DailyStreak, agg.LastCompletionDate)
	}
}
