package progress

import (
	"context"
	"time"

	"github.com/learnpath/backend/internal/catalog"
	"github.com/learnpath/backend/internal/models"
)

// Scoring constants shared by module completion and review events.
const (
	MaxScore     = 10
	PassingScore = 8

	QuickReviewRewardScore  = 7
	QuickReviewRewardPoints = 10
)

// Catalog is the read-only hierarchy lookup the engine needs to roll
// completion up from a module to its section and theme.
type Catalog interface {
	FindModule(ctx context.Context, id int64) (*models.Module, error)
	FindSection(ctx context.Context, id int64) (*models.Section, error)
	FindModulesBySection(ctx context.Context, sectionID int64) ([]models.Module, error)
	FindSectionsByTheme(ctx context.Context, themeID int64) ([]models.Section, error)
}

// BadgeRegistry resolves badge definitions. FindBadgeByName returns
// (nil, nil) for names with no definition; awards treat that as a no-op.
type BadgeRegistry interface {
	FindBadgeByName(ctx context.Context, name string) (*models.Badge, error)
	FindBadgesByType(ctx context.Context, badgeType string) ([]models.Badge, error)
}

// Engine applies learning events to an aggregate in memory. It never
// touches persistence; callers load the aggregate, run one engine method
// and persist the result as a unit.
type Engine struct {
	catalog  Catalog
	registry BadgeRegistry
}

func NewEngine(c Catalog, r BadgeRegistry) *Engine {
	return &Engine{catalog: c, registry: r}
}

// CompleteModule applies a passing completion: streaks, the completion
// record, badge evaluation, section/theme roll-up and the point ledger, in
// that order.
func (e *Engine) CompleteModule(ctx context.Context, agg *models.ProgressAggregate, module *models.Module, score int, now time.Time) (*models.ProgressSummary, error) {
	if agg.HasCompletedModule(module.ID) {
		return nil, models.ErrAlreadyCompleted
	}

	aw := newAwarder(e.registry, now)
	tick := tickStreaks(agg, now)
	if err := aw.checkStreakBadges(ctx, agg, tick); err != nil {
		return nil, err
	}

	earned, err := aw.moduleCompletionPoints(ctx, agg)
	if err != nil {
		return nil, err
	}
	agg.CompletedModules = append(agg.CompletedModules, models.CompletedModule{
		ModuleID:     module.ID,
		CompletedAt:  now,
		PointsEarned: earned,
	})

	if err := aw.checkModuleCountBadges(ctx, agg); err != nil {
		return nil, err
	}
	if score == MaxScore {
		if err := aw.awardOnce(ctx, agg, catalog.BadgePerfectScore, ""); err != nil {
			return nil, err
		}
	}

	section, theme, err := e.rollUp(ctx, agg, module, aw, now)
	if err != nil {
		return nil, err
	}

	agg.AddSkills(module.Skills)
	recordPoints(agg, aw.delta, now)

	return &models.ProgressSummary{
		ModuleID:           module.ID,
		PointsEarned:       earned,
		TotalPoints:        agg.Points,
		DailyStreak:        agg.DailyStreak,
		ConsecutiveModules: agg.ConsecutiveModules,
		BadgesAwarded:      aw.awarded,
		Section:            section,
		Theme:              theme,
		LearnedSkills:      agg.LearnedSkills,
	}, nil
}

// RecordScore appends a quiz or quick-review attempt to the score history.
// A quick-review score at or above the reward threshold earns a flat point
// bonus; a perfect score earns the perfect-score badge either way.
func (e *Engine) RecordScore(ctx context.Context, agg *models.ProgressAggregate, module *models.Module, kind string, score int, now time.Time) (*models.ScoreSummary, error) {
	agg.ScoreAttempts = append(agg.ScoreAttempts, models.ScoreAttempt{
		ModuleID:   module.ID,
		Kind:       kind,
		Score:      score,
		RecordedAt: now,
	})

	aw := newAwarder(e.registry, now)
	if score == MaxScore {
		if err := aw.awardOnce(ctx, agg, catalog.BadgePerfectScore, ""); err != nil {
			return nil, err
		}
	}

	var earned int64
	if kind == models.AttemptQuickReview && score >= QuickReviewRewardScore {
		earned = QuickReviewRewardPoints
		agg.Points += earned
		aw.delta += earned
	}
	recordPoints(agg, aw.delta, now)

	highest, attempts := agg.AttemptStats(module.ID, kind)
	return &models.ScoreSummary{
		ModuleID:      module.ID,
		Kind:          kind,
		Score:         score,
		HighestScore:  highest,
		Attempts:      attempts,
		PointsEarned:  earned,
		BadgesAwarded: aw.awarded,
	}, nil
}

// SubmitFeedback stores a rating/comment and evaluates the feedback badge
// rules. Feedback never touches streaks or completion state.
func (e *Engine) SubmitFeedback(ctx context.Context, agg *models.ProgressAggregate, module *models.Module, rating int, comment string, now time.Time) (*models.FeedbackSummary, error) {
	agg.Feedback = append(agg.Feedback, models.ModuleFeedback{
		ModuleID:  module.ID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
	})

	aw := newAwarder(e.registry, now)
	if err := aw.checkFeedbackBadges(ctx, agg, comment); err != nil {
		return nil, err
	}
	recordPoints(agg, aw.delta, now)

	return &models.FeedbackSummary{
		ModuleID:      module.ID,
		Rating:        rating,
		PointsEarned:  aw.delta,
		BadgesAwarded: aw.awarded,
	}, nil
}
