package progress

import (
	"context"
	"log"
	"time"

	"github.com/learnpath/backend/internal/models"
)

// Service validates events, points them at the engine and runs the result
// through the store. One Mutate call per event keeps the whole update
// atomic per user.
type Service struct {
	store   *Store
	catalog Catalog
	engine  *Engine
	now     func() time.Time
}

func NewService(store *Store, c Catalog, r BadgeRegistry) *Service {
	return &Service{
		store:   store,
		catalog: c,
		engine:  NewEngine(c, r),
		now:     time.Now,
	}
}

func (s *Service) CompleteModule(ctx context.Context, userID, moduleID int64, score int) (*models.ProgressSummary, error) {
	if score < 0 || score > MaxScore {
		return nil, models.NewValidationError("score must be between 0 and %d", MaxScore)
	}
	if score < PassingScore {
		return nil, models.NewValidationError("score %d is below the passing threshold of %d", score, PassingScore)
	}

	module, err := s.catalog.FindModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var summary *models.ProgressSummary
	if _, err := s.store.Mutate(ctx, userID, func(agg *models.ProgressAggregate) error {
		var applyErr error
		summary, applyErr = s.engine.CompleteModule(ctx, agg, module, score, now)
		return applyErr
	}); err != nil {
		return nil, err
	}

	log.Printf("[progress] user %d completed module %d (+%d points, %d badges)",
		userID, moduleID, summary.PointsEarned, len(summary.BadgesAwarded))
	return summary, nil
}

func (s *Service) RecordQuizScore(ctx context.Context, userID, moduleID int64, score int) (*models.ScoreSummary, error) {
	return s.recordScore(ctx, userID, moduleID, models.AttemptQuiz, score)
}

func (s *Service) RecordQuickReviewScore(ctx context.Context, userID, moduleID int64, score int) (*models.ScoreSummary, error) {
	return s.recordScore(ctx, userID, moduleID, models.AttemptQuickReview, score)
}

func (s *Service) recordScore(ctx context.Context, userID, moduleID int64, kind string, score int) (*models.ScoreSummary, error) {
	if score < 0 || score > MaxScore {
		return nil, models.NewValidationError("score must be between 0 and %d", MaxScore)
	}

	module, err := s.catalog.FindModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var summary *models.ScoreSummary
	if _, err := s.store.Mutate(ctx, userID, func(agg *models.ProgressAggregate) error {
		var applyErr error
		summary, applyErr = s.engine.RecordScore(ctx, agg, module, kind, score, now)
		return applyErr
	}); err != nil {
		return nil, err
	}

	log.Printf("[progress] user %d scored %d on module %d %s (attempt %d)",
		userID, score, moduleID, kind, summary.Attempts)
	return summary, nil
}

func (s *Service) SubmitFeedback(ctx context.Context, userID, moduleID int64, rating int, comment string) (*models.FeedbackSummary, error) {
	if rating < 1 || rating > 5 {
		return nil, models.NewValidationError("rating must be between 1 and 5")
	}

	module, err := s.catalog.FindModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var summary *models.FeedbackSummary
	if _, err := s.store.Mutate(ctx, userID, func(agg *models.ProgressAggregate) error {
		var applyErr error
		summary, applyErr = s.engine.SubmitFeedback(ctx, agg, module, rating, comment, now)
		return applyErr
	}); err != nil {
		return nil, err
	}

	log.Printf("[progress] user %d rated module %d: %d/5", userID, moduleID, rating)
	return summary, nil
}

func (s *Service) GetProgress(ctx context.Context, userID int64) (*models.ProgressAggregate, error) {
	return s.store.Get(ctx, userID)
}

func (s *Service) GetRanking(ctx context.Context) (*models.RankingResponse, error) {
	users, err := s.store.RankedUsers(ctx)
	if err != nil {
		return nil, err
	}
	entries := Rank(users)
	return &models.RankingResponse{TotalUsers: len(entries), Entries: entries}, nil
}

// GetIndividualRanking runs the full ranking and picks one user out of it.
func (s *Service) GetIndividualRanking(ctx context.Context, userID int64) (*models.RankingEntry, error) {
	ranking, err := s.GetRanking(ctx)
	if err != nil {
		return nil, err
	}
	for i := range ranking.Entries {
		if ranking.Entries[i].UserID == userID {
			return &ranking.Entries[i], nil
		}
	}
	return nil, models.ErrNotFound
}
