package progress

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/learnpath/backend/internal/models"
)

// Store persists progress aggregates. Every mutation runs through Mutate,
// which serializes concurrent events for the same user on the aggregate's
// row lock.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier lets the load helpers run against the pool or inside a tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Mutate loads the user's aggregate under a row lock, applies the event
// and writes the resulting state back in the same transaction. Nothing is
// committed if any step fails, so a retried event replays cleanly.
func (s *Store) Mutate(ctx context.Context, userID int64, apply func(agg *models.ProgressAggregate) error) (*models.ProgressAggregate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin progress tx: %w", err)
	}
	defer tx.Rollback()

	agg, err := s.load(ctx, tx, userID, true)
	if err != nil {
		return nil, err
	}
	if err := apply(agg); err != nil {
		return nil, err
	}
	if err := s.save(ctx, tx, agg); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit progress tx: %w", err)
	}
	return agg, nil
}

// Get returns the aggregate without locking it.
func (s *Store) Get(ctx context.Context, userID int64) (*models.ProgressAggregate, error) {
	return s.load(ctx, s.db, userID, false)
}

// RankedUsers returns the points snapshot the ranking engine orders. The
// read is unlocked; a ranking may trail an in-flight completion.
func (s *Store) RankedUsers(ctx context.Context) ([]models.RankedUser, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.user_id, u.name, p.points
		 FROM user_progress p
		 JOIN users u ON u.id = p.user_id
		 ORDER BY p.points DESC, p.user_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query ranked users: %w", err)
	}
	defer rows.Close()

	users := []models.RankedUser{}
	for rows.Next() {
		var ru models.RankedUser
		var name string
		if err := rows.Scan(&ru.UserID, &name, &ru.Points); err != nil {
			return nil, fmt.Errorf("scan ranked user: %w", err)
		}
		ru.DisplayName = models.User{Name: name}.DisplayName()
		users = append(users, ru)
	}
	return users, rows.Err()
}

// ── Load ────────────────────────────────────────────────

func (s *Store) load(ctx context.Context, q querier, userID int64, forUpdate bool) (*models.ProgressAggregate, error) {
	query := `SELECT user_id, points, module_points, section_points, theme_points,
	                 daily_streak, max_daily_streak, weekly_streak, max_weekly_streak,
	                 consecutive_modules, last_completion_date, created_at, updated_at
	          FROM user_progress WHERE user_id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	agg := &models.ProgressAggregate{}
	var lastCompletion sql.NullTime
	err := q.QueryRowContext(ctx, query, userID).Scan(
		&agg.UserID, &agg.Points, &agg.ModulePoints, &agg.SectionPoints, &agg.ThemePoints,
		&agg.DailyStreak, &agg.MaxDailyStreak, &agg.WeeklyStreak, &agg.MaxWeeklyStreak,
		&agg.ConsecutiveModules, &lastCompletion, &agg.CreatedAt, &agg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("progress for user %d: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load progress for user %d: %w", userID, err)
	}
	if lastCompletion.Valid {
		ts := lastCompletion.Time
		agg.LastCompletionDate = &ts
	}

	if err := s.loadCompletions(ctx, q, agg); err != nil {
		return nil, err
	}
	if err := s.loadLevels(ctx, q, agg); err != nil {
		return nil, err
	}
	if err := s.loadBadges(ctx, q, agg); err != nil {
		return nil, err
	}
	if err := s.loadBuckets(ctx, q, agg); err != nil {
		return nil, err
	}
	if err := s.loadSkillsAndHistory(ctx, q, agg); err != nil {
		return nil, err
	}
	return agg, nil
}

func (s *Store) loadCompletions(ctx context.Context, q querier, agg *models.ProgressAggregate) error {
	rows, err := q.QueryContext(ctx,
		`SELECT module_id, completed_at, points_earned
		 FROM completed_modules WHERE user_id = $1 ORDER BY completed_at`,
		agg.UserID,
	)
	if err != nil {
		return fmt.Errorf("load completed modules: %w", err)
	}
	defer rows.Close()

	agg.CompletedModules = []models.CompletedModule{}
	for rows.Next() {
		var cm models.CompletedModule
		if err := rows.Scan(&cm.ModuleID, &cm.CompletedAt, &cm.PointsEarned); err != nil {
			return fmt.Errorf("scan completed module: %w", err)
		}
		agg.CompletedModules = append(agg.CompletedModules, cm)
	}
	return rows.Err()
}

func (s *Store) loadLevels(ctx context.Context, q querier, agg *models.ProgressAggregate) error {
	load := func(query string, dst *[]models.LevelProgress) error {
		rows, err := q.QueryContext(ctx, query, agg.UserID)
		if err != nil {
			return err
		}
		defer rows.Close()

		*dst = []models.LevelProgress{}
		for rows.Next() {
			var lp models.LevelProgress
			var completedAt sql.NullTime
			if err := rows.Scan(&lp.ID, &lp.Status, &lp.CompletionPercentage, &lp.StartedAt, &completedAt); err != nil {
				return err
			}
			if completedAt.Valid {
				ts := completedAt.Time
				lp.CompletedAt = &ts
			}
			*dst = append(*dst, lp)
		}
		return rows.Err()
	}

	if err := load(
		`SELECT section_id, status, completion_percentage, started_at, completed_at
		 FROM section_progress WHERE user_id = $1 ORDER BY started_at`,
		&agg.SectionProgress,
	); err != nil {
		return fmt.Errorf("load section progress: %w", err)
	}
	if err := load(
		`SELECT theme_id, status, completion_percentage, started_at, completed_at
		 FROM theme_progress WHERE user_id = $1 ORDER BY started_at`,
		&agg.ThemeProgress,
	); err != nil {
		return fmt.Errorf("load theme progress: %w", err)
	}
	return nil
}

func (s *Store) loadBadges(ctx context.Context, q querier, agg *models.ProgressAggregate) error {
	rows, err := q.QueryContext(ctx,
		`SELECT badge_id, awarded_at FROM user_badges WHERE user_id = $1 ORDER BY awarded_at`,
		agg.UserID,
	)
	if err != nil {
		return fmt.Errorf("load badges: %w", err)
	}
	defer rows.Close()

	agg.Badges = []models.AwardedBadge{}
	for rows.Next() {
		var b models.AwardedBadge
		if err := rows.Scan(&b.BadgeID, &b.AwardedAt); err != nil {
			return fmt.Errorf("scan badge: %w", err)
		}
		agg.Badges = append(agg.Badges, b)
	}
	return rows.Err()
}

func (s *Store) loadBuckets(ctx context.Context, q querier, agg *models.ProgressAggregate) error {
	rows, err := q.QueryContext(ctx,
		`SELECT day, points FROM daily_points WHERE user_id = $1 ORDER BY day`,
		agg.UserID,
	)
	if err != nil {
		return fmt.Errorf("load daily points: %w", err)
	}
	agg.DailyPoints = []models.DailyBucket{}
	for rows.Next() {
		var day time.Time
		var points int64
		if err := rows.Scan(&day, &points); err != nil {
			rows.Close()
			return fmt.Errorf("scan daily points: %w", err)
		}
		agg.DailyPoints = append(agg.DailyPoints, models.DailyBucket{Day: day.UTC().Format(dayLayout), Points: points})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rows, err = q.QueryContext(ctx,
		`SELECT week_start, week_end, points FROM weekly_points WHERE user_id = $1 ORDER BY week_start`,
		agg.UserID,
	)
	if err != nil {
		return fmt.Errorf("load weekly points: %w", err)
	}
	agg.WeeklyPoints = []models.WeeklyBucket{}
	for rows.Next() {
		var start, end time.Time
		var points int64
		if err := rows.Scan(&start, &end, &points); err != nil {
			rows.Close()
			return fmt.Errorf("scan weekly points: %w", err)
		}
		agg.WeeklyPoints = append(agg.WeeklyPoints, models.WeeklyBucket{
			WeekStart: start.UTC().Format(dayLayout),
			WeekEnd:   end.UTC().Format(dayLayout),
			Points:    points,
		})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rows, err = q.QueryContext(ctx,
		`SELECT month, points FROM monthly_points WHERE user_id = $1 ORDER BY month`,
		agg.UserID,
	)
	if err != nil {
		return fmt.Errorf("load monthly points: %w", err)
	}
	defer rows.Close()
	agg.MonthlyPoints = []models.MonthlyBucket{}
	for rows.Next() {
		var mb models.MonthlyBucket
		if err := rows.Scan(&mb.Month, &mb.Points); err != nil {
			return fmt.Errorf("scan monthly points: %w", err)
		}
		agg.MonthlyPoints = append(agg.MonthlyPoints, mb)
	}
	return rows.Err()
}

func (s *Store) loadSkillsAndHistory(ctx context.Context, q querier, agg *models.ProgressAggregate) error {
	rows, err := q.QueryContext(ctx,
		`SELECT skill FROM learned_skills WHERE user_id = $1 ORDER BY skill`,
		agg.UserID,
	)
	if err != nil {
		return fmt.Errorf("load learned skills: %w", err)
	}
	agg.LearnedSkills = []string{}
	for rows.Next() {
		var skill string
		if err := rows.Scan(&skill); err != nil {
			rows.Close()
			return fmt.Errorf("scan learned skill: %w", err)
		}
		agg.LearnedSkills = append(agg.LearnedSkills, skill)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rows, err = q.QueryContext(ctx,
		`SELECT id, module_id, kind, score, recorded_at
		 FROM score_attempts WHERE user_id = $1 ORDER BY recorded_at, id`,
		agg.UserID,
	)
	if err != nil {
		return fmt.Errorf("load score attempts: %w", err)
	}
	agg.ScoreAttempts = []models.ScoreAttempt{}
	for rows.Next() {
		var at models.ScoreAttempt
		if err := rows.Scan(&at.ID, &at.ModuleID, &at.Kind, &at.Score, &at.RecordedAt); err != nil {
			rows.Close()
			return fmt.Errorf("scan score attempt: %w", err)
		}
		agg.ScoreAttempts = append(agg.ScoreAttempts, at)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rows, err = q.QueryContext(ctx,
		`SELECT id, module_id, rating, comment, created_at
		 FROM module_feedback WHERE user_id = $1 ORDER BY created_at, id`,
		agg.UserID,
	)
	if err != nil {
		return fmt.Errorf("load module feedback: %w", err)
	}
	defer rows.Close()
	agg.Feedback = []models.ModuleFeedback{}
	for rows.Next() {
		var fb models.ModuleFeedback
		var comment sql.NullString
		if err := rows.Scan(&fb.ID, &fb.ModuleID, &fb.Rating, &comment, &fb.CreatedAt); err != nil {
			return fmt.Errorf("scan module feedback: %w", err)
		}
		fb.Comment = comment.String
		agg.Feedback = append(agg.Feedback, fb)
	}
	return rows.Err()
}

// ── Save ────────────────────────────────────────────────

// save writes the aggregate's absolute state. Membership tables upsert on
// their natural keys and bucket rows are overwritten with the in-memory
// totals, so replaying a save is harmless.
func (s *Store) save(ctx context.Context, tx *sql.Tx, agg *models.ProgressAggregate) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE user_progress
		 SET points = $2, module_points = $3, section_points = $4, theme_points = $5,
		     daily_streak = $6, max_daily_streak = $7, weekly_streak = $8, max_weekly_streak = $9,
		     consecutive_modules = $10, last_completion_date = $11, updated_at = NOW()
		 WHERE user_id = $1`,
		agg.UserID, agg.Points, agg.ModulePoints, agg.SectionPoints, agg.ThemePoints,
		agg.DailyStreak, agg.MaxDailyStreak, agg.WeeklyStreak, agg.MaxWeeklyStreak,
		agg.ConsecutiveModules, agg.LastCompletionDate,
	)
	if err != nil {
		return fmt.Errorf("save progress scalars: %w", err)
	}

	for _, cm := range agg.CompletedModules {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO completed_modules (user_id, module_id, completed_at, points_earned)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (user_id, module_id) DO NOTHING`,
			agg.UserID, cm.ModuleID, cm.CompletedAt, cm.PointsEarned,
		); err != nil {
			return fmt.Errorf("save completed module %d: %w", cm.ModuleID, err)
		}
	}

	for _, lp := range agg.SectionProgress {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO section_progress (user_id, section_id, status, completion_percentage, started_at, completed_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (user_id, section_id) DO UPDATE
			 SET status = EXCLUDED.status,
			     completion_percentage = EXCLUDED.completion_percentage,
			     completed_at = EXCLUDED.completed_at`,
			agg.UserID, lp.ID, lp.Status, lp.CompletionPercentage, lp.StartedAt, lp.CompletedAt,
		); err != nil {
			return fmt.Errorf("save section progress %d: %w", lp.ID, err)
		}
	}
	for _, lp := range agg.ThemeProgress {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO theme_progress (user_id, theme_id, status, completion_percentage, started_at, completed_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (user_id, theme_id) DO UPDATE
			 SET status = EXCLUDED.status,
			     completion_percentage = EXCLUDED.completion_percentage,
			     completed_at = EXCLUDED.completed_at`,
			agg.UserID, lp.ID, lp.Status, lp.CompletionPercentage, lp.StartedAt, lp.CompletedAt,
		); err != nil {
			return fmt.Errorf("save theme progress %d: %w", lp.ID, err)
		}
	}

	for _, b := range agg.Badges {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_badges (user_id, badge_id, awarded_at)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, badge_id) DO NOTHING`,
			agg.UserID, b.BadgeID, b.AwardedAt,
		); err != nil {
			return fmt.Errorf("save badge %d: %w", b.BadgeID, err)
		}
	}

	if err := s.saveBuckets(ctx, tx, agg); err != nil {
		return err
	}

	for _, skill := range agg.LearnedSkills {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO learned_skills (user_id, skill) VALUES ($1, $2)
			 ON CONFLICT (user_id, skill) DO NOTHING`,
			agg.UserID, skill,
		); err != nil {
			return fmt.Errorf("save learned skill %q: %w", skill, err)
		}
	}

	// History rows are append-only; entries without an id are the ones
	// this event created.
	for i := range agg.ScoreAttempts {
		at := &agg.ScoreAttempts[i]
		if at.ID != 0 {
			continue
		}
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO score_attempts (user_id, module_id, kind, score, recorded_at)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			agg.UserID, at.ModuleID, at.Kind, at.Score, at.RecordedAt,
		).Scan(&at.ID); err != nil {
			return fmt.Errorf("save score attempt: %w", err)
		}
	}
	for i := range agg.Feedback {
		fb := &agg.Feedback[i]
		if fb.ID != 0 {
			continue
		}
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO module_feedback (user_id, module_id, rating, comment, created_at)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			agg.UserID, fb.ModuleID, fb.Rating, fb.Comment, fb.CreatedAt,
		).Scan(&fb.ID); err != nil {
			return fmt.Errorf("save module feedback: %w", err)
		}
	}

	return nil
}

func (s *Store) saveBuckets(ctx context.Context, tx *sql.Tx, agg *models.ProgressAggregate) error {
	for _, db := range agg.DailyPoints {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO daily_points (user_id, day, points) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, day) DO UPDATE SET points = EXCLUDED.points`,
			agg.UserID, db.Day, db.Points,
		); err != nil {
			return fmt.Errorf("save daily points %s: %w", db.Day, err)
		}
	}
	for _, wb := range agg.WeeklyPoints {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO weekly_points (user_id, week_start, week_end, points) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (user_id, week_start) DO UPDATE SET points = EXCLUDED.points`,
			agg.UserID, wb.WeekStart, wb.WeekEnd, wb.Points,
		); err != nil {
			return fmt.Errorf("save weekly points %s: %w", wb.WeekStart, err)
		}
	}
	for _, mb := range agg.MonthlyPoints {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO monthly_points (user_id, month, points) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, month) DO UPDATE SET points = EXCLUDED.points`,
			agg.UserID, mb.Month, mb.Points,
		); err != nil {
			return fmt.Errorf("save monthly points %s: %w", mb.Month, err)
		}
	}
	return nil
}
