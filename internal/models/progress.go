package models

import "time"

// ── Progress Status Constants ─────────────────────────────

const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Point categories a badge's value can be attributed to.
const (
	CategoryModule  = "module"
	CategorySection = "section"
	CategoryTheme   = "theme"
)

// Score attempt kinds.
const (
	AttemptQuiz        = "quiz"
	AttemptQuickReview = "quick_review"
)

// ── Progress Aggregate ────────────────────────────────────

// ProgressAggregate is the single per-user record every learning event
// mutates. It is loaded whole, mutated in memory, and persisted once.
type ProgressAggregate struct {
	UserID int64 `json:"user_id"`

	Points        int64 `json:"points"`
	ModulePoints  int64 `json:"module_points"`
	SectionPoints int64 `json:"section_points"`
	ThemePoints   int64 `json:"theme_points"`

	DailyStreak        int        `json:"daily_streak"`
	MaxDailyStreak     int        `json:"max_daily_streak"`
	WeeklyStreak       int        `json:"weekly_streak"`
	MaxWeeklyStreak    int        `json:"max_weekly_streak"`
	ConsecutiveModules int        `json:"consecutive_modules"`
	LastCompletionDate *time.Time `json:"last_completion_date,omitempty"`

	CompletedModules []CompletedModule `json:"completed_modules"`
	SectionProgress  []LevelProgress   `json:"section_progress"`
	ThemeProgress    []LevelProgress   `json:"theme_progress"`
	Badges           []AwardedBadge    `json:"badges"`

	DailyPoints   []DailyBucket   `json:"daily_points"`
	WeeklyPoints  []WeeklyBucket  `json:"weekly_points"`
	MonthlyPoints []MonthlyBucket `json:"monthly_points"`

	LearnedSkills []string `json:"learned_skills"`

	ScoreAttempts []ScoreAttempt   `json:"-"`
	Feedback      []ModuleFeedback `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CompletedModule struct {
	ModuleID     int64     `json:"module_id"`
	CompletedAt  time.Time `json:"completed_at"`
	PointsEarned int64     `json:"points_earned"`
}

// LevelProgress tracks completion of a section or theme. CompletedAt is set
// on the first transition to completed and never overwritten.
type LevelProgress struct {
	ID                   int64      `json:"id"`
	Status               string     `json:"status"`
	CompletionPercentage int        `json:"completion_percentage"`
	StartedAt            time.Time  `json:"started_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

type AwardedBadge struct {
	BadgeID   int64     `json:"badge_id"`
	AwardedAt time.Time `json:"awarded_at"`
}

// ── Time-Bucketed Point Ledgers ───────────────────────────

// DailyBucket keys on the UTC calendar date, formatted 2006-01-02.
type DailyBucket struct {
	Day    string `json:"day"`
	Points int64  `json:"points"`
}

// WeeklyBucket keys on the Monday-start week, both bounds inclusive.
type WeeklyBucket struct {
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
	Points    int64  `json:"points"`
}

// MonthlyBucket keys on the calendar month, formatted 2006-01.
type MonthlyBucket struct {
	Month  string `json:"month"`
	Points int64  `json:"points"`
}

// ── Score History / Feedback ──────────────────────────────

// ScoreAttempt is one append-only history entry. ID is zero until persisted.
type ScoreAttempt struct {
	ID         int64     `json:"id"`
	ModuleID   int64     `json:"module_id"`
	Kind       string    `json:"kind"`
	Score      int       `json:"score"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ModuleFeedback is a stored rating/comment. ID is zero until persisted.
type ModuleFeedback struct {
	ID        int64     `json:"id"`
	ModuleID  int64     `json:"module_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ── Aggregate Helpers ─────────────────────────────────────

func (a *ProgressAggregate) HasCompletedModule(moduleID int64) bool {
	for _, m := range a.CompletedModules {
		if m.ModuleID == moduleID {
			return true
		}
	}
	return false
}

func (a *ProgressAggregate) HasBadge(badgeID int64) bool {
	for _, b := range a.Badges {
		if b.BadgeID == badgeID {
			return true
		}
	}
	return false
}

// FindSectionProgress returns a pointer into SectionProgress, or nil.
func (a *ProgressAggregate) FindSectionProgress(sectionID int64) *LevelProgress {
	for i := range a.SectionProgress {
		if a.SectionProgress[i].ID == sectionID {
			return &a.SectionProgress[i]
		}
	}
	return nil
}

// FindThemeProgress returns a pointer into ThemeProgress, or nil.
func (a *ProgressAggregate) FindThemeProgress(themeID int64) *LevelProgress {
	for i := range a.ThemeProgress {
		if a.ThemeProgress[i].ID == themeID {
			return &a.ThemeProgress[i]
		}
	}
	return nil
}

// AddSkills merges skills into LearnedSkills, keeping set semantics.
func (a *ProgressAggregate) AddSkills(skills []string) {
	for _, s := range skills {
		if s == "" {
			continue
		}
		known := false
		for _, have := range a.LearnedSkills {
			if have == s {
				known = true
				break
			}
		}
		if !known {
			a.LearnedSkills = append(a.LearnedSkills, s)
		}
	}
}

// AttemptStats returns the highest score and attempt count for one module
// and attempt kind.
func (a *ProgressAggregate) AttemptStats(moduleID int64, kind string) (highest, attempts int) {
	for _, at := range a.ScoreAttempts {
		if at.ModuleID != moduleID || at.Kind != kind {
			continue
		}
		attempts++
		if at.Score > highest {
			highest = at.Score
		}
	}
	return highest, attempts
}

// ── Request Types ─────────────────────────────────────────

type CompleteModuleRequest struct {
	Score int `json:"score"`
}

type ScoreRequest struct {
	Score int `json:"score"`
}

type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// ── Response Types ────────────────────────────────────────

// ProgressSummary is returned after a module completion event.
type ProgressSummary struct {
	ModuleID           int64           `json:"module_id"`
	PointsEarned       int64           `json:"points_earned"`
	TotalPoints        int64           `json:"total_points"`
	DailyStreak        int             `json:"daily_streak"`
	ConsecutiveModules int             `json:"consecutive_modules"`
	BadgesAwarded      []string        `json:"badges_awarded"`
	Section            *LevelProgress  `json:"section,omitempty"`
	Theme              *LevelProgress  `json:"theme,omitempty"`
	LearnedSkills      []string        `json:"learned_skills"`
}

type ScoreSummary struct {
	ModuleID      int64    `json:"module_id"`
	Kind          string   `json:"kind"`
	Score         int      `json:"score"`
	HighestScore  int      `json:"highest_score"`
	Attempts      int      `json:"attempts"`
	PointsEarned  int64    `json:"points_earned"`
	BadgesAwarded []string `json:"badges_awarded"`
}

type FeedbackSummary struct {
	ModuleID      int64    `json:"module_id"`
	Rating        int      `json:"rating"`
	PointsEarned  int64    `json:"points_earned"`
	BadgesAwarded []string `json:"badges_awarded"`
}

// RankedUser is one user's snapshot fed into the ranking engine.
type RankedUser struct {
	UserID      int64
	DisplayName string
	Points      int64
}

type RankingEntry struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	Points      int64  `json:"points"`
	Rank        int    `json:"rank"`
	Percentile  int    `json:"percentile"`
}

type RankingResponse struct {
	TotalUsers int            `json:"total_users"`
	Entries    []RankingEntry `json:"entries"`
}
