package models

import "time"

// ── Content Hierarchy ─────────────────────────────────────

type Theme struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

type Section struct {
	ID        int64     `json:"id"`
	ThemeID   int64     `json:"theme_id"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type Module struct {
	ID          int64     `json:"id"`
	SectionID   int64     `json:"section_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Skills      []string  `json:"skills"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

type Video struct {
	ID              int64     `json:"id"`
	ModuleID        int64     `json:"module_id"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	DurationSeconds int       `json:"duration_seconds"`
	Position        int       `json:"position"`
	CreatedAt       time.Time `json:"created_at"`
}

// ── Badge Registry ────────────────────────────────────────

// Badge type tags group definitions for type-based awards.
const (
	BadgeTypeModule            = "module"
	BadgeTypeModuleCount       = "module_count"
	BadgeTypeModuleMilestone   = "module_milestone"
	BadgeTypeConsecutive       = "consecutive"
	BadgeTypeStreak            = "streak"
	BadgeTypeScore             = "score"
	BadgeTypeSectionCompletion = "section_completion"
	BadgeTypeThemeCompletion   = "theme_completion"
	BadgeTypeFeedback          = "feedback"
)

// Badge is a registry definition. Mutated only by catalog administration;
// the progress engine reads it through the BadgeRegistry capability.
type Badge struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BadgeType   string `json:"badge_type"`
	Points      int64  `json:"points"`
}
