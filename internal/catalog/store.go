package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/learnpath/backend/internal/models"
	"github.com/lib/pq"
)

// Store is the read capability over the Theme → Section → Module → Video
// hierarchy and the badge registry. Catalog administration happens out of
// band; nothing here mutates content.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Hierarchy Lookups ───────────────────────────────────

func (s *Store) FindModule(ctx context.Context, id int64) (*models.Module, error) {
	var m models.Module
	err := s.db.QueryRowContext(ctx,
		`SELECT id, section_id, title, COALESCE(description, ''), skills, position, created_at
		 FROM modules WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.SectionID, &m.Title, &m.Description, pq.Array(&m.Skills), &m.Position, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("module %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find module: %w", err)
	}
	return &m, nil
}

func (s *Store) FindSection(ctx context.Context, id int64) (*models.Section, error) {
	var sec models.Section
	err := s.db.QueryRowContext(ctx,
		`SELECT id, theme_id, title, position, created_at FROM sections WHERE id = $1`,
		id,
	).Scan(&sec.ID, &sec.ThemeID, &sec.Title, &sec.Position, &sec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("section %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find section: %w", err)
	}
	return &sec, nil
}

func (s *Store) FindTheme(ctx context.Context, id int64) (*models.Theme, error) {
	var t models.Theme
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, COALESCE(description, ''), position, created_at FROM themes WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.Position, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("theme %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find theme: %w", err)
	}
	return &t, nil
}

func (s *Store) ListThemes(ctx context.Context) ([]models.Theme, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, COALESCE(description, ''), position, created_at
		 FROM themes ORDER BY position, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	var themes []models.Theme
	for rows.Next() {
		var t models.Theme
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Position, &t.CreatedAt); err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	if themes == nil {
		themes = []models.Theme{}
	}
	return themes, rows.Err()
}

func (s *Store) FindSectionsByTheme(ctx context.Context, themeID int64) ([]models.Section, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, theme_id, title, position, created_at
		 FROM sections WHERE theme_id = $1 ORDER BY position, id`,
		themeID,
	)
	if err != nil {
		return nil, fmt.Errorf("find sections by theme: %w", err)
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		var sec models.Section
		if err := rows.Scan(&sec.ID, &sec.ThemeID, &sec.Title, &sec.Position, &sec.CreatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

func (s *Store) FindModulesBySection(ctx context.Context, sectionID int64) ([]models.Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, section_id, title, COALESCE(description, ''), skills, position, created_at
		 FROM modules WHERE section_id = $1 ORDER BY position, id`,
		sectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("find modules by section: %w", err)
	}
	defer rows.Close()

	var modules []models.Module
	for rows.Next() {
		var m models.Module
		if err := rows.Scan(&m.ID, &m.SectionID, &m.Title, &m.Description, pq.Array(&m.Skills), &m.Position, &m.CreatedAt); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

func (s *Store) FindVideosByModule(ctx context.Context, moduleID int64) ([]models.Video, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, module_id, title, url, duration_seconds, position, created_at
		 FROM videos WHERE module_id = $1 ORDER BY position, id`,
		moduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("find videos by module: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(&v.ID, &v.ModuleID, &v.Title, &v.URL, &v.DurationSeconds, &v.Position, &v.CreatedAt); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	if videos == nil {
		videos = []models.Video{}
	}
	return videos, rows.Err()
}

// ── Badge Registry ──────────────────────────────────────

// FindBadgeByName returns nil (no error) for an unknown name — award logic
// treats a missing definition as a no-op.
func (s *Store) FindBadgeByName(ctx context.Context, name string) (*models.Badge, error) {
	var b models.Badge
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(description, ''), badge_type, points FROM badges WHERE name = $1`,
		name,
	).Scan(&b.ID, &b.Name, &b.Description, &b.BadgeType, &b.Points)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find badge by name: %w", err)
	}
	return &b, nil
}

func (s *Store) FindBadgesByType(ctx context.Context, badgeType string) ([]models.Badge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, ''), badge_type, points
		 FROM badges WHERE badge_type = $1 ORDER BY id`,
		badgeType,
	)
	if err != nil {
		return nil, fmt.Errorf("find badges by type: %w", err)
	}
	defer rows.Close()

	var badges []models.Badge
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.BadgeType, &b.Points); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

func (s *Store) ListBadges(ctx context.Context) ([]models.Badge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, ''), badge_type, points FROM badges ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var badges []models.Badge
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.BadgeType, &b.Points); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	if badges == nil {
		badges = []models.Badge{}
	}
	return badges, rows.Err()
}

// SeedBadges inserts the default badge definitions, skipping any name that
// already exists. Safe to run on every startup.
func (s *Store) SeedBadges(ctx context.Context) error {
	for _, b := range DefaultBadges {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO badges (name, description, badge_type, points)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (name) DO NOTHING`,
			b.Name, b.Description, b.BadgeType, b.Points,
		)
		if err != nil {
			return fmt.Errorf("seed badge %q: %w", b.Name, err)
		}
	}
	return nil
}
