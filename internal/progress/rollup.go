package progress

import (
	"context"
	"math"
	"time"

	"github.com/learnpath/backend/internal/models"
)

// rollUp recomputes section and theme completion after a module completion.
// It returns the section and theme progress entries so handlers can report
// the new percentages.
func (e *Engine) rollUp(ctx context.Context, agg *models.ProgressAggregate, module *models.Module, aw *awarder, now time.Time) (*models.LevelProgress, *models.LevelProgress, error) {
	section, err := e.catalog.FindSection(ctx, module.SectionID)
	if err != nil {
		return nil, nil, err
	}

	modules, err := e.catalog.FindModulesBySection(ctx, section.ID)
	if err != nil {
		return nil, nil, err
	}
	// Empty containers carry no percentage to compute.
	if len(modules) > 0 {
		done := 0
		for _, m := range modules {
			if agg.HasCompletedModule(m.ID) {
				done++
			}
		}
		justCompleted := updateLevel(&agg.SectionProgress, section.ID, roundPercent(done, len(modules)), now)
		if justCompleted {
			if err := aw.awardAllOfType(ctx, agg, models.BadgeTypeSectionCompletion, models.CategorySection); err != nil {
				return nil, nil, err
			}
		}
	}

	sections, err := e.catalog.FindSectionsByTheme(ctx, section.ThemeID)
	if err != nil {
		return nil, nil, err
	}
	if len(sections) > 0 {
		done := 0
		for _, s := range sections {
			if lp := agg.FindSectionProgress(s.ID); lp != nil && lp.Status == models.StatusCompleted {
				done++
			}
		}
		justCompleted := updateLevel(&agg.ThemeProgress, section.ThemeID, roundPercent(done, len(sections)), now)
		if justCompleted {
			if err := aw.awardAllOfType(ctx, agg, models.BadgeTypeThemeCompletion, models.CategoryTheme); err != nil {
				return nil, nil, err
			}
		}
	}

	return agg.FindSectionProgress(section.ID), agg.FindThemeProgress(section.ThemeID), nil
}

// updateLevel creates or updates the progress entry for id and reports
// whether the level transitioned into completed during this call.
// CompletedAt is written once, on the first transition, and kept after.
func updateLevel(entries *[]models.LevelProgress, id int64, pct int, now time.Time) bool {
	status := models.StatusInProgress
	// The rounded percentage is authoritative for completion: a value
	// that rounds to 100 completes the level even when a few children
	// remain, so do not compare raw completion counts here instead.
	if pct >= 100 {
		status = models.StatusCompleted
	}

	for i := range *entries {
		lp := &(*entries)[i]
		if lp.ID != id {
			continue
		}
		was := lp.Status
		lp.CompletionPercentage = pct
		lp.Status = status
		if status == models.StatusCompleted && lp.CompletedAt == nil {
			ts := now
			lp.CompletedAt = &ts
		}
		return status == models.StatusCompleted && was != models.StatusCompleted
	}

	lp := models.LevelProgress{ID: id, Status: status, CompletionPercentage: pct, StartedAt: now}
	if status == models.StatusCompleted {
		ts := now
		lp.CompletedAt = &ts
	}
	*entries = append(*entries, lp)
	return status == models.StatusCompleted
}

func roundPercent(done, total int) int {
	return int(math.Round(float64(done) / float64(total) * 100))
}
