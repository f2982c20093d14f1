package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/learnpath/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) ListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.store.ListThemes(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list themes"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"themes": themes})
}

func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	themeID, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.store.FindTheme(r.Context(), themeID); err != nil {
		writeLookupError(w, err, "Theme not found")
		return
	}

	sections, err := h.store.FindSectionsByTheme(r.Context(), themeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list sections"})
		return
	}
	if sections == nil {
		sections = []models.Section{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sections": sections})
}

func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.store.FindSection(r.Context(), sectionID); err != nil {
		writeLookupError(w, err, "Section not found")
		return
	}

	modules, err := h.store.FindModulesBySection(r.Context(), sectionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list modules"})
		return
	}
	if modules == nil {
		modules = []models.Module{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"modules": modules})
}

func (h *Handler) GetModule(w http.ResponseWriter, r *http.Request) {
	moduleID, ok := pathID(w, r)
	if !ok {
		return
	}

	module, err := h.store.FindModule(r.Context(), moduleID)
	if err != nil {
		writeLookupError(w, err, "Module not found")
		return
	}

	videos, err := h.store.FindVideosByModule(r.Context(), moduleID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load module videos"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"module": module, "videos": videos})
}

func (h *Handler) ListBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := h.store.ListBadges(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list badges"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"badges": badges})
}

// ── Helpers ─────────────────────────────────────────────

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid ID"})
		return 0, false
	}
	return id, true
}

func writeLookupError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, models.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: notFoundMsg})
		return
	}
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
