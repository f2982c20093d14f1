package generator

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/learnpath/backend/internal/catalog"
	"github.com/learnpath/backend/internal/models"
)

const (
	defaultQuizQuestions = 5
	defaultFlashcards    = 10
	maxItems             = 20
)

type Handler struct {
	generator *Generator
	catalog   *catalog.Store
}

func NewHandler(generator *Generator, catalog *catalog.Store) *Handler {
	return &Handler{generator: generator, catalog: catalog}
}

// GenerateQuiz handles POST /api/v1/modules/{id}/quiz/generate
func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	module, ok := h.lookupModule(w, r)
	if !ok {
		return
	}
	count := itemCount(r, defaultQuizQuestions)

	quiz, usage, err := h.generator.GenerateQuiz(r.Context(), module, count)
	if err != nil {
		log.Printf("[generator] quiz for module %d failed: %v", module.ID, err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Quiz generation failed"})
		return
	}

	log.Printf("[generator] quiz for module %d: %d questions, %d output tokens",
		module.ID, len(quiz.Questions), usage.OutputTokens)
	writeJSON(w, http.StatusOK, quiz)
}

// GenerateFlashcards handles POST /api/v1/modules/{id}/flashcards/generate
func (h *Handler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	module, ok := h.lookupModule(w, r)
	if !ok {
		return
	}
	count := itemCount(r, defaultFlashcards)

	deck, usage, err := h.generator.GenerateFlashcards(r.Context(), module, count)
	if err != nil {
		log.Printf("[generator] flashcards for module %d failed: %v", module.ID, err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Flashcard generation failed"})
		return
	}

	log.Printf("[generator] flashcards for module %d: %d cards, %d output tokens",
		module.ID, len(deck.Cards), usage.OutputTokens)
	writeJSON(w, http.StatusOK, deck)
}

func (h *Handler) lookupModule(w http.ResponseWriter, r *http.Request) (*models.Module, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid module ID"})
		return nil, false
	}

	module, err := h.catalog.FindModule(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Module not found"})
		} else {
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		}
		return nil, false
	}
	return module, true
}

func itemCount(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("count")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxItems {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
