package generator

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

type GeneratedQuiz struct {
	Questions []GeneratedQuestion `json:"questions"`
}

type GeneratedQuestion struct {
	Question        string            `json:"question"`
	Choices         []GeneratedChoice `json:"choices"`
	CorrectAnswerID string            `json:"correct_answer_id"`
	Explanation     string            `json:"explanation"`
}

type GeneratedChoice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type GeneratedFlashcards struct {
	Cards []GeneratedCard `json:"cards"`
}

type GeneratedCard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

func ParseQuizResponse(responseBody string) (*GeneratedQuiz, error) {
	cleaned := stripCodeFences(responseBody)

	var quiz GeneratedQuiz
	if err := json.Unmarshal([]byte(cleaned), &quiz); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateQuiz(&quiz); err != nil {
		return nil, err
	}

	return &quiz, nil
}

func ParseFlashcardResponse(responseBody string) (*GeneratedFlashcards, error) {
	cleaned := stripCodeFences(responseBody)

	var deck GeneratedFlashcards
	if err := json.Unmarshal([]byte(cleaned), &deck); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateFlashcards(&deck); err != nil {
		return nil, err
	}

	return &deck, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

var validChoiceIDs = map[string]bool{"A": true, "B": true, "C": true, "D": true}

func validateQuiz(quiz *GeneratedQuiz) error {
	var errs []string

	if len(quiz.Questions) == 0 {
		return &ValidationError{Errors: []string{"no questions in quiz"}}
	}

	correctAnswerCounts := make(map[string]int)

	for i, q := range quiz.Questions {
		qNum := i + 1

		if q.Question == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty question text", qNum))
		}
		if q.Explanation == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty explanation", qNum))
		}

		if len(q.Choices) != 4 {
			errs = append(errs, fmt.Sprintf("question %d: expected 4 choices, got %d", qNum, len(q.Choices)))
			continue
		}

		expectedIDs := []string{"A", "B", "C", "D"}
		for j, c := range q.Choices {
			if c.ID != expectedIDs[j] {
				errs = append(errs, fmt.Sprintf("question %d: choice %d has id %q, expected %q", qNum, j+1, c.ID, expectedIDs[j]))
			}
			if c.Text == "" {
				errs = append(errs, fmt.Sprintf("question %d: choice %s has empty text", qNum, c.ID))
			}
		}

		if !validChoiceIDs[q.CorrectAnswerID] {
			errs = append(errs, fmt.Sprintf("question %d: invalid correct_answer_id %q", qNum, q.CorrectAnswerID))
		}

		correctAnswerCounts[q.CorrectAnswerID]++
	}

	// Warn (but don't reject) if correct answers are clustered.
	for letter, count := range correctAnswerCounts {
		if count > 2 && len(quiz.Questions) >= 5 {
			log.Printf("WARNING: correct answer %q appears %d times in quiz of %d questions", letter, count, len(quiz.Questions))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

func validateFlashcards(deck *GeneratedFlashcards) error {
	var errs []string

	if len(deck.Cards) == 0 {
		return &ValidationError{Errors: []string{"no cards in deck"}}
	}

	for i, c := range deck.Cards {
		if strings.TrimSpace(c.Front) == "" {
			errs = append(errs, fmt.Sprintf("card %d: empty front", i+1))
		}
		if strings.TrimSpace(c.Back) == "" {
			errs = append(errs, fmt.Sprintf("card %d: empty back", i+1))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}
