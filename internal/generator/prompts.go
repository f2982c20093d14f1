package generator

import (
	"fmt"
	"strings"

	"github.com/learnpath/backend/internal/models"
)

const flashcardMarker = "flashcard deck"

func QuizSystemPrompt() string {
	return `You are a curriculum author writing multiple-choice quiz questions for an online learning platform.

OUTPUT FORMAT:
Respond with a single JSON object and nothing else — no prose, no markdown fences:
{
  "questions": [
    {
      "question": "...",
      "choices": [
        {"id": "A", "text": "..."},
        {"id": "B", "text": "..."},
        {"id": "C", "text": "..."},
        {"id": "D", "text": "..."}
      ],
      "correct_answer_id": "A",
      "explanation": "..."
    }
  ]
}

QUESTION RULES:
- Every question has exactly 4 choices labeled A through D, in that order
- Exactly one choice is correct; correct_answer_id names it
- Wrong choices must be plausible to someone who skimmed the material, not obviously absurd
- Vary which letter holds the correct answer across the quiz
- The explanation states why the correct answer is right in one or two sentences
- Questions must be answerable from the module's subject matter alone, without outside trivia`
}

func BuildQuizUserPrompt(module *models.Module, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d quiz questions for the module %q.\n", count, module.Title)
	if module.Description != "" {
		fmt.Fprintf(&b, "\nModule description:\n%s\n", module.Description)
	}
	if len(module.Skills) > 0 {
		fmt.Fprintf(&b, "\nThe module teaches these skills, and every question must exercise at least one of them:\n")
		for _, skill := range module.Skills {
			fmt.Fprintf(&b, "- %s\n", skill)
		}
	}
	b.WriteString("\nCover the material evenly rather than repeating one concept.")
	return b.String()
}

func FlashcardSystemPrompt() string {
	return `You are a curriculum author writing a quick-review ` + flashcardMarker + ` for an online learning platform.

OUTPUT FORMAT:
Respond with a single JSON object and nothing else — no prose, no markdown fences:
{
  "cards": [
    {"front": "...", "back": "..."}
  ]
}

CARD RULES:
- The front is a single term, question, or concept name — at most a short sentence
- The back is a concise answer or definition, two sentences at most
- One concept per card; never pack multiple facts onto one card
- Cards must stand alone: a learner should understand the back without seeing any other card`
}

func BuildFlashcardUserPrompt(module *models.Module, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d flashcards for the module %q.\n", count, module.Title)
	if module.Description != "" {
		fmt.Fprintf(&b, "\nModule description:\n%s\n", module.Description)
	}
	if len(module.Skills) > 0 {
		fmt.Fprintf(&b, "\nCover these skills:\n")
		for _, skill := range module.Skills {
			fmt.Fprintf(&b, "- %s\n", skill)
		}
	}
	return b.String()
}

func isFlashcardPrompt(systemPrompt string) bool {
	return strings.Contains(systemPrompt, flashcardMarker)
}
