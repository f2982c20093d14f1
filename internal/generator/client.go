package generator

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/learnpath/backend/internal/models"
)

// LLMClient is the interface both generator implementations satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Generator wraps an LLMClient and adds module-specific content methods.
type Generator struct {
	llm   LLMClient
	model string
}

func NewGenerator() *Generator {
	var llm LLMClient
	model := "mock"

	if os.Getenv("MOCK_GENERATOR") == "true" {
		llm = NewMockClient()
		log.Println("Generator using mock data")
	} else {
		model = os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-sonnet-4-20250514"
		}
		llm = NewAPIClient(model)
		log.Println("Generator using Anthropic API:", model)
	}

	return &Generator{llm: llm, model: model}
}

func (g *Generator) ModelName() string {
	return g.model
}

// GenerateQuiz builds a quiz for one module from its title, description and
// skill tags.
func (g *Generator) GenerateQuiz(ctx context.Context, module *models.Module, count int) (*GeneratedQuiz, *LLMResponse, error) {
	systemPrompt := QuizSystemPrompt()
	userPrompt := BuildQuizUserPrompt(module, count)

	resp, err := g.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, nil, fmt.Errorf("generate quiz: %w", err)
	}

	quiz, err := ParseQuizResponse(resp.Content)
	if err != nil {
		return nil, resp, fmt.Errorf("parse quiz response: %w", err)
	}

	return quiz, resp, nil
}

// GenerateFlashcards builds a quick-review flashcard deck for one module.
func (g *Generator) GenerateFlashcards(ctx context.Context, module *models.Module, count int) (*GeneratedFlashcards, *LLMResponse, error) {
	systemPrompt := FlashcardSystemPrompt()
	userPrompt := BuildFlashcardUserPrompt(module, count)

	resp, err := g.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, nil, fmt.Errorf("generate flashcards: %w", err)
	}

	deck, err := ParseFlashcardResponse(resp.Content)
	if err != nil {
		return nil, resp, fmt.Errorf("parse flashcard response: %w", err)
	}

	return deck, resp, nil
}

// ── APIClient — Anthropic SDK (Production) ─────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   4096,
		Temperature: param.NewOpt(0.7),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── MockClient — Local Development ─────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	content := buildMockQuizJSON()
	if isFlashcardPrompt(systemPrompt) {
		content = buildMockFlashcardJSON()
	}
	return &LLMResponse{
		Content:      content,
		PromptTokens: 800,
		OutputTokens: 1600,
	}, nil
}

func buildMockQuizJSON() string {
	correctAnswers := []string{"A", "B", "C", "D"}
	questions := "["
	for i := 0; i < 5; i++ {
		correctID := correctAnswers[i%4]
		if i > 0 {
			questions += ","
		}

		choices := "["
		for j, id := range correctAnswers {
			label := "incorrect"
			if id == correctID {
				label = "correct"
			}
			if j > 0 {
				choices += ","
			}
			choices += fmt.Sprintf(`{"id":"%s","text":"[Mock] Answer choice %s for practice question %d, the %s one."}`,
				id, id, i+1, label)
		}
		choices += "]"

		questions += fmt.Sprintf(`{"question":"[Mock] Practice question %d about the module topic?","choices":%s,"correct_answer_id":"%s","explanation":"[Mock] Choice %s follows from the material covered in this module."}`,
			i+1, choices, correctID, correctID)
	}
	questions += "]"

	return fmt.Sprintf(`{"questions":%s}`, questions)
}

func buildMockFlashcardJSON() string {
	cards := "["
	for i := 0; i < 5; i++ {
		if i > 0 {
			cards += ","
		}
		cards += fmt.Sprintf(`{"front":"[Mock] Key concept %d","back":"[Mock] A short definition of concept %d from the module."}`, i+1, i+1)
	}
	cards += "]"
	return fmt.Sprintf(`{"cards":%s}`, cards)
}
