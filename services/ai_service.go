// services/ai_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"web3-dashboard/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // user | assistant | system
	Content string `json:"content"`
}

// ChatModel produces the next assistant message.
type ChatModel interface {
	Complete(ctx context.Context, model string, messages []ChatMessage) (string, error)
}

// ErrUnsupportedModel is returned for model ids that are neither gpt* nor
// gemini*.
var ErrUnsupportedModel = errors.New("unsupported model")

// AIService routes chat requests to OpenAI (gpt*) or Gemini (gemini*).
type AIService struct {
	OpenAI ChatModel
	Gemini ChatModel
	Logger *zap.Logger
}

func NewAIService(openAI, gemini ChatModel, logger *zap.Logger) *AIService {
	return &AIService{OpenAI: openAI, Gemini: gemini, Logger: logger}
}

func (s *AIService) Chat(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	switch {
	case strings.HasPrefix(model, "gpt"):
		if s.OpenAI == nil {
			return "", errors.New("OpenAI API key is not configured")
		}
		return s.OpenAI.Complete(ctx, model, messages)
	case strings.HasPrefix(model, "gemini"):
		if s.Gemini == nil {
			return "", errors.New("Gemini API key is not configured")
		}
		return s.Gemini.Complete(ctx, model, messages)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedModel, model)
}

// PostChat is POST /api/chat {model, messages}. Provider failures are
// answered with an apology message and the error, as the chat UI expects.
func (s *AIService) PostChat(c *fiber.Ctx) error {
	var input struct {
		Model    string        `json:"model"`
		Messages []ChatMessage `json:"messages"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
	}
	if input.Model == "" || len(input.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Model and messages are required"})
	}

	reply, err := s.Chat(c.UserContext(), input.Model, input.Messages)
	if err != nil {
		s.Logger.Error("❌ [AI] Chat failed", zap.String("model", input.Model), zap.Error(err))
		if errors.Is(err, ErrUnsupportedModel) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{
			"message": "Sorry, there was an error with the AI service.",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": reply})
}

// OpenAIChat calls the chat completions endpoint.
type OpenAIChat struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	Timeout time.Duration
}

func NewOpenAIChat(apiKey string) *OpenAIChat {
	return &OpenAIChat{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com/v1",
		Client:  utils.HTTPClient,
		Timeout: 60 * time.Second,
	}
}

// Complete uses gpt-4o when asked for it and gpt-3.5-turbo otherwise.
func (o *OpenAIChat) Complete(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	openAIModel := "gpt-3.5-turbo"
	if model == "gpt-4o" {
		openAIModel = "gpt-4o"
	}

	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	body, err := json.Marshal(map[string]any{
		"model":       openAIModel,
		"messages":    messages,
		"max_tokens":  1000,
		"temperature": 0.7,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(o.BaseURL, "chat/completions"), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	req.Header.Set(utils.RequestIDHeader, utils.RequestID(ctx))

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call OpenAI: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode OpenAI response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil && out.Error.Message != "" {
			return "", errors.New(out.Error.Message)
		}
		return "", errors.New("failed to get response from OpenAI")
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "No response from OpenAI", nil
	}
	return out.Choices[0].Message.Content, nil
}

// GeminiChat generates replies with gemini-2.0-flash.
type GeminiChat struct {
	APIKey string
	Model  string

	once   sync.Once
	client *genai.Client
	err    error
}

func NewGeminiChat(apiKey string) *GeminiChat {
	return &GeminiChat{APIKey: apiKey, Model: "gemini-2.0-flash"}
}

func (g *GeminiChat) init(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		g.client, g.err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if g.err != nil {
			g.err = fmt.Errorf("failed to create GenAI client: %w", g.err)
		}
	})
	return g.client, g.err
}

// geminiContents maps chat turns onto Gemini roles. System turns become the
// system instruction.
func geminiContents(messages []ChatMessage) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = append(system, msg.Content)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromText(strings.Join(system, "\n"), genai.RoleUser)
}

func (g *GeminiChat) Complete(ctx context.Context, _ string, messages []ChatMessage) (string, error) {
	client, err := g.init(ctx)
	if err != nil {
		return "", err
	}

	contents, system := geminiContents(messages)
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0.7),
		MaxOutputTokens:   1000,
		TopK:              genai.Ptr[float32](40),
		TopP:              genai.Ptr[float32](0.95),
		SystemInstruction: system,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "No response from Gemini", nil
	}
	return text, nil
}
