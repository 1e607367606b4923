package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

var errEmptyAIResponse = errors.New("no response from OpenAI")

// AIService implements TaskGenerator with an OpenAI chat model.
type AIService struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

// GeneratedTask is a task suggestion. It is returned to the client, never stored.
type GeneratedTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`
}

// NewAIService returns nil when no API key is configured.
func NewAIService(apiKey, model string) *AIService {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  model,
		now:    time.Now,
	}
}

const generatePrompt = `You are a task extraction assistant. Extract concrete, actionable tasks from the text below.

Current time: %s

Text:
%s

Return a JSON array of tasks in this shape:
[
  {
    "title": "short task title (3-100 characters)",
    "description": "details of the task",
    "priority": "low | medium | high",
    "tags": ["short", "labels"],
    "dueDate": "deadline in ISO8601, e.g. 2025-10-28T23:59:59Z, or null when none is stated"
  }
]

Rules:
- Return [] when the text contains no tasks
- Convert relative deadlines such as "tomorrow" or "next week" into concrete dates
- dueDate must be an ISO8601 string or null
- Return JSON only, without any explanation`

// GenerateTasksFromText analyzes text and extracts tasks using OpenAI
func (s *AIService) GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s == nil || s.client == nil {
		return nil, ErrAIServiceNotConfigured
	}

	prompt := fmt.Sprintf(generatePrompt, s.now().UTC().Format(time.RFC3339), text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errEmptyAIResponse
	}

	return parseGeneratedTasks(resp.Choices[0].Message.Content)
}

// parseGeneratedTasks decodes the model output, tolerating a markdown code fence.
func parseGeneratedTasks(content string) ([]GeneratedTask, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return tasks, nil
}
