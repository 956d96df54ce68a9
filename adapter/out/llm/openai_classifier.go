// Package llm implements the email classifier on OpenAI chat completions.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	openai "github.com/sashabaranov/go-openai"

	"inboxcore/core/port/out"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"

	defaultTimeout = 30 * time.Second
)

const systemPrompt = `You are an email triage assistant for %s.
Classify the email into exactly one category:
- payment_request_external: a payment or invoice request from outside the organization
- payment_request_internal: a payment or invoice request from inside the organization
- service_request: a customer or partner asking for action or support
- general_correspondence: normal business communication
- promotional: marketing or sales content
- spam: unsolicited junk
- notification: automated system or status notifications

Respond with a JSON object in exactly this format:
{"category": "...", "is_payment_request": bool, "is_from_own_org": bool, "urgency": "high|medium|low", "needs_response": bool, "summary": "one sentence"}`

// ClassifierConfig holds classifier adapter configuration.
type ClassifierConfig struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	OwnOrgName string
}

// OpenAIClassifier implements out.EmailClassifier with a circuit breaker
// so a failing upstream degrades to fast fallback instead of piling up
// timed-out calls.
type OpenAIClassifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	ownOrg  string
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewOpenAIClassifier creates a classifier adapter.
func NewOpenAIClassifier(cfg ClassifierConfig, log zerolog.Logger) *OpenAIClassifier {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	logger := log.With().Str("component", "openai_classifier").Logger()

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "openai-classifier",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &OpenAIClassifier{
		client:  openai.NewClient(cfg.APIKey),
		model:   model,
		timeout: timeout,
		ownOrg:  cfg.OwnOrgName,
		breaker: breaker,
		log:     logger,
	}
}

// Classify sends the email slice to the model and parses the JSON reply.
func (c *OpenAIClassifier) Classify(ctx context.Context, input out.ClassifyInput) (*out.ClassifyResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(callCtx, input)
	})
	if err != nil {
		return nil, err
	}

	content := stripJSONFence(raw.(string))

	var result out.ClassifyResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse classifier response: %w", err)
	}
	return &result, nil
}

func (c *OpenAIClassifier) complete(ctx context.Context, input out.ClassifyInput) (string, error) {
	userPrompt := fmt.Sprintf("From: %s <%s>\nSubject: %s\nSnippet: %s\n\nBody:\n%s",
		input.SenderName, input.Sender, input.Subject, input.Snippet, input.BodyExcerpt)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(systemPrompt, c.ownOrg),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call classifier: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("classifier returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// stripJSONFence removes a markdown code fence some models wrap around
// JSON replies despite the response format hint.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Interface compliance
var _ out.EmailClassifier = (*OpenAIClassifier)(nil)
