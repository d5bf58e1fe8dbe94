package letter

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Provider generates a JSON document for a prompt.
type Provider interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	// Ping checks that the configured model is reachable.
	Ping(ctx context.Context) error
}

// GeminiProvider drafts with Gemini in JSON response mode.
type GeminiProvider struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func NewGeminiProvider(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model, logger: logger}, nil
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

func (g *GeminiProvider) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	temperature := float32(0.7)
	topP := float32(0.95)

	g.logger.Debug("Generating with Gemini", zap.String("model", g.model))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{Parts: []*genai.Part{{Text: prompt}}},
	}, &genai.GenerateContentConfig{
		Temperature:      &temperature,
		TopP:             &topP,
		MaxOutputTokens:  2048,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}

	text := extractGeminiText(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text, nil
}

func (g *GeminiProvider) Ping(ctx context.Context) error {
	_, err := g.client.Models.Get(ctx, g.model, nil)
	return err
}

// OpenAIProvider drafts with the chat completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIProvider returns nil without an API key.
func NewOpenAIProvider(apiKey, model string, logger *zap.Logger) *OpenAIProvider {
	if apiKey == "" {
		return nil
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client, model: model, logger: logger}
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}

func (o *OpenAIProvider) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	o.logger.Info("Fallback: Generating with OpenAI", zap.String("model", o.model))

	params := openai.ChatCompletionNewParams{
		Model: chatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You must respond with valid JSON only. Do not include any text outside the JSON object."),
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(2048),
	}
	if !strings.HasPrefix(o.model, "gpt-5") {
		params.Temperature = openai.Float(0.7)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}

	o.logger.Debug("OpenAI response received",
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens))

	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) Ping(ctx context.Context) error {
	_, err := o.client.Models.Get(ctx, o.model)
	return err
}

func chatModel(name string) openai.ChatModel {
	switch name {
	case "gpt-5-mini":
		return openai.ChatModelGPT5Mini
	case "gpt-5":
		return openai.ChatModelGPT5
	case "gpt-5-nano":
		return openai.ChatModelGPT5Nano
	case "gpt-4.1-mini":
		return openai.ChatModelGPT4_1Mini
	case "gpt-4o":
		return openai.ChatModelGPT4o
	case "gpt-4o-mini":
		return openai.ChatModelGPT4oMini
	default:
		return openai.ChatModelGPT4_1
	}
}

func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}
