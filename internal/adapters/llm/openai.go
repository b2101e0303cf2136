package llm

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/PabloGalante/mindweave/internal/domain"
)

const (
	DefaultOpenAIModel = "gpt-4o-mini"
	openAIMaxRetries   = 2
	openAITimeout      = 60 * time.Second
)

type OpenAIConfig struct {
	APIKey string
	// BaseURL points at any OpenAI-compatible endpoint (e.g. a local server).
	BaseURL string
	Model   string
}

type OpenAIClient struct {
	client openaigo.Client
	model  string
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" && strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("openai: api key or base url is required")
	}

	opts := []option.RequestOption{
		option.WithMaxRetries(openAIMaxRetries),
		option.WithRequestTimeout(openAITimeout),
	}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIClient{
		client: openaigo.NewClient(opts...),
		model:  model,
	}, nil
}

// Analyze implements domain.Analyzer using JSON-object response format.
func (c *OpenAIClient) Analyze(ctx context.Context, text string) (*domain.Analysis, error) {
	params := openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(c.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.UserMessage(AnalysisPrompt(text)),
		},
		Temperature: openaigo.Float(0.5),
		ResponseFormat: openaigo.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	out, err := c.complete(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai analyze: %w", err)
	}
	return ParseAnalysis(out)
}

// StreamReply implements domain.ChatModel with a streamed chat completion.
func (c *OpenAIClient) StreamReply(ctx context.Context, history []*domain.Message, text string) iter.Seq2[string, error] {
	messages := []openaigo.ChatCompletionMessageParamUnion{
		openaigo.SystemMessage(strings.TrimSpace(companionSystemPrompt)),
	}
	for _, m := range chatTurns(history) {
		if m.Author == domain.RoleAI {
			messages = append(messages, openaigo.AssistantMessage(m.Text))
		} else {
			messages = append(messages, openaigo.UserMessage(m.Text))
		}
	}
	messages = append(messages, openaigo.UserMessage(text))

	params := openaigo.ChatCompletionNewParams{
		Model:       openaigo.ChatModel(c.model),
		Messages:    messages,
		Temperature: openaigo.Float(0.7),
	}

	return singleUse(func(yield func(string, error) bool) {
		stream := c.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			if !yield(chunk.Choices[0].Delta.Content, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield("", fmt.Errorf("openai stream: %w", err))
		}
	})
}

// Explain implements domain.Educator.
func (c *OpenAIClient) Explain(ctx context.Context, topic, background string) (string, error) {
	return c.generate(ctx, ExplainPrompt(topic, background), 0.3)
}

// Summarize implements domain.Summarizer.
func (c *OpenAIClient) Summarize(ctx context.Context, entries []domain.JournalEntry, period domain.Period) (string, error) {
	prompt, err := SummaryPrompt(entries, period)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, prompt, 0.6)
}

// Affirm implements domain.Affirmer.
func (c *OpenAIClient) Affirm(ctx context.Context, insights []string) (string, error) {
	text, err := c.generate(ctx, AffirmationPrompt(insights), 0.7)
	if err != nil {
		return "", err
	}
	return CleanAffirmation(text), nil
}

func (c *OpenAIClient) generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	params := openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(c.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.UserMessage(prompt),
		},
		Temperature: openaigo.Float(temperature),
	}
	return c.complete(ctx, params)
}

func (c *OpenAIClient) complete(ctx context.Context, params openaigo.ChatCompletionNewParams) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai returned empty text")
	}
	return text, nil
}
