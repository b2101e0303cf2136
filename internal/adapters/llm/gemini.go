package llm

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"github.com/PabloGalante/mindweave/internal/domain"
)

const DefaultGeminiModel = "gemini-2.5-flash"

type GeminiConfig struct {
	// APIKey selects the Gemini API backend. When empty, Vertex AI is used
	// with Project and Location.
	APIKey   string
	Project  string
	Location string
	Model    string
}

type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates an LLMClient backed by Gemini, either through the
// Gemini API (API key) or Vertex AI (project + location).
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	clientCfg := &genai.ClientConfig{}
	switch {
	case cfg.APIKey != "":
		clientCfg.APIKey = cfg.APIKey
		clientCfg.Backend = genai.BackendGeminiAPI
	case cfg.Project != "" && cfg.Location != "":
		clientCfg.Project = cfg.Project
		clientCfg.Location = cfg.Location
		clientCfg.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("gemini: an API key or a GCP project and location must be set")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}, nil
}

func analysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"mood": {
				Type:        genai.TypeString,
				Enum:        domain.MoodNames(),
				Description: "The primary mood of the journal entry.",
			},
			"keyInsight": {
				Type:        genai.TypeString,
				Description: "A single, concise insight summarizing the user's main emotional state or concern.",
			},
			"thoughtPatterns": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Identified cognitive distortions or recurring thought patterns.",
			},
			"copingStrategies": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":       {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
					},
					Required: []string{"title", "description"},
				},
				Description: "Three actionable coping strategies based on CBT or mindfulness.",
			},
		},
		Required: []string{"mood", "keyInsight", "thoughtPatterns", "copingStrategies"},
	}
}

// Analyze implements domain.Analyzer with a JSON response schema.
func (g *GeminiClient) Analyze(ctx context.Context, text string) (*domain.Analysis, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema(),
		Temperature:      genai.Ptr[float32](0.5),
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(AnalysisPrompt(text)), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini analyze: %w", err)
	}

	return ParseAnalysis(res.Text())
}

// StreamReply implements domain.ChatModel using a streamed generation over
// the chat history.
func (g *GeminiClient) StreamReply(ctx context.Context, history []*domain.Message, text string) iter.Seq2[string, error] {
	var contents []*genai.Content
	for _, m := range chatTurns(history) {
		role := genai.Role(genai.RoleUser)
		if m.Author == domain.RoleAI {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(companionSystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
	}

	return singleUse(func(yield func(string, error) bool) {
		for res, err := range g.client.Models.GenerateContentStream(ctx, g.modelName, contents, cfg) {
			if err != nil {
				yield("", fmt.Errorf("gemini stream: %w", err))
				return
			}
			fragment := res.Text()
			if fragment == "" {
				continue
			}
			if !yield(fragment, nil) {
				return
			}
		}
	})
}

// Explain implements domain.Educator.
func (g *GeminiClient) Explain(ctx context.Context, topic, background string) (string, error) {
	return g.generate(ctx, ExplainPrompt(topic, background), 0.3)
}

// Summarize implements domain.Summarizer.
func (g *GeminiClient) Summarize(ctx context.Context, entries []domain.JournalEntry, period domain.Period) (string, error) {
	prompt, err := SummaryPrompt(entries, period)
	if err != nil {
		return "", err
	}
	return g.generate(ctx, prompt, 0.6)
}

// Affirm implements domain.Affirmer.
func (g *GeminiClient) Affirm(ctx context.Context, insights []string) (string, error) {
	text, err := g.generate(ctx, AffirmationPrompt(insights), 0.7)
	if err != nil {
		return "", err
	}
	return CleanAffirmation(text), nil
}

func (g *GeminiClient) generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}
