package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PabloGalante/mindweave/internal/domain"
)

const analysisInstructions = `
You are MindWeave, an empathetic mental wellness assistant. Analyze the journal entry below.

Be gentle, supportive and insightful:
- Identify the primary mood. It MUST be exactly one of: %s.
- Write one concise key insight about the writer's main emotional state or concern.
- List any cognitive distortions or recurring thought patterns you notice (may be empty).
- Suggest 3 actionable, personalized coping strategies grounded in CBT and mindfulness,
  each with a short title and a one or two sentence description.

Respond ONLY with JSON of this shape:
{"mood": "...", "keyInsight": "...", "thoughtPatterns": ["..."], "copingStrategies": [{"title": "...", "description": "..."}]}

Journal entry: %q
`

const companionSystemPrompt = `
You are EchoMind, a compassionate conversational companion.

Your role:
- Help the user explore thoughts and feelings in a safe, non-judgmental space.
- Use guided discovery and Socratic questioning from Cognitive Behavioral Therapy.
- Ask open-ended questions that invite reflection.
- Never give direct advice or diagnoses.
- Keep responses concise and warm.

Boundaries and safety:
- If the user mentions self-harm, suicide, or hurting someone, encourage them to contact local emergency services or a trusted person right away.
- Make it clear you cannot replace professional mental health care.
`

const explainInstructions = `
You are SelfSage, a mental health educator. Using ONLY the context below, explain %q in a simple,
compassionate and easy to understand way. Format the answer in Markdown with:
- a brief definition,
- common examples or feelings associated with it,
- one simple, actionable tip to manage it.
Do not use any information outside of the context.

CONTEXT:
---
%s
---
`

const summaryInstructions = `
You are MindWeave, an empathetic mental wellness assistant. Write a %s progress summary from the journal data below.
Your tone is gentle, insightful and encouraging.

1. Overall mood trend: describe the general mood over the period and any dominant moods.
2. Recurring themes: synthesize 2-3 recurring themes, thought patterns or concerns.
3. Moments of progress: highlight resilience, self-awareness or positive coping.
4. Gentle summary: close with a short, compassionate note encouraging continued reflection.
Use Markdown headings, bold text and bullet points.

Journal data:
` + "```json\n%s\n```\n"

const personalAffirmationInstructions = `
You are MindWeave. Based on these recent thoughts from the user, write a single short, positive,
forward-looking affirmation for their day. One sentence only.

Recent thoughts:
%s

Your affirmation for today is:`

const generalAffirmationInstructions = `
You are MindWeave. Write a single short, positive and general affirmation for the user's day. One sentence only.`

// AnalysisPrompt builds the prompt for a journal analysis.
func AnalysisPrompt(text string) string {
	return fmt.Sprintf(analysisInstructions, strings.Join(domain.MoodNames(), ", "), text)
}

// ExplainPrompt builds the SelfSage prompt for a knowledge base topic.
func ExplainPrompt(topic, background string) string {
	return fmt.Sprintf(explainInstructions, topic, strings.TrimSpace(background))
}

type summaryEntry struct {
	Date     string           `json:"date"`
	Analysis *summaryAnalysis `json:"analysis"`
}

type summaryAnalysis struct {
	Mood            domain.Mood `json:"mood"`
	KeyInsight      string      `json:"keyInsight"`
	ThoughtPatterns []string    `json:"thoughtPatterns"`
}

// SummaryPrompt builds the report prompt. Only the date, mood, insight and
// thought patterns of each entry are sent; the raw journal text is not.
func SummaryPrompt(entries []domain.JournalEntry, period domain.Period) (string, error) {
	data := make([]summaryEntry, 0, len(entries))
	for _, e := range entries {
		se := summaryEntry{Date: e.Date.UTC().Format("2006-01-02T15:04:05Z07:00")}
		if e.Analysis != nil {
			se.Analysis = &summaryAnalysis{
				Mood:            e.Analysis.Mood,
				KeyInsight:      e.Analysis.KeyInsight,
				ThoughtPatterns: e.Analysis.ThoughtPatterns,
			}
		}
		data = append(data, se)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary entries: %w", err)
	}
	return fmt.Sprintf(summaryInstructions, period, raw), nil
}

// AffirmationPrompt builds the daily affirmation prompt.
func AffirmationPrompt(insights []string) string {
	if len(insights) == 0 {
		return strings.TrimSpace(generalAffirmationInstructions)
	}
	var b strings.Builder
	for _, in := range insights {
		fmt.Fprintf(&b, "- %q\n", in)
	}
	return fmt.Sprintf(personalAffirmationInstructions, strings.TrimRight(b.String(), "\n"))
}

// ParseAnalysis decodes a model response into an Analysis. Markdown code
// fences around the JSON are tolerated and the mood is normalized.
func ParseAnalysis(raw string) (*domain.Analysis, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, fmt.Errorf("empty analysis response")
	}

	var a domain.Analysis
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}

	mood, err := domain.ParseMood(string(a.Mood))
	if err != nil {
		return nil, err
	}
	a.Mood = mood

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// CleanAffirmation strips the quotes models like to add.
func CleanAffirmation(s string) string {
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "“", "")
	s = strings.ReplaceAll(s, "”", "")
	return strings.TrimSpace(s)
}

// chatTurns returns the history the model should see: empty placeholders are
// dropped, as are AI turns before the first user turn (the greeting).
func chatTurns(history []*domain.Message) []*domain.Message {
	out := make([]*domain.Message, 0, len(history))
	seenUser := false
	for _, m := range history {
		if m == nil || strings.TrimSpace(m.Text) == "" {
			continue
		}
		if m.Author == domain.RoleUser {
			seenUser = true
		}
		if !seenUser {
			continue
		}
		out = append(out, m)
	}
	return out
}
