package llm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/mindweave/internal/domain"
)

func TestParseAnalysis(t *testing.T) {
	raw := "```json\n" + `{"mood":"stressed","keyInsight":"Too much at once.","thoughtPatterns":["Catastrophizing"],` +
		`"copingStrategies":[{"title":"Breathe","description":"Slow down."}]}` + "\n```"

	a, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.MoodStressed, a.Mood)
	assert.Equal(t, "Too much at once.", a.KeyInsight)
	assert.Equal(t, []string{"Catastrophizing"}, a.ThoughtPatterns)
	require.Len(t, a.CopingStrategies, 1)
}

func TestParseAnalysisRejectsBadContent(t *testing.T) {
	tests := map[string]string{
		"empty":           "",
		"not json":        "I think you are stressed.",
		"unknown mood":    `{"mood":"Elated","keyInsight":"x"}`,
		"missing insight": `{"mood":"Sad"}`,
		"bad strategy":    `{"mood":"Sad","keyInsight":"x","copingStrategies":[{"title":""}]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAnalysis(raw)
			assert.Error(t, err)
		})
	}
}

func TestAnalysisPromptListsMoods(t *testing.T) {
	p := AnalysisPrompt("hello")
	for _, m := range domain.Moods {
		assert.Contains(t, p, string(m))
	}
	assert.Contains(t, p, `"hello"`)
}

func TestSummaryPromptOmitsRawText(t *testing.T) {
	entries := []domain.JournalEntry{{
		ID:   "1",
		Date: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Text: "very private words",
		Analysis: &domain.Analysis{
			Mood: domain.MoodSad, KeyInsight: "Missing home.", ThoughtPatterns: []string{"Overgeneralizing"},
		},
	}}

	p, err := SummaryPrompt(entries, domain.PeriodWeekly)
	require.NoError(t, err)
	assert.NotContains(t, p, "very private words")
	assert.Contains(t, p, "Missing home.")
	assert.Contains(t, p, "weekly")
}

func TestAffirmationPrompt(t *testing.T) {
	assert.NotContains(t, AffirmationPrompt(nil), "Recent thoughts")
	p := AffirmationPrompt([]string{"I handled the meeting well"})
	assert.Contains(t, p, "Recent thoughts")
	assert.Contains(t, p, "I handled the meeting well")
}

func TestCleanAffirmation(t *testing.T) {
	assert.Equal(t, "You are enough.", CleanAffirmation("  \"You are enough.\"\n"))
	assert.Equal(t, "Be gentle.", CleanAffirmation("“Be gentle.”"))
}

func TestChatTurnsSkipsGreetingAndPlaceholders(t *testing.T) {
	history := []*domain.Message{
		{Author: domain.RoleAI, Text: "Hello, I'm EchoMind."},
		{Author: domain.RoleUser, Text: "hi"},
		{Author: domain.RoleAI, Text: "How are you?"},
		{Author: domain.RoleUser, Text: "tired"},
		{Author: domain.RoleAI, Text: ""},
	}

	turns := chatTurns(history)
	require.Len(t, turns, 3)
	assert.Equal(t, "hi", turns[0].Text)
	assert.Equal(t, "tired", turns[2].Text)
}

func TestMockStreamIsSingleUse(t *testing.T) {
	m := NewMockLLM()
	seq := m.StreamReply(context.Background(), nil, "hello")

	var b strings.Builder
	for frag, err := range seq {
		require.NoError(t, err)
		b.WriteString(frag)
	}
	assert.Contains(t, b.String(), `"hello"`)

	var gotErr error
	for _, err := range seq {
		gotErr = err
	}
	assert.ErrorIs(t, gotErr, ErrStreamConsumed)
}

func TestMockAnalyzeDetectsMood(t *testing.T) {
	m := NewMockLLM()
	a, err := m.Analyze(context.Background(), "I feel overwhelmed today")
	require.NoError(t, err)
	assert.Equal(t, domain.MoodStressed, a.Mood)
	assert.NoError(t, a.Validate())

	a, err = m.Analyze(context.Background(), "nothing much")
	require.NoError(t, err)
	assert.Equal(t, domain.MoodNeutral, a.Mood)
}

func TestNewClientsRequireCredentials(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), GeminiConfig{})
	assert.Error(t, err)

	_, err = NewOpenAIClient(OpenAIConfig{})
	assert.Error(t, err)

	c, err := NewOpenAIClient(OpenAIConfig{BaseURL: "http://localhost:11434/v1/"})
	require.NoError(t, err)
	assert.Equal(t, DefaultOpenAIModel, c.model)
}
