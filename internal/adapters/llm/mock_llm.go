package llm

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/PabloGalante/mindweave/internal/domain"
)

// MockLLM is an offline, deterministic client for local mode and tests.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

var moodKeywords = []struct {
	mood  domain.Mood
	words []string
}{
	{domain.MoodStressed, []string{"overwhelm", "stress", "deadline", "too much", "pressure"}},
	{domain.MoodAnxious, []string{"anxious", "worried", "nervous", "panic", "afraid"}},
	{domain.MoodAngry, []string{"angry", "furious", "annoyed", "hate"}},
	{domain.MoodSad, []string{"sad", "lonely", "cry", "down", "lost"}},
	{domain.MoodJoyful, []string{"happy", "joy", "excited", "great", "amazing"}},
	{domain.MoodContent, []string{"calm", "content", "grateful", "peaceful", "fine"}},
}

func (m *MockLLM) Analyze(ctx context.Context, text string) (*domain.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mood := domain.MoodNeutral
	lower := strings.ToLower(text)
	for _, mk := range moodKeywords {
		if containsAny(lower, mk.words) {
			mood = mk.mood
			break
		}
	}

	return &domain.Analysis{
		Mood:            mood,
		KeyInsight:      fmt.Sprintf("Your words suggest you are feeling mostly %s right now.", strings.ToLower(string(mood))),
		ThoughtPatterns: []string{"Noticing and naming feelings"},
		CopingStrategies: []domain.CopingStrategy{
			{Title: "Pause and breathe", Description: "Take five slow breaths, exhaling longer than you inhale."},
			{Title: "Name it", Description: "Write down the feeling in one word and where you notice it in your body."},
			{Title: "One small step", Description: "Pick one small, kind action you can take in the next hour."},
		},
	}, nil
}

func (m *MockLLM) StreamReply(ctx context.Context, history []*domain.Message, text string) iter.Seq2[string, error] {
	reply := fmt.Sprintf("I hear you. You said %q. What feels most important about that for you right now?", text)
	words := strings.SplitAfter(reply, " ")

	return singleUse(func(yield func(string, error) bool) {
		for _, w := range words {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(w, nil) {
				return
			}
		}
	})
}

func (m *MockLLM) Explain(ctx context.Context, topic, background string) (string, error) {
	first, _, _ := strings.Cut(strings.TrimSpace(background), "\n")
	return fmt.Sprintf("## %s\n\n%s", topic, first), nil
}

func (m *MockLLM) Summarize(ctx context.Context, entries []domain.JournalEntry, period domain.Period) (string, error) {
	counts := map[domain.Mood]int{}
	for _, e := range entries {
		if e.Analysis != nil {
			counts[e.Analysis.Mood]++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Your %s summary\n\n", period)
	fmt.Fprintf(&b, "You wrote %d analyzed entries.\n\n", len(entries))
	for _, mood := range domain.Moods {
		if n := counts[mood]; n > 0 {
			fmt.Fprintf(&b, "- **%s**: %d\n", mood, n)
		}
	}
	return b.String(), nil
}

func (m *MockLLM) Affirm(ctx context.Context, insights []string) (string, error) {
	if len(insights) == 0 {
		return "You are capable of amazing things.", nil
	}
	return "You are learning from every feeling you notice.", nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
