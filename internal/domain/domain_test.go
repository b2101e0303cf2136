package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMood(t *testing.T) {
	m, err := ParseMood(" stressed ")
	require.NoError(t, err)
	assert.Equal(t, MoodStressed, m)

	_, err = ParseMood("Elated")
	assert.Error(t, err)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeekly, p)
	assert.Equal(t, 7, p.Days())

	p, err = ParsePeriod("Monthly")
	require.NoError(t, err)
	assert.Equal(t, 30, p.Days())

	_, err = ParsePeriod("yearly")
	assert.Error(t, err)
}

func TestEntryState(t *testing.T) {
	analysis := &Analysis{Mood: MoodSad, KeyInsight: "x"}

	assert.Equal(t, EntryPending, JournalEntry{IsAnalyzing: true}.State())
	assert.Equal(t, EntryFailed, JournalEntry{}.State())
	assert.Equal(t, EntryAnalyzed, JournalEntry{Analysis: analysis}.State())
	assert.Equal(t, EntryRated, JournalEntry{Analysis: analysis, Feedback: &Feedback{Rating: RatingGood}}.State())
}

func TestCloneSharesNothing(t *testing.T) {
	e := JournalEntry{
		ID: "1",
		Analysis: &Analysis{
			Mood:             MoodSad,
			KeyInsight:       "x",
			ThoughtPatterns:  []string{"a"},
			CopingStrategies: []CopingStrategy{{Title: "t", Description: "d"}},
		},
		Feedback: &Feedback{Rating: RatingBad},
	}

	c := e.Clone()
	c.Analysis.ThoughtPatterns[0] = "changed"
	c.Analysis.CopingStrategies[0].Title = "changed"
	c.Feedback.Comment = "changed"

	assert.Equal(t, "a", e.Analysis.ThoughtPatterns[0])
	assert.Equal(t, "t", e.Analysis.CopingStrategies[0].Title)
	assert.Empty(t, e.Feedback.Comment)
}

func TestAnalysisValidate(t *testing.T) {
	ok := &Analysis{Mood: MoodJoyful, KeyInsight: "Good day."}
	assert.NoError(t, ok.Validate())

	err := (&Analysis{Mood: "Elated", KeyInsight: "x"}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed rule 'mood'")
}

func TestAnalysisNormalize(t *testing.T) {
	a := &Analysis{Mood: " anxious ", KeyInsight: "x"}
	require.NoError(t, a.Normalize())
	assert.Equal(t, MoodAnxious, a.Mood)

	bad := &Analysis{Mood: "Elated", KeyInsight: "x"}
	assert.Error(t, bad.Normalize())
	assert.Equal(t, Mood("Elated"), bad.Mood)
}

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("%w: bad json", ErrCorruptPayload)

	assert.Equal(t, "This shared link is invalid or corrupted.", UserMessage(wrapped))
	assert.Equal(t, "This shared link has expired.", UserMessage(ErrExpiredLink))
	assert.Equal(t, "Failed to get analysis from AI. Please try again.", UserMessage(fmt.Errorf("%w: x", ErrAnalysis)))
	assert.Equal(t, ChatFallbackText, UserMessage(ErrChat))
	assert.Equal(t, "An unknown error occurred.", UserMessage(errors.New("boom")))
	assert.Empty(t, UserMessage(nil))
}

func TestNewIDIsTimeOrderedAndUnique(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 6, time.UTC)
	a, b := NewID(now), NewID(now)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "20250102030405.000000006-"))
	assert.Less(t, NewID(now), NewID(now.Add(time.Second)))
}
