package reports_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/mindweave/internal/app/reports"
	"github.com/PabloGalante/mindweave/internal/domain"
)

type fakeSummarizer struct {
	calls   int
	entries []domain.JournalEntry
	err     error
}

func (f *fakeSummarizer) Summarize(_ context.Context, entries []domain.JournalEntry, period domain.Period) (string, error) {
	f.calls++
	f.entries = entries
	if f.err != nil {
		return "", f.err
	}
	return "## " + string(period), nil
}

var now = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

func entry(id string, age time.Duration, analyzed bool) domain.JournalEntry {
	e := domain.JournalEntry{ID: domain.EntryID(id), Date: now.Add(-age), Text: id}
	if analyzed {
		e.Analysis = &domain.Analysis{Mood: domain.MoodContent, KeyInsight: "ok"}
	}
	return e
}

func TestEligible(t *testing.T) {
	day := 24 * time.Hour
	entries := []domain.JournalEntry{
		entry("today", time.Hour, true),
		entry("pending", 2*time.Hour, false),
		entry("six-days", 6*day, true),
		entry("ten-days", 10*day, true),
		entry("forty-days", 40*day, true),
	}

	weekly := reports.Eligible(entries, domain.PeriodWeekly, now)
	require.Len(t, weekly, 2)
	assert.Equal(t, domain.EntryID("six-days"), weekly[0].ID)
	assert.Equal(t, domain.EntryID("today"), weekly[1].ID)

	monthly := reports.Eligible(entries, domain.PeriodMonthly, now)
	require.Len(t, monthly, 3)
	assert.Equal(t, domain.EntryID("ten-days"), monthly[0].ID)
}

func TestGenerate(t *testing.T) {
	sum := &fakeSummarizer{}
	svc := reports.NewService(sum, reports.WithClock(func() time.Time { return now }))

	out, err := svc.Generate(context.Background(), []domain.JournalEntry{entry("a", time.Hour, true)}, domain.PeriodMonthly)
	require.NoError(t, err)
	assert.Equal(t, "## monthly", out)
	assert.Len(t, sum.entries, 1)
}

func TestGenerateWithoutEntries(t *testing.T) {
	sum := &fakeSummarizer{}
	svc := reports.NewService(sum, reports.WithClock(func() time.Time { return now }))

	_, err := svc.Generate(context.Background(), []domain.JournalEntry{entry("old", 90*24*time.Hour, true)}, domain.PeriodWeekly)
	assert.ErrorIs(t, err, domain.ErrNoEntries)
	assert.Zero(t, sum.calls)
}

func TestGenerateFailure(t *testing.T) {
	sum := &fakeSummarizer{err: errors.New("timeout")}
	svc := reports.NewService(sum, reports.WithClock(func() time.Time { return now }))

	_, err := svc.Generate(context.Background(), []domain.JournalEntry{entry("a", time.Hour, true)}, domain.PeriodWeekly)
	assert.ErrorIs(t, err, domain.ErrSummary)
	assert.Equal(t, "Failed to generate summary from AI. Please try again.", domain.UserMessage(err))
}
