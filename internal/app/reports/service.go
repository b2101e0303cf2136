// Package reports writes weekly and monthly progress summaries from analyzed
// journal entries.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/PabloGalante/mindweave/internal/domain"
	"github.com/PabloGalante/mindweave/internal/observability"
)

type Service struct {
	summarizer domain.Summarizer
	now        func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(summarizer domain.Summarizer, opts ...Option) *Service {
	s := &Service{summarizer: summarizer, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Eligible returns the analyzed entries dated within the period ending at
// now, oldest first.
func Eligible(entries []domain.JournalEntry, period domain.Period, now time.Time) []domain.JournalEntry {
	cutoff := now.AddDate(0, 0, -period.Days())

	out := make([]domain.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if e.Analysis == nil || e.Date.Before(cutoff) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Generate summarizes the eligible entries. With none, ErrNoEntries is
// returned without calling the summarizer.
func (s *Service) Generate(ctx context.Context, entries []domain.JournalEntry, period domain.Period) (string, error) {
	eligible := Eligible(entries, period, s.now())
	log := observability.LoggerFromContext(ctx).With(
		"period", period,
		"entries", len(eligible),
	)

	if len(eligible) == 0 {
		log.Info("no entries for report")
		return "", domain.ErrNoEntries
	}

	summary, err := s.summarizer.Summarize(ctx, eligible, period)
	if err != nil {
		log.Error("summary failed", "error", err)
		return "", fmt.Errorf("%w: %w", domain.ErrSummary, err)
	}

	log.Info("report generated")
	return summary, nil
}
