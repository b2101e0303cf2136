// Package prefs holds the small pieces of local state around the journal:
// the onboarding flag and the cached daily affirmation.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/PabloGalante/mindweave/internal/domain"
	"github.com/PabloGalante/mindweave/internal/observability"
)

const (
	OnboardedKey   = "mindweave_onboarded"
	AffirmationKey = "mindweave_affirmation"

	// FallbackAffirmation is shown when the affirmer fails. It is never cached.
	FallbackAffirmation = "May you be kind to yourself today."

	maxInsights = 3
	dateLayout  = "2006-01-02"
)

type Onboarding struct {
	kv domain.KVStore
}

func NewOnboarding(kv domain.KVStore) *Onboarding {
	return &Onboarding{kv: kv}
}

// Seen reports whether the onboarding flow has been completed.
func (o *Onboarding) Seen(ctx context.Context) (bool, error) {
	v, err := o.kv.Get(ctx, OnboardedKey)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read onboarding flag: %w", err)
	}
	return v == "true", nil
}

func (o *Onboarding) MarkSeen(ctx context.Context) error {
	if err := o.kv.Set(ctx, OnboardedKey, "true"); err != nil {
		return fmt.Errorf("write onboarding flag: %w", err)
	}
	return nil
}

type Affirmations struct {
	kv     domain.KVStore
	affirm domain.Affirmer
	now    func() time.Time
}

type Option func(*Affirmations)

// WithClock sets the clock; its location decides what "today" is.
func WithClock(now func() time.Time) Option {
	return func(a *Affirmations) { a.now = now }
}

func NewAffirmations(kv domain.KVStore, affirm domain.Affirmer, opts ...Option) *Affirmations {
	a := &Affirmations{kv: kv, affirm: affirm, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Today returns today's affirmation. A cached one dated today is reused;
// otherwise a new one is written from the insights of the newest entries
// (entries are newest first) and cached. Failures yield FallbackAffirmation.
func (a *Affirmations) Today(ctx context.Context, entries []domain.JournalEntry) domain.Affirmation {
	today := a.now().Format(dateLayout)
	log := observability.LoggerFromContext(ctx).With("date", today)

	if cached, ok := a.cached(ctx, today); ok {
		return cached
	}

	text, err := a.affirm.Affirm(ctx, recentInsights(entries))
	if err != nil || text == "" {
		log.Warn("affirmation failed, using fallback", "error", err)
		return domain.Affirmation{Text: FallbackAffirmation, Date: today}
	}

	out := domain.Affirmation{Text: text, Date: today}
	raw, err := json.Marshal(out)
	if err == nil {
		err = a.kv.Set(ctx, AffirmationKey, string(raw))
	}
	if err != nil {
		log.Warn("failed to cache affirmation", "error", err)
	}
	return out
}

func (a *Affirmations) cached(ctx context.Context, today string) (domain.Affirmation, bool) {
	raw, err := a.kv.Get(ctx, AffirmationKey)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			observability.LoggerFromContext(ctx).Warn("failed to read cached affirmation", "error", err)
		}
		return domain.Affirmation{}, false
	}

	var c domain.Affirmation
	if err := json.Unmarshal([]byte(raw), &c); err != nil || c.Text == "" {
		return domain.Affirmation{}, false
	}
	return c, c.Date == today
}

// recentInsights takes the first entries and keeps the non-empty insights.
func recentInsights(entries []domain.JournalEntry) []string {
	if len(entries) > maxInsights {
		entries = entries[:maxInsights]
	}
	var out []string
	for _, e := range entries {
		if e.Analysis != nil && e.Analysis.KeyInsight != "" {
			out = append(out, e.Analysis.KeyInsight)
		}
	}
	return out
}
