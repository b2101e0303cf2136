// Package journal owns the in-memory journal and the lifecycle of each entry:
// pending analysis, analyzed or failed, then optionally rated.
package journal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PabloGalante/mindweave/internal/domain"
	"github.com/PabloGalante/mindweave/internal/observability"
)

// ErrClosed is returned once the store has been torn down.
var ErrClosed = errors.New("journal store closed")

// Store is the authoritative list of journal entries, newest first by
// insertion. All mutation goes through AddEntry and UpdateFeedback.
//
// Readers load an immutable snapshot; writers serialize on mu and publish a
// new slice, so a reader never sees a half-updated entry.
type Store struct {
	analyzer domain.Analyzer
	now      func() time.Time
	newID    func(time.Time) domain.EntryID

	entries atomic.Pointer[[]domain.JournalEntry]

	mu       sync.Mutex
	inFlight bool
	closed   bool
	lastErr  error
	subs     map[int]chan struct{}
	nextSub  int
}

type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides domain.NewEntryID.
func WithIDGenerator(fn func(time.Time) domain.EntryID) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates an empty store that analyzes entries with analyzer.
func NewStore(analyzer domain.Analyzer, opts ...Option) *Store {
	s := &Store{
		analyzer: analyzer,
		now:      time.Now,
		newID:    domain.NewEntryID,
		subs:     make(map[int]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	empty := []domain.JournalEntry{}
	s.entries.Store(&empty)
	return s
}

// Submission tracks one AddEntry call until its analysis settles.
type Submission struct {
	// Entry is the pending snapshot inserted at the head of the journal.
	Entry domain.JournalEntry

	done   chan struct{}
	result domain.JournalEntry
	err    error
}

// Done is closed when the analysis has settled.
func (sub *Submission) Done() <-chan struct{} {
	return sub.done
}

// Wait blocks until the analysis settles and returns the final entry.
// The error is the analysis failure, if any.
func (sub *Submission) Wait(ctx context.Context) (domain.JournalEntry, error) {
	select {
	case <-sub.done:
		return sub.result.Clone(), sub.err
	case <-ctx.Done():
		return domain.JournalEntry{}, ctx.Err()
	}
}

func (sub *Submission) finish(entry domain.JournalEntry, err error) {
	sub.result = entry
	sub.err = err
	close(sub.done)
}

// AddEntry inserts a pending entry at the head of the journal and starts its
// analysis in the background. Only one entry may be analyzing at a time:
// while one is in flight AddEntry returns ErrAnalysisInFlight and changes
// nothing.
//
// The analysis is not cancelled when ctx is; its values (request id) are kept.
func (s *Store) AddEntry(ctx context.Context, text string) (*Submission, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyEntry
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil, domain.ErrAnalysisInFlight
	}

	now := s.now()
	entry := domain.JournalEntry{
		ID:          s.newID(now),
		Date:        now,
		Text:        text,
		IsAnalyzing: true,
	}

	s.inFlight = true
	s.lastErr = nil
	current := *s.entries.Load()
	next := make([]domain.JournalEntry, 0, len(current)+1)
	next = append(next, entry)
	next = append(next, current...)
	s.publishLocked(next)
	s.mu.Unlock()

	sub := &Submission{Entry: entry.Clone(), done: make(chan struct{})}

	log := observability.LoggerFromContext(ctx).With("entry_id", entry.ID)
	log.Info("journal entry added, analysis started")

	go s.analyze(context.WithoutCancel(ctx), entry.ID, text, sub)

	return sub, nil
}

func (s *Store) analyze(ctx context.Context, id domain.EntryID, text string, sub *Submission) {
	log := observability.LoggerFromContext(ctx).With("entry_id", id)
	start := time.Now()

	analysis, err := s.analyzer.Analyze(ctx, text)
	if err == nil && analysis == nil {
		err = errors.New("empty analysis")
	}
	if err == nil {
		analysis = analysis.Clone()
		err = analysis.Normalize()
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrAnalysis, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight = false

	if s.closed {
		// Torn down mid-flight: drop the result.
		log.Info("journal store closed, discarding analysis result")
		sub.finish(sub.Entry, ErrClosed)
		return
	}

	var updated domain.JournalEntry
	if err != nil {
		s.lastErr = err
		log.Error("journal analysis failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		updated, _ = s.replaceLocked(id, func(e *domain.JournalEntry) {
			e.IsAnalyzing = false
		})
	} else {
		log.Info("journal analysis completed", "mood", analysis.Mood, "elapsed_ms", time.Since(start).Milliseconds())
		updated, _ = s.replaceLocked(id, func(e *domain.JournalEntry) {
			e.Analysis = analysis.Clone()
			e.IsAnalyzing = false
		})
	}

	sub.finish(updated, err)
}

// UpdateFeedback attaches feedback to an analyzed entry and returns the
// updated entry. It is write-once: unknown ids, entries without an analysis
// and entries that already carry feedback are left untouched and false is
// returned.
func (s *Store) UpdateFeedback(ctx context.Context, id domain.EntryID, feedback domain.Feedback) (domain.JournalEntry, bool) {
	if !feedback.Rating.Valid() {
		return domain.JournalEntry{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.JournalEntry{}, false
	}

	current, ok := s.findLocked(id)
	if !ok || current.Analysis == nil || current.Feedback != nil {
		return domain.JournalEntry{}, false
	}

	updated, ok := s.replaceLocked(id, func(e *domain.JournalEntry) {
		fb := feedback
		e.Feedback = &fb
	})
	if !ok {
		return domain.JournalEntry{}, false
	}

	observability.LoggerFromContext(ctx).Info("journal feedback recorded",
		"entry_id", id,
		"rating", feedback.Rating,
		"comment", feedback.Comment,
	)
	return updated, true
}

// Entries returns copies of all entries, newest first.
func (s *Store) Entries() []domain.JournalEntry {
	snapshot := *s.entries.Load()
	out := make([]domain.JournalEntry, len(snapshot))
	for i, e := range snapshot {
		out[i] = e.Clone()
	}
	return out
}

// Get returns a copy of the entry with the given id.
func (s *Store) Get(id domain.EntryID) (domain.JournalEntry, bool) {
	for _, e := range *s.entries.Load() {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return domain.JournalEntry{}, false
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(*s.entries.Load())
}

// Busy reports whether an analysis is in flight.
func (s *Store) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// LastError returns the failure of the most recent submission, or nil.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Subscribe returns a channel that receives a signal after every change.
// Signals are coalesced; call cancel to stop receiving.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close tears the store down. Analyses still in flight are discarded when
// they settle; further mutations are rejected.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = make(map[int]chan struct{})
}

func (s *Store) findLocked(id domain.EntryID) (domain.JournalEntry, bool) {
	for _, e := range *s.entries.Load() {
		if e.ID == id {
			return e, true
		}
	}
	return domain.JournalEntry{}, false
}

// replaceLocked publishes a new slice in which the entry with id has been
// rebuilt by fn. Entries already published are never modified.
func (s *Store) replaceLocked(id domain.EntryID, fn func(*domain.JournalEntry)) (domain.JournalEntry, bool) {
	current := *s.entries.Load()
	idx := slices.IndexFunc(current, func(e domain.JournalEntry) bool { return e.ID == id })
	if idx < 0 {
		return domain.JournalEntry{}, false
	}

	next := slices.Clone(current)
	updated := next[idx]
	fn(&updated)
	next[idx] = updated

	s.publishLocked(next)
	return updated.Clone(), true
}

func (s *Store) publishLocked(next []domain.JournalEntry) {
	s.entries.Store(&next)
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
