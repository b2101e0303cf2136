package domain

import (
	"slices"
	"time"
)

// CopingStrategy is one actionable suggestion attached to an analysis.
type CopingStrategy struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// Analysis is the structured result produced by the analysis collaborator.
type Analysis struct {
	Mood             Mood             `json:"mood" validate:"required,mood"`
	KeyInsight       string           `json:"keyInsight" validate:"required"`
	ThoughtPatterns  []string         `json:"thoughtPatterns"`
	CopingStrategies []CopingStrategy `json:"copingStrategies" validate:"dive"`
}

// Validate checks an analysis returned by a collaborator.
func (a *Analysis) Validate() error {
	return ValidateStruct(a)
}

// Normalize validates a and rewrites its mood to the canonical spelling.
func (a *Analysis) Normalize() error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.Mood, _ = ParseMood(string(a.Mood))
	return nil
}

func (a *Analysis) Clone() *Analysis {
	if a == nil {
		return nil
	}
	c := *a
	c.ThoughtPatterns = slices.Clone(a.ThoughtPatterns)
	c.CopingStrategies = slices.Clone(a.CopingStrategies)
	return &c
}

// Feedback is the user's rating of an analysis.
type Feedback struct {
	Rating  Rating `json:"rating" validate:"required,oneof=good bad"`
	Comment string `json:"comment,omitempty"`
}

// EntryState is derived from the fields of a JournalEntry.
type EntryState string

const (
	EntryPending  EntryState = "pending"
	EntryAnalyzed EntryState = "analyzed"
	EntryFailed   EntryState = "failed"
	EntryRated    EntryState = "rated"
)

// JournalEntry is one user-authored text block plus its derived analysis.
// ID, Date and Text never change after creation.
type JournalEntry struct {
	ID          EntryID   `json:"id"`
	Date        time.Time `json:"date"`
	Text        string    `json:"text"`
	Analysis    *Analysis `json:"analysis"`
	Feedback    *Feedback `json:"feedback,omitempty"`
	IsAnalyzing bool      `json:"isAnalyzing,omitempty"`
}

// Clone returns a deep copy that shares no pointers with e.
func (e JournalEntry) Clone() JournalEntry {
	c := e
	c.Analysis = e.Analysis.Clone()
	if e.Feedback != nil {
		fb := *e.Feedback
		c.Feedback = &fb
	}
	return c
}

func (e JournalEntry) State() EntryState {
	switch {
	case e.IsAnalyzing:
		return EntryPending
	case e.Analysis == nil:
		return EntryFailed
	case e.Feedback != nil:
		return EntryRated
	default:
		return EntryAnalyzed
	}
}

// SharedJournalPayload is the content of a share token.
// ExpiresAt is a Unix timestamp in milliseconds.
type SharedJournalPayload struct {
	Entry     *JournalEntry `json:"entry"`
	ExpiresAt int64         `json:"expiresAt"`
}

// Affirmation is the cached daily affirmation. Date is a local YYYY-MM-DD string.
type Affirmation struct {
	Text string `json:"text"`
	Date string `json:"date"`
}
