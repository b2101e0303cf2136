package domain

import "errors"

var (
	// Collaborator failures.
	ErrAnalysis = errors.New("analysis failed")
	ErrChat     = errors.New("chat failed")
	ErrExplain  = errors.New("explain failed")
	ErrSummary  = errors.New("summary failed")

	// Share link failures. Expiry is reported separately from corruption.
	ErrCorruptPayload = errors.New("corrupt share payload")
	ErrExpiredLink    = errors.New("expired share link")

	ErrAnalysisInFlight = errors.New("an entry is already being analyzed")
	ErrEmptyEntry       = errors.New("entry text is empty")
	ErrEmptyMessage     = errors.New("message text is empty")
	ErrNotFound         = errors.New("not found")
	ErrUnknownTopic     = errors.New("unknown topic")
	ErrNoEntries        = errors.New("no analyzed entries in period")
)

// ChatFallbackText replaces an AI reply whose stream failed.
const ChatFallbackText = "I'm having a little trouble connecting right now. Please try again in a moment."

// UserMessage returns the human-readable text shown for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrExpiredLink):
		return "This shared link has expired."
	case errors.Is(err, ErrCorruptPayload):
		return "This shared link is invalid or corrupted."
	case errors.Is(err, ErrAnalysis):
		return "Failed to get analysis from AI. Please try again."
	case errors.Is(err, ErrChat):
		return ChatFallbackText
	case errors.Is(err, ErrExplain):
		return "Failed to get explanation from AI. Please try again."
	case errors.Is(err, ErrSummary):
		return "Failed to generate summary from AI. Please try again."
	case errors.Is(err, ErrAnalysisInFlight):
		return "Please wait for the current entry to finish analyzing."
	case errors.Is(err, ErrEmptyEntry), errors.Is(err, ErrEmptyMessage):
		return "Please write something first."
	case errors.Is(err, ErrUnknownTopic):
		return "That topic is not in the knowledge base."
	case errors.Is(err, ErrNoEntries):
		return "There are no analyzed entries in this period yet."
	case errors.Is(err, ErrNotFound):
		return "Not found."
	default:
		return "An unknown error occurred."
	}
}
