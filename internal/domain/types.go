package domain

import (
	"fmt"
	"strings"
	"time"
)

type EntryID string
type ChatID string
type MessageID string

type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Mood is the primary mood detected in a journal entry.
type Mood string

const (
	MoodJoyful   Mood = "Joyful"
	MoodContent  Mood = "Content"
	MoodNeutral  Mood = "Neutral"
	MoodSad      Mood = "Sad"
	MoodAnxious  Mood = "Anxious"
	MoodStressed Mood = "Stressed"
	MoodAngry    Mood = "Angry"
)

// Moods lists every mood in display order.
var Moods = []Mood{
	MoodJoyful,
	MoodContent,
	MoodNeutral,
	MoodSad,
	MoodAnxious,
	MoodStressed,
	MoodAngry,
}

// MoodNames returns the moods as plain strings (used for LLM response schemas).
func MoodNames() []string {
	out := make([]string, 0, len(Moods))
	for _, m := range Moods {
		out = append(out, string(m))
	}
	return out
}

// ParseMood accepts a mood name, case-insensitively.
func ParseMood(s string) (Mood, error) {
	for _, m := range Moods {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mood %q", s)
}

type Rating string

const (
	RatingGood Rating = "good"
	RatingBad  Rating = "bad"
)

func (r Rating) Valid() bool {
	return r == RatingGood || r == RatingBad
}

// MessageFeedback is the rating state of an AI chat message.
type MessageFeedback string

const (
	MessageFeedbackNone    MessageFeedback = ""
	MessageFeedbackPending MessageFeedback = "pending"
	MessageFeedbackGood    MessageFeedback = "good"
	MessageFeedbackBad     MessageFeedback = "bad"
)

// Period is the window covered by a progress report.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Days returns the number of days covered by the period.
func (p Period) Days() int {
	if p == PeriodMonthly {
		return 30
	}
	return 7
}

func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly", "week", "":
		return PeriodWeekly, nil
	case "monthly", "month":
		return PeriodMonthly, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

type Timestamp = time.Time
