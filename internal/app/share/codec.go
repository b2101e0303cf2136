// Package share turns a journal entry into a self-contained, expiring token
// for link-based sharing, and back.
//
// Tokens are base64 encoded JSON. They are neither signed nor encrypted:
// anyone holding a token can read it, and expiry is only enforced by clients
// that call Decode. The link "self-destructs" as a UX affordance, not as a
// security boundary.
package share

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PabloGalante/mindweave/internal/domain"
)

// TTL is how long a share link stays valid.
const TTL = time.Hour

// QueryParam is the URL query parameter that carries a token.
const QueryParam = "share"

// Codec encodes and decodes share tokens against a clock.
type Codec struct {
	now func() time.Time
}

type Option func(*Codec)

func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(opts ...Option) *Codec {
	c := &Codec{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode snapshots entry with an expiry of now+TTL and returns a URL-safe
// token (alphabet A-Z a-z 0-9 - _, no padding).
func (c *Codec) Encode(entry domain.JournalEntry) (string, error) {
	token, _, err := c.EncodeWithExpiry(entry)
	return token, err
}

// EncodeWithExpiry is Encode that also returns the expiry it embedded.
func (c *Codec) EncodeWithExpiry(entry domain.JournalEntry) (string, time.Time, error) {
	if entry.ID == "" {
		return "", time.Time{}, errors.New("share: entry has no id")
	}

	snapshot := entry.Clone()
	snapshot.IsAnalyzing = false

	expiresAt := c.now().Add(TTL)
	payload := domain.SharedJournalPayload{
		Entry:     &snapshot,
		ExpiresAt: expiresAt.UnixMilli(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("share: marshal payload: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(raw), time.UnixMilli(payload.ExpiresAt), nil
}

// Decode recovers the entry in token. Malformed tokens fail with
// domain.ErrCorruptPayload; well-formed tokens past their expiry fail with
// domain.ErrExpiredLink. A failed decode never returns a partial entry.
func (c *Codec) Decode(token string) (domain.JournalEntry, error) {
	raw, err := decodeBase64(strings.TrimSpace(token))
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("%w: %v", domain.ErrCorruptPayload, err)
	}

	var payload domain.SharedJournalPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.JournalEntry{}, fmt.Errorf("%w: %v", domain.ErrCorruptPayload, err)
	}
	if payload.Entry == nil || payload.Entry.ID == "" {
		return domain.JournalEntry{}, fmt.Errorf("%w: missing entry id", domain.ErrCorruptPayload)
	}
	if payload.ExpiresAt <= 0 {
		return domain.JournalEntry{}, fmt.Errorf("%w: missing expiry", domain.ErrCorruptPayload)
	}
	if payload.Entry.Analysis != nil {
		if err := payload.Entry.Analysis.Normalize(); err != nil {
			return domain.JournalEntry{}, fmt.Errorf("%w: %v", domain.ErrCorruptPayload, err)
		}
	}
	if fb := payload.Entry.Feedback; fb != nil {
		if payload.Entry.Analysis == nil {
			return domain.JournalEntry{}, fmt.Errorf("%w: feedback without analysis", domain.ErrCorruptPayload)
		}
		if err := domain.ValidateStruct(fb); err != nil {
			return domain.JournalEntry{}, fmt.Errorf("%w: %v", domain.ErrCorruptPayload, err)
		}
	}

	expiresAt := time.UnixMilli(payload.ExpiresAt)
	if !c.now().Before(expiresAt) {
		return domain.JournalEntry{}, fmt.Errorf("%w: expired at %s", domain.ErrExpiredLink, expiresAt.UTC().Format(time.RFC3339))
	}

	entry := *payload.Entry
	entry.IsAnalyzing = false
	return entry, nil
}

// decodeBase64 accepts the URL-safe form produced by Encode as well as the
// standard padded alphabet produced by browsers (btoa).
func decodeBase64(token string) ([]byte, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}

	encodings := []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.StdEncoding,
		base64.RawStdEncoding,
	}

	var lastErr error
	for _, enc := range encodings {
		raw, err := enc.DecodeString(token)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// ShareURL returns base with the token set as the share query parameter.
// Other query parameters and any fragment are dropped.
func ShareURL(base *url.URL, token string) string {
	u := *base
	u.RawQuery = url.Values{QueryParam: []string{token}}.Encode()
	u.Fragment = ""
	return u.String()
}

// TokenFromQuery returns the share token in q, if present and non-empty.
func TokenFromQuery(q url.Values) (string, bool) {
	token := strings.TrimSpace(q.Get(QueryParam))
	return token, token != ""
}
