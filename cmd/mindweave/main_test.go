package main

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/mindweave/internal/app/share"
	"github.com/PabloGalante/mindweave/internal/config"
	"github.com/PabloGalante/mindweave/internal/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func sampleEntry() domain.JournalEntry {
	return domain.JournalEntry{
		ID:   "e1",
		Date: time.Now(),
		Text: "A quiet evening walk.",
		Analysis: &domain.Analysis{
			Mood:       domain.MoodContent,
			KeyInsight: "Slowing down helps.",
		},
	}
}

func TestTopicsCommand(t *testing.T) {
	out, err := run(t, "topics")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 8)
	assert.Equal(t, "Anxiety", lines[0])
}

func TestShareDecodeCommand(t *testing.T) {
	token, err := share.NewCodec().Encode(sampleEntry())
	require.NoError(t, err)

	out, err := run(t, "share", "decode", token)
	require.NoError(t, err)
	assert.Contains(t, out, "A quiet evening walk.")

	base, _ := url.Parse("https://mindweave.example/")
	out, err = run(t, "share", "decode", share.ShareURL(base, token))
	require.NoError(t, err)
	assert.Contains(t, out, "Slowing down helps.")
}

func TestShareDecodeCommandErrors(t *testing.T) {
	_, err := run(t, "share", "decode", "%%%")
	require.Error(t, err)
	assert.Equal(t, "This shared link is invalid or corrupted.", err.Error())

	past := share.NewCodec(share.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
	token, err := past.Encode(sampleEntry())
	require.NoError(t, err)

	_, err = run(t, "share", "decode", token)
	require.Error(t, err)
	assert.Equal(t, "This shared link has expired.", err.Error())
}

func TestNewLLMClientDefaultsToMock(t *testing.T) {
	c, err := newLLMClient(context.Background(), &config.Config{LLM: config.LLMConfig{Provider: "mock"}})
	require.NoError(t, err)

	a, err := c.Analyze(context.Background(), "so much stress")
	require.NoError(t, err)
	assert.Equal(t, domain.MoodStressed, a.Mood)
}
