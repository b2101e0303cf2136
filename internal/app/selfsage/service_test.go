package selfsage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/mindweave/internal/app/selfsage"
	"github.com/PabloGalante/mindweave/internal/domain"
)

type fakeEducator struct {
	topic, background string
	reply             string
	err               error
}

func (f *fakeEducator) Explain(_ context.Context, topic, background string) (string, error) {
	f.topic, f.background = topic, background
	return f.reply, f.err
}

func TestExplainPassesBackground(t *testing.T) {
	edu := &fakeEducator{reply: "## Mindfulness\n..."}
	svc := selfsage.NewService(edu)

	text, err := svc.Explain(context.Background(), "mindfulness")
	require.NoError(t, err)
	assert.Equal(t, "## Mindfulness\n...", text)
	assert.Equal(t, "Mindfulness", edu.topic)
	assert.Contains(t, edu.background, "present moment")
}

func TestExplainUnknownTopic(t *testing.T) {
	edu := &fakeEducator{}
	svc := selfsage.NewService(edu)

	_, err := svc.Explain(context.Background(), "Numerology")
	assert.ErrorIs(t, err, domain.ErrUnknownTopic)
	assert.Empty(t, edu.topic, "educator must not be called")
}

func TestExplainFailure(t *testing.T) {
	svc := selfsage.NewService(&fakeEducator{reply: "half an answer", err: errors.New("quota")})

	text, err := svc.Explain(context.Background(), "Anxiety")
	assert.ErrorIs(t, err, domain.ErrExplain)
	assert.Empty(t, text)
	assert.Equal(t, "Failed to get explanation from AI. Please try again.", domain.UserMessage(err))
}

func TestTopics(t *testing.T) {
	svc := selfsage.NewService(&fakeEducator{})
	assert.Len(t, svc.Topics(), 8)
}
