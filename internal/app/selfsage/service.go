// Package selfsage explains knowledge base topics through the Educator.
package selfsage

import (
	"context"
	"fmt"

	"github.com/PabloGalante/mindweave/internal/domain"
	"github.com/PabloGalante/mindweave/internal/knowledge"
	"github.com/PabloGalante/mindweave/internal/observability"
)

type Service struct {
	educator domain.Educator
}

func NewService(educator domain.Educator) *Service {
	return &Service{educator: educator}
}

func (s *Service) Topics() []string {
	return knowledge.Topics()
}

// Explain returns a markdown explanation grounded only in the topic's
// background text. On failure no partial content is returned.
func (s *Service) Explain(ctx context.Context, topic string) (string, error) {
	name, background, ok := knowledge.Lookup(topic)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownTopic, topic)
	}

	log := observability.LoggerFromContext(ctx).With("topic", name)

	text, err := s.educator.Explain(ctx, name, background)
	if err != nil {
		log.Error("explain failed", "error", err)
		return "", fmt.Errorf("%w: %w", domain.ErrExplain, err)
	}

	log.Info("topic explained", "length", len(text))
	return text, nil
}
