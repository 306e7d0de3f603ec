package nlu

import (
	"context"

	"github.com/dfuchss/deltabot/internal/domain"
)

// Mock is a test double for Recognizer.
type Mock struct {
	RecognizeFunc func(ctx context.Context, text string) ([]domain.IntentResult, []domain.EntityResult, error)
	Intents       []domain.IntentResult
	Entities      []domain.EntityResult
	Err           error
}

func (m *Mock) Recognize(ctx context.Context, text string) ([]domain.IntentResult, []domain.EntityResult, error) {
	if m.RecognizeFunc != nil {
		return m.RecognizeFunc(ctx, text)
	}
	return m.Intents, m.Entities, m.Err
}
