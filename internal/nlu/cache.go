package nlu

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dfuchss/deltabot/internal/domain"
	"github.com/dfuchss/deltabot/internal/logging"
)

// cachedResult bundles a classification outcome for storage.
type cachedResult struct {
	intents  []domain.IntentResult
	entities []domain.EntityResult
}

// CachedRecognizer wraps a Recognizer with a TTL cache keyed by message text.
// Chat users repeat themselves a lot; caching keeps identical texts from
// hitting the (billed) classification service twice within the TTL.
type CachedRecognizer struct {
	inner Recognizer
	cache *gocache.Cache
	log   *logging.Logger
}

// NewCached wraps the given recognizer with a TTL cache.
func NewCached(inner Recognizer, ttl time.Duration, log *logging.Logger) *CachedRecognizer {
	return &CachedRecognizer{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
		log:   log.Sub("nlu.cache"),
	}
}

// Recognize returns a cached result when available, otherwise delegates.
// Classification errors are never cached.
func (c *CachedRecognizer) Recognize(ctx context.Context, text string) ([]domain.IntentResult, []domain.EntityResult, error) {
	if hit, ok := c.cache.Get(text); ok {
		res := hit.(cachedResult)
		c.log.Debug().Msg("classification cache hit")
		return res.intents, res.entities, nil
	}

	intents, entities, err := c.inner.Recognize(ctx, text)
	if err != nil {
		return nil, nil, err
	}

	c.cache.SetDefault(text, cachedResult{intents: intents, entities: entities})
	return intents, entities, nil
}
