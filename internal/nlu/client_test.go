package nlu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfuchss/deltabot/internal/domain"
	"github.com/dfuchss/deltabot/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

func TestHTTPClientRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/deltabot/predict", r.URL.Path)
		assert.Equal(t, "what time is it", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.Header.Get("Ocp-Apim-Subscription-Key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"query": "what time is it",
			"intents": [
				{"intent": "Clock", "score": 0.93},
				{"intent": "News", "score": 0.12}
			],
			"entities": [
				{"type": "city", "entity": "berlin"}
			]
		}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(ClientConfig{
		Endpoint: srv.URL,
		AppID:    "deltabot",
		Key:      "test-key",
	}, testLogger())

	intents, entities, err := client.Recognize(context.Background(), "what time is it")
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.Equal(t, domain.IntentResult{Name: "Clock", Score: 0.93}, intents[0])
	require.Len(t, entities, 1)
	assert.Equal(t, domain.EntityResult{Kind: "city", Value: "berlin"}, entities[0])
}

func TestHTTPClientRecognizeEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query": "mumble", "intents": [], "entities": []}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(ClientConfig{Endpoint: srv.URL, AppID: "deltabot"}, testLogger())

	intents, entities, err := client.Recognize(context.Background(), "mumble")
	require.NoError(t, err)
	assert.Empty(t, intents)
	assert.Empty(t, entities)
}

func TestHTTPClientRecognizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewHTTPClient(ClientConfig{Endpoint: srv.URL, AppID: "deltabot"}, testLogger())

	_, _, err := client.Recognize(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCachedRecognizer(t *testing.T) {
	var calls atomic.Int32
	inner := &Mock{
		RecognizeFunc: func(_ context.Context, _ string) ([]domain.IntentResult, []domain.EntityResult, error) {
			calls.Add(1)
			return []domain.IntentResult{{Name: "Clock", Score: 0.9}}, nil, nil
		},
	}

	cached := NewCached(inner, time.Minute, testLogger())

	for i := 0; i < 3; i++ {
		intents, _, err := cached.Recognize(context.Background(), "what time is it")
		require.NoError(t, err)
		require.Len(t, intents, 1)
		assert.Equal(t, "Clock", intents[0].Name)
	}
	assert.Equal(t, int32(1), calls.Load(), "identical text should be classified once")

	_, _, err := cached.Recognize(context.Background(), "another text")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCachedRecognizerDoesNotCacheErrors(t *testing.T) {
	var calls atomic.Int32
	inner := &Mock{
		RecognizeFunc: func(_ context.Context, _ string) ([]domain.IntentResult, []domain.EntityResult, error) {
			calls.Add(1)
			return nil, nil, assert.AnError
		},
	}

	cached := NewCached(inner, time.Minute, testLogger())

	_, _, err := cached.Recognize(context.Background(), "boom")
	require.Error(t, err)
	_, _, err = cached.Recognize(context.Background(), "boom")
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}
