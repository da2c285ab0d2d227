package classifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/moodmap/internal/models"
)

func completion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}

func newTestRemote(t *testing.T, handler http.HandlerFunc) *Remote {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	r, err := New(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/",
		Model:   "test-model",
	}, nil)
	require.NoError(t, err)

	return r
}

func TestClassifySendsImage(t *testing.T) {
	var body map[string]any

	r := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/chat/completions", req.URL.Path)
		assert.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))

		b, err := io.ReadAll(req.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(b, &body))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(
			completion(`{"emotion": "happiness", "confidence": 0.92}`),
		)
	})

	got, err := r.Classify(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xD9})
	require.NoError(t, err)

	assert.Equal(t, models.Result{Emotion: models.Happiness, Confidence: 0.92}, got)

	assert.Equal(t, "test-model", body["model"])
	assert.InDelta(t, 0.2, body["temperature"], 1e-9)
	assert.Equal(t,
		map[string]any{"type": "json_object"},
		body["response_format"],
	)

	raw, err := json.Marshal(body["messages"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "data:image/jpeg;base64,/9j/2Q==")
	assert.Contains(t, string(raw), "dominant emotion")
}

func TestClassifyDoesNotRetry(t *testing.T) {
	var calls atomic.Int32

	r := newTestRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusServiceUnavailable)
	})

	_, err := r.Classify(context.Background(), []byte{1})

	assert.ErrorIs(t, err, ErrClassifier)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClassifyMalformedReply(t *testing.T) {
	r := newTestRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion(`{"emotion": "joy", "confidence": 0.5}`))
	})

	_, err := r.Classify(context.Background(), []byte{1})

	assert.ErrorIs(t, err, ErrClassifier)
	assert.ErrorIs(t, err, errMalformed)
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.ErrorIs(t, err, errMissingKey)
}

func TestParseResult(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    models.Result
		wantErr bool
	}{
		{
			name:    "valid",
			content: `{"emotion": "sadness", "confidence": 0.4}`,
			want:    models.Result{Emotion: models.Sadness, Confidence: 0.4},
		},
		{
			name:    "no face",
			content: `{"emotion": "none", "confidence": 0.1}`,
			want:    models.Result{Emotion: models.None, Confidence: 0.1},
		},
		{
			name:    "fenced",
			content: "```json\n{\"emotion\": \"anger\", \"confidence\": 1}\n```",
			want:    models.Result{Emotion: models.Anger, Confidence: 1},
		},
		{
			name:    "bounds are inclusive",
			content: `{"emotion": "neutral", "confidence": 0}`,
			want:    models.Result{Emotion: models.Neutral},
		},
		{
			name:    "unknown emotion",
			content: `{"emotion": "disgust", "confidence": 0.5}`,
			wantErr: true,
		},
		{
			name:    "confidence above one",
			content: `{"emotion": "surprise", "confidence": 1.5}`,
			wantErr: true,
		},
		{
			name:    "negative confidence",
			content: `{"emotion": "surprise", "confidence": -0.1}`,
			wantErr: true,
		},
		{
			name:    "confidence as string",
			content: `{"emotion": "surprise", "confidence": "0.5"}`,
			wantErr: true,
		},
		{
			name:    "missing confidence",
			content: `{"emotion": "surprise"}`,
			wantErr: true,
		},
		{
			name:    "missing emotion",
			content: `{"confidence": 0.5}`,
			wantErr: true,
		},
		{
			name:    "not json",
			content: "The user looks happy.",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseResult(tc.content)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrClassifier)
				assert.True(t, strings.HasPrefix(err.Error(), ErrClassifier.Message))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
