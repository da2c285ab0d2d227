// Package classifier asks a remote image-understanding model for the dominant
// facial emotion in a frame
package classifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/ayoisaiah/moodmap/internal/apperr"
	"github.com/ayoisaiah/moodmap/internal/models"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 30 * time.Second

	temperature = 0.2
)

const prompt = "Analyze the user's facial expression from this image and " +
	"identify the dominant emotion. If no clear face or emotion is visible, " +
	"classify as 'none'. Respond with a JSON object with two fields: " +
	`"emotion", one of "happiness", "sadness", "surprise", "anger", ` +
	`"neutral" or "none", and "confidence", a number between 0 and 1.`

var (
	ErrClassifier = &apperr.Error{
		Message: "emotion analysis failed",
	}

	errMalformed = &apperr.Error{
		Message: "malformed response: %s",
	}

	errMissingKey = &apperr.Error{
		Message: "an API key is required for emotion analysis",
	}
)

// Classifier labels a JPEG frame with an emotion.
type Classifier interface {
	Classify(ctx context.Context, jpeg []byte) (models.Result, error)
}

// Config configures the remote model.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Remote classifies frames through an OpenAI-compatible chat completion
// endpoint.
type Remote struct {
	logger *slog.Logger
	model  string
	client openai.Client
}

// New returns a Remote classifier. Requests are never retried.
func New(cfg Config, logger *slog.Logger) (*Remote, error) {
	if cfg.APIKey == "" {
		return nil, errMissingKey
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Remote{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Classify sends frame to the model and validates its reply.
func (r *Remote) Classify(
	ctx context.Context,
	frame []byte,
) (models.Result, error) {
	dataURL := "data:image/jpeg;base64," +
		base64.StdEncoding.EncodeToString(frame)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(
					openai.ChatCompletionContentPartImageImageURLParam{
						URL: dataURL,
					},
				),
			}),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		Temperature: openai.Float(temperature),
	}

	start := time.Now()

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return models.Result{}, ErrClassifier.Wrap(err)
	}

	r.logger.Debug(
		"classifier responded",
		"model", r.model,
		"elapsed", time.Since(start),
	)

	if len(resp.Choices) == 0 {
		return models.Result{}, ErrClassifier.Wrap(errMalformed.Fmt("no choices"))
	}

	return ParseResult(resp.Choices[0].Message.Content)
}

type reply struct {
	Emotion    *string  `json:"emotion"`
	Confidence *float64 `json:"confidence"`
}

// ParseResult validates a model reply of the form
// {"emotion": "...", "confidence": 0.5}. Code fences around the object are
// tolerated.
func ParseResult(content string) (models.Result, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var rep reply

	err := json.Unmarshal([]byte(content), &rep)
	if err != nil {
		return models.Result{}, ErrClassifier.Wrap(errMalformed.Fmt(err.Error()))
	}

	if rep.Emotion == nil {
		return models.Result{}, ErrClassifier.Wrap(errMalformed.Fmt("missing emotion"))
	}

	emotion, err := models.ParseEmotion(*rep.Emotion)
	if err != nil {
		return models.Result{}, ErrClassifier.Wrap(errMalformed.Fmt(err.Error()))
	}

	if rep.Confidence == nil {
		return models.Result{}, ErrClassifier.Wrap(
			errMalformed.Fmt("missing confidence"),
		)
	}

	confidence := *rep.Confidence
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return models.Result{}, ErrClassifier.Wrap(
			errMalformed.Fmt("confidence out of range"),
		)
	}

	return models.Result{
		Emotion:    emotion,
		Confidence: confidence,
	}, nil
}
