// Package proposer implements the semantic paragraph capability on top of an
// OpenAI-compatible chat completions endpoint.
package proposer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"shotsplit/internal/logging"
	"shotsplit/internal/segmentation"
)

const (
	defaultModel   = "gpt-4.1-mini"
	defaultTimeout = 90 * time.Second
)

// Config captures the runtime settings required to talk to the model.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client proposes paragraph spans for a transcript. It implements
// segmentation.Proposer.
type Client struct {
	cfg     Config
	client  openai.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithLogger attaches a logger to the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "paragraph-proposer")
	}
}

// NewClient constructs a proposer using the supplied configuration.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.APIKey == "" {
		return nil, errors.New("paragraph proposer: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}

	client := &Client{
		cfg:     cfg,
		client:  openai.NewClient(clientOpts...),
		timeout: timeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type proposalResponse struct {
	Paragraphs []segmentation.ParagraphDescriptor `json:"paragraphs"`
}

const systemPrompt = "You are a video editor's assistant. Group the transcript sentences into " +
	"coherent paragraphs for shot splitting. Respond with JSON only."

// Propose asks the model for paragraph spans over the indexed sentence list.
// An empty descriptor list signals "no usable answer" and is not an error.
func (c *Client) Propose(ctx context.Context, fullText, indexedSummary string, targetCount int) ([]segmentation.ParagraphDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf(
		"Split this transcript into about %d paragraphs.\n"+
			"Rules:\n"+
			"1) Cover every sentence index exactly once, in order.\n"+
			"2) start_sentence_index and end_sentence_index are inclusive.\n"+
			"3) Give each paragraph a short title and a one-sentence summary.\n\n"+
			"Output format:\n"+
			`{"paragraphs":[{"index":0,"title":"...","summary":"...","start_sentence_index":0,"end_sentence_index":4}]}`+"\n\n"+
			"Indexed sentences:\n%s\n\nFull transcript:\n%s",
		targetCount, indexedSummary, fullText,
	)

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       c.cfg.Model,
		Temperature: openai.Float(0.2),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("paragraph proposal: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if raw == "" {
		return nil, nil
	}

	descriptors, err := parseProposal(raw)
	if err != nil {
		c.logger.Warn("unparseable proposal treated as no answer",
			logging.Error(err),
			logging.Int("raw_len", len(raw)),
		)
		return nil, nil
	}
	return descriptors, nil
}

// parseProposal decodes the model answer, tolerating a fenced code block or a
// bare top-level array.
func parseProposal(raw string) ([]segmentation.ParagraphDescriptor, error) {
	raw = stripCodeFence(raw)
	var wrapped proposalResponse
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && len(wrapped.Paragraphs) > 0 {
		return wrapped.Paragraphs, nil
	}
	var bare []segmentation.ParagraphDescriptor
	if err := json.Unmarshal([]byte(raw), &bare); err == nil {
		return bare, nil
	}
	return nil, errors.New("response is neither a paragraphs object nor an array")
}

func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}
