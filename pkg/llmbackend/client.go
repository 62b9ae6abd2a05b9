package llmbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/meetsignal/visualdelta/internal/httpc"
	"github.com/meetsignal/visualdelta/internal/log"
	"github.com/meetsignal/visualdelta/pkg/verbalizer"
)

// Client renders verbalizer.LLMContext into a chat-completions
// request and returns the model's reply text.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// New returns a Client built from cfg plus any functional options.
func New(cfg Config, opts ...Option) *Client {
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{
		cfg:    cfg,
		http:   httpc.NewClient(cfg.Timeout),
		logger: log.Component("llmbackend"),
	}
}

// Handler returns a verbalizer.LLMHandler bound to this client, ready
// to pass to Verbalizer.SetLLMHandler.
func (c *Client) Handler() verbalizer.LLMHandler {
	return c.Generate
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate satisfies verbalizer.LLMHandler: it sends llmCtx as a
// structured, identity-free prompt and returns the model's reply.
// llmCtx carries no bbox coordinates, fingerprints, or images by
// construction — see verbalizer.LLMContext.
func (c *Client) Generate(ctx context.Context, llmCtx verbalizer.LLMContext) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNoAPIKey
	}

	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(llmCtx)},
			{Role: "user", Content: userPrompt(llmCtx)},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llmbackend: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llmbackend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llmbackend: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llmbackend: read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llmbackend: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(body)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llmbackend: empty choices in response")
	}

	return parsed.Choices[0].Message.Content, nil
}

// systemPrompt instructs the model never to infer identity, bound to
// the same privacy guarantee the output validator enforces downstream.
func systemPrompt(llmCtx verbalizer.LLMContext) string {
	return "You write one short audio-description sentence for a meeting app. " +
		"Describe only position and state transitions. Never mention gender, " +
		"age, appearance, emotion, or race. Never invent a name."
}

func userPrompt(llmCtx verbalizer.LLMContext) string {
	return fmt.Sprintf(
		"event=%s position=%s kind=%s layout=%s->%s participants=%d hands_raised=%d screen_share_active=%t verbosity=%s",
		llmCtx.EventType, llmCtx.Position, llmCtx.Kind, llmCtx.LayoutFrom, llmCtx.LayoutTo,
		llmCtx.ParticipantCount, llmCtx.HandRaisedCount, llmCtx.ScreenShareActive, llmCtx.Verbosity,
	)
}
