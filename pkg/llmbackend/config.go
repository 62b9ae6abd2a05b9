// Package llmbackend implements verbalizer.LLMHandler against an
// OpenAI-compatible chat-completions endpoint. It is the optional LLM
// path the core verbalizer falls back away from on any error.
package llmbackend

import "time"

// Config holds the connection and model settings for the backend.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string

	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Option is a functional option for configuring a Client.
type Option func(*Config)

// WithBaseURL sets the API base URL. Examples:
// "https://api.openai.com/v1", "http://localhost:11434/v1".
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithAPIKey sets the bearer token sent on every request.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithModel sets the chat-completions model name.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) Option {
	return func(c *Config) { c.MaxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Config) { c.Temperature = t }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// DefaultConfig returns sensible defaults for OpenAI.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o-mini",
		MaxTokens:   60,
		Temperature: 0.4,
		Timeout:     10 * time.Second,
	}
}
