// Package ai talks to an OpenAI-compatible provider for embeddings and chat
// completions.
package ai

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var (
	// ErrProvider covers transport, auth and quota failures.
	ErrProvider = errors.New("provider request failed")
	// ErrProviderTimeout marks a call that exceeded the configured timeout.
	ErrProviderTimeout = errors.New("provider request timed out")
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Config struct {
	BaseURL         string
	APIKey          string
	ChatModel       string
	EmbeddingModel  string
	MaxOutputTokens int
	Timeout         time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

// wrapTransportErr classifies a failed round trip as a timeout or a generic
// provider failure.
func wrapTransportErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || (ctx.Err() == context.DeadlineExceeded) {
		return errors.Join(ErrProviderTimeout, err)
	}
	return errors.Join(ErrProvider, err)
}
