package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tracing"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"

	// APIKeyEnv is consulted when Config.APIKey is empty
	APIKeyEnv = "OPENAI_API_KEY"
)

// Config for the chat client
type Config struct {
	APIKey      string        // falls back to OPENAI_API_KEY
	BaseURL     string        // default https://api.openai.com/v1
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// ChatClient implements Advisor against a chat completions API
type ChatClient struct {
	cfg    Config
	client *core.Client
	logger *slog.Logger
}

// NewChatClient creates a chat client. A nil client gets a fresh core.Client
// with the configured timeout.
func NewChatClient(cfg Config, client *core.Client, logger *slog.Logger) *ChatClient {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if client == nil {
		client = core.NewClient(cfg.Timeout)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatClient{cfg: cfg, client: client, logger: logger.With("component", "advisor")}
}

// Configured reports whether an API key is available
func (c *ChatClient) Configured() bool {
	return c.cfg.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float32       `json:"temperature,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Ask sends one question with the trip summary and returns the model's answer.
// Failures are returned as is; there is no retry.
func (c *ChatClient) Ask(ctx context.Context, question, contextSummary string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", core.NewValidationError(core.ErrMissingParameter, "question is required")
	}

	reqID := uuid.New().String()
	start := time.Now()

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: BuildPrompt(question, contextSummary)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	c.logger.Info("llm.http.request",
		"req_id", reqID,
		"model", c.cfg.Model,
		"url", endpoint,
		"content_length", len(body))

	resp, err := c.client.Do(ctx, tracing.ServiceLLM, "chat", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		return req, nil
	}, core.NoRetry)
	if err != nil {
		c.logger.Error("llm.http.send_error",
			"req_id", reqID,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}
	defer resp.Body.Close()

	var cc chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cc); err != nil {
		c.logger.Error("llm.http.decode_error", "req_id", reqID, "error", err)
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}

	answer := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.logger.Info("llm.http.response",
		"req_id", reqID,
		"answer_len", len(answer),
		"elapsed_ms", time.Since(start).Milliseconds())
	return answer, nil
}
