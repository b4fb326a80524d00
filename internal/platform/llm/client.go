package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/salesagent-backend/internal/observability"
	pkgerrors "github.com/yungbote/salesagent-backend/internal/pkg/errors"
	"github.com/yungbote/salesagent-backend/internal/platform/httpx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

const chatCompletionsPath = "/v1/chat/completions"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Completion struct {
	Content      string
	Model        string
	FinishReason string
	Usage        Usage
}

// Client is the chat-completion surface used by the intent classifier, the workers and the
// general-chat responder.
type Client interface {
	Complete(ctx context.Context, messages []Message, opts ...CallOption) (Completion, error)
	GenerateText(ctx context.Context, system, user string) (string, error)
	GenerateJSON(ctx context.Context, system, user string) (map[string]any, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	MaxRetries  int
	Timeout     time.Duration
}

type CallOption func(*chatRequest)

// WithJSONResponse asks the provider for a JSON object response.
func WithJSONResponse() CallOption {
	return func(r *chatRequest) {
		r.ResponseFormat = &responseFormat{Type: "json_object"}
	}
}

func WithTemperature(t float64) CallOption {
	return func(r *chatRequest) { r.Temperature = &t }
}

func WithMaxTokens(n int) CallOption {
	return func(r *chatRequest) {
		if n > 0 {
			r.MaxTokens = n
		}
	}
}

type client struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	maxRetries  int
	httpClient  *http.Client
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing LLM_API_KEY: %w", pkgerrors.ErrUnavailable)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.mistral.ai"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "mistral-large-latest"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &client{
		log:         log.With("service", "LLMClient"),
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		maxRetries:  maxRetries,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

type llmHTTPError struct {
	StatusCode int
	Body       string
}

func (e *llmHTTPError) Error() string {
	return fmt.Sprintf("llm http %d: %s", e.StatusCode, e.Body)
}

func (e *llmHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) Complete(ctx context.Context, messages []Message, opts ...CallOption) (Completion, error) {
	if len(messages) == 0 {
		return Completion{}, fmt.Errorf("no messages: %w", pkgerrors.ErrInvalidArgument)
	}
	temp := c.temperature
	req := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: &temp,
		MaxTokens:   c.maxTokens,
	}
	for _, opt := range opts {
		opt(&req)
	}

	var resp chatResponse
	if err := c.do(ctx, chatCompletionsPath, &req, &resp); err != nil {
		return Completion{}, err
	}
	if len(resp.Choices) == 0 {
		return Completion{}, errors.New("llm returned no choices")
	}
	out := Completion{
		Content:      strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:        resp.Model,
		FinishReason: resp.Choices[0].FinishReason,
		Usage:        resp.Usage,
	}
	if out.Content == "" {
		return out, errors.New("llm returned empty content")
	}
	return out, nil
}

func (c *client) GenerateText(ctx context.Context, system, user string) (string, error) {
	msgs := make([]Message, 0, 2)
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, Message{Role: "system", Content: system})
	}
	msgs = append(msgs, Message{Role: "user", Content: user})
	out, err := c.Complete(ctx, msgs)
	if err != nil {
		return "", err
	}
	return out.Content, nil
}

func (c *client) GenerateJSON(ctx context.Context, system, user string) (map[string]any, error) {
	msgs := []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	out, err := c.Complete(ctx, msgs, WithJSONResponse())
	if err != nil {
		return nil, err
	}
	return ParseJSONObject(out.Content)
}

func (c *client) doOnce(ctx context.Context, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &llmHTTPError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, path string, body any, out *chatResponse) error {
	backoff := 1 * time.Second
	start := time.Now()

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, path, body)
		if err == nil {
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				observability.Current().ObserveLLMRequest(c.model, path, "decode_error", time.Since(start), 0, 0)
				return fmt.Errorf("llm decode error: %w; raw=%s", uErr, truncate(string(raw), 256))
			}
			observability.Current().ObserveLLMRequest(c.model, path, statusFromResp(resp, nil), time.Since(start), out.Usage.PromptTokens, out.Usage.CompletionTokens)
			return nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			observability.Current().ObserveLLMRequest(c.model, path, statusFromResp(resp, err), time.Since(start), 0, 0)
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("LLM request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		if sErr := httpx.Sleep(ctx, sleepFor); sErr != nil {
			return sErr
		}
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

func statusFromResp(resp *http.Response, err error) string {
	if resp != nil {
		return strconv.Itoa(resp.StatusCode)
	}
	if err != nil {
		return "error"
	}
	return "0"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
