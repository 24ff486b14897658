package llmclient

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"todo-server/services/todo-api/internal/infrastructure/metrics"
	"todo-server/services/todo-api/internal/utils/httpclients"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

// Client talks to an OpenAI-compatible chat completion endpoint. Upstream
// failures surface as EXTERNAL platform errors; deadline hits as TIMEOUT.
type Client struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	timeout time.Duration
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		client:  httpclients.NewClient("llm"),
		baseURL: normalizeBaseURL(baseURL),
		apiKey:  apiKey,
		timeout: timeout,
	}
}

// CreateChatCompletion posts a non-streaming completion request.
func (c *Client) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	var respBody openai.ChatCompletionResponse
	resp, err := c.prepareRequest(ctx).
		SetBody(request).
		SetResult(&respBody).
		Post(c.endpoint("/chat/completions"))
	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.LLMDuration.WithLabelValues(request.Model, "error").Observe(duration)
		if ctx.Err() != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeTimeout, "completion request timed out", err, "5c6d7e8f-9a0b-4c1d-8e2f-3a4b5c6d7e8f")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "completion request failed", err, "7e8f9a0b-1c2d-4e3f-8a4b-5c6d7e8f9a0b")
	}
	if resp.IsError() {
		metrics.LLMDuration.WithLabelValues(request.Model, "error").Observe(duration)
		return nil, c.errorFromResponse(ctx, resp, "completion request failed")
	}

	metrics.LLMDuration.WithLabelValues(request.Model, "ok").Observe(duration)
	return &respBody, nil
}

func (c *Client) prepareRequest(ctx context.Context) *resty.Request {
	req := c.client.R().SetContext(ctx)
	req.SetHeader("Content-Type", "application/json")
	if strings.TrimSpace(c.apiKey) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	return req
}

func (c *Client) endpoint(path string) string {
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}

func (c *Client) errorFromResponse(ctx context.Context, resp *resty.Response, message string) error {
	if resp == nil || resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, message, nil, "9a0b1c2d-3e4f-4a5b-8c6d-7e8f9a0b1c2d")
	}
	defer resp.RawResponse.Body.Close()
	body, err := io.ReadAll(resp.RawResponse.Body)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, message, nil, "0b1c2d3e-4f5a-4b6c-8d7e-8f9a0b1c2d3e")
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, message, nil, "2d3e4f5a-6b7c-4d8e-8f9a-0b1c2d3e4f5a")
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, fmt.Sprintf("%s: %s", message, trimmed), nil, "4f5a6b7c-8d9e-4f0a-8b1c-2d3e4f5a6b7c")
}

func normalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}
