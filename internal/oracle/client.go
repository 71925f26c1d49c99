// internal/oracle/client.go
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"travelease/internal/common/errors"
	httpclient "travelease/internal/common/http"
	"travelease/internal/common/logger"
)

// ClientConfig configures the HTTP oracle.
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxRetries  int
	MaxTokens   int
	Temperature float64

	// Consecutive failures before the breaker opens, and how long it stays open.
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration
}

func (c *ClientConfig) applyDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 2000
	}
	if c.Temperature == 0 {
		c.Temperature = 0.2
	}
	if c.BreakerMaxFailures <= 0 {
		c.BreakerMaxFailures = 5
	}
	if c.BreakerOpenTimeout <= 0 {
		c.BreakerOpenTimeout = 30 * time.Second
	}
}

type generateRequest struct {
	RequestID   string                 `json:"request_id"`
	Operation   string                 `json:"operation"`
	Model       string                 `json:"model,omitempty"`
	Prompt      string                 `json:"prompt"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Tools       []string               `json:"tools,omitempty"`
	MaxTokens   int                    `json:"max_tokens"`
	Temperature float64                `json:"temperature"`
}

type toolCall struct {
	Name      string `json:"name"`
	Arguments struct {
		Category string `json:"category"`
		ID       string `json:"id"`
	} `json:"arguments"`
}

type generateResponse struct {
	Text      string     `json:"text"`
	ToolCalls []toolCall `json:"tool_calls"`
}

// errRetryable marks a failed attempt that is worth repeating.
var errRetryable = stderrors.New("retryable oracle failure")

// HTTPClient calls the GenAI gateway. Each call goes through a circuit
// breaker; while it is open calls fail fast with ORACLE_UNAVAILABLE.
type HTTPClient struct {
	config     ClientConfig
	httpClient *httpclient.Client
	breaker    *gobreaker.CircuitBreaker[*Response]
	logger     logger.Logger
}

// NewHTTPClient builds a client. A nil httpClient gets one without a
// timeout; callers bound each call through ctx.
func NewHTTPClient(cfg ClientConfig, httpClient *httpclient.Client, log logger.Logger) *HTTPClient {
	cfg.applyDefaults()
	if httpClient == nil {
		httpClient = httpclient.NewClient(0)
	}
	log = log.With(map[string]interface{}{"component": "oracle-client"})

	maxFailures := uint32(cfg.BreakerMaxFailures)
	breaker := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:    "oracle",
		Timeout: cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// a malformed answer means the gateway is up
		IsSuccessful: func(err error) bool {
			return err == nil || errors.CodeOf(err) == errors.ErrCodeOracleMalformed
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Oracle breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return &HTTPClient{
		config:     cfg,
		httpClient: httpClient,
		breaker:    breaker,
		logger:     log,
	}
}

// State exposes the breaker state for health reporting.
func (c *HTTPClient) State() gobreaker.State {
	return c.breaker.State()
}

// Complete implements Oracle.
func (c *HTTPClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.breaker.Execute(func() (*Response, error) {
		return c.callWithRetry(ctx, req)
	})
	if err == nil {
		return resp, nil
	}
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.NewOracleUnavailableError(err)
	}
	return nil, err
}

func (c *HTTPClient) callWithRetry(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(generateRequest{
		RequestID:   req.ID,
		Operation:   req.Operation,
		Model:       c.config.Model,
		Prompt:      req.Prompt,
		Context:     req.Context,
		Tools:       req.Tools,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return nil, errors.NewOracleMalformedError(fmt.Sprintf("encode request: %v", err))
	}

	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<uint(attempt-1))) * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, errors.NewOracleTimeoutError()
			case <-time.After(backoff):
			}
		}

		resp, err := c.do(ctx, body)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, errors.NewOracleTimeoutError()
		}
		if !stderrors.Is(err, errRetryable) {
			return nil, err
		}
		lastErr = err
		c.logger.Debug("Oracle attempt failed", map[string]interface{}{
			"requestId": req.ID,
			"attempt":   attempt + 1,
			"error":     err.Error(),
		})
	}

	return nil, errors.NewOracleUnavailableError(lastErr)
}

func (c *HTTPClient) do(ctx context.Context, body []byte) (*Response, error) {
	url := strings.TrimRight(c.config.BaseURL, "/") + "/api/ai/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewOracleUnavailableError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errRetryable, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", errRetryable, err)
	}

	switch {
	case httpResp.StatusCode == http.StatusOK:
	case httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", errRetryable, httpResp.StatusCode)
	default:
		return nil, errors.NewOracleUnavailableError(fmt.Errorf("status %d: %s", httpResp.StatusCode, truncate(string(raw), 200)))
	}

	var gen generateResponse
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.NewOracleMalformedError(fmt.Sprintf("decode response: %v", err))
	}

	out := &Response{Text: gen.Text}
	for _, tc := range gen.ToolCalls {
		out.Inspections = append(out.Inspections, Inspection{
			Tool:     tc.Name,
			Category: categoryOf(tc.Arguments.Category),
			ID:       tc.Arguments.ID,
		})
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
