package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kjannette/tradedesk-backend/internal/analysis"
	"github.com/kjannette/tradedesk-backend/internal/httputil"
)

const (
	DefaultDeepSeekURL   = "https://api.deepseek.com"
	DefaultDeepSeekModel = "deepseek-chat"
)

var (
	ErrUnavailable       = errors.New("analysis backend unavailable")
	ErrRateLimited       = errors.New("analysis backend rate limited")
	ErrMalformedResponse = errors.New("analysis backend returned a malformed response")
	ErrUnauthorized      = errors.New("analysis backend rejected credentials")
)

const systemPrompt = `You are an equity research assistant for the Indian stock market (NSE/BSE).
Reply with a single JSON object and nothing else, using exactly these keys:
  "summary": one or two sentences,
  "insights": an array of 3 to 5 short observations,
  "recommendation": one of "buy", "sell", "hold",
  "confidence": a number between 0 and 1.`

type DeepSeekOptions struct {
	BaseURL  string
	Model    string
	Timeout  time.Duration
	CacheTTL time.Duration // 0 disables caching
}

// DeepSeekClient is an analysis.Analyzer backed by the DeepSeek
// chat-completions API.
type DeepSeekClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	retry      httputil.RetryConfig

	mu       sync.Mutex
	cache    map[string]cachedAnalysis
	cacheTTL time.Duration
}

type cachedAnalysis struct {
	resp      analysis.Response
	fetchedAt time.Time
}

var _ analysis.Analyzer = (*DeepSeekClient)(nil)

func NewDeepSeekClient(apiKey string, opts DeepSeekOptions) *DeepSeekClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultDeepSeekURL
	}
	model := opts.Model
	if model == "" {
		model = DefaultDeepSeekModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &DeepSeekClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		cache:      make(map[string]cachedAnalysis),
		cacheTTL:   opts.CacheTTL,
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    15 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *DeepSeekClient) Analyze(ctx context.Context, req analysis.Request) (*analysis.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := cacheKey(req)
	if cached, ok := c.fromCache(key); ok {
		return cached, nil
	}

	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("encode deepseek request: %w", err)
	}

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Authorization", "Bearer "+c.apiKey)
		r.Header.Set("Content-Type", "application/json")
		return r, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if httputil.StatusCode(err) == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, msg)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", ErrMalformedResponse, err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}

	out, err := parseAnalysis(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	fmt.Printf("[DEEPSEEK] %s over %s: %s (%.0f%%)\n",
		strings.Join(req.Symbols, ","), req.TimeRange, out.Recommendation, out.Confidence*100)

	c.store(key, out)
	return out, nil
}

func (c *DeepSeekClient) buildRequest(req analysis.Request) chatRequest {
	prompt := fmt.Sprintf("Analyze %s over the %s time frame. Symbols: %s.",
		describeSubject(req.Symbols), req.TimeRange, strings.Join(req.Symbols, ", "))

	cr := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
	}
	cr.ResponseFormat.Type = "json_object"
	return cr
}

func describeSubject(symbols []string) string {
	if len(symbols) == 1 {
		return "this instrument"
	}
	return fmt.Sprintf("this basket of %d instruments", len(symbols))
}

// parseAnalysis decodes the model's JSON reply and enforces the Response
// contract.
func parseAnalysis(content string) (*analysis.Response, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw struct {
		Summary        string   `json:"summary"`
		Insights       []string `json:"insights"`
		Recommendation string   `json:"recommendation"`
		Confidence     float64  `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	rec := analysis.Recommendation(strings.ToLower(strings.TrimSpace(raw.Recommendation)))
	switch {
	case strings.TrimSpace(raw.Summary) == "":
		return nil, fmt.Errorf("%w: empty summary", ErrMalformedResponse)
	case len(raw.Insights) == 0:
		return nil, fmt.Errorf("%w: no insights", ErrMalformedResponse)
	case !rec.Valid():
		return nil, fmt.Errorf("%w: recommendation %q", ErrMalformedResponse, raw.Recommendation)
	case raw.Confidence < 0 || raw.Confidence > 1:
		return nil, fmt.Errorf("%w: confidence %.3f out of range", ErrMalformedResponse, raw.Confidence)
	}

	return &analysis.Response{
		Summary:        strings.TrimSpace(raw.Summary),
		Insights:       raw.Insights,
		Recommendation: rec,
		Confidence:     raw.Confidence,
	}, nil
}

func cacheKey(req analysis.Request) string {
	return string(req.TimeRange) + "|" + strings.Join(req.Symbols, ",")
}

func (c *DeepSeekClient) fromCache(key string) (*analysis.Response, bool) {
	if c.cacheTTL <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[key]
	if !ok || time.Since(entry.fetchedAt) >= c.cacheTTL {
		return nil, false
	}
	resp := entry.resp
	resp.Insights = append([]string(nil), entry.resp.Insights...)
	fmt.Printf("[DEEPSEEK] Using cached analysis for %s (age: %s)\n", key, time.Since(entry.fetchedAt).Round(time.Second))
	return &resp, true
}

func (c *DeepSeekClient) store(key string, resp *analysis.Response) {
	if c.cacheTTL <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := *resp
	stored.Insights = append([]string(nil), resp.Insights...)
	c.cache[key] = cachedAnalysis{resp: stored, fetchedAt: time.Now()}
}
