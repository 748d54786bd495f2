package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultRequestTimeout = 60 * time.Second
	maxTokens             = 4000
	maxErrorBody          = 512
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("completion: api key not configured")

const systemPrompt = `You are an expert web developer and UI/UX designer. Create a complete, beautiful HTML page based on the user's request.

Requirements:
- Create a single HTML file with embedded CSS and JavaScript
- Use modern CSS features (flexbox, grid, animations, gradients)
- Make it fully responsive and mobile-friendly
- Include interactive elements and hover effects
- Use beautiful color schemes and typography
- Add subtle animations and transitions
- Use CDN links for any external resources (fonts, icons)
- Ensure the design is visually striking and professional
- Include proper semantic HTML structure
- Make it accessible with proper contrast and ARIA labels
- Return ONLY the complete HTML code, no explanations or markdown

The page should be production-ready and visually impressive!`

// Generator produces an HTML page for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is a single generation request.
type Request struct {
	Prompt      string
	Model       string
	Temperature float64
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

// NewClient constructs a Client. timeout <= 0 uses the default.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c != nil && c.apiKey != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate requests a page and returns it with markdown fences removed.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if ctx == nil {
		ctx = context.Background()
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = DefaultModel
	}
	payload, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("completion: encode request: %w", err)
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(requestCtx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("completion: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion: request failed: %w", err)
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.WithError(errClose).Warn("completion: close response body failed")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("completion: read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return "", fmt.Errorf("completion: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(snippet))
	}

	var decoded chatResponse
	if errDecode := json.Unmarshal(body, &decoded); errDecode != nil {
		return "", fmt.Errorf("completion: decode response: %w", errDecode)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("completion: empty choices")
	}
	html := CleanHTML(decoded.Choices[0].Message.Content)
	if html == "" {
		return "", fmt.Errorf("completion: empty content")
	}
	log.Infof("completion: generated page with %d characters (model=%s)", len(html), model)
	return html, nil
}

// CleanHTML strips markdown code fences around generated markup.
func CleanHTML(content string) string {
	content = strings.ReplaceAll(content, "```html", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}
