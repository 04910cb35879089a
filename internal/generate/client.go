// Package generate calls the upstream chat-completion service that turns a
// user prompt into a structured content script. The upstream is an external
// collaborator; everything here is transport glue around it.
package generate

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
)

const (
	completionsPath = "/chat/completions"
	maxErrorBody    = 4 << 10

	// The upstream is asked for a JSON object; a high temperature matches
	// the creative register the scripts are written in.
	generationTemperature = 1.5
)

// ErrUpstream reports a failed generation call.
var ErrUpstream = errors.New("generate: upstream request failed")

// Request carries everything a single generation needs.
type Request struct {
	Prompt       string
	SystemPrompt string
	// Reference is optional supporting material extracted from an upload;
	// when present the result is provenance-tagged as retrieval-augmented.
	Reference string
}

// Result is the parsed upstream answer.
type Result struct {
	Title   string
	Content json.RawMessage
}

// Service is the generation collaborator as seen by the HTTP layer.
type Service interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (useful for tests).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient constructs a generation client.
func NewClient(baseURL, apiKey, model string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("generate: base URL is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("generate: API key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("generate: model is required")
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate performs one chat-completion round trip and parses the returned
// JSON script.
func (c *Client) Generate(ctx context.Context, req Request) (Result, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return Result{}, errors.New("generate: prompt is required")
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: userMessage(prompt, req.Reference)},
		},
		Temperature: generationTemperature,
	}
	body.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(body)
	if err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Result{}, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if len(parsed.Choices) == 0 {
		return Result{}, fmt.Errorf("%w: empty choices", ErrUpstream)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if !json.Valid([]byte(content)) {
		return Result{}, fmt.Errorf("%w: model returned malformed JSON", ErrUpstream)
	}

	return Result{
		Title:   Title(prompt),
		Content: json.RawMessage(content),
	}, nil
}

func userMessage(prompt, reference string) string {
	var b strings.Builder
	b.WriteString("You are an elite chef and AI trainer helping to create practical cooking videos ")
	b.WriteString("for a social media channel called PixelPlates. ")
	b.WriteString("Generate a detailed educational JSON script based on the following request.\n\n")
	b.WriteString("REQUEST: ")
	b.WriteString(prompt)
	if reference != "" {
		b.WriteString("\n\n[REFERENCE MATERIAL START]\n")
		b.WriteString(reference)
		b.WriteString("\n[REFERENCE MATERIAL END]\n\n")
		b.WriteString("IMPORTANT: Use the above REFERENCE MATERIAL as the primary source for the recipe steps, ingredients, and style.")
	}
	b.WriteString("\n\nThe script will later be used to produce an AI-generated short-form video.")
	return b.String()
}

const maxTitleLength = 120

// Title derives a display title from the user prompt.
func Title(prompt string) string {
	title := strings.Join(strings.Fields(prompt), " ")
	if len(title) > maxTitleLength {
		title = strings.TrimSpace(title[:maxTitleLength])
	}
	if title == "" {
		title = "Generated script"
	}
	return title
}
