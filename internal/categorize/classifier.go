package categorize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmynk/splitsettle/internal/models"
)

const defaultClassifierBaseURL = "https://api.openai.com/v1"

// Classification is one category suggestion for an expense memo.
type Classification struct {
	CategoryID string  `json:"category_id"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// Classifier suggests a ledger category for an expense memo.
type Classifier interface {
	Classify(ctx context.Context, memo string, categories []models.Category) (*Classification, error)
}

// AIClassifier classifies memos with a chat-completions style model API.
type AIClassifier struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// AIOption configures an AIClassifier.
type AIOption func(*AIClassifier)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) AIOption {
	return func(c *AIClassifier) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) AIOption {
	return func(c *AIClassifier) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// NewAIClassifier creates a classifier backed by the given model.
func NewAIClassifier(apiKey, model string, opts ...AIOption) (*AIClassifier, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("classifier api key is empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	client := &AIClassifier{
		baseURL: defaultClassifierBaseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []chatCompletionMessage `json:"messages"`
	Temperature float64                 `json:"temperature"`
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = `You are an assistant that assigns budget categories to shared expenses. ` +
	`Pick exactly one category id from the provided list. Respond ONLY with compact JSON like ` +
	`{"category_id":"...","confidence":0.0,"rationale":"..."}. Confidence is between 0 and 1. ` +
	`Do not add explanations outside the JSON.`

// Classify asks the model to pick a category for the memo.
func (c *AIClassifier) Classify(ctx context.Context, memo string, categories []models.Category) (*Classification, error) {
	var sb strings.Builder
	sb.WriteString("Available categories (id: group > name):\n")
	for i := range categories {
		fmt.Fprintf(&sb, "%s: %s > %s\n", categories[i].ID, categories[i].GroupName, categories[i].Name)
	}
	fmt.Fprintf(&sb, "\nExpense: %s", memo)

	payload := chatCompletionRequest{
		Model: c.model,
		Messages: []chatCompletionMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: sb.String()},
		},
		Temperature: 0,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal classifier request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create classifier request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request classifier api failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read classifier response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier api returned status %d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(data, &completion); err != nil {
		return nil, fmt.Errorf("decode classifier response failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("classifier returned no choices")
	}

	content := stripCodeFences(completion.Choices[0].Message.Content)
	var result Classification
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("parse classification %q failed: %w", content, err)
	}
	if result.CategoryID == "" {
		return nil, fmt.Errorf("classifier returned empty category id")
	}
	return &result, nil
}

// stripCodeFences removes a surrounding markdown code fence, which some models
// wrap JSON responses in despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
