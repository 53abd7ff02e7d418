package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"pantrypal/internal/logger"
	"pantrypal/internal/pantry"
)

const (
	defaultAPIURL = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel  = "llama-3.3-70b-versatile"
)

// Client talks to an OpenAI-compatible chat-completions endpoint. It backs
// the cheap text-only jobs: item name normalization and grocery
// classification.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
}

// NewClient creates a new Groq client.
func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{},
		apiURL:     defaultAPIURL,
		apiKey:     apiKey,
		model:      defaultModel,
	}
}

// Request represents the chat-completions request body.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// Message represents a message in the request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response represents the chat-completions response.
type Response struct {
	Choices []Choice `json:"choices"`
}

// Choice represents a choice in the response.
type Choice struct {
	Message ResponseMessage `json:"message"`
}

// ResponseMessage represents a message in the response.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) chat(ctx context.Context, prompt string) (string, error) {
	reqBody := Request{
		Model:       c.model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: 0.1,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-OK status code: %d", resp.StatusCode)
	}

	var llmResp Response
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("no content found in response")
	}
	return llmResp.Choices[0].Message.Content, nil
}

const normalizePrompt = `You are a food item name normalizer. Given a food item name (which may have typos, plural/singular variations, or different spellings), return ONLY the standardized, singular form of the item name in proper case.

Examples:
- "tomato" -> "Tomato"
- "tomates" -> "Tomato"
- "brocoli" -> "Broccoli"
- "bananas" -> "Banana"
- "chicken breast" -> "Chicken Breast"
- "bred" -> "Bread"

Input: "%s"

Return ONLY the corrected name, nothing else:`

// NormalizeItemName maps a raw item name to its canonical singular form. It
// never fails: on any error the name gets a basic capitalize-first cleanup.
func (c *Client) NormalizeItemName(ctx context.Context, name string) string {
	response, err := c.chat(ctx, fmt.Sprintf(normalizePrompt, name))
	if err != nil {
		logger.Warn("item name normalization failed, using fallback", "name", name, "error", err)
		return capitalizeFirst(name)
	}

	// Strip quotes or extra formatting that might sneak in.
	normalized := strings.TrimSpace(strings.NewReplacer(`"`, "", `'`, "").Replace(response))
	if normalized == "" {
		return capitalizeFirst(name)
	}
	return normalized
}

func capitalizeFirst(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	runes := []rune(strings.ToLower(name))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ClassifyGroceryItems classifies each name as grocery or non-grocery in one
// batch call. It never fails: on any error or shape mismatch the regex
// fallback takes over.
func (c *Client) ClassifyGroceryItems(ctx context.Context, names []string) []pantry.Classification {
	var list strings.Builder
	for i, name := range names {
		fmt.Fprintf(&list, "%d. %s\n", i+1, name)
	}

	prompt := fmt.Sprintf(`Classify each item as grocery (food/pantry item) or non-grocery.

Items to classify:
%s
Return ONLY a JSON array with one object per item, in the same order:
[{"isGrocery": true, "confidence": 0.95}, {"isGrocery": false, "confidence": 0.9}, ...]

Grocery = food, beverages, cooking ingredients, spices
Non-grocery = electronics, furniture, clothing, toiletries, cleaning products, office supplies`, list.String())

	response, err := c.chat(ctx, prompt)
	if err != nil {
		logger.Warn("grocery classification failed, using pattern fallback", "error", err)
		return pantry.FallbackClassify(names)
	}

	cleanJSON, err := extractJSONArray(response)
	if err != nil {
		logger.Warn("grocery classification returned no JSON, using pattern fallback", "error", err)
		return pantry.FallbackClassify(names)
	}

	var classifications []pantry.Classification
	if err := json.Unmarshal([]byte(cleanJSON), &classifications); err != nil || len(classifications) != len(names) {
		logger.Warn("grocery classification shape mismatch, using pattern fallback", "error", err)
		return pantry.FallbackClassify(names)
	}
	return classifications
}

// extractJSONArray pulls the JSON array out of a response that might be
// wrapped in markdown.
func extractJSONArray(s string) (string, error) {
	startIndex := strings.Index(s, "[")
	endIndex := strings.LastIndex(s, "]")

	if startIndex == -1 || endIndex == -1 || startIndex > endIndex {
		return "", fmt.Errorf("could not find JSON array in response: %s", s)
	}
	return s[startIndex : endIndex+1], nil
}
