package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"pantrypal/internal/pantry"
)

// Client is a client for the Gemini API.
type Client struct {
	model *genai.GenerativeModel
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{model: client.GenerativeModel("gemini-1.5-flash")}, nil
}

const scanPrompt = `Analyze this receipt image and extract the merchant details and ALL items purchased.

Return ONLY a valid JSON object in this exact format:
{
  "merchantName": "Store Name",
  "date": "YYYY-MM-DD" (or null if not found),
  "totalAmount": "0.00" (or null if not found),
  "items": [
    {
      "name": "Item Name (standardized singular, e.g. 'Apple' not 'Apples')",
      "count": "5" (if discrete count available, else null),
      "weight": "1.5" (if weight available, else null),
      "weightUnit": "lb" (e.g. kg, g, lb, oz, else null),
      "quantity": "1" (legacy fallback: prefer count or weight value),
      "unit": "bag" (legacy fallback: if no weight unit)
    }
  ]
}

Extract EVERY item.
- Separation: If an item has both count and weight (e.g. "2 bags of 500g"), capture BOTH.
- Accuracy: If date/total is unclear, use null.`

// receiptPayload mirrors the JSON shape the model is asked to return.
type receiptPayload struct {
	MerchantName string           `json:"merchantName"`
	Date         string           `json:"date"`
	TotalAmount  string           `json:"totalAmount"`
	Items        []pantry.RawItem `json:"items"`
}

// ScanReceipt extracts merchant metadata and line items from a receipt image.
// format is the image format hint, e.g. "jpeg" or "png".
func (c *Client) ScanReceipt(ctx context.Context, imageData []byte, format string) (*pantry.ReceiptScan, error) {
	prompt := []genai.Part{
		genai.ImageData(format, imageData),
		genai.Text(scanPrompt),
	}

	text, err := c.generate(ctx, prompt...)
	if err != nil {
		return nil, err
	}

	cleanJSON, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var payload receiptPayload
	if err := json.Unmarshal([]byte(cleanJSON), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal receipt JSON: %w. Raw response: %s", err, cleanJSON)
	}

	return &pantry.ReceiptScan{
		Items: payload.Items,
		Metadata: pantry.ReceiptMetadata{
			MerchantName: payload.MerchantName,
			Date:         payload.Date,
			TotalAmount:  payload.TotalAmount,
		},
	}, nil
}

// GenerateRecipes proposes meals from the user's pantry and profile.
func (c *Client) GenerateRecipes(ctx context.Context, req pantry.RecipeRequest) ([]pantry.Recipe, error) {
	unitSystem := "METRIC (g, kg, ml, L)"
	if req.MeasurementUnit == "imperial" {
		unitSystem = "IMPERIAL (oz, lb, cup, tbsp, tsp)"
	}
	dietTags := req.DietTags
	if dietTags == "" {
		dietTags = "None"
	}

	promptText := fmt.Sprintf(`You are a specialized chef AI.
My Pantry contains: %s.

User Profile:
- Daily Protein Target: %.0fg
- Diet Check: %s
- Biometrics: Gender: %s, Weight: %.0fkg, Height: %.0fcm
- Cuisine: %s
- Preferred Measurement System: %s

Task: Suggest 3 distinct, delicious %s recipes that I can make using primarily these ingredients.
Consider my biometrics for portion sizes and macro ratios.
They MUST align with the dietary preferences (e.g. if Vegetarian, NO meat).

IMPORTANT: All ingredient measurements in the recipes MUST be in %s units.
Use the EXACT quantities from my pantry or proportional amounts.

Return valid JSON ONLY. No markdown, no "json" label.
Format:
{
  "recipes": [
    {
      "title": "Recipe Name",
      "time": "30m",
      "difficulty": "Easy/Medium/Hard",
      "calories": "500 kcal",
      "protein": "30g",
      "description": "Brief appetizing description.",
      "usedIngredients": ["Chicken", "Pasta"],
      "missingIngredients": ["Heavy Cream"],
      "instructions": ["Step 1...", "Step 2..."]
    }
  ]
}`,
		req.PantryList, req.ProteinTarget, dietTags,
		req.Gender, req.WeightKg, req.HeightCm,
		req.Cuisine, strings.ToUpper(req.MeasurementUnit),
		req.Cuisine, unitSystem)

	text, err := c.generate(ctx, genai.Text(promptText))
	if err != nil {
		return nil, err
	}

	cleanJSON, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Recipes []pantry.Recipe `json:"recipes"`
	}
	if err := json.Unmarshal([]byte(cleanJSON), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipes JSON: %w. Raw response: %s", err, cleanJSON)
	}
	return payload.Recipes, nil
}

func (c *Client) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}
	return string(text), nil
}

// extractJSON pulls the JSON object out of a response that might be wrapped
// in markdown.
func extractJSON(s string) (string, error) {
	startIndex := strings.Index(s, "{")
	endIndex := strings.LastIndex(s, "}")

	if startIndex == -1 || endIndex == -1 || startIndex > endIndex {
		return "", fmt.Errorf("could not find JSON object in response: %s", s)
	}
	return s[startIndex : endIndex+1], nil
}
