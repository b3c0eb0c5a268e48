// Package receipt extracts transaction field candidates from a receipt image
// through an external generative model. The model is untrusted input: its
// response is parsed and every field is validated before use. No retries are
// attempted; a failed call is a failed scan.
package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// DefaultModelName is the model used when none is configured.
const DefaultModelName = "gemini-2.0-flash"

// scanPrompt is the fixed instructional prompt sent with every image.
const scanPrompt = `You are a receipt parser.

Task:
- Read the attached receipt image.
- Output STRICT JSON only (no comments, no trailing commas, no extra text).
- Output a single JSON object.

The object must have these fields:
- "amount": number (total amount on the receipt, non-negative)
- "date": string, ISO format "YYYY-MM-DD"
- "description": string (short summary of the purchase)
- "category": string (e.g. "groceries", "food", "transportation", "shopping", "healthcare", "entertainment", "utilities", "travel")
- "merchantName": string or null

Return ONLY valid raw JSON.
Do NOT wrap the response in code fences.
Do NOT use ` + "```json" + ` or any Markdown.
Output must begin with "{" and end with "}".
`

// Data holds the validated transaction field candidates for one receipt.
type Data struct {
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	MerchantName string          `json:"merchant_name"`
}

// Extractor is the interface the HTTP layer depends on, so scans can be
// mocked in tests.
type Extractor interface {
	Scan(ctx context.Context, image []byte, mimeType string) (*Data, error)
}

// Scanner is the Gemini-backed Extractor.
type Scanner struct {
	model string
}

// NewScanner creates a scanner for the given model name; empty means
// DefaultModelName.
func NewScanner(model string) *Scanner {
	if model == "" {
		model = DefaultModelName
	}
	return &Scanner{model: model}
}

// Scan sends the image to the model and parses the response into validated
// field candidates. Transport and model errors are domain.ErrExtractionFailed;
// an unparseable or ill-typed response is domain.ErrInvalidFormat.
func (s *Scanner) Scan(ctx context.Context, image []byte, mimeType string) (*Data, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidFormat)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("Scan: create genai client: %w: %w", domain.ErrExtractionFailed, err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: scanPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("Scan: generate content: %w: %w", domain.ErrExtractionFailed, err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Scan: %w: empty response from model", domain.ErrExtractionFailed)
	}

	return parseResponse(rawText)
}

// parseResponse strips Markdown wrapping, parses the JSON object and
// validates field types and ranges.
func parseResponse(raw string) (*Data, error) {
	clean := cleanModelJSON(raw)

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &obj); err != nil {
		return nil, fmt.Errorf("parseResponse: %w: %v", domain.ErrInvalidFormat, err)
	}

	return toData(obj)
}

func toData(obj map[string]interface{}) (*Data, error) {
	amount, err := getAmountField(obj, "amount")
	if err != nil {
		return nil, err
	}

	dateStr, err := getStringField(obj, "date", true)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", domain.ErrInvalidFormat, dateStr)
	}

	desc, err := getStringField(obj, "description", true)
	if err != nil {
		return nil, err
	}
	category, err := getStringField(obj, "category", false)
	if err != nil {
		return nil, err
	}
	merchant, err := getStringField(obj, "merchantName", false)
	if err != nil {
		return nil, err
	}

	return &Data{
		Amount:       amount,
		Date:         date,
		Description:  desc,
		Category:     category,
		MerchantName: merchant,
	}, nil
}

func getAmountField(m map[string]interface{}, key string) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: missing required field %q", domain.ErrInvalidFormat, key)
	}

	var amount decimal.Decimal
	switch val := v.(type) {
	case float64:
		amount = decimal.NewFromFloat(val)
	case string:
		var err error
		amount, err = decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: field %q is not a number: %q", domain.ErrInvalidFormat, key, val)
		}
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: field %q has type %T, want number", domain.ErrInvalidFormat, key, v)
	}

	if amount.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: field %q must be non-negative", domain.ErrInvalidFormat, key)
	}
	return amount, nil
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("%w: missing required field %q", domain.ErrInvalidFormat, key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q has type %T, want string", domain.ErrInvalidFormat, key, v)
	}
	s = strings.TrimSpace(s)
	if required && s == "" {
		return "", fmt.Errorf("%w: required field %q is empty", domain.ErrInvalidFormat, key)
	}
	return s, nil
}

// cleanModelJSON strips Markdown code fences and surrounding junk if the
// model ignored the formatting instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// If there is still junk around the JSON object, keep only from the
	// first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
