package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

const analysisPrompt = `بصفتك خبير سلامة وصحة مهنية، قم بتحليل هذه الصورة والوصف: "%s".
حدد مستوى الخطورة والتصنيف المناسب للمخالفة من الخيارات المتاحة (منخفضة، متوسطة، عالية، حرجة).
أعطِ نصيحة قصيرة باللغة العربية لتجنب تكرار هذه المخالفة.`

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type schemaProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type responseSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]schemaProperty `json:"properties"`
	Required   []string                  `json:"required"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"response_mime_type"`
	ResponseSchema   *responseSchema `json:"response_schema,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiClient calls the Gemini generateContent REST API.
type GeminiClient struct {
	apiKey string
	model  string
	client *http.Client
}

// NewGeminiClient creates a Gemini inference client. timeout caps the whole
// generateContent round trip so a hung provider call cannot pin a handler.
func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

// SourceName identifies this provider in logs.
func (c *GeminiClient) SourceName() string {
	return "Gemini"
}

// AnalyzeViolation sends the photo and description with a structured-output
// schema and returns the model's JSON text.
func (c *GeminiClient) AnalyzeViolation(ctx context.Context, imageData []byte, description string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{
			{
				Parts: []part{
					{InlineData: &inlineData{
						MimeType: "image/jpeg",
						Data:     base64.StdEncoding.EncodeToString(imageData),
					}},
					{Text: fmt.Sprintf(analysisPrompt, description)},
				},
			},
		},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema: &responseSchema{
				Type: "OBJECT",
				Properties: map[string]schemaProperty{
					"suggestedSeverity": {
						Type:        "STRING",
						Description: "مستوى الخطورة المقترح (منخفضة، متوسطة، عالية، حرجة)",
					},
					"suggestedCategory": {
						Type:        "STRING",
						Description: "تصنيف المخالفة المقترح من قائمة التصنيفات المتاحة",
					},
					"expertAdvice": {
						Type:        "STRING",
						Description: "نصيحة الخبير باللغة العربية",
					},
				},
				Required: []string{"suggestedSeverity", "suggestedCategory", "expertAdvice"},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", geminiEndpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}
