package inference

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"violation-log-service/models"
)

// StubClient is a deterministic, no-network provider for local runs and CI.
// It returns schema-valid JSON so the parse + validate path is exercised end
// to end.
type StubClient struct{}

func NewStubClient() *StubClient { return &StubClient{} }

func (c *StubClient) SourceName() string { return "Stub" }

func (c *StubClient) AnalyzeViolation(_ context.Context, imageData []byte, description string) (string, error) {
	// Deterministic per input so repeated runs are stable.
	sum := sha256.Sum256(append([]byte(description), imageData...))

	severities := models.Severities()
	categories := models.Categories()
	out := rawSuggestion{
		SuggestedSeverity: string(severities[int(sum[0])%len(severities)]),
		SuggestedCategory: string(categories[int(sum[1])%len(categories)]),
		ExpertAdvice:      fmt.Sprintf("تأكد من معالجة الملاحظة التالية فوراً: %s", truncate(description, 120)),
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
