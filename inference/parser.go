package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"violation-log-service/models"
)

// rawSuggestion is the wire shape of the model response before validation.
type rawSuggestion struct {
	SuggestedSeverity string `json:"suggestedSeverity"`
	SuggestedCategory string `json:"suggestedCategory"`
	ExpertAdvice      string `json:"expertAdvice"`
}

// ExtractJSONFromMarkdown extracts JSON from markdown code blocks. Providers
// occasionally wrap structured output in ``` fences despite the JSON mime
// type request.
func ExtractJSONFromMarkdown(response string) string {
	startMarker := "```"

	startIdx := strings.Index(response, startMarker)
	if startIdx == -1 {
		// No code block, try to find a JSON object directly.
		startIdx = strings.Index(response, "{")
		if startIdx == -1 {
			return response
		}
		endIdx := strings.LastIndex(response, "}")
		if endIdx == -1 {
			return response
		}
		return strings.TrimSpace(response[startIdx : endIdx+1])
	}

	endIdx := strings.Index(response[startIdx+len(startMarker):], startMarker)
	if endIdx == -1 {
		return response
	}
	endIdx += startIdx + len(startMarker)

	content := response[startIdx+len(startMarker) : endIdx]

	// Drop the language identifier line if present (e.g. "json").
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && (strings.TrimSpace(lines[0]) == "json" || strings.TrimSpace(lines[0]) == "") {
		content = strings.Join(lines[1:], "\n")
	}

	return strings.TrimSpace(content)
}

// ParseSuggestion parses a provider response and validates the suggested
// severity and category against the closed enumerations. The provider is
// prompted but not forced to answer with legal values, so an out-of-enum
// suggestion is an error here rather than a value that leaks into form state.
func ParseSuggestion(response string) (*models.Suggestion, error) {
	cleaned := ExtractJSONFromMarkdown(strings.TrimSpace(response))

	var raw rawSuggestion
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse suggestion JSON: %w", err)
	}

	severity := models.Severity(strings.TrimSpace(raw.SuggestedSeverity))
	if !models.ValidSeverity(severity) {
		return nil, fmt.Errorf("suggested severity %q is not a known severity", raw.SuggestedSeverity)
	}
	category := models.Category(strings.TrimSpace(raw.SuggestedCategory))
	if !models.ValidCategory(category) {
		return nil, fmt.Errorf("suggested category %q is not a known category", raw.SuggestedCategory)
	}
	if strings.TrimSpace(raw.ExpertAdvice) == "" {
		return nil, errors.New("expert advice is required")
	}

	return &models.Suggestion{
		SuggestedSeverity: severity,
		SuggestedCategory: category,
		ExpertAdvice:      strings.TrimSpace(raw.ExpertAdvice),
	}, nil
}
