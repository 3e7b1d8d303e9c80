package script

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voxcast/voxcast/internal/domain/entities"
)

// Parser handles parsing and validation of LLM responses
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseContentAnalysis parses the stage-1 analysis response
func (p *Parser) ParseContentAnalysis(raw string) (*entities.ContentAnalysis, error) {
	var result entities.ContentAnalysis
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}

// ParseOutline parses the stage-2 outline response
func (p *Parser) ParseOutline(raw string) (*entities.PodcastOutline, error) {
	var result entities.PodcastOutline
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}

// ParseScriptSegment parses a segment dialogue response
func (p *Parser) ParseScriptSegment(raw string) (*entities.ScriptSegment, error) {
	var result entities.ScriptSegment
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
