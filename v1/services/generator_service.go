package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/formforge/formforge-backend/ai/llm"
	apierrors "github.com/formforge/formforge-backend/pkg/errors"
	"github.com/formforge/formforge-backend/v1/models"
)

const systemPrompt = `You are an intelligent form schema generator. Output ONLY JSON matching this shape:
{
  "title": string,
  "description": string (optional),
  "fields": [{
    "name": string,
    "label": string,
    "type": "text" | "email" | "number" | "textarea" | "select" | "checkbox" | "radio" | "file",
    "placeholder": string (optional),
    "options": [string] (optional),
    "validation": {
      "required": boolean (optional),
      "minLength": number (optional),
      "maxLength": number (optional),
      "min": number (optional),
      "max": number (optional),
      "pattern": string (optional),
      "type": "email" | "number" | "url" (optional)
    } (optional),
    "fileConstraints": {
      "maxSizeMB": number (optional),
      "allowedMimeTypes": [string] (optional)
    } (optional)
  }]
}
Supported field types: text, email, number, textarea, select, checkbox, radio, file.
If the user mentions images/photos/documents, use type "file" and set fileConstraints.
Mark obvious email fields with validation.type="email" and required=true when appropriate.`

const (
	maxSummaryLength = 180
	maxTags          = 10
	minTagLength     = 4
)

// GeneratorService turns a user prompt into a normalized form schema. Any
// provider failure resolves to the deterministic fallback schema; generation
// itself never fails for a non-empty prompt.
type GeneratorService struct {
	completer llm.Completer
}

// NewGeneratorService creates a new generator service. A nil completer
// disables the provider entirely, which forces the fallback path.
func NewGeneratorService(completer llm.Completer) *GeneratorService {
	return &GeneratorService{completer: completer}
}

// Generate produces a schema plus its derived summary, tags, and provenance
func (s *GeneratorService) Generate(ctx context.Context, prompt string) (*models.GeneratedMeta, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apierrors.ValidationError("PROMPT_REQUIRED", "Prompt is required")
	}

	source := models.GenerationSourceLLM
	schema, ok := s.callProvider(ctx, prompt)
	if !ok {
		slog.Warn("Falling back to deterministic schema")
		schema = fallbackSchema(prompt)
		source = models.GenerationSourceFallback
	}

	schema = NormalizeSchema(schema)

	return &models.GeneratedMeta{
		Schema:  schema,
		Summary: deriveSummary(prompt, schema),
		Tags:    deriveTags(prompt, schema.Fields),
		Source:  source,
	}, nil
}

// callProvider calls the text-generation provider and defensively parses its
// output. Returns ok=false on any transport, status, or parse failure.
func (s *GeneratorService) callProvider(ctx context.Context, prompt string) (models.FormSchema, bool) {
	if s.completer == nil {
		return models.FormSchema{}, false
	}
	combined := systemPrompt + "\n\nUser prompt:\n" + prompt
	content, err := s.completer.Complete(ctx, combined)
	if err != nil {
		slog.Warn("LLM request failed", "error", err)
		return models.FormSchema{}, false
	}
	return parseSchemaJSON(content)
}

var (
	openingFence = regexp.MustCompile("(?i)^```json")
	bareFence    = regexp.MustCompile("^```")
	closingFence = regexp.MustCompile("```$")
)

// parseSchemaJSON decodes model output, tolerating Markdown code fences
// around the JSON body
func parseSchemaJSON(text string) (models.FormSchema, bool) {
	cleaned := strings.TrimSpace(text)
	cleaned = openingFence.ReplaceAllString(cleaned, "")
	cleaned = bareFence.ReplaceAllString(cleaned, "")
	cleaned = closingFence.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	var schema models.FormSchema
	if err := json.Unmarshal([]byte(cleaned), &schema); err != nil {
		slog.Warn("Failed to parse model output as schema JSON", "error", err)
		return models.FormSchema{}, false
	}
	return schema, true
}

// fallbackSchema is the deterministic 4-field form used whenever the provider
// is unavailable or produced garbage. Always valid, never fails.
func fallbackSchema(prompt string) models.FormSchema {
	return models.FormSchema{
		Title:       "Custom Form",
		Description: fmt.Sprintf("Auto-generated form for: %s", truncate(prompt, 80)),
		Fields: []models.FormField{
			{
				Name:  "full-name",
				Label: "Full Name",
				Type:  models.FieldTypeText,
				Validation: &models.ValidationRule{
					Required:  boolPtr(true),
					MinLength: intPtr(2),
				},
			},
			{
				Name:  "email",
				Label: "Email",
				Type:  models.FieldTypeEmail,
				Validation: &models.ValidationRule{
					Required: boolPtr(true),
					Type:     models.ValidationTypeEmail,
				},
			},
			{
				Name:        "details",
				Label:       "Details",
				Type:        models.FieldTypeTextarea,
				Placeholder: "Add any notes",
				Validation: &models.ValidationRule{
					MinLength: intPtr(10),
					MaxLength: intPtr(500),
				},
			},
			{
				Name:  "attachment",
				Label: "Attachment",
				Type:  models.FieldTypeFile,
				FileConstraints: &models.FileConstraints{
					MaxSizeMB:        float64Ptr(5),
					AllowedMimeTypes: []string{"image/jpeg", "image/png", "application/pdf"},
				},
			},
		},
	}
}

// deriveSummary prefers the schema description, then the prompt, then a
// synthesized title line
func deriveSummary(prompt string, schema models.FormSchema) string {
	if schema.Description != "" {
		return truncate(schema.Description, maxSummaryLength)
	}
	if prompt != "" {
		return truncate(prompt, maxSummaryLength)
	}
	return fmt.Sprintf("Form about %s", schema.Title)
}

var wordSplitter = regexp.MustCompile(`[^a-z0-9_]+`)

// deriveTags collects up to 10 deduplicated lowercase words longer than 3
// characters, prompt words first, then field labels, in first-seen order
func deriveTags(prompt string, fields []models.FormField) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0, maxTags)

	collect := func(text string) {
		for _, word := range wordSplitter.Split(strings.ToLower(text), -1) {
			if len(word) < minTagLength {
				continue
			}
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			tags = append(tags, word)
		}
	}

	collect(prompt)
	for _, field := range fields {
		collect(field.Label)
	}

	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags
}

// truncate caps s at limit runes
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
