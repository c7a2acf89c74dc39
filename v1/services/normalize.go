package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/formforge/formforge-backend/v1/models"
)

const maxSlugLength = 50

var nonAlphanumericRuns = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a stable field name from display text: lowercase,
// non-alphanumeric runs collapsed to single hyphens, trimmed, capped at 50
// characters, never empty.
func slugify(label string) string {
	slug := strings.ToLower(label)
	slug = nonAlphanumericRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	if slug == "" {
		return "field"
	}
	return slug
}

// NormalizeSchema returns a copy of schema that is safe to persist and
// render: every field has a unique slugged name and the type-specific
// defaults applied. Explicit values in the input always win over defaults.
func NormalizeSchema(schema models.FormSchema) models.FormSchema {
	normalized := schema
	normalized.Fields = normalizeFields(schema.Fields)
	return normalized
}

func normalizeFields(fields []models.FormField) []models.FormField {
	seen := make(map[string]struct{}, len(fields))
	out := make([]models.FormField, len(fields))

	for idx, field := range fields {
		base := field

		source := base.Name
		if source == "" {
			source = base.Label
		}
		if source == "" {
			source = fmt.Sprintf("field-%d", idx)
		}
		cleanName := slugify(source)
		uniqueName := cleanName
		for counter := 1; ; counter++ {
			if _, taken := seen[uniqueName]; !taken {
				break
			}
			uniqueName = fmt.Sprintf("%s-%d", cleanName, counter)
		}
		seen[uniqueName] = struct{}{}
		base.Name = uniqueName

		if base.Type == models.FieldTypeEmail {
			validation := cloneValidation(base.Validation)
			if validation.Type == "" {
				validation.Type = models.ValidationTypeEmail
			}
			if validation.Required == nil {
				validation.Required = boolPtr(true)
			}
			base.Validation = validation
		}

		labelLower := strings.ToLower(base.Label)
		if base.Type == models.FieldTypeNumber ||
			strings.Contains(labelLower, "age") ||
			strings.Contains(labelLower, "years") {
			base.Type = models.FieldTypeNumber
			validation := cloneValidation(base.Validation)
			if validation.Min == nil {
				validation.Min = float64Ptr(0)
			}
			base.Validation = validation
		}

		if base.Type == models.FieldTypeFile && base.FileConstraints == nil {
			base.FileConstraints = &models.FileConstraints{
				MaxSizeMB:        float64Ptr(5),
				AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/webp"},
			}
		}

		out[idx] = base
	}
	return out
}

func cloneValidation(v *models.ValidationRule) *models.ValidationRule {
	if v == nil {
		return &models.ValidationRule{}
	}
	clone := *v
	return &clone
}

func boolPtr(b bool) *bool          { return &b }
func float64Ptr(f float64) *float64 { return &f }
func intPtr(n int) *int             { return &n }
