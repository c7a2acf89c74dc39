package models

// FieldType represents the UI type of a form field
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeFile     FieldType = "file"
)

// SupportedFieldTypes lists every field type the renderer understands
var SupportedFieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeEmail,
	FieldTypeNumber,
	FieldTypeTextarea,
	FieldTypeSelect,
	FieldTypeCheckbox,
	FieldTypeRadio,
	FieldTypeFile,
}

// ValidationType represents the semantic validation override for a field
type ValidationType string

const (
	ValidationTypeEmail  ValidationType = "email"
	ValidationTypeNumber ValidationType = "number"
	ValidationTypeURL    ValidationType = "url"
)

// GenerationSource records the provenance of a generated schema
type GenerationSource string

const (
	GenerationSourceLLM      GenerationSource = "llm"
	GenerationSourceFallback GenerationSource = "fallback"
)

// MediaContext describes where an uploaded file is used
const MediaContextSubmission = "submission"
