package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/formforge/formforge-backend/ai/embedding"
	"github.com/formforge/formforge-backend/ai/vectorindex"
	"github.com/formforge/formforge-backend/config"
	"github.com/formforge/formforge-backend/monitoring"
	apierrors "github.com/formforge/formforge-backend/pkg/errors"
	"github.com/formforge/formforge-backend/pkg/similarity"
	"github.com/formforge/formforge-backend/v1/models"
)

const maxPurposeLength = 120

// FormService orchestrates form generation: it retrieves the owner's relevant
// form history, prepends it to the prompt, generates and normalizes a schema,
// embeds the result, and persists the form.
type FormService struct {
	db        *gorm.DB
	embedder  embedding.Embedder
	index     vectorindex.Index
	generator *GeneratorService
	memory    config.MemoryConfig
	metrics   *monitoring.Metrics
}

// NewFormService creates a new form service
func NewFormService(db *gorm.DB, embedder embedding.Embedder, index vectorindex.Index, generator *GeneratorService, memory config.MemoryConfig, metrics *monitoring.Metrics) *FormService {
	return &FormService{
		db:        db,
		embedder:  embedder,
		index:     index,
		generator: generator,
		memory:    memory,
		metrics:   metrics,
	}
}

// historySnippet is the compact view of a past form injected into the
// generation prompt. Capped per form so one large schema cannot crowd out the
// rest of the history.
type historySnippet struct {
	ID      string             `json:"id"`
	Purpose string             `json:"purpose"`
	Title   string             `json:"title"`
	Tags    []string           `json:"tags"`
	Fields  []historyFieldView `json:"fields"`
}

type historyFieldView struct {
	Name               string `json:"name"`
	Label              string `json:"label"`
	Type               string `json:"type"`
	HasValidation      bool   `json:"hasValidation"`
	HasFileConstraints bool   `json:"hasFileConstraints"`
}

// CreateForm runs the full generation pipeline for one prompt. Memory
// retrieval and embedding are best-effort: their failures are logged and the
// pipeline continues without them.
func (s *FormService) CreateForm(ctx context.Context, ownerID, prompt string, useMemory bool) (*models.Form, models.GenerationSource, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, "", apierrors.ValidationError("PROMPT_REQUIRED", "Prompt is required")
	}

	var promptEmbedding []float64
	if useMemory {
		start := time.Now()
		vec, err := s.embedder.Embed(ctx, prompt)
		s.metrics.ObserveStage("embed_prompt", start)
		if err != nil {
			slog.Warn("Prompt embedding failed, skipping memory retrieval", "error", err)
		} else {
			promptEmbedding = vec
		}
	}

	finalPrompt := prompt
	if len(promptEmbedding) > 0 {
		start := time.Now()
		history := s.retrieveHistory(ctx, ownerID, promptEmbedding)
		s.metrics.ObserveStage("retrieve_memory", start)
		if len(history) > 0 {
			finalPrompt = buildMemoryPrompt(history, prompt)
		}
	}

	start := time.Now()
	generated, err := s.generator.Generate(ctx, finalPrompt)
	s.metrics.ObserveStage("generate_schema", start)
	if err != nil {
		return nil, "", err
	}
	s.metrics.FormsGenerated.WithLabelValues(string(generated.Source)).Inc()

	purpose := derivePurpose(prompt, generated.Schema)
	combined := combinedEmbeddingText(prompt, generated)

	start = time.Now()
	formEmbedding, err := s.embedder.Embed(ctx, combined)
	s.metrics.ObserveStage("embed_form", start)
	if err != nil {
		slog.Warn("Form embedding failed, storing empty vector", "error", err)
		formEmbedding = []float64{}
	}

	summary := generated.Summary
	form := &models.Form{
		FormID:         "form_" + uuid.New().String(),
		OwnerID:        ownerID,
		Title:          generated.Schema.Title,
		Purpose:        purpose,
		Summary:        &summary,
		Tags:           models.StringSlice(generated.Tags),
		ReferenceMedia: models.StringSlice{},
		FormSchema:     generated.Schema,
		Embedding:      models.Vector(formEmbedding),
	}
	if form.Tags == nil {
		form.Tags = models.StringSlice{}
	}

	if err := s.db.WithContext(ctx).Create(form).Error; err != nil {
		return nil, "", apierrors.HandleDatabaseError(err, "Form", "create form")
	}

	if s.memory.UsePinecone && len(formEmbedding) > 0 {
		go s.indexForm(form)
	}

	return form, generated.Source, nil
}

// retrieveHistory returns the owner's most relevant past forms, preferring the
// external index and falling back to local cosine ranking. Failures return an
// empty history.
func (s *FormService) retrieveHistory(ctx context.Context, ownerID string, promptEmbedding []float64) []historySnippet {
	ids := s.queryIndex(ctx, ownerID, promptEmbedding)
	if len(ids) == 0 {
		ids = s.rankLocally(ctx, ownerID, promptEmbedding)
	}
	if len(ids) == 0 {
		return nil
	}

	var forms []models.Form
	err := s.db.WithContext(ctx).
		Where("form_id IN ? AND owner_id = ?", ids, ownerID).
		Find(&forms).Error
	if err != nil {
		slog.Warn("Failed to load history forms", "error", err)
		return nil
	}

	// Preserve the ranking order
	byID := make(map[string]models.Form, len(forms))
	for _, f := range forms {
		byID[f.FormID] = f
	}
	snippets := make([]historySnippet, 0, len(ids))
	for _, id := range ids {
		form, ok := byID[id]
		if !ok {
			continue
		}
		snippets = append(snippets, s.snippetFromForm(form))
	}
	return snippets
}

func (s *FormService) queryIndex(ctx context.Context, ownerID string, vector []float64) []string {
	matches, err := s.index.Query(ctx, ownerID, vector, s.memory.TopK)
	if err != nil {
		slog.Warn("Vector index query failed, falling back to local ranking", "error", err)
		return nil
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return ids
}

func (s *FormService) rankLocally(ctx context.Context, ownerID string, vector []float64) []string {
	var forms []models.Form
	err := s.db.WithContext(ctx).
		Select("form_id", "embedding").
		Where("owner_id = ?", ownerID).
		Find(&forms).Error
	if err != nil {
		slog.Warn("Failed to load owner forms for ranking", "error", err)
		return nil
	}

	candidates := make([]similarity.Candidate, 0, len(forms))
	for _, f := range forms {
		if len(f.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, similarity.Candidate{ID: f.FormID, Vector: f.Embedding})
	}
	return similarity.Rank(vector, candidates, s.memory.TopK)
}

func (s *FormService) snippetFromForm(form models.Form) historySnippet {
	fields := form.FormSchema.Fields
	if len(fields) > s.memory.MaxFieldsPerForm {
		fields = fields[:s.memory.MaxFieldsPerForm]
	}
	views := make([]historyFieldView, 0, len(fields))
	for _, f := range fields {
		views = append(views, historyFieldView{
			Name:               f.Name,
			Label:              f.Label,
			Type:               string(f.Type),
			HasValidation:      f.Validation != nil,
			HasFileConstraints: f.FileConstraints != nil,
		})
	}
	return historySnippet{
		ID:      form.FormID,
		Purpose: form.Purpose,
		Title:   form.Title,
		Tags:    form.Tags,
		Fields:  views,
	}
}

// buildMemoryPrompt prepends serialized form history to the user's request
func buildMemoryPrompt(history []historySnippet, prompt string) string {
	payload, err := json.Marshal(history)
	if err != nil {
		return prompt
	}
	return "You are an intelligent form schema generator.\n" +
		"Here is relevant user form history for reference:\n" +
		string(payload) +
		"\n\nNow generate a new form schema for this request:\n" +
		prompt
}

// derivePurpose prefers the schema description, then the prompt, both capped
// at 120 characters
func derivePurpose(prompt string, schema models.FormSchema) string {
	if schema.Description != "" {
		return truncate(schema.Description, maxPurposeLength)
	}
	if prompt != "" {
		return truncate(prompt, maxPurposeLength)
	}
	return "Generated form"
}

// combinedEmbeddingText joins the searchable facets of a form into the text
// that gets embedded for later retrieval
func combinedEmbeddingText(prompt string, generated *models.GeneratedMeta) string {
	fieldParts := make([]string, 0, len(generated.Schema.Fields))
	for _, f := range generated.Schema.Fields {
		fieldParts = append(fieldParts, fmt.Sprintf("%s (%s)", f.Label, f.Type))
	}

	parts := []string{
		prompt,
		generated.Schema.Title,
		generated.Schema.Description,
		generated.Summary,
		strings.Join(generated.Tags, " "),
		strings.Join(fieldParts, ", "),
	}
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n")
}

// indexForm pushes a freshly created form's embedding to the external index.
// Runs detached from the request; failures are logged only.
func (s *FormService) indexForm(form *models.Form) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := s.index.Upsert(ctx, form.FormID, form.OwnerID, form.Embedding, vectorindex.Metadata{
		OwnerID: form.OwnerID,
		Title:   form.Title,
		Purpose: form.Purpose,
		Tags:    form.Tags,
	})
	if err != nil {
		slog.Warn("Vector index upsert failed", "formId", form.FormID, "error", err)
	}
}

// GetUserForms returns the owner's forms, newest first, each with its
// submission count
func (s *FormService) GetUserForms(ctx context.Context, ownerID string) ([]models.FormListItem, error) {
	var forms []models.Form
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&forms).Error
	if err != nil {
		return nil, apierrors.HandleDatabaseError(err, "Form", "list forms")
	}

	items := make([]models.FormListItem, 0, len(forms))
	for _, form := range forms {
		var count int64
		err := s.db.WithContext(ctx).
			Model(&models.Submission{}).
			Where("form_id = ?", form.FormID).
			Count(&count).Error
		if err != nil {
			return nil, apierrors.HandleDatabaseError(err, "Submission", "count submissions")
		}
		items = append(items, models.FormListItem{Form: form, SubmissionCount: count})
	}
	return items, nil
}

// GetFormByID fetches a single form. Public: anyone with the id can render
// the form to fill it in.
func (s *FormService) GetFormByID(ctx context.Context, formID string) (*models.Form, error) {
	var form models.Form
	err := s.db.WithContext(ctx).Where("form_id = ?", formID).First(&form).Error
	if err != nil {
		return nil, apierrors.HandleDatabaseError(err, "Form", "get form")
	}
	return &form, nil
}

// AttachReferenceMedia appends media URLs to a form the caller owns
func (s *FormService) AttachReferenceMedia(ctx context.Context, formID, callerID string, urls []string) (*models.Form, error) {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		if strings.TrimSpace(u) != "" {
			cleaned = append(cleaned, u)
		}
	}
	if len(cleaned) == 0 {
		return nil, apierrors.ValidationError("MEDIA_URL_REQUIRED", "At least one media URL is required")
	}

	form, err := s.GetFormByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form.OwnerID != callerID {
		return nil, apierrors.ForbiddenError("You do not own this form")
	}

	form.ReferenceMedia = append(form.ReferenceMedia, cleaned...)
	err = s.db.WithContext(ctx).
		Model(form).
		Update("reference_media", form.ReferenceMedia).Error
	if err != nil {
		return nil, apierrors.HandleDatabaseError(err, "Form", "attach reference media")
	}
	return form, nil
}
