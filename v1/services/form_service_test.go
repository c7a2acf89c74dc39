package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/formforge/formforge-backend/ai/embedding"
	"github.com/formforge/formforge-backend/ai/vectorindex"
	"github.com/formforge/formforge-backend/config"
	"github.com/formforge/formforge-backend/monitoring"
	apierrors "github.com/formforge/formforge-backend/pkg/errors"
	"github.com/formforge/formforge-backend/v1/models"
)

func newTestFormService(t *testing.T, db *gorm.DB) *FormService {
	t.Helper()
	memory := config.MemoryConfig{TopK: 5, MaxFieldsPerForm: 20}
	return NewFormService(
		db,
		embedding.NewLocalEmbedder(),
		vectorindex.NewNoopIndex(),
		NewGeneratorService(nil),
		memory,
		monitoring.New(),
	)
}

func seedForm(t *testing.T, db *gorm.DB, formID, ownerID, title string, embeddingVec models.Vector) models.Form {
	t.Helper()
	form := models.Form{
		FormID:         formID,
		OwnerID:        ownerID,
		Title:          title,
		Purpose:        "Purpose of " + title,
		Tags:           models.StringSlice{"seeded"},
		ReferenceMedia: models.StringSlice{},
		FormSchema: models.FormSchema{
			Title: title,
			Fields: []models.FormField{
				{Name: "email", Label: "Email", Type: models.FieldTypeEmail},
			},
		},
		Embedding: embeddingVec,
	}
	require.NoError(t, db.Create(&form).Error)
	return form
}

func TestCreateFormFallbackRoundTrip(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	svc := newTestFormService(t, db)

	form, source, err := svc.CreateForm(context.Background(), "usr_owner", "Collect customer feedback", true)
	require.NoError(t, err)

	assert.Equal(t, models.GenerationSourceFallback, source)
	assert.True(t, strings.HasPrefix(form.FormID, "form_"))
	assert.Equal(t, "usr_owner", form.OwnerID)
	assert.Equal(t, "Custom Form", form.Title)
	assert.Len(t, form.FormSchema.Fields, 4)
	assert.Len(t, form.Embedding, embedding.LocalDimension)
	require.NotNil(t, form.Summary)
	assert.NotEmpty(t, *form.Summary)
	assert.Contains(t, form.Tags, "feedback")

	var stored models.Form
	require.NoError(t, db.Where("form_id = ?", form.FormID).First(&stored).Error)
	assert.Equal(t, form.Title, stored.Title)
	assert.Len(t, stored.FormSchema.Fields, 4)
	assert.Len(t, stored.Embedding, embedding.LocalDimension)
}

func TestCreateFormRejectsEmptyPrompt(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	svc := newTestFormService(t, db)

	_, _, err := svc.CreateForm(context.Background(), "usr_owner", "   ", true)
	require.Error(t, err)

	apiErr := apierrors.GetAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, apierrors.ErrorTypeValidation, apiErr.Type)
}

func TestCreateFormWithoutMemorySkipsEmbeddingLookup(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	svc := newTestFormService(t, db)

	form, source, err := svc.CreateForm(context.Background(), "usr_owner", "Vendor onboarding", false)
	require.NoError(t, err)
	assert.Equal(t, models.GenerationSourceFallback, source)
	// The form itself is still embedded for future retrieval
	assert.Len(t, form.Embedding, embedding.LocalDimension)
}

func TestRetrieveHistoryRanksOwnerFormsLocally(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	svc := newTestFormService(t, db)
	ctx := context.Background()

	embedder := embedding.NewLocalEmbedder()
	queryVec, err := embedder.Embed(ctx, "customer feedback survey")
	require.NoError(t, err)
	farVec, err := embedder.Embed(ctx, "zzzz unrelated warehouse inventory")
	require.NoError(t, err)

	// An identical embedding always outranks any other candidate
	seedForm(t, db, "form_close", "usr_owner", "Feedback", models.Vector(queryVec))
	seedForm(t, db, "form_far", "usr_owner", "Inventory", models.Vector(farVec))
	// Another owner's forms and embedding-less forms never appear
	seedForm(t, db, "form_other", "usr_other", "Other", models.Vector(queryVec))
	seedForm(t, db, "form_empty", "usr_owner", "Empty", models.Vector{})

	history := svc.retrieveHistory(ctx, "usr_owner", queryVec)

	require.Len(t, history, 2)
	assert.Equal(t, "form_close", history[0].ID)
	assert.Equal(t, "form_far", history[1].ID)
}

func TestSnippetFromFormCapsFields(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	svc := newTestFormService(t, db)

	fields := make([]models.FormField, 30)
	for i := range fields {
		fields[i] = models.FormField{Name: "field", Label: "Field", Type: models.FieldTypeText}
	}
	form := models.Form{
		FormID:     "form_wide",
		Purpose:    "Wide form",
		Title:      "Wide",
		Tags:       models.StringSlice{},
		FormSchema: models.FormSchema{Fields: fields},
	}

	snippet := svc.snippetFromForm(form)
	assert.Len(t, snippet.Fields, 20)
}

func TestBuildMemoryPromptShape(t *testing.T) {
	history := []historySnippet{
		{ID: "form_1", Title: "Feedback", Purpose: "Collect feedback", Tags: []string{"feedback"}},
	}

	prompt := buildMemoryPrompt(history, "Make a survey")

	assert.True(t, strings.HasPrefix(prompt, "You are an intelligent form schema generator.\n"))
	assert.Contains(t, prompt, `"form_1"`)
	assert.True(t, strings.HasSuffix(prompt, "Now generate a new form schema for this request:\nMake a survey"))
}

func TestGetUserFormsIncludesSubmissionCounts(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	svc := newTestFormService(t, db)
	ctx := context.Background()

	form := seedForm(t, db, "form_counted", "usr_owner", "Counted", models.Vector{})
	seedForm(t, db, "form_quiet", "usr_owner", "Quiet", models.Vector{})

	for _, id := range []string{"sub_1", "sub_2"} {
		require.NoError(t, db.Create(&models.Submission{
			SubmissionID: id,
			FormID:       form.FormID,
			OwnerID:      form.OwnerID,
			Responses:    models.ResponseMap{},
		}).Error)
	}

	items, err := svc.GetUserForms(ctx, "usr_owner")
	require.NoError(t, err)
	require.Len(t, items, 2)

	counts := map[string]int64{}
	for _, item := range items {
		counts[item.FormID] = item.SubmissionCount
	}
	assert.Equal(t, int64(2), counts["form_counted"])
	assert.Equal(t, int64(0), counts["form_quiet"])
}

func TestGetFormByIDNotFound(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	svc := newTestFormService(t, db)

	_, err := svc.GetFormByID(context.Background(), "form_missing")
	require.Error(t, err)

	apiErr := apierrors.GetAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, apierrors.ErrorTypeNotFound, apiErr.Type)
}

func TestAttachReferenceMedia(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	svc := newTestFormService(t, db)
	ctx := context.Background()

	seedForm(t, db, "form_media", "usr_owner", "Media", models.Vector{})

	form, err := svc.AttachReferenceMedia(ctx, "form_media", "usr_owner", []string{
		"https://cdn.example.com/a.png",
		"  ",
		"https://cdn.example.com/b.png",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StringSlice{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"}, form.ReferenceMedia)

	var stored models.Form
	require.NoError(t, db.Where("form_id = ?", "form_media").First(&stored).Error)
	assert.Len(t, stored.ReferenceMedia, 2)
}

func TestAttachReferenceMediaForbiddenForNonOwner(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	svc := newTestFormService(t, db)

	seedForm(t, db, "form_media", "usr_owner", "Media", models.Vector{})

	_, err := svc.AttachReferenceMedia(context.Background(), "form_media", "usr_intruder", []string{"https://cdn.example.com/a.png"})
	require.Error(t, err)

	apiErr := apierrors.GetAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, apierrors.ErrorTypeForbidden, apiErr.Type)
}

func TestAttachReferenceMediaRequiresURLs(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	svc := newTestFormService(t, db)

	seedForm(t, db, "form_media", "usr_owner", "Media", models.Vector{})

	_, err := svc.AttachReferenceMedia(context.Background(), "form_media", "usr_owner", []string{"   "})
	require.Error(t, err)

	apiErr := apierrors.GetAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, apierrors.ErrorTypeValidation, apiErr.Type)
}
