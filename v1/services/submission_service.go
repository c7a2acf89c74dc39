package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/formforge/formforge-backend/monitoring"
	apierrors "github.com/formforge/formforge-backend/pkg/errors"
	"github.com/formforge/formforge-backend/v1/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateResponses checks responses against the schema's field rules and
// returns a field-name-keyed error map. An empty map means the submission is
// acceptable. A value that fails email or number coercion ends that field's
// checks immediately; among the remaining rules, later ones overwrite earlier
// ones, so at most one message per field survives.
func ValidateResponses(schema models.FormSchema, responses models.ResponseMap) map[string]string {
	errs := make(map[string]string)

	for _, field := range schema.Fields {
		value, present := responses[field.Name]
		required := field.Validation != nil && field.Validation.Required != nil && *field.Validation.Required

		if isEmptyValue(value) || !present {
			if required {
				errs[field.Name] = "This field is required"
			}
			continue
		}

		if field.Type == models.FieldTypeFile {
			validateFileResponse(field, value, errs)
			continue
		}

		wantsEmail := field.Type == models.FieldTypeEmail ||
			(field.Validation != nil && field.Validation.Type == models.ValidationTypeEmail)
		if wantsEmail {
			if str, ok := value.(string); !ok || !emailPattern.MatchString(str) {
				// A broken email invalidates the field outright; later rules
				// must not overwrite this message
				errs[field.Name] = "Invalid email format"
				continue
			}
		}

		wantsNumber := field.Type == models.FieldTypeNumber ||
			(field.Validation != nil && field.Validation.Type == models.ValidationTypeNumber)
		if wantsNumber {
			num, ok := numericValue(value)
			if !ok {
				// Same: a value that is not a number gets exactly this message
				errs[field.Name] = "Must be a number"
				continue
			}
			if field.Validation != nil {
				if field.Validation.Min != nil && num < *field.Validation.Min {
					errs[field.Name] = fmt.Sprintf("Must be at least %v", *field.Validation.Min)
				}
				if field.Validation.Max != nil && num > *field.Validation.Max {
					errs[field.Name] = fmt.Sprintf("Must be at most %v", *field.Validation.Max)
				}
			}
		}

		if field.Validation != nil {
			str, isString := value.(string)
			if !isString && isTextLike(field.Type) {
				str = fmt.Sprint(value)
				isString = true
			}
			if isString {
				if field.Validation.MinLength != nil && len(str) < *field.Validation.MinLength {
					errs[field.Name] = fmt.Sprintf("Minimum length is %d", *field.Validation.MinLength)
				}
				if field.Validation.MaxLength != nil && len(str) > *field.Validation.MaxLength {
					errs[field.Name] = fmt.Sprintf("Maximum length is %d", *field.Validation.MaxLength)
				}
				if field.Validation.Pattern != "" {
					// Malformed patterns are skipped rather than failing the
					// whole submission
					if re, err := regexp.Compile(field.Validation.Pattern); err == nil && !re.MatchString(str) {
						errs[field.Name] = "Invalid format"
					}
				}
			}
		}
	}

	return errs
}

// validateFileResponse checks a file field's URL value against its mime
// constraints. The type check is approximate: it looks for the mime subtype in
// the URL path, since the binary itself was uploaded elsewhere.
func validateFileResponse(field models.FormField, value interface{}, errs map[string]string) {
	url, ok := value.(string)
	if !ok || strings.TrimSpace(url) == "" {
		errs[field.Name] = "File URL is required"
		return
	}
	if field.FileConstraints == nil || len(field.FileConstraints.AllowedMimeTypes) == 0 {
		return
	}

	path := url
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	path = strings.ToLower(path)

	for _, mime := range field.FileConstraints.AllowedMimeTypes {
		subtype := mime
		if idx := strings.Index(mime, "/"); idx >= 0 {
			subtype = mime[idx+1:]
		}
		if subtype != "" && strings.Contains(path, strings.ToLower(subtype)) {
			return
		}
	}
	errs[field.Name] = "File type not allowed"
}

// isTextLike reports whether a field's value is rendered as free text, in
// which case non-string JSON values are stringified before length and pattern
// checks rather than skipped.
func isTextLike(fieldType models.FieldType) bool {
	return fieldType == models.FieldTypeText || fieldType == models.FieldTypeTextarea
}

func isEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []interface{}:
		return len(v) == 0
	default:
		return false
	}
}

func numericValue(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		num, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return num, err == nil
	default:
		return 0, false
	}
}

// SubmissionService accepts and lists form submissions
type SubmissionService struct {
	db      *gorm.DB
	metrics *monitoring.Metrics
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(db *gorm.DB, metrics *monitoring.Metrics) *SubmissionService {
	return &SubmissionService{db: db, metrics: metrics}
}

// CreateSubmission validates responses against the form's schema and persists
// them. Returns the validation error map when the responses are rejected;
// callers translate a non-empty map to a 400.
func (s *SubmissionService) CreateSubmission(ctx context.Context, formID string, responses models.ResponseMap) (*models.Submission, map[string]string, error) {
	var form models.Form
	if err := s.db.WithContext(ctx).Where("form_id = ?", formID).First(&form).Error; err != nil {
		return nil, nil, apierrors.HandleDatabaseError(err, "Form", "get form")
	}

	if fieldErrors := ValidateResponses(form.FormSchema, responses); len(fieldErrors) > 0 {
		s.metrics.SubmissionsFailed.Inc()
		return nil, fieldErrors, nil
	}

	if responses == nil {
		responses = models.ResponseMap{}
	}
	submission := &models.Submission{
		SubmissionID: "sub_" + uuid.New().String(),
		FormID:       form.FormID,
		// Submissions are attributed to the form owner, not the respondent
		OwnerID:   form.OwnerID,
		Responses: responses,
	}
	if err := s.db.WithContext(ctx).Create(submission).Error; err != nil {
		return nil, nil, apierrors.HandleDatabaseError(err, "Submission", "create submission")
	}

	s.metrics.SubmissionsTotal.Inc()
	return submission, nil, nil
}

// GetSubmissionsByForm lists a form's submissions, newest first. Only the form
// owner may read them.
func (s *SubmissionService) GetSubmissionsByForm(ctx context.Context, formID, callerID string) ([]models.Submission, error) {
	var form models.Form
	if err := s.db.WithContext(ctx).Where("form_id = ?", formID).First(&form).Error; err != nil {
		return nil, apierrors.HandleDatabaseError(err, "Form", "get form")
	}
	if form.OwnerID != callerID {
		return nil, apierrors.ForbiddenError("You do not own this form")
	}

	var submissions []models.Submission
	err := s.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("created_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, apierrors.HandleDatabaseError(err, "Submission", "list submissions")
	}
	return submissions, nil
}
