package models

// SignupRequest is the payload for POST /auth/signup
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}

// AuthResponse is returned from signup and login
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// GenerateFormRequest is the payload for POST /forms/generate
type GenerateFormRequest struct {
	Prompt string `json:"prompt"`
	// UseMemory defaults to true; only an explicit false disables retrieval
	UseMemory *bool `json:"useMemory,omitempty"`
}

// GenerateFormResponse is returned from POST /forms/generate
type GenerateFormResponse struct {
	Form   *Form            `json:"form"`
	Source GenerationSource `json:"source"`
}

// FormListItem is a form plus its submission count, for owner dashboards
type FormListItem struct {
	Form
	SubmissionCount int64 `json:"submissionCount"`
}

// AttachReferenceMediaRequest is the payload for POST /forms/{id}/reference-media
type AttachReferenceMediaRequest struct {
	URL  string   `json:"url,omitempty"`
	URLs []string `json:"urls,omitempty"`
}

// SubmitFormRequest is the payload for POST /forms/{id}/submit
type SubmitFormRequest struct {
	Responses ResponseMap `json:"responses"`
}

// SubmitFormResponse is returned from a successful submission
type SubmitFormResponse struct {
	Submission *Submission `json:"submission"`
}

// ValidationErrorResponse carries the field-keyed error map of a rejected
// submission
type ValidationErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

// UploadResponse is returned from POST /uploads/image
type UploadResponse struct {
	URL string `json:"url"`
}

// GeneratedMeta records the outcome of one schema generation, including the
// provenance of the result
type GeneratedMeta struct {
	Schema  FormSchema
	Summary string
	Tags    []string
	Source  GenerationSource
}
