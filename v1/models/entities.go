package models

// User represents the users table
type User struct {
	UserID       string `gorm:"primarykey;column:user_id" json:"userId"`
	Email        string `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	BaseModel
}

// TableName sets the table name for GORM
func (User) TableName() string {
	return "users"
}

// Form represents the forms table. The embedded schema and the embedding
// vector are owned exclusively by the form; the form is only ever mutated to
// append reference media or backfill an embedding.
type Form struct {
	FormID         string      `gorm:"primarykey;column:form_id" json:"formId"`
	OwnerID        string      `gorm:"column:owner_id;not null;index" json:"ownerId"`
	Title          string      `gorm:"column:title;not null" json:"title"`
	Purpose        string      `gorm:"column:purpose;not null" json:"purpose"`
	Summary        *string     `gorm:"column:summary" json:"summary,omitempty"`
	Tags           StringSlice `gorm:"column:tags;not null" json:"tags"`
	ReferenceMedia StringSlice `gorm:"column:reference_media;not null" json:"referenceMedia"`
	FormSchema     FormSchema  `gorm:"column:form_schema;not null" json:"schema"`
	Embedding      Vector      `gorm:"column:embedding;not null" json:"embedding"`
	BaseModel

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;references:UserID" json:"-"`
}

// TableName sets the table name for GORM
func (Form) TableName() string {
	return "forms"
}

// Submission represents the submissions table. OwnerID is the form owner, not
// the respondent; submissions are listed per owner. Immutable after creation.
type Submission struct {
	SubmissionID string      `gorm:"primarykey;column:submission_id" json:"submissionId"`
	FormID       string      `gorm:"column:form_id;not null;index" json:"formId"`
	OwnerID      string      `gorm:"column:owner_id;not null;index" json:"ownerId"`
	Responses    ResponseMap `gorm:"column:responses;not null" json:"responses"`
	BaseModel

	// Relationships
	Form Form `gorm:"foreignKey:FormID;references:FormID" json:"-"`
}

// TableName sets the table name for GORM
func (Submission) TableName() string {
	return "submissions"
}

// Media represents the media table, one row per uploaded asset
type Media struct {
	MediaID    string  `gorm:"primarykey;column:media_id" json:"mediaId"`
	URL        string  `gorm:"column:url;not null" json:"url"`
	UploadedBy *string `gorm:"column:uploaded_by" json:"uploadedBy,omitempty"`
	Context    string  `gorm:"column:context;not null" json:"context"`
	BaseModel
}

// TableName sets the table name for GORM
func (Media) TableName() string {
	return "media"
}
