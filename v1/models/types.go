package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValidationRule holds the declarative validation constraints of a field.
// Optionals are pointers so an explicit false/zero in model output survives
// normalization and is distinguishable from "not set".
type ValidationRule struct {
	Required  *bool          `json:"required,omitempty"`
	MinLength *int           `json:"minLength,omitempty"`
	MaxLength *int           `json:"maxLength,omitempty"`
	Min       *float64       `json:"min,omitempty"`
	Max       *float64       `json:"max,omitempty"`
	Pattern   string         `json:"pattern,omitempty"`
	Type      ValidationType `json:"type,omitempty"`
}

// FileConstraints bounds file-typed fields
type FileConstraints struct {
	MaxSizeMB        *float64 `json:"maxSizeMB,omitempty"`
	AllowedMimeTypes []string `json:"allowedMimeTypes,omitempty"`
}

// FormField is a single field of a form schema
type FormField struct {
	Name            string           `json:"name"`
	Label           string           `json:"label"`
	Type            FieldType        `json:"type"`
	Placeholder     string           `json:"placeholder,omitempty"`
	Options         []string         `json:"options,omitempty"`
	Validation      *ValidationRule  `json:"validation,omitempty"`
	FileConstraints *FileConstraints `json:"fileConstraints,omitempty"`
}

// FormSchema is the declarative description of a form. Field names are unique
// within a schema once the normalizer has run; raw model output makes no such
// guarantee.
type FormSchema struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Fields      []FormField `json:"fields"`
}

// Scan implements the sql.Scanner interface for FormSchema
func (fs *FormSchema) Scan(value interface{}) error {
	if value == nil {
		*fs = FormSchema{}
		return nil
	}
	bytes, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into FormSchema", value)
	}
	return json.Unmarshal(bytes, fs)
}

// Value implements the driver.Valuer interface for FormSchema
func (fs FormSchema) Value() (driver.Value, error) {
	return json.Marshal(fs)
}

// GormDataType gorm common data type
func (FormSchema) GormDataType() string {
	return "jsonb"
}

// GormValue implements the GormValuerInterface
func (fs FormSchema) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	return jsonExpr(db, fs)
}

// StringSlice is a JSON-backed []string column (tags, reference media)
type StringSlice []string

// Scan implements the sql.Scanner interface for StringSlice
func (ss *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*ss = StringSlice{}
		return nil
	}
	bytes, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
	return json.Unmarshal(bytes, ss)
}

// Value implements the driver.Valuer interface for StringSlice
func (ss StringSlice) Value() (driver.Value, error) {
	if ss == nil {
		ss = StringSlice{}
	}
	return json.Marshal(ss)
}

// GormDataType gorm common data type
func (StringSlice) GormDataType() string {
	return "jsonb"
}

// GormValue implements the GormValuerInterface
func (ss StringSlice) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	if ss == nil {
		ss = StringSlice{}
	}
	return jsonExpr(db, ss)
}

// Vector is a JSON-backed []float64 column (embedding vectors). An empty
// vector marks a form whose embedding generation failed.
type Vector []float64

// Scan implements the sql.Scanner interface for Vector
func (v *Vector) Scan(value interface{}) error {
	if value == nil {
		*v = Vector{}
		return nil
	}
	bytes, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into Vector", value)
	}
	return json.Unmarshal(bytes, v)
}

// Value implements the driver.Valuer interface for Vector
func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		v = Vector{}
	}
	return json.Marshal(v)
}

// GormDataType gorm common data type
func (Vector) GormDataType() string {
	return "jsonb"
}

// GormValue implements the GormValuerInterface
func (v Vector) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	if v == nil {
		v = Vector{}
	}
	return jsonExpr(db, v)
}

// ResponseMap is a JSON-backed map of field name to submitted value
type ResponseMap map[string]interface{}

// Scan implements the sql.Scanner interface for ResponseMap
func (rm *ResponseMap) Scan(value interface{}) error {
	if value == nil {
		*rm = ResponseMap{}
		return nil
	}
	bytes, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into ResponseMap", value)
	}
	return json.Unmarshal(bytes, rm)
}

// Value implements the driver.Valuer interface for ResponseMap
func (rm ResponseMap) Value() (driver.Value, error) {
	if rm == nil {
		rm = ResponseMap{}
	}
	return json.Marshal(rm)
}

// GormDataType gorm common data type
func (ResponseMap) GormDataType() string {
	return "jsonb"
}

// GormValue implements the GormValuerInterface
func (rm ResponseMap) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	if rm == nil {
		rm = ResponseMap{}
	}
	return jsonExpr(db, rm)
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}

// jsonExpr marshals v for the active dialect. SQLite stores JSON as TEXT,
// PostgreSQL wants an explicit jsonb cast.
func jsonExpr(db *gorm.DB, v interface{}) clause.Expr {
	data, err := json.Marshal(v)
	if err != nil {
		// Marshaling of these column types should never fail; panic instead of
		// silently persisting corrupt data
		panic(fmt.Sprintf("Failed to marshal JSON column: %v", err))
	}

	sqlExpr := "?::jsonb"
	if db.Dialector.Name() == "sqlite" {
		sqlExpr = "?"
	}
	return clause.Expr{
		SQL:  sqlExpr,
		Vars: []interface{}{string(data)},
	}
}
