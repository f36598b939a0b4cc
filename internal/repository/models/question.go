package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONMap stores a flat string map as a jsonb column.
type JSONMap map[string]string

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", src)
	}
	return json.Unmarshal(data, m)
}

// Question represents a row of the questions table.
type Question struct {
	ID              int64          `db:"id"`
	UserID          int64          `db:"user_id"`
	Subject         string         `db:"subject"`
	Grade           sql.NullString `db:"grade"`
	QuestionText    string         `db:"question_text"`
	ImageURL        sql.NullString `db:"image_url"`
	ImageSnippetURL sql.NullString `db:"image_snippet_url"`
	Explanation     sql.NullString `db:"explanation"`
	Status          string         `db:"status"`
	VectorID        sql.NullString `db:"vector_id"`
	Metadata        JSONMap        `db:"metadata"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// UploadHistory represents a row of the upload_history table.
type UploadHistory struct {
	ID                 int64          `db:"id"`
	UserID             int64          `db:"user_id"`
	Filename           string         `db:"filename"`
	Subject            string         `db:"subject"`
	QuestionsExtracted int            `db:"questions_extracted"`
	Status             string         `db:"status"`
	ErrorMessage       sql.NullString `db:"error_message"`
	CreatedAt          time.Time      `db:"created_at"`
}
