package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Recording is one persisted session: a transcript plus its derived
// assessment. Records are created once and never updated or deleted.
type Recording struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Transcript       string     `gorm:"type:text;not null" json:"transcript"`
	Sentiment        string     `gorm:"size:50" json:"sentiment"`
	SentimentScore   *float64   `json:"sentiment_score"`
	ReadabilityScore *float64   `json:"readability_score"`
	ConfidenceScore  *float64   `json:"confidence_score"`
	OverallScore     *float64   `json:"overall_score"`
	Summary          string     `gorm:"type:text" json:"summary"`
	Suggestions      StringList `gorm:"type:json" json:"suggestions"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for Recording.
func (Recording) TableName() string { return "recordings" }

// StringList stores an ordered list of strings as a JSON column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = StringList{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan string list: unsupported type %T", src)
	}

	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(data, l)
}
