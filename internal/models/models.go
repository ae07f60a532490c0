package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Document is a unit of text registered for tagging.
type Document struct {
	ID          int64      `db:"id"`
	Title       string     `db:"title"`
	Body        string     `db:"body"`
	Source      string     `db:"source"` // file path, URL, or "stdin"
	ContentType string     `db:"content_type"`
	ContentHash string     `db:"content_hash"`
	TaggedAt    *time.Time `db:"tagged_at"` // nullable, set once tags have been applied
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type Tag struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"` // normalized, carries the '#' marker
	CreatedAt time.Time `db:"created_at"`
}

// TagOrigin records where a document/tag link came from.
type TagOrigin string

const (
	TagOriginExisting TagOrigin = "existing" // model reused a catalog tag
	TagOriginNew      TagOrigin = "new"      // model proposed a fresh tag
	TagOriginManual   TagOrigin = "manual"   // user applied it by hand
)

type DocumentTag struct {
	DocumentID int64     `db:"document_id"`
	TagID      int64     `db:"tag_id"`
	Origin     TagOrigin `db:"origin"`
	CreatedAt  time.Time `db:"created_at"`
}

// TagCount pairs a tag with how many documents carry it.
type TagCount struct {
	Tag   Tag
	Count int64
}

// UsageRecord is one remote model call, for cost accounting.
type UsageRecord struct {
	ID           uuid.UUID `db:"id"`
	Provider     string    `db:"provider"`
	Model        string    `db:"model"`
	Operation    string    `db:"operation"` // "tagging", "embedding"
	InputTokens  int       `db:"input_tokens"`
	OutputTokens int       `db:"output_tokens"`
	CostUSD      float64   `db:"cost_usd"`
	CreatedAt    time.Time `db:"created_at"`
}

// BackgroundJob mirrors the jobs table schema.
type BackgroundJob struct {
	ID        uuid.UUID       `db:"id"` // asynq task ID
	TaskType  string          `db:"task_type"`
	Payload   json.RawMessage `db:"payload"`
	Queue     string          `db:"queue"`
	Status    string          `db:"status"`
	LastError *string         `db:"last_error"` // nullable
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}
