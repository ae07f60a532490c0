package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/pgvector/pgvector-go"

	"tagsmith/internal/models"
)

// --- Job Client ---

type JobClient interface {
	// Enqueue records the task to the JobStore alongside enqueueing it.
	Enqueue(ctx context.Context, task *asynq.Task, relatedEntityType string, relatedEntityID int64, opts ...asynq.Option) (*asynq.TaskInfo, error)
	EnqueueTaggingJob(ctx context.Context, documentID int64) error
	EnqueueIndexRebuild(ctx context.Context) error
	Close() error
}

// --- Document Store ---

type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id int64) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id int64) error
	ListDocuments(ctx context.Context, limit, offset int, filterTags []string) ([]*models.Document, error)
	ListUntagged(ctx context.Context, limit int) ([]*models.Document, error)
	FindDocumentByHash(ctx context.Context, hash string) (*models.Document, error)
	MarkTagged(ctx context.Context, id int64, at time.Time) error

	Ping(ctx context.Context) error
}

// --- Tag Store ---

// TagAssignment links one tag name to its origin for a document.
type TagAssignment struct {
	Name   string
	Origin models.TagOrigin
}

type TagStore interface {
	GetOrCreateTags(ctx context.Context, names []string) ([]*models.Tag, error)
	GetTagByName(ctx context.Context, name string) (*models.Tag, error)
	ListTagNames(ctx context.Context) ([]string, error)
	ListTagCounts(ctx context.Context, limit, offset int) ([]models.TagCount, error)
	RenameTag(ctx context.Context, from, to string) error
	DeleteTag(ctx context.Context, name string) error
	AssignTags(ctx context.Context, documentID int64, assignments []TagAssignment) error
	RemoveTagFromDocument(ctx context.Context, documentID, tagID int64) error
	GetDocumentTags(ctx context.Context, documentID int64) ([]*models.Tag, error)
	GetTagsForDocuments(ctx context.Context, documentIDs []int64) (map[int64][]*models.Tag, error)
}

// --- Usage Store ---

type UsageStore interface {
	RecordUsage(ctx context.Context, rec *models.UsageRecord) error
	ListUsage(ctx context.Context, limit, offset int) ([]*models.UsageRecord, error)
	UsageSummary(ctx context.Context) (totalCost float64, totalInputTokens, totalOutputTokens int64, err error)
}

// --- Job Store ---

// JobRecordParams holds parameters for recording a job event.
type JobRecordParams struct {
	JobID             uuid.UUID
	TaskType          string
	Payload           []byte
	Queue             string
	Status            string
	RelatedEntityType string // Optional: e.g., "document"
	RelatedEntityID   int64  // Optional: e.g., document.ID
}

type JobStore interface {
	RecordJobEnqueue(ctx context.Context, params JobRecordParams) error
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error
	RecordJobFailure(ctx context.Context, jobID uuid.UUID, message string) error
	ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error)
}

// --- Tag Index ---

// TagMatch is one catalog tag returned from a similarity lookup.
type TagMatch struct {
	Name     string
	Distance float64
}

// TagEntry pairs a tag name with its embedding for bulk index loads.
type TagEntry struct {
	Name      string
	Embedding pgvector.Vector
}

// TagIndex is the optional embedding index over catalog tags. It routes a
// freshly proposed tag onto a near-duplicate the catalog already has.
type TagIndex interface {
	IndexTag(ctx context.Context, name string, embedding pgvector.Vector) error
	RemoveTag(ctx context.Context, name string) error
	SimilarTags(ctx context.Context, embedding pgvector.Vector, k int) ([]TagMatch, error)
	Rebuild(ctx context.Context, entries []TagEntry) error

	Ping(ctx context.Context) error
	Close() error
}
