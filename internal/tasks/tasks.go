package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Defines constants for task types used in Asynq.

const (
	// TypeTaggingJob is the task type for tagging a stored document.
	TypeTaggingJob = "tagging:document"
	// TypeIndexRebuild is the task type for rebuilding the tag embedding index.
	TypeIndexRebuild = "index:rebuild"
)

// TaggingPayload is the payload for TypeTaggingJob.
type TaggingPayload struct {
	DocumentID int64 `json:"document_id"`
}

// NewTaggingTask builds an Asynq task that tags the given document.
func NewTaggingTask(documentID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(TaggingPayload{DocumentID: documentID})
	if err != nil {
		return nil, fmt.Errorf("marshal tagging payload: %w", err)
	}
	return asynq.NewTask(TypeTaggingJob, payload), nil
}

// NewIndexRebuildTask builds an Asynq task that rebuilds the tag index.
func NewIndexRebuildTask() *asynq.Task {
	return asynq.NewTask(TypeIndexRebuild, nil)
}
