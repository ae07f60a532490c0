// Package worker holds the asynq task handlers for background tagging and
// index maintenance.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"tagsmith/internal/llm"
	"tagsmith/internal/models"
	"tagsmith/internal/services"
	"tagsmith/internal/store"
	"tagsmith/internal/tasks"
)

// Deps bundles the services the handlers call into.
type Deps struct {
	Tagging  *services.TaggingService
	Index    *services.IndexService
	JobStore store.JobStore
}

// RegisterHandlers wires every task type onto the mux.
func RegisterHandlers(mux *asynq.ServeMux, deps Deps) {
	mux.HandleFunc(tasks.TypeTaggingJob, HandleTaggingJob(deps))
	mux.HandleFunc(tasks.TypeIndexRebuild, HandleIndexRebuild(deps))
}

// HandleTaggingJob tags one stored document. Classified provider errors are
// terminal: the policy is a single attempt per call, so they skip asynq's
// retry machinery.
func HandleTaggingJob(deps Deps) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload tasks.TaggingPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal tagging payload: %v: %w", err, asynq.SkipRetry)
		}

		jobID := taskJobID(task)
		markJob(ctx, deps.JobStore, jobID, models.JobStatusRunning)

		res, err := deps.Tagging.TagDocument(ctx, payload.DocumentID)
		if err != nil {
			recordFailure(ctx, deps.JobStore, jobID, err)
			var pe *llm.ProviderError
			if errors.As(err, &pe) {
				return fmt.Errorf("tag document %d: %v: %w", payload.DocumentID, err, asynq.SkipRetry)
			}
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("tag document %d: %v: %w", payload.DocumentID, err, asynq.SkipRetry)
			}
			return fmt.Errorf("tag document %d: %w", payload.DocumentID, err)
		}

		markJob(ctx, deps.JobStore, jobID, models.JobStatusCompleted)
		log.Infof("Worker tagged document %d with %d tags", payload.DocumentID, len(res.Tags))
		return nil
	}
}

// HandleIndexRebuild re-embeds the tag catalog into the embedding index.
func HandleIndexRebuild(deps Deps) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		jobID := taskJobID(task)
		markJob(ctx, deps.JobStore, jobID, models.JobStatusRunning)

		n, err := deps.Index.Rebuild(ctx)
		if err != nil {
			recordFailure(ctx, deps.JobStore, jobID, err)
			return fmt.Errorf("rebuild tag index: %w", err)
		}

		markJob(ctx, deps.JobStore, jobID, models.JobStatusCompleted)
		log.Infof("Worker rebuilt tag index with %d tags", n)
		return nil
	}
}

// taskJobID recovers the job row id from the asynq task id. Tasks enqueued
// outside the job client have no row; the zero UUID marks that.
func taskJobID(task *asynq.Task) uuid.UUID {
	rw := task.ResultWriter()
	if rw == nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(rw.TaskID())
	if err != nil {
		return uuid.Nil
	}
	return id
}

func markJob(ctx context.Context, js store.JobStore, jobID uuid.UUID, status string) {
	if js == nil || jobID == uuid.Nil {
		return
	}
	if err := js.UpdateJobStatus(ctx, jobID, status); err != nil {
		log.Warnf("Failed to update job %s to %s: %v", jobID, status, err)
	}
}

func recordFailure(ctx context.Context, js store.JobStore, jobID uuid.UUID, cause error) {
	if js == nil || jobID == uuid.Nil {
		return
	}
	if err := js.RecordJobFailure(ctx, jobID, cause.Error()); err != nil {
		log.Warnf("Failed to record failure for job %s: %v", jobID, err)
	}
}
