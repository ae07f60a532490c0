package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"tagsmith/internal/models"
	"tagsmith/internal/tasks"
)

// AsynqJobClient enqueues background tasks over Redis and records each
// enqueue event to the JobStore.
type AsynqJobClient struct {
	client   *asynq.Client
	jobStore JobStore
}

func NewAsynqJobClient(redisOpt asynq.RedisClientOpt, js JobStore) (*AsynqJobClient, error) {
	if js == nil {
		return nil, fmt.Errorf("job store cannot be nil")
	}
	return &AsynqJobClient{
		client:   asynq.NewClient(redisOpt),
		jobStore: js,
	}, nil
}

func (jc *AsynqJobClient) Close() error {
	return jc.client.Close()
}

// Enqueue enqueues a task and records the event to the JobStore. A failed
// record does not fail the enqueue; the task is already queued at that point.
func (jc *AsynqJobClient) Enqueue(ctx context.Context, task *asynq.Task, relatedEntityType string, relatedEntityID int64, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	info, err := jc.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return nil, fmt.Errorf("enqueue task %q: %w", task.Type(), err)
	}
	log.Debugf("Enqueued task %q id=%s queue=%s", task.Type(), info.ID, info.Queue)

	jobID, err := uuid.Parse(info.ID)
	if err != nil {
		log.Errorf("Failed to parse task ID %q as UUID, job record skipped: %v", info.ID, err)
		return info, nil
	}

	params := JobRecordParams{
		JobID:             jobID,
		TaskType:          task.Type(),
		Payload:           task.Payload(),
		Queue:             info.Queue,
		Status:            models.JobStatusEnqueued,
		RelatedEntityType: relatedEntityType,
		RelatedEntityID:   relatedEntityID,
	}
	if err := jc.jobStore.RecordJobEnqueue(ctx, params); err != nil {
		log.Errorf("Failed to record enqueue of task %s: %v", info.ID, err)
	}

	return info, nil
}

func (jc *AsynqJobClient) EnqueueTaggingJob(ctx context.Context, documentID int64) error {
	task, err := tasks.NewTaggingTask(documentID)
	if err != nil {
		return err
	}
	if _, err := jc.Enqueue(ctx, task, "document", documentID, asynq.Queue("tagging")); err != nil {
		return fmt.Errorf("enqueue tagging job for document %d: %w", documentID, err)
	}
	return nil
}

func (jc *AsynqJobClient) EnqueueIndexRebuild(ctx context.Context) error {
	task := tasks.NewIndexRebuildTask()
	if _, err := jc.Enqueue(ctx, task, "", 0, asynq.Queue("index")); err != nil {
		return fmt.Errorf("enqueue index rebuild: %w", err)
	}
	return nil
}

// Ensure AsynqJobClient satisfies the JobClient interface.
var _ JobClient = (*AsynqJobClient)(nil)
