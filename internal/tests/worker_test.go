package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsmith/internal/llm"
	"tagsmith/internal/models"
	"tagsmith/internal/tasks"
	"tagsmith/internal/worker"
	"tagsmith/pkg/tagger"
)

func TestHandleTaggingJob(t *testing.T) {
	a := newTestApp(t)
	useStubSuggester(a, &stubSuggester{res: &tagger.Result{
		Tags:     []string{"#ops", "#runbooks"},
		Existing: []string{"#ops"},
		New:      []string{"#runbooks"},
	}})

	ctx := context.Background()
	doc := &models.Document{Title: "Pager notes", Body: "Escalation order for the on-call rotation."}
	require.NoError(t, a.DocumentStore.CreateDocument(ctx, doc))

	task, err := tasks.NewTaggingTask(doc.ID)
	require.NoError(t, err)

	handler := worker.HandleTaggingJob(worker.Deps{
		Tagging:  a.TaggingService,
		Index:    a.IndexService,
		JobStore: a.JobStore,
	})
	require.NoError(t, handler(ctx, task))

	stored, err := a.DocumentStore.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.TaggedAt)

	tags, err := a.TagStore.GetDocumentTags(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestHandleTaggingJobProviderErrorSkipsRetry(t *testing.T) {
	a := newTestApp(t)
	useStubSuggester(a, &stubSuggester{
		err: llm.Classify(errors.New("The server had an error while processing your request"), false),
	})

	ctx := context.Background()
	doc := &models.Document{Title: "Doc", Body: "Body text."}
	require.NoError(t, a.DocumentStore.CreateDocument(ctx, doc))

	task, err := tasks.NewTaggingTask(doc.ID)
	require.NoError(t, err)

	handler := worker.HandleTaggingJob(worker.Deps{
		Tagging:  a.TaggingService,
		JobStore: a.JobStore,
	})
	err = handler(ctx, task)
	require.Error(t, err)
	// Classified failures are terminal: one attempt, no queue retries.
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleTaggingJobMissingDocument(t *testing.T) {
	a := newTestApp(t)
	useStubSuggester(a, &stubSuggester{res: &tagger.Result{}})

	task, err := tasks.NewTaggingTask(424242)
	require.NoError(t, err)

	handler := worker.HandleTaggingJob(worker.Deps{
		Tagging:  a.TaggingService,
		JobStore: a.JobStore,
	})
	err = handler(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleIndexRebuildDisabled(t *testing.T) {
	a := newTestApp(t)

	handler := worker.HandleIndexRebuild(worker.Deps{
		Index:    a.IndexService,
		JobStore: a.JobStore,
	})
	// With the index disabled the rebuild is a no-op, not a failure.
	require.NoError(t, handler(context.Background(), tasks.NewIndexRebuildTask()))
}
