package services

import (
	"context"
	"fmt"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"tagsmith/internal/models"
	"tagsmith/internal/store"
)

// BatchService tags the untagged backlog, either inline with bounded
// parallelism or by handing documents to the queue worker.
type BatchService struct {
	docs        store.DocumentStore
	tagging     *TaggingService
	jobs        store.JobStore
	jobClient   store.JobClient
	parallelism int
}

func NewBatchService(ds store.DocumentStore, ts *TaggingService, js store.JobStore, jc store.JobClient, parallelism int) *BatchService {
	if parallelism <= 0 {
		parallelism = 4
	}
	return &BatchService{
		docs:        ds,
		tagging:     ts,
		jobs:        js,
		jobClient:   jc,
		parallelism: parallelism,
	}
}

// BatchResult counts the outcome of one inline batch run.
type BatchResult struct {
	Tagged int
	Failed int
}

// TagUntagged tags every untagged document inline. Documents run
// concurrently up to the configured parallelism; a per-document failure is
// logged and counted, never retried, and does not stop the batch. Only a
// cancelled context aborts the run.
func (s *BatchService) TagUntagged(ctx context.Context, limit int) (BatchResult, error) {
	docs, err := s.docs.ListUntagged(ctx, limit)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list untagged documents: %w", err)
	}
	if len(docs) == 0 {
		return BatchResult{}, nil
	}

	var tagged, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := s.tagging.TagDocument(gctx, doc.ID); err != nil {
				log.Warnf("Batch tagging failed for document %d (%q): %v", doc.ID, doc.Title, err)
				failed.Add(1)
				return nil
			}
			tagged.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BatchResult{Tagged: int(tagged.Load()), Failed: int(failed.Load())}, err
	}
	return BatchResult{Tagged: int(tagged.Load()), Failed: int(failed.Load())}, nil
}

// EnqueueUntagged queues a tagging job per untagged document instead of
// tagging inline. Returns how many jobs were queued.
func (s *BatchService) EnqueueUntagged(ctx context.Context, limit int) (int, error) {
	if s.jobClient == nil {
		return 0, fmt.Errorf("job client is not configured")
	}
	docs, err := s.docs.ListUntagged(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list untagged documents: %w", err)
	}

	queued := 0
	for _, doc := range docs {
		if err := s.jobClient.EnqueueTaggingJob(ctx, doc.ID); err != nil {
			return queued, fmt.Errorf("enqueue document %d: %w", doc.ID, err)
		}
		queued++
	}
	return queued, nil
}

// ListJobs retrieves recorded background jobs, newest first.
func (s *BatchService) ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	jobs, err := s.jobs.ListJobs(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}
