package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"tagsmith/internal/store"
)

// IndexService keeps the tag embedding index in sync with the catalog and
// routes freshly proposed tags onto near-duplicate catalog tags. With the
// index disabled every operation is a cheap no-op and proposed tags pass
// through unchanged.
type IndexService struct {
	index     store.TagIndex
	embedder  Embedder
	tags      store.TagStore
	threshold float64
	enabled   bool
}

func NewIndexService(index store.TagIndex, embedder Embedder, tags store.TagStore, threshold float64, enabled bool) *IndexService {
	return &IndexService{
		index:     index,
		embedder:  embedder,
		tags:      tags,
		threshold: threshold,
		enabled:   enabled && embedder != nil && embedder.Enabled(),
	}
}

func (s *IndexService) Enabled() bool { return s.enabled }

// RoutedTag is one proposed tag after near-duplicate routing. Merged is
// true when the tag was replaced by an existing catalog tag.
type RoutedTag struct {
	Name   string
	Merged bool
}

// RouteTags maps each proposed tag onto the nearest catalog tag within the
// similarity threshold. Lookup failures are logged and leave the tag as
// proposed; routing is an optimization, not a gate.
func (s *IndexService) RouteTags(ctx context.Context, proposed []string) []RoutedTag {
	routed := make([]RoutedTag, 0, len(proposed))
	for _, name := range proposed {
		routed = append(routed, RoutedTag{Name: name})
	}
	if !s.enabled || len(proposed) == 0 {
		return routed
	}

	vectors, err := s.embedder.EmbedBatch(ctx, proposed)
	if err != nil {
		log.Warnf("Tag routing skipped, embedding failed: %v", err)
		return routed
	}

	for i, vec := range vectors {
		matches, err := s.index.SimilarTags(ctx, vec, 1)
		if err != nil {
			log.Warnf("Tag routing lookup failed for %q: %v", proposed[i], err)
			continue
		}
		if len(matches) == 0 {
			continue
		}
		if m := matches[0]; m.Distance <= s.threshold && m.Name != proposed[i] {
			log.Debugf("Routing proposed tag %q onto catalog tag %q (distance %.4f)", proposed[i], m.Name, m.Distance)
			routed[i] = RoutedTag{Name: m.Name, Merged: true}
		}
	}
	return routed
}

// IndexTags adds the given catalog tags to the embedding index.
func (s *IndexService) IndexTags(ctx context.Context, names []string) error {
	if !s.enabled || len(names) == 0 {
		return nil
	}
	vectors, err := s.embedder.EmbedBatch(ctx, names)
	if err != nil {
		return fmt.Errorf("embed tags for indexing: %w", err)
	}
	for i, name := range names {
		if err := s.index.IndexTag(ctx, name, vectors[i]); err != nil {
			return fmt.Errorf("index tag %q: %w", name, err)
		}
	}
	return nil
}

// RemoveTag drops one tag from the index.
func (s *IndexService) RemoveTag(ctx context.Context, name string) error {
	if !s.enabled {
		return nil
	}
	return s.index.RemoveTag(ctx, name)
}

// Rebuild re-embeds the whole catalog and replaces the index contents.
// Returns the number of tags indexed.
func (s *IndexService) Rebuild(ctx context.Context) (int, error) {
	if !s.enabled {
		return 0, nil
	}

	names, err := s.tags.ListTagNames(ctx)
	if err != nil {
		return 0, fmt.Errorf("list catalog tags: %w", err)
	}
	if len(names) == 0 {
		return 0, s.index.Rebuild(ctx, nil)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, names)
	if err != nil {
		return 0, fmt.Errorf("embed catalog tags: %w", err)
	}

	entries := make([]store.TagEntry, len(names))
	for i, name := range names {
		entries[i] = store.TagEntry{Name: name, Embedding: vectors[i]}
	}
	if err := s.index.Rebuild(ctx, entries); err != nil {
		return 0, fmt.Errorf("rebuild tag index: %w", err)
	}
	return len(entries), nil
}
