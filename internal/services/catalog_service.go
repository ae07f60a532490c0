package services

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"tagsmith/internal/models"
	"tagsmith/internal/store"
	"tagsmith/pkg/tagger"
)

// StoreCatalog adapts the tag store into the catalog source the tagger
// shows to the model.
type StoreCatalog struct {
	tags store.TagStore
}

func NewStoreCatalog(ts store.TagStore) *StoreCatalog {
	return &StoreCatalog{tags: ts}
}

func (c *StoreCatalog) TagCatalog(ctx context.Context) ([]string, error) {
	return c.tags.ListTagNames(ctx)
}

var _ tagger.CatalogSource = (*StoreCatalog)(nil)

// CatalogService maintains the tag catalog: listing, renames, deletion and
// YAML import/export. Catalog mutations keep the embedding index in step.
type CatalogService struct {
	tags  store.TagStore
	index *IndexService
}

func NewCatalogService(ts store.TagStore, index *IndexService) *CatalogService {
	return &CatalogService{tags: ts, index: index}
}

// List returns catalog tags with their document counts, most used first.
func (s *CatalogService) List(ctx context.Context, limit, offset int) ([]models.TagCount, error) {
	counts, err := s.tags.ListTagCounts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tag counts: %w", err)
	}
	return counts, nil
}

// Rename renames a catalog tag, merging assignments when the target tag
// already exists. Both names are normalized first.
func (s *CatalogService) Rename(ctx context.Context, from, to string) error {
	from = tagger.Normalize(from)
	to = tagger.Normalize(to)
	if from == "" || to == "" {
		return fmt.Errorf("rename needs two non-empty tag names: %w", models.ErrValidation)
	}
	if from == to {
		return nil
	}

	if err := s.tags.RenameTag(ctx, from, to); err != nil {
		return fmt.Errorf("rename tag %s to %s: %w", from, to, err)
	}

	if err := s.index.RemoveTag(ctx, from); err != nil {
		log.Warnf("Failed to drop renamed tag %s from index: %v", from, err)
	}
	if err := s.index.IndexTags(ctx, []string{to}); err != nil {
		log.Warnf("Failed to index renamed tag %s: %v", to, err)
	}
	return nil
}

// Delete removes a catalog tag and all its document assignments.
func (s *CatalogService) Delete(ctx context.Context, name string) error {
	name = tagger.Normalize(name)
	if name == "" {
		return fmt.Errorf("delete needs a non-empty tag name: %w", models.ErrValidation)
	}
	if err := s.tags.DeleteTag(ctx, name); err != nil {
		return fmt.Errorf("delete tag %s: %w", name, err)
	}
	if err := s.index.RemoveTag(ctx, name); err != nil {
		log.Warnf("Failed to drop deleted tag %s from index: %v", name, err)
	}
	return nil
}

// catalogFile is the YAML shape used for catalog import and export.
type catalogFile struct {
	Tags []string `yaml:"tags"`
}

// Export writes the catalog tag names as YAML.
func (s *CatalogService) Export(ctx context.Context, w io.Writer) error {
	names, err := s.tags.ListTagNames(ctx)
	if err != nil {
		return fmt.Errorf("list catalog tags: %w", err)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(catalogFile{Tags: names}); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return nil
}

// Import reads a YAML tag list and creates any tags not already present.
// Returns how many tags the file contributed after normalization.
func (s *CatalogService) Import(ctx context.Context, r io.Reader) (int, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return 0, fmt.Errorf("decode catalog file: %w", err)
	}

	names := tagger.NormalizeAll(file.Tags)
	if len(names) == 0 {
		return 0, nil
	}
	if _, err := s.tags.GetOrCreateTags(ctx, names); err != nil {
		return 0, fmt.Errorf("create imported tags: %w", err)
	}
	if err := s.index.IndexTags(ctx, names); err != nil {
		log.Warnf("Failed to index imported tags: %v", err)
	}
	return len(names), nil
}
