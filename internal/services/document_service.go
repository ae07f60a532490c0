package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"tagsmith/internal/models"
	"tagsmith/internal/store"
)

// DocumentService manages the registered documents.
type DocumentService struct {
	docs store.DocumentStore
	tags store.TagStore
}

func NewDocumentService(ds store.DocumentStore, ts store.TagStore) *DocumentService {
	return &DocumentService{docs: ds, tags: ts}
}

// AddDocumentParams carries one document into the store.
type AddDocumentParams struct {
	Title       string
	Body        string
	Source      string
	ContentType string
}

// Add registers a document. A body already present (same content hash)
// returns the stored document with existed == true instead of an error.
func (s *DocumentService) Add(ctx context.Context, params AddDocumentParams) (*models.Document, bool, error) {
	body := strings.TrimSpace(params.Body)
	if body == "" {
		return nil, false, models.ErrEmptyDocument
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		title = deriveTitle(body)
	}
	source := params.Source
	if source == "" {
		source = "manual"
	}

	doc := &models.Document{
		Title:       title,
		Body:        body,
		Source:      source,
		ContentType: params.ContentType,
	}
	err := s.docs.CreateDocument(ctx, doc)
	if err == nil {
		log.Debugf("Stored document %d (%q, %d bytes)", doc.ID, doc.Title, len(doc.Body))
		return doc, false, nil
	}
	if !errors.Is(err, store.ErrDuplicate) {
		return nil, false, fmt.Errorf("create document: %w", err)
	}

	existing, findErr := s.docs.FindDocumentByHash(ctx, doc.ContentHash)
	if findErr != nil {
		return nil, false, fmt.Errorf("look up duplicate document: %w", findErr)
	}
	return existing, true, nil
}

// deriveTitle takes the first line of the body, capped to something that
// still reads as a title.
func deriveTitle(body string) string {
	line := body
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(strings.TrimLeft(line, "# "))
	runes := []rune(line)
	if len(runes) > 80 {
		line = string(runes[:80])
	}
	if line == "" {
		line = "Untitled"
	}
	return line
}

func (s *DocumentService) Get(ctx context.Context, id int64) (*models.Document, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document %d: %w", id, err)
	}
	return doc, nil
}

// GetWithTags returns the document together with its assigned tags.
func (s *DocumentService) GetWithTags(ctx context.Context, id int64) (*models.Document, []*models.Tag, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	tags, err := s.tags.GetDocumentTags(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get tags for document %d: %w", id, err)
	}
	return doc, tags, nil
}

// DocumentResultItem is one list entry: the document plus its tags.
type DocumentResultItem struct {
	Document *models.Document `json:"document"`
	Tags     []*models.Tag    `json:"tags"`
}

// ListParams paginate and filter document listings.
type ListParams struct {
	Limit      int
	Offset     int
	FilterTags []string
}

// List returns documents with their tags, newest first.
func (s *DocumentService) List(ctx context.Context, params ListParams) ([]DocumentResultItem, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	docs, err := s.docs.ListDocuments(ctx, params.Limit, params.Offset, params.FilterTags)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		return []DocumentResultItem{}, nil
	}

	ids := make([]int64, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	tagsByDoc, err := s.tags.GetTagsForDocuments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load tags for listed documents: %w", err)
	}

	items := make([]DocumentResultItem, len(docs))
	for i, doc := range docs {
		items[i] = DocumentResultItem{Document: doc, Tags: tagsByDoc[doc.ID]}
	}
	return items, nil
}

func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	if err := s.docs.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document %d: %w", id, err)
	}
	return nil
}
