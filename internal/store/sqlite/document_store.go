package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tagsmith/internal/models"
	"tagsmith/internal/store"
)

const documentColumns = `id, title, body, source, content_type, content_hash, tagged_at, created_at, updated_at`

func scanDocument(row rowScanner, doc *models.Document) error {
	return row.Scan(
		&doc.ID, &doc.Title, &doc.Body, &doc.Source, &doc.ContentType,
		&doc.ContentHash, &doc.TaggedAt, &doc.CreatedAt, &doc.UpdatedAt,
	)
}

// CreateDocument inserts a new document, computing its content hash. A
// document with the same body already present surfaces as store.ErrDuplicate.
func (s *Store) CreateDocument(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (title, body, source, content_type, content_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	doc.ContentHash = calculateHash(doc.Body)
	if doc.ContentType == "" {
		doc.ContentType = "text/plain"
	}

	res, err := s.db.ExecContext(ctx, query,
		doc.Title, doc.Body, doc.Source, doc.ContentType, doc.ContentHash, now, now,
	)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return fmt.Errorf("document with hash %s already exists: %w", doc.ContentHash, mapped)
		}
		return fmt.Errorf("failed to insert document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted document id: %w", err)
	}
	doc.ID = id
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id int64) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`
	doc := &models.Document{}
	err := scanDocument(s.db.QueryRowContext(ctx, query, id), doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document by id %d: %w", id, err)
	}
	return doc, nil
}

func (s *Store) UpdateDocument(ctx context.Context, doc *models.Document) error {
	query := `
		UPDATE documents SET
			title = ?, body = ?, source = ?, content_type = ?,
			content_hash = ?, updated_at = ?
		WHERE id = ?`

	now := time.Now()
	doc.ContentHash = calculateHash(doc.Body)

	res, err := s.db.ExecContext(ctx, query,
		doc.Title, doc.Body, doc.Source, doc.ContentType, doc.ContentHash, now, doc.ID,
	)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return fmt.Errorf("document with hash %s already exists: %w", doc.ContentHash, mapped)
		}
		return fmt.Errorf("failed to update document %d: %w", doc.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	doc.UpdatedAt = now
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, id int64) error {
	// document_tags rows go with the document via ON DELETE CASCADE.
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListDocuments returns documents newest first. With filterTags set, only
// documents carrying at least one of the named tags are returned.
func (s *Store) ListDocuments(ctx context.Context, limit, offset int, filterTags []string) ([]*models.Document, error) {
	baseQuery := `SELECT DISTINCT d.id, d.title, d.body, d.source, d.content_type, d.content_hash, d.tagged_at, d.created_at, d.updated_at FROM documents d`
	var joinClause, whereClause string
	args := []interface{}{}

	if len(filterTags) > 0 {
		joinClause = ` JOIN document_tags dt ON d.id = dt.document_id JOIN tags t ON dt.tag_id = t.id`
		placeholders := make([]string, len(filterTags))
		for i, tag := range filterTags {
			placeholders[i] = "?"
			args = append(args, tag)
		}
		whereClause = fmt.Sprintf(" WHERE t.name IN (%s)", strings.Join(placeholders, ","))
	}

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	fullQuery := baseQuery + joinClause + whereClause + ` ORDER BY d.created_at DESC LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, fullQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		if err := scanDocument(rows, doc); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return docs, nil
}

// ListUntagged returns documents never tagged, oldest first, for batch runs.
func (s *Store) ListUntagged(ctx context.Context, limit int) ([]*models.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE tagged_at IS NULL ORDER BY id ASC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list untagged documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		if err := scanDocument(rows, doc); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return docs, nil
}

func (s *Store) FindDocumentByHash(ctx context.Context, hash string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE content_hash = ?`
	doc := &models.Document{}
	err := scanDocument(s.db.QueryRowContext(ctx, query, hash), doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document by hash %s: %w", hash, err)
	}
	return doc, nil
}

func (s *Store) MarkTagged(ctx context.Context, id int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET tagged_at = ?, updated_at = ? WHERE id = ?`, at, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark document %d tagged: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Ensure Store satisfies the DocumentStore interface.
var _ store.DocumentStore = (*Store)(nil)
