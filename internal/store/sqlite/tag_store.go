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

// GetOrCreateTags resolves tag names to rows, inserting any the catalog
// does not have yet. Blank names are skipped. Results preserve input order.
func (s *Store) GetOrCreateTags(ctx context.Context, names []string) ([]*models.Tag, error) {
	if len(names) == 0 {
		return []*models.Tag{}, nil
	}

	var tags []*models.Tag
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tag, err := s.getOrCreateTag(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (s *Store) getOrCreateTag(ctx context.Context, name string) (*models.Tag, error) {
	tag, err := s.GetTagByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	res, insertErr := s.db.ExecContext(ctx,
		`INSERT INTO tags (name, created_at) VALUES (?, ?)`, name, now)
	if insertErr != nil {
		// Lost a race with a concurrent insert; the row exists now.
		if mapped := mapConstraintError(insertErr); errors.Is(mapped, store.ErrDuplicate) {
			return s.GetTagByName(ctx, name)
		}
		return nil, fmt.Errorf("failed to insert tag %q: %w", name, insertErr)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted tag id: %w", err)
	}
	return &models.Tag{ID: id, Name: name, CreatedAt: now}, nil
}

func (s *Store) GetTagByName(ctx context.Context, name string) (*models.Tag, error) {
	tag := &models.Tag{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM tags WHERE name = ?`, name,
	).Scan(&tag.ID, &tag.Name, &tag.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tag %q: %w", name, err)
	}
	return tag, nil
}

// ListTagNames returns every catalog tag name in alphabetical order. This
// is the catalog handed to the tagging prompt.
func (s *Store) ListTagNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tag names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag name: %w", err)
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag names: %w", err)
	}
	return names, nil
}

func (s *Store) ListTagCounts(ctx context.Context, limit, offset int) ([]models.TagCount, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT t.id, t.name, t.created_at, COUNT(dt.document_id)
		FROM tags t
		LEFT JOIN document_tags dt ON t.id = dt.tag_id
		GROUP BY t.id
		ORDER BY COUNT(dt.document_id) DESC, t.name ASC
		LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tag counts: %w", err)
	}
	defer rows.Close()

	var counts []models.TagCount
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.Tag.ID, &tc.Tag.Name, &tc.Tag.CreatedAt, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag count row: %w", err)
		}
		counts = append(counts, tc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag count rows: %w", err)
	}
	return counts, nil
}

// RenameTag renames a tag. When the target name already exists the two
// tags merge: document links move to the target and the source disappears.
func (s *Store) RenameTag(ctx context.Context, from, to string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rename transaction: %w", err)
	}
	defer tx.Rollback()

	var srcID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, from).Scan(&srcID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to look up tag %q: %w", from, err)
	}

	var dstID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, to).Scan(&dstID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Simple rename.
		if _, err := tx.ExecContext(ctx, `UPDATE tags SET name = ? WHERE id = ?`, to, srcID); err != nil {
			return fmt.Errorf("failed to rename tag %q: %w", from, err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up tag %q: %w", to, err)
	default:
		// Merge: move links, dropping any that would collide, then delete
		// the source tag.
		if _, err := tx.ExecContext(ctx,
			`UPDATE OR IGNORE document_tags SET tag_id = ? WHERE tag_id = ?`, dstID, srcID); err != nil {
			return fmt.Errorf("failed to move links from %q to %q: %w", from, to, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM document_tags WHERE tag_id = ?`, srcID); err != nil {
			return fmt.Errorf("failed to drop leftover links for %q: %w", from, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, srcID); err != nil {
			return fmt.Errorf("failed to delete merged tag %q: %w", from, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rename of %q: %w", from, err)
	}
	return nil
}

// DeleteTag removes a tag and its document links.
func (s *Store) DeleteTag(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete tag %q: %w", name, err)
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

// AssignTags links the named tags to a document, creating catalog entries
// as needed. Existing links keep their original origin.
func (s *Store) AssignTags(ctx context.Context, documentID int64, assignments []store.TagAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	now := time.Now()
	for _, a := range assignments {
		tag, err := s.getOrCreateTag(ctx, a.Name)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO document_tags (document_id, tag_id, origin, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (document_id, tag_id) DO NOTHING`,
			documentID, tag.ID, string(a.Origin), now)
		if err != nil {
			if mapped := mapConstraintError(err); errors.Is(mapped, store.ErrForeignKeyViolation) {
				return fmt.Errorf("document %d does not exist: %w", documentID, mapped)
			}
			return fmt.Errorf("failed to link tag %q to document %d: %w", a.Name, documentID, err)
		}
	}
	return nil
}

func (s *Store) RemoveTagFromDocument(ctx context.Context, documentID, tagID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM document_tags WHERE document_id = ? AND tag_id = ?`, documentID, tagID)
	if err != nil {
		return fmt.Errorf("failed to remove tag %d from document %d: %w", tagID, documentID, err)
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

func (s *Store) GetDocumentTags(ctx context.Context, documentID int64) ([]*models.Tag, error) {
	query := `
		SELECT t.id, t.name, t.created_at
		FROM tags t
		JOIN document_tags dt ON t.id = dt.tag_id
		WHERE dt.document_id = ?
		ORDER BY t.name ASC`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags for document %d: %w", documentID, err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		tag := &models.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}
	return tags, nil
}

// GetTagsForDocuments retrieves tags for multiple documents in one query.
// Every requested ID has an entry in the result, possibly empty.
func (s *Store) GetTagsForDocuments(ctx context.Context, documentIDs []int64) (map[int64][]*models.Tag, error) {
	if len(documentIDs) == 0 {
		return map[int64][]*models.Tag{}, nil
	}

	placeholders := make([]string, len(documentIDs))
	args := make([]interface{}, len(documentIDs))
	for i, id := range documentIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT dt.document_id, t.id, t.name, t.created_at
		FROM tags t
		JOIN document_tags dt ON t.id = dt.tag_id
		WHERE dt.document_id IN (%s)
		ORDER BY dt.document_id, t.name ASC`, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags for multiple documents: %w", err)
	}
	defer rows.Close()

	tagsByDocID := make(map[int64][]*models.Tag)
	for rows.Next() {
		var docID int64
		tag := &models.Tag{}
		if err := rows.Scan(&docID, &tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tagsByDocID[docID] = append(tagsByDocID[docID], tag)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	for _, id := range documentIDs {
		if _, exists := tagsByDocID[id]; !exists {
			tagsByDocID[id] = []*models.Tag{}
		}
	}
	return tagsByDocID, nil
}

// Ensure Store satisfies the TagStore interface.
var _ store.TagStore = (*Store)(nil)
