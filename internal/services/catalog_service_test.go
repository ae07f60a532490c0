package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsmith/internal/models"
	"tagsmith/internal/store"
)

func newCatalogService(t *testing.T) (*CatalogService, *StoreCatalog, context.Context) {
	t.Helper()
	s := openTestStore(t)
	index := NewIndexService(store.NewNoopTagIndex(), nil, s, 0.2, false)
	return NewCatalogService(s, index), NewStoreCatalog(s), context.Background()
}

func TestCatalogImportExportRoundTrip(t *testing.T) {
	svc, catalog, ctx := newCatalogService(t)

	in := strings.NewReader("tags:\n  - \"#go\"\n  - Project Planning\n  - \"#go\"\n")
	n, err := svc.Import(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	names, err := catalog.TagCatalog(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"#go", "#project-planning"}, names)

	var out bytes.Buffer
	require.NoError(t, svc.Export(ctx, &out))
	assert.Contains(t, out.String(), "#go")
	assert.Contains(t, out.String(), "#project-planning")

	// Exported YAML imports back unchanged.
	n, err = svc.Import(ctx, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCatalogImportRejectsBadYAML(t *testing.T) {
	svc, _, ctx := newCatalogService(t)

	_, err := svc.Import(ctx, strings.NewReader("tags: [unclosed"))
	assert.Error(t, err)
}

func TestCatalogRenameNormalizes(t *testing.T) {
	svc, catalog, ctx := newCatalogService(t)

	_, err := svc.Import(ctx, strings.NewReader("tags: [\"#golang\"]"))
	require.NoError(t, err)

	// Raw names normalize before the store sees them.
	require.NoError(t, svc.Rename(ctx, "golang", "Go Lang"))

	names, err := catalog.TagCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"#go-lang"}, names)
}

func TestCatalogRenameValidation(t *testing.T) {
	svc, _, ctx := newCatalogService(t)

	err := svc.Rename(ctx, "", "#target")
	assert.ErrorIs(t, err, models.ErrValidation)

	// Renaming a tag onto itself is a no-op, not an error.
	assert.NoError(t, svc.Rename(ctx, "#same", "same"))
}

func TestCatalogDelete(t *testing.T) {
	svc, catalog, ctx := newCatalogService(t)

	_, err := svc.Import(ctx, strings.NewReader("tags: [\"#go\", \"#sql\"]"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "go"))

	names, err := catalog.TagCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"#sql"}, names)

	assert.ErrorIs(t, svc.Delete(ctx, "#missing"), store.ErrNotFound)
}
