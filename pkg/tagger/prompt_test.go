package tagger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsmith/internal/llm"
)

func TestBuildMessagesEmbedsCatalogAndDocument(t *testing.T) {
	catalog := []string{"#golang", "#testing", "#databases"}
	doc := Document{Body: "A post about writing table driven tests in Go."}

	messages := BuildMessages(DefaultSystemTemplate, 5, catalog, doc)
	require.Len(t, messages, 2)

	system := messages[0]
	user := messages[1]
	assert.Equal(t, llm.RoleSystem, system.Role)
	assert.Equal(t, llm.RoleUser, user.Role)

	// The filled prompt carries the catalog block and the document verbatim.
	assert.Contains(t, system.Content, FormatCatalog(catalog))
	assert.Contains(t, user.Content, doc.Body)

	// Placeholders are gone after substitution.
	assert.NotContains(t, system.Content, "{{TAGS}}")
	assert.NotContains(t, system.Content, "{{MAX_TAGS}}")
}

func TestBuildMessagesMaxTagsSubstitution(t *testing.T) {
	messages := BuildMessages(DefaultSystemTemplate, 7, nil, Document{Body: "text"})
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].Content, "at most 7 tags")
}

func TestBuildMessagesTitlePrefixesBody(t *testing.T) {
	doc := Document{Title: "Weekly notes", Body: "Shipped the importer."}
	messages := BuildMessages(DefaultSystemTemplate, 5, nil, doc)
	require.Len(t, messages, 2)

	assert.True(t, strings.HasPrefix(messages[1].Content, "Weekly notes"))
	assert.Contains(t, messages[1].Content, doc.Body)
}

func TestBuildMessagesCustomTemplate(t *testing.T) {
	template := "Pick from: {{TAGS}}"
	messages := BuildMessages(template, 5, []string{"#a", "#b"}, Document{Body: "text"})
	require.Len(t, messages, 2)
	assert.Equal(t, "Pick from: #a\n#b", messages[0].Content)
}

func TestFormatCatalog(t *testing.T) {
	assert.Equal(t, "#one\n#two", FormatCatalog([]string{"#one", "#two"}))
	assert.Equal(t, "", FormatCatalog(nil))
}
