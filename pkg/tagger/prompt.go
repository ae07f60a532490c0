package tagger

import (
	"strconv"
	"strings"

	"tagsmith/internal/llm"
)

// DefaultMaxTags bounds one call's suggestions when no limit is configured.
const DefaultMaxTags = 5

// DefaultSystemTemplate is the built-in system prompt. {{TAGS}} receives
// the catalog block, {{MAX_TAGS}} the suggestion limit.
const DefaultSystemTemplate = `You are an expert at assigning topic tags to documents.
Review the document provided by the user and suggest tags describing its topics.

Prefer tags from the existing tag catalog below; only propose a new tag when
nothing in the catalog fits the document. Reply with a JSON object holding two
string arrays: "existingTags" for catalog tags you reused and "newTags" for
tags you propose. Every tag starts with '#', for example #project-planning.
Suggest at most {{MAX_TAGS}} tags in total.

Existing tag catalog:
{{TAGS}}`

// FormatCatalog renders the catalog as the newline-joined block embedded in
// the system prompt, one tag per line.
func FormatCatalog(tags []string) string {
	return strings.Join(tags, "\n")
}

// BuildMessages deterministically fills the two-message prompt: the system
// message carries the instructions and catalog, the user message carries
// the document text verbatim.
func BuildMessages(systemTemplate string, maxTags int, catalog []string, doc Document) []llm.Message {
	system := strings.ReplaceAll(systemTemplate, "{{TAGS}}", FormatCatalog(catalog))
	system = strings.ReplaceAll(system, "{{MAX_TAGS}}", strconv.Itoa(maxTags))

	user := doc.Body
	if doc.Title != "" {
		user = doc.Title + "\n\n" + doc.Body
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}
}
