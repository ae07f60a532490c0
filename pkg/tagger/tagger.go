package tagger

import (
	"context"
	"errors"
	"fmt"

	"tagsmith/internal/llm"
)

// Document holds text to tag plus optional context.
type Document struct {
	Title string
	Body  string
}

// Result is the outcome of one tagging call.
type Result struct {
	Tags     []string // merged flat list, catalog tags first
	Existing []string // catalog tags the model reused
	New      []string // tags the model proposed
	Usage    llm.Usage
}

// CatalogSource supplies the existing tags shown to the model as context.
type CatalogSource interface {
	TagCatalog(ctx context.Context) ([]string, error)
}

// StaticCatalog is a fixed tag catalog.
type StaticCatalog []string

func (c StaticCatalog) TagCatalog(ctx context.Context) ([]string, error) {
	return c, nil
}

var ErrEmptyDocument = errors.New("tagger: document body is empty")

// Tagger asks a completion model to assign tags to documents.
type Tagger struct {
	completer      llm.Completer
	catalog        CatalogSource
	useTools       bool
	maxTags        int
	systemTemplate string
}

// Options tune a Tagger. Zero values fall back to defaults.
type Options struct {
	// SystemTemplate overrides the built-in system prompt. It must keep the
	// {{TAGS}} placeholder; {{MAX_TAGS}} is optional.
	SystemTemplate string
	MaxTags        int
}

// New builds a Tagger over the given completion client. Whether tagging
// runs through forced tool invocation or plain completion follows the
// client's capability flag.
func New(completer llm.Completer, catalog CatalogSource, opts Options) *Tagger {
	template := opts.SystemTemplate
	if template == "" {
		template = DefaultSystemTemplate
	}
	maxTags := opts.MaxTags
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}
	return &Tagger{
		completer:      completer,
		catalog:        catalog,
		useTools:       completer.SupportsToolCalls(),
		maxTags:        maxTags,
		systemTemplate: template,
	}
}

// SuggestTags returns the flat list of tags for the document, merged from
// catalog tags the model reused and tags it proposed. Failures of the
// remote call surface as *llm.ProviderError.
func (t *Tagger) SuggestTags(ctx context.Context, doc Document) ([]string, error) {
	res, err := t.Suggest(ctx, doc)
	if err != nil {
		return nil, err
	}
	return res.Tags, nil
}

// Suggest is SuggestTags with the full result: tag provenance and token
// usage alongside the merged list.
func (t *Tagger) Suggest(ctx context.Context, doc Document) (*Result, error) {
	if doc.Body == "" {
		return nil, ErrEmptyDocument
	}

	catalog, err := t.catalog.TagCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tag catalog: %w", err)
	}

	req := llm.Request{
		Messages: BuildMessages(t.systemTemplate, t.maxTags, catalog, doc),
	}

	var existing, proposed []string
	var usage llm.Usage

	if t.useTools {
		comp, err := t.completer.CompleteWithTool(ctx, req, extractionTool())
		if err != nil {
			return nil, err
		}
		usage = comp.Usage
		existing, proposed, err = toolTagLists(comp)
		if err != nil {
			return nil, err
		}
	} else {
		comp, err := t.completer.Complete(ctx, req)
		if err != nil {
			return nil, err
		}
		usage = comp.Usage
		existing, proposed = parseFreeText(comp.Content)
	}

	return t.buildResult(existing, proposed, usage), nil
}

// buildResult normalizes both groups, drops duplicates across them, merges
// existing-first, and caps the flat list at maxTags.
func (t *Tagger) buildResult(existing, proposed []string, usage llm.Usage) *Result {
	ex := NormalizeAll(existing)

	seen := make(map[string]struct{}, len(ex))
	for _, tag := range ex {
		seen[tag] = struct{}{}
	}
	var nw []string
	for _, tag := range NormalizeAll(proposed) {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		nw = append(nw, tag)
	}

	tags := make([]string, 0, len(ex)+len(nw))
	tags = append(tags, ex...)
	tags = append(tags, nw...)

	if t.maxTags > 0 && len(tags) > t.maxTags {
		tags = tags[:t.maxTags]
		if len(ex) > len(tags) {
			ex = ex[:len(tags)]
		}
		nw = tags[len(ex):]
	}

	return &Result{Tags: tags, Existing: ex, New: nw, Usage: usage}
}
