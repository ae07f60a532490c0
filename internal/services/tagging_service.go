package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"tagsmith/internal/models"
	"tagsmith/internal/store"
	"tagsmith/internal/textprep"
	"tagsmith/pkg/tagger"
)

// TaggingDeps bundles what the tagging service needs.
type TaggingDeps struct {
	Suggester TagSuggester
	Documents store.DocumentStore
	Tags      store.TagStore
	Index     *IndexService
	Usage     *UsageService

	Provider string
	Model    string
	// MaxDocumentChars caps the prepared document before prompting.
	MaxDocumentChars int
}

// TaggingService runs the tagging flow: prepare the text, ask the model,
// route near-duplicate proposals onto the catalog, and (for stored
// documents) persist the assignments.
type TaggingService struct {
	suggester TagSuggester
	docs      store.DocumentStore
	tags      store.TagStore
	index     *IndexService
	usage     *UsageService
	provider  string
	model     string
	maxChars  int
}

func NewTaggingService(deps TaggingDeps) *TaggingService {
	return &TaggingService{
		suggester: deps.Suggester,
		docs:      deps.Documents,
		tags:      deps.Tags,
		index:     deps.Index,
		usage:     deps.Usage,
		provider:  deps.Provider,
		model:     deps.Model,
		maxChars:  deps.MaxDocumentChars,
	}
}

// SuggestForText runs one stateless tagging call over raw text. Nothing is
// persisted except the usage record. Remote failures surface as
// *llm.ProviderError.
func (s *TaggingService) SuggestForText(ctx context.Context, title, body, contentType string) (*tagger.Result, error) {
	prepared := textprep.Prepare(body, contentType, s.maxChars)
	if prepared == "" {
		return nil, models.ErrEmptyDocument
	}

	res, err := s.suggester.Suggest(ctx, tagger.Document{Title: title, Body: prepared})
	if err != nil {
		return nil, err
	}
	s.usage.RecordCall(ctx, s.provider, s.model, "tagging", res.Usage)

	return s.routeResult(ctx, res), nil
}

// routeResult sends proposed tags through the embedding index; proposals
// that land on an existing catalog tag move into the existing group.
func (s *TaggingService) routeResult(ctx context.Context, res *tagger.Result) *tagger.Result {
	if s.index == nil || !s.index.Enabled() || len(res.New) == 0 {
		return res
	}

	existing := append([]string(nil), res.Existing...)
	var proposed []string
	for _, routed := range s.index.RouteTags(ctx, res.New) {
		if routed.Merged {
			existing = append(existing, routed.Name)
		} else {
			proposed = append(proposed, routed.Name)
		}
	}

	existing = tagger.NormalizeAll(existing)
	seen := make(map[string]struct{}, len(existing))
	for _, tag := range existing {
		seen[tag] = struct{}{}
	}
	var fresh []string
	for _, tag := range tagger.NormalizeAll(proposed) {
		if _, ok := seen[tag]; !ok {
			fresh = append(fresh, tag)
		}
	}

	tags := make([]string, 0, len(existing)+len(fresh))
	tags = append(tags, existing...)
	tags = append(tags, fresh...)
	return &tagger.Result{Tags: tags, Existing: existing, New: fresh, Usage: res.Usage}
}

// TagDocument tags one stored document and persists the assignments with
// their origins. The new tags also enter the embedding index.
func (s *TaggingService) TagDocument(ctx context.Context, id int64) (*tagger.Result, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load document %d: %w", id, err)
	}

	res, err := s.SuggestForText(ctx, doc.Title, doc.Body, doc.ContentType)
	if err != nil {
		return nil, err
	}

	assignments := make([]store.TagAssignment, 0, len(res.Tags))
	for _, name := range res.Existing {
		assignments = append(assignments, store.TagAssignment{Name: name, Origin: models.TagOriginExisting})
	}
	for _, name := range res.New {
		assignments = append(assignments, store.TagAssignment{Name: name, Origin: models.TagOriginNew})
	}
	if err := s.tags.AssignTags(ctx, id, assignments); err != nil {
		return nil, fmt.Errorf("assign tags to document %d: %w", id, err)
	}
	if err := s.docs.MarkTagged(ctx, id, time.Now()); err != nil {
		return nil, fmt.Errorf("mark document %d tagged: %w", id, err)
	}

	if len(res.New) > 0 {
		if err := s.index.IndexTags(ctx, res.New); err != nil {
			log.Warnf("Failed to index new tags for document %d: %v", id, err)
		}
	}

	log.Infof("Tagged document %d: %d existing, %d new", id, len(res.Existing), len(res.New))
	return res, nil
}

// ApplyManualTags assigns user-chosen tags to a document, normalized, with
// manual origin. No model call is involved.
func (s *TaggingService) ApplyManualTags(ctx context.Context, id int64, names []string) ([]string, error) {
	normalized := tagger.NormalizeAll(names)
	if len(normalized) == 0 {
		return nil, fmt.Errorf("no usable tag names: %w", models.ErrValidation)
	}
	if _, err := s.docs.GetDocument(ctx, id); err != nil {
		return nil, fmt.Errorf("load document %d: %w", id, err)
	}

	assignments := make([]store.TagAssignment, len(normalized))
	for i, name := range normalized {
		assignments[i] = store.TagAssignment{Name: name, Origin: models.TagOriginManual}
	}
	if err := s.tags.AssignTags(ctx, id, assignments); err != nil {
		return nil, fmt.Errorf("assign tags to document %d: %w", id, err)
	}
	if err := s.docs.MarkTagged(ctx, id, time.Now()); err != nil {
		return nil, fmt.Errorf("mark document %d tagged: %w", id, err)
	}
	return normalized, nil
}
