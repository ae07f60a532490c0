package tagger

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/sashabaranov/go-openai/jsonschema"

	"tagsmith/internal/llm"
)

// Marker prefixes every tag.
const Marker = "#"

// extractionFunctionName is the one function declared on the structured-output path.
const extractionFunctionName = "record_tags"

var ErrNoToolCall = errors.New("tagger: model did not invoke the extraction function")

// extractionTool declares the function the model is forced to call when the
// provider supports tool invocation.
func extractionTool() llm.Tool {
	schema := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"existingTags": {
				Type:        jsonschema.Array,
				Description: "Tags reused from the existing tag catalog",
				Items:       &jsonschema.Definition{Type: jsonschema.String},
			},
			"newTags": {
				Type:        jsonschema.Array,
				Description: "New tags proposed for this document",
				Items:       &jsonschema.Definition{Type: jsonschema.String},
			},
		},
		Required: []string{"existingTags", "newTags"},
	}
	raw, _ := json.Marshal(schema)
	return llm.Tool{
		Name:        extractionFunctionName,
		Description: "Record the tags assigned to the document",
		Parameters:  raw,
	}
}

// toolTagLists pulls the two named arrays out of the first extraction
// invocation, ignoring any other keys the model adds.
func toolTagLists(comp *llm.Completion) (existing, proposed []string, err error) {
	var arguments string
	for _, call := range comp.ToolCalls {
		if call.Name == extractionFunctionName {
			arguments = call.Arguments
			break
		}
	}
	if arguments == "" {
		return nil, nil, ErrNoToolCall
	}

	var args map[string]json.RawMessage
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return nil, nil, fmt.Errorf("tagger: invalid extraction arguments: %w", err)
	}
	existing, err = stringList(args["existingTags"])
	if err != nil {
		return nil, nil, fmt.Errorf("tagger: invalid existingTags: %w", err)
	}
	proposed, err = stringList(args["newTags"])
	if err != nil {
		return nil, nil, fmt.Errorf("tagger: invalid newTags: %w", err)
	}
	return existing, proposed, nil
}

func stringList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// parseFreeText recovers tag lists from a plain completion reply. It accepts
// a bare JSON object, a markdown-fenced JSON object, or falls back to
// scanning for marker-prefixed tokens.
func parseFreeText(content string) (existing, proposed []string) {
	var payload struct {
		ExistingTags []string `json:"existingTags"`
		NewTags      []string `json:"newTags"`
		Tags         []string `json:"tags"`
	}

	trimmed := strings.TrimSpace(content)
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		if m := fencedJSON.FindStringSubmatch(trimmed); m != nil {
			_ = json.Unmarshal([]byte(m[1]), &payload)
		}
	}

	if payload.ExistingTags != nil || payload.NewTags != nil {
		return payload.ExistingTags, payload.NewTags
	}
	if payload.Tags != nil {
		return nil, payload.Tags
	}
	return nil, scanTags(trimmed)
}

// scanTags collects marker-prefixed tokens from running text.
func scanTags(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	var tags []string
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?()[]{}\"'`")
		if strings.HasPrefix(f, Marker) && len(f) > 1 {
			tags = append(tags, f)
		}
	}
	return tags
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize canonicalizes one tag: trim, strip an existing marker,
// lowercase, collapse inner whitespace to '-', and re-apply the marker.
// Returns "" when nothing usable remains.
func Normalize(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, Marker)
	tag = strings.TrimSpace(tag)
	tag = strings.ToLower(tag)
	tag = whitespaceRun.ReplaceAllString(tag, "-")
	if tag == "" {
		return ""
	}
	return Marker + tag
}

// NormalizeAll normalizes tags, dropping empties and duplicates while
// preserving first-occurrence order.
func NormalizeAll(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		n := Normalize(tag)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
