package tagger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsmith/internal/llm"
)

func TestExtractionToolSchema(t *testing.T) {
	tool := extractionTool()
	assert.Equal(t, "record_tags", tool.Name)

	var schema struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	require.NoError(t, json.Unmarshal(tool.Parameters, &schema))
	assert.Equal(t, "object", schema.Type)
	assert.Contains(t, schema.Properties, "existingTags")
	assert.Contains(t, schema.Properties, "newTags")
	assert.ElementsMatch(t, []string{"existingTags", "newTags"}, schema.Required)
}

func TestToolTagLists(t *testing.T) {
	comp := &llm.Completion{
		ToolCalls: []llm.ToolCall{{
			Name:      "record_tags",
			Arguments: `{"existingTags": ["#go", "#sql"], "newTags": ["#migrations"]}`,
		}},
	}

	existing, proposed, err := toolTagLists(comp)
	require.NoError(t, err)
	assert.Equal(t, []string{"#go", "#sql"}, existing)
	assert.Equal(t, []string{"#migrations"}, proposed)
}

func TestToolTagListsIgnoresExtraKeys(t *testing.T) {
	comp := &llm.Completion{
		ToolCalls: []llm.ToolCall{{
			Name:      "record_tags",
			Arguments: `{"existingTags": ["#go"], "newTags": [], "confidence": 0.9, "reasoning": "matches"}`,
		}},
	}

	existing, proposed, err := toolTagLists(comp)
	require.NoError(t, err)
	assert.Equal(t, []string{"#go"}, existing)
	assert.Empty(t, proposed)
}

func TestToolTagListsSkipsUnrelatedCalls(t *testing.T) {
	comp := &llm.Completion{
		ToolCalls: []llm.ToolCall{
			{Name: "other_function", Arguments: `{"existingTags": ["#wrong"]}`},
			{Name: "record_tags", Arguments: `{"existingTags": ["#right"], "newTags": []}`},
		},
	}

	existing, _, err := toolTagLists(comp)
	require.NoError(t, err)
	assert.Equal(t, []string{"#right"}, existing)
}

func TestToolTagListsNoCall(t *testing.T) {
	_, _, err := toolTagLists(&llm.Completion{Content: "I cannot do that."})
	assert.ErrorIs(t, err, ErrNoToolCall)
}

func TestToolTagListsInvalidArguments(t *testing.T) {
	comp := &llm.Completion{
		ToolCalls: []llm.ToolCall{{Name: "record_tags", Arguments: `not json`}},
	}
	_, _, err := toolTagLists(comp)
	assert.Error(t, err)

	comp = &llm.Completion{
		ToolCalls: []llm.ToolCall{{Name: "record_tags", Arguments: `{"existingTags": "oops"}`}},
	}
	_, _, err = toolTagLists(comp)
	assert.Error(t, err)
}

func TestToolTagListsMissingKeys(t *testing.T) {
	comp := &llm.Completion{
		ToolCalls: []llm.ToolCall{{Name: "record_tags", Arguments: `{}`}},
	}
	existing, proposed, err := toolTagLists(comp)
	require.NoError(t, err)
	assert.Empty(t, existing)
	assert.Empty(t, proposed)
}

func TestParseFreeText(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		existing []string
		proposed []string
	}{
		{
			name:     "bare json object",
			content:  `{"existingTags": ["#go"], "newTags": ["#generics"]}`,
			existing: []string{"#go"},
			proposed: []string{"#generics"},
		},
		{
			name: "fenced json object",
			content: "Here are the tags:\n```json\n" +
				`{"existingTags": ["#sql"], "newTags": ["#indexes"]}` +
				"\n```\nLet me know if you need more.",
			existing: []string{"#sql"},
			proposed: []string{"#indexes"},
		},
		{
			name:     "single tags array",
			content:  `{"tags": ["#go", "#http"]}`,
			proposed: []string{"#go", "#http"},
		},
		{
			name:     "marker scan over prose",
			content:  "Suggested tags: #go, #testing and also #ci.",
			proposed: []string{"#go", "#testing", "#ci"},
		},
		{
			name:    "nothing recoverable",
			content: "I could not find any relevant topics.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing, proposed := parseFreeText(tt.content)
			assert.Equal(t, tt.existing, existing)
			assert.Equal(t, tt.proposed, proposed)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#golang", "#golang"},
		{"Machine Learning", "#machine-learning"},
		{"#Machine Learning", "#machine-learning"},
		{"  #API  ", "#api"},
		{"#", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeAll(t *testing.T) {
	got := NormalizeAll([]string{"#Go", "go", "#testing", "", "#GO"})
	assert.Equal(t, []string{"#go", "#testing"}, got)
}
