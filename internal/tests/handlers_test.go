package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsmith/internal/apihandlers"
	"tagsmith/internal/app"
	"tagsmith/internal/llm"
	"tagsmith/pkg/tagger"
)

func newTestRouter(t *testing.T, stub *stubSuggester) (*gin.Engine, *app.App) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	a := newTestApp(t)
	useStubSuggester(a, stub)

	router := gin.New()
	apihandlers.NewAPIHandler(a).RegisterRoutes(router)
	return router, a
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSuggestHandler(t *testing.T) {
	stub := &stubSuggester{res: &tagger.Result{
		Tags:     []string{"#go", "#testing"},
		Existing: []string{"#go"},
		New:      []string{"#testing"},
	}}
	router, _ := newTestRouter(t, stub)

	w := doJSON(t, router, http.MethodPost, "/api/v1/suggest", gin.H{
		"title": "Notes",
		"text":  "Table-driven tests in Go.",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			Tags     []string `json:"tags"`
			Existing []string `json:"existing"`
			New      []string `json:"new"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"#go", "#testing"}, resp.Data.Tags)
	assert.Equal(t, []string{"#go"}, resp.Data.Existing)
	assert.Equal(t, []string{"#testing"}, resp.Data.New)
}

func TestSuggestHandlerRequiresText(t *testing.T) {
	router, _ := newTestRouter(t, &stubSuggester{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/suggest", gin.H{"title": "Notes"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestHandlerClassifiedFailure(t *testing.T) {
	// A rate-limit failure must keep its user message and map onto 429.
	stub := &stubSuggester{err: llm.Classify(errors.New("Rate limit reached for requests"), false)}
	router, _ := newTestRouter(t, stub)

	w := doJSON(t, router, http.MethodPost, "/api/v1/suggest", gin.H{"text": "some text"})

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rate_limited", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "pace your requests")
}

func TestDocumentLifecycleOverAPI(t *testing.T) {
	stub := &stubSuggester{res: &tagger.Result{
		Tags: []string{"#infra"},
		New:  []string{"#infra"},
	}}
	router, _ := newTestRouter(t, stub)

	// Create.
	w := doJSON(t, router, http.MethodPost, "/api/v1/documents", gin.H{
		"title": "Runbook",
		"body":  "Restart the ingest service when the queue stalls.",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data struct {
			Document struct {
				ID int64 `json:"ID"`
			} `json:"document"`
			Existed bool `json:"existed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotZero(t, created.Data.Document.ID)
	assert.False(t, created.Data.Existed)
	id := created.Data.Document.ID

	// Same body again: 200 with existed=true, not a second row.
	w = doJSON(t, router, http.MethodPost, "/api/v1/documents", gin.H{
		"title": "Runbook copy",
		"body":  "Restart the ingest service when the queue stalls.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Tag it.
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/documents/%d/tag", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Fetch with tags.
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/documents/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched struct {
		Data struct {
			Tags []struct {
				Name string `json:"Name"`
			} `json:"tags"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	require.Len(t, fetched.Data.Tags, 1)
	assert.Equal(t, "#infra", fetched.Data.Tags[0].Name)

	// The catalog now lists the tag with one document.
	w = doJSON(t, router, http.MethodGet, "/api/v1/tags", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tagsResp struct {
		Items []struct {
			Name  string `json:"name"`
			Count int64  `json:"count"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tagsResp))
	require.Len(t, tagsResp.Items, 1)
	assert.Equal(t, "#infra", tagsResp.Items[0].Name)
	assert.Equal(t, int64(1), tagsResp.Items[0].Count)

	// Delete.
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/documents/%d", id), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/documents/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTagUnknownDocument(t *testing.T) {
	router, _ := newTestRouter(t, &stubSuggester{res: &tagger.Result{}})

	w := doJSON(t, router, http.MethodPost, "/api/v1/documents/9999/tag", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthHandler(t *testing.T) {
	router, _ := newTestRouter(t, &stubSuggester{})

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
