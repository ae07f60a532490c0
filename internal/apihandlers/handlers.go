package apihandlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tagsmith/internal/app"
	"tagsmith/internal/llm"
	"tagsmith/internal/models"
	"tagsmith/internal/services"
	"tagsmith/internal/store"
)

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(a *app.App) *APIHandler {
	return &APIHandler{App: a}
}

// RegisterRoutes mounts every API route on the router.
func (h *APIHandler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/suggest", h.SuggestHandler)

		docs := v1.Group("/documents")
		{
			docs.POST("", h.CreateDocumentHandler)
			docs.GET("", h.ListDocumentsHandler)
			docs.GET("/:id", h.GetDocumentHandler)
			docs.DELETE("/:id", h.DeleteDocumentHandler)
			docs.POST("/:id/tag", h.TagDocumentHandler)
		}

		v1.GET("/tags", h.ListTagsHandler)
	}

	router.GET("/health", h.HealthHandler)
}

// --- Suggest ---

type suggestRequest struct {
	Title string `json:"title"`
	Text  string `json:"text" binding:"required"`
}

type suggestResponse struct {
	Tags     []string `json:"tags"`
	Existing []string `json:"existing"`
	New      []string `json:"new"`
}

// SuggestHandler runs one stateless tagging call: nothing is stored.
func (h *APIHandler) SuggestHandler(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	res, err := h.App.TaggingService.SuggestForText(c.Request.Context(), req.Title, req.Text, "")
	if err != nil {
		h.taggingFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": suggestResponse{
		Tags:     res.Tags,
		Existing: res.Existing,
		New:      res.New,
	}})
}

// taggingFailure translates tagging errors into API responses. Classified
// provider errors keep their user message and get a matching status.
func (h *APIHandler) taggingFailure(c *gin.Context, err error) {
	var pe *llm.ProviderError
	switch {
	case errors.As(err, &pe):
		ProviderFailure(c, pe)
	case errors.Is(err, models.ErrEmptyDocument):
		BadRequest(c, "Document text is empty.")
	case errors.Is(err, store.ErrNotFound):
		NotFound(c, "Document not found.")
	default:
		Internal(c, fmt.Sprintf("Tagging failed: %v", err))
	}
}

// --- Documents ---

type createDocumentRequest struct {
	Title       string `json:"title"`
	Body        string `json:"body" binding:"required"`
	Source      string `json:"source"`
	ContentType string `json:"content_type"`
}

func (h *APIHandler) CreateDocumentHandler(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	source := req.Source
	if source == "" {
		source = "api"
	}
	doc, existed, err := h.App.DocumentService.Add(c.Request.Context(), services.AddDocumentParams{
		Title:       req.Title,
		Body:        req.Body,
		Source:      source,
		ContentType: req.ContentType,
	})
	if err != nil {
		if errors.Is(err, models.ErrEmptyDocument) {
			BadRequest(c, "Document body is empty.")
			return
		}
		Internal(c, fmt.Sprintf("Failed to store document: %v", err))
		return
	}

	status := http.StatusCreated
	if existed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"data": gin.H{"document": doc, "existed": existed}})
}

func (h *APIHandler) ListDocumentsHandler(c *gin.Context) {
	params, err := parseListParams(c)
	if err != nil {
		BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	items, err := h.App.DocumentService.List(c.Request.Context(), params)
	if err != nil {
		Internal(c, fmt.Sprintf("Failed to list documents: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func parseListParams(c *gin.Context) (services.ListParams, error) {
	params := services.ListParams{Limit: 20}

	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return params, fmt.Errorf("invalid limit: %s", l)
		}
		params.Limit = parsed
	}
	if o := c.Query("offset"); o != "" {
		parsed, err := strconv.Atoi(o)
		if err != nil || parsed < 0 {
			return params, fmt.Errorf("invalid offset: %s", o)
		}
		params.Offset = parsed
	}
	if tagsParam := c.Query("tags"); tagsParam != "" {
		for _, t := range strings.Split(tagsParam, ",") {
			if t = strings.TrimSpace(t); t != "" {
				params.FilterTags = append(params.FilterTags, t)
			}
		}
	}
	return params, nil
}

func (h *APIHandler) GetDocumentHandler(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	doc, tags, err := h.App.DocumentService.GetWithTags(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, fmt.Sprintf("Document not found with ID: %d", id))
			return
		}
		Internal(c, fmt.Sprintf("Failed to retrieve document: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"document": doc, "tags": tags}})
}

func (h *APIHandler) DeleteDocumentHandler(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := h.App.DocumentService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, fmt.Sprintf("Document not found with ID: %d", id))
			return
		}
		Internal(c, fmt.Sprintf("Failed to delete document: %v", err))
		return
	}
	c.Status(http.StatusNoContent)
}

// TagDocumentHandler runs tagging for a stored document and persists the
// assignments.
func (h *APIHandler) TagDocumentHandler(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	res, err := h.App.TaggingService.TagDocument(c.Request.Context(), id)
	if err != nil {
		h.taggingFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": suggestResponse{
		Tags:     res.Tags,
		Existing: res.Existing,
		New:      res.New,
	}})
}

func parseIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid document ID: %s", c.Param("id"))
	}
	return id, nil
}

// --- Tags ---

type tagCountResponse struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

func (h *APIHandler) ListTagsHandler(c *gin.Context) {
	limit := 100
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			BadRequest(c, "invalid limit: "+l)
			return
		}
		limit = parsed
	}

	counts, err := h.App.CatalogService.List(c.Request.Context(), limit, 0)
	if err != nil {
		Internal(c, fmt.Sprintf("Failed to list tags: %v", err))
		return
	}

	items := make([]tagCountResponse, len(counts))
	for i, tc := range counts {
		items[i] = tagCountResponse{Name: tc.Tag.Name, Count: tc.Count}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// --- Health ---

func (h *APIHandler) HealthHandler(c *gin.Context) {
	if err := h.App.DocumentStore.Ping(c.Request.Context()); err != nil {
		JSONError(c, http.StatusServiceUnavailable, "unavailable", "primary store unreachable: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
