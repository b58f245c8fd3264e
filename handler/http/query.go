package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"askdoc/src/core/answering"
	"askdoc/src/core/document"
	"askdoc/src/infrastructure/log"
)

// AnswerService answers one question batch against one document. The
// returned cleanup releases raw bytes cached during ingestion and is invoked
// after the response has been written.
type AnswerService interface {
	Answer(ctx context.Context, source string, questions []string) ([]answering.Answer, func(), error)
}

type QueryHandler struct {
	service AnswerService
}

func NewQueryHandler(service AnswerService) *QueryHandler {
	return &QueryHandler{service: service}
}

// RegisterRoutes registers the query API and health routes.
func (h *QueryHandler) RegisterRoutes(r *gin.Engine, authToken string) {
	api := r.Group("/api/v1")
	api.Use(BearerAuth(authToken))
	api.POST("/run", h.Run)

	r.GET("/health", h.CheckHealth)
}

type runRequest struct {
	Documents string   `json:"documents" binding:"required"`
	Questions []string `json:"questions" binding:"required,min=1"`
}

type runResponse struct {
	Answers []answering.Answer `json:"answers"`
}

// Common error response structure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Run processes one document and answers the whole question batch.
func (h *QueryHandler) Run(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	log.Info("processing query batch", "document", req.Documents, "questions", len(req.Questions))

	answers, cleanup, err := h.service.Answer(c.Request.Context(), req.Documents, req.Questions)
	defer cleanup()
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, runResponse{Answers: answers})
}

func (h *QueryHandler) CheckHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func sendError(c *gin.Context, err error) {
	var (
		loadErr *document.LoadError
		idxErr  *answering.IndexError
		genErr  *answering.GenerationError
	)

	var status int
	var code string
	switch {
	case errors.As(err, &loadErr):
		status = http.StatusBadRequest
		code = "DOCUMENT_UNREADABLE"
	case errors.As(err, &idxErr):
		status = http.StatusBadGateway
		code = "INDEX_UNAVAILABLE"
	case errors.As(err, &genErr):
		status = http.StatusBadGateway
		code = "GENERATION_FAILED"
	default:
		status = http.StatusInternalServerError
		code = "INTERNAL_ERROR"
	}

	log.Error(err, "query batch failed", "code", code)
	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}
