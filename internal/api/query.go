/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nl2sql-agent/internal/database"
	"nl2sql-agent/internal/logging"
	"nl2sql-agent/internal/nl2sql"
)

// Error codes returned for failed generations
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeNoMetadata       = "NO_METADATA"
	CodeExtractionFailed = "EXTRACTION_FAILED"
	CodeUpstreamError    = "UPSTREAM_ERROR"
)

// Asker answers questions; *nl2sql.Agent implements it
type Asker interface {
	Ask(ctx context.Context, question, dbName string, execute bool) nl2sql.Answer
	CanExecute() bool
}

// Handler serves the query and database endpoints
type Handler struct {
	agent     Asker
	databases DatabaseLister
}

// NewHandler creates a handler. databases may be nil when no execution
// targets are configured.
func NewHandler(agent Asker, databases DatabaseLister) *Handler {
	return &Handler{agent: agent, databases: databases}
}

// QueryRequest is the request body for POST /api/query
type QueryRequest struct {
	Message  string `json:"message" binding:"required"`
	Database string `json:"database"`
	Execute  *bool  `json:"execute"`
}

// ErrorBody describes a failure
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResultBody holds executed rows
type ResultBody struct {
	Columns   []string            `json:"columns"`
	Rows      []map[string]string `json:"rows"`
	RowCount  int                 `json:"row_count"`
	Truncated bool                `json:"truncated"`
}

// QueryResponse is the response for POST /api/query
type QueryResponse struct {
	Query    string      `json:"query,omitempty"`
	Database string      `json:"database,omitempty"`
	Result   *ResultBody `json:"result,omitempty"`
	Error    *ErrorBody  `json:"error,omitempty"`
	Summary  string      `json:"summary,omitempty"`
}

// HandleGet handles POST /get, the form endpoint used by the chat page. It
// answers with the generated SQL, or the user-facing failure message, as
// plain text.
func (h *Handler) HandleGet(c *gin.Context) {
	msg := strings.TrimSpace(c.PostForm("msg"))
	if msg == "" {
		c.String(http.StatusBadRequest, "Please enter a question.")
		return
	}

	answer := h.agent.Ask(c.Request.Context(), msg, "", false)
	if !answer.Outcome.OK() {
		c.String(http.StatusOK, answer.Outcome.UserMessage())
		return
	}
	c.String(http.StatusOK, answer.Outcome.SQL)
}

// HandleQuery handles POST /api/query. The question may name its target
// with "database X: ..." or "... on database X" when the request does not.
// Statements are executed when a database is available unless execute is
// false.
func (h *Handler) HandleQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, QueryResponse{
			Error: &ErrorBody{Code: CodeBadRequest, Message: "message is required"},
		})
		return
	}

	parsed := database.ParseQueryForDatabase(req.Message)
	question := strings.TrimSpace(parsed.CleanedQuery)
	dbName := req.Database
	if dbName == "" {
		dbName = parsed.Database
	}
	if question == "" {
		c.JSON(http.StatusBadRequest, QueryResponse{
			Error: &ErrorBody{Code: CodeBadRequest, Message: "message is required"},
		})
		return
	}

	execute := h.agent.CanExecute()
	if req.Execute != nil {
		execute = execute && *req.Execute
	}

	ctx := c.Request.Context()
	answer := h.agent.Ask(ctx, question, dbName, execute)

	if !answer.Outcome.OK() {
		status, code := outcomeStatus(answer.Outcome.Reason)
		c.JSON(status, QueryResponse{
			Error: &ErrorBody{Code: code, Message: answer.Outcome.UserMessage()},
		})
		return
	}

	resp := QueryResponse{Query: answer.Outcome.SQL, Database: answer.Database}
	switch {
	case answer.Err != nil:
		logging.Warn("execution_failed", logging.WithContext(ctx,
			"database", answer.Err.Database, "code", answer.Err.Code, "error", answer.Err.Message)...)
		resp.Error = &ErrorBody{Code: answer.Err.Code, Message: answer.Err.Message}
	case answer.Executed:
		resp.Result = &ResultBody{
			Columns:   answer.Result.Columns,
			Rows:      answer.Result.Rows,
			RowCount:  answer.Result.RowCount(),
			Truncated: answer.Result.Truncated,
		}
		if resp.Result.Rows == nil {
			resp.Result.Rows = []map[string]string{}
		}
		resp.Summary = answer.Summary
	}

	c.JSON(http.StatusOK, resp)
}

func outcomeStatus(reason nl2sql.Reason) (int, string) {
	switch reason {
	case nl2sql.ReasonNoMetadata:
		return http.StatusUnprocessableEntity, CodeNoMetadata
	case nl2sql.ReasonExtractionFailed:
		return http.StatusUnprocessableEntity, CodeExtractionFailed
	default:
		return http.StatusBadGateway, CodeUpstreamError
	}
}
