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
	"net/http"

	"github.com/gin-gonic/gin"
)

// DatabaseLister reports the configured execution targets;
// *database.ClientManager implements it
type DatabaseLister interface {
	ListDatabaseNames() []string
	GetDefaultDatabaseName() string
}

// ListDatabasesResponse is the response for GET /api/databases
type ListDatabasesResponse struct {
	Databases []string `json:"databases"`
	Default   string   `json:"default"`
}

// HandleListDatabases handles GET /api/databases
func (h *Handler) HandleListDatabases(c *gin.Context) {
	response := ListDatabasesResponse{Databases: []string{}}
	if h.databases != nil {
		response.Databases = append(response.Databases, h.databases.ListDatabaseNames()...)
		response.Default = h.databases.GetDefaultDatabaseName()
	}
	c.JSON(http.StatusOK, response)
}
