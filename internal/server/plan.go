package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	plandomain "github.com/sunterra/sunplan/internal/plan/domain"
)

// GetPlan returns the session's current snapshot, computing one from the
// defaults for a fresh session.
func (s *Server) GetPlan(c *gin.Context) {
	snapshot, err := s.planSvc.Get(c.Request.Context(), sessionID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snapshot})
}

// UpdatePlan replaces the wizard inputs and returns the recomputed snapshot.
// The whole input set travels on every update so the wizard state has a
// single writer.
func (s *Server) UpdatePlan(c *gin.Context) {
	var inputs plandomain.Inputs
	if err := c.ShouldBindJSON(&inputs); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	snapshot, err := s.planSvc.Recompute(c.Request.Context(), sessionID(c), inputs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snapshot})
}
