package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	submissiondomain "github.com/sunterra/sunplan/internal/submission/domain"
)

// Submit captures the lead for the session's current quote.
func (s *Server) Submit(c *gin.Context) {
	if !s.limiter.Allow(c.Request.Context(), c.ClientIP()) {
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	var req submissiondomain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	lead, err := s.submissionSvc.Submit(c.Request.Context(), sessionID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"id":        lead.ID.String(),
			"sessionId": lead.SessionID,
			"email":     lead.Email,
		},
	})
}
