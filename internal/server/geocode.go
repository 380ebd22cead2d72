package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Geocode resolves an address for the map step. An unresolvable address is
// an empty result, not an error; the wizard proceeds without coordinates.
func (s *Server) Geocode(c *gin.Context) {
	address := strings.TrimSpace(c.Query("q"))
	if address == "" {
		AbortWithError(c, newValidationError("q", "invalid_address", "address is required"))
		return
	}

	result, err := s.geocoder.Geocode(c.Request.Context(), address)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
