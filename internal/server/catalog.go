package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) brandSlug(c *gin.Context) string {
	if slug := strings.TrimSpace(c.Query("brand")); slug != "" {
		return slug
	}
	return s.cfg.BrandSlug
}

// GetCatalog returns the active brand's equipment and pricing catalog.
func (s *Server) GetCatalog(c *gin.Context) {
	catalog, err := s.catalogSvc.Catalog(c.Request.Context(), s.brandSlug(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": catalog})
}

// RefreshCatalog forces a re-fetch from the branding service.
func (s *Server) RefreshCatalog(c *gin.Context) {
	catalog, err := s.catalogSvc.Refresh(c.Request.Context(), s.brandSlug(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": catalog})
}
