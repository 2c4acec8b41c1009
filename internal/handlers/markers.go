package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"property-search/internal/markers"
)

// MarkerGlyph serves GET /api/markers/:file where file is "<tier>.svg"
func MarkerGlyph(c *gin.Context) {
	name, ok := strings.CutSuffix(c.Param("file"), ".svg")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "marker glyphs are served as .svg"})
		return
	}
	tier, ok := markers.TierByName(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown tier: " + name})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/svg+xml", []byte(markers.Glyph(tier)))
}

// MarkerTiers lists every tier with its colour and size
func MarkerTiers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metrics": markers.Metrics,
		"tiers":   markers.Tiers(),
	})
}
