package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/DynamicUIGenerator/internal/completion"
	"github.com/router-for-me/DynamicUIGenerator/internal/history"
)

// recentHistoryLimit is how many generations /api/history returns.
const recentHistoryLimit = 10

// CatalogHandler serves models, prompts and generation history.
type CatalogHandler struct {
	history *history.Store
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(store *history.Store) *CatalogHandler {
	return &CatalogHandler{history: store}
}

// Models lists the supported models.
func (h *CatalogHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": completion.Models()})
}

// RandomPrompt returns a prompt from the catalogue.
func (h *CatalogHandler) RandomPrompt(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"prompt": completion.RandomPrompt()})
}

// History returns the most recent generations.
func (h *CatalogHandler) History(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"history": h.history.Recent(recentHistoryLimit),
		"total":   h.history.Total(),
	})
}
