package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the admin page.
type PageHandler struct {
	html []byte
}

// NewPageHandler constructs a PageHandler.
func NewPageHandler(html []byte) *PageHandler {
	return &PageHandler{html: html}
}

// Admin renders the custom generation form.
func (h *PageHandler) Admin(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", h.html)
}
