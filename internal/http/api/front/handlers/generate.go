package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/DynamicUIGenerator/internal/completion"
	"github.com/router-for-me/DynamicUIGenerator/internal/history"
	log "github.com/sirupsen/logrus"
)

// GenerateHandler serves generated pages.
type GenerateHandler struct {
	generator    completion.Generator
	history      *history.Store
	fallbackHTML []byte
}

// NewGenerateHandler constructs a GenerateHandler.
func NewGenerateHandler(generator completion.Generator, store *history.Store, fallbackHTML []byte) *GenerateHandler {
	return &GenerateHandler{generator: generator, history: store, fallbackHTML: fallbackHTML}
}

// Random generates a page for a random prompt and model. Generation failures
// render the fallback page instead of an error status.
func (h *GenerateHandler) Random(c *gin.Context) {
	prompt := completion.RandomPrompt()
	model := completion.RandomModel()
	log.Infof("generating page for prompt: %s", prompt)

	html, errGenerate := h.generator.Generate(c.Request.Context(), completion.Request{
		Prompt:      prompt,
		Model:       model,
		Temperature: completion.DefaultTemperature,
	})
	if errGenerate != nil {
		log.WithError(errGenerate).Error("generate random page failed")
		c.Data(http.StatusOK, "text/html; charset=utf-8", h.fallbackHTML)
		return
	}
	h.history.Add(prompt, model, len(html))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

type generateRequest struct {
	Prompt      string   `json:"prompt"`
	Model       *string  `json:"model"`
	Temperature *float64 `json:"temperature"`
}

// Custom generates a page for the caller's prompt.
func (h *GenerateHandler) Custom(c *gin.Context) {
	var body generateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	prompt := strings.TrimSpace(body.Prompt)
	if prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Prompt cannot be empty"})
		return
	}
	model := completion.DefaultModel
	if body.Model != nil {
		model = strings.TrimSpace(*body.Model)
	}
	if !completion.IsModel(model) {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": fmt.Sprintf("Model must be one of: %s", strings.Join(completion.Models(), ", ")),
		})
		return
	}
	temperature := completion.DefaultTemperature
	if body.Temperature != nil {
		temperature = *body.Temperature
	}

	log.Infof("generating custom page: %s", truncate(prompt, 50))
	html, errGenerate := h.generator.Generate(c.Request.Context(), completion.Request{
		Prompt:      body.Prompt,
		Model:       model,
		Temperature: temperature,
	})
	if errGenerate != nil {
		if !errors.Is(errGenerate, completion.ErrNotConfigured) {
			log.WithError(errGenerate).Error("generate custom page failed")
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Failed to generate UI"})
		return
	}
	h.history.Add(body.Prompt, model, len(html))
	c.JSON(http.StatusOK, gin.H{
		"html":   html,
		"prompt": body.Prompt,
		"model":  model,
	})
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
