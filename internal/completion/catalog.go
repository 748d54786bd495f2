package completion

import "math/rand"

// DefaultModel is used when a request names no model.
const DefaultModel = "qwen-3-coder-480b"

// DefaultTemperature is used when a request names no temperature.
const DefaultTemperature = 0.8

var models = []string{DefaultModel, "gpt-oss-120b"}

var prompts = []string{
	"Create a beautiful landing page for a coffee shop with warm colors and cozy atmosphere",
	"Design a modern portfolio website for a photographer with stunning gallery layout",
	"Build a sleek dashboard interface for a fitness tracking app with charts and metrics",
	"Create a minimalist blog homepage with dark theme and elegant typography",
	"Design a product showcase page for eco-friendly products with green theme",
	"Build a creative agency homepage with bold typography and animated elements",
	"Create a weather app interface with animated weather icons and gradients",
	"Design a music player interface with vinyl record aesthetic and controls",
	"Build a cryptocurrency dashboard with real-time charts and modern design",
	"Create a food delivery app interface with appetizing food images",
	"Design a travel booking website with beautiful destination photos",
	"Build a social media dashboard with card-based layout and interactions",
	"Create a gaming website with neon colors and futuristic design",
	"Design a meditation app interface with calming colors and zen elements",
	"Build a real estate website with property listings and modern layout",
}

// Models returns the supported model names.
func Models() []string {
	out := make([]string, len(models))
	copy(out, models)
	return out
}

// IsModel reports whether name is a supported model.
func IsModel(name string) bool {
	for _, m := range models {
		if m == name {
			return true
		}
	}
	return false
}

// Prompts returns the built-in prompt catalogue.
func Prompts() []string {
	out := make([]string, len(prompts))
	copy(out, prompts)
	return out
}

// RandomPrompt picks a prompt from the catalogue.
func RandomPrompt() string { return prompts[rand.Intn(len(prompts))] }

// RandomModel picks a supported model.
func RandomModel() string { return models[rand.Intn(len(models))] }
