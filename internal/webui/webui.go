package webui

import (
	"embed"
	"fmt"
)

//go:embed assets/admin.html assets/fallback.html
var assets embed.FS

// Bundle holds the static pages served by the HTTP layer.
type Bundle struct {
	AdminHTML    []byte
	FallbackHTML []byte
}

// Load reads the embedded pages.
func Load() (Bundle, error) {
	admin, errAdmin := assets.ReadFile("assets/admin.html")
	if errAdmin != nil {
		return Bundle{}, fmt.Errorf("webui: read admin page: %w", errAdmin)
	}
	fallback, errFallback := assets.ReadFile("assets/fallback.html")
	if errFallback != nil {
		return Bundle{}, fmt.Errorf("webui: read fallback page: %w", errFallback)
	}
	return Bundle{AdminHTML: admin, FallbackHTML: fallback}, nil
}
