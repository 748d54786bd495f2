package webui

import (
	"bytes"
	"testing"
)

func TestLoad(t *testing.T) {
	bundle, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !bytes.Contains(bundle.AdminHTML, []byte("/api/generate")) {
		t.Fatalf("expected admin page to post to /api/generate")
	}
	if !bytes.Contains(bundle.FallbackHTML, []byte("Oops!")) {
		t.Fatalf("expected fallback page content")
	}
}
