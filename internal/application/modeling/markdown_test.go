package modeling

import (
	"strings"
	"testing"
)

func TestRenderInstructionsHTML(t *testing.T) {
	html, err := RenderInstructionsHTML("# Modeling Steps\n\n1. Open Rhino\n2. Run the script")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "Modeling Steps") {
		t.Fatalf("expected heading in html, got %q", html)
	}
	if !strings.Contains(html, "<ol") {
		t.Fatalf("expected ordered list in html, got %q", html)
	}
}

func TestRenderInstructionsHTMLEmpty(t *testing.T) {
	html, err := RenderInstructionsHTML("   \n  ")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if html != "" {
		t.Fatalf("expected empty html for blank input, got %q", html)
	}
}
