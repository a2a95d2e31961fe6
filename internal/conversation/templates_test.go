package conversation

import (
	"strings"
	"testing"
)

func TestTemplateRenderer_Render(t *testing.T) {
	renderer := NewTemplateRenderer(nil)

	got, err := renderer.Render(TemplateAskProblem, map[string]string{"equipamento": "fogão"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "fogão") {
		t.Errorf("variable not substituted: %q", got)
	}
	if strings.Contains(got, "{{") {
		t.Errorf("unreplaced marker in %q", got)
	}
}

func TestTemplateRenderer_UnknownKey(t *testing.T) {
	renderer := NewTemplateRenderer(nil)
	if _, err := renderer.Render("nope", nil); err == nil {
		t.Error("expected error for unknown template key")
	}
}

func TestTemplateRenderer_MissingVariableStaysVisible(t *testing.T) {
	renderer := NewTemplateRenderer(nil)
	got, err := renderer.Render(TemplateQuote, map[string]string{"equipamento": "fogão"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "{{problema}}") {
		t.Errorf("missing variable must stay visible, got %q", got)
	}
}

func TestTemplateRenderer_Overrides(t *testing.T) {
	renderer := NewTemplateRenderer(map[string]string{
		TemplateFallback: "Como assim?",
	})
	got, err := renderer.Render(TemplateFallback, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Como assim?" {
		t.Errorf("override not applied: %q", got)
	}
}
