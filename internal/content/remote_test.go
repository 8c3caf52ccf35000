package content

import (
	"strings"
	"testing"

	"slidecraft/pkg/domain"
)

func TestParseSlideJSONExtractsArrayFromProse(t *testing.T) {
	text := `Here is your presentation:
[
    {"title": "Intro", "layout": "title", "content": "Welcome"},
    {"title": "Points", "layout": "bullet_points", "bullet_points": ["a", "b", "c"]}
]
Let me know if you need changes.`

	slides, err := parseSlideJSON(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(slides) != 2 {
		t.Fatalf("got %d slides, want 2", len(slides))
	}
	if slides[0].Layout != domain.LayoutTitle || slides[0].Title != "Intro" {
		t.Fatalf("unexpected first slide: %+v", slides[0])
	}
	if len(slides[1].BulletPoints) != 3 {
		t.Fatalf("unexpected bullet slide: %+v", slides[1])
	}
}

func TestParseSlideJSONDefaults(t *testing.T) {
	slides, err := parseSlideJSON(`[{"layout": "no_such_layout"}]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if slides[0].Title != "Untitled Slide" {
		t.Fatalf("missing title should default, got %q", slides[0].Title)
	}
	if slides[0].Layout != domain.LayoutBulletPoints {
		t.Fatalf("unknown layout should default to bullet points, got %s", slides[0].Layout)
	}
}

func TestParseSlideJSONRejectsBadInput(t *testing.T) {
	for _, text := range []string{
		"no array here",
		"[]",
		"[{broken json}]",
	} {
		if _, err := parseSlideJSON(text); err == nil {
			t.Fatalf("expected error for %q", text)
		}
	}
}

func TestBuildSlidePromptMentionsParameters(t *testing.T) {
	prompt := buildSlidePrompt("Edge Computing", 6, []domain.SlideLayout{domain.LayoutTwoColumn})
	for _, want := range []string{"Edge Computing", "6-slide", "two_column", "JSON array"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
