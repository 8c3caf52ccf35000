package content

import (
	"strings"
	"testing"

	"slidecraft/pkg/domain"
)

func TestLookupAliases(t *testing.T) {
	library := NewLibrary()
	cases := []struct {
		topic string
		title string
	}{
		{"ai", "Artificial Intelligence"},
		{"The Future of Artificial Intelligence", "Artificial Intelligence"},
		{"machine learning in practice", "Machine Learning"},
		{"CLOUD migration", "Cloud Computing"},
		{"our business strategy for 2026", "Business Strategy"},
	}
	for _, c := range cases {
		if got := library.Lookup(c.topic); got.Title != c.title {
			t.Fatalf("Lookup(%q).Title = %q, want %q", c.topic, got.Title, c.title)
		}
	}
}

func TestLookupUnknownTopicSynthesizes(t *testing.T) {
	library := NewLibrary()
	data := library.Lookup("Underwater Basket Weaving")
	if data.Title != "Underwater Basket Weaving" {
		t.Fatalf("generic template title = %q", data.Title)
	}
	if len(data.Slides) == 0 || len(data.Trends) == 0 {
		t.Fatalf("generic template should have the full shape: %+v", data)
	}
}

func TestCuratedTemplatesAreWellFormed(t *testing.T) {
	library := NewLibrary()
	for _, key := range library.Topics() {
		data := library.topics[key]
		if data.Title == "" {
			t.Fatalf("topic %s has no title", key)
		}
		if len(data.Slides) < 3 {
			t.Fatalf("topic %s has %d slides, want at least 3", key, len(data.Slides))
		}
		for i, tpl := range data.Slides {
			switch tpl.Layout {
			case domain.LayoutBulletPoints:
				if len(tpl.BulletPoints) == 0 {
					t.Fatalf("topic %s slide %d: bullet layout without bullets", key, i)
				}
			case domain.LayoutTwoColumn:
				if tpl.LeftColumn == "" || tpl.RightColumn == "" {
					t.Fatalf("topic %s slide %d: column layout missing a column", key, i)
				}
			case domain.LayoutContentWithImage:
				if tpl.ImagePlaceholder == "" {
					t.Fatalf("topic %s slide %d: image layout without placeholder", key, i)
				}
			}
		}
	}
}

func TestCiteBulletsRotates(t *testing.T) {
	bullets := make([]string, len(bulletCitations)+1)
	for i := range bullets {
		bullets[i] = "point"
	}
	cited := citeBullets(bullets)
	if !strings.HasSuffix(cited[0], "("+bulletCitations[0]+")") {
		t.Fatalf("first citation not applied: %q", cited[0])
	}
	if cited[len(bulletCitations)] != cited[0] {
		t.Fatalf("citation rotation should wrap around")
	}
}

func TestFocusTitle(t *testing.T) {
	if got := focusTitle("case_studies"); got != "Case Studies" {
		t.Fatalf("focusTitle = %q", got)
	}
	if got := focusTitle("trends"); got != "Trends" {
		t.Fatalf("focusTitle = %q", got)
	}
}
