package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"slidecraft/pkg/ai"
	"slidecraft/pkg/domain"
)

const slideSystemPrompt = "You are a professional presentation designer. Generate structured slide content in JSON format."

// buildSlidePrompt embeds the topic, slide count and layout rotation into a
// structured prompt asking for a JSON array of slide objects.
func buildSlidePrompt(topic string, slideCount int, layouts []domain.SlideLayout) string {
	if len(layouts) == 0 {
		layouts = defaultLayoutRotation()
	}
	names := make([]string, 0, len(layouts))
	for _, l := range layouts {
		names = append(names, string(l))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a %d-slide presentation about %q.\n\n", slideCount, topic)
	fmt.Fprintf(&sb, "Use these layouts: %s\n\n", strings.Join(names, ", "))
	sb.WriteString(`Return the response as a JSON array with this structure:
[
    {
        "title": "Slide Title",
        "layout": "layout_type",
        "content": "Main content text",
        "bullet_points": ["point1", "point2", "point3"],
        "left_column": "Left column content",
        "right_column": "Right column content",
        "image_placeholder": "Description of image to include"
    }
]

Guidelines:
- First slide should be a title slide
- Include relevant bullet points (3-5 per slide)
- Make content engaging and informative
- Use professional language
- Include citations where appropriate`)
	return sb.String()
}

// parseSlideJSON extracts the first bracketed JSON array from the response
// text, tolerating surrounding prose, and decodes it into slides. Any shape
// deviation is an error for the caller to treat as a non-fatal tier failure.
func parseSlideJSON(text string) ([]domain.Slide, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}
	var raw []struct {
		Title            string   `json:"title"`
		Layout           string   `json:"layout"`
		Content          string   `json:"content"`
		BulletPoints     []string `json:"bullet_points"`
		LeftColumn       string   `json:"left_column"`
		RightColumn      string   `json:"right_column"`
		ImagePlaceholder string   `json:"image_placeholder"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode slide array: %w", err)
	}
	slides := make([]domain.Slide, 0, len(raw))
	for _, r := range raw {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = "Untitled Slide"
		}
		slides = append(slides, domain.Slide{
			Title:            title,
			Content:          r.Content,
			BulletPoints:     r.BulletPoints,
			LeftColumn:       r.LeftColumn,
			RightColumn:      r.RightColumn,
			ImagePlaceholder: r.ImagePlaceholder,
			Layout:           domain.ParseSlideLayout(r.Layout),
		})
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("empty slide array in response")
	}
	return slides, nil
}

// remoteTier produces slides through the remote text-completion service.
type remoteTier struct {
	generator *ai.OpenAIGenerator
}

func (t *remoteTier) name() string { return "remote" }

func (t *remoteTier) generate(ctx context.Context, req Request) ([]domain.Slide, error) {
	if !t.generator.Configured() {
		return nil, fmt.Errorf("no remote credential configured")
	}
	text, err := t.generator.GenerateText(ctx, slideSystemPrompt, buildSlidePrompt(req.Topic, req.SlideCount, req.Layouts))
	if err != nil {
		return nil, fmt.Errorf("remote generation: %w", err)
	}
	slides, err := parseSlideJSON(text)
	if err != nil {
		return nil, fmt.Errorf("remote response: %w", err)
	}
	return conform(slides, req.Topic, req.SlideCount, req.Layouts), nil
}
