package content

import (
	"context"
	"fmt"
	"strings"

	"slidecraft/pkg/ai"
	"slidecraft/pkg/domain"
)

const maxLocalBullets = 4

// localTier produces slides through a locally hosted generation model. Only
// bullet slides involve the model; the other layouts use deterministic shapes
// so a slow local model is consulted at most once per bullet slide.
type localTier struct {
	generator *ai.OllamaGenerator
}

func (t *localTier) name() string { return "local" }

func (t *localTier) generate(ctx context.Context, req Request) ([]domain.Slide, error) {
	if t.generator == nil {
		return nil, fmt.Errorf("no local model configured")
	}
	if !t.generator.Client().Loadable(ctx) {
		return nil, fmt.Errorf("local model not loadable")
	}

	slides := make([]domain.Slide, 0, req.SlideCount)
	slides = append(slides, domain.TitleSlide(
		fmt.Sprintf("%s - Presentation", req.Topic),
		fmt.Sprintf("An overview of %s", req.Topic),
	))
	for i := 1; i < req.SlideCount; i++ {
		slides = append(slides, t.slideFor(ctx, req.Topic, i, layoutAt(req.Layouts, i)))
	}
	return conform(slides, req.Topic, req.SlideCount, req.Layouts), nil
}

func (t *localTier) slideFor(ctx context.Context, topic string, slideNum int, layout domain.SlideLayout) domain.Slide {
	switch layout {
	case domain.LayoutTitle:
		return domain.TitleSlide(
			fmt.Sprintf("Slide %d: %s", slideNum, topic),
			fmt.Sprintf("Introduction to %s", topic),
		)
	case domain.LayoutBulletPoints:
		return domain.BulletSlide(fmt.Sprintf("Key Points about %s", topic), t.bullets(ctx, topic))
	case domain.LayoutTwoColumn:
		return domain.TwoColumnSlide(
			fmt.Sprintf("%s Analysis", topic),
			"Advantages:\n\n• Enhanced efficiency and productivity\n• Cost-effective solutions\n• Improved user experience\n• Scalable implementation",
			"Considerations:\n\n• Implementation challenges\n• Resource requirements\n• Training and adoption\n• Maintenance and updates",
		)
	case domain.LayoutContentWithImage:
		return domain.ImageSlide(
			fmt.Sprintf("%s Overview", topic),
			fmt.Sprintf("Comprehensive overview of %s and its applications in modern technology and business.", topic),
			fmt.Sprintf("Diagram or chart showing %s concepts", topic),
		)
	default:
		return domain.Slide{
			Title:   fmt.Sprintf("Slide %d: %s", slideNum, topic),
			Content: fmt.Sprintf("Content about %s", topic),
			Layout:  layout,
		}
	}
}

// bullets asks the local model for bullet candidates and extracts them from
// the response. Extraction failure is non-fatal: canned bullets stand in.
func (t *localTier) bullets(ctx context.Context, topic string) []string {
	prompt := fmt.Sprintf("Create %d professional bullet points about %s for a business presentation:", maxLocalBullets, topic)
	text, err := t.generator.GenerateText(ctx, "", prompt)
	if err == nil {
		if extracted := extractBullets(text); len(extracted) > 0 {
			return extracted
		}
	}
	return []string{
		fmt.Sprintf("Understanding the fundamentals of %s", topic),
		fmt.Sprintf("Key benefits and advantages of %s", topic),
		"Important considerations and challenges",
		fmt.Sprintf("Future trends and developments in %s", topic),
	}
}

// extractBullets pulls bullet lines out of free-form model output: lines
// starting with a list marker, or lines mentioning point-like keywords.
// At most maxLocalBullets are returned.
func extractBullets(text string) []string {
	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		marker := ""
		for _, m := range []string{"•", "-", "*"} {
			if strings.HasPrefix(line, m) {
				marker = m
				break
			}
		}
		if marker != "" {
			if b := strings.TrimSpace(strings.TrimPrefix(line, marker)); b != "" {
				bullets = append(bullets, b)
			}
		} else {
			lower := strings.ToLower(line)
			for _, keyword := range []string{"point", "benefit", "advantage", "feature"} {
				if strings.Contains(lower, keyword) {
					bullets = append(bullets, line)
					break
				}
			}
		}
		if len(bullets) >= maxLocalBullets {
			break
		}
	}
	if len(bullets) > maxLocalBullets {
		bullets = bullets[:maxLocalBullets]
	}
	return bullets
}
