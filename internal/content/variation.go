package content

import (
	"fmt"
	"math/rand"
	"strings"

	"slidecraft/pkg/domain"
)

// focusVariant is one thematic angle the variation path can take. The set is
// fixed; which one is used is drawn uniformly at random per request.
type focusVariant struct {
	Focus  string
	Suffix string
}

func defaultFocusVariants() []focusVariant {
	return []focusVariant{
		{Focus: "fundamentals", Suffix: " - Core Concepts"},
		{Focus: "applications", Suffix: " - Real-World Applications"},
		{Focus: "trends", Suffix: " - Current Trends"},
		{Focus: "future", Suffix: " - Future Outlook"},
		{Focus: "implementation", Suffix: " - Implementation Guide"},
		{Focus: "case_studies", Suffix: " - Case Studies"},
		{Focus: "technologies", Suffix: " - Technologies & Tools"},
		{Focus: "best_practices", Suffix: " - Best Practices"},
	}
}

var bulletCitations = []string{
	"Source: Industry Research Reports (2024)",
	"Reference: Academic Studies & Publications",
	"Data: Market Analysis & Surveys",
	"Source: Expert Interviews & Case Studies",
	"Reference: Technical Documentation & Standards",
	"Data: Government Reports & Statistics",
}

// citeBullets appends a rotating citation suffix to each bullet.
func citeBullets(bullets []string) []string {
	cited := make([]string, 0, len(bullets))
	for i, bullet := range bullets {
		cited = append(cited, fmt.Sprintf("%s (%s)", bullet, bulletCitations[i%len(bulletCitations)]))
	}
	return cited
}

// slideFromTemplate converts a canned slide definition into a slide of the
// matching layout with citation-style text appended.
func slideFromTemplate(tpl TemplateSlide, topic string) domain.Slide {
	switch tpl.Layout {
	case domain.LayoutBulletPoints:
		return domain.BulletSlide(tpl.Title, citeBullets(tpl.BulletPoints))
	case domain.LayoutTwoColumn:
		return domain.TwoColumnSlide(
			tpl.Title,
			tpl.LeftColumn+"\n\nSources: Industry Reports, Academic Research",
			tpl.RightColumn+"\n\nReferences: Market Analysis, Expert Opinions",
		)
	case domain.LayoutContentWithImage:
		slide := domain.ImageSlide(tpl.Title, tpl.Content+"\n\nSources: Research Papers, Industry Reports, Expert Analysis", tpl.ImagePlaceholder)
		return slide
	default:
		content := tpl.Content
		if content == "" {
			content = fmt.Sprintf("Content about %s", topic)
		}
		return domain.Slide{
			Title:   tpl.Title,
			Content: content + "\n\nSources: Academic Research, Industry Analysis, Expert Insights",
			Layout:  domain.LayoutBulletPoints,
		}
	}
}

// focusTitle renders a focus key as a display word ("case_studies" -> "Case Studies").
func focusTitle(focus string) string {
	words := strings.Split(focus, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func focusInsightSlide(focus string, topicTitle string) domain.Slide {
	display := focusTitle(focus)
	return domain.BulletSlide(
		fmt.Sprintf("%s Insights: %s", display, topicTitle),
		[]string{
			fmt.Sprintf("Key %s considerations for %s", focus, topicTitle),
			fmt.Sprintf("Best practices in %s implementation", focus),
			fmt.Sprintf("Challenges and solutions in %s", focus),
			fmt.Sprintf("Future trends in %s", focus),
			fmt.Sprintf("Industry examples of %s", focus),
			fmt.Sprintf("Recommendations for %s success", focus),
		},
	)
}

// buildVariation reshapes the topic's template data under a randomly chosen
// focus variant so repeated requests for the same topic stay textually
// distinct. The result is padded or truncated to exactly slideCount.
func buildVariation(library *Library, topic string, slideCount int, rng *rand.Rand) []domain.Slide {
	data := library.Lookup(topic)
	variant := defaultFocusVariants()[rng.Intn(len(defaultFocusVariants()))]

	slides := make([]domain.Slide, 0, slideCount)
	slides = append(slides, domain.TitleSlide(
		data.Title+variant.Suffix,
		fmt.Sprintf("An in-depth exploration of %s focusing on %s. This presentation covers key concepts, applications, and insights for understanding %s.",
			data.Title, variant.Focus, strings.ToLower(data.Title)),
	))

	for i := 1; i < slideCount; i++ {
		if i <= len(data.Slides) {
			tpl := data.Slides[i-1]
			tpl.Title = fmt.Sprintf("%s - %s", tpl.Title, focusTitle(variant.Focus))
			slides = append(slides, slideFromTemplate(tpl, topic))
		} else {
			slides = append(slides, focusInsightSlide(variant.Focus, data.Title))
		}
	}
	return slides[:slideCount]
}
