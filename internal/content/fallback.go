package content

import (
	"fmt"
	"sort"
	"strings"

	"slidecraft/pkg/domain"
)

// defaultLayoutRotation is used when the request carries no layout preference.
func defaultLayoutRotation() []domain.SlideLayout {
	return []domain.SlideLayout{domain.LayoutTitle, domain.LayoutBulletPoints, domain.LayoutTwoColumn}
}

// layoutAt cycles through the preferred layouts when fewer were given than
// slides requested.
func layoutAt(layouts []domain.SlideLayout, i int) domain.SlideLayout {
	if len(layouts) == 0 {
		layouts = defaultLayoutRotation()
	}
	return layouts[i%len(layouts)]
}

// buildFromTemplates is the final tier: pure static data construction with no
// I/O, so it cannot fail. It emits a title slide, one slide per canned
// definition, pads with insight slides built from the template's statistics,
// trends and key players, and truncates to the exact requested count.
func buildFromTemplates(library *Library, topic string, slideCount int) []domain.Slide {
	data := library.Lookup(topic)

	slides := make([]domain.Slide, 0, slideCount)
	slides = append(slides, domain.TitleSlide(
		data.Title+" - Comprehensive Overview",
		fmt.Sprintf("An in-depth exploration of %s and its impact on modern technology and business", data.Title),
	))
	for _, tpl := range data.Slides {
		slides = append(slides, slideFromTemplate(tpl, topic))
	}
	for len(slides) < slideCount {
		slides = append(slides, templateInsightSlide(data))
	}
	return slides[:slideCount]
}

// templateInsightSlide builds a generic padding slide from the aggregate
// template data.
func templateInsightSlide(data TopicTemplate) domain.Slide {
	bullets := make([]string, 0, 6)
	if len(data.Trends) > 0 {
		bullets = append(bullets, fmt.Sprintf("Emerging trends in %s: %s", data.Title, strings.Join(data.Trends, ", ")))
	}
	if len(data.KeyPlayers) > 0 {
		bullets = append(bullets, fmt.Sprintf("Key players shaping %s: %s", data.Title, strings.Join(data.KeyPlayers, ", ")))
	}
	statKeys := make([]string, 0, len(data.Statistics))
	for k := range data.Statistics {
		statKeys = append(statKeys, k)
	}
	sort.Strings(statKeys)
	for _, k := range statKeys {
		bullets = append(bullets, fmt.Sprintf("%s: %s", focusTitle(k), data.Statistics[k]))
	}
	if len(bullets) == 0 {
		bullets = append(bullets,
			fmt.Sprintf("Emerging trends in %s", data.Title),
			"Industry best practices",
			"Future developments and innovations",
			"Strategic recommendations",
		)
	}
	return domain.BulletSlide(fmt.Sprintf("Additional Insights on %s", data.Title), citeBullets(bullets))
}

// mockSlide builds a deterministic slide of the given layout referencing the
// topic. Used to pad short generator output to the requested count.
func mockSlide(topic string, layout domain.SlideLayout) domain.Slide {
	switch layout {
	case domain.LayoutTitle:
		return domain.TitleSlide(
			fmt.Sprintf("%s - Comprehensive Overview", topic),
			fmt.Sprintf("An in-depth exploration of %s", topic),
		)
	case domain.LayoutTwoColumn:
		return domain.TwoColumnSlide(
			fmt.Sprintf("%s Technologies and Applications", topic),
			"Core Technologies:\n\n• Fundamental concepts\n• Basic terminology\n• Essential frameworks\n• Key methodologies",
			"Real-World Applications:\n\n• Industry use cases\n• Success stories\n• Implementation examples\n• Best practices",
		)
	case domain.LayoutContentWithImage:
		return domain.ImageSlide(
			fmt.Sprintf("%s Implementation Strategy", topic),
			fmt.Sprintf("Strategic approach to implementing %s in modern organizations", topic),
			fmt.Sprintf("%s implementation roadmap diagram showing phases and milestones", topic),
		)
	default:
		return domain.BulletSlide(
			fmt.Sprintf("Understanding %s", topic),
			[]string{
				fmt.Sprintf("Definition and scope of %s", topic),
				"Historical background and development",
				"Current trends and applications",
				"Future prospects and challenges",
			},
		)
	}
}

// conform pads or truncates slides to exactly slideCount and guarantees the
// first slide renders as a title slide.
func conform(slides []domain.Slide, topic string, slideCount int, layouts []domain.SlideLayout) []domain.Slide {
	if len(slides) == 0 {
		slides = append(slides, mockSlide(topic, domain.LayoutTitle))
	}
	for len(slides) < slideCount {
		slides = append(slides, mockSlide(topic, layoutAt(layouts, len(slides))))
	}
	slides = slides[:slideCount]
	slides[0].Layout = domain.LayoutTitle
	return slides
}
