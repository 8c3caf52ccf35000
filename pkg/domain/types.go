package domain

// SlideLayout enumerates the visual arrangements a slide can be rendered into.
type SlideLayout string

const (
	LayoutTitle            SlideLayout = "title"
	LayoutBulletPoints     SlideLayout = "bullet_points"
	LayoutTwoColumn        SlideLayout = "two_column"
	LayoutContentWithImage SlideLayout = "content_with_image"
)

// Layouts returns every supported layout in presentation order.
func Layouts() []SlideLayout {
	return []SlideLayout{LayoutTitle, LayoutBulletPoints, LayoutTwoColumn, LayoutContentWithImage}
}

// ParseSlideLayout maps a wire value to a layout, defaulting to bullet points
// for unknown values so malformed generator output degrades instead of failing.
func ParseSlideLayout(s string) SlideLayout {
	switch SlideLayout(s) {
	case LayoutTitle, LayoutBulletPoints, LayoutTwoColumn, LayoutContentWithImage:
		return SlideLayout(s)
	}
	return LayoutBulletPoints
}

type Theme string

const (
	ThemeModern    Theme = "modern"
	ThemeCorporate Theme = "corporate"
	ThemeCreative  Theme = "creative"
	ThemeMinimal   Theme = "minimal"
)

// Themes returns the available themes.
func Themes() []Theme {
	return []Theme{ThemeModern, ThemeCorporate, ThemeCreative, ThemeMinimal}
}

// ParseTheme maps a wire value to a theme. The second return reports whether
// the value was recognized; empty input parses as the modern default.
func ParseTheme(s string) (Theme, bool) {
	if s == "" {
		return ThemeModern, true
	}
	switch Theme(s) {
	case ThemeModern, ThemeCorporate, ThemeCreative, ThemeMinimal:
		return Theme(s), true
	}
	return ThemeModern, false
}

// ColorScheme holds the deck palette as hex strings.
type ColorScheme struct {
	PrimaryColor    string `json:"primary_color"`
	SecondaryColor  string `json:"secondary_color"`
	AccentColor     string `json:"accent_color"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
}

// DefaultColorScheme returns the palette used when the request omits one.
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		PrimaryColor:    "#2E86AB",
		SecondaryColor:  "#A23B72",
		AccentColor:     "#F18F01",
		BackgroundColor: "#FFFFFF",
		TextColor:       "#333333",
	}
}

// ColorSchemeFor returns the palette for a theme. Unknown themes get the
// default palette.
func ColorSchemeFor(theme Theme) ColorScheme {
	switch theme {
	case ThemeCorporate:
		return ColorScheme{
			PrimaryColor:    "#1B2A41",
			SecondaryColor:  "#3C6E71",
			AccentColor:     "#D9B310",
			BackgroundColor: "#FFFFFF",
			TextColor:       "#1C1C1C",
		}
	case ThemeCreative:
		return ColorScheme{
			PrimaryColor:    "#E63946",
			SecondaryColor:  "#457B9D",
			AccentColor:     "#F4A261",
			BackgroundColor: "#F1FAEE",
			TextColor:       "#1D3557",
		}
	case ThemeMinimal:
		return ColorScheme{
			PrimaryColor:    "#222222",
			SecondaryColor:  "#555555",
			AccentColor:     "#888888",
			BackgroundColor: "#FAFAFA",
			TextColor:       "#111111",
		}
	default:
		return DefaultColorScheme()
	}
}

// FontSettings holds the deck typography.
type FontSettings struct {
	TitleFont string `json:"title_font"`
	BodyFont  string `json:"body_font"`
	TitleSize int    `json:"title_size"`
	BodySize  int    `json:"body_size"`
}

// DefaultFontSettings returns the typography used when the request omits one.
func DefaultFontSettings() FontSettings {
	return FontSettings{
		TitleFont: "Arial",
		BodyFont:  "Calibri",
		TitleSize: 44,
		BodySize:  18,
	}
}

// Slide is one slide's content, tagged by layout. Only the fields relevant to
// the layout are expected to be populated; the renderer ignores the rest.
// The JSON shape matches what remote generators are asked to emit and what
// cache entries store verbatim.
type Slide struct {
	Title            string      `json:"title"`
	Content          string      `json:"content,omitempty"`
	BulletPoints     []string    `json:"bullet_points,omitempty"`
	LeftColumn       string      `json:"left_column,omitempty"`
	RightColumn      string      `json:"right_column,omitempty"`
	ImagePlaceholder string      `json:"image_placeholder,omitempty"`
	ImageRef         string      `json:"image_ref,omitempty"`
	Layout           SlideLayout `json:"layout"`
}

// TitleSlide builds a title-layout slide.
func TitleSlide(title, subtitle string) Slide {
	return Slide{Title: title, Content: subtitle, Layout: LayoutTitle}
}

// BulletSlide builds a bullet-points slide.
func BulletSlide(title string, bullets []string) Slide {
	return Slide{Title: title, BulletPoints: bullets, Layout: LayoutBulletPoints}
}

// TwoColumnSlide builds a two-column slide.
func TwoColumnSlide(title, left, right string) Slide {
	return Slide{Title: title, LeftColumn: left, RightColumn: right, Layout: LayoutTwoColumn}
}

// ImageSlide builds a content-with-image slide. The image reference is filled
// in later by the image resolver when one is configured.
func ImageSlide(title, content, placeholder string) Slide {
	return Slide{Title: title, Content: content, ImagePlaceholder: placeholder, Layout: LayoutContentWithImage}
}
