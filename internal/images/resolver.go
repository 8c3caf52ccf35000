// Package images fills in image references for slides that want one. Stock
// photo providers are tried in order; when none is configured or none has a
// match, a generated SVG placeholder keeps the deck self-contained.
package images

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"slidecraft/internal/util"
	"slidecraft/pkg/domain"
)

const (
	defaultUnsplashBaseURL = "https://api.unsplash.com"
	defaultPexelsBaseURL   = "https://api.pexels.com"

	searchTimeout       = 10 * time.Second
	maxConcurrentSearch = 4
)

// Provider finds one image URL for a query. An empty URL with nil error means
// "no match", which is not a failure.
type Provider interface {
	Search(ctx context.Context, query string) (string, error)
}

// Resolver tries each provider in order and falls back to an inline SVG
// placeholder when none produces a URL.
type Resolver struct {
	providers []Provider
	colors    domain.ColorScheme
}

// NewResolver builds a resolver over the given providers, in priority order.
func NewResolver(colors domain.ColorScheme, providers ...Provider) *Resolver {
	active := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			active = append(active, p)
		}
	}
	return &Resolver{providers: active, colors: colors}
}

// Resolve fills ImageRef on every content-with-image slide, querying providers
// concurrently across slides. Slides are mutated in place; provider failures
// degrade to the placeholder and never fail the deck.
func (r *Resolver) Resolve(ctx context.Context, slides []domain.Slide) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSearch)
	for i := range slides {
		if slides[i].Layout != domain.LayoutContentWithImage || slides[i].ImageRef != "" {
			continue
		}
		slide := &slides[i]
		g.Go(func() error {
			slide.ImageRef = r.resolveOne(ctx, slide.ImagePlaceholder)
			return nil
		})
	}
	g.Wait()
}

func (r *Resolver) resolveOne(ctx context.Context, query string) string {
	logger := util.LoggerFromContext(ctx)
	if query == "" {
		query = "abstract background"
	}
	for _, p := range r.providers {
		url, err := p.Search(ctx, query)
		if err != nil {
			logger.Warn("image provider failed", "query", query, "err", err)
			continue
		}
		if url != "" {
			return url
		}
	}
	return placeholderSVG(query, r.colors)
}

// placeholderSVG renders the query as a data URI so the reference works with
// no network and no provider credentials.
func placeholderSVG(label string, colors domain.ColorScheme) string {
	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="800" height="450"><rect width="800" height="450" fill="%s"/><rect x="8" y="8" width="784" height="434" fill="none" stroke="%s" stroke-width="4"/><text x="400" y="230" font-family="sans-serif" font-size="24" fill="%s" text-anchor="middle">%s</text></svg>`,
		colors.BackgroundColor, colors.SecondaryColor, colors.TextColor, xmlEscape(label))
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

var svgEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func xmlEscape(s string) string {
	return svgEscaper.Replace(s)
}

// UnsplashProvider queries the Unsplash search API.
type UnsplashProvider struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
}

// NewUnsplashProvider returns nil when no access key is configured so callers
// can pass the result straight to NewResolver.
func NewUnsplashProvider(accessKey string) *UnsplashProvider {
	if accessKey == "" {
		return nil
	}
	return &UnsplashProvider{
		baseURL:    defaultUnsplashBaseURL,
		accessKey:  accessKey,
		httpClient: &http.Client{Timeout: searchTimeout},
	}
}

func (p *UnsplashProvider) Search(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("%s/search/photos?query=%s&per_page=1", p.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+p.accessKey)
	var out struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
			} `json:"urls"`
		} `json:"results"`
	}
	if err := doJSON(p.httpClient, req, &out); err != nil {
		return "", fmt.Errorf("unsplash search: %w", err)
	}
	if len(out.Results) == 0 {
		return "", nil
	}
	return out.Results[0].URLs.Regular, nil
}

// PexelsProvider queries the Pexels search API.
type PexelsProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPexelsProvider returns nil when no API key is configured.
func NewPexelsProvider(apiKey string) *PexelsProvider {
	if apiKey == "" {
		return nil
	}
	return &PexelsProvider{
		baseURL:    defaultPexelsBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: searchTimeout},
	}
}

func (p *PexelsProvider) Search(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/search?query=%s&per_page=1", p.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", p.apiKey)
	var out struct {
		Photos []struct {
			Src struct {
				Large string `json:"large"`
			} `json:"src"`
		} `json:"photos"`
	}
	if err := doJSON(p.httpClient, req, &out); err != nil {
		return "", fmt.Errorf("pexels search: %w", err)
	}
	if len(out.Photos) == 0 {
		return "", nil
	}
	return out.Photos[0].Src.Large, nil
}

func doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
