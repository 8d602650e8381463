package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonathan/hiring-panel/internal/fetch"
)

// Errors returned by FromURL
var (
	ErrFetchFailed      = errors.New("job posting fetch failed")
	ErrExtractionFailed = errors.New("job posting text extraction failed")
)

// URLOptions configures FromURL
type URLOptions struct {
	// UseBrowser re-renders client-side postings in headless Chrome when the HTTP
	// response yields too little text
	UseBrowser bool
	Fetch      *fetch.Options
	Logger     *slog.Logger
	// render is swapped in tests
	render func(ctx context.Context, url string) (string, error)
}

// FromURL downloads a job posting and returns its cleaned text.
func FromURL(ctx context.Context, rawURL string, opts URLOptions) (*Document, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	platform := fetch.DetectPlatform(rawURL)
	logger.DebugContext(ctx, "fetching job posting", "url", rawURL, "platform", platform)

	page, err := fetch.Get(ctx, rawURL, opts.Fetch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	text := page.HTML
	if page.IsHTML() {
		content, noise := fetch.JobSelectors(rawURL)
		text, err = fetch.ExtractText(page.HTML, content, noise...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
		}

		if opts.UseBrowser && fetch.NeedsBrowser(text) {
			render := opts.render
			if render == nil {
				render = func(ctx context.Context, u string) (string, error) {
					return fetch.Render(ctx, u, fetch.DefaultTimeout, logger)
				}
			}
			logger.InfoContext(ctx, "posting text too short, rendering in browser", "chars", len(text))
			if html, rerr := render(ctx, rawURL); rerr != nil {
				logger.WarnContext(ctx, "browser rendering failed, keeping HTTP text", "error", rerr)
			} else if rendered, xerr := fetch.ExtractText(html, content, noise...); xerr == nil {
				text = rendered
			}
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%s: %w", rawURL, ErrEmpty)
	}
	doc := newDocument(rawURL, cleaned)
	doc.Platform = string(platform)
	logger.InfoContext(ctx, "job posting ingested", "url", rawURL, "platform", platform, "chars", len(cleaned))
	return doc, nil
}
