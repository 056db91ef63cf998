package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jobsift/jobsift/internal/models"
)

const (
	// DefaultPageSize is the largest listing count the site serves per page.
	DefaultPageSize = 50

	// DefaultWorkers bounds the page and listing pools when the caller
	// does not say otherwise.
	DefaultWorkers = 8
)

// Options tune a single Engine.
type Options struct {
	// Fields selects which record fields get populated; empty means all.
	Fields []models.JobField
	// MaxPages caps the result pages fetched per search; zero is uncapped.
	MaxPages int
	// Workers bounds the concurrent page and listing fetches.
	Workers int
	// Delay spaces out the delayed detail-page fetches.
	Delay time.Duration
	// Parser names the html parsing backend, default "net/html".
	Parser string
	// Strict turns partial page failures into scrape failures.
	Strict bool
	Logger zerolog.Logger
}

// Engine scrapes one locale's job listings into normalized records.
type Engine struct {
	session Session
	profile Profile
	parse   parseFunc
	log     zerolog.Logger
	limiter *rate.Limiter
	headers map[string]string
	now     func() time.Time

	getFields []fieldHandler
	setFields []fieldHandler
	maxPages  int
	workers   int
	strict    bool
}

// New builds an engine for the given locale. The requested field set is
// validated here: unknown fields and set-phase fields whose dependency is
// not part of the set are rejected before any request goes out.
func New(session Session, locale string, opts Options) (*Engine, error) {
	if session == nil {
		return nil, errors.New("scraper: nil session")
	}
	profile, err := LocaleFor(locale)
	if err != nil {
		return nil, err
	}
	parse, err := parserBackend(opts.Parser)
	if err != nil {
		return nil, err
	}

	fields := opts.Fields
	if len(fields) == 0 {
		fields = models.AllJobFields()
	}
	getFields, setFields, err := planFields(fields)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var limiter *rate.Limiter
	if opts.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Delay), 1)
	}

	return &Engine{
		session:   session,
		profile:   profile,
		parse:     parse,
		log:       opts.Logger.With().Str("locale", profile.ID).Logger(),
		limiter:   limiter,
		headers:   baseHeaders(profile),
		now:       time.Now,
		getFields: getFields,
		setFields: setFields,
		maxPages:  opts.MaxPages,
		workers:   workers,
		strict:    opts.Strict,
	}, nil
}

// Locale returns the engine's locale identifier.
func (e *Engine) Locale() string {
	return e.profile.ID
}

// SearchURL renders the search URL for the given parameters. Only the
// "get" method is supported.
func (e *Engine) SearchURL(params models.SearchParams, method string) (string, error) {
	if params.PageSize <= 0 {
		params.PageSize = DefaultPageSize
	}
	return buildSearchURL(e.profile, params, method)
}

// Scrape runs the whole pipeline for one search: URL, result count, page
// fetches, two-phase field population. Failed pages and dropped listings
// degrade the result set; the records that survive come back together
// with the joined page errors unless Strict made those fatal.
func (e *Engine) Scrape(ctx context.Context, params models.SearchParams) ([]models.Job, error) {
	if params.PageSize <= 0 {
		params.PageSize = DefaultPageSize
	}
	if params.Remoteness == models.RemotenessPartial {
		e.log.Warn().Msg("partially-remote filtering is not available; listings are not filtered")
	}

	searchURL, err := buildSearchURL(e.profile, params, "get")
	if err != nil {
		return nil, err
	}

	total, err := e.resolveResultCount(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoResults, searchURL)
	}

	pages := pageCount(total, params.PageSize, e.maxPages)
	e.log.Info().
		Int("results", total).
		Int("pages", pages).
		Str("query", keywordQuery(params.Keywords)).
		Msg("resolved search results")

	fragments, pageErr := e.fetchFragments(ctx, searchURL, pages, params.PageSize)
	if pageErr != nil && e.strict {
		return nil, pageErr
	}

	jobs := e.populate(ctx, fragments)
	e.log.Info().Int("listings", len(fragments)).Int("records", len(jobs)).Msg("scrape finished")
	return jobs, pageErr
}

// baseHeaders is built once per engine and shared read-only across all
// request workers; the session adds the user agent.
func baseHeaders(profile Profile) map[string]string {
	return map[string]string{
		"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"accept-language":           profile.Language,
		"cache-control":             "no-cache",
		"referer":                   profile.Referer(),
		"upgrade-insecure-requests": "1",
	}
}
