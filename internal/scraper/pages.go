package scraper

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/jobsift/jobsift/internal/models"
)

// resolveResultCount fetches the base results page and reads the total
// listing count out of the count banner with the locale's rule.
func (e *Engine) resolveResultCount(ctx context.Context, searchURL string) (int, error) {
	doc, err := e.fetchDocument(ctx, searchURL)
	if err != nil {
		return 0, err
	}
	e.log.Debug().Str("url", searchURL).Msg("fetched base results page")
	return countResults(doc, e.profile.Count, searchURL)
}

func countResults(doc *goquery.Document, rule CountRule, searchURL string) (int, error) {
	marker := doc.Find("#searchCountPages")
	if marker.Length() == 0 {
		return 0, fmt.Errorf("%w: count marker missing at %s", ErrPageFormat, searchURL)
	}

	text := firstTextChunk(marker.First())
	if rule.NFKD {
		text = norm.NFKD.String(text)
	}
	if rule.Thousands != "" {
		text = strings.ReplaceAll(text, rule.Thousands, "")
	}

	matches := rule.Pattern.FindAllStringSubmatch(text, -1)
	if len(matches) <= rule.Match {
		return 0, fmt.Errorf("%w: %q at %s", ErrNoResults, text, searchURL)
	}
	total, err := strconv.Atoi(matches[rule.Match][1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q at %s", ErrNoResults, text, searchURL)
	}
	return total, nil
}

// firstTextChunk returns the element's first non-empty direct text node.
// The banner nests pagination links after the count text, so the full
// subtree text would drag those in.
func firstTextChunk(s *goquery.Selection) string {
	for _, node := range s.Nodes {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != xhtml.TextNode {
				continue
			}
			if text := strings.TrimSpace(child.Data); text != "" {
				return text
			}
		}
	}
	return strings.TrimSpace(s.Text())
}

// pageCount derives how many result pages to fetch. A maxPages of zero
// leaves the count uncapped.
func pageCount(total, size, maxPages int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	pages := (total + size - 1) / size
	if maxPages > 0 && pages > maxPages {
		return maxPages
	}
	return pages
}

type pageResult struct {
	page      int
	fragments []*goquery.Selection
	err       error
}

// fetchFragments pulls every result page through a bounded worker pool and
// returns the listing fragments in page order. Failed pages degrade the
// result set; their errors come back joined.
func (e *Engine) fetchFragments(ctx context.Context, searchURL string, pages, size int) ([]*goquery.Selection, error) {
	if pages <= 0 {
		return nil, nil
	}

	pageCh := make(chan int)
	results := make(chan pageResult, pages)

	var wg sync.WaitGroup
	for worker := 0; worker < e.workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range pageCh {
				fragments, err := e.fetchPage(ctx, searchURL, page, size)
				results <- pageResult{page: page, fragments: fragments, err: err}
			}
		}()
	}

	go func() {
		defer close(pageCh)
		for page := 0; page < pages; page++ {
			select {
			case pageCh <- page:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	byPage := make([][]*goquery.Selection, pages)
	var errs []error
	for result := range results {
		if result.err != nil {
			e.log.Warn().Int("page", result.page).Err(result.err).Msg("results page failed")
			errs = append(errs, fmt.Errorf("page %d: %w", result.page, result.err))
			continue
		}
		byPage[result.page] = result.fragments
	}

	var fragments []*goquery.Selection
	for _, pageFragments := range byPage {
		fragments = append(fragments, pageFragments...)
	}
	return fragments, errors.Join(errs...)
}

func (e *Engine) fetchPage(ctx context.Context, searchURL string, page, size int) ([]*goquery.Selection, error) {
	doc, err := e.fetchDocument(ctx, pageURL(searchURL, page, size))
	if err != nil {
		return nil, err
	}

	var fragments []*goquery.Selection
	doc.Find("div[data-tn-component='organicJob']").Each(func(_ int, s *goquery.Selection) {
		fragments = append(fragments, s)
	})
	e.log.Debug().Int("page", page).Int("listings", len(fragments)).Msg("fetched results page")
	return fragments, nil
}

// populate turns listing fragments into records through the same bounded
// pool, merging over a channel so no worker shares a result slice.
func (e *Engine) populate(ctx context.Context, fragments []*goquery.Selection) []models.Job {
	if len(fragments) == 0 {
		return nil
	}

	type recordResult struct {
		index int
		job   models.Job
		ok    bool
	}

	indexCh := make(chan int)
	results := make(chan recordResult, len(fragments))

	var wg sync.WaitGroup
	for worker := 0; worker < e.workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range indexCh {
				job, err := e.populateOne(ctx, fragments[index])
				if err != nil {
					e.log.Warn().Int("listing", index).Err(err).Msg("listing dropped")
					results <- recordResult{index: index}
					continue
				}
				results <- recordResult{index: index, job: job, ok: true}
			}
		}()
	}

	go func() {
		defer close(indexCh)
		for index := range fragments {
			select {
			case indexCh <- index:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]*models.Job, len(fragments))
	for result := range results {
		if result.ok {
			job := result.job
			ordered[result.index] = &job
		}
	}

	jobs := make([]models.Job, 0, len(fragments))
	for _, job := range ordered {
		if job != nil {
			jobs = append(jobs, *job)
		}
	}
	return jobs
}
