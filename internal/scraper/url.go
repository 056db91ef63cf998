package scraper

import (
	"fmt"
	"strings"

	"github.com/jobsift/jobsift/internal/models"
)

// buildSearchURL renders the locale's search URL. Parameter order is part
// of the page's expected shape: q, l, radius, limit, filter, then the
// remoteness fragment verbatim. Only the "get" method exists; the site's
// search form never answered to anything else.
func buildSearchURL(profile Profile, params models.SearchParams, method string) (string, error) {
	if strings.ToLower(strings.TrimSpace(method)) != "get" {
		return "", fmt.Errorf("%w: http method %q", ErrUnsupported, method)
	}

	return fmt.Sprintf(
		"%s?q=%s&l=%s&radius=%d&limit=%d&filter=%d%s",
		profile.SearchBase(),
		keywordQuery(params.Keywords),
		profile.Location(params.City, params.Province),
		quantizeRadius(params.Radius),
		params.PageSize,
		boolInt(params.Similar),
		remotenessQuery(params.Remoteness),
	), nil
}

// pageURL appends the listing offset for a zero-based result page.
func pageURL(searchURL string, page, size int) string {
	return fmt.Sprintf("%s&start=%d", searchURL, page*size)
}

// keywordQuery joins the search keywords with plus signs, escaping each
// one on its own so multi-word keywords survive.
func keywordQuery(keywords []string) string {
	parts := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		parts = append(parts, queryComponent(keyword))
	}
	return strings.Join(parts, "+")
}

// quantizeRadius snaps a search radius onto the steps the site accepts.
// Buckets are half-open: a radius of 12 belongs to [10,15) and becomes 10.
func quantizeRadius(radius int) int {
	switch {
	case radius < 5:
		return 0
	case radius < 10:
		return 5
	case radius < 15:
		return 10
	case radius < 25:
		return 15
	case radius < 50:
		return 25
	case radius < 100:
		return 50
	}
	return 100
}

func boolInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
