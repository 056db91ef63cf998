package scraper

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Session issues the engine's HTTP GETs. Implementations own connection
// reuse, user-agent rotation and proxying; the engine only supplies the
// target URL and per-request headers.
type Session interface {
	Get(ctx context.Context, target string, headers map[string]string) (int, io.ReadCloser, error)
}

type parseFunc func(io.Reader) (*goquery.Document, error)

// parserBackends maps the configurable html_parser name onto a document
// constructor. net/html is goquery's own parser and the only backend
// compiled in.
var parserBackends = map[string]parseFunc{
	"net/html": goquery.NewDocumentFromReader,
}

func parserBackend(name string) (parseFunc, error) {
	if name == "" {
		name = "net/html"
	}
	parse, ok := parserBackends[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: html parser %q", ErrUnsupported, name)
	}
	return parse, nil
}

func (e *Engine) fetchDocument(ctx context.Context, target string) (*goquery.Document, error) {
	status, body, err := e.session.Get(ctx, target, e.headers)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer body.Close()

	if status >= 400 {
		return nil, fmt.Errorf("fetch %s: http %d", target, status)
	}

	reader, err := charset.NewReader(body, "")
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", target, err)
	}
	doc, err := e.parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", target, err)
	}
	return doc, nil
}

func cleanText(value string) string {
	value = html.UnescapeString(value)
	return strings.Join(strings.Fields(value), " ")
}
