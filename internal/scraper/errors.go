package scraper

import "errors"

var (
	// ErrUnsupported flags a request the engine cannot serve: an unknown
	// locale, field, parser backend or HTTP method.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrNoResults means the results page parsed but yielded no count.
	ErrNoResults = errors.New("no results found")

	// ErrPageFormat means the count marker is gone from the results page.
	ErrPageFormat = errors.New("results page format changed")

	// ErrFieldNotFound means a listing fragment is missing the element a
	// get-phase field reads from.
	ErrFieldNotFound = errors.New("field source not found")

	// ErrMissingDependency means a set-phase field ran before the field it
	// depends on was populated.
	ErrMissingDependency = errors.New("field dependency not resolved")

	// ErrDateFormat means a posting date string matched no known form.
	ErrDateFormat = errors.New("unrecognized date format")
)
