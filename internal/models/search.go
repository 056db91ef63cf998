package models

// SearchParams captures the normalized search inputs used by the engine.
type SearchParams struct {
	Keywords   []string
	City       string
	Province   string
	Locale     string
	Radius     int
	Remoteness Remoteness
	Similar    bool
	PageSize   int
}
