package scraper

import (
	"strings"

	"github.com/jobsift/jobsift/internal/models"
)

// Tokens the site embeds in its own remote-filter links. They are opaque,
// stable across locales and appended to the search URL verbatim.
const (
	fullyRemoteQuery       = "&remotejob=032b3046-06a3-4876-8dfd-474eb5e7ed11"
	temporarilyRemoteQuery = "&remotejob=7e3167e4-ccb4-49cb-b761-9bae564a0a63"
)

// remotenessQuery maps a remoteness preference onto the search URL
// fragment. The site only filters fully and temporarily remote listings;
// every other preference leaves the results unfiltered.
func remotenessQuery(preference models.Remoteness) string {
	switch preference {
	case models.RemotenessFull:
		return fullyRemoteQuery
	case models.RemotenessTemporary:
		return temporarilyRemoteQuery
	}
	return ""
}

// classifyRemoteness maps a listing's remote badge text onto a Remoteness.
func classifyRemoteness(label string) models.Remoteness {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "remote":
		return models.RemotenessFull
	case "temporarily remote":
		return models.RemotenessTemporary
	}
	return models.RemotenessUnknown
}
