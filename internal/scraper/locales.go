package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	LocaleCanada  = "ca"
	LocaleUSA     = "us"
	LocaleUK      = "uk"
	LocaleFrance  = "fr"
	LocaleGermany = "de"
)

// CountRule describes how a locale reads the total result count out of the
// banner text: which pattern to apply, which successive match to keep,
// which thousands separator to strip and whether the text needs a unicode
// compatibility pass first.
type CountRule struct {
	Pattern   *regexp.Regexp
	Match     int
	Thousands string
	NFKD      bool
}

// Profile carries everything that varies between locales: the host, the
// accept-language header, the location component of the search URL and the
// count rule. The scraping algorithm itself is shared.
type Profile struct {
	ID       string
	Host     string
	Language string
	Location func(city, province string) string
	Count    CountRule
}

func (p Profile) SearchBase() string {
	return fmt.Sprintf("https://%s/jobs", p.Host)
}

func (p Profile) Referer() string {
	return fmt.Sprintf("https://%s/", p.Host)
}

func (p Profile) DetailURL(keyID string) string {
	return fmt.Sprintf("http://%s/viewjob?jk=%s", p.Host, keyID)
}

var (
	countEnglish = CountRule{Pattern: regexp.MustCompile(`f (\d+) `), Match: 0, Thousands: ","}
	countFrench  = CountRule{Pattern: regexp.MustCompile(`(\d+) `), Match: 1, Thousands: ",", NFKD: true}
	countGerman  = CountRule{Pattern: regexp.MustCompile(`(\d+)`), Match: 1, Thousands: "."}
)

var localeProfiles = map[string]Profile{
	LocaleCanada: {
		ID:       LocaleCanada,
		Host:     "www.indeed.ca",
		Language: "en-CA,en;q=0.9",
		Location: locationCityProvince,
		Count:    countEnglish,
	},
	LocaleUSA: {
		ID:       LocaleUSA,
		Host:     "www.indeed.com",
		Language: "en-US,en;q=0.9",
		Location: locationCityProvince,
		Count:    countEnglish,
	},
	LocaleUK: {
		ID:       LocaleUK,
		Host:     "www.indeed.co.uk",
		Language: "en-GB,en;q=0.9",
		Location: locationCityOnly,
		Count:    countEnglish,
	},
	LocaleFrance: {
		ID:       LocaleFrance,
		Host:     "www.indeed.fr",
		Language: "fr-FR,fr;q=0.9,en;q=0.5",
		Location: locationCityParens,
		Count:    countFrench,
	},
	LocaleGermany: {
		ID:       LocaleGermany,
		Host:     "de.indeed.com",
		Language: "de-DE,de;q=0.9,en;q=0.5",
		Location: locationCityOnly,
		Count:    countGerman,
	},
}

// LocaleFor resolves a locale identifier to its profile.
func LocaleFor(id string) (Profile, error) {
	profile, ok := localeProfiles[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Profile{}, fmt.Errorf("%w: locale %q", ErrUnsupported, id)
	}
	return profile, nil
}

// Locales lists the supported locale identifiers in stable order.
func Locales() []string {
	return []string{LocaleCanada, LocaleUSA, LocaleUK, LocaleFrance, LocaleGermany}
}

// locationCityProvince renders "city%2C+PROVINCE", the default layout.
func locationCityProvince(city, province string) string {
	loc := queryComponent(city)
	if province = strings.TrimSpace(province); province != "" {
		loc += "%2C+" + queryComponent(strings.ToUpper(province))
	}
	return loc
}

// locationCityOnly renders just the city; uk and de take no region.
func locationCityOnly(city, _ string) string {
	return queryComponent(city)
}

// locationCityParens renders "city+%28PROVINCE%29", the fr layout.
func locationCityParens(city, province string) string {
	loc := queryComponent(city)
	if province = strings.TrimSpace(province); province != "" {
		loc += "+%28" + queryComponent(strings.ToUpper(province)) + "%29"
	}
	return loc
}

func queryComponent(value string) string {
	return url.QueryEscape(strings.TrimSpace(value))
}
