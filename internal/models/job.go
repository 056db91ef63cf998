package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Job is the normalized listing returned by the scrape engine.
type Job struct {
	KeyID       string     `json:"key_id,omitempty"`
	Locale      string     `json:"locale"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Tags        []string   `json:"tags,omitempty"`
	Remoteness  Remoteness `json:"remoteness,omitempty"`
	Wage        string     `json:"wage,omitempty"`
	URL         string     `json:"url,omitempty"`
	Description string     `json:"description,omitempty"`
	PostedAt    time.Time  `json:"posted_at,omitempty"`
	PostedAtRaw string     `json:"posted_at_raw,omitempty"`
	Incomplete  bool       `json:"incomplete,omitempty"`

	// Raw holds the parsed detail page while set-phase fields run.
	Raw *goquery.Document `json:"-"`
}

// JobField names one populatable attribute of a Job.
type JobField string

const (
	FieldTitle       JobField = "title"
	FieldCompany     JobField = "company"
	FieldLocation    JobField = "location"
	FieldTags        JobField = "tags"
	FieldRemoteness  JobField = "remoteness"
	FieldWage        JobField = "wage"
	FieldPostDate    JobField = "post_date"
	FieldKeyID       JobField = "key_id"
	FieldURL         JobField = "url"
	FieldRaw         JobField = "raw"
	FieldDescription JobField = "description"
)

// AllJobFields lists every field in canonical population order.
func AllJobFields() []JobField {
	return []JobField{
		FieldTitle, FieldCompany, FieldLocation, FieldTags,
		FieldRemoteness, FieldWage, FieldPostDate, FieldKeyID,
		FieldURL, FieldRaw, FieldDescription,
	}
}

func ParseJobField(value string) (JobField, error) {
	field := JobField(strings.ToLower(strings.TrimSpace(value)))
	switch field {
	case FieldTitle, FieldCompany, FieldLocation, FieldTags,
		FieldRemoteness, FieldWage, FieldPostDate, FieldKeyID,
		FieldURL, FieldRaw, FieldDescription:
		return field, nil
	}
	return "", fmt.Errorf("unknown job field: %s", value)
}

func ParseJobFields(values []string) ([]JobField, error) {
	fields := make([]JobField, 0, len(values))
	seen := map[JobField]struct{}{}
	for _, value := range values {
		field, err := ParseJobField(value)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		fields = append(fields, field)
	}
	return fields, nil
}

// Remoteness classifies how remote-friendly a listing is.
type Remoteness string

const (
	RemotenessUnknown   Remoteness = "unknown"
	RemotenessInPerson  Remoteness = "in-person"
	RemotenessTemporary Remoteness = "temporarily-remote"
	RemotenessPartial   Remoteness = "partially-remote"
	RemotenessFull      Remoteness = "fully-remote"
	RemotenessAny       Remoteness = "any"
)

func ParseRemoteness(value string) (Remoteness, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	switch Remoteness(normalized) {
	case RemotenessUnknown, RemotenessInPerson, RemotenessTemporary,
		RemotenessPartial, RemotenessFull, RemotenessAny:
		return Remoteness(normalized), nil
	case "remote":
		return RemotenessFull, nil
	case "office", "onsite", "on-site":
		return RemotenessInPerson, nil
	}
	return "", fmt.Errorf("unknown remoteness: %s", value)
}
