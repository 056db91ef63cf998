package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/muesli/termenv"

	"github.com/jobsift/jobsift/internal/models"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

func WriteJobs(w io.Writer, jobs []models.Job, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, jobs)
	case FormatCSV:
		return writeCSV(w, jobs, ',')
	case FormatTSV:
		return writeCSV(w, jobs, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, jobs)
	default:
		return writeTable(w, jobs, opts)
	}
}

func writeJSON(w io.Writer, jobs []models.Job) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jobs)
}

func writeCSV(w io.Writer, jobs []models.Job, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(csvHeader()); err != nil {
		return err
	}
	for _, job := range jobs {
		if err := writer.Write(csvRow(job)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, jobs []models.Job, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(), "\t"))
	output := termenv.NewOutput(w)
	for _, job := range jobs {
		fmt.Fprintln(tw, strings.Join(tableRow(job, output, opts), "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, jobs []models.Job) error {
	if len(jobs) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, job := range jobs {
		urlLine := "  URL: -"
		if url := safe(job.URL); url != "" {
			urlLine = fmt.Sprintf("  URL: [Open listing](<%s>)", url)
		}
		lines := []string{
			fmt.Sprintf("- **%s** (%s)", safe(job.Title), safe(job.Company)),
			fmt.Sprintf("  Location: %s", safe(job.Location)),
			fmt.Sprintf("  Locale: %s", safe(job.Locale)),
			urlLine,
		}
		if job.Remoteness != "" && job.Remoteness != models.RemotenessUnknown {
			lines = append(lines, fmt.Sprintf("  Remoteness: %s", job.Remoteness))
		}
		if job.Wage != "" {
			lines = append(lines, fmt.Sprintf("  Wage: %s", safe(job.Wage)))
		}
		if len(job.Tags) > 0 {
			lines = append(lines, fmt.Sprintf("  Tags: %s", strings.Join(job.Tags, ", ")))
		}
		if !job.PostedAt.IsZero() {
			lines = append(lines, fmt.Sprintf("  Posted: %s", job.PostedAt.Format(time.RFC3339)))
		}
		if job.PostedAtRaw != "" {
			lines = append(lines, fmt.Sprintf("  Posted (raw): %s", safe(job.PostedAtRaw)))
		}
		if job.Description != "" {
			lines = append(lines, fmt.Sprintf("  Summary: %s", truncate(safe(job.Description), 240)))
		}
		if job.Incomplete {
			lines = append(lines, "  Incomplete: some fields failed to populate")
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func csvHeader() []string {
	return []string{
		"locale",
		"key_id",
		"title",
		"company",
		"location",
		"url",
		"remoteness",
		"wage",
		"tags",
		"posted_at",
		"posted_at_raw",
		"description",
		"incomplete",
	}
}

func csvRow(job models.Job) []string {
	posted := ""
	if !job.PostedAt.IsZero() {
		posted = job.PostedAt.Format(time.RFC3339)
	}
	return []string{
		job.Locale,
		job.KeyID,
		job.Title,
		job.Company,
		job.Location,
		job.URL,
		string(job.Remoteness),
		job.Wage,
		strings.Join(job.Tags, "; "),
		posted,
		job.PostedAtRaw,
		job.Description,
		boolString(job.Incomplete),
	}
}

func boolString(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

func truncate(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return strings.TrimSpace(value[:max]) + "..."
}

func tableHeader() []string {
	return []string{
		"locale",
		"title",
		"company",
		"location",
		"url",
	}
}

func tableRow(job models.Job, output *termenv.Output, opts WriteOptions) []string {
	const linkColor = "#87CEEB"

	url := safe(job.URL)
	displayURL := "-"
	if url != "" {
		displayURL = url
		if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
			displayURL = shortURLLabel(url)
		}
		if opts.ColorEnabled {
			displayURL = output.String(displayURL).Foreground(output.Color(linkColor)).String()
		}
		if opts.Hyperlinks {
			displayURL = hyperlink(url, displayURL)
		}
	}
	return []string{
		safe(job.Locale),
		safe(job.Title),
		safe(job.Company),
		safe(job.Location),
		displayURL,
	}
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = raw
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}
	return label
}
