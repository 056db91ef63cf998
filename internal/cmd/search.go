package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"github.com/jobsift/jobsift/internal/config"
	"github.com/jobsift/jobsift/internal/export"
	"github.com/jobsift/jobsift/internal/models"
	"github.com/jobsift/jobsift/internal/network"
	"github.com/jobsift/jobsift/internal/scraper"
	"github.com/jobsift/jobsift/internal/seen"
)

type SearchCmd struct {
	Keywords string `arg:"" optional:"" help:"Search keywords (comma-separated). Optional when --query-file is provided."`
	SearchOptions
}

type SearchOptions struct {
	City       string `help:"Search city." env:"JOBSIFT_DEFAULT_CITY"`
	Province   string `help:"Province or state code." env:"JOBSIFT_DEFAULT_PROVINCE"`
	Locale     string `help:"Site locale: ca, us, uk, fr, de." env:"JOBSIFT_DEFAULT_LOCALE"`
	Radius     int    `help:"Search radius; snapped to the steps the site accepts." default:"-1"`
	Remote     string `help:"Remoteness filter: any, in-person, temporarily-remote, partially-remote, fully-remote." default:""`
	Similar    bool   `help:"Include similar results (the site's filter=1)."`
	Fields     string `help:"Comma-separated record fields to populate (default: all)."`
	Max        int    `help:"Maximum results emitted; 0 keeps everything."`
	PageSize   int    `help:"Listings requested per results page."`
	MaxPages   int    `help:"Maximum result pages fetched per query; 0 is uncapped."`
	Workers    int    `help:"Concurrent page and listing fetches."`
	Delay      int    `help:"Milliseconds between detail-page fetches."`
	Strict     bool   `help:"Fail the search when any results page fails."`
	Format     string `help:"Output format: csv, json, md." enum:",csv,json,md" default:""`
	Links      string `help:"Table link display: short or full." enum:"short,full" default:"full"`
	Output     string `name:"output" short:"o" help:"Write output to a file."`
	Out        string `name:"out" help:"Alias for --output."`
	File       string `name:"file" help:"Alias for --output."`
	Proxies    string `help:"Comma-separated proxy URLs." env:"JOBSIFT_PROXIES"`
	QueryFile  string `help:"Path to JSON file with keyword sets (top-level string array or object with keywords array)."`
	Seen       string `help:"Path to seen jobs JSON file; defaults to the one under the config dir."`
	NewOnly    bool   `help:"Output only unseen jobs."`
	NewOut     string `help:"Write unseen jobs JSON to a file."`
	SeenUpdate bool   `help:"Merge newly discovered unseen jobs into the seen history after the search."`
}

const maxQueries = 10

func (s *SearchCmd) Run(ctx *Context) error {
	return runSearch(ctx, s.Keywords, s.SearchOptions)
}

func runSearch(ctx *Context, keywordsArg string, opts SearchOptions) error {
	queries, err := resolveQueries(keywordsArg, opts.QueryFile)
	if err != nil {
		return err
	}

	cfg := ctx.Config
	remoteness, err := resolveRemoteness(firstNonEmpty(opts.Remote, cfg.DefaultRemoteness))
	if err != nil {
		return err
	}
	fields, err := resolveFields(opts.Fields)
	if err != nil {
		return err
	}

	baseParams := models.SearchParams{
		City:       firstNonEmpty(opts.City, cfg.DefaultCity),
		Province:   firstNonEmpty(opts.Province, cfg.DefaultProvince),
		Locale:     firstNonEmpty(opts.Locale, cfg.DefaultLocale),
		Radius:     resolveRadius(opts.Radius, cfg.DefaultRadius),
		Remoteness: remoteness,
		Similar:    opts.Similar,
		PageSize:   defaultInt(opts.PageSize, cfg.PageSize),
	}

	proxies, err := config.LoadProxies(opts.Proxies)
	if err != nil {
		return err
	}
	clientCfg := models.ClientConfig{Proxies: proxies, ProxyBan: 10 * time.Minute}

	var rotator *network.Rotator
	if len(clientCfg.Proxies) > 0 {
		rotator, err = network.NewRotator(clientCfg.Proxies, clientCfg.ProxyBan)
		if err != nil {
			return err
		}
	}

	client, err := network.NewClient(rotator, clientCfg)
	if err != nil {
		return err
	}

	engine, err := scraper.New(client, baseParams.Locale, scraper.Options{
		Fields:   fields,
		MaxPages: defaultInt(opts.MaxPages, cfg.MaxPages),
		Workers:  defaultInt(opts.Workers, cfg.Workers),
		Delay:    time.Duration(defaultInt(opts.Delay, cfg.DelayMS)) * time.Millisecond,
		Parser:   cfg.HTMLParser,
		Strict:   opts.Strict,
		Logger:   ctx.Logger,
	})
	if err != nil {
		return err
	}

	stopIndicator := startSearchIndicator(ctx)
	if stopIndicator != nil {
		defer stopIndicator()
	}

	var (
		jobs     []models.Job
		failures []queryFailure
	)
	for _, query := range queries {
		params := baseParams
		params.Keywords = splitKeywords(query)

		queryJobs, scrapeErr := engine.Scrape(context.Background(), params)
		if scrapeErr != nil {
			failures = append(failures, queryFailure{query: query, err: scrapeErr})
		}
		jobs = mergeUniqueJobs(jobs, queryJobs)
	}
	jobs = limitJobs(jobs, defaultInt(opts.Max, cfg.DefaultMax))

	reportQueryFailures(ctx, failures)
	if len(jobs) == 0 && len(failures) == len(queries) && len(queries) > 0 {
		return fmt.Errorf("all queries failed: %w", failures[0].err)
	}

	seenEngaged := opts.NewOnly || opts.SeenUpdate ||
		strings.TrimSpace(opts.NewOut) != "" || strings.TrimSpace(opts.Seen) != ""

	var seenPath string
	var unseenJobs []models.Job
	if seenEngaged {
		seenPath, err = seen.ResolvePath(opts.Seen)
		if err != nil {
			return err
		}
		seenJobs, err := seen.ReadJobsAllowMissing(seenPath)
		if err != nil {
			return fmt.Errorf("read seen history: %w", err)
		}
		unseenJobs, _ = seen.Diff(jobs, seenJobs)
	}

	outputJobs := jobs
	if opts.NewOnly {
		outputJobs = unseenJobs
	}

	outputPath := resolveOutputPath(opts)
	if strings.TrimSpace(opts.NewOut) != "" && pathsEqual(outputPath, opts.NewOut) {
		return fmt.Errorf("--new-out path must differ from --output")
	}
	if seenEngaged && pathsEqual(outputPath, seenPath) {
		return fmt.Errorf("--output path must differ from the seen history")
	}
	if strings.TrimSpace(opts.NewOut) != "" && pathsEqual(opts.NewOut, seenPath) {
		return fmt.Errorf("--new-out path must differ from the seen history")
	}

	if strings.TrimSpace(opts.NewOut) != "" {
		if err := seen.WriteJobs(opts.NewOut, unseenJobs); err != nil {
			return fmt.Errorf("write --new-out: %w", err)
		}
	}

	format, err := resolveFormat(ctx, opts, outputPath)
	if err != nil {
		return err
	}

	writer := ctx.Out
	var file *os.File
	if outputPath != "" {
		file, err = os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled
	hyperlinks := colorEnabled && isTTY(writer)
	linkStyle := export.LinkStyleShort
	if strings.EqualFold(opts.Links, string(export.LinkStyleFull)) {
		linkStyle = export.LinkStyleFull
	}
	if err := export.WriteJobs(writer, outputJobs, format, export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   hyperlinks,
		LinkStyle:    linkStyle,
	}); err != nil {
		return err
	}

	if opts.SeenUpdate {
		if err := updateSeenHistory(seenPath, unseenJobs); err != nil {
			return err
		}
	}

	summaryJobs := jobs
	if seenEngaged {
		summaryJobs = unseenJobs
	}
	printSearchSummary(ctx, summaryJobs, len(queries))

	return nil
}

func pathsEqual(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil {
		return absA == absB
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func updateSeenHistory(seenPath string, inputJobs []models.Job) error {
	seenJobs, err := seen.ReadJobsAllowMissing(seenPath)
	if err != nil {
		return fmt.Errorf("read seen history: %w", err)
	}

	mergedJobs, _ := seen.Merge(seenJobs, inputJobs)
	if err := seen.WriteJobs(seenPath, mergedJobs); err != nil {
		return fmt.Errorf("write seen history: %w", err)
	}

	return nil
}

func printSearchSummary(ctx *Context, jobs []models.Job, queries int) {
	if ctx == nil || ctx.Err == nil {
		return
	}
	_, _ = fmt.Fprintf(ctx.Err, "%s\n", formatSearchSummary(jobs, queries))
}

func formatSearchSummary(jobs []models.Job, queries int) string {
	incomplete := 0
	for _, job := range jobs {
		if job.Incomplete {
			incomplete++
		}
	}
	if incomplete > 0 {
		return fmt.Sprintf("summary: jobs=%d incomplete=%d queries=%d", len(jobs), incomplete, queries)
	}
	return fmt.Sprintf("summary: jobs=%d queries=%d", len(jobs), queries)
}

// splitKeywords turns the comma-separated positional argument into the
// keyword list for one search.
func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		keyword := strings.TrimSpace(part)
		if keyword == "" {
			continue
		}
		keywords = append(keywords, keyword)
	}
	return keywords
}

// resolveQueries merges the positional keyword set with the ones from the
// query file. Each entry is one full search.
func resolveQueries(raw string, queryFile string) ([]string, error) {
	var primary []string
	if strings.TrimSpace(raw) != "" {
		primary = []string{strings.TrimSpace(raw)}
	}

	var fileQueries []string
	if strings.TrimSpace(queryFile) != "" {
		var err error
		fileQueries, err = loadQueriesFromJSON(queryFile)
		if err != nil {
			return nil, err
		}
	}
	return mergeAndNormalizeQueries(primary, fileQueries)
}

func mergeAndNormalizeQueries(primary []string, secondary []string) ([]string, error) {
	queries := make([]string, 0, len(primary)+len(secondary))
	seenQueries := make(map[string]struct{}, len(primary)+len(secondary))

	appendUnique := func(rawQuery string) {
		query := strings.TrimSpace(rawQuery)
		if query == "" {
			return
		}
		normalized := strings.ToLower(query)
		if _, exists := seenQueries[normalized]; exists {
			return
		}
		seenQueries[normalized] = struct{}{}
		queries = append(queries, query)
	}

	for _, query := range primary {
		appendUnique(query)
	}
	for _, query := range secondary {
		appendUnique(query)
	}

	if len(queries) == 0 {
		return nil, fmt.Errorf("at least one non-empty keyword set is required")
	}
	if len(queries) > maxQueries {
		return nil, fmt.Errorf("too many keyword sets: max %d", maxQueries)
	}

	return queries, nil
}

func loadQueriesFromJSON(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read --query-file %q: %w", path, err)
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parse --query-file %q: %w", path, err)
	}

	switch value := decoded.(type) {
	case []any:
		return parseStringArray(value, path, "root array")
	case map[string]any:
		rawSets, ok := value["keywords"]
		if !ok {
			return nil, fmt.Errorf("invalid --query-file %q: expected top-level string array or object with \"keywords\" string array", path)
		}
		sets, ok := rawSets.([]any)
		if !ok {
			return nil, fmt.Errorf("invalid --query-file %q: field \"keywords\" must be an array of strings", path)
		}
		return parseStringArray(sets, path, "keywords")
	default:
		return nil, fmt.Errorf("invalid --query-file %q: expected top-level string array or object with \"keywords\" string array", path)
	}
}

func parseStringArray(values []any, path string, fieldName string) ([]string, error) {
	queries := make([]string, 0, len(values))
	for idx, rawValue := range values {
		query, ok := rawValue.(string)
		if !ok {
			return nil, fmt.Errorf("invalid --query-file %q: %s[%d] must be a string", path, fieldName, idx)
		}
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		queries = append(queries, query)
	}
	return queries, nil
}

func resolveRemoteness(value string) (models.Remoteness, error) {
	if strings.TrimSpace(value) == "" {
		return models.RemotenessAny, nil
	}
	return models.ParseRemoteness(value)
}

func resolveFields(value string) ([]models.JobField, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	return models.ParseJobFields(splitKeywords(value))
}

// resolveRadius keeps zero meaningful: the flag default of -1 marks
// "unset" so a configured default can apply, while an explicit 0 survives.
func resolveRadius(flagValue, configValue int) int {
	if flagValue < 0 {
		return configValue
	}
	return flagValue
}

func mergeUniqueJobs(existing []models.Job, incoming []models.Job) []models.Job {
	if len(incoming) == 0 {
		return existing
	}

	keys := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]models.Job, 0, len(existing)+len(incoming))

	for _, job := range existing {
		merged = append(merged, job)
		key, ok := seen.Key(job)
		if !ok {
			continue
		}
		keys[key] = struct{}{}
	}

	for _, job := range incoming {
		key, ok := seen.Key(job)
		if !ok {
			merged = append(merged, job)
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		merged = append(merged, job)
	}

	return merged
}

func limitJobs(jobs []models.Job, limit int) []models.Job {
	if limit <= 0 || len(jobs) <= limit {
		return jobs
	}
	return jobs[:limit]
}

type queryFailure struct {
	query string
	err   error
}

func reportQueryFailures(ctx *Context, failures []queryFailure) {
	if ctx == nil || ctx.UI == nil {
		return
	}
	if len(failures) == 0 {
		return
	}

	ctx.UI.Warnf("\nQuery errors:")
	for _, failure := range failures {
		ctx.UI.Warnf("  %q: %v", failure.query, failure.err)
	}
}

func resolveOutputPath(opts SearchOptions) string {
	if opts.Output != "" {
		return opts.Output
	}
	if opts.Out != "" {
		return opts.Out
	}
	return opts.File
}

func resolveFormat(ctx *Context, opts SearchOptions, outputPath string) (export.Format, error) {
	if outputPath != "" {
		if ctx.JSONOutput {
			return export.FormatJSON, nil
		}
		if ctx.PlainText {
			return export.FormatTSV, nil
		}
		if opts.Format == "" {
			return export.FormatCSV, nil
		}
		return parseFormat(opts.Format)
	}

	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if opts.Format != "" {
		return parseFormat(opts.Format)
	}
	if isTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

func parseFormat(value string) (export.Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return export.FormatCSV, nil
	case "json":
		return export.FormatJSON, nil
	case "md", "markdown":
		return export.FormatMarkdown, nil
	case "tsv":
		return export.FormatTSV, nil
	case "table", "":
		return export.FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}

func startSearchIndicator(ctx *Context) func() {
	if ctx == nil || ctx.Err == nil || ctx.UI == nil {
		return nil
	}
	if !isTTY(ctx.Err) {
		return nil
	}

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		start := time.Now()
		frames := []string{"|", "/", "-", "\\"}
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		index := 0

		for {
			select {
			case <-done:
				fmt.Fprint(ctx.Err, "\r\033[2K")
				return
			case <-ticker.C:
				seconds := int(time.Since(start).Seconds())
				frame := frames[index%len(frames)]
				fmt.Fprintf(ctx.Err, "\r\033[2KScraping... %ds %s", seconds, frame)
				index++
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}
