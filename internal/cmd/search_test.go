package cmd

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jobsift/jobsift/internal/export"
	"github.com/jobsift/jobsift/internal/models"
	"github.com/jobsift/jobsift/internal/seen"
)

func TestSplitKeywords(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"go", []string{"go"}},
		{"go, backend developer", []string{"go", "backend developer"}},
		{" go ,, backend ", []string{"go", "backend"}},
		{" , ", []string{}},
	}

	for _, tc := range cases {
		got := splitKeywords(tc.raw)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("splitKeywords(%q) = %#v, want %#v", tc.raw, got, tc.want)
		}
	}
}

func TestResolveQueries(t *testing.T) {
	t.Run("positional arg is one keyword set", func(t *testing.T) {
		got, err := resolveQueries("go, backend developer", "")
		if err != nil {
			t.Fatalf("resolveQueries() error = %v", err)
		}
		want := []string{"go, backend developer"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("resolveQueries() = %#v, want %#v", got, want)
		}
	})

	t.Run("query-file only", func(t *testing.T) {
		path := writeQueryFile(t, `["Backend Engineer","SRE, kubernetes"]`)

		got, err := resolveQueries("", path)
		if err != nil {
			t.Fatalf("resolveQueries() error = %v", err)
		}
		want := []string{"Backend Engineer", "SRE, kubernetes"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("resolveQueries() = %#v, want %#v", got, want)
		}
	})

	t.Run("positional plus query-file dedupes case-insensitively", func(t *testing.T) {
		path := writeQueryFile(t, `{"keywords":["backend engineer","ML Engineer","  "]}`)

		got, err := resolveQueries("Backend Engineer", path)
		if err != nil {
			t.Fatalf("resolveQueries() error = %v", err)
		}
		want := []string{"Backend Engineer", "ML Engineer"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("resolveQueries() = %#v, want %#v", got, want)
		}
	})

	t.Run("max keyword set validation", func(t *testing.T) {
		path := writeQueryFile(t, `["q1","q2","q3","q4","q5","q6","q7","q8","q9","q10"]`)

		_, err := resolveQueries("q0", path)
		if err == nil {
			t.Fatalf("resolveQueries() error = nil, want error")
		}
		if err.Error() != "too many keyword sets: max 10" {
			t.Fatalf("resolveQueries() error = %q", err.Error())
		}
	})

	t.Run("empty input validation", func(t *testing.T) {
		_, err := resolveQueries("   ", "")
		if err == nil {
			t.Fatalf("resolveQueries() error = nil, want error")
		}
		if err.Error() != "at least one non-empty keyword set is required" {
			t.Fatalf("resolveQueries() error = %q", err.Error())
		}
	})
}

func TestLoadQueriesFromJSON(t *testing.T) {
	t.Run("top-level string array", func(t *testing.T) {
		path := writeQueryFile(t, `["software engineer","  Data Scientist  ",""]`)

		got, err := loadQueriesFromJSON(path)
		if err != nil {
			t.Fatalf("loadQueriesFromJSON() error = %v", err)
		}
		want := []string{"software engineer", "Data Scientist"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("loadQueriesFromJSON() = %#v, want %#v", got, want)
		}
	})

	t.Run("object with keywords", func(t *testing.T) {
		path := writeQueryFile(t, `{"keywords":["Backend Engineer","SRE"]}`)

		got, err := loadQueriesFromJSON(path)
		if err != nil {
			t.Fatalf("loadQueriesFromJSON() error = %v", err)
		}
		want := []string{"Backend Engineer", "SRE"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("loadQueriesFromJSON() = %#v, want %#v", got, want)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writeQueryFile(t, `{"keywords":[`)

		_, err := loadQueriesFromJSON(path)
		if err == nil {
			t.Fatalf("loadQueriesFromJSON() error = nil, want error")
		}
		if !strings.Contains(err.Error(), "parse --query-file") {
			t.Fatalf("loadQueriesFromJSON() error = %q", err.Error())
		}
	})

	t.Run("unsupported schema", func(t *testing.T) {
		path := writeQueryFile(t, `{"queries":["backend"]}`)

		_, err := loadQueriesFromJSON(path)
		if err == nil {
			t.Fatalf("loadQueriesFromJSON() error = nil, want error")
		}
		if !strings.Contains(err.Error(), `expected top-level string array or object with "keywords" string array`) {
			t.Fatalf("loadQueriesFromJSON() error = %q", err.Error())
		}
	})

	t.Run("non-string entry", func(t *testing.T) {
		path := writeQueryFile(t, `{"keywords":["backend",123]}`)

		_, err := loadQueriesFromJSON(path)
		if err == nil {
			t.Fatalf("loadQueriesFromJSON() error = nil, want error")
		}
		if !strings.Contains(err.Error(), "keywords[1] must be a string") {
			t.Fatalf("loadQueriesFromJSON() error = %q", err.Error())
		}
	})
}

func writeQueryFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestResolveRadius(t *testing.T) {
	cases := []struct {
		flag   int
		config int
		want   int
	}{
		{-1, 25, 25},
		{0, 25, 0},
		{12, 25, 12},
	}

	for _, tc := range cases {
		if got := resolveRadius(tc.flag, tc.config); got != tc.want {
			t.Fatalf("resolveRadius(%d, %d) = %d, want %d", tc.flag, tc.config, got, tc.want)
		}
	}
}

func TestResolveFields(t *testing.T) {
	got, err := resolveFields("title, key_id")
	if err != nil {
		t.Fatalf("resolveFields() error = %v", err)
	}
	want := []models.JobField{models.FieldTitle, models.FieldKeyID}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("resolveFields() = %#v, want %#v", got, want)
	}

	got, err = resolveFields("  ")
	if err != nil || got != nil {
		t.Fatalf("resolveFields(blank) = %#v, %v, want nil fields", got, err)
	}

	if _, err := resolveFields("title,bogus"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestResolveRemoteness(t *testing.T) {
	got, err := resolveRemoteness("")
	if err != nil || got != models.RemotenessAny {
		t.Fatalf("resolveRemoteness(blank) = %q, %v, want any", got, err)
	}

	got, err = resolveRemoteness("fully_remote")
	if err != nil || got != models.RemotenessFull {
		t.Fatalf("resolveRemoteness(fully_remote) = %q, %v", got, err)
	}

	if _, err := resolveRemoteness("hybrid"); err == nil {
		t.Fatalf("expected error for unknown remoteness")
	}
}

func TestResolveFormatWithOutputPathRespectsGlobalFlags(t *testing.T) {
	ctx := &Context{Out: io.Discard, JSONOutput: true}
	got, err := resolveFormat(ctx, SearchOptions{}, "jobs.json")
	if err != nil {
		t.Fatalf("resolveFormat() error = %v", err)
	}
	if got != export.FormatJSON {
		t.Fatalf("resolveFormat() = %q, want %q", got, export.FormatJSON)
	}

	ctx = &Context{Out: io.Discard, PlainText: true}
	got, err = resolveFormat(ctx, SearchOptions{}, "jobs.tsv")
	if err != nil {
		t.Fatalf("resolveFormat() error = %v", err)
	}
	if got != export.FormatTSV {
		t.Fatalf("resolveFormat() = %q, want %q", got, export.FormatTSV)
	}
}

func TestResolveFormatDefaultsToCSVForFiles(t *testing.T) {
	ctx := &Context{Out: io.Discard}
	got, err := resolveFormat(ctx, SearchOptions{}, "jobs.out")
	if err != nil {
		t.Fatalf("resolveFormat() error = %v", err)
	}
	if got != export.FormatCSV {
		t.Fatalf("resolveFormat() = %q, want %q", got, export.FormatCSV)
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		value string
		want  export.Format
	}{
		{"csv", export.FormatCSV},
		{"JSON", export.FormatJSON},
		{"md", export.FormatMarkdown},
		{"markdown", export.FormatMarkdown},
		{"tsv", export.FormatTSV},
		{"table", export.FormatTable},
	}

	for _, tc := range cases {
		got, err := parseFormat(tc.value)
		if err != nil {
			t.Fatalf("parseFormat(%q) error = %v", tc.value, err)
		}
		if got != tc.want {
			t.Fatalf("parseFormat(%q) = %q, want %q", tc.value, got, tc.want)
		}
	}

	if _, err := parseFormat("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestResolveOutputPath(t *testing.T) {
	if got := resolveOutputPath(SearchOptions{Output: "a", Out: "b", File: "c"}); got != "a" {
		t.Fatalf("resolveOutputPath() = %q, want a", got)
	}
	if got := resolveOutputPath(SearchOptions{Out: "b", File: "c"}); got != "b" {
		t.Fatalf("resolveOutputPath() = %q, want b", got)
	}
	if got := resolveOutputPath(SearchOptions{File: "c"}); got != "c" {
		t.Fatalf("resolveOutputPath() = %q, want c", got)
	}
}

func TestPathsEqual(t *testing.T) {
	if !pathsEqual("/tmp/a.json", "/tmp/../tmp/a.json") {
		t.Fatalf("expected cleaned paths to match")
	}
	if pathsEqual("", "/tmp/a.json") {
		t.Fatalf("blank path should never match")
	}
	if pathsEqual("/tmp/a.json", "/tmp/b.json") {
		t.Fatalf("different paths should not match")
	}
}

func TestMergeUniqueJobsDedupesAcrossQueries(t *testing.T) {
	existing := []models.Job{
		{KeyID: "j1", Locale: "ca", Title: "Backend Engineer", Company: "Acme"},
		{Title: "Fallback Engineer", Company: "Beta"},
	}
	incoming := []models.Job{
		{KeyID: "J1", Locale: "CA", Title: "Backend Engineer", Company: "Acme"},
		{KeyID: "j2", Locale: "ca", Title: "Data Engineer", Company: "Acme"},
		{},
	}

	got := mergeUniqueJobs(existing, incoming)
	if len(got) != 4 {
		t.Fatalf("len(got) = %d, want 4", len(got))
	}
	if got[0].KeyID != "j1" || got[1].Title != "Fallback Engineer" {
		t.Fatalf("existing jobs order changed: %#v", got[:2])
	}
	if got[2].KeyID != "j2" {
		t.Fatalf("expected unique incoming job at index 2, got %#v", got[2])
	}
	if got[3].KeyID != "" || got[3].Title != "" {
		t.Fatalf("expected invalid-key incoming job kept at index 3, got %#v", got[3])
	}
}

func TestLimitJobs(t *testing.T) {
	jobs := []models.Job{
		{KeyID: "a", Title: "one"},
		{KeyID: "b", Title: "two"},
		{KeyID: "c", Title: "three"},
	}

	got := limitJobs(jobs, 2)
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}

	got = limitJobs(jobs, 0)
	if len(got) != 3 {
		t.Fatalf("len(got) with unlimited = %d, want 3", len(got))
	}
}

func TestUpdateSeenHistoryCreatesFileAndMerges(t *testing.T) {
	dir := t.TempDir()
	seenPath := filepath.Join(dir, "seen.json")

	input := []models.Job{
		{KeyID: "j1", Locale: "ca", Title: "Hardware Engineer", Company: "Acme"},
	}

	if err := updateSeenHistory(seenPath, input); err != nil {
		t.Fatalf("updateSeenHistory() error = %v", err)
	}

	got, err := seen.ReadJobs(seenPath)
	if err != nil {
		t.Fatalf("ReadJobs() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}

	// Calling it again with the same job should be idempotent.
	if err := updateSeenHistory(seenPath, input); err != nil {
		t.Fatalf("updateSeenHistory() (2nd) error = %v", err)
	}
	got, err = seen.ReadJobs(seenPath)
	if err != nil {
		t.Fatalf("ReadJobs() (2nd) error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) after 2nd update = %d, want 1", len(got))
	}

	input2 := []models.Job{
		{KeyID: "j1", Locale: "ca", Title: "Hardware Engineer", Company: "Acme"},
		{KeyID: "j2", Locale: "ca", Title: "Embedded Engineer", Company: "Beta"},
	}
	if err := updateSeenHistory(seenPath, input2); err != nil {
		t.Fatalf("updateSeenHistory() (3rd) error = %v", err)
	}
	got, err = seen.ReadJobs(seenPath)
	if err != nil {
		t.Fatalf("ReadJobs() (3rd) error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) after 3rd update = %d, want 2", len(got))
	}
}

func TestSeenWorkflowAcrossQueries(t *testing.T) {
	dir := t.TempDir()
	seenPath := filepath.Join(dir, "seen.json")

	seenSeed := []models.Job{
		{KeyID: "seed", Locale: "ca", Title: "Platform Engineer", Company: "Acme"},
	}
	if err := seen.WriteJobs(seenPath, seenSeed); err != nil {
		t.Fatalf("WriteJobs() seed error = %v", err)
	}

	queryOne := []models.Job{
		{KeyID: "seed", Locale: "ca", Title: "Platform Engineer", Company: "Acme"},
		{KeyID: "hw1", Locale: "ca", Title: "Hardware Engineer", Company: "Beta"},
	}
	queryTwo := []models.Job{
		{KeyID: "hw1", Locale: "ca", Title: "Hardware Engineer", Company: "Beta"},
		{KeyID: "de1", Locale: "ca", Title: "Data Engineer", Company: "Gamma"},
	}

	merged := mergeUniqueJobs(nil, queryOne)
	merged = mergeUniqueJobs(merged, queryTwo)
	if len(merged) != 3 {
		t.Fatalf("len(merged) = %d, want 3", len(merged))
	}

	seenJobs, err := seen.ReadJobsAllowMissing(seenPath)
	if err != nil {
		t.Fatalf("ReadJobsAllowMissing() error = %v", err)
	}
	unseenJobs, _ := seen.Diff(merged, seenJobs)
	if len(unseenJobs) != 2 {
		t.Fatalf("len(unseenJobs) = %d, want 2", len(unseenJobs))
	}

	if err := updateSeenHistory(seenPath, unseenJobs); err != nil {
		t.Fatalf("updateSeenHistory() error = %v", err)
	}
	updatedSeen, err := seen.ReadJobs(seenPath)
	if err != nil {
		t.Fatalf("ReadJobs() error = %v", err)
	}
	if len(updatedSeen) != 3 {
		t.Fatalf("len(updatedSeen) = %d, want 3", len(updatedSeen))
	}
}

func TestFormatSearchSummary(t *testing.T) {
	jobs := []models.Job{{KeyID: "a"}, {KeyID: "b", Incomplete: true}}
	got := formatSearchSummary(jobs, 2)
	if got != "summary: jobs=2 incomplete=1 queries=2" {
		t.Fatalf("formatSearchSummary() = %q", got)
	}

	got = formatSearchSummary(jobs[:1], 1)
	if got != "summary: jobs=1 queries=1" {
		t.Fatalf("formatSearchSummary() = %q", got)
	}
}

func TestFirstNonEmptyAndDefaultInt(t *testing.T) {
	if got := firstNonEmpty("", "  ", "us", "ca"); got != "us" {
		t.Fatalf("firstNonEmpty() = %q, want us", got)
	}
	if got := firstNonEmpty("", " "); got != "" {
		t.Fatalf("firstNonEmpty() = %q, want empty", got)
	}
	if got := defaultInt(0, 8); got != 8 {
		t.Fatalf("defaultInt(0, 8) = %d, want 8", got)
	}
	if got := defaultInt(3, 8); got != 3 {
		t.Fatalf("defaultInt(3, 8) = %d, want 3", got)
	}
}
