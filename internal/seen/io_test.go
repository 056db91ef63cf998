package seen

import (
	"path/filepath"
	"testing"

	"github.com/jobsift/jobsift/internal/models"
)

func TestReadWriteJobs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.json")

	jobs := []models.Job{{KeyID: "j1", Locale: "ca", Title: "SRE", Company: "Acme", URL: "https://example.com/1"}}
	if err := WriteJobs(path, jobs); err != nil {
		t.Fatalf("WriteJobs() error = %v", err)
	}

	got, err := ReadJobs(path)
	if err != nil {
		t.Fatalf("ReadJobs() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected len=1, got %d", len(got))
	}
	if got[0].KeyID != jobs[0].KeyID || got[0].Title != jobs[0].Title {
		t.Fatalf("unexpected job read back: %+v", got[0])
	}
}

func TestReadJobsAllowMissing(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.json")

	got, err := ReadJobsAllowMissing(missing)
	if err != nil {
		t.Fatalf("ReadJobsAllowMissing() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty jobs for missing file, got %d", len(got))
	}
}

func TestResolvePathExplicitWins(t *testing.T) {
	got, err := ResolvePath("/tmp/custom-seen.json")
	if err != nil {
		t.Fatalf("ResolvePath() error = %v", err)
	}
	if got != "/tmp/custom-seen.json" {
		t.Fatalf("ResolvePath() = %q, want explicit path", got)
	}
}
