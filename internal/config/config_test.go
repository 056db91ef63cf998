package config

import "testing"

func clearJobsiftEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"JOBSIFT_DEFAULT_LOCALE",
		"JOBSIFT_DEFAULT_CITY",
		"JOBSIFT_DEFAULT_PROVINCE",
		"JOBSIFT_DEFAULT_RADIUS",
		"JOBSIFT_DEFAULT_REMOTENESS",
		"JOBSIFT_DEFAULT_MAX",
		"JOBSIFT_PAGE_SIZE",
		"JOBSIFT_MAX_PAGES",
		"JOBSIFT_WORKERS",
		"JOBSIFT_DELAY_MS",
		"JOBSIFT_HTML_PARSER",
		"JOBSIFT_PROXIES",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestDefaultConfigBuiltins(t *testing.T) {
	clearJobsiftEnv(t)

	cfg := DefaultConfig()
	if cfg.DefaultLocale != "us" {
		t.Errorf("DefaultLocale = %q, want %q", cfg.DefaultLocale, "us")
	}
	if cfg.DefaultRadius != 25 {
		t.Errorf("DefaultRadius = %d, want 25", cfg.DefaultRadius)
	}
	if cfg.DefaultRemoteness != "any" {
		t.Errorf("DefaultRemoteness = %q, want %q", cfg.DefaultRemoteness, "any")
	}
	if cfg.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.PageSize)
	}
	if cfg.MaxPages != 0 {
		t.Errorf("MaxPages = %d, want 0", cfg.MaxPages)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.DelayMS != 200 {
		t.Errorf("DelayMS = %d, want 200", cfg.DelayMS)
	}
	if cfg.HTMLParser != "net/html" {
		t.Errorf("HTMLParser = %q, want %q", cfg.HTMLParser, "net/html")
	}
}

func TestDefaultConfigEnvFallbacks(t *testing.T) {
	clearJobsiftEnv(t)
	t.Setenv("JOBSIFT_DEFAULT_LOCALE", "uk")
	t.Setenv("JOBSIFT_DEFAULT_CITY", "London")
	t.Setenv("JOBSIFT_DEFAULT_RADIUS", "50")
	t.Setenv("JOBSIFT_PAGE_SIZE", "25")
	t.Setenv("JOBSIFT_WORKERS", "not-a-number")

	cfg := DefaultConfig()
	if cfg.DefaultLocale != "uk" {
		t.Errorf("DefaultLocale = %q, want %q", cfg.DefaultLocale, "uk")
	}
	if cfg.DefaultCity != "London" {
		t.Errorf("DefaultCity = %q, want %q", cfg.DefaultCity, "London")
	}
	if cfg.DefaultRadius != 50 {
		t.Errorf("DefaultRadius = %d, want 50", cfg.DefaultRadius)
	}
	if cfg.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", cfg.PageSize)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8 (invalid env falls back)", cfg.Workers)
	}
}

func TestLoadProxiesFlagWinsOverEnv(t *testing.T) {
	clearJobsiftEnv(t)
	t.Setenv("JOBSIFT_PROXIES", "http://env:8080")

	proxies, err := LoadProxies(" http://a:8080 , ,http://b:8080")
	if err != nil {
		t.Fatalf("LoadProxies() error = %v", err)
	}
	if len(proxies) != 2 {
		t.Fatalf("len(proxies) = %d, want 2", len(proxies))
	}
	if proxies[0] != "http://a:8080" || proxies[1] != "http://b:8080" {
		t.Errorf("proxies = %v, want trimmed flag values", proxies)
	}
}

func TestLoadProxiesFromEnv(t *testing.T) {
	clearJobsiftEnv(t)
	t.Setenv("JOBSIFT_PROXIES", "socks5://one:1080,socks5://two:1080")

	proxies, err := LoadProxies("")
	if err != nil {
		t.Fatalf("LoadProxies() error = %v", err)
	}
	if len(proxies) != 2 {
		t.Fatalf("len(proxies) = %d, want 2", len(proxies))
	}
	if proxies[0] != "socks5://one:1080" {
		t.Errorf("proxies[0] = %q, want %q", proxies[0], "socks5://one:1080")
	}
}
