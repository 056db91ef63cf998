package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName         = "jobsift"
	ConfigFileName  = "config.json"
	ProxiesFileName = "proxies.txt"
	SeenFileName    = "seen.json"
)

// Config contains the default search settings and engine tuning.
type Config struct {
	DefaultLocale     string `json:"default_locale"`
	DefaultCity       string `json:"default_city"`
	DefaultProvince   string `json:"default_province"`
	DefaultRadius     int    `json:"default_radius"`
	DefaultRemoteness string `json:"default_remoteness"`
	DefaultMax        int    `json:"default_max"`
	PageSize          int    `json:"page_size"`
	MaxPages          int    `json:"max_pages"`
	Workers           int    `json:"workers"`
	DelayMS           int    `json:"delay_ms"`
	HTMLParser        string `json:"html_parser"`
}

func DefaultConfig() Config {
	return Config{
		DefaultLocale:     envString("JOBSIFT_DEFAULT_LOCALE", "us"),
		DefaultCity:       envString("JOBSIFT_DEFAULT_CITY", ""),
		DefaultProvince:   envString("JOBSIFT_DEFAULT_PROVINCE", ""),
		DefaultRadius:     envInt("JOBSIFT_DEFAULT_RADIUS", 25),
		DefaultRemoteness: envString("JOBSIFT_DEFAULT_REMOTENESS", "any"),
		DefaultMax:        envInt("JOBSIFT_DEFAULT_MAX", 0),
		PageSize:          envInt("JOBSIFT_PAGE_SIZE", 50),
		MaxPages:          envInt("JOBSIFT_MAX_PAGES", 0),
		Workers:           envInt("JOBSIFT_WORKERS", 8),
		DelayMS:           envInt("JOBSIFT_DELAY_MS", 200),
		HTMLParser:        envString("JOBSIFT_HTML_PARSER", "net/html"),
	}
}

func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func ProxiesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProxiesFileName), nil
}

func SeenPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SeenFileName), nil
}

func Load() (Config, error) {
	cfg := DefaultConfig()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Init writes default config.json and proxies.txt if they don't already exist.
func Init() ([]string, error) {
	var created []string

	dir, err := ConfigDir()
	if err != nil {
		return created, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	proxiesPath := filepath.Join(dir, ProxiesFileName)
	if _, err := os.Stat(proxiesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(proxiesPath, []byte(""), 0o644); err != nil {
			return created, err
		}
		created = append(created, proxiesPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func LoadProxies(flagValue string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return splitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("JOBSIFT_PROXIES")); env != "" {
		return splitCSV(env), nil
	}

	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
