package network

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/jobsift/jobsift/internal/models"
)

const defaultTimeout = 30 * time.Second

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:122.0) Gecko/20100101 Firefox/122.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
}

// Client is the engine's HTTP session: a browser-profiled client with a
// cookie jar, rotating user agents and an optional proxy ring.
type Client struct {
	http       tls_client.HttpClient
	rotator    *Rotator
	userAgents []string

	// guards the rand source, and the shared proxy setting while a
	// proxied request is in flight
	mu   sync.Mutex
	rand *rand.Rand
}

func NewClient(rotator *Rotator, cfg models.ClientConfig) (*Client, error) {
	jar, _ := fhttpcookiejar.New(nil)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client, err := tls_client.NewHttpClient(
		tls_client.NewNoopLogger(),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithTimeoutSeconds(int(timeout/time.Second)),
		tls_client.WithCookieJar(jar),
	)
	if err != nil {
		return nil, err
	}

	agents := cfg.UserAgents
	if len(agents) == 0 {
		agents = defaultUserAgents
	}

	return &Client{
		http:       client,
		rotator:    rotator,
		userAgents: append([]string{}, agents...),
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Get issues a GET for the engine. The headers map is shared between
// workers and is never written to here; the user agent goes on the
// request itself.
func (c *Client) Get(ctx context.Context, target string, headers map[string]string) (int, io.ReadCloser, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return 0, nil, err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.randomUA())
	}

	resp, err := c.do(req)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, resp.Body, nil
}

// Do sends a prepared request through the proxy ring when one is
// configured.
func (c *Client) Do(req *fhttp.Request) (*fhttp.Response, error) {
	return c.do(req)
}

func (c *Client) do(req *fhttp.Request) (*fhttp.Response, error) {
	if c.rotator == nil {
		return c.http.Do(req)
	}

	proxy, err := c.rotator.Next()
	if err != nil {
		return nil, err
	}

	// SetProxy mutates the shared transport, so proxied requests are
	// serialized; direct requests never take this path.
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.http.SetProxy(proxy.String()); err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.rotator.Report(proxy, 0)
		return nil, err
	}
	c.rotator.Report(proxy, resp.StatusCode)
	return resp, nil
}

func (c *Client) randomUA() string {
	if len(c.userAgents) == 0 {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userAgents[c.rand.Intn(len(c.userAgents))]
}
