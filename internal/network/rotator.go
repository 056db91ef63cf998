package network

import (
	"errors"
	"net/url"
	"sync"
	"time"
)

var ErrNoProxies = errors.New("no proxies available")

// Rotator hands out proxies round-robin, sitting out the ones that
// recently failed or got rate limited.
type Rotator struct {
	proxies     []*url.URL
	banDuration time.Duration
	bannedUntil map[string]time.Time
	index       int
	mu          sync.Mutex
}

// ProxyHealth is a point-in-time view of one ring entry.
type ProxyHealth struct {
	Proxy  string
	Banned bool
	Until  time.Time
}

func NewRotator(raw []string, banDuration time.Duration) (*Rotator, error) {
	rotator := &Rotator{
		banDuration: banDuration,
		bannedUntil: map[string]time.Time{},
	}

	for _, proxy := range raw {
		u, err := url.Parse(proxy)
		if err != nil {
			return nil, err
		}
		rotator.proxies = append(rotator.proxies, u)
	}

	return rotator, nil
}

func (r *Rotator) Next() (*url.URL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.proxies) == 0 {
		return nil, ErrNoProxies
	}

	start := r.index
	for {
		proxy := r.proxies[r.index]
		r.index = (r.index + 1) % len(r.proxies)

		if !r.isBanned(proxy) {
			return proxy, nil
		}

		if r.index == start {
			return nil, ErrNoProxies
		}
	}
}

// Report records the outcome of a request through proxy. A status of zero
// means the request never completed; those and throttled responses ban
// the proxy for the configured window.
func (r *Rotator) Report(proxy *url.URL, status int) {
	if proxy == nil {
		return
	}
	if status != 0 && status != 403 && status != 429 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bannedUntil[proxy.String()] = time.Now().Add(r.banDuration)
}

// Health snapshots the ring for display.
func (r *Rotator) Health() []ProxyHealth {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ProxyHealth, 0, len(r.proxies))
	for _, proxy := range r.proxies {
		until, banned := r.bannedUntil[proxy.String()]
		if banned && time.Now().After(until) {
			banned = false
		}
		out = append(out, ProxyHealth{Proxy: proxy.String(), Banned: banned, Until: until})
	}
	return out
}

func (r *Rotator) isBanned(proxy *url.URL) bool {
	until, ok := r.bannedUntil[proxy.String()]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(r.bannedUntil, proxy.String())
		return false
	}
	return true
}
