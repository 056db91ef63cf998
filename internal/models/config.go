package models

import "time"

// ClientConfig carries the network options shared by scrape sessions.
type ClientConfig struct {
	Proxies    []string
	ProxyBan   time.Duration
	Timeout    time.Duration
	UserAgents []string
}
