package circuitbreaker

import (
	"net/url"
	"sort"
	"strings"
	"sync"
)

// HostBreakers lazily creates one CircuitBreaker per host from a shared
// configuration. It is safe for concurrent use.
type HostBreakers struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// NewHostBreakers returns an empty set. Each breaker is named
// "<cfg.Name>:<host>".
func NewHostBreakers(cfg Config) *HostBreakers {
	return &HostBreakers{
		cfg:      cfg,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// For returns the breaker for host, creating it on first use.
func (h *HostBreakers) For(host string) *CircuitBreaker {
	host = strings.ToLower(host)

	h.mu.Lock()
	defer h.mu.Unlock()

	if cb, ok := h.breakers[host]; ok {
		return cb
	}
	cfg := h.cfg
	cfg.Name = h.cfg.Name + ":" + host
	cb := New(cfg)
	h.breakers[host] = cb
	return cb
}

// Execute runs fn through the breaker of rawURL's host. URLs without a host
// share the "" breaker.
func (h *HostBreakers) Execute(rawURL string, fn func() (interface{}, error)) (interface{}, error) {
	return h.For(HostOf(rawURL)).Execute(fn)
}

// OpenHosts returns the hosts whose breaker is currently open, sorted.
func (h *HostBreakers) OpenHosts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var open []string
	for host, cb := range h.breakers {
		if cb.IsOpen() {
			open = append(open, host)
		}
	}
	sort.Strings(open)
	return open
}

// HostOf returns the lower-cased host name of rawURL, or "".
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
