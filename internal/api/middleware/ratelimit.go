package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterMaxClients = 4096
	limiterSweepEvery = time.Minute
)

// RateLimit applies a token bucket per client address. X-Forwarded-For is
// only consulted when the peer is one of TrustedProxies.
type RateLimit struct {
	PerSecond      float64
	Burst          int
	TrustedProxies []netip.Prefix
	Next           http.Handler

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimit(perSecond float64, burst int, next http.Handler) *RateLimit {
	if perSecond <= 0 {
		perSecond = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &RateLimit{
		PerSecond: perSecond,
		Burst:     burst,
		Next:      next,
		clients:   make(map[string]*clientLimiter),
		now:       time.Now,
	}
}

// ParseTrustedProxies accepts bare addresses ("10.0.0.1") and CIDR ranges
// ("10.0.0.0/8").
func ParseTrustedProxies(list []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(list))
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

func (m *RateLimit) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m.Next == nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if !m.limiterFor(m.clientAddr(r)).Allow() {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate_limited","message":"too many requests"}`))
		return
	}

	m.Next.ServeHTTP(w, r)
}

// Len reports how many client buckets are held.
func (m *RateLimit) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

func (m *RateLimit) limiterFor(addr string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	if c, ok := m.clients[addr]; ok {
		c.lastSeen = now
		return c.limiter
	}

	if len(m.clients) >= limiterMaxClients && now.Sub(m.lastSweep) >= limiterSweepEvery {
		m.lastSweep = now
		for k, c := range m.clients {
			if now.Sub(c.lastSeen) > limiterIdleTTL {
				delete(m.clients, k)
			}
		}
	}
	if len(m.clients) >= limiterMaxClients {
		m.evictOldest()
	}

	c := &clientLimiter{limiter: rate.NewLimiter(rate.Limit(m.PerSecond), m.Burst), lastSeen: now}
	m.clients[addr] = c
	return c.limiter
}

func (m *RateLimit) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for k, c := range m.clients {
		if oldestKey == "" || c.lastSeen.Before(oldest) {
			oldestKey, oldest = k, c.lastSeen
		}
	}
	delete(m.clients, oldestKey)
}

// clientAddr is the peer host unless the peer is a trusted proxy, in which
// case it is the right-most X-Forwarded-For hop that is not itself trusted.
func (m *RateLimit) clientAddr(r *http.Request) string {
	peer := peerHost(r.RemoteAddr)
	if !m.trusted(peer) {
		return peer
	}

	fwd := r.Header.Values("X-Forwarded-For")
	if len(fwd) == 0 {
		return peer
	}

	hops := strings.Split(strings.Join(fwd, ","), ",")
	client := peer
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		client = hop
		if !m.trusted(hop) {
			break
		}
	}
	return client
}

func (m *RateLimit) trusted(host string) bool {
	if len(m.TrustedProxies) == 0 {
		return false
	}
	a, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range m.TrustedProxies {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

func peerHost(remote string) string {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return host
}
