package rate

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitError is returned when calls are blocked locally during a
// provider cooldown, without reaching the network.
type RateLimitError struct {
	Provider string
	RetryAt  time.Time
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry at %s)", e.Provider, e.RetryAt.UTC().Format(time.RFC3339))
}

// Guard blocks requests for a provider while a throttling cooldown is
// active.
type Guard struct {
	decl Declaration
	mu   sync.Mutex
	// cooldownUntil is mutated under mu
	cooldownUntil time.Time
}

// WrapHTTP wraps an http.Client with cooldown enforcement. A 429 from
// the provider starts a cooldown (Retry-After when present, the
// declared default otherwise); requests during the cooldown fail
// locally with RateLimitError.
func WrapHTTP(decl Declaration, base *http.Client) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	client := *base
	transport := client.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	client.Transport = &roundTripper{
		base:  transport,
		guard: &Guard{decl: decl},
	}
	return &client
}

type roundTripper struct {
	base  http.RoundTripper
	guard *Guard
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if retryAt, blocked := rt.guard.blocked(time.Now()); blocked {
		blockedCounter.WithLabelValues(rt.guard.decl.ProviderName()).Inc()
		return nil, RateLimitError{
			Provider: rt.guard.decl.ProviderName(),
			RetryAt:  retryAt,
		}
	}

	resp, err := rt.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	rt.guard.recordResponse(resp.StatusCode, resp.Header)
	return resp, nil
}

func (g *Guard) blocked(now time.Time) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.cooldownUntil.IsZero() && now.Before(g.cooldownUntil) {
		return g.cooldownUntil, true
	}
	return time.Time{}, false
}

func (g *Guard) recordResponse(status int, headers http.Header) {
	g.mu.Lock()
	defer g.mu.Unlock()

	lastStatusGauge.WithLabelValues(g.decl.ProviderName()).Set(float64(status))

	if status != http.StatusTooManyRequests {
		return
	}

	cooldown := g.decl.defaultCooldown
	if seconds, err := strconv.Atoi(headers.Get("Retry-After")); err == nil && seconds > 0 {
		cooldown = time.Duration(seconds) * time.Second
	}
	g.cooldownUntil = time.Now().Add(cooldown)
	retryAfterGauge.WithLabelValues(g.decl.ProviderName()).Set(cooldown.Seconds())
}
