// Package httpx fetches listing pages politely: robots.txt is honored,
// requests are rate limited per host, and transient failures retry with
// backoff. The collector is the only consumer; this system reads one
// listings site, it does not crawl.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// FetchError carries the HTTP status of a failed fetch for classification.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch error (status %d)", e.Status)
	}
	return fmt.Sprintf("fetch error (status %d): %v", e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher downloads pages with colly and hands the parsed response to a
// registration callback.
type Fetcher struct {
	userAgent string
	timeout   time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	robots   map[string]*robotstxt.RobotsData
}

func NewFetcher(userAgent string) *Fetcher {
	if userAgent == "" {
		userAgent = "sponsorhunt-bot/1.0"
	}
	return &Fetcher{
		userAgent: userAgent,
		timeout:   15 * time.Second,
		limiters:  make(map[string]*rate.Limiter),
		robots:    make(map[string]*robotstxt.RobotsData),
	}
}

// Fetch retrieves rawURL, calling register so the caller can install colly
// handlers before the request fires. Retries up to three times on 429/5xx
// with exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, register func(*colly.Collector)) error {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return err
	}

	u, _ := url.Parse(target)
	if !f.allowed(ctx, u) {
		return &FetchError{Status: http.StatusForbidden, Err: fmt.Errorf("blocked by robots.txt: %s", target)}
	}

	host := strings.ToLower(u.Hostname())
	var lastErr error
	var status int
	for attempt := 0; attempt < 3; attempt++ {
		if err := f.limiterFor(host).Wait(ctx); err != nil {
			return err
		}

		status, lastErr = f.fetchOnce(ctx, target, register)
		if lastErr == nil {
			return nil
		}
		if status != http.StatusTooManyRequests && status < 500 {
			break
		}

		backoff := time.Duration(500*(1<<attempt)) * time.Millisecond
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return &FetchError{Status: status, Err: lastErr}
}

func (f *Fetcher) fetchOnce(ctx context.Context, target string, register func(*colly.Collector)) (int, error) {
	c := colly.NewCollector(colly.UserAgent(f.userAgent))
	c.SetRequestTimeout(f.timeout)
	if register != nil {
		register(c)
	}

	status := 0
	var reqErr error
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		reqErr = err
	})
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	if err := c.Request(http.MethodGet, target, nil, nil, nil); err != nil {
		return status, err
	}
	if reqErr != nil {
		return status, reqErr
	}
	if status >= 400 {
		return status, fmt.Errorf("status %d", status)
	}
	return status, nil
}

func (f *Fetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Every(time.Second), 2)
	f.limiters[host] = l
	return l
}

// allowed checks robots.txt for the target path, failing open: an
// unreachable robots file must not block every run.
func (f *Fetcher) allowed(ctx context.Context, u *url.URL) bool {
	data, err := f.robotsFor(ctx, u)
	if err != nil {
		return true
	}
	group := data.FindGroup(f.userAgent)
	if group == nil {
		group = data.FindGroup("*")
	}
	if group == nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

func (f *Fetcher) robotsFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	host := strings.ToLower(u.Hostname())
	f.mu.Lock()
	if data, ok := f.robots[host]; ok {
		f.mu.Unlock()
		return data, nil
	}
	f.mu.Unlock()

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	client := &http.Client{Timeout: f.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.robots[host] = data
	f.mu.Unlock()
	return data, nil
}

func normalizeURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("empty url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return u.String(), nil
}
