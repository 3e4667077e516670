// ABOUTME: HTTP fetcher for feeds and article pages with conditional request support
// ABOUTME: Sends ETag and Last-Modified validators, blocks private addresses and caps response size

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

const MaxResponseSize = 10 * 1024 * 1024 // 10MB

// UserAgent identifies feednotes to remote servers.
const UserAgent = "feednotes/1.0 (RSS reader)"

var (
	// ErrTooLarge is returned when a response body exceeds MaxResponseSize.
	ErrTooLarge = errors.New("response too large")
	// ErrPrivateAddress is returned for hosts resolving to private ranges.
	ErrPrivateAddress = errors.New("access to private IP ranges is not allowed")
)

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.Code, e.URL)
}

// Validators are the cache validators remembered from a previous fetch.
type Validators struct {
	ETag         string
	LastModified string
}

// Result contains the response from an HTTP fetch operation.
type Result struct {
	Body         []byte
	ContentType  string
	FinalURL     string
	ETag         string
	LastModified string
	NotModified  bool
}

// Client fetches remote documents.
type Client struct {
	HTTP      *http.Client
	UserAgent string
}

// NewClient creates a Client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: UserAgent,
	}
}

var defaultClient = NewClient(30 * time.Second)

// Fetch retrieves a URL with the default client.
func Fetch(ctx context.Context, urlStr string, v Validators) (*Result, error) {
	return defaultClient.Fetch(ctx, urlStr, v)
}

// isPrivateIP checks if an IP address is in a private range (excluding loopback for tests).
func isPrivateIP(ip net.IP) bool {
	// Allow loopback addresses (localhost) for tests
	if ip.IsLoopback() {
		return false
	}
	return ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}

// Fetch retrieves urlStr. Non-empty validators become If-None-Match and
// If-Modified-Since headers and a 304 response yields NotModified=true.
// Any status other than 200 or 304 is a *StatusError.
func (c *Client) Fetch(ctx context.Context, urlStr string, v Validators) (*Result, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL %q: only http and https are supported", urlStr)
	}

	if ips, err := net.DefaultResolver.LookupIP(ctx, "ip", parsedURL.Hostname()); err == nil {
		for _, ip := range ips {
			if isPrivateIP(ip) {
				return nil, ErrPrivateAddress
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	if v.ETag != "" {
		req.Header.Set("If-None-Match", v.ETag)
	}
	if v.LastModified != "" {
		req.Header.Set("If-Modified-Since", v.LastModified)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &Result{NotModified: true, FinalURL: resp.Request.URL.String()}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: urlStr, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("%w (exceeds %d bytes)", ErrTooLarge, MaxResponseSize)
	}

	return &Result{
		Body:         body,
		ContentType:  resp.Header.Get("Content-Type"),
		FinalURL:     resp.Request.URL.String(),
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}
