package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	mathrand "math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
)

// Browser-like header pools
var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Safari/605.1.15",
	}

	referers = []string{
		"https://www.google.com/",
		"https://www.google.com.ar/",
	}
)

// Response is a decoded HTTP response. Body is already converted to UTF-8.
type Response struct {
	Body        io.Reader
	ContentType string
	FinalURL    string
}

// Session is a cookie-holding HTTP client reused for every request within one
// scrape run. ASP.NET postbacks require the session cookies from the page that
// rendered the form, so all requests against a source share one Session.
type Session struct {
	client *resty.Client
}

// NewSession creates a session with browser-like headers and a cookie jar.
func NewSession(timeout time.Duration) *Session {
	rnd := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	jar, _ := cookiejar.New(nil)

	client := resty.New().
		SetTimeout(timeout).
		SetCookieJar(jar).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetHeader("User-Agent", userAgents[rnd.Intn(len(userAgents))]).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8").
		SetHeader("Accept-Language", "es-AR,es;q=0.9,en-US;q=0.8,en;q=0.7").
		SetHeader("Cache-Control", "no-cache").
		SetHeader("Referer", referers[rnd.Intn(len(referers))]).
		SetHeader("Pragma", "no-cache").
		SetHeader("Upgrade-Insecure-Requests", "1")

	return &Session{client: client}
}

// Get fetches a URL and returns the decoded response.
func (s *Session) Get(ctx context.Context, rawURL string) (*Response, error) {
	resp, err := s.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	return s.decode(resp, rawURL)
}

// PostForm posts form values to a URL and returns the decoded response.
// Used to replay ASP.NET __doPostBack navigations.
func (s *Session) PostForm(ctx context.Context, rawURL string, form url.Values) (*Response, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(form.Encode()).
		Post(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to post form: %w", err)
	}
	return s.decode(resp, rawURL)
}

// Close releases idle connections held by the session.
func (s *Session) Close() {
	s.client.GetClient().CloseIdleConnections()
}

func (s *Session) decode(resp *resty.Response, rawURL string) (*Response, error) {
	status := resp.StatusCode()

	// Rate limiting
	if slices.Contains([]int{http.StatusTooManyRequests, 430}, status) {
		retryAfter := resp.Header().Get("Retry-After")
		return nil, fmt.Errorf("rate limited; retry after %s", retryAfter)
	}

	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch %s unexpected status code: %d", rawURL, status)
	}

	finalURL := rawURL
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	contentType := resp.Header().Get("Content-Type")
	body, err := decodeUTF8(resp.Body(), contentType)
	if err != nil {
		return nil, err
	}

	return &Response{Body: body, ContentType: contentType, FinalURL: finalURL}, nil
}

// decodeUTF8 converts a response body to UTF-8 based on the Content-Type
// header and the body content itself.
func decodeUTF8(bodyBytes []byte, contentType string) (io.Reader, error) {
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, contentType)

	if name == "utf-8" || name == "UTF-8" {
		return bytes.NewReader(bodyBytes), nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, fmt.Errorf("failed to read converted UTF-8 body: %w", err)
	}

	return &buf, nil
}

// IsRateLimited reports whether an error returned by Get or PostForm was
// caused by the source throttling us.
func IsRateLimited(err error) bool {
	return err != nil && strings.Contains(err.Error(), "rate limited")
}
