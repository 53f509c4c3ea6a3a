package core

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/feedmap/internal/metrics"
)

var (
	// ErrInvalidSource is returned for sources that cannot be requested.
	ErrInvalidSource = errors.New("invalid source")
	// ErrFetchStatus wraps non-2xx upstream responses.
	ErrFetchStatus = errors.New("source returned error status")
	// ErrBodyTooLarge is returned when a response exceeds the body limit.
	ErrBodyTooLarge = errors.New("source response too large")
)

const defaultAuthHeader = "X-API-Key"

// Fetcher performs source requests.
type Fetcher struct {
	client      *http.Client
	maxBodySize int64
	userAgent   string
}

// NewFetcher creates a fetcher with the given request timeout and body limit.
func NewFetcher(timeout time.Duration, maxBodySize int64, userAgent string) *Fetcher {
	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		maxBodySize: maxBodySize,
		userAgent:   userAgent,
	}
}

func (s Source) method() string {
	if s.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(s.Method)
}

// Validate checks that the source can be requested.
func (s Source) Validate() error {
	u, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: url must be http or https", ErrInvalidSource)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: url has no host", ErrInvalidSource)
	}
	switch s.method() {
	case http.MethodGet, http.MethodPost:
	default:
		return fmt.Errorf("%w: method %s not supported", ErrInvalidSource, s.method())
	}
	switch s.AuthType {
	case "", AuthNone:
	case AuthBearer, AuthHeader:
		if s.AuthToken == "" {
			return fmt.Errorf("%w: %s auth requires a token", ErrInvalidSource, s.AuthType)
		}
	case AuthBasic:
		if !strings.Contains(s.AuthToken, ":") {
			return fmt.Errorf("%w: basic auth token must be user:password", ErrInvalidSource)
		}
	default:
		return fmt.Errorf("%w: unknown auth type %q", ErrInvalidSource, s.AuthType)
	}
	return nil
}

// Fetch requests the source and returns the raw body.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]byte, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	var body io.Reader
	if src.Body != "" {
		body = strings.NewReader(src.Body)
	}
	req, err := http.NewRequestWithContext(ctx, src.method(), src.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if src.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range src.Headers {
		req.Header.Set(name, value)
	}
	applyAuth(req, src)

	start := time.Now()
	resp, err := f.client.Do(req)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", redactURL(src.URL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s", ErrFetchStatus, resp.Status)
	}

	limit := f.maxBodySize
	if limit <= 0 {
		limit = 20 << 20
	}
	data, err := io.ReadAll(io.LimitReader(skipBOM(resp.Body), limit+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrBodyTooLarge, limit)
	}
	return data, nil
}

func applyAuth(req *http.Request, src Source) {
	switch src.AuthType {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+src.AuthToken)
	case AuthBasic:
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(src.AuthToken)))
	case AuthHeader:
		name := src.AuthHeader
		if name == "" {
			name = defaultAuthHeader
		}
		req.Header.Set(name, src.AuthToken)
	}
}

// redactURL drops the query string, which often carries API keys.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}

func fetchOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrTooManyFetches):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
