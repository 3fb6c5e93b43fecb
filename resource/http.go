package resource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/c360/manifest/errors"
	"github.com/c360/manifest/pkg/retry"
)

// HTTPResource is a Resource fetched over HTTP(S). Transient failures
// (connection errors, 5xx responses) are retried with exponential
// backoff; 4xx responses fail immediately.
type HTTPResource struct {
	url    *url.URL
	client *http.Client
	retry  retry.Config
}

// NewHTTPResource creates a resource for the given URL. A nil client
// uses a default with a 10 second timeout.
func NewHTTPResource(u *url.URL, client *http.Client) *HTTPResource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPResource{
		url:    u,
		client: client,
		retry:  errors.DefaultRetryConfig().ToRetryConfig(),
	}
}

// ParseHTTPResource creates an HTTP resource from a location string.
func ParseHTTPResource(location string, client *http.Client) (*HTTPResource, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, errors.WrapInvalid(err, "HTTPResource", "Parse", "URL parsing")
	}
	return NewHTTPResource(u, client), nil
}

// Exists probes the URL with a HEAD request. Any failure means false.
func (r *HTTPResource) Exists() bool {
	resp, err := r.client.Head(r.url.String())
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Location returns the URL string.
func (r *HTTPResource) Location() string {
	return r.url.String()
}

// Open fetches the content with GET, retrying transient failures.
func (r *HTTPResource) Open() (io.ReadCloser, error) {
	body, err := retry.DoWithResult(context.Background(), r.retry, func() ([]byte, error) {
		resp, err := r.client.Get(r.url.String())
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return io.ReadAll(resp.Body)
		case resp.StatusCode == http.StatusNotFound:
			return nil, retry.NonRetryable(errors.ErrResourceNotFound)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, retry.NonRetryable(fmt.Errorf("unexpected status %d", resp.StatusCode))
		default:
			return nil, fmt.Errorf("server error, status %d: %w", resp.StatusCode, errors.ErrResourceUnavailable)
		}
	})
	if err != nil {
		if retry.IsNonRetryable(err) {
			return nil, errors.WrapInvalid(err, "HTTPResource", "Open", "fetch "+r.url.String())
		}
		return nil, errors.WrapTransient(err, "HTTPResource", "Open", "fetch "+r.url.String())
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

// CreateRelative resolves a reference against this resource's URL.
func (r *HTTPResource) CreateRelative(path string) (Resource, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "HTTPResource", "CreateRelative", "reference parsing")
	}
	return NewHTTPResource(r.url.ResolveReference(ref), r.client), nil
}
