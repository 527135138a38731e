// Package fetch retrieves raw manifest documents. The HTTP implementation is
// the default; anything satisfying Fetcher can be swapped in through loader
// options.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/swarmakit/layoutd/internal/manifest"
)

// Fetcher retrieves a manifest document from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, manifestURL string) (*manifest.Manifest, error)
}

// StatusError reports a non-2xx manifest fetch, carrying the HTTP status
// code and status text.
type StatusError struct {
	Code int
	Text string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch manifest: %d %s", e.Code, e.Text)
}

// HTTP fetches manifests with a JSON GET. Non-2xx responses fail loudly with
// the HTTP status carried in the error.
type HTTP struct {
	client *resty.Client
}

// NewHTTP creates a production-ready manifest fetcher with retrying
// transport and sane timeouts.
func NewHTTP() *HTTP {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0 // the loader contract is no internal retries
	retryClient.Logger = nil

	client := resty.New().
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "layoutd/1.0")
	client.SetTransport(retryClient.HTTPClient.Transport)

	return &HTTP{client: client}
}

// NewHTTPWithClient wraps an existing resty client, used by tests and by
// hosts that share one transport.
func NewHTTPWithClient(client *resty.Client) *HTTP {
	return &HTTP{client: client}
}

// Fetch retrieves and parses the manifest at manifestURL.
func (h *HTTP) Fetch(ctx context.Context, manifestURL string) (*manifest.Manifest, error) {
	resp, err := h.client.R().SetContext(ctx).Get(manifestURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{Code: resp.StatusCode(), Text: http.StatusText(resp.StatusCode())}
	}
	return manifest.DecodeJSON(resp.Body())
}

// Func adapts a plain function to the Fetcher interface.
type Func func(ctx context.Context, manifestURL string) (*manifest.Manifest, error)

// Fetch implements Fetcher.
func (f Func) Fetch(ctx context.Context, manifestURL string) (*manifest.Manifest, error) {
	return f(ctx, manifestURL)
}
