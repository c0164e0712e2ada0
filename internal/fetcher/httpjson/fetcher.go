// Package httpjson fetches the remote catalog from a JSON HTTP
// endpoint shaped {"products": [...]}.
package httpjson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/fullstack/catalog-sync/internal/catalog"
)

// Config controls the fetch target and its timeouts. The read timeout
// bounds the whole request including body transfer, so it must exceed
// the connect timeout.
type Config struct {
	URL            string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

const (
	defaultConnectTimeout = 30 * time.Second
	defaultReadTimeout    = 60 * time.Second
)

// Fetcher performs a single blocking GET per call. It never retries;
// transport and decode failures are returned to the caller.
type Fetcher struct {
	url    string
	client *http.Client
}

// New builds a Fetcher with asymmetric connect/read timeouts.
func New(cfg Config) (*Fetcher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("sync.url is required")
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Fetcher{
		url: cfg.URL,
		client: &http.Client{
			Transport: transport,
			Timeout:   readTimeout,
		},
	}, nil
}

// FetchProducts retrieves and decodes the remote catalog.
func (f *Fetcher) FetchProducts(ctx context.Context) ([]catalog.RemoteProduct, error) {
	products, _, err := f.FetchProductsRaw(ctx)
	return products, err
}

// FetchProductsRaw is FetchProducts plus the undecoded payload bytes.
func (f *Fetcher) FetchProductsRaw(ctx context.Context) ([]catalog.RemoteProduct, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog body: %w", err)
	}

	var payload catalog.RemoteCatalog
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, fmt.Errorf("decode catalog payload: %w", err)
	}
	return payload.Products, body, nil
}
