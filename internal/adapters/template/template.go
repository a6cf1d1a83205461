// Package template provides the sources of the engine binding template the Lua binding
// generator scans for script functions.
package template

import (
	"context"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const httpClientTimeout = 30 * time.Second

var (
	_ ports.TemplateSource = (*Local)(nil)
	_ ports.TemplateSource = (*Remote)(nil)
	_ ports.TemplateSource = (*Fallback)(nil)
	_ ports.TemplateSource = (*Cached)(nil)
)

// Local reads the template from a checkout of the engine sources.
type Local struct {
	path string
}

// NewLocal creates a Local source reading path.
func NewLocal(path string) *Local {
	return &Local{path: path}
}

// Fetch reads the file. An empty file counts as unavailable.
func (l *Local) Fetch(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrTemplateUnavailable.Error()), "path", l.path)
	}
	if len(data) == 0 {
		return nil, zerr.With(domain.ErrTemplateUnavailable, "path", l.path)
	}
	return data, nil
}

// Remote downloads the template over HTTP.
type Remote struct {
	url        string
	httpClient *http.Client
}

// NewRemote creates a Remote source for url.
func NewRemote(url string) *Remote {
	return newRemoteWithClient(url, &http.Client{Timeout: httpClientTimeout})
}

func newRemoteWithClient(url string, client *http.Client) *Remote {
	return &Remote{url: url, httpClient: client}
}

// Fetch performs a GET request. Any status other than 200 is an error.
func (r *Remote) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, http.NoBody)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrTemplateFetchFailed.Error())
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrTemplateFetchFailed.Error()), "url", r.url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		statusErr := zerr.With(domain.ErrTemplateFetchFailed, "status_code", resp.StatusCode)
		return nil, zerr.With(statusErr, "url", r.url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrTemplateFetchFailed.Error())
	}
	return body, nil
}

// Fallback tries each source in order and returns the first template found.
type Fallback struct {
	sources []ports.TemplateSource
}

// NewFallback creates a Fallback over sources.
func NewFallback(sources ...ports.TemplateSource) *Fallback {
	return &Fallback{sources: sources}
}

// Fetch returns the first successful result. When every source fails the last error is
// returned wrapped in ErrTemplateUnavailable.
func (f *Fallback) Fetch(ctx context.Context) ([]byte, error) {
	lastErr := error(domain.ErrTemplateUnavailable)
	for _, src := range f.sources {
		data, err := src.Fetch(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, zerr.With(
		zerr.Wrap(lastErr, domain.ErrTemplateUnavailable.Error()),
		"sources", len(f.sources),
	)
}

// Cached memoizes the first successful fetch of a source. Failures are retried.
type Cached struct {
	source ports.TemplateSource
	mu     sync.Mutex
	data   []byte
}

// NewCached wraps source.
func NewCached(source ports.TemplateSource) *Cached {
	return &Cached{source: source}
}

// Fetch returns the memoized template, fetching it on first use.
func (c *Cached) Fetch(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data != nil {
		return c.data, nil
	}
	data, err := c.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.data = data
	return data, nil
}

// ForConfig builds the template source of a project: the local checkout first, then the
// published file. The local file is read again on every fetch so that edits show up in
// watch mode; only the download is memoized for the lifetime of the process.
func ForConfig(cfg *domain.Config) ports.TemplateSource {
	sources := []ports.TemplateSource{NewLocal(cfg.Bindings.Reference)}
	if cfg.Bindings.ReferenceURL != "" {
		sources = append(sources, NewCached(NewRemote(cfg.Bindings.ReferenceURL)))
	}
	return NewFallback(sources...)
}
