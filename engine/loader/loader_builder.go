package loader

import (
	"net/http"
	"time"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets the maximum number of concurrent decode workers.
//
// Parameters:
//   - n: worker count; non-positive values are ignored
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithQueueSize sets how many loads may wait for a free worker.
//
// Parameters:
//   - n: queue capacity; non-positive values are ignored
//
// Returns:
//   - LoaderBuilderOption: a function that applies the queue option to a loader
func WithQueueSize(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.queueSize = n
		}
	}
}

// WithIdleTimeout sets how long an idle worker lingers before exiting.
//
// Parameters:
//   - d: idle timeout
//
// Returns:
//   - LoaderBuilderOption: a function that applies the idle timeout to a loader
func WithIdleTimeout(d time.Duration) LoaderBuilderOption {
	return func(l *loader) {
		if d > 0 {
			l.idleExit = d
		}
	}
}

// WithHTTPClient sets the client used for http(s) sources.
//
// Parameters:
//   - c: the HTTP client
//
// Returns:
//   - LoaderBuilderOption: a function that applies the client to a loader
func WithHTTPClient(c *http.Client) LoaderBuilderOption {
	return func(l *loader) {
		if c != nil {
			l.httpClient = c
		}
	}
}

// WithMaxTextureSize sets the largest texture side produced by the loader.
//
// Parameters:
//   - size: the texture side limit in texels
//
// Returns:
//   - LoaderBuilderOption: a function that applies the texture limit to a loader
func WithMaxTextureSize(size int) LoaderBuilderOption {
	return func(l *loader) {
		if size > 0 {
			l.maxTextureSize.Store(int64(size))
		}
	}
}
