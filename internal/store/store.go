// ABOUTME: LinkStore interface, sentinel errors and options for link persistence
// ABOUTME: Defines the slug-to-target contract shared by the SQLite and in-memory stores

package store

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/2389/lnk/internal/slug"
)

// ErrNotFound is returned when no link exists for a slug
var ErrNotFound = errors.New("not found")

// ErrCorrupt is returned when a stored target is not valid UTF-8 or no longer parses as a URI.
// It means an earlier write broke the store's invariants and the process should stop serving.
var ErrCorrupt = errors.New("corrupt link record")

// ErrKeyspaceExhausted is returned by Put when an attempt cap is configured and every
// generated candidate within the cap was already occupied.
var ErrKeyspaceExhausted = errors.New("slug keyspace exhausted")

// Link is a single persisted slug to target mapping
type Link struct {
	Slug      string
	Target    *url.URL
	CreatedAt time.Time
}

// LinkStore persists slug to target mappings.
//
// Put and Get are individually atomic per key. The occupancy check and the write inside
// Put are not: two concurrent Puts that draw the same generated candidate both write it,
// and the later write wins. With a sparse keyspace this is accepted.
type LinkStore interface {
	// Put stores target under custom when custom is a non-empty whitelisted slug,
	// overwriting any existing record. Otherwise it generates slugs of the given length
	// until it finds an unoccupied one. It returns the slug actually stored.
	Put(ctx context.Context, custom string, target *url.URL, length int) (string, error)

	// Get returns the target stored for slug, or ErrNotFound.
	Get(ctx context.Context, slug string) (*url.URL, error)

	// GetLink returns the full record for slug, or ErrNotFound
	GetLink(ctx context.Context, slug string) (*Link, error)

	// Ping reports whether the backing storage is reachable
	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}

// options holds the allocation settings shared by all LinkStore implementations
type options struct {
	generate    func(n int) string
	maxAttempts int
	logger      *slog.Logger
}

// Option configures a LinkStore
type Option func(*options)

// WithGenerator replaces the random slug generator. Mostly useful in tests.
func WithGenerator(fn func(n int) string) Option {
	return func(o *options) {
		if fn != nil {
			o.generate = fn
		}
	}
}

// WithMaxAttempts caps the number of occupied candidates Put tolerates before it gives up
// with ErrKeyspaceExhausted. Zero or a negative value keeps the loop unbounded.
func WithMaxAttempts(n int) Option {
	return func(o *options) {
		o.maxAttempts = n
	}
}

// WithLogger sets the logger used for write logging
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		generate: slug.Generate,
		logger:   slog.Default().With("component", "store"),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
