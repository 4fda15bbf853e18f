// ABOUTME: Tests for the SQLite LinkStore
// ABOUTME: Covers schema setup, allocation rules, overwrite semantics, corruption and persistence

package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/lnk/internal/slug"
)

func newTestStore(t *testing.T, opts ...Option) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(DriverModernc, filepath.Join(t.TempDir(), "links.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func isGenerated(s string) bool {
	for i := 0; i < len(s); i++ {
		if !strings.Contains(slug.Alphabet, string(s[i])) {
			return false
		}
	}
	return true
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "links.db")

	s, err := NewSQLiteStore("", dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file was not created")
}

func TestNewSQLiteStore_UnknownDriver(t *testing.T) {
	_, err := NewSQLiteStore("postgres", filepath.Join(t.TempDir(), "links.db"))
	assert.ErrorContains(t, err, "unsupported sqlite driver")
}

func TestNewSQLiteStore_MattnDriver(t *testing.T) {
	s, err := NewSQLiteStore(DriverMattn, filepath.Join(t.TempDir(), "links.db"))
	if err != nil && strings.Contains(err.Error(), "CGO_ENABLED") {
		t.Skip("go-sqlite3 requires cgo")
	}
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	got, err := s.Put(ctx, "cgo", mustParse(t, "https://example.com/c"), 5)
	require.NoError(t, err)

	link, err := s.GetLink(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/c", link.Target.String())
}

func TestNewSQLiteStore_Memory(t *testing.T) {
	s, err := NewSQLiteStore(DriverModernc, MemoryPath)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	got, err := s.Put(ctx, "mem", mustParse(t, "https://example.com/m"), 5)
	require.NoError(t, err)

	u, err := s.Get(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/m", u.String())
}

func TestPut_GeneratedSlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.Put(ctx, "", mustParse(t, "https://example.com"), 5)
	require.NoError(t, err)

	assert.Len(t, got, 5)
	assert.True(t, isGenerated(got), "slug %q uses symbols outside the alphabet", got)

	u, err := s.Get(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", u.String())
}

func TestPut_CustomSlugRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	targets := []string{
		"https://example.com",
		"https://example.com/a/b?c=d&e=f#frag",
		"http://user@host:8080/path",
		"/relative/path?x=1",
		"mailto:someone@example.com",
	}

	for i, raw := range targets {
		name := fmt.Sprintf("Custom%d", i)
		got, err := s.Put(ctx, name, mustParse(t, raw), 5)
		require.NoError(t, err)
		assert.Equal(t, name, got)

		u, err := s.Get(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, raw, u.String())
	}
}

func TestPut_CustomSlugOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "abc", mustParse(t, "https://one.example"), 5)
	require.NoError(t, err)
	got, err := s.Put(ctx, "abc", mustParse(t, "https://two.example"), 5)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	u, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "https://two.example", u.String())
}

func TestPut_EmptyCustomSlugGenerates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.Put(ctx, "", mustParse(t, "https://example.com"), 5)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.Len(t, got, 5)

	_, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPut_InvalidCustomSlugGenerates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, bad := range []string{"my-link", "a b", "café", "../etc"} {
		got, err := s.Put(ctx, bad, mustParse(t, "https://example.com"), 7)
		require.NoError(t, err)
		assert.NotEqual(t, bad, got)
		assert.Len(t, got, 7)
		assert.True(t, isGenerated(got))

		_, err = s.Get(ctx, bad)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestPut_RetriesOccupiedCandidates(t *testing.T) {
	candidates := []string{"AAAAA", "AAAAA", "BBBBB"}
	var mu sync.Mutex
	next := 0
	gen := func(int) string {
		mu.Lock()
		defer mu.Unlock()
		c := candidates[next]
		next++
		return c
	}

	s := newTestStore(t, WithGenerator(gen))
	ctx := context.Background()

	first, err := s.Put(ctx, "", mustParse(t, "https://one.example"), 5)
	require.NoError(t, err)
	assert.Equal(t, "AAAAA", first)

	second, err := s.Put(ctx, "", mustParse(t, "https://two.example"), 5)
	require.NoError(t, err)
	assert.Equal(t, "BBBBB", second)

	u, err := s.Get(ctx, "AAAAA")
	require.NoError(t, err)
	assert.Equal(t, "https://one.example", u.String(), "generated slug must not overwrite")
}

func TestPut_UniqueUntilExhaustion(t *testing.T) {
	s := newTestStore(t, WithMaxAttempts(10_000))
	ctx := context.Background()
	target := mustParse(t, "https://example.com")

	seen := make(map[string]bool)
	for range len(slug.Alphabet) {
		got, err := s.Put(ctx, "", target, 1)
		require.NoError(t, err)
		require.False(t, seen[got], "slug %q returned twice", got)
		seen[got] = true
	}
	assert.Len(t, seen, len(slug.Alphabet))

	_, err := s.Put(ctx, "", target, 1)
	assert.ErrorIs(t, err, ErrKeyspaceExhausted)
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "doesnotexist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_Corrupt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.Exec(`INSERT INTO links (slug, target, created_at) VALUES (?, ?, ?)`,
		"badutf", []byte{0xff, 0xfe}, "2024-01-01T00:00:00Z")
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO links (slug, target, created_at) VALUES (?, ?, ?)`,
		"baduri", "http://[::1", "2024-01-01T00:00:00Z")
	require.NoError(t, err)

	_, err = s.Get(ctx, "badutf")
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = s.Get(ctx, "baduri")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestGetLink(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "docs", mustParse(t, "https://go.dev/doc"), 5)
	require.NoError(t, err)

	link, err := s.GetLink(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, "docs", link.Slug)
	assert.Equal(t, "https://go.dev/doc", link.Target.String())
	assert.False(t, link.CreatedAt.IsZero())

	_, err = s.GetLink(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPut_NilTarget(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Put(context.Background(), "x", nil, 5)
	assert.Error(t, err)
}

func TestPut_CanceledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Put(ctx, "", mustParse(t, "https://example.com"), 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "links.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(DriverModernc, dbPath)
	require.NoError(t, err)
	_, err = s.Put(ctx, "keep", mustParse(t, "https://example.com/kept"), 5)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(DriverModernc, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	u, err := reopened.Get(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/kept", u.String())
}

func TestPut_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	target := mustParse(t, "https://example.com")

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	results := make(chan string, workers*perWorker)
	errs := make(chan error, workers*perWorker)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				got, err := s.Put(ctx, "", target, 8)
				if err != nil {
					errs <- err
					continue
				}
				results <- got
			}
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Put failed: %v", err)
	}

	seen := make(map[string]bool)
	for got := range results {
		assert.False(t, seen[got], "slug %q returned twice", got)
		seen[got] = true
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
