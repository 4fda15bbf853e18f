// ABOUTME: Slug allocation shared by every LinkStore implementation
// ABOUTME: Accepts whitelisted custom slugs as-is, otherwise retries random slugs until free

package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"unicode/utf8"

	"github.com/2389/lnk/internal/slug"
)

// allocate picks the slug Put will write. Custom slugs that pass the whitelist are used
// without an occupancy check. Everything else goes through the generation loop.
func (o *options) allocate(ctx context.Context, custom string, length int, lookup func(context.Context, string) (*url.URL, error)) (string, error) {
	if custom != "" && slug.IsValidCustom(custom) {
		return custom, nil
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate := o.generate(length)
		_, err := lookup(ctx, candidate)
		if errors.Is(err, ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", candidate, err)
		}

		if o.maxAttempts > 0 && attempt >= o.maxAttempts {
			return "", fmt.Errorf("%w: %d candidates of length %d occupied", ErrKeyspaceExhausted, attempt, length)
		}
	}
}

// decodeTarget turns a stored value back into a URI, flagging anything that
// could not have been written by Put as corruption.
func decodeTarget(slugValue string, raw []byte) (*url.URL, error) {
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: slug %q: target is not valid UTF-8", ErrCorrupt, slugValue)
	}
	u, err := url.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: slug %q: %v", ErrCorrupt, slugValue, err)
	}
	return u, nil
}
