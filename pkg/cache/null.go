package cache

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// NullCache never keeps entries across runs. Put writes to a temporary file
// that is removed on Close; Get always misses.
// Useful for testing or when caching should be disabled.
type NullCache struct {
	mu    sync.Mutex
	files []string
}

// NewNullCache creates a null cache.
func NewNullCache() *NullCache {
	return &NullCache{}
}

// Get always returns a cache miss.
func (c *NullCache) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

// Put copies r to a temporary file.
func (c *NullCache) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "gdivelog-*.db")
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.files = append(c.files, tmp.Name())
	c.mu.Unlock()

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r}); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temporary entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	return tmp.Name(), nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close removes every temporary file written by Put.
func (c *NullCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var first error
	for _, f := range c.files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) && first == nil {
			first = err
		}
	}
	c.files = nil
	return first
}

// Ensure NullCache implements Cache.
var _ Cache = (*NullCache)(nil)
