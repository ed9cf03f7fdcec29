// Package cache stores decompressed gdivelog databases on disk.
//
// gdivelog saves its log as a bzip2-compressed SQLite file. SQLite needs a
// plain file to open, so the store decompresses the log once and keeps the
// result under a key derived from the compressed content. Entries are files,
// not byte slices: callers receive a path they can hand to the SQL driver.
//
// Two implementations are provided:
//
//   - [FileCache] keeps entries in a directory across runs (~/.cache/gdivelog2uddf).
//   - [NullCache] writes entries to temporary files removed on Close.
package cache

import (
	"context"
	"io"
)

// Cache maps keys to files on disk.
type Cache interface {
	// Get returns the path of the entry for key and whether it exists.
	Get(ctx context.Context, key string) (path string, hit bool, err error)

	// Put copies r into the entry for key, replacing any previous entry,
	// and returns the entry's path.
	Put(ctx context.Context, key string, r io.Reader) (path string, err error)

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources. Paths returned by a NullCache become invalid.
	Close() error
}

// Open returns the entry for key, filling it from fill on a miss.
func Open(ctx context.Context, c Cache, key string, fill func() (io.Reader, error)) (path string, hit bool, err error) {
	path, hit, err = c.Get(ctx, key)
	if err != nil || hit {
		return path, hit, err
	}
	r, err := fill()
	if err != nil {
		return "", false, err
	}
	path, err = c.Put(ctx, key, r)
	return path, false, err
}
