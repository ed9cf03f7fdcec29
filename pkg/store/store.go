// Package store reads gdivelog dive logs.
//
// A gdivelog log is a SQLite database, usually bzip2-compressed on disk.
// [Open] detects compression, decompresses through a [cache.Cache] and opens
// the database read-only. Dives are streamed through a forward-only
// [DiveCursor]; every other table is small and read with short auxiliary
// queries while the cursor stays open.
package store

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/matzehuels/gdivelog2uddf/pkg/cache"
	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/observability"
)

// DriverName is the database/sql driver used for gdivelog logs.
const DriverName = "sqlite"

// cacheNamespace prefixes cache keys of decompressed logs.
const cacheNamespace = "glg"

var bzip2Magic = []byte("BZh")

// Options configures Open.
type Options struct {
	// Cache holds decompressed logs. Nil uses a NullCache owned by the store.
	Cache cache.Cache

	// Logger receives debug output. Nil discards it.
	Logger *log.Logger
}

// Store provides read-only access to a gdivelog database.
type Store struct {
	db     *sqlx.DB
	logger *log.Logger
	owned  cache.Cache
}

// New wraps an open database handle. It is used by tests and by callers that
// manage the connection themselves.
func New(db *sqlx.DB, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{db: db, logger: logger}
}

// Open opens the gdivelog log at path in read-only mode.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	c := opts.Cache
	var owned cache.Cache
	if c == nil {
		owned = cache.NewNullCache()
		c = owned
	}

	dbPath, err := resolve(ctx, path, c, logger)
	if err != nil {
		if owned != nil {
			owned.Close()
		}
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", dbPath)
	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		if owned != nil {
			owned.Close()
		}
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open database %s", path)
	}

	// Verify connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if owned != nil {
			owned.Close()
		}
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open database %s", path)
	}

	s := New(db, logger)
	s.owned = owned
	return s, nil
}

// Close closes the database connection and any temporary decompressed copy.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.owned != nil {
		if cerr := s.owned.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// resolve returns a path SQLite can open: path itself for a plain database,
// or a cached decompressed copy for a bzip2 log.
func resolve(ctx context.Context, path string, c cache.Cache, logger *log.Logger) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeNotFound, err, "dive log %s", path)
		}
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "open dive log %s", path)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic, err := br.Peek(len(bzip2Magic))
	if err != nil || !bytes.Equal(magic, bzip2Magic) {
		logger.Debug("dive log is not compressed", "path", path)
		return path, nil
	}

	hash, err := cache.HashReader(br)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read dive log %s", path)
	}

	key := cache.Key(cacheNamespace, hash)
	dbPath, hit, err := cache.Open(ctx, c, key, func() (io.Reader, error) {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return bzip2.NewReader(bufio.NewReader(f)), nil
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "decompress dive log %s", path)
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, cacheNamespace)
	} else {
		observability.Cache().OnCacheMiss(ctx, cacheNamespace)
	}
	logger.Debug("decompressed dive log", "path", path, "cached", hit)
	return dbPath, nil
}

// queryErr wraps a failed query, mapping sql.ErrNoRows to NOT_FOUND.
func queryErr(err error, format string, args ...any) error {
	if err == sql.ErrNoRows {
		return errors.Wrap(errors.ErrCodeNotFound, err, format, args...)
	}
	return errors.Wrap(errors.ErrCodeStore, err, format, args...)
}
