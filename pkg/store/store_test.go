package store

import (
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/gdivelog2uddf/pkg/cache"
	"github.com/matzehuels/gdivelog2uddf/pkg/divelog"
	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
)

// createFixtureDB writes the fixture log as a plain SQLite file. extra names
// further scripts under testdata to run after the fixture.
func createFixtureDB(t *testing.T, extra ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "divelog.db")
	db, err := sql.Open(DriverName, path)
	require.NoError(t, err)
	defer db.Close()

	for _, name := range append([]string{"schema.sql", "fixture.sql"}, extra...) {
		script, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		_, err = db.Exec(string(script))
		require.NoError(t, err, name)
	}
	return path
}

func openFixture(t *testing.T, extra ...string) *Store {
	t.Helper()
	s, err := Open(context.Background(), createFixtureDB(t, extra...), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func drain(t *testing.T, c *DiveCursor) []divelog.Dive {
	t.Helper()
	defer c.Close()
	var out []divelog.Dive
	for {
		d, err := c.Next(context.Background())
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, d)
	}
}

func TestDivesOrderedByStart(t *testing.T) {
	s := openFixture(t)

	c, err := s.Dives(context.Background(), DiveFilter{})
	require.NoError(t, err)
	dives := drain(t, c)

	require.Len(t, dives, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{dives[0].Number, dives[1].Number, dives[2].Number})
	assert.Equal(t, 2010, dives[0].Start.Year())
	assert.Equal(t, 14, dives[1].Start.Hour())
	assert.Equal(t, "", dives[1].Notes, "NULL notes scan as empty")
	assert.Equal(t, 0.0, dives[2].Weight, "NULL weight scans as zero")
	assert.False(t, dives[2].HasSite())
}

func TestDivesFilter(t *testing.T) {
	s := openFixture(t)

	c, err := s.Dives(context.Background(), DiveFilter{Numbers: []int64{3, 1}})
	require.NoError(t, err)
	dives := drain(t, c)

	require.Len(t, dives, 2)
	assert.Equal(t, int64(1), dives[0].Number)
	assert.Equal(t, int64(3), dives[1].Number)
}

func TestCursorAllowsAuxiliaryQueries(t *testing.T) {
	s := openFixture(t)
	ctx := context.Background()

	c, err := s.Dives(ctx, DiveFilter{})
	require.NoError(t, err)
	defer c.Close()

	d, err := c.Next(ctx)
	require.NoError(t, err)

	var times []int64
	err = s.Samples(ctx, d.ID, func(sm divelog.Sample) error {
		times = append(times, sm.Time)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 60, 300, 600, 900}, times)

	_, err = c.Next(ctx)
	require.NoError(t, err)
}

func TestSiteName(t *testing.T) {
	s := openFixture(t)
	ctx := context.Background()

	name, err := s.SiteName(ctx, 4, "/")
	require.NoError(t, err)
	assert.Equal(t, "Egypt/Red Sea/Thistlegorm", name)

	name, err = s.SiteName(ctx, 2, " - ")
	require.NoError(t, err)
	assert.Equal(t, "Egypt", name)

	name, err = s.SiteName(ctx, 1, "/")
	require.NoError(t, err)
	assert.Equal(t, "", name, "the root contributes no fragment")
}

func TestSiteNameCycle(t *testing.T) {
	s := openFixture(t, "broken_sites.sql")

	_, err := s.SiteName(context.Background(), 5, "/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDataIntegrity), "got %v", err)
}

func TestSiteNameMissingParent(t *testing.T) {
	s := openFixture(t, "broken_sites.sql")

	_, err := s.SiteName(context.Background(), 7, "/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)

	_, err = s.SiteName(context.Background(), 42, "/")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)
}

func TestRecords(t *testing.T) {
	s := openFixture(t)
	ctx := context.Background()

	buddies, err := s.Buddies(ctx)
	require.NoError(t, err)
	require.Len(t, buddies, 2)
	assert.Equal(t, "", buddies[1].Notes)

	ids, err := s.DiveBuddies(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	eq, err := s.Equipment(ctx)
	require.NoError(t, err)
	assert.Len(t, eq, 2)

	ids, err = s.DiveEquipment(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	tanks, err := s.Tanks(ctx)
	require.NoError(t, err)
	require.Len(t, tanks, 2)

	tank, err := s.Tank(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Stage", tank.Name)

	_, err = s.Tank(ctx, 9)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	usages, err := s.DiveTanks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, usages, 2)
	assert.Equal(t, 50.0, usages[1].O2)
	assert.Equal(t, int64(600), usages[1].StartTime)

	sites, err := s.Sites(ctx)
	require.NoError(t, err)
	assert.Len(t, sites, 4)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSamplesStopsOnCallbackError(t *testing.T) {
	s := openFixture(t)
	stop := errors.New(errors.ErrCodeInternal, "stop")

	calls := 0
	err := s.Samples(context.Background(), 1, func(divelog.Sample) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestOpenCompressedLog(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir(), 0)
	require.NoError(t, err)

	s, err := Open(ctx, filepath.Join("testdata", "divelog.glg"), Options{Cache: c})
	require.NoError(t, err)
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, s.Close())

	// Second open is served from the cache.
	s, err = Open(ctx, filepath.Join("testdata", "divelog.glg"), Options{Cache: c})
	require.NoError(t, err)
	defer s.Close()
	name, err := s.SiteName(ctx, 4, "/")
	require.NoError(t, err)
	assert.Equal(t, "Egypt/Red Sea/Thistlegorm", name)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope.glg"), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

// =============================================================================
// Error paths (sqlmock)
// =============================================================================

func setupMockStore(t *testing.T) (sqlmock.Sqlmock, *Store) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, New(sqlx.NewDb(db, DriverName), nil)
}

func TestDivesQueryError(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectQuery(`(?s)SELECT .* FROM Dive`).WillReturnError(sql.ErrConnDone)

	_, err := s.Dives(context.Background(), DiveFilter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStore))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDivesBadDatetime(t *testing.T) {
	mock, s := setupMockStore(t)

	rows := sqlmock.NewRows([]string{
		"dive_id", "dive_number", "dive_datetime", "dive_duration", "dive_maxdepth",
		"dive_mintemp", "dive_maxtemp", "dive_notes", "site_id", "dive_visibility", "dive_weight",
	}).AddRow(1, 1, "yesterday", 0, 0.0, 0.0, 0.0, "", 0, 0.0, 0.0)
	mock.ExpectQuery(`(?s)SELECT .* FROM Dive`).WillReturnRows(rows)

	c, err := s.Dives(context.Background(), DiveFilter{})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Next(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDataIntegrity))
}

func TestDivesFilterArgs(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectQuery(`WHERE dive_number IN \(\?, \?\)`).
		WithArgs(int64(4), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"dive_id"}))

	c, err := s.Dives(context.Background(), DiveFilter{Numbers: []int64{4, 7}})
	require.NoError(t, err)
	_, err = c.Next(context.Background())
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSiteNameQueryError(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectQuery(`FROM Site WHERE site_id = \?`).
		WithArgs(int64(3)).
		WillReturnError(sql.ErrConnDone)

	_, err := s.SiteName(context.Background(), 3, "/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStore))
}

func TestBuddiesQueryError(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectQuery(`FROM Buddy`).WillReturnError(sql.ErrConnDone)

	_, err := s.Buddies(context.Background())
	assert.True(t, errors.Is(err, errors.ErrCodeStore))
	assert.NoError(t, mock.ExpectationsWereMet())
}
