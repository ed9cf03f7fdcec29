package store

import (
	"context"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/matzehuels/gdivelog2uddf/pkg/divelog"
	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/segment"
)

const diveColumns = `
	dive_id,
	COALESCE(dive_number, 0) AS dive_number,
	COALESCE(dive_datetime, '') AS dive_datetime,
	COALESCE(dive_duration, 0) AS dive_duration,
	COALESCE(dive_maxdepth, 0) AS dive_maxdepth,
	COALESCE(dive_mintemp, 0) AS dive_mintemp,
	COALESCE(dive_maxtemp, 0) AS dive_maxtemp,
	COALESCE(dive_notes, '') AS dive_notes,
	COALESCE(site_id, 0) AS site_id,
	COALESCE(dive_visibility, 0) AS dive_visibility,
	COALESCE(dive_weight, 0) AS dive_weight`

// DiveFilter restricts the dives returned by Dives. The zero value selects
// every dive.
type DiveFilter struct {
	// Numbers keeps only dives with these dive numbers.
	Numbers []int64
}

// Dives opens a cursor over the dives matching filter, in ascending start
// time with ties broken by dive number.
func (s *Store) Dives(ctx context.Context, filter DiveFilter) (*DiveCursor, error) {
	query := `SELECT ` + diveColumns + ` FROM Dive`
	var args []any
	if len(filter.Numbers) > 0 {
		q, a, err := sqlx.In(query+` WHERE dive_number IN (?)`, filter.Numbers)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "build dive filter")
		}
		query, args = s.db.Rebind(q), a
	}
	query += ` ORDER BY dive_datetime ASC, dive_number ASC`

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, queryErr(err, "query dives")
	}
	return &DiveCursor{rows: rows}, nil
}

// DiveCursor streams dives. It implements segment.Cursor.
type DiveCursor struct {
	rows *sqlx.Rows
	done bool
}

// Next returns the next dive, or io.EOF when the cursor is exhausted.
func (c *DiveCursor) Next(ctx context.Context) (divelog.Dive, error) {
	if c.done {
		return divelog.Dive{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return divelog.Dive{}, err
	}
	if !c.rows.Next() {
		c.done = true
		if err := c.rows.Err(); err != nil {
			return divelog.Dive{}, queryErr(err, "read dives")
		}
		return divelog.Dive{}, io.EOF
	}

	var d divelog.Dive
	if err := c.rows.StructScan(&d); err != nil {
		return divelog.Dive{}, queryErr(err, "scan dive")
	}
	if err := d.ParseStart(); err != nil {
		return divelog.Dive{}, errors.Wrap(errors.ErrCodeDataIntegrity, err, "dive %d", d.Number)
	}
	return d, nil
}

// Close releases the underlying rows.
func (c *DiveCursor) Close() error {
	c.done = true
	return c.rows.Close()
}

var _ segment.Cursor = (*DiveCursor)(nil)

// Samples calls fn for every profile sample of a dive in ascending time.
// Iteration stops at the first error returned by fn.
func (s *Store) Samples(ctx context.Context, diveID int64, fn func(divelog.Sample) error) error {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT dive_id, profile_time,
			COALESCE(profile_depth, 0) AS profile_depth,
			COALESCE(profile_temperature, 0) AS profile_temperature
		FROM Profile
		WHERE dive_id = ?
		ORDER BY profile_time ASC`, diveID)
	if err != nil {
		return queryErr(err, "query samples of dive %d", diveID)
	}
	defer rows.Close()

	for rows.Next() {
		var sm divelog.Sample
		if err := rows.StructScan(&sm); err != nil {
			return queryErr(err, "scan sample of dive %d", diveID)
		}
		if err := fn(sm); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return queryErr(err, "read samples of dive %d", diveID)
	}
	return nil
}

// DiveTanks returns the tank usages of a dive in table order.
func (s *Store) DiveTanks(ctx context.Context, diveID int64) ([]divelog.DiveTank, error) {
	var out []divelog.DiveTank
	err := s.db.SelectContext(ctx, &out, `
		SELECT dive_tank_id, dive_id, tank_id,
			COALESCE(dive_tank_avg_depth, 0) AS dive_tank_avg_depth,
			COALESCE(dive_tank_O2, 0) AS dive_tank_O2,
			COALESCE(dive_tank_He, 0) AS dive_tank_He,
			COALESCE(dive_tank_stime, 0) AS dive_tank_stime,
			COALESCE(dive_tank_etime, 0) AS dive_tank_etime,
			COALESCE(dive_tank_spressure, 0) AS dive_tank_spressure,
			COALESCE(dive_tank_epressure, 0) AS dive_tank_epressure
		FROM Dive_Tank
		WHERE dive_id = ?
		ORDER BY dive_tank_id ASC`, diveID)
	if err != nil {
		return nil, queryErr(err, "query tanks of dive %d", diveID)
	}
	return out, nil
}

// DiveBuddies returns the buddy ids linked to a dive.
func (s *Store) DiveBuddies(ctx context.Context, diveID int64) ([]int64, error) {
	var out []int64
	err := s.db.SelectContext(ctx, &out,
		`SELECT buddy_id FROM Dive_Buddy WHERE dive_id = ? ORDER BY buddy_id ASC`, diveID)
	if err != nil {
		return nil, queryErr(err, "query buddies of dive %d", diveID)
	}
	return out, nil
}

// DiveEquipment returns the equipment ids linked to a dive.
func (s *Store) DiveEquipment(ctx context.Context, diveID int64) ([]int64, error) {
	var out []int64
	err := s.db.SelectContext(ctx, &out,
		`SELECT equipment_id FROM Dive_Equipment WHERE dive_id = ? ORDER BY equipment_id ASC`, diveID)
	if err != nil {
		return nil, queryErr(err, "query equipment of dive %d", diveID)
	}
	return out, nil
}
