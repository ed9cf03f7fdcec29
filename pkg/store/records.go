package store

import (
	"context"
	"slices"
	"strings"

	"github.com/matzehuels/gdivelog2uddf/pkg/divelog"
	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
)

const siteColumns = `
	site_id,
	COALESCE(site_parent_id, 0) AS site_parent_id,
	COALESCE(site_name, '') AS site_name,
	COALESCE(site_notes, '') AS site_notes`

// Site returns a single site.
func (s *Store) Site(ctx context.Context, id int64) (divelog.Site, error) {
	var site divelog.Site
	err := s.db.GetContext(ctx, &site, `SELECT `+siteColumns+` FROM Site WHERE site_id = ?`, id)
	if err != nil {
		return divelog.Site{}, queryErr(err, "site %d", id)
	}
	return site, nil
}

// Sites returns every site, including gdivelog's hidden root, by id.
func (s *Store) Sites(ctx context.Context) ([]divelog.Site, error) {
	var out []divelog.Site
	if err := s.db.SelectContext(ctx, &out, `SELECT `+siteColumns+` FROM Site ORDER BY site_id ASC`); err != nil {
		return nil, queryErr(err, "query sites")
	}
	return out, nil
}

// SiteName returns the full name of a site: the fragments of the site and
// its ancestors joined root to leaf with sep. The root record contributes
// no fragment. A missing ancestor is a NOT_FOUND error and a cycle in the
// parent chain is a DATA_INTEGRITY error.
func (s *Store) SiteName(ctx context.Context, id int64, sep string) (string, error) {
	var fragments []string
	visited := make(map[int64]bool)

	for cur := id; ; {
		if visited[cur] {
			return "", errors.New(errors.ErrCodeDataIntegrity,
				"site %d: parent chain loops back to site %d", id, cur)
		}
		visited[cur] = true

		site, err := s.Site(ctx, cur)
		if err != nil {
			if cur != id {
				return "", errors.Wrap(errors.GetCode(err), err, "site %d: resolve parent", id)
			}
			return "", err
		}
		if site.IsRoot() {
			break
		}
		fragments = append(fragments, site.Name)
		cur = site.ParentID
	}

	slices.Reverse(fragments)
	return strings.Join(fragments, sep), nil
}

// Buddies returns every buddy by id.
func (s *Store) Buddies(ctx context.Context) ([]divelog.Buddy, error) {
	var out []divelog.Buddy
	err := s.db.SelectContext(ctx, &out, `
		SELECT buddy_id,
			COALESCE(buddy_name, '') AS buddy_name,
			COALESCE(buddy_notes, '') AS buddy_notes
		FROM Buddy
		ORDER BY buddy_id ASC`)
	if err != nil {
		return nil, queryErr(err, "query buddies")
	}
	return out, nil
}

// Equipment returns every piece of equipment by id.
func (s *Store) Equipment(ctx context.Context) ([]divelog.Equipment, error) {
	var out []divelog.Equipment
	err := s.db.SelectContext(ctx, &out, `
		SELECT equipment_id,
			COALESCE(equipment_name, '') AS equipment_name,
			COALESCE(equipment_notes, '') AS equipment_notes
		FROM Equipment
		ORDER BY equipment_id ASC`)
	if err != nil {
		return nil, queryErr(err, "query equipment")
	}
	return out, nil
}

const tankColumns = `
	tank_id,
	COALESCE(tank_name, '') AS tank_name,
	COALESCE(tank_volume, 0) AS tank_volume,
	COALESCE(tank_wp, 0) AS tank_wp,
	COALESCE(tank_notes, '') AS tank_notes`

// Tanks returns every tank by id.
func (s *Store) Tanks(ctx context.Context) ([]divelog.Tank, error) {
	var out []divelog.Tank
	if err := s.db.SelectContext(ctx, &out, `SELECT `+tankColumns+` FROM Tank ORDER BY tank_id ASC`); err != nil {
		return nil, queryErr(err, "query tanks")
	}
	return out, nil
}

// Tank returns a single tank.
func (s *Store) Tank(ctx context.Context, id int64) (divelog.Tank, error) {
	var t divelog.Tank
	if err := s.db.GetContext(ctx, &t, `SELECT `+tankColumns+` FROM Tank WHERE tank_id = ?`, id); err != nil {
		return divelog.Tank{}, queryErr(err, "tank %d", id)
	}
	return t, nil
}

// Count returns the number of rows in the dive table.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM Dive`); err != nil {
		return 0, queryErr(err, "count dives")
	}
	return n, nil
}
