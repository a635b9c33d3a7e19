package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/PokeMichele/lumo/internal/timeline"
)

var (
	// ErrDuplicate is returned when a project name is already taken.
	ErrDuplicate = errors.New("duplicate project name")

	// ErrNotFound is returned when no project has the given name.
	ErrNotFound = errors.New("project not found")

	// ErrEmptyName is returned when a project name is blank.
	ErrEmptyName = errors.New("empty project name")

	// ErrNilSnapshot is returned when Save is called without a timeline.
	ErrNilSnapshot = errors.New("nil snapshot")
)

// Project is a fully loaded project row with its timeline contents. Items
// carry resolved Source pointers into the Sources slice.
type Project struct {
	ID        string
	Name      string
	Epsilon   float64
	CreatedAt time.Time
	UpdatedAt time.Time
	Tracks    []timeline.Track
	Items     []timeline.Item
	Sources   []*timeline.MediaSource
}

// Info is one row of the project listing.
type Info struct {
	ID        string
	Name      string
	Items     int
	Duration  float64
	UpdatedAt time.Time
}

// Store persists projects to a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. The parent directory is
// created if needed and the file is kept private to the owning user.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil && !errors.Is(err, os.ErrNotExist) {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("chmod db path: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the raw handle for migrations and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Save stores the snapshot under the given project name, creating the
// project on first save and replacing its tracks, sources and items
// wholesale on every later one. Sources referenced by items but missing
// from the passed slice are taken from the items' resolved pointers, so a
// project always loads back with every source its items need. Returns the
// project id.
func (s *Store) Save(ctx context.Context, name string, snap *timeline.Snapshot, sources []*timeline.MediaSource) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if snap == nil {
		return "", ErrNilSnapshot
	}

	items := snap.Items()
	byID := make(map[string]*timeline.MediaSource, len(sources))
	for _, src := range sources {
		if src != nil {
			byID[src.ID] = src
		}
	}
	for _, it := range items {
		if _, ok := byID[it.SourceID]; ok {
			continue
		}
		if it.Source == nil {
			return "", fmt.Errorf("save project %q: item %s references unknown source %s", name, it.ID, it.SourceID)
		}
		byID[it.SourceID] = it.Source
	}

	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin save tx: %w", err)
	}

	var id, createdAt string
	err = tx.QueryRowContext(ctx, `SELECT project_id, created_at FROM projects WHERE name = ?`, name).Scan(&id, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		id = uuid.NewString()
		createdAt = ts(now)
	} else if err != nil {
		tx.Rollback() //nolint:errcheck
		return "", fmt.Errorf("look up project: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO projects(project_id, name, epsilon, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(project_id) DO UPDATE SET
	name=excluded.name,
	epsilon=excluded.epsilon,
	updated_at=excluded.updated_at
`, id, name, snap.Epsilon(), createdAt, ts(now)); err != nil {
		tx.Rollback() //nolint:errcheck
		return "", fmt.Errorf("upsert project: %w", err)
	}

	// Items reference sources and tracks, so they go first.
	for _, table := range []string{"items", "sources", "tracks"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE project_id = ?`, id); err != nil {
			tx.Rollback() //nolint:errcheck
			return "", fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, tr := range snap.Tracks() {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO tracks(project_id, track_order, track_id, kind, label)
VALUES (?, ?, ?, ?, ?)
`, id, tr.Order, tr.ID, tr.Kind.String(), tr.Label); err != nil {
			tx.Rollback() //nolint:errcheck
			return "", fmt.Errorf("insert track %d: %w", tr.Order, err)
		}
	}

	srcIDs := make([]string, 0, len(byID))
	for sid := range byID {
		srcIDs = append(srcIDs, sid)
	}
	sort.Strings(srcIDs)
	for _, sid := range srcIDs {
		src := byID[sid]
		if _, err := tx.ExecContext(ctx, `
INSERT INTO sources(project_id, source_id, kind, name, handle, duration, effect, intensity)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, id, src.ID, src.Kind.String(), src.Name, src.Handle, src.Duration, src.Effect.String(), src.Intensity); err != nil {
			tx.Rollback() //nolint:errcheck
			return "", fmt.Errorf("insert source %s: %w", src.ID, err)
		}
	}

	for _, it := range items {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO items(project_id, item_id, source_id, track_order, start, duration, media_offset, volume)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, id, it.ID, it.SourceID, it.Track, it.Start, it.Duration, it.Offset, it.Volume); err != nil {
			tx.Rollback() //nolint:errcheck
			return "", fmt.Errorf("insert item %s: %w", it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save: %w", err)
	}
	return id, nil
}

// Load reads the project with the given name and rebuilds the item source
// pointers from the stored sources.
func (s *Store) Load(ctx context.Context, name string) (*Project, error) {
	name = strings.TrimSpace(name)

	p := &Project{Name: name}
	var created, updated string
	err := s.db.QueryRowContext(ctx, `
SELECT project_id, epsilon, created_at, updated_at
FROM projects
WHERE name = ?
`, name).Scan(&p.ID, &p.Epsilon, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if p.CreatedAt, err = parseTS(created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTS(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	if p.Tracks, err = s.loadTracks(ctx, p.ID); err != nil {
		return nil, err
	}
	if p.Sources, err = s.loadSources(ctx, p.ID); err != nil {
		return nil, err
	}

	byID := make(map[string]*timeline.MediaSource, len(p.Sources))
	for _, src := range p.Sources {
		byID[src.ID] = src
	}
	if p.Items, err = s.loadItems(ctx, p.ID, byID); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns every stored project with its item count and timeline
// duration, most recently saved first.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.project_id, p.name, COUNT(i.item_id), COALESCE(MAX(i.start + i.duration), 0), p.updated_at
FROM projects p
LEFT JOIN items i ON i.project_id = p.project_id
GROUP BY p.project_id
ORDER BY p.updated_at DESC, p.name
`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	out := make([]Info, 0)
	for rows.Next() {
		var info Info
		var updated string
		if err := rows.Scan(&info.ID, &info.Name, &info.Items, &info.Duration, &updated); err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		if info.UpdatedAt, err = parseTS(updated); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter projects: %w", err)
	}
	return out, nil
}

// Delete removes the named project and everything it owns.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

// Rename changes a project's name. The new name must not be taken.
func (s *Store) Rename(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrEmptyName
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE projects SET name = ?, updated_at = ? WHERE name = ?
`, newName, ts(time.Now().UTC()), strings.TrimSpace(oldName))
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("%w: %q", ErrDuplicate, newName)
		}
		return fmt.Errorf("rename project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, oldName)
	}
	return nil
}

func (s *Store) loadTracks(ctx context.Context, projectID string) ([]timeline.Track, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT track_id, kind, track_order, label
FROM tracks
WHERE project_id = ?
ORDER BY track_order
`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	out := make([]timeline.Track, 0)
	for rows.Next() {
		var tr timeline.Track
		var kind string
		if err := rows.Scan(&tr.ID, &kind, &tr.Order, &tr.Label); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		if tr.Kind, err = timeline.ParseMediaKind(kind); err != nil {
			return nil, fmt.Errorf("track %s: %w", tr.ID, err)
		}
		out = append(out, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter tracks: %w", err)
	}
	return out, nil
}

func (s *Store) loadSources(ctx context.Context, projectID string) ([]*timeline.MediaSource, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT source_id, kind, name, handle, duration, effect, intensity
FROM sources
WHERE project_id = ?
ORDER BY source_id
`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	out := make([]*timeline.MediaSource, 0)
	for rows.Next() {
		src := &timeline.MediaSource{}
		var kind, effect string
		if err := rows.Scan(&src.ID, &kind, &src.Name, &src.Handle, &src.Duration, &effect, &src.Intensity); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		if src.Kind, err = timeline.ParseSourceKind(kind); err != nil {
			return nil, fmt.Errorf("source %s: %w", src.ID, err)
		}
		if src.Effect, err = timeline.ParseEffectKind(effect); err != nil {
			return nil, fmt.Errorf("source %s: %w", src.ID, err)
		}
		out = append(out, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter sources: %w", err)
	}
	return out, nil
}

func (s *Store) loadItems(ctx context.Context, projectID string, byID map[string]*timeline.MediaSource) ([]timeline.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT item_id, source_id, track_order, start, duration, media_offset, volume
FROM items
WHERE project_id = ?
ORDER BY track_order, start, item_id
`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	out := make([]timeline.Item, 0)
	for rows.Next() {
		var it timeline.Item
		if err := rows.Scan(&it.ID, &it.SourceID, &it.Track, &it.Start, &it.Duration, &it.Offset, &it.Volume); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		src, ok := byID[it.SourceID]
		if !ok {
			return nil, fmt.Errorf("item %s references missing source %s", it.ID, it.SourceID)
		}
		it.Source = src
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter items: %w", err)
	}
	return out, nil
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func isUniqueErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}
