package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/memory-stitch/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Single connection: concurrent writers queue instead of failing busy.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL DEFAULT '',
		body        TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS memory_images (
		memory_id   TEXT NOT NULL REFERENCES memories(id),
		seq         INTEGER NOT NULL,
		data        BLOB NOT NULL,
		PRIMARY KEY (memory_id, seq)
	);

	CREATE TABLE IF NOT EXISTS patterns (
		id          TEXT PRIMARY KEY,
		memory_id   TEXT NOT NULL REFERENCES memories(id),
		identifier  TEXT,
		grid        TEXT NOT NULL,
		grid_size   INTEGER NOT NULL,
		cell_size   INTEGER NOT NULL,
		version     INTEGER NOT NULL DEFAULT 1,
		supersedes  TEXT,
		created_at  TEXT NOT NULL,
		deleted_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_patterns_identifier ON patterns(identifier);
	CREATE INDEX IF NOT EXISTS idx_patterns_memory ON patterns(memory_id, version);
	CREATE INDEX IF NOT EXISTS idx_patterns_deleted ON patterns(deleted_at);
	CREATE INDEX IF NOT EXISTS idx_patterns_grid_size ON patterns(grid_size);
	`
	_, err := s.db.Exec(schema)
	return err
}

const patternColumns = `p.id, p.memory_id, p.version, p.supersedes, p.identifier, p.grid,
	       p.grid_size, p.cell_size, p.created_at, p.deleted_at, m.title, m.body`

// latestFrom selects only the newest active version of each memory's pattern.
const latestFrom = `
	FROM patterns p
	INNER JOIN memories m ON m.id = p.memory_id
	INNER JOIN (
		SELECT memory_id, MAX(version) AS max_ver
		FROM patterns WHERE deleted_at IS NULL
		GROUP BY memory_id
	) latest ON p.memory_id = latest.memory_id AND p.version = latest.max_ver
	WHERE p.deleted_at IS NULL`

func (s *SQLiteStore) Save(ctx context.Context, p SaveParams) (*model.SavedPattern, error) {
	now := time.Now().UTC()
	memoryID := s.newID()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memories (id, title, body, created_at) VALUES (?, ?, ?, ?)`,
		memoryID, p.Memory.Title, p.Memory.Body, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}

	for i, img := range p.Memory.Images {
		if len(img) == 0 {
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO memory_images (memory_id, seq, data) VALUES (?, ?, ?)`,
			memoryID, i, img)
		if err != nil {
			return nil, fmt.Errorf("insert image: %w", err)
		}
	}

	id, err := s.insertPattern(ctx, tx, memoryID, 1, "", p.Record, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.SavedPattern{
		ID:        id,
		MemoryID:  memoryID,
		Version:   1,
		Memory:    p.Memory,
		Record:    p.Record,
		CreatedAt: now.Truncate(time.Second),
	}, nil
}

func (s *SQLiteStore) Supersede(ctx context.Context, p SupersedeParams) (*model.SavedPattern, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var memoryID string
	err = tx.QueryRowContext(ctx,
		`SELECT memory_id FROM patterns WHERE id = ? AND deleted_at IS NULL`, p.PatternID).Scan(&memoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p.PatternID)
	}

	var maxVersion int
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(version) FROM patterns WHERE memory_id = ?`, memoryID).Scan(&maxVersion); err != nil {
		return nil, err
	}

	id, err := s.insertPattern(ctx, tx, memoryID, maxVersion+1, p.PatternID, p.Record, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.byID(ctx, id)
}

func (s *SQLiteStore) insertPattern(ctx context.Context, tx *sql.Tx, memoryID string, version int,
	supersedes string, rec model.PatternRecord, now time.Time) (string, error) {
	grid, err := json.Marshal(rec.Grid)
	if err != nil {
		return "", fmt.Errorf("marshal grid: %w", err)
	}

	var identifier, prev *string
	if rec.Identifier != "" {
		identifier = &rec.Identifier
	}
	if supersedes != "" {
		prev = &supersedes
	}

	id := s.newID()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO patterns (id, memory_id, identifier, grid, grid_size, cell_size, version, supersedes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, memoryID, identifier, string(grid), rec.Scheme.GridSize, rec.Scheme.CellSize,
		version, prev, now.Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("insert pattern: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, identifier string) (*model.SavedPattern, error) {
	identifier = strings.ToUpper(strings.TrimSpace(identifier))
	patterns, err := s.query(ctx,
		`SELECT `+patternColumns+latestFrom+` AND p.identifier = ? ORDER BY p.id DESC LIMIT 1`,
		identifier)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, identifier)
	}
	return &patterns[0], nil
}

// History returns every version of a memory's pattern, newest first,
// including deleted ones.
func (s *SQLiteStore) History(ctx context.Context, memoryID string) ([]model.SavedPattern, error) {
	patterns, err := s.query(ctx,
		`SELECT `+patternColumns+`
		 FROM patterns p INNER JOIN memories m ON m.id = p.memory_id
		 WHERE p.memory_id = ? ORDER BY p.version DESC`, memoryID)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: memory %s", ErrNotFound, memoryID)
	}
	return patterns, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.SavedPattern, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + patternColumns + latestFrom
	var args []interface{}
	if p.GridSize > 0 {
		query += ` AND p.grid_size = ?`
		args = append(args, p.GridSize)
	}
	query += ` ORDER BY p.id DESC LIMIT ?`
	args = append(args, limit)

	return s.query(ctx, query, args...)
}

func (s *SQLiteStore) All(ctx context.Context) ([]model.SavedPattern, error) {
	return s.query(ctx, `SELECT `+patternColumns+latestFrom+` ORDER BY p.id`)
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	identifier := strings.ToUpper(strings.TrimSpace(p.Identifier))
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.memory_id`+latestFrom+` AND p.identifier = ?`, identifier)
	if err != nil {
		return err
	}
	var memoryIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		memoryIDs = append(memoryIDs, id)
	}
	rows.Close()

	if len(memoryIDs) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, identifier)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, id := range memoryIDs {
		if p.Hard {
			for _, stmt := range []string{
				`DELETE FROM patterns WHERE memory_id = ?`,
				`DELETE FROM memory_images WHERE memory_id = ?`,
				`DELETE FROM memories WHERE id = ?`,
			} {
				if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
					return err
				}
			}
			continue
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE patterns SET deleted_at = ? WHERE memory_id = ? AND deleted_at IS NULL`, now, id)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) byID(ctx context.Context, id string) (*model.SavedPattern, error) {
	patterns, err := s.query(ctx,
		`SELECT `+patternColumns+`
		 FROM patterns p INNER JOIN memories m ON m.id = p.memory_id
		 WHERE p.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &patterns[0], nil
}

// query scans patterns and then attaches each memory's images.
func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) ([]model.SavedPattern, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var patterns []model.SavedPattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range patterns {
		imgs, err := s.images(ctx, patterns[i].MemoryID)
		if err != nil {
			return nil, err
		}
		patterns[i].Memory.Images = imgs
	}
	return patterns, nil
}

func (s *SQLiteStore) images(ctx context.Context, memoryID string) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM memory_images WHERE memory_id = ? ORDER BY seq`, memoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imgs [][]byte
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		imgs = append(imgs, b)
	}
	return imgs, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPattern(row scanner) (model.SavedPattern, error) {
	var p model.SavedPattern
	var supersedes, identifier, deletedAt sql.NullString
	var grid, createdAt string

	err := row.Scan(
		&p.ID, &p.MemoryID, &p.Version, &supersedes, &identifier, &grid,
		&p.Record.Scheme.GridSize, &p.Record.Scheme.CellSize, &createdAt, &deletedAt,
		&p.Memory.Title, &p.Memory.Body,
	)
	if err != nil {
		return p, err
	}

	if err := json.Unmarshal([]byte(grid), &p.Record.Grid); err != nil {
		return p, fmt.Errorf("decode grid of %s: %w", p.ID, err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if supersedes.Valid {
		p.Supersedes = supersedes.String
	}
	if identifier.Valid {
		p.Record.Identifier = identifier.String
	}
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339, deletedAt.String)
		p.DeletedAt = &t
	}
	return p, nil
}
