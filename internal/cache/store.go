package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-browser/internal/filesystem"
	"media-browser/internal/logging"
	"media-browser/internal/media"
	"media-browser/internal/metrics"
)

const defaultTimeout = 5 * time.Second

// ErrClosed is returned by Save after Done.
var ErrClosed = errors.New("cache store is closed")

// StoreError reports a failed Cache Store operation. It is fatal to the
// enrichment of the root that owns the store.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store is one root's Cache Store.
type Store struct {
	db     *sql.DB
	dbPath string
	upsert *sql.Stmt

	mu     sync.Mutex
	rows   map[string]media.FileInfo
	closed bool
}

// Open opens (creating if needed) the cache database inside cacheDir and
// loads its rows. The database is held with an exclusive lock until Done.
func Open(ctx context.Context, cacheDir string) (*Store, error) {
	start := time.Now()
	dbPath := filepath.Join(cacheDir, media.CacheFileName)

	s, err := open(ctx, cacheDir, dbPath)
	recordOp("open", start, err)
	if err != nil {
		return nil, &StoreError{Op: "open", Path: dbPath, Err: err}
	}

	logging.Debug("Cache store opened at %s (%d rows)", dbPath, len(s.rows))
	return s, nil
}

func open(ctx context.Context, cacheDir, dbPath string) (*Store, error) {
	if err := filesystem.MkdirAllWithRetry(cacheDir, filesystem.DefaultRetryConfig()); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	// WAL with an exclusive lock: one writer per store file, and readers in
	// other processes are refused rather than seeing a half-written run.
	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_locking_mode=EXCLUSIVE&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The exclusive lock belongs to a connection, so there must only be one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:     db,
		dbPath: dbPath,
		rows:   make(map[string]media.FileInfo),
	}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close cache database after initialization failure: %v", closeErr)
		}
		return nil, err
	}

	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	initCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := s.db.PingContext(initCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := s.checkVersion(initCtx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(initCtx, createTableSQL()); err != nil {
		return fmt.Errorf("failed to create %s table: %w", tableName, err)
	}

	if err := s.ensureColumns(initCtx); err != nil {
		return err
	}

	stmt, err := s.db.PrepareContext(ctx, upsertSQL())
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	s.upsert = stmt

	return s.load(initCtx)
}

// checkVersion discards the table when it was written by a different
// FormatVersion. Cached rows are a pure derivative of the files, so
// dropping them only costs a re-enrichment.
func (s *Store) checkVersion(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read cache format version: %w", err)
	}
	if version == FormatVersion {
		return nil
	}

	if version != 0 {
		logging.Info("Cache format changed (%d -> %d), discarding %s", version, FormatVersion, s.dbPath)
	}
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+tableName); err != nil {
		return fmt.Errorf("failed to drop stale %s table: %w", tableName, err)
	}
	// PRAGMA arguments cannot be bound parameters.
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", FormatVersion)); err != nil {
		return fmt.Errorf("failed to write cache format version: %w", err)
	}
	return nil
}

// ensureColumns adds any declared column missing from an existing table.
func (s *Store) ensureColumns(ctx context.Context) error {
	for _, c := range columns {
		var exists bool
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) > 0
			FROM pragma_table_info(?)
			WHERE name = ?
		`, tableName, c.name).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check for %s column: %w", c.name, err)
		}
		if exists {
			continue
		}

		logging.Info("Migrating cache %s: adding %s column", s.dbPath, c.name)
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s NOT NULL DEFAULT %s", tableName, c.name, c.typ, c.defaultValue())
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add %s column: %w", c.name, err)
		}
	}
	return nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, selectAllSQL())
	if err != nil {
		return fmt.Errorf("failed to load cached rows: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.Warn("failed to close cache rows: %v", closeErr)
		}
	}()

	for rows.Next() {
		info, err := scanRow(rows)
		if err != nil {
			return fmt.Errorf("failed to scan cached row: %w", err)
		}
		s.rows[info.Path] = info
	}
	return rows.Err()
}

func scanRow(rows *sql.Rows) (media.FileInfo, error) {
	var info media.FileInfo
	var rootName string
	err := rows.Scan(
		&info.Path,
		&rootName,
		&info.RootDir,
		&info.LeafDir,
		&info.Size,
		&info.MtimeMs,
		&info.BirthtimeMs,
		&info.ContentType,
		&info.Duration,
		&info.Width,
		&info.Height,
		&info.Rating,
		&info.RatingText,
		&info.Keywords,
		&info.CameraModel,
		&info.DateTaken,
		&info.LatitudeDecimal,
		&info.LongitudeDecimal,
		&info.More,
	)
	info.RootName = media.RootName(rootName)
	return info, err
}

func rowArgs(info media.FileInfo) []any {
	return []any{
		info.Path,
		string(info.RootName),
		info.RootDir,
		info.LeafDir,
		info.Size,
		info.MtimeMs,
		info.BirthtimeMs,
		info.ContentType,
		info.Duration,
		info.Width,
		info.Height,
		info.Rating,
		info.RatingText,
		info.Keywords,
		info.CameraModel,
		info.DateTaken,
		info.LatitudeDecimal,
		info.LongitudeDecimal,
		info.More,
	}
}

// Read returns the stored FileInfo for status.Path if its size and
// modification time still match the live file. The returned value carries
// the live status and no ThumbnailURL.
func (s *Store) Read(status media.FileStatus) (media.FileInfo, bool) {
	s.mu.Lock()
	info, ok := s.rows[status.Path]
	s.mu.Unlock()

	if !ok || info.Size != status.Size || info.MtimeMs != status.MtimeMs {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return media.FileInfo{}, false
	}

	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	info.FileStatus = status
	info.ThumbnailURL = ""
	return info, true
}

// Save inserts or updates the row for info.Path in its own transaction.
func (s *Store) Save(ctx context.Context, info media.FileInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &StoreError{Op: "save", Path: info.Path, Err: ErrClosed}
	}

	start := time.Now()
	err := s.save(ctx, info)
	recordOp("save", start, err)
	if err != nil {
		return &StoreError{Op: "save", Path: info.Path, Err: err}
	}

	info.ThumbnailURL = ""
	s.rows[info.Path] = info
	return nil
}

func (s *Store) save(ctx context.Context, info media.FileInfo) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
			}
		}
	}()

	if _, err = tx.StmtContext(ctx, s.upsert).ExecContext(ctx, rowArgs(info)...); err != nil {
		return fmt.Errorf("failed to upsert row: %w", err)
	}
	return tx.Commit()
}

// Len returns the number of rows in the store, fresh or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Done checkpoints the WAL into the database file and closes the store,
// releasing its lock. Calling Done more than once is a no-op.
func (s *Store) Done() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var errs []error
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		errs = append(errs, fmt.Errorf("failed to checkpoint: %w", err))
	}
	if err := s.upsert.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close statement: %w", err))
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}

	err := errors.Join(errs...)
	recordOp("checkpoint", start, err)
	if err != nil {
		return &StoreError{Op: "done", Path: s.dbPath, Err: err}
	}
	return nil
}

func recordOp(op string, start time.Time, err error) {
	metrics.CacheStoreOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CacheStoreErrors.WithLabelValues(op).Inc()
	}
}
