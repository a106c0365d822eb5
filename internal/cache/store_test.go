package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"media-browser/internal/media"
)

func sampleInfo(dir, name string, size int64, mtime float64) media.FileInfo {
	rooted := media.NewRooted(media.RootPictures, dir)
	return media.FileInfo{
		FileStatus: media.FileStatus{
			Rooted:      rooted,
			Path:        filepath.Join(dir, name),
			Size:        size,
			MtimeMs:     mtime,
			BirthtimeMs: mtime - 1000,
		},
		FileProperties: media.FileProperties{
			ContentType:      "image/jpeg",
			Width:            640,
			Height:           480,
			Rating:           75,
			RatingText:       "4 Stars",
			Keywords:         `["holiday","beach"]`,
			CameraModel:      "X100",
			DateTaken:        1.6e12,
			LatitudeDecimal:  51.5,
			LongitudeDecimal: -0.12,
			More:             "Custom.Key\t\"value\"",
		},
		ThumbnailURL: "file:///ignored.jpg",
	}
}

func openStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestSchemaStatements(t *testing.T) {
	create := createTableSQL()
	for _, c := range columns {
		if !strings.Contains(create, c.name+" "+string(c.typ)) {
			t.Errorf("createTableSQL() missing column %s", c.name)
		}
	}
	if !strings.Contains(create, "path TEXT NOT NULL PRIMARY KEY") {
		t.Errorf("createTableSQL() does not key on path:\n%s", create)
	}

	upsert := upsertSQL()
	if got := strings.Count(upsert, "?"); got != len(columns) {
		t.Errorf("upsertSQL() has %d placeholders, want %d", got, len(columns))
	}
	if strings.Contains(upsert, "path=excluded.path") {
		t.Error("upsertSQL() must not update the primary key")
	}

	if got := len(rowArgs(media.FileInfo{})); got != len(columns) {
		t.Errorf("rowArgs() returns %d values, want %d", got, len(columns))
	}
}

func TestStore_SaveAndRead(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, media.DefaultCacheDirName)

	s := openStore(t, cacheDir)
	want := sampleInfo(dir, "a.jpg", 2048, 1700000000123.456)
	if err := s.Save(context.Background(), want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, ok := s.Read(want.FileStatus)
	if !ok {
		t.Fatal("Read() after Save() reported absent")
	}
	want.ThumbnailURL = ""
	if got != want {
		t.Errorf("Read() = %+v, want %+v", got, want)
	}

	if err := s.Done(); err != nil {
		t.Fatalf("Done() error = %v", err)
	}

	// Durable across reopen.
	s = openStore(t, cacheDir)
	defer func() {
		if err := s.Done(); err != nil {
			t.Errorf("Done() error = %v", err)
		}
	}()

	got, ok = s.Read(want.FileStatus)
	if !ok {
		t.Fatal("Read() after reopen reported absent")
	}
	if got != want {
		t.Errorf("Read() after reopen = %+v, want %+v", got, want)
	}
}

func TestStore_ReadFreshness(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, filepath.Join(dir, media.DefaultCacheDirName))
	defer func() { _ = s.Done() }()

	stored := sampleInfo(dir, "a.jpg", 2048, 1000.5)
	if err := s.Save(context.Background(), stored); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*media.FileStatus)
		want   bool
	}{
		{name: "identical", mutate: func(*media.FileStatus) {}, want: true},
		{name: "birthtime differs", mutate: func(fs *media.FileStatus) { fs.BirthtimeMs = 1 }, want: true},
		{name: "mtime differs", mutate: func(fs *media.FileStatus) { fs.MtimeMs = 1000.6 }, want: false},
		{name: "size differs", mutate: func(fs *media.FileStatus) { fs.Size = 2049 }, want: false},
		{name: "never seen", mutate: func(fs *media.FileStatus) { fs.Path = filepath.Join(dir, "b.jpg") }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := stored.FileStatus
			tt.mutate(&status)
			got, ok := s.Read(status)
			if ok != tt.want {
				t.Fatalf("Read() ok = %v, want %v", ok, tt.want)
			}
			if ok && got.FileStatus != status {
				t.Errorf("Read() status = %+v, want live status %+v", got.FileStatus, status)
			}
		})
	}
}

func TestStore_SaveUpdatesInPlace(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, media.DefaultCacheDirName)
	s := openStore(t, cacheDir)

	first := sampleInfo(dir, "a.jpg", 2048, 1000)
	second := sampleInfo(dir, "a.jpg", 4096, 2000)
	second.Width = 1920

	for _, info := range []media.FileInfo{first, second} {
		if err := s.Save(context.Background(), info); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if _, ok := s.Read(first.FileStatus); ok {
		t.Error("Read() returned the overwritten row")
	}
	got, ok := s.Read(second.FileStatus)
	if !ok || got.Width != 1920 {
		t.Errorf("Read() = %+v, %v; want updated row", got, ok)
	}

	if err := s.Done(); err != nil {
		t.Fatalf("Done() error = %v", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(cacheDir, media.CacheFileName))
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + tableName).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("table has %d rows, want 1", count)
	}
}

func TestStore_DoneIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, filepath.Join(dir, media.DefaultCacheDirName))

	if err := s.Done(); err != nil {
		t.Fatalf("first Done() error = %v", err)
	}
	if err := s.Done(); err != nil {
		t.Fatalf("second Done() error = %v", err)
	}

	err := s.Save(context.Background(), sampleInfo(dir, "a.jpg", 1, 1))
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Save() after Done() error = %v, want ErrClosed", err)
	}
	var storeErr *StoreError
	if !errors.As(err, &storeErr) || storeErr.Op != "save" {
		t.Errorf("Save() after Done() error = %#v, want *StoreError with Op save", err)
	}
}

func TestStore_FormatVersionChangeDiscardsRows(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, media.DefaultCacheDirName)

	s := openStore(t, cacheDir)
	if err := s.Save(context.Background(), sampleInfo(dir, "a.jpg", 1, 1)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Done(); err != nil {
		t.Fatalf("Done() error = %v", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(cacheDir, media.CacheFileName))
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", FormatVersion+1)); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("db.Close() error = %v", err)
	}

	s = openStore(t, cacheDir)
	defer func() { _ = s.Done() }()
	if s.Len() != 0 {
		t.Errorf("Len() after version change = %d, want 0", s.Len())
	}
}

func TestStore_AddsMissingColumns(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, media.DefaultCacheDirName)
	s := openStore(t, cacheDir)
	if err := s.Done(); err != nil {
		t.Fatalf("Done() error = %v", err)
	}

	// Recreate the table as an older build would have, without "more".
	db, err := sql.Open("sqlite3", filepath.Join(cacheDir, media.CacheFileName))
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	stmts := []string{
		"DROP TABLE " + tableName,
		"CREATE TABLE " + tableName + " (path TEXT NOT NULL PRIMARY KEY, size INTEGER NOT NULL DEFAULT 0, mtime_ms REAL NOT NULL DEFAULT 0)",
		"INSERT INTO " + tableName + " (path, size, mtime_ms) VALUES ('/r/a.jpg', 10, 20)",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("db.Close() error = %v", err)
	}

	s = openStore(t, cacheDir)
	defer func() { _ = s.Done() }()

	got, ok := s.Read(media.FileStatus{Path: "/r/a.jpg", Size: 10, MtimeMs: 20})
	if !ok {
		t.Fatal("Read() of pre-existing row reported absent")
	}
	if got.More != "" || got.Width != 0 {
		t.Errorf("added columns not defaulted: %+v", got.FileProperties)
	}
	if err := s.Save(context.Background(), sampleInfo(dir, "b.jpg", 1, 1)); err != nil {
		t.Errorf("Save() into migrated table error = %v", err)
	}
}

func TestStoreError(t *testing.T) {
	inner := errors.New("disk full")
	err := &StoreError{Op: "save", Path: "/r/a.jpg", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("StoreError does not unwrap to its cause")
	}
	if got, want := err.Error(), "cache save /r/a.jpg: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
