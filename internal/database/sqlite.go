package database

import (
	"PriceTracker/internal/models"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	_ "modernc.org/sqlite" // pure Go driver
)

// ErrStorageUnavailable wraps every failure of the underlying SQLite
// storage. Callers treat it as fatal for the current operation only:
// log, skip the URL, keep the sweep alive.
var ErrStorageUnavailable = errors.New("storage unavailable")

// SnapshotStore owns the products table. All mutations of persisted
// product state go through it; writes are synchronous, so a crash right
// after a successful call never loses the write.
type SnapshotStore struct {
	db *sql.DB
}

// Open initializes the store at the given path, applying the schema and
// the production pragmas (WAL, busy timeout).
func Open(filepath string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", filepath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorageUnavailable, filepath, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, p, err)
		}
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS products (
		"id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		"url" TEXT UNIQUE NOT NULL,
		"title" TEXT,
		"price" REAL,
		"availability" TEXT,
		"image_url" TEXT,
		"is_invalid" BOOLEAN DEFAULT 0,
		"last_updated" INTEGER
	);`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create table: %v", ErrStorageUnavailable, err)
	}

	// Databases created before invalidation tracking existed lack the
	// is_invalid column; add it in place.
	if err := migrateInvalidColumn(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrStorageUnavailable, err)
	}
	return &SnapshotStore{db: db}, nil
}

func migrateInvalidColumn(db *sql.DB) error {
	rows, err := db.Query(`PRAGMA table_info(products)`)
	if err != nil {
		return fmt.Errorf("%w: table_info: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	hasInvalid := false
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("%w: table_info scan: %v", ErrStorageUnavailable, err)
		}
		if name == "is_invalid" {
			hasInvalid = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: table_info rows: %v", ErrStorageUnavailable, err)
	}

	if !hasInvalid {
		if _, err := db.Exec(`ALTER TABLE products ADD COLUMN is_invalid BOOLEAN DEFAULT 0`); err != nil {
			return fmt.Errorf("%w: add is_invalid column: %v", ErrStorageUnavailable, err)
		}
	}
	return nil
}

// OpenMemory opens an in-memory store for tests. Each connection to
// ":memory:" is its own database, so the pool is pinned to a single
// connection. Closed automatically via t.Cleanup.
func OpenMemory(t testing.TB) *SnapshotStore {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("database.OpenMemory: %v", err)
	}
	store.db.SetMaxOpenConns(1)
	t.Cleanup(func() { store.Close() })
	return store
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// Upsert creates the record for url or overwrites all fields of the
// existing one. Either way is_invalid is cleared and last_updated
// refreshed. Idempotent in effect on the data fields.
func (s *SnapshotStore) Upsert(url, title string, price *float64, availability models.Availability, imageURL string) error {
	query := `
	INSERT INTO products (url, title, price, availability, image_url, is_invalid, last_updated)
	VALUES (?, ?, ?, ?, ?, 0, ?)
	ON CONFLICT(url) DO UPDATE SET
		title = excluded.title,
		price = excluded.price,
		availability = excluded.availability,
		image_url = excluded.image_url,
		is_invalid = 0,
		last_updated = excluded.last_updated;
	`
	_, err := s.db.Exec(query, url, title, nullPrice(price), string(availability), imageURL, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", ErrStorageUnavailable, url, err)
	}
	return nil
}

// Get reads the current stored record for url. The second return value is
// false when no record exists.
func (s *SnapshotStore) Get(url string) (models.PersistedRecord, bool, error) {
	row := s.db.QueryRow(`
		SELECT url, title, price, availability, image_url, is_invalid, last_updated
		FROM products WHERE url = ?`, url)

	var (
		rec         models.PersistedRecord
		price       sql.NullFloat64
		avail       sql.NullString
		lastUpdated sql.NullInt64
	)
	err := row.Scan(&rec.URL, &rec.Title, &price, &avail, &rec.ImageURL, &rec.IsInvalid, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PersistedRecord{}, false, nil
	}
	if err != nil {
		return models.PersistedRecord{}, false, fmt.Errorf("%w: get %s: %v", ErrStorageUnavailable, url, err)
	}

	if price.Valid {
		v := price.Float64
		rec.Price = &v
	}
	if avail.Valid {
		rec.Availability = models.Availability(avail.String)
	} else {
		rec.Availability = models.Unknown
	}
	if lastUpdated.Valid {
		rec.LastUpdated = time.Unix(lastUpdated.Int64, 0)
	}
	return rec, true, nil
}

// MarkInvalid flags a URL whose fetch keeps failing. Other fields are
// untouched. Flagging is UPDATE-only: a URL never stored stays absent
// rather than gaining a stub row, so a configured URL that has never
// scraped successfully is retried and re-alerted every sweep until it
// works once.
func (s *SnapshotStore) MarkInvalid(url string) error {
	return s.setInvalid(url, true)
}

// ClearInvalid restores a previously invalid URL after a successful fetch.
func (s *SnapshotStore) ClearInvalid(url string) error {
	return s.setInvalid(url, false)
}

func (s *SnapshotStore) setInvalid(url string, invalid bool) error {
	_, err := s.db.Exec(`UPDATE products SET is_invalid = ? WHERE url = ?`, invalid, url)
	if err != nil {
		return fmt.Errorf("%w: set invalid=%v %s: %v", ErrStorageUnavailable, invalid, url, err)
	}
	return nil
}

// ListValid returns the URLs not currently flagged invalid. Ordering is
// unspecified; callers must not depend on it.
func (s *SnapshotStore) ListValid() ([]string, error) {
	return s.listByValidity(false)
}

// ListInvalid returns the URLs currently flagged invalid.
func (s *SnapshotStore) ListInvalid() ([]string, error) {
	return s.listByValidity(true)
}

func (s *SnapshotStore) listByValidity(invalid bool) ([]string, error) {
	rows, err := s.db.Query(`SELECT url FROM products WHERE is_invalid = ?`, invalid)
	if err != nil {
		return nil, fmt.Errorf("%w: list invalid=%v: %v", ErrStorageUnavailable, invalid, err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("%w: list scan: %v", ErrStorageUnavailable, err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list rows: %v", ErrStorageUnavailable, err)
	}
	return urls, nil
}

// Delete permanently removes the record for url. Administrative use only.
func (s *SnapshotStore) Delete(url string) error {
	_, err := s.db.Exec(`DELETE FROM products WHERE url = ?`, url)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStorageUnavailable, url, err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *SnapshotStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %v", ErrStorageUnavailable, err)
	}
	return n, nil
}

// All returns every stored record, most recently updated first. Used by
// the admin listing and the read-only API.
func (s *SnapshotStore) All(limit, offset int) ([]models.PersistedRecord, error) {
	query := `
		SELECT url, title, price, availability, image_url, is_invalid, last_updated
		FROM products ORDER BY last_updated DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: all: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var records []models.PersistedRecord
	for rows.Next() {
		var (
			rec         models.PersistedRecord
			price       sql.NullFloat64
			avail       sql.NullString
			lastUpdated sql.NullInt64
		)
		if err := rows.Scan(&rec.URL, &rec.Title, &price, &avail, &rec.ImageURL, &rec.IsInvalid, &lastUpdated); err != nil {
			return nil, fmt.Errorf("%w: all scan: %v", ErrStorageUnavailable, err)
		}
		if price.Valid {
			v := price.Float64
			rec.Price = &v
		}
		if avail.Valid {
			rec.Availability = models.Availability(avail.String)
		} else {
			rec.Availability = models.Unknown
		}
		if lastUpdated.Valid {
			rec.LastUpdated = time.Unix(lastUpdated.Int64, 0)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: all rows: %v", ErrStorageUnavailable, err)
	}
	return records, nil
}

func nullPrice(price *float64) interface{} {
	if price == nil {
		return nil
	}
	return *price
}
