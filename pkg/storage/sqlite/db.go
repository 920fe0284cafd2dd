package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"blood-helpline/pkg/models"

	_ "modernc.org/sqlite"
)

// Schema creates the intake record and donor directory tables
const Schema = `
CREATE TABLE IF NOT EXISTS intake_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    call_id TEXT NOT NULL,
    name TEXT,
    phone TEXT,
    blood_group TEXT,
    hospital TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_intake_records_call_id ON intake_records(call_id);

CREATE TABLE IF NOT EXISTS donors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    donor_name TEXT,
    donor_phone TEXT NOT NULL,
    blood_group TEXT NOT NULL
);
`

// DB is a local SQLite record store and donor directory
type DB struct {
	conn *sql.DB
	path string
}

// Open opens or creates a SQLite database at the given path
func Open(path string) (*DB, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return initDB(conn, path)
}

// OpenInMemory creates an in-memory SQLite database (for testing)
func OpenInMemory() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every pooled connection would otherwise get its own empty database
	conn.SetMaxOpenConns(1)

	return initDB(conn, ":memory:")
}

func initDB(conn *sql.DB, path string) (*DB, error) {
	if _, err := conn.Exec(Schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &DB{conn: conn, path: path}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// AppendRecord inserts a completed intake row
func (db *DB) AppendRecord(ctx context.Context, record models.IntakeRecord) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO intake_records (call_id, name, phone, blood_group, hospital) VALUES (?, ?, ?, ?, ?)`,
		record.CallID, record.Name, record.Phone, record.BloodGroup, record.Hospital,
	)
	if err != nil {
		return fmt.Errorf("failed to insert intake record: %w", err)
	}
	return nil
}

// Records returns every intake row in insertion order
func (db *DB) Records(ctx context.Context) ([]models.IntakeRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT call_id, name, phone, blood_group, hospital FROM intake_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query intake records: %w", err)
	}
	defer rows.Close()

	var records []models.IntakeRecord
	for rows.Next() {
		var r models.IntakeRecord
		if err := rows.Scan(&r.CallID, &r.Name, &r.Phone, &r.BloodGroup, &r.Hospital); err != nil {
			return nil, fmt.Errorf("failed to scan intake record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// AddDonor registers a donor in the directory
func (db *DB) AddDonor(ctx context.Context, donor models.DonorRecord) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO donors (donor_name, donor_phone, blood_group) VALUES (?, ?, ?)`,
		donor.Name, donor.Phone, donor.BloodGroup,
	)
	if err != nil {
		return fmt.Errorf("failed to insert donor: %w", err)
	}
	return nil
}

// ListDonors returns the donor directory in registration order
func (db *DB) ListDonors(ctx context.Context) ([]models.DonorRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT COALESCE(donor_name, ''), donor_phone, blood_group FROM donors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query donors: %w", err)
	}
	defer rows.Close()

	var donors []models.DonorRecord
	for rows.Next() {
		var d models.DonorRecord
		if err := rows.Scan(&d.Name, &d.Phone, &d.BloodGroup); err != nil {
			return nil, fmt.Errorf("failed to scan donor: %w", err)
		}
		donors = append(donors, d)
	}
	return donors, rows.Err()
}
