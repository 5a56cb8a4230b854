package store

import (
	"database/sql"
	"errors"
	"fmt"

	"intake-go/internal/model"
	"intake-go/internal/store/migrations"
	"intake-go/internal/tracker"

	sqlite3 "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements tracker.Store on an in-memory SQLite database.
// The database lives only as long as the store; nothing is written to disk.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens a fresh in-memory database and migrates it to the latest schema.
func NewSQLiteStore() (*SQLiteStore, error) {
	db, err := OpenConnection()
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating store: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// OpenConnection opens an in-memory SQLite connection with foreign keys enabled.
// The pool is pinned to one connection because every new ":memory:"
// connection would otherwise see its own empty database.
func OpenConnection() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

const selectDocuments = `
SELECT d.id, d.name, d.kind, d.size_mb, d.status, d.uploaded_at, d.source_url, d.rejection_reason,
       e.name, e.policy_number, e.vin, e.expiration_date
FROM documents d
LEFT JOIN extracted_data e ON e.document_id = d.id`

func (s *SQLiteStore) Insert(doc *model.Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO documents (id, name, kind, size_mb, status, uploaded_at, source_url, rejection_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, string(doc.Kind), doc.SizeMB, string(doc.Status),
		doc.UploadedAt.UTC(), doc.SourceURL, doc.RejectionReason,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %s", tracker.ErrDuplicateID, doc.ID)
		}
		return fmt.Errorf("inserting document: %w", err)
	}

	if err := putExtractedData(tx, doc); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(id string) (*model.Document, error) {
	row := s.db.QueryRow(selectDocuments+" WHERE d.id = ?", id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding document: %w", err)
	}
	return doc, nil
}

func (s *SQLiteStore) Update(doc *model.Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE documents
		SET name = ?, kind = ?, size_mb = ?, status = ?, source_url = ?, rejection_reason = ?
		WHERE id = ?`,
		doc.Name, string(doc.Kind), doc.SizeMB, string(doc.Status), doc.SourceURL, doc.RejectionReason, doc.ID,
	)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", tracker.ErrNotFound, doc.ID)
	}

	if err := putExtractedData(tx, doc); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List() ([]*model.Document, error) {
	rows, err := s.db.Query(selectDocuments + " ORDER BY d.seq")
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// CheckMigrations verifies the schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckStatus(s.db)
}

// Close closes the database, discarding its contents.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// putExtractedData writes or clears the extracted-data row for doc.
func putExtractedData(tx *sql.Tx, doc *model.Document) error {
	if doc.ExtractedData == nil {
		if _, err := tx.Exec("DELETE FROM extracted_data WHERE document_id = ?", doc.ID); err != nil {
			return fmt.Errorf("clearing extracted data: %w", err)
		}
		return nil
	}

	ed := doc.ExtractedData
	_, err := tx.Exec(`
		INSERT INTO extracted_data (document_id, name, policy_number, vin, expiration_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (document_id) DO UPDATE SET
			name = excluded.name,
			policy_number = excluded.policy_number,
			vin = excluded.vin,
			expiration_date = excluded.expiration_date`,
		doc.ID, ed.Name, ed.PolicyNumber, ed.VIN, ed.ExpirationDate,
	)
	if err != nil {
		return fmt.Errorf("writing extracted data: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*model.Document, error) {
	var (
		doc          model.Document
		kind, status string
		edName       sql.NullString
		edPolicy     sql.NullString
		edVIN        sql.NullString
		edExpiration sql.NullString
	)

	err := row.Scan(
		&doc.ID, &doc.Name, &kind, &doc.SizeMB, &status, &doc.UploadedAt, &doc.SourceURL, &doc.RejectionReason,
		&edName, &edPolicy, &edVIN, &edExpiration,
	)
	if err != nil {
		return nil, err
	}

	doc.Kind = model.Kind(kind)
	doc.Status = model.Status(status)
	if edName.Valid {
		doc.ExtractedData = &model.ExtractedData{
			Name:           edName.String,
			PolicyNumber:   edPolicy.String,
			VIN:            edVIN.String,
			ExpirationDate: edExpiration.String,
		}
	}
	return &doc, nil
}

// Compile-time check that SQLiteStore implements tracker.Store interface
var _ tracker.Store = (*SQLiteStore)(nil)
