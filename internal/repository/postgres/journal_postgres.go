package postgres

import (
	"context"
	"database/sql"

	"notaryapi/internal/repository"
)

// JournalPostgres is a PostgreSQL implementation of
// repository.NotarizationJournal. It uses database/sql with parameterized
// queries and contains no business logic.
type JournalPostgres struct {
	db *sql.DB
}

// NewJournalPostgres creates a new JournalPostgres repository.
func NewJournalPostgres(db *sql.DB) *JournalPostgres {
	return &JournalPostgres{db: db}
}

var _ repository.NotarizationJournal = (*JournalPostgres)(nil)

const entryColumns = `id, storage_id, folder_path, file_name, document_hash, file_weight, file_type, scenario, upload_date`

// Create inserts a new journal row and returns the stored record.
func (r *JournalPostgres) Create(ctx context.Context, e *repository.NotarizationEntry) (*repository.NotarizationEntry, error) {
	const q = `
		INSERT INTO notarizations (id, storage_id, folder_path, file_name, document_hash, file_weight, file_type, scenario, upload_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + entryColumns
	row := r.db.QueryRowContext(ctx, q,
		e.ID,
		e.StorageID,
		e.FolderPath,
		e.FileName,
		e.DocumentHash,
		e.FileWeight,
		e.FileType,
		e.Scenario,
		e.UploadDate,
	)
	return scanEntry(row)
}

// List returns entries using LIMIT/OFFSET pagination and a total count,
// newest first.
func (r *JournalPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[repository.NotarizationEntry], error) {
	const qCount = `SELECT COUNT(*) FROM notarizations`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + entryColumns + `
		FROM notarizations
		ORDER BY upload_date DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[repository.NotarizationEntry]{Items: items, Total: total}, nil
}

// FindByIdentity returns all entries for one identity pair, newest first.
func (r *JournalPostgres) FindByIdentity(ctx context.Context, storageID, fileName string) ([]repository.NotarizationEntry, error) {
	const q = `
		SELECT ` + entryColumns + `
		FROM notarizations
		WHERE storage_id = $1 AND file_name = $2
		ORDER BY upload_date DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, storageID, fileName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*repository.NotarizationEntry, error) {
	var e repository.NotarizationEntry
	if err := row.Scan(
		&e.ID,
		&e.StorageID,
		&e.FolderPath,
		&e.FileName,
		&e.DocumentHash,
		&e.FileWeight,
		&e.FileType,
		&e.Scenario,
		&e.UploadDate,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEntries(rows *sql.Rows) ([]repository.NotarizationEntry, error) {
	items := make([]repository.NotarizationEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
