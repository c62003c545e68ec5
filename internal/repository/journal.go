package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

import (
	"context"
	"time"
)

// NotarizationEntry is one journal row: a single notarize call against an
// identity. The journal is an advisory audit index; the on-disk metadata
// sidecar remains the record of truth.
type NotarizationEntry struct {
	ID           string    `json:"id"`
	StorageID    string    `json:"storage_id"`
	FolderPath   string    `json:"folder_path"`
	FileName     string    `json:"file_name"`
	DocumentHash string    `json:"document_hash"`
	FileWeight   int64     `json:"file_weight"`
	FileType     string    `json:"file_type"`
	Scenario     string    `json:"scenario"`
	UploadDate   time.Time `json:"upload_date"`
}

// NotarizationJournal defines persistence for journal rows using SQL queries
// only. No business logic here — strictly persistence operations.
type NotarizationJournal interface {
	// Create inserts a new journal row and returns the stored entry.
	Create(ctx context.Context, e *NotarizationEntry) (*NotarizationEntry, error)

	// List returns a paginated list of entries, newest first, and the total
	// rows count.
	List(ctx context.Context, pq PageQuery) (*PageResult[NotarizationEntry], error)

	// FindByIdentity returns all entries recorded for one identity pair,
	// newest first.
	FindByIdentity(ctx context.Context, storageID, fileName string) ([]NotarizationEntry, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
