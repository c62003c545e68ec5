package model

import "time"

// Metadata is the open mapping of caller-supplied key/value pairs attached to
// a record. Values are restricted to what encoding/json produces: string,
// float64, bool, nil, []any and nested map[string]any.
type Metadata map[string]any

// Merge returns a shallow merge of m with overlay; overlay keys win.
// Neither input is mutated.
func (m Metadata) Merge(overlay Metadata) Metadata {
	out := make(Metadata, len(m)+len(overlay))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// ValidationEntry is one on-chain validation recorded against a document.
// The core never appends entries; they are produced by the ledger
// integration and preserved verbatim across rewrites.
type ValidationEntry map[string]any

// MetadataRecord is the persisted sidecar describing a stored document.
// It is one-to-one with the document at (StorageID, FileName) and is
// rewritten together with it on every notarize call.
type MetadataRecord struct {
	DocumentHash string            `json:"document_hash"`
	StorageID    string            `json:"storage_id"`
	FolderPath   string            `json:"folder_path"`
	FileName     string            `json:"file_name"`
	FileWeight   int64             `json:"file_weight"`
	FileType     string            `json:"file_type"`
	UploadDate   time.Time         `json:"upload_date"`
	Validations  []ValidationEntry `json:"validations"`
	Metadata     Metadata          `json:"metadata"`
}

// NotarizationSummary is the response body for a successful notarize call.
type NotarizationSummary struct {
	Success           bool              `json:"success"`
	OnChainValidation []ValidationEntry `json:"on_chain_validations"`
	FileWeight        int64             `json:"file_weight"`
	FileType          string            `json:"file_type"`
	UploadDate        time.Time         `json:"upload_date"`
	Message           string            `json:"message"`
}
