package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"notaryapi/internal/ledger"
	"notaryapi/internal/model"
	"notaryapi/internal/repository"
	"notaryapi/internal/storage"
)

var (
	ErrMalformedPayload = errors.New("document payload is not valid base64")
	ErrIntegrity        = errors.New("stored document no longer matches its fingerprint")
	ErrFolderNotEmpty   = errors.New("folder is not empty")
	ErrInvalidName      = errors.New("invalid target name")
)

// signingKeyPrefix namespaces scenario signer fields inside the caller
// metadata mapping so they cannot collide with caller-supplied keys.
const signingKeyPrefix = "signing."

// NotarizationService defines the use cases around notarized documents.
type NotarizationService interface {
	// Notarize decodes the payload, persists document and metadata sidecar,
	// and returns a summary echoing the computed fingerprint.
	Notarize(ctx context.Context, req model.NotarizeRequest) (*model.NotarizationSummary, error)

	// Query loads the metadata record for one identity and returns it
	// unmodified.
	Query(ctx context.Context, q model.QueryRequest) (*model.MetadataRecord, error)

	// ListStorage returns every record in a storage subtree, keyed by the
	// document's relative path.
	ListStorage(ctx context.Context, storageID string) (map[string]*model.MetadataRecord, error)

	// Download returns a document's content, or an in-memory zip when the
	// path addresses a folder.
	Download(ctx context.Context, storageID, relPath string) (*DownloadResult, error)

	// Rename changes the base name of a file or folder inside a storage
	// subtree, keeping sidecars and record identity fields aligned.
	Rename(ctx context.Context, storageID, relPath, newName string) error

	// Move relocates a file or folder into another folder of the same
	// storage subtree.
	Move(ctx context.Context, storageID, relPath, destFolder string) error

	// Delete removes a file (with its sidecar) or, when recursive, a whole
	// folder subtree.
	Delete(ctx context.Context, storageID, relPath string, recursive bool) error
}

// DownloadResult carries downloadable content with its suggested file name.
type DownloadResult struct {
	FileName    string
	ContentType string
	Content     io.ReadCloser
	Size        int64
}

// Options carries optional collaborators of the service.
type Options struct {
	// Journal, when set, records one audit row per notarize call.
	Journal repository.NotarizationJournal
	// VerifyOnQuery re-hashes the stored document on query and fails with
	// ErrIntegrity on mismatch.
	VerifyOnQuery bool
	// Metrics, when set, counts successful notarizations per scenario.
	Metrics *Metrics
	// Now overrides the clock (tests).
	Now func() time.Time
}

type notarizationService struct {
	store   storage.ContentStore
	ledgers *ledger.Validator
	opts    Options
	locks   *keyedMutex
}

// NewNotarizationService constructs a NotarizationService over a content
// store and a ledger validator.
func NewNotarizationService(store storage.ContentStore, ledgers *ledger.Validator, opts Options) NotarizationService {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &notarizationService{
		store:   store,
		ledgers: ledgers,
		opts:    opts,
		locks:   newKeyedMutex(),
	}
}

func (s *notarizationService) Notarize(ctx context.Context, req model.NotarizeRequest) (*model.NotarizationSummary, error) {
	// Fail fast, before any storage mutation.
	if err := s.ledgers.Validate(req.SelectedLedgers); err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(req.DocumentBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	docKey, err := storage.BuildKey(req.StorageID, req.FolderPath, req.FileName)
	if err != nil {
		return nil, err
	}

	// Both writes happen under the identity's lock so the sidecar always
	// describes the bytes on disk.
	s.locks.Lock(docKey)
	defer s.locks.Unlock(docKey)

	if _, err := s.store.Put(ctx, docKey, bytes.NewReader(raw), int64(len(raw))); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	sum := sha256.Sum256(raw)
	docHash := hex.EncodeToString(sum[:])
	now := s.opts.Now()

	prior, err := s.loadRecord(ctx, storage.MetadataKey(docKey))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	record := s.buildRecord(req, prior, docHash, int64(len(raw)), now)

	encoded, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode metadata record: %w", err)
	}
	if _, err := s.store.Put(ctx, storage.MetadataKey(docKey), bytes.NewReader(encoded), int64(len(encoded))); err != nil {
		return nil, fmt.Errorf("store metadata record: %w", err)
	}

	s.journalEntry(ctx, req, record)
	s.opts.Metrics.observeNotarization(req.Scenario.String())

	return &model.NotarizationSummary{
		Success:           true,
		OnChainValidation: []model.ValidationEntry{},
		FileWeight:        record.FileWeight,
		FileType:          record.FileType,
		UploadDate:        record.UploadDate,
		Message:           notarizeMessage(req, docHash),
	}, nil
}

func (s *notarizationService) Query(ctx context.Context, q model.QueryRequest) (*model.MetadataRecord, error) {
	if err := s.ledgers.Validate(q.SelectedLedgers); err != nil {
		return nil, err
	}
	docKey, err := storage.BuildKey(q.StorageID, q.FolderPath, q.FileName)
	if err != nil {
		return nil, err
	}
	record, err := s.loadRecord(ctx, storage.MetadataKey(docKey))
	if err != nil {
		return nil, err
	}

	if s.opts.VerifyOnQuery {
		if err := s.verifyFingerprint(ctx, docKey, record.DocumentHash); err != nil {
			return nil, err
		}
	}
	return record, nil
}

// verifyFingerprint re-hashes the live document bytes against the recorded
// digest.
func (s *notarizationService) verifyFingerprint(ctx context.Context, docKey, want string) error {
	rc, _, err := s.store.Get(ctx, docKey)
	if err != nil {
		return fmt.Errorf("read document for verification: %w", err)
	}
	defer rc.Close()

	h := sha256.New()
	if _, err := io.Copy(h, rc); err != nil {
		return fmt.Errorf("hash document for verification: %w", err)
	}
	if hex.EncodeToString(h.Sum(nil)) != want {
		return ErrIntegrity
	}
	return nil
}

func (s *notarizationService) buildRecord(req model.NotarizeRequest, prior *model.MetadataRecord, docHash string, weight int64, now time.Time) *model.MetadataRecord {
	record := &model.MetadataRecord{
		DocumentHash: docHash,
		StorageID:    req.StorageID,
		FolderPath:   req.FolderPath,
		FileName:     req.FileName,
		FileWeight:   weight,
		FileType:     fileType(req.FileName),
		UploadDate:   now,
		Validations:  []model.ValidationEntry{},
		Metadata:     model.Metadata{},
	}
	if prior != nil {
		if prior.Validations != nil {
			record.Validations = prior.Validations
		}
		record.Metadata = prior.Metadata.Merge(nil)
	}
	record.Metadata = record.Metadata.Merge(req.Metadata)

	// Signer fields are display-only; namespaced so caller keys never clash.
	switch {
	case req.Multisig != nil:
		record.Metadata[signingKeyPrefix+"public_addresses"] = req.Multisig.PublicAddresses
		record.Metadata[signingKeyPrefix+"complete_multisig"] = req.Multisig.CompleteMultisig
		record.Metadata[signingKeyPrefix+"partially_signed_tx"] = req.Multisig.PartiallySignedTx
	case req.ExternalSigner != nil:
		record.Metadata[signingKeyPrefix+"user_public_address"] = req.ExternalSigner.UserPublicAddress
		record.Metadata[signingKeyPrefix+"signed_tx_json"] = req.ExternalSigner.SignedTxJSON
	}
	return record
}

// loadRecord reads and decodes a metadata sidecar.
func (s *notarizationService) loadRecord(ctx context.Context, metaKey string) (*model.MetadataRecord, error) {
	rc, _, err := s.store.Get(ctx, metaKey)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var record model.MetadataRecord
	if err := json.NewDecoder(rc).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode metadata record %s: %w", metaKey, err)
	}
	return &record, nil
}

// journalEntry records the ingest in the audit journal. Failures are logged,
// never surfaced: both artifacts are already durable and the journal is
// advisory.
func (s *notarizationService) journalEntry(ctx context.Context, req model.NotarizeRequest, record *model.MetadataRecord) {
	if s.opts.Journal == nil {
		return
	}
	_, err := s.opts.Journal.Create(ctx, &repository.NotarizationEntry{
		ID:           uuid.NewString(),
		StorageID:    record.StorageID,
		FolderPath:   record.FolderPath,
		FileName:     record.FileName,
		DocumentHash: record.DocumentHash,
		FileWeight:   record.FileWeight,
		FileType:     record.FileType,
		Scenario:     req.Scenario.String(),
		UploadDate:   record.UploadDate,
	})
	if err != nil {
		logJSON(map[string]any{
			"level":      "error",
			"msg":        "journal_write_failed",
			"storage_id": record.StorageID,
			"file_name":  record.FileName,
			"error":      err.Error(),
		})
	}
}

func notarizeMessage(req model.NotarizeRequest, docHash string) string {
	switch req.Scenario {
	case model.ScenarioMultisig:
		return fmt.Sprintf("Document %q notarized (multisig wallet) on ledger %q. Computed hash: %s",
			req.FileName, req.SelectedLedgers[0], docHash)
	case model.ScenarioExternalSigner:
		return fmt.Sprintf("Document %q notarized (externally signed transaction) on ledger %q. Computed hash: %s",
			req.FileName, req.SelectedLedgers[0], docHash)
	default:
		return fmt.Sprintf("Document %q saved in %q - hash %s", req.FileName, req.FolderPath, docHash)
	}
}

// fileType extracts the lower-cased extension without the dot; empty when
// the name has none. A dotfile like ".bashrc" is extensionless, not an
// extension-only name.
func fileType(fileName string) string {
	base := path.Base(fileName)
	ext := path.Ext(base)
	if ext == base {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func logJSON(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		data["level"] = "info"
	}
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal log entry: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
