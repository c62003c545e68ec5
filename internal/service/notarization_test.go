package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"notaryapi/internal/ledger"
	"notaryapi/internal/model"
	"notaryapi/internal/repository"
	repoMocks "notaryapi/internal/repository/mocks"
	"notaryapi/internal/storage"
)

var testClock = func() time.Time {
	return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
}

func newTestService(opts Options) (NotarizationService, storage.ContentStore) {
	store := storage.NewFilesystemFromFs(afero.NewMemMapFs())
	if opts.Now == nil {
		opts.Now = testClock
	}
	return NewNotarizationService(store, ledger.NewValidator(nil), opts), store
}

func soloRequest(payload string) model.NotarizeRequest {
	return model.NotarizeRequest{
		Scenario:        model.ScenarioSolo,
		DocumentBase64:  base64.StdEncoding.EncodeToString([]byte(payload)),
		FileName:        "a.txt",
		StorageID:       "s1",
		SelectedLedgers: []string{"algo"},
	}
}

func TestNotarize_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})

	sum, err := svc.Notarize(ctx, soloRequest("hello"))
	require.NoError(t, err)

	wantHash := sha256.Sum256([]byte("hello"))
	wantHex := hex.EncodeToString(wantHash[:])

	assert.True(t, sum.Success)
	assert.Empty(t, sum.OnChainValidation)
	assert.Equal(t, int64(5), sum.FileWeight)
	assert.Equal(t, "txt", sum.FileType)
	assert.Equal(t, testClock(), sum.UploadDate)
	assert.Contains(t, sum.Message, wantHex)

	record, err := svc.Query(ctx, model.QueryRequest{
		StorageID:       "s1",
		FileName:        "a.txt",
		SelectedLedgers: []string{"algo"},
	})
	require.NoError(t, err)
	assert.Equal(t, wantHex, record.DocumentHash)
	assert.Equal(t, "s1", record.StorageID)
	assert.Equal(t, "a.txt", record.FileName)
	assert.Equal(t, int64(5), record.FileWeight)
	assert.Equal(t, "txt", record.FileType)
	assert.Empty(t, record.Validations)
}

func TestNotarize_FingerprintDeterminism(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})

	_, err := svc.Notarize(ctx, soloRequest("same content"))
	require.NoError(t, err)
	first, err := svc.Query(ctx, model.QueryRequest{StorageID: "s1", FileName: "a.txt", SelectedLedgers: []string{"algo"}})
	require.NoError(t, err)

	_, err = svc.Notarize(ctx, soloRequest("same content"))
	require.NoError(t, err)
	second, err := svc.Query(ctx, model.QueryRequest{StorageID: "s1", FileName: "a.txt", SelectedLedgers: []string{"algo"}})
	require.NoError(t, err)

	assert.Equal(t, first.DocumentHash, second.DocumentHash)
}

func TestNotarize_MetadataMerge(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})

	req := soloRequest("v1")
	req.Metadata = model.Metadata{"x": float64(1), "author": "alice"}
	_, err := svc.Notarize(ctx, req)
	require.NoError(t, err)

	req = soloRequest("v2")
	req.Metadata = model.Metadata{"y": float64(2), "author": "bob"}
	_, err = svc.Notarize(ctx, req)
	require.NoError(t, err)

	record, err := svc.Query(ctx, model.QueryRequest{StorageID: "s1", FileName: "a.txt", SelectedLedgers: []string{"algo"}})
	require.NoError(t, err)

	assert.Equal(t, float64(1), record.Metadata["x"])
	assert.Equal(t, float64(2), record.Metadata["y"])
	// Request keys win on conflict.
	assert.Equal(t, "bob", record.Metadata["author"])
}

func TestNotarize_OverwriteLeavesSingleArtifactPair(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(Options{})

	_, err := svc.Notarize(ctx, soloRequest("first payload"))
	require.NoError(t, err)
	_, err = svc.Notarize(ctx, soloRequest("second"))
	require.NoError(t, err)

	infos, err := store.List(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, infos, 2) // one document, one sidecar

	record, err := svc.Query(ctx, model.QueryRequest{StorageID: "s1", FileName: "a.txt", SelectedLedgers: []string{"algo"}})
	require.NoError(t, err)

	wantHash := sha256.Sum256([]byte("second"))
	assert.Equal(t, hex.EncodeToString(wantHash[:]), record.DocumentHash)
	assert.Equal(t, int64(6), record.FileWeight)
}

func TestNotarize_UnsupportedLedgerNoMutation(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(Options{})

	for _, selected := range [][]string{{"algo", "eth"}, {}, {"ALGO"}} {
		req := soloRequest("data")
		req.SelectedLedgers = selected

		_, err := svc.Notarize(ctx, req)
		assert.ErrorIs(t, err, ledger.ErrUnsupportedLedger)
	}

	_, err := store.List(ctx, "s1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNotarize_MalformedPayload(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(Options{})

	req := soloRequest("ignored")
	req.DocumentBase64 = "not//valid###base64"

	_, err := svc.Notarize(ctx, req)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = store.List(ctx, "s1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNotarize_PathTraversalRejected(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})

	req := soloRequest("data")
	req.StorageID = ".."
	_, err := svc.Notarize(ctx, req)
	assert.ErrorIs(t, err, storage.ErrInvalidKey)

	req = soloRequest("data")
	req.FileName = "../../etc/passwd"
	_, err = svc.Notarize(ctx, req)
	assert.ErrorIs(t, err, storage.ErrInvalidKey)
}

func TestNotarize_ScenarioFieldsNamespaced(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})

	req := soloRequest("doc")
	req.Scenario = model.ScenarioMultisig
	req.Metadata = model.Metadata{"category": "restricted"}
	req.Multisig = &model.MultisigParams{
		PublicAddresses:   []string{"addr1", "addr2"},
		CompleteMultisig:  "complete-multisig-blob",
		PartiallySignedTx: `{"partial":true}`,
	}

	sum, err := svc.Notarize(ctx, req)
	require.NoError(t, err)
	assert.Contains(t, sum.Message, "multisig")

	record, err := svc.Query(ctx, model.QueryRequest{StorageID: "s1", FileName: "a.txt", SelectedLedgers: []string{"algo"}})
	require.NoError(t, err)

	assert.Equal(t, "restricted", record.Metadata["category"])
	assert.Equal(t, "complete-multisig-blob", record.Metadata["signing.complete_multisig"])
	assert.Equal(t, `{"partial":true}`, record.Metadata["signing.partially_signed_tx"])
	addrs, ok := record.Metadata["signing.public_addresses"].([]any)
	require.True(t, ok)
	assert.Len(t, addrs, 2)
}

func TestNotarize_ExternalSignerMessage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})

	req := soloRequest("doc")
	req.Scenario = model.ScenarioExternalSigner
	req.ExternalSigner = &model.ExternalSignerParams{
		UserPublicAddress: "userAddr123",
		SignedTxJSON:      `{"signed":true}`,
	}

	sum, err := svc.Notarize(ctx, req)
	require.NoError(t, err)
	assert.Contains(t, sum.Message, "externally signed")

	record, err := svc.Query(ctx, model.QueryRequest{StorageID: "s1", FileName: "a.txt", SelectedLedgers: []string{"algo"}})
	require.NoError(t, err)
	assert.Equal(t, "userAddr123", record.Metadata["signing.user_public_address"])
}

func TestNotarize_JournalFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	mJournal := new(repoMocks.MockNotarizationJournal)
	mJournal.On("Create", ctx, mock.MatchedBy(func(e *repository.NotarizationEntry) bool {
		return e.StorageID == "s1" && e.FileName == "a.txt" && e.Scenario == "solo"
	})).Return(nil, errors.New("db down"))

	svc, _ := newTestService(Options{Journal: mJournal})

	_, err := svc.Notarize(ctx, soloRequest("hello"))
	assert.NoError(t, err)
	mJournal.AssertExpectations(t)
}

func TestQuery_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})

	_, err := svc.Query(ctx, model.QueryRequest{
		StorageID:       "nope",
		FileName:        "missing.pdf",
		SelectedLedgers: []string{"algo"},
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestQuery_ValidatesLedgers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})

	_, err := svc.Query(ctx, model.QueryRequest{
		StorageID:       "s1",
		FileName:        "a.txt",
		SelectedLedgers: []string{"eth"},
	})
	assert.ErrorIs(t, err, ledger.ErrUnsupportedLedger)
}

func TestQuery_VerifyOnQuery(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(Options{VerifyOnQuery: true})

	_, err := svc.Notarize(ctx, soloRequest("hello"))
	require.NoError(t, err)

	// Clean query passes verification.
	_, err = svc.Query(ctx, model.QueryRequest{StorageID: "s1", FileName: "a.txt", SelectedLedgers: []string{"algo"}})
	require.NoError(t, err)

	// Tamper with the stored document behind the service's back.
	_, err = store.Put(ctx, "s1/a.txt", bytes.NewReader([]byte("tampered")), 8)
	require.NoError(t, err)

	_, err = svc.Query(ctx, model.QueryRequest{StorageID: "s1", FileName: "a.txt", SelectedLedgers: []string{"algo"}})
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestFileType(t *testing.T) {
	assert.Equal(t, "txt", fileType("a.txt"))
	assert.Equal(t, "pdf", fileType("Contract.PDF"))
	assert.Equal(t, "", fileType("README"))
	assert.Equal(t, "gz", fileType("archive.tar.gz"))
	// Dotfiles carry no extension.
	assert.Equal(t, "", fileType(".bashrc"))
	assert.Equal(t, "", fileType("conf/.env"))
	assert.Equal(t, "local", fileType(".env.local"))
}
