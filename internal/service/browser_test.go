package service

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notaryapi/internal/model"
	"notaryapi/internal/storage"
)

func notarizeFixture(t *testing.T, svc NotarizationService, folder, name, payload string) {
	t.Helper()
	req := soloRequest(payload)
	req.FolderPath = folder
	req.FileName = name
	_, err := svc.Notarize(context.Background(), req)
	require.NoError(t, err)
}

func TestListStorage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})

	notarizeFixture(t, svc, "", "a.txt", "alpha")
	notarizeFixture(t, svc, "reports", "b.pdf", "bravo")

	out, err := svc.ListStorage(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "a.txt", out["a.txt"].FileName)
	assert.Equal(t, "b.pdf", out["reports/b.pdf"].FileName)
	assert.Equal(t, "reports", out["reports/b.pdf"].FolderPath)
}

func TestListStorage_UnknownStorage(t *testing.T) {
	svc, _ := newTestService(Options{})

	_, err := svc.ListStorage(context.Background(), "absent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDownload_File(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})
	notarizeFixture(t, svc, "", "a.txt", "alpha")

	res, err := svc.Download(ctx, "s1", "a.txt")
	require.NoError(t, err)
	defer res.Content.Close()

	assert.Equal(t, "a.txt", res.FileName)
	assert.Equal(t, "application/octet-stream", res.ContentType)

	b, err := io.ReadAll(res.Content)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(b))
}

func TestDownload_FolderAsZip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})
	notarizeFixture(t, svc, "reports", "b.pdf", "bravo")
	notarizeFixture(t, svc, "reports", "c.pdf", "charlie")

	res, err := svc.Download(ctx, "s1", "reports")
	require.NoError(t, err)
	defer res.Content.Close()

	assert.Equal(t, "reports.zip", res.FileName)
	assert.Equal(t, "application/zip", res.ContentType)

	raw, err := io.ReadAll(res.Content)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	// Documents and their sidecars, rooted at the folder name.
	assert.True(t, names["reports/b.pdf"])
	assert.True(t, names["reports/c.pdf"])
	assert.True(t, names["reports/b.pdf-METADATA.JSON"])
}

func TestDownload_Missing(t *testing.T) {
	svc, _ := newTestService(Options{})

	_, err := svc.Download(context.Background(), "s1", "nothing-here")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRename_File(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(Options{})
	notarizeFixture(t, svc, "", "a.txt", "alpha")

	require.NoError(t, svc.Rename(ctx, "s1", "a.txt", "renamed.txt"))

	_, err := store.Stat(ctx, "s1/a.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	record, err := svc.Query(ctx, model.QueryRequest{StorageID: "s1", FileName: "renamed.txt", SelectedLedgers: []string{"algo"}})
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", record.FileName)
	assert.Equal(t, "", record.FolderPath)
}

func TestRename_RejectsSeparators(t *testing.T) {
	svc, _ := newTestService(Options{})

	err := svc.Rename(context.Background(), "s1", "a.txt", "../escape.txt")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestMove_File(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})
	notarizeFixture(t, svc, "", "a.txt", "alpha")

	require.NoError(t, svc.Move(ctx, "s1", "a.txt", "archive/2026"))

	record, err := svc.Query(ctx, model.QueryRequest{
		StorageID:       "s1",
		FolderPath:      "archive/2026",
		FileName:        "a.txt",
		SelectedLedgers: []string{"algo"},
	})
	require.NoError(t, err)
	assert.Equal(t, "archive/2026", record.FolderPath)
	assert.Equal(t, "a.txt", record.FileName)
}

func TestMove_Folder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})
	notarizeFixture(t, svc, "reports", "b.pdf", "bravo")

	require.NoError(t, svc.Move(ctx, "s1", "reports", "archive"))

	record, err := svc.Query(ctx, model.QueryRequest{
		StorageID:       "s1",
		FolderPath:      "archive/reports",
		FileName:        "b.pdf",
		SelectedLedgers: []string{"algo"},
	})
	require.NoError(t, err)
	assert.Equal(t, "archive/reports", record.FolderPath)
}

func TestDelete_FileRemovesSidecar(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(Options{})
	notarizeFixture(t, svc, "", "a.txt", "alpha")

	require.NoError(t, svc.Delete(ctx, "s1", "a.txt", false))

	_, err := store.Stat(ctx, "s1/a.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Stat(ctx, "s1/a.txt-METADATA.JSON")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete_FolderRequiresRecursive(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(Options{})
	notarizeFixture(t, svc, "reports", "b.pdf", "bravo")

	err := svc.Delete(ctx, "s1", "reports", false)
	assert.ErrorIs(t, err, ErrFolderNotEmpty)

	require.NoError(t, svc.Delete(ctx, "s1", "reports", true))
	_, err = store.Stat(ctx, "s1/reports/b.pdf")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete_Missing(t *testing.T) {
	svc, _ := newTestService(Options{})

	err := svc.Delete(context.Background(), "s1", "ghost.txt", false)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
