package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"notaryapi/internal/model"
	"notaryapi/internal/storage"
)

// The storage-browser surface: every operation works on sanitized keys and
// keeps documents, sidecars, and record identity fields aligned.

const onchainMetadataSuffix = "-ONCHAIN-METADATA.JSON"

func (s *notarizationService) ListStorage(ctx context.Context, storageID string) (map[string]*model.MetadataRecord, error) {
	prefix, err := storage.BuildPrefix(storageID)
	if err != nil {
		return nil, err
	}
	infos, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*model.MetadataRecord)
	for _, info := range infos {
		if !storage.IsMetadataKey(info.Key) || strings.HasSuffix(info.Key, onchainMetadataSuffix) {
			continue
		}
		record, err := s.loadRecord(ctx, info.Key)
		if err != nil {
			logJSON(map[string]any{
				"level": "warn",
				"msg":   "metadata_record_unreadable",
				"key":   info.Key,
				"error": err.Error(),
			})
			continue
		}
		rel := strings.TrimPrefix(storage.DocumentKey(info.Key), prefix+"/")
		out[rel] = record
	}
	return out, nil
}

func (s *notarizationService) Download(ctx context.Context, storageID, relPath string) (*DownloadResult, error) {
	key, err := storage.BuildPrefix(storageID, relPath)
	if err != nil {
		return nil, err
	}

	// A plain file is streamed as-is.
	if info, err := s.store.Stat(ctx, key); err == nil {
		rc, _, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return &DownloadResult{
			FileName:    path.Base(key),
			ContentType: "application/octet-stream",
			Content:     rc,
			Size:        info.Size,
		}, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	// Otherwise treat the path as a folder and zip its subtree in memory,
	// entries rooted at the folder name like the download expects.
	infos, err := s.store.List(ctx, key)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	base := path.Base(key)
	parent := strings.TrimSuffix(key, base)
	for _, info := range infos {
		w, err := zw.Create(strings.TrimPrefix(info.Key, parent))
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", info.Key, err)
		}
		rc, _, err := s.store.Get(ctx, info.Key)
		if err != nil {
			return nil, err
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("zip copy %s: %w", info.Key, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}

	return &DownloadResult{
		FileName:    base + ".zip",
		ContentType: "application/zip",
		Content:     io.NopCloser(buf),
		Size:        int64(buf.Len()),
	}, nil
}

func (s *notarizationService) Rename(ctx context.Context, storageID, relPath, newName string) error {
	if newName == "" || strings.ContainsAny(newName, "/\\") || newName == "." || newName == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, newName)
	}
	srcKey, err := storage.BuildKey(storageID, relPath)
	if err != nil {
		return err
	}
	return s.relocate(ctx, srcKey, path.Dir(srcKey)+"/"+newName)
}

func (s *notarizationService) Move(ctx context.Context, storageID, relPath, destFolder string) error {
	srcKey, err := storage.BuildKey(storageID, relPath)
	if err != nil {
		return err
	}
	dstPrefix, err := storage.BuildPrefix(storageID, destFolder)
	if err != nil {
		return err
	}
	return s.relocate(ctx, srcKey, dstPrefix+"/"+path.Base(srcKey))
}

// relocate moves a file (with its sidecars) or a whole folder subtree.
func (s *notarizationService) relocate(ctx context.Context, srcKey, dstKey string) error {
	if srcKey == dstKey {
		return nil
	}
	if _, err := s.store.Stat(ctx, srcKey); err == nil {
		if err := s.moveObject(ctx, srcKey, dstKey); err != nil {
			return err
		}
		for _, suffix := range []string{storage.MetadataSuffix, onchainMetadataSuffix} {
			if _, err := s.store.Stat(ctx, srcKey+suffix); err == nil {
				if err := s.moveObject(ctx, srcKey+suffix, dstKey+suffix); err != nil {
					return err
				}
			}
		}
		return s.refreshRecord(ctx, dstKey)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	// Folder: move every object below it, preserving structure, and refresh
	// each relocated record's identity fields.
	infos, err := s.store.List(ctx, srcKey)
	if err != nil {
		return err
	}
	for _, info := range infos {
		target := dstKey + strings.TrimPrefix(info.Key, srcKey)
		if err := s.moveObject(ctx, info.Key, target); err != nil {
			return err
		}
	}
	moved, err := s.store.List(ctx, dstKey)
	if err != nil {
		return err
	}
	for _, info := range moved {
		if storage.IsMetadataKey(info.Key) && !strings.HasSuffix(info.Key, onchainMetadataSuffix) {
			if err := s.refreshRecord(ctx, storage.DocumentKey(info.Key)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *notarizationService) moveObject(ctx context.Context, srcKey, dstKey string) error {
	rc, info, err := s.store.Get(ctx, srcKey)
	if err != nil {
		return err
	}
	_, putErr := s.store.Put(ctx, dstKey, rc, info.Size)
	rc.Close()
	if putErr != nil {
		return fmt.Errorf("copy %s to %s: %w", srcKey, dstKey, putErr)
	}
	return s.store.Delete(ctx, srcKey)
}

// refreshRecord aligns a sidecar's identity fields with the document's
// current location.
func (s *notarizationService) refreshRecord(ctx context.Context, docKey string) error {
	metaKey := storage.MetadataKey(docKey)
	record, err := s.loadRecord(ctx, metaKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}

	parts := strings.SplitN(docKey, "/", 2)
	record.StorageID = parts[0]
	rel := parts[1]
	record.FileName = path.Base(rel)
	record.FolderPath = ""
	if dir := path.Dir(rel); dir != "." {
		record.FolderPath = dir
	}

	encoded, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return fmt.Errorf("encode metadata record: %w", err)
	}
	_, err = s.store.Put(ctx, metaKey, bytes.NewReader(encoded), int64(len(encoded)))
	return err
}

func (s *notarizationService) Delete(ctx context.Context, storageID, relPath string, recursive bool) error {
	key, err := storage.BuildKey(storageID, relPath)
	if err != nil {
		return err
	}

	if _, err := s.store.Stat(ctx, key); err == nil {
		if err := s.store.Delete(ctx, key); err != nil {
			return err
		}
		for _, suffix := range []string{storage.MetadataSuffix, onchainMetadataSuffix} {
			if err := s.store.Delete(ctx, key+suffix); err != nil && !errors.Is(err, storage.ErrNotFound) {
				return err
			}
		}
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	infos, err := s.store.List(ctx, key)
	if err != nil {
		return err
	}
	if !recursive {
		return fmt.Errorf("%w: %s", ErrFolderNotEmpty, relPath)
	}
	for _, info := range infos {
		if err := s.store.Delete(ctx, info.Key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}
	return nil
}
