package storage

import (
	"fmt"
	"path"
	"strings"
)

// MetadataSuffix is appended to a document key to derive its sidecar key.
const MetadataSuffix = "-METADATA.JSON"

// BuildKey derives the storage key for the given identity components.
// storageID becomes the top-level subtree; the remaining parts are joined
// into a relative path below it. Any component that would resolve outside
// the storageID subtree is rejected with ErrInvalidKey: callers must never
// be able to address content outside the designated root.
func BuildKey(storageID string, parts ...string) (string, error) {
	if err := checkComponent(storageID); err != nil {
		return "", err
	}
	if strings.ContainsAny(storageID, "/") {
		return "", fmt.Errorf("%w: storage id must not contain separators", ErrInvalidKey)
	}

	rel := path.Join(parts...)
	if rel == "" || rel == "." {
		return "", fmt.Errorf("%w: file name is required", ErrInvalidKey)
	}
	if err := checkComponent(rel); err != nil {
		return "", err
	}

	// path.Join has cleaned rel; anything still escaping is a traversal.
	if path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %q escapes the storage subtree", ErrInvalidKey, rel)
	}

	return storageID + "/" + rel, nil
}

// BuildPrefix derives the listing prefix for a storage subtree, optionally
// narrowed to a folder below it. Unlike BuildKey, the relative part may be
// empty. The same traversal rules apply.
func BuildPrefix(storageID string, parts ...string) (string, error) {
	rel := path.Join(parts...)
	if rel == "" || rel == "." {
		if err := checkComponent(storageID); err != nil {
			return "", err
		}
		if strings.ContainsAny(storageID, "/") {
			return "", fmt.Errorf("%w: storage id must not contain separators", ErrInvalidKey)
		}
		return storageID, nil
	}
	return BuildKey(storageID, rel)
}

// MetadataKey returns the sidecar key co-located with a document key.
func MetadataKey(documentKey string) string {
	return documentKey + MetadataSuffix
}

// IsMetadataKey reports whether key addresses a metadata sidecar.
func IsMetadataKey(key string) bool {
	return strings.HasSuffix(key, MetadataSuffix)
}

// DocumentKey strips the sidecar suffix, returning the document key.
func DocumentKey(metadataKey string) string {
	return strings.TrimSuffix(metadataKey, MetadataSuffix)
}

func checkComponent(s string) error {
	switch {
	case s == "" || s == "." || s == "..":
		return fmt.Errorf("%w: empty or dot component", ErrInvalidKey)
	case strings.ContainsRune(s, '\\'):
		return fmt.Errorf("%w: backslash is not allowed", ErrInvalidKey)
	case strings.ContainsRune(s, 0):
		return fmt.Errorf("%w: NUL byte is not allowed", ErrInvalidKey)
	case strings.HasPrefix(s, "/"):
		return fmt.Errorf("%w: absolute paths are not allowed", ErrInvalidKey)
	}
	for _, seg := range strings.Split(s, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: traversal sequence in %q", ErrInvalidKey, s)
		}
	}
	return nil
}
