package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BlobScheme prefixes logical references into the blob store. References
// without the scheme are direct resource locators and pass through untouched.
const BlobScheme = "blob://"

// BlobServePath is where the HTTP surface exposes stored blobs.
const BlobServePath = "/v1/blobs/"

const blobShardLen = 2

// ErrStorageUnavailable is returned when a store is used before Init.
var ErrStorageUnavailable = errors.New("storage not initialized")

// BlobMeta describes a stored binary payload. The payload itself lives in a
// sibling data file.
type BlobMeta struct {
	ID           string    `json:"id"`
	MimeType     string    `json:"mime_type"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

// BlobStore is a disk-backed key-value store for card artwork, kept apart
// from the main collection so the collection file never embeds binary data.
type BlobStore struct {
	dir string

	mu          sync.Mutex
	initialized bool
}

func NewBlobStore(dir string) *BlobStore {
	return &BlobStore{dir: dir}
}

// Init prepares the blob directory. It is idempotent and must complete
// before any other operation.
func (s *BlobStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if s.dir == "" {
		return errors.New("blob dir is empty")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to prepare blob dir: %w", err)
	}
	s.initialized = true
	return nil
}

// Save persists a binary payload and returns its logical blob:// reference.
func (s *BlobStore) Save(data []byte, mimeType, originalName string) (string, error) {
	if !s.ready() {
		return "", ErrStorageUnavailable
	}

	id := uuid.New().String()
	meta := BlobMeta{
		ID:           id,
		MimeType:     mimeType,
		OriginalName: originalName,
		Size:         int64(len(data)),
		CreatedAt:    time.Now().UTC(),
	}

	dir := s.shardDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare blob shard: %w", err)
	}

	if err := writeFileAtomic(s.dataPath(id), data); err != nil {
		return "", fmt.Errorf("failed to write blob data: %w", err)
	}

	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to encode blob meta: %w", err)
	}
	if err := writeFileAtomic(s.metaPath(id), metaBytes); err != nil {
		_ = os.Remove(s.dataPath(id))
		return "", fmt.Errorf("failed to write blob meta: %w", err)
	}

	return BlobScheme + id, nil
}

// Resolve turns a reference into a displayable locator. blob:// references
// resolve to the HTTP serving path when the record exists and to an empty
// string when it does not; anything else is already displayable and is
// returned unchanged.
func (s *BlobStore) Resolve(ref string) (string, error) {
	if !IsBlobRef(ref) {
		return ref, nil
	}
	if !s.ready() {
		return "", ErrStorageUnavailable
	}

	id := BlobId(ref)
	if _, err := os.Stat(s.dataPath(id)); err != nil {
		return "", nil
	}
	return BlobServePath + id, nil
}

// Open returns the payload and metadata for a stored blob id.
func (s *BlobStore) Open(id string) ([]byte, *BlobMeta, error) {
	if !s.ready() {
		return nil, nil, ErrStorageUnavailable
	}

	data, err := os.ReadFile(s.dataPath(id))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read blob %s: %w", id, err)
	}

	meta := &BlobMeta{ID: id, MimeType: "application/octet-stream"}
	if raw, err := os.ReadFile(s.metaPath(id)); err == nil {
		if err := json.Unmarshal(raw, meta); err != nil {
			return nil, nil, fmt.Errorf("failed to decode blob meta %s: %w", id, err)
		}
	}

	return data, meta, nil
}

// Delete removes the record behind a blob:// reference. Non-blob references
// and unknown ids are no-ops.
func (s *BlobStore) Delete(ref string) error {
	if !IsBlobRef(ref) {
		return nil
	}
	if !s.ready() {
		return ErrStorageUnavailable
	}

	id := BlobId(ref)
	if err := os.Remove(s.dataPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", id, err)
	}
	if err := os.Remove(s.metaPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob meta %s: %w", id, err)
	}
	return nil
}

// Has reports whether a blob id is present.
func (s *BlobStore) Has(id string) bool {
	if !s.ready() {
		return false
	}
	_, err := os.Stat(s.dataPath(id))
	return err == nil
}

// IsBlobRef reports whether a reference uses the blob:// scheme.
func IsBlobRef(ref string) bool {
	return strings.HasPrefix(ref, BlobScheme)
}

// BlobId extracts the id from a blob:// reference.
func BlobId(ref string) string {
	return strings.TrimPrefix(ref, BlobScheme)
}

func (s *BlobStore) ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *BlobStore) shardDir(id string) string {
	shard := id
	if len(shard) > blobShardLen {
		shard = shard[:blobShardLen]
	}
	return filepath.Join(s.dir, shard)
}

func (s *BlobStore) dataPath(id string) string {
	return filepath.Join(s.shardDir(id), id+".bin")
}

func (s *BlobStore) metaPath(id string) string {
	return filepath.Join(s.shardDir(id), id+".json")
}

// writeFileAtomic writes through a temp file and renames it into place so a
// crash never leaves a half-written record behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "blob-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
