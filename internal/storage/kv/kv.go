package kv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/chris-regnier/murmur/internal/entry"
	"github.com/chris-regnier/murmur/internal/storage"
)

const (
	journalsDir = "journals"
	tempDir     = ".tmp"
	fileExt     = ".json"
)

// Store implements storage.Store as one JSON document per identity, keyed
// diary_<identity>, in a diskv key-value tree.
type Store struct {
	d        *diskv.Diskv
	basePath string
}

// New creates a key-value store rooted at dataDir.
func New(dataDir string) (*Store, error) {
	for _, dir := range []string{filepath.Join(dataDir, journalsDir), filepath.Join(dataDir, tempDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating data directory: %v", storage.ErrStorage, err)
		}
	}
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          dataDir,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			TempDir:           filepath.Join(dataDir, tempDir),
		}),
		basePath: dataDir,
	}, nil
}

// Close is a no-op for the key-value backend.
func (s *Store) Close() error {
	return nil
}

// Load reads the identity's document, bypassing diskv's cache so writes made
// by other processes are seen.
func (s *Store) Load(identity string) (entry.Collection, error) {
	key := storage.Key(identity)
	if !s.d.Has(key) {
		return entry.Collection{}, nil
	}
	rc, err := s.d.ReadStream(key, true)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entry.Collection{}, nil
		}
		return entry.Collection{}, fmt.Errorf("%w: reading %s: %v", storage.ErrStorage, key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return entry.Collection{}, fmt.Errorf("%w: reading %s: %v", storage.ErrStorage, key, err)
	}
	return storage.Decode(data)
}

// Save writes the whole document atomically through diskv's temp dir.
func (s *Store) Save(identity string, c entry.Collection) error {
	data, err := storage.Encode(c)
	if err != nil {
		return err
	}
	key := storage.Key(identity)
	if err := s.d.Write(key, data); err != nil {
		return fmt.Errorf("%w: writing %s: %v", storage.ErrStorage, key, err)
	}
	return nil
}

// Watch reports changes to the identity's document.
func (s *Store) Watch(ctx context.Context, identity string) (<-chan struct{}, error) {
	pk := keyToPathTransform(storage.Key(identity))
	return storage.WatchFile(ctx, filepath.Join(append([]string{s.basePath}, pk.Path...)...), pk.FileName)
}

// Path returns the file backing identity's document.
func (s *Store) Path(identity string) string {
	pk := keyToPathTransform(storage.Key(identity))
	return filepath.Join(append(append([]string{s.basePath}, pk.Path...), pk.FileName)...)
}

func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{journalsDir},
		FileName: url.PathEscape(key) + fileExt,
	}
}

func pathToKeyTransform(pk *diskv.PathKey) string {
	name := strings.TrimSuffix(pk.FileName, fileExt)
	key, err := url.PathUnescape(name)
	if err != nil {
		return name
	}
	return key
}
