package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/punchamoorthee/momoledger/internal/domain"
)

// FileStore keeps the whole record sequence in one pretty-printed JSON file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load returns an empty sequence when the file does not exist yet.
func (f *FileStore) Load() ([]domain.Transaction, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}

	var txs []domain.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return txs, nil
}

// Save rewrites the file atomically: readers see either the old or the new
// content, never a partial write.
func (f *FileStore) Save(txs []domain.Transaction) error {
	data, err := Encode(txs)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := renameio.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	return nil
}

// Encode renders records the way they are stored on disk.
func Encode(txs []domain.Transaction) ([]byte, error) {
	if txs == nil {
		txs = []domain.Transaction{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(txs); err != nil {
		return nil, fmt.Errorf("encode transactions: %w", err)
	}
	return buf.Bytes(), nil
}
