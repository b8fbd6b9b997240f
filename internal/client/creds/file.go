package creds

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/dkravtsov/shelfmark/internal/common"
)

// FileStore persists the pair as a JSON file with owner-only permissions,
// so a login survives client restarts.
type FileStore struct {
	mu   sync.Mutex
	path string
}

const credsFileMode = 0o600

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Pair reads the pair from disk. A missing file means no saved credentials.
func (s *FileStore) Pair() (Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Pair{}, common.ErrorNotFound
		}
		return Pair{}, err
	}

	var p Pair
	if err := json.Unmarshal(data, &p); err != nil {
		return Pair{}, err
	}
	return p, nil
}

func (s *FileStore) Save(p Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, credsFileMode)
}

// Clear removes the credentials file. Clearing an already-empty store is
// not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
