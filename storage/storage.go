// Package storage persists uploaded file bytes, keyed by patient ID and
// a randomly generated storage name.
package storage

import (
	"os"
	"path/filepath"
	"strconv"
)

// Store is the byte storage behind patient file uploads.
type Store interface {
	Save(patientID uint, name string, data []byte) error
	Read(patientID uint, name string) ([]byte, error)
}

// LocalStore keeps uploads on the local filesystem under
// <BaseDir>/<patientID>/<name>.
type LocalStore struct {
	BaseDir string
}

func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{BaseDir: baseDir}
}

func (s *LocalStore) path(patientID uint, name string) string {
	return filepath.Join(s.BaseDir, strconv.FormatUint(uint64(patientID), 10), name)
}

func (s *LocalStore) Save(patientID uint, name string, data []byte) error {
	p := s.path(patientID, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (s *LocalStore) Read(patientID uint, name string) ([]byte, error) {
	return os.ReadFile(s.path(patientID, name))
}
