// Package storage keeps generated report artifacts on the local
// filesystem with in-memory metadata.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

// Store is the interface for report artifact storage.
type Store interface {
	Save(name string, r io.Reader) (*models.ArtifactInfo, error)
	Create(name string) (io.WriteCloser, *models.ArtifactInfo, error)
	Get(id string) (*models.ArtifactInfo, error)
	List(limit int) ([]*models.ArtifactInfo, error)
	Delete(id string) error
	Path(id string) (string, error)
}

// LocalStore implements Store on the local filesystem.
type LocalStore struct {
	mu        sync.RWMutex
	outputDir string
	files     map[string]*models.ArtifactInfo
}

// NewLocalStore creates a store rooted at outputDir, creating it if needed.
func NewLocalStore(outputDir string) (*LocalStore, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &LocalStore{
		outputDir: outputDir,
		files:     make(map[string]*models.ArtifactInfo),
	}, nil
}

// Save streams a finished artifact into the store.
func (s *LocalStore) Save(name string, r io.Reader) (*models.ArtifactInfo, error) {
	id := uuid.New().String()
	path := filepath.Join(s.outputDir, id+filepath.Ext(name))

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating artifact file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing artifact: %w", err)
	}

	info := &models.ArtifactInfo{
		ID:        id,
		Name:      name,
		Path:      path,
		Size:      size,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.files[id] = info
	s.mu.Unlock()
	return info, nil
}

// Create opens a new artifact file for direct writing by an emitter. The
// returned info is registered immediately; callers must Close the writer.
func (s *LocalStore) Create(name string) (io.WriteCloser, *models.ArtifactInfo, error) {
	id := uuid.New().String()
	path := filepath.Join(s.outputDir, id+filepath.Ext(name))

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating artifact file: %w", err)
	}
	info := &models.ArtifactInfo{
		ID:        id,
		Name:      name,
		Path:      path,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.files[id] = info
	s.mu.Unlock()
	return f, info, nil
}

// Get retrieves artifact metadata by ID.
func (s *LocalStore) Get(id string) (*models.ArtifactInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("artifact not found: %s", id)
	}
	return info, nil
}

// List returns the newest artifacts first, up to limit.
func (s *LocalStore) List(limit int) ([]*models.ArtifactInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.ArtifactInfo, 0, len(s.files))
	for _, info := range s.files {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes an artifact and its file.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.files[id]
	if !ok {
		return fmt.Errorf("artifact not found: %s", id)
	}
	if err := os.Remove(info.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing artifact file: %w", err)
	}
	delete(s.files, id)
	return nil
}

// Path returns the on-disk path for an artifact.
func (s *LocalStore) Path(id string) (string, error) {
	info, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return info.Path, nil
}
