// Package session keeps uploaded circuits and completed report runs in
// memory between API calls.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/export"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

// MaxCircuits limits concurrently held circuits.
const MaxCircuits = 50

// Circuit is one uploaded circuit definition, built and ready to evaluate.
type Circuit struct {
	ID           string
	ProjectName  string
	ProjectPath  string
	Tree         *models.DeviceNode
	Params       models.ParameterSet
	UploadedAt   time.Time
	LastAccessed time.Time
}

// Run is one completed report run held for record retrieval.
type Run struct {
	ID           string
	CircuitID    string
	Report       *export.Report
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Manager holds circuits and runs behind a single lock. Counters and caches
// are per-manager so concurrent report runs never share state.
type Manager struct {
	mu       sync.RWMutex
	circuits map[string]*Circuit
	runs     map[string]*Run
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		circuits: make(map[string]*Circuit),
		runs:     make(map[string]*Run),
	}
}

// AddCircuit stores a built circuit and returns its ID.
func (m *Manager) AddCircuit(projectName, projectPath string, tree *models.DeviceNode, params models.ParameterSet) (*Circuit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.circuits) >= MaxCircuits {
		return nil, fmt.Errorf("circuit limit reached (%d), delete or wait for cleanup", MaxCircuits)
	}
	c := &Circuit{
		ID:           uuid.New().String(),
		ProjectName:  projectName,
		ProjectPath:  projectPath,
		Tree:         tree,
		Params:       params,
		UploadedAt:   time.Now(),
		LastAccessed: time.Now(),
	}
	m.circuits[c.ID] = c
	return c, nil
}

// GetCircuit looks a circuit up and refreshes its access time.
func (m *Manager) GetCircuit(id string) (*Circuit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.circuits[id]
	if ok {
		c.LastAccessed = time.Now()
	}
	return c, ok
}

// AddRun stores a completed report run and returns it.
func (m *Manager) AddRun(circuitID string, rep *export.Report) *Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := &Run{
		ID:           uuid.New().String(),
		CircuitID:    circuitID,
		Report:       rep,
		CreatedAt:    time.Now(),
		LastAccessed: time.Now(),
	}
	m.runs[r.ID] = r
	return r
}

// GetRun looks a run up and refreshes its access time.
func (m *Manager) GetRun(id string) (*Run, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if ok {
		r.LastAccessed = time.Now()
	}
	return r, ok
}

// CleanupOld drops circuits and runs not touched within maxAge.
func (m *Manager) CleanupOld(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, c := range m.circuits {
		if c.LastAccessed.Before(cutoff) {
			delete(m.circuits, id)
			removed++
		}
	}
	for id, r := range m.runs {
		if r.LastAccessed.Before(cutoff) {
			delete(m.runs, id)
			removed++
		}
	}
	return removed
}
