// Package session manages asynchronous match runs: batches of uploaded
// files resolved against the roster in a background goroutine.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grade-assist/backend/internal/matcher"
	"github.com/grade-assist/backend/internal/models"
)

// MaxRuns limits concurrent retained runs to bound memory use.
const MaxRuns = 20

// RunMaxAge is how long to keep completed runs before cleanup.
const RunMaxAge = 30 * time.Minute

// RunKeepAliveWindow is how long to keep runs that are actively being viewed.
const RunKeepAliveWindow = 5 * time.Minute

// Archiver persists completed runs for later reporting. Nil archiver means
// runs are kept in memory only.
type Archiver interface {
	SaveRun(run *models.MatchRun, results []models.MatchResult) error
}

// Manager holds active and recently completed match runs.
type Manager struct {
	mu       sync.RWMutex
	runs     map[string]*RunState
	engine   *matcher.Engine
	archiver Archiver
}

// RunState holds a run's metadata and its resolved results.
type RunState struct {
	Run          *models.MatchRun
	Results      []models.MatchResult
	LastAccessed time.Time
}

// NewManager creates a run manager backed by the given engine.
func NewManager(engine *matcher.Engine) *Manager {
	return &Manager{
		runs:   make(map[string]*RunState),
		engine: engine,
	}
}

// SetArchiver installs the report archive completed runs are written to.
func (m *Manager) SetArchiver(a Archiver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archiver = a
}

// StartRun begins matching a batch of files against a roster snapshot in the
// background and returns the pending run immediately.
func (m *Manager) StartRun(files []models.FileRef, students []models.StudentInfo) *models.MatchRun {
	m.cleanupOldRunsIfNeeded()

	fileIDs := make([]string, len(files))
	for i, f := range files {
		fileIDs[i] = f.ID
	}

	run := models.NewMatchRun(uuid.New().String(), fileIDs)
	run.Status = models.RunStatusMatching
	run.StartedAt = time.Now().UnixMilli()

	m.mu.Lock()
	m.runs[run.ID] = &RunState{
		Run:          run,
		LastAccessed: time.Now(),
	}
	m.mu.Unlock()

	// Snapshot before the goroutine starts mutating the stored run.
	snapshot := run.Clone()
	go m.runMatch(run.ID, files, students)

	return snapshot
}

func (m *Manager) runMatch(runID string, files []models.FileRef, students []models.StudentInfo) {
	// Recover from panics so one bad batch cannot crash the backend.
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Match %s] PANIC recovered: %v\n", shortID(runID), r)
			m.failRun(runID, fmt.Sprintf("matching panicked: %v", r))
		}
	}()

	start := time.Now()
	fmt.Printf("[Match %s] Matching %d files against %d students\n",
		shortID(runID), len(files), len(students))

	results, stats := m.engine.Match(files, students)
	elapsed := time.Since(start).Milliseconds()

	m.mu.Lock()
	state, ok := m.runs[runID]
	if !ok {
		m.mu.Unlock()
		return
	}
	state.Results = results
	state.Run.Status = models.RunStatusComplete
	state.Run.Progress = 100
	state.Run.Stats = &stats
	state.Run.ProcessingTimeMs = elapsed
	archiver := m.archiver
	run := state.Run.Clone() // snapshot for the archiver, taken under the lock
	m.mu.Unlock()

	fmt.Printf("[Match %s] Complete: %d/%d matched in %dms\n",
		shortID(runID), stats.Matched, stats.Total, elapsed)

	if archiver != nil {
		if err := archiver.SaveRun(run, results); err != nil {
			fmt.Printf("[Match %s] Warning: failed to archive run: %v\n", shortID(runID), err)
		}
	}
}

func (m *Manager) failRun(runID, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.runs[runID]
	if !ok {
		return
	}
	state.Run.Status = models.RunStatusError
	state.Run.Errors = append(state.Run.Errors, models.RunError{Reason: reason})
}

// GetRun returns a snapshot of a run by ID. The stored run keeps mutating
// in the background, so callers get a copy they can read and serialize
// without holding the manager lock.
func (m *Manager) GetRun(id string) (*models.MatchRun, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.runs[id]
	if !ok {
		return nil, false
	}
	return state.Run.Clone(), true
}

// GetResults returns the resolved results of a completed run.
func (m *Manager) GetResults(id string) ([]models.MatchResult, *models.MatchStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.runs[id]
	if !ok || state.Run.Status != models.RunStatusComplete {
		return nil, nil, false
	}
	stats := *state.Run.Stats
	return state.Results, &stats, true
}

// TouchRun updates the LastAccessed timestamp so an actively viewed run is
// not cleaned up.
func (m *Manager) TouchRun(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.runs[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// cleanupOldRunsIfNeeded removes finished runs when at capacity.
func (m *Manager) cleanupOldRunsIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.runs) < MaxRuns {
		return
	}

	toFree := len(m.runs) - MaxRuns + 1
	for id, state := range m.runs {
		if toFree == 0 {
			break
		}
		if state.Run.Status == models.RunStatusComplete ||
			state.Run.Status == models.RunStatusError {
			delete(m.runs, id)
			toFree--
			fmt.Printf("[Runs] Cleaned up old run %s to free memory\n", shortID(id))
		}
	}
}

// CleanupOldRuns removes finished runs older than maxAge, keeping runs that
// were accessed within RunKeepAliveWindow.
func (m *Manager) CleanupOldRuns(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-RunKeepAliveWindow)

	for id, state := range m.runs {
		if state.Run.Status != models.RunStatusComplete &&
			state.Run.Status != models.RunStatusError {
			continue
		}
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			delete(m.runs, id)
			fmt.Printf("[Runs] Cleaned up aged run %s\n", shortID(id))
		}
	}
}

// shortID safely truncates an ID for logging.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
