package roster

import (
	"sync"
	"time"

	"github.com/grade-assist/backend/internal/models"
)

// Store holds the one active roster. Uploading a new roster replaces the
// previous one; the matching engine always sees a consistent snapshot.
type Store struct {
	mu         sync.RWMutex
	students   []models.StudentInfo
	sourceName string
	uploadedAt time.Time
}

// NewStore creates an empty roster store.
func NewStore() *Store {
	return &Store{}
}

// Replace installs a new roster, discarding the previous one.
func (s *Store) Replace(students []models.StudentInfo, sourceName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.students = make([]models.StudentInfo, len(students))
	copy(s.students, students)
	s.sourceName = sourceName
	s.uploadedAt = time.Now()
}

// Students returns a copy of the active roster, preserving input order.
func (s *Store) Students() []models.StudentInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.StudentInfo, len(s.students))
	copy(out, s.students)
	return out
}

// Clear removes the active roster.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.students = nil
	s.sourceName = ""
	s.uploadedAt = time.Time{}
}

// Info returns roster metadata for display.
func (s *Store) Info() (count int, sourceName string, uploadedAt time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.students), s.sourceName, s.uploadedAt
}
