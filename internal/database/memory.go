// Package database provides the student repository implementations: an
// in-memory store for development and tests, a PostgreSQL store, and a
// SurrealDB store. The active backend is chosen by configuration.
package database

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/nfrund/rollcall/internal/domain"
)

// MemoryStore is a threadsafe in-memory student repository. It is the
// default backend and the one the test suite runs against.
type MemoryStore struct {
	mu       sync.RWMutex
	students map[string]domain.Student
	entropy  *ulid.MonotonicEntropy
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		students: make(map[string]domain.Student),
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (s *MemoryStore) nextID() string {
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String())
}

// List returns students sorted by last name then first name. A non-empty
// search narrows the result to records whose first name, last name, email or
// student ID contains the term, case-insensitively.
func (s *MemoryStore) List(_ context.Context, search string) ([]domain.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(search))
	result := make([]domain.Student, 0, len(s.students))
	for _, student := range s.students {
		if term != "" && !matchesSearch(student, term) {
			continue
		}
		result = append(result, student)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].LastName != result[j].LastName {
			return result[i].LastName < result[j].LastName
		}
		return result[i].FirstName < result[j].FirstName
	})
	return result, nil
}

func matchesSearch(student domain.Student, term string) bool {
	for _, field := range []string{student.FirstName, student.LastName, student.Email, student.StudentID} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	student, ok := s.students[id]
	if !ok {
		return nil, domain.ErrStudentNotFound
	}
	return &student, nil
}

func (s *MemoryStore) Create(_ context.Context, student domain.Student) (*domain.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := domain.Now()
	student.ID = s.nextID()
	student.CreatedAt = now
	student.UpdatedAt = now
	s.students[student.ID] = student
	return &student, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, student domain.Student) (*domain.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.students[id]
	if !ok {
		return nil, domain.ErrStudentNotFound
	}

	student.ID = existing.ID
	student.CreatedAt = existing.CreatedAt
	student.UpdatedAt = domain.Now()
	if student.ProfileImage == "" {
		student.ProfileImage = existing.ProfileImage
	}
	s.students[id] = student
	return &student, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[id]; !ok {
		return domain.ErrStudentNotFound
	}
	delete(s.students, id)
	return nil
}
