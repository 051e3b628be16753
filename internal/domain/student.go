package domain

import (
	"context"
	"time"
)

// Student is the central record of the application. Field names mirror the
// JSON shape served by the API so the same struct can travel from the store,
// through handlers, and onto the realtime channel as an event subject.
type Student struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	StudentID    string `json:"studentId"`
	Phone        string `json:"phone,omitempty"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	Course       string `json:"course,omitempty"`
	Year         string `json:"year,omitempty"`
	GPA          string `json:"gpa,omitempty"`
	Address      string `json:"address,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// DisplayName resolves the name used in notifications and page headings.
// It prefers the full name, falls back to whichever half is present, and
// finally to the literal "Student".
func (s Student) DisplayName() string {
	switch {
	case s.FirstName != "" && s.LastName != "":
		return s.FirstName + " " + s.LastName
	case s.FirstName != "":
		return s.FirstName
	case s.LastName != "":
		return s.LastName
	default:
		return "Student"
	}
}

// StudentRepository is the persistence contract the rest of the application
// depends on. Three implementations exist (memory, postgres, surreal); the
// active one is selected by configuration at startup.
type StudentRepository interface {
	// List returns all students, optionally filtered by a case-insensitive
	// substring search over first name, last name, email and student ID.
	List(ctx context.Context, search string) ([]Student, error)

	// Get returns a single student or ErrStudentNotFound.
	Get(ctx context.Context, id string) (*Student, error)

	// Create persists a new student. The store assigns ID, CreatedAt and
	// UpdatedAt and returns the stored record.
	Create(ctx context.Context, s Student) (*Student, error)

	// Update applies the given fields to an existing student and bumps
	// UpdatedAt. Returns the updated record or ErrStudentNotFound.
	Update(ctx context.Context, id string, s Student) (*Student, error)

	// Delete removes a student or returns ErrStudentNotFound.
	Delete(ctx context.Context, id string) error
}

// Now returns the RFC3339 timestamp used for record and event times.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
