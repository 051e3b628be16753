package database

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/surrealdb/surrealdb.go"

	"github.com/nfrund/rollcall/internal/config"
	"github.com/nfrund/rollcall/internal/domain"
)

// NewSurrealDB connects, signs in and selects the configured namespace and
// database.
func NewSurrealDB(ctx context.Context, cfg *config.Config) (*surrealdb.DB, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.SurrealURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to surrealdb: %w", err)
	}

	authData := &surrealdb.Auth{
		Username: cfg.SurrealUser,
		Password: cfg.SurrealPass,
	}
	if _, err = db.SignIn(ctx, authData); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	if err = db.Use(ctx, cfg.SurrealNS, cfg.SurrealDB); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/db: %w", err)
	}

	slog.Info("Successfully signed in to SurrealDB", "service", "database")
	return db, nil
}

// SurrealStore is the SurrealDB-backed student repository. Records live in
// the student table under explicit record IDs; queries project the record key
// back out as the plain string id the rest of the application uses.
type SurrealStore struct {
	db      *surrealdb.DB
	entropy *ulid.MonotonicEntropy
}

func NewSurrealStore(db *surrealdb.DB) *SurrealStore {
	return &SurrealStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (s *SurrealStore) nextID() string {
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String())
}

// studentProjection pulls every field plus the record key as a string.
const studentProjection = "*, record::id(id) AS id"

func (s *SurrealStore) List(ctx context.Context, search string) ([]domain.Student, error) {
	query := "SELECT " + studentProjection + " FROM student ORDER BY lastName, firstName"
	params := map[string]any{}

	if term := strings.TrimSpace(search); term != "" {
		query = "SELECT " + studentProjection + ` FROM student
			WHERE string::lowercase(firstName) CONTAINS $term
			   OR string::lowercase(lastName) CONTAINS $term
			   OR string::lowercase(email) CONTAINS $term
			   OR string::lowercase(studentId) CONTAINS $term
			ORDER BY lastName, firstName`
		params["term"] = strings.ToLower(term)
	}

	students, err := Query[domain.Student](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

func (s *SurrealStore) Get(ctx context.Context, id string) (*domain.Student, error) {
	query := "SELECT " + studentProjection + " FROM type::thing('student', $id)"
	student, err := QueryOne[domain.Student](ctx, s.db, query, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, domain.ErrStudentNotFound
	}
	return student, nil
}

func (s *SurrealStore) Create(ctx context.Context, student domain.Student) (*domain.Student, error) {
	now := domain.Now()
	student.ID = s.nextID()
	student.CreatedAt = now
	student.UpdatedAt = now

	query := "CREATE type::thing('student', $id) CONTENT $data"
	params := map[string]any{"id": student.ID, "data": contentFields(student)}
	if err := Execute(ctx, s.db, query, params); err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}
	return &student, nil
}

func (s *SurrealStore) Update(ctx context.Context, id string, student domain.Student) (*domain.Student, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	student.ID = id
	student.CreatedAt = existing.CreatedAt
	student.UpdatedAt = domain.Now()
	if student.ProfileImage == "" {
		student.ProfileImage = existing.ProfileImage
	}

	query := "UPDATE type::thing('student', $id) CONTENT $data"
	params := map[string]any{"id": id, "data": contentFields(student)}
	if err := Execute(ctx, s.db, query, params); err != nil {
		return nil, fmt.Errorf("update student: %w", err)
	}
	return &student, nil
}

func (s *SurrealStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	query := "DELETE type::thing('student', $id)"
	if err := Execute(ctx, s.db, query, map[string]any{"id": id}); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// contentFields flattens a student into the record body. The id stays out of
// the content; it is the record key.
func contentFields(s domain.Student) map[string]any {
	return map[string]any{
		"firstName":    s.FirstName,
		"lastName":     s.LastName,
		"email":        s.Email,
		"studentId":    s.StudentID,
		"phone":        s.Phone,
		"dateOfBirth":  s.DateOfBirth,
		"course":       s.Course,
		"year":         s.Year,
		"gpa":          s.GPA,
		"address":      s.Address,
		"profileImage": s.ProfileImage,
		"createdAt":    s.CreatedAt,
		"updatedAt":    s.UpdatedAt,
	}
}
