package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/oklog/ulid/v2"

	"github.com/nfrund/rollcall/internal/domain"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// PostgresStore is the PostgreSQL-backed student repository.
type PostgresStore struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

// NewPostgresStore opens a connection, runs pending migrations and returns
// the repository. The caller owns the returned store and must Close it.
func NewPostgresStore(connURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("Connected to PostgreSQL", "service", "database")
	return &PostgresStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}, nil
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate setup: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) nextID() string {
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String())
}

const studentColumns = `id, first_name, last_name, email, student_id, phone,
	date_of_birth, course, year, gpa, address, profile_image, created_at, updated_at`

func scanStudent(row interface{ Scan(...any) error }) (*domain.Student, error) {
	var student domain.Student
	err := row.Scan(
		&student.ID,
		&student.FirstName,
		&student.LastName,
		&student.Email,
		&student.StudentID,
		&student.Phone,
		&student.DateOfBirth,
		&student.Course,
		&student.Year,
		&student.GPA,
		&student.Address,
		&student.ProfileImage,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *PostgresStore) List(ctx context.Context, search string) ([]domain.Student, error) {
	query := `SELECT ` + studentColumns + `
		FROM students
		ORDER BY last_name, first_name`
	args := []any{}

	if term := strings.TrimSpace(search); term != "" {
		query = `SELECT ` + studentColumns + `
			FROM students
			WHERE first_name ILIKE $1
			   OR last_name ILIKE $1
			   OR email ILIKE $1
			   OR student_id ILIKE $1
			ORDER BY last_name, first_name`
		args = append(args, "%"+term+"%")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, *student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	student, err := scanStudent(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return student, nil
}

func (s *PostgresStore) Create(ctx context.Context, student domain.Student) (*domain.Student, error) {
	now := domain.Now()
	student.ID = s.nextID()
	student.CreatedAt = now
	student.UpdatedAt = now

	const query = `
		INSERT INTO students (` + studentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := s.db.ExecContext(ctx, query,
		student.ID, student.FirstName, student.LastName, student.Email,
		student.StudentID, student.Phone, student.DateOfBirth, student.Course,
		student.Year, student.GPA, student.Address, student.ProfileImage,
		student.CreatedAt, student.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}
	return &student, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, student domain.Student) (*domain.Student, error) {
	const query = `
		UPDATE students
		SET first_name = $2, last_name = $3, email = $4, student_id = $5,
		    phone = $6, date_of_birth = $7, course = $8, year = $9, gpa = $10,
		    address = $11,
		    profile_image = CASE WHEN $12 = '' THEN profile_image ELSE $12 END,
		    updated_at = $13
		WHERE id = $1
		RETURNING ` + studentColumns

	updated, err := scanStudent(s.db.QueryRowContext(ctx, query,
		id, student.FirstName, student.LastName, student.Email,
		student.StudentID, student.Phone, student.DateOfBirth, student.Course,
		student.Year, student.GPA, student.Address, student.ProfileImage,
		domain.Now(),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update student: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if affected == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
