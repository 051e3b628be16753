package database

import (
	"context"
	"fmt"

	"github.com/nfrund/rollcall/internal/domain"
)

// SeedStudents is the demo roster loaded into empty stores by the seed
// command and by the in-memory backend at startup.
var SeedStudents = []domain.Student{
	{
		FirstName:    "John",
		LastName:     "Doe",
		Email:        "john.doe@email.com",
		StudentID:    "STU001",
		Phone:        "+1 234-567-8900",
		DateOfBirth:  "2000-05-15",
		Course:       "Computer Science",
		Year:         "3rd Year",
		GPA:          "3.8",
		Address:      "123 Main St, City, State",
		ProfileImage: "👨‍💻",
	},
	{
		FirstName:    "Jane",
		LastName:     "Smith",
		Email:        "jane.smith@email.com",
		StudentID:    "STU002",
		Phone:        "+1 234-567-8901",
		DateOfBirth:  "1999-08-22",
		Course:       "Business Administration",
		Year:         "2nd Year",
		GPA:          "3.9",
		Address:      "456 Oak Ave, City, State",
		ProfileImage: "👩‍💼",
	},
	{
		FirstName:    "Mike",
		LastName:     "Johnson",
		Email:        "mike.johnson@email.com",
		StudentID:    "STU003",
		Phone:        "+1 234-567-8902",
		DateOfBirth:  "2001-03-10",
		Course:       "Engineering",
		Year:         "2nd Year",
		GPA:          "3.7",
		Address:      "789 Pine Rd, City, State",
		ProfileImage: "👨‍🔧",
	},
	{
		FirstName:    "Sarah",
		LastName:     "Wilson",
		Email:        "sarah.wilson@email.com",
		StudentID:    "STU004",
		Phone:        "+1 234-567-8903",
		DateOfBirth:  "2000-12-05",
		Course:       "Medicine",
		Year:         "4th Year",
		GPA:          "3.9",
		Address:      "321 Oak Lane, City, State",
		ProfileImage: "👩‍⚕️",
	},
	{
		FirstName:    "David",
		LastName:     "Brown",
		Email:        "david.brown@email.com",
		StudentID:    "STU005",
		Phone:        "+1 234-567-8904",
		DateOfBirth:  "1999-09-18",
		Course:       "Arts",
		Year:         "3rd Year",
		GPA:          "3.6",
		Address:      "654 Maple Ave, City, State",
		ProfileImage: "👨‍🎨",
	},
}

// Seed inserts the demo roster into a repository. Existing records are left
// alone; seeding an already populated store is a no-op.
func Seed(ctx context.Context, repo domain.StudentRepository) (int, error) {
	existing, err := repo.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("check existing students: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, student := range SeedStudents {
		if _, err := repo.Create(ctx, student); err != nil {
			return i, fmt.Errorf("seed student %s: %w", student.StudentID, err)
		}
	}
	return len(SeedStudents), nil
}
