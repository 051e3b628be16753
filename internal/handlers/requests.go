package handlers

import (
	"github.com/go-playground/validator/v10"

	"github.com/nfrund/rollcall/internal/domain"
)

// CustomValidator wraps the go-playground/validator library to implement
// Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// StudentRequest is the DTO for creating and updating students. Optional
// fields pass through unvalidated; the record keeps whatever the form sent.
type StudentRequest struct {
	FirstName    string `json:"firstName" form:"firstName" validate:"required"`
	LastName     string `json:"lastName" form:"lastName" validate:"required"`
	Email        string `json:"email" form:"email" validate:"required,email"`
	StudentID    string `json:"studentId" form:"studentId" validate:"required"`
	Phone        string `json:"phone" form:"phone"`
	DateOfBirth  string `json:"dateOfBirth" form:"dateOfBirth"`
	Course       string `json:"course" form:"course"`
	Year         string `json:"year" form:"year"`
	GPA          string `json:"gpa" form:"gpa"`
	Address      string `json:"address" form:"address"`
	ProfileImage string `json:"profileImage" form:"profileImage"`
}

// ToStudent maps the request onto a domain record. ID and timestamps are
// store-assigned.
func (r StudentRequest) ToStudent() domain.Student {
	return domain.Student{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		StudentID:    r.StudentID,
		Phone:        r.Phone,
		DateOfBirth:  r.DateOfBirth,
		Course:       r.Course,
		Year:         r.Year,
		GPA:          r.GPA,
		Address:      r.Address,
		ProfileImage: r.ProfileImage,
	}
}

// ChatbotRequest is the DTO for the AI assistant proxy endpoint. History
// carries the prior turns so the gateway keeps conversational context.
type ChatbotRequest struct {
	Message string        `json:"message" validate:"required"`
	History []ChatbotTurn `json:"history"`
}

// ChatbotTurn is one prior exchange turn.
type ChatbotTurn struct {
	Role    string `json:"role" validate:"omitempty,oneof=user assistant"`
	Content string `json:"content"`
}
