// Package handlers contains the HTTP layer: the JSON API for student
// records, the realtime token endpoint, the AI assistant proxy and the HTML
// pages.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/rollcall/internal/domain"
	"github.com/nfrund/rollcall/internal/realtime"
)

// ChangeNotifier receives record change announcements after a successful
// write. Implementations must never fail the caller; publishing problems are
// theirs to swallow.
type ChangeNotifier interface {
	NotifyStudent(ctx context.Context, action realtime.ChangeAction, student *domain.Student)
	NotifyDeleted(ctx context.Context, student *domain.Student)
}

// StudentHandler serves the /api/students endpoints.
type StudentHandler struct {
	repo     domain.StudentRepository
	notifier ChangeNotifier
	logger   *slog.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(repo domain.StudentRepository, notifier ChangeNotifier) *StudentHandler {
	return &StudentHandler{
		repo:     repo,
		notifier: notifier,
		logger:   slog.Default().With("service", "students_api"),
	}
}

// List handles GET /api/students. An optional search query narrows the
// result set.
func (h *StudentHandler) List(c echo.Context) error {
	students, err := h.repo.List(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		h.logger.Error("Failed to list students", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load students"})
	}
	if students == nil {
		students = []domain.Student{}
	}
	return c.JSON(http.StatusOK, students)
}

// Get handles GET /api/students/:id.
func (h *StudentHandler) Get(c echo.Context) error {
	student, err := h.repo.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, domain.ErrStudentNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Student not found"})
	}
	if err != nil {
		h.logger.Error("Failed to load student", "error", err, "id", c.Param("id"))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load student"})
	}
	return c.JSON(http.StatusOK, student)
}

// Create handles POST /api/students. On success the new record is returned
// with 201 and a created event is announced on the students channel. A
// failed announcement never fails the request.
func (h *StudentHandler) Create(c echo.Context) error {
	var req StudentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	created, err := h.repo.Create(c.Request().Context(), req.ToStudent())
	if err != nil {
		h.logger.Error("Failed to create student", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create student"})
	}

	h.notifier.NotifyStudent(c.Request().Context(), realtime.ActionCreated, created)
	return c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/students/:id.
func (h *StudentHandler) Update(c echo.Context) error {
	var req StudentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	updated, err := h.repo.Update(c.Request().Context(), c.Param("id"), req.ToStudent())
	if errors.Is(err, domain.ErrStudentNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Student not found"})
	}
	if err != nil {
		h.logger.Error("Failed to update student", "error", err, "id", c.Param("id"))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update student"})
	}

	h.notifier.NotifyStudent(c.Request().Context(), realtime.ActionUpdated, updated)
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/students/:id. The record is loaded first so the
// deletion event can carry its name.
func (h *StudentHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	student, err := h.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrStudentNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Student not found"})
	}
	if err != nil {
		h.logger.Error("Failed to load student", "error", err, "id", id)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete student"})
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Student not found"})
		}
		h.logger.Error("Failed to delete student", "error", err, "id", id)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete student"})
	}

	h.notifier.NotifyDeleted(ctx, student)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
