package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/rollcall/internal/domain"
	"github.com/nfrund/rollcall/internal/realtime"
	"github.com/nfrund/rollcall/internal/storage"
)

// AvatarHandler uploads and serves student profile images.
type AvatarHandler struct {
	store    *storage.AvatarStore
	repo     domain.StudentRepository
	notifier ChangeNotifier
	logger   *slog.Logger
}

// NewAvatarHandler creates a new AvatarHandler.
func NewAvatarHandler(store *storage.AvatarStore, repo domain.StudentRepository, notifier ChangeNotifier) *AvatarHandler {
	return &AvatarHandler{
		store:    store,
		repo:     repo,
		notifier: notifier,
		logger:   slog.Default().With("service", "avatar_api"),
	}
}

// Upload handles POST /api/students/:id/avatar. The stored filename replaces
// the student's profile image and the change is announced like any other
// update.
func (h *AvatarHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	student, err := h.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrStudentNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Student not found"})
	}
	if err != nil {
		h.logger.Error("Failed to load student", "error", err, "id", id)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load student"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid file upload request"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read upload"})
	}
	defer src.Close()

	name, err := h.store.Save(ctx, fileHeader.Filename, src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	student.ProfileImage = "/avatars/" + name
	updated, err := h.repo.Update(ctx, id, *student)
	if err != nil {
		h.logger.Error("Failed to attach avatar", "error", err, "id", id)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update student"})
	}

	h.notifier.NotifyStudent(ctx, realtime.ActionUpdated, updated)
	return c.JSON(http.StatusOK, updated)
}

// Serve handles GET /avatars/:name.
func (h *AvatarHandler) Serve(c echo.Context) error {
	name := filepath.Base(c.Param("name"))

	f, err := h.store.Get(c.Request().Context(), name)
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Image not found"})
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response().Writer, f)
	return err
}
