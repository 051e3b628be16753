package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	cmp "maragu.dev/gomponents"

	"github.com/nfrund/rollcall/internal/domain"
	"github.com/nfrund/rollcall/internal/realtime"
	"github.com/nfrund/rollcall/internal/rendering"
	"github.com/nfrund/rollcall/internal/view"
	"github.com/nfrund/rollcall/web/src/templates/layouts"
	"github.com/nfrund/rollcall/web/src/templates/pages"
)

// PagesHandler serves the HTML pages. Form posts go through the same
// repository and notifier as the JSON API, then redirect with a flash.
type PagesHandler struct {
	repo     domain.StudentRepository
	notifier ChangeNotifier
	renderer rendering.Renderer
	chatbot  *ChatbotHandler
	logger   *slog.Logger
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(repo domain.StudentRepository, notifier ChangeNotifier, renderer rendering.Renderer, chatbot *ChatbotHandler) *PagesHandler {
	return &PagesHandler{
		repo:     repo,
		notifier: notifier,
		renderer: renderer,
		chatbot:  chatbot,
		logger:   slog.Default().With("service", "pages"),
	}
}

func (h *PagesHandler) page(c echo.Context, title string, content cmp.Node) error {
	return h.renderer.RenderPage(c, http.StatusOK, layouts.Base(title, view.GetFlashes(c), content))
}

// Home redirects to the roster.
func (h *PagesHandler) Home(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/students")
}

// Students renders the roster page (GET /students).
func (h *PagesHandler) Students(c echo.Context) error {
	search := c.QueryParam("search")
	students, err := h.repo.List(c.Request().Context(), search)
	if err != nil {
		h.logger.Error("Failed to list students", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load students")
	}
	return h.page(c, "Students", pages.Students(students, search))
}

// StudentRows serves the table body fragment for HTMX search swaps
// (GET /students/rows).
func (h *PagesHandler) StudentRows(c echo.Context) error {
	students, err := h.repo.List(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		h.logger.Error("Failed to list students", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load students")
	}
	return h.renderer.RenderPage(c, http.StatusOK, pages.StudentRows(students))
}

// NewStudent renders the empty form (GET /students/new).
func (h *PagesHandler) NewStudent(c echo.Context) error {
	return h.page(c, "Add Student", pages.StudentForm(nil))
}

// CreateStudent handles the add form post (POST /students).
func (h *PagesHandler) CreateStudent(c echo.Context) error {
	var req StudentRequest
	if err := c.Bind(&req); err != nil {
		view.SetFlashError(c, "Invalid form submission.")
		return c.Redirect(http.StatusSeeOther, "/students/new")
	}
	if err := c.Validate(&req); err != nil {
		view.SetFlashError(c, "Please fill in the required fields.")
		return c.Redirect(http.StatusSeeOther, "/students/new")
	}

	created, err := h.repo.Create(c.Request().Context(), req.ToStudent())
	if err != nil {
		h.logger.Error("Failed to create student", "error", err)
		view.SetFlashError(c, "Failed to create the student.")
		return c.Redirect(http.StatusSeeOther, "/students/new")
	}

	h.notifier.NotifyStudent(c.Request().Context(), realtime.ActionCreated, created)
	view.SetFlashSuccess(c, fmt.Sprintf("%s was added.", created.DisplayName()))
	return c.Redirect(http.StatusSeeOther, "/students")
}

// Student renders the profile page (GET /students/:id).
func (h *PagesHandler) Student(c echo.Context) error {
	student, err := h.repo.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, domain.ErrStudentNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Student not found")
	}
	if err != nil {
		h.logger.Error("Failed to load student", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load student")
	}
	return h.page(c, student.DisplayName(), pages.StudentProfile(*student))
}

// EditStudent renders the edit form (GET /students/:id/edit).
func (h *PagesHandler) EditStudent(c echo.Context) error {
	student, err := h.repo.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, domain.ErrStudentNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Student not found")
	}
	if err != nil {
		h.logger.Error("Failed to load student", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load student")
	}
	return h.page(c, "Edit Student", pages.StudentForm(student))
}

// UpdateStudent handles the edit form post (POST /students/:id).
func (h *PagesHandler) UpdateStudent(c echo.Context) error {
	id := c.Param("id")

	var req StudentRequest
	if err := c.Bind(&req); err != nil {
		view.SetFlashError(c, "Invalid form submission.")
		return c.Redirect(http.StatusSeeOther, "/students/"+id+"/edit")
	}
	if err := c.Validate(&req); err != nil {
		view.SetFlashError(c, "Please fill in the required fields.")
		return c.Redirect(http.StatusSeeOther, "/students/"+id+"/edit")
	}

	updated, err := h.repo.Update(c.Request().Context(), id, req.ToStudent())
	if errors.Is(err, domain.ErrStudentNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Student not found")
	}
	if err != nil {
		h.logger.Error("Failed to update student", "error", err)
		view.SetFlashError(c, "Failed to save the changes.")
		return c.Redirect(http.StatusSeeOther, "/students/"+id+"/edit")
	}

	h.notifier.NotifyStudent(c.Request().Context(), realtime.ActionUpdated, updated)
	view.SetFlashSuccess(c, fmt.Sprintf("%s was updated.", updated.DisplayName()))
	return c.Redirect(http.StatusSeeOther, "/students/"+id)
}

// DeleteStudent handles the delete form post (POST /students/:id/delete).
func (h *PagesHandler) DeleteStudent(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	student, err := h.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrStudentNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Student not found")
	}
	if err != nil {
		h.logger.Error("Failed to load student", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete student")
	}

	if err := h.repo.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrStudentNotFound) {
		h.logger.Error("Failed to delete student", "error", err)
		view.SetFlashError(c, "Failed to delete the student.")
		return c.Redirect(http.StatusSeeOther, "/students/"+id)
	}

	h.notifier.NotifyDeleted(ctx, student)
	view.SetFlashSuccess(c, fmt.Sprintf("%s was removed.", student.DisplayName()))
	return c.Redirect(http.StatusSeeOther, "/students")
}

// Chat renders the chat room page (GET /chat).
func (h *PagesHandler) Chat(c echo.Context) error {
	username := c.QueryParam("username")
	if username == "" {
		username = "Guest"
	}
	return h.page(c, "Chat", pages.Chat(username))
}

// Assistant renders the AI helper page (GET /assistant).
func (h *PagesHandler) Assistant(c echo.Context) error {
	return h.page(c, "Assistant", pages.Assistant())
}

// AssistantMessage handles the HTMX form post (POST /assistant/message) and
// returns the transcript fragment.
func (h *PagesHandler) AssistantMessage(c echo.Context) error {
	message := c.FormValue("message")
	if message == "" {
		return c.NoContent(http.StatusBadRequest)
	}

	if !h.chatbot.Configured() {
		fragment := pages.AssistantExchange(message,
			"The assistant is not configured. Set AI_GATEWAY_URL and AI_GATEWAY_KEY to enable it.")
		return h.renderer.RenderPage(c, http.StatusOK, fragment)
	}

	reply, err := h.chatbot.Ask(c, message)
	if err != nil {
		h.logger.Error("Assistant gateway call failed", "error", err)
		reply = "The assistant is unavailable right now."
	}
	return h.renderer.RenderPage(c, http.StatusOK, pages.AssistantExchange(message, reply))
}
