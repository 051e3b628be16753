package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/rollcall/internal/database"
	"github.com/nfrund/rollcall/internal/domain"
	"github.com/nfrund/rollcall/internal/handlers"
	"github.com/nfrund/rollcall/internal/realtime"
)

// recordingNotifier captures change announcements.
type recordingNotifier struct {
	mu      sync.Mutex
	actions []realtime.ChangeAction
	names   []string
}

func (n *recordingNotifier) NotifyStudent(_ context.Context, action realtime.ChangeAction, student *domain.Student) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.actions = append(n.actions, action)
	n.names = append(n.names, student.DisplayName())
}

func (n *recordingNotifier) NotifyDeleted(_ context.Context, student *domain.Student) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.actions = append(n.actions, realtime.ActionDeleted)
	n.names = append(n.names, student.DisplayName())
}

func newTestAPI(t *testing.T) (*echo.Echo, *handlers.StudentHandler, *database.MemoryStore, *recordingNotifier) {
	t.Helper()
	e := echo.New()
	e.Validator = handlers.NewValidator()
	store := database.NewMemoryStore()
	notifier := &recordingNotifier{}
	return e, handlers.NewStudentHandler(store, notifier), store, notifier
}

func seedOne(t *testing.T, store *database.MemoryStore) *domain.Student {
	t.Helper()
	created, err := store.Create(context.Background(), domain.Student{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john.doe@email.com",
		StudentID: "STU001",
	})
	require.NoError(t, err)
	return created
}

func TestStudentListReturnsEmptyArray(t *testing.T) {
	e, h, _, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.List(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestStudentListWithSearch(t *testing.T) {
	e, h, store, _ := newTestAPI(t)
	seedOne(t, store)
	_, err := store.Create(context.Background(), domain.Student{
		FirstName: "Jane", LastName: "Smith", Email: "jane@email.com", StudentID: "STU002",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/students?search=jane", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.List(e.NewContext(req, rec)))

	var students []domain.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
	require.Len(t, students, 1)
	assert.Equal(t, "Smith", students[0].LastName)
}

func TestStudentGetNotFound(t *testing.T) {
	e, h, _, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/students/:id")
	c.SetParamNames("id")
	c.SetParamValues("missing")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Student not found"}`, rec.Body.String())
}

func TestStudentCreate(t *testing.T) {
	e, h, _, notifier := newTestAPI(t)

	body := `{"firstName":"Grace","lastName":"Hopper","email":"grace@navy.mil","studentId":"STU042"}`
	req := httptest.NewRequest(http.MethodPost, "/api/students", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Create(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.CreatedAt)

	require.Len(t, notifier.actions, 1)
	assert.Equal(t, realtime.ActionCreated, notifier.actions[0])
	assert.Equal(t, "Grace Hopper", notifier.names[0])
}

func TestStudentCreateValidation(t *testing.T) {
	e, h, _, notifier := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing first name", `{"lastName":"Doe","email":"a@b.c","studentId":"S1"}`},
		{"bad email", `{"firstName":"A","lastName":"B","email":"not-an-email","studentId":"S1"}`},
		{"missing student id", `{"firstName":"A","lastName":"B","email":"a@b.c"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/students", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			require.NoError(t, h.Create(e.NewContext(req, rec)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	// Nothing was announced for rejected requests.
	assert.Empty(t, notifier.actions)
}

func TestStudentUpdate(t *testing.T) {
	e, h, store, notifier := newTestAPI(t)
	created := seedOne(t, store)

	body := `{"firstName":"Johnny","lastName":"Doe","email":"john.doe@email.com","studentId":"STU001"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var updated domain.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Johnny", updated.FirstName)

	require.Len(t, notifier.actions, 1)
	assert.Equal(t, realtime.ActionUpdated, notifier.actions[0])
}

func TestStudentUpdateNotFound(t *testing.T) {
	e, h, _, notifier := newTestAPI(t)

	body := `{"firstName":"A","lastName":"B","email":"a@b.c","studentId":"S1"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, notifier.actions)
}

func TestStudentDeleteAnnouncesName(t *testing.T) {
	e, h, store, notifier := newTestAPI(t)
	created := seedOne(t, store)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	// The record is gone but the announcement still carries its name.
	require.Len(t, notifier.actions, 1)
	assert.Equal(t, realtime.ActionDeleted, notifier.actions[0])
	assert.Equal(t, "John Doe", notifier.names[0])

	_, err := store.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
}

func TestStudentDeleteNotFound(t *testing.T) {
	e, h, _, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
