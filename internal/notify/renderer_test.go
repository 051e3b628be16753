package notify

import (
	"encoding/json"
	"testing"

	"github.com/nfrund/rollcall/internal/realtime"
	"github.com/stretchr/testify/assert"
)

func changeEvent(action realtime.ChangeAction, subject string) realtime.ChangeEvent {
	return realtime.ChangeEvent{
		Action:    action,
		Student:   json.RawMessage(subject),
		Timestamp: "2026-01-01T00:00:00Z",
	}
}

func TestRender_Created(t *testing.T) {
	n := Render(changeEvent(realtime.ActionCreated, `{"id":"42","firstName":"Ada","lastName":"Lovelace"}`))

	assert.Equal(t, "New Student Added", n.Title)
	assert.Equal(t, "Ada Lovelace has been added to the system", n.Body)
	assert.Equal(t, "/students/42", n.DeepLink)
}

func TestRender_Updated(t *testing.T) {
	n := Render(changeEvent(realtime.ActionUpdated, `{"firstName":"Ada","lastName":"Lovelace"}`))

	assert.Equal(t, "Student Updated", n.Title)
	assert.Equal(t, "Ada Lovelace's information has been updated", n.Body)
	assert.Empty(t, n.DeepLink)
}

func TestRender_Deleted(t *testing.T) {
	n := Render(changeEvent(realtime.ActionDeleted, `{"id":"42","name":"Ada Lovelace"}`))

	assert.Equal(t, "Student Removed", n.Title)
	assert.Equal(t, "Ada Lovelace has been removed from the system", n.Body)
}

func TestRender_UnknownAction(t *testing.T) {
	n := Render(changeEvent(realtime.ChangeAction("archived"), `{"name":"Guest"}`))

	assert.Equal(t, "Student Notification", n.Title)
	assert.Equal(t, "A change occurred for Guest", n.Body)
}

func TestRender_NameFallbacks(t *testing.T) {
	// Name field used when the split name is incomplete.
	n := Render(changeEvent(realtime.ActionCreated, `{"name":"Guest"}`))
	assert.Equal(t, "Guest has been added to the system", n.Body)

	// Only one half of the split name present: falls through to the name
	// field, then to the literal.
	n = Render(changeEvent(realtime.ActionCreated, `{"firstName":"Ada"}`))
	assert.Equal(t, "Student has been added to the system", n.Body)

	// Nothing at all.
	n = Render(changeEvent(realtime.ActionCreated, `{}`))
	assert.Equal(t, "Student has been added to the system", n.Body)
}

func TestRender_StudentIDFallback(t *testing.T) {
	n := Render(changeEvent(realtime.ActionUpdated, `{"studentId":"STU007","firstName":"Ada","lastName":"Lovelace"}`))
	assert.Equal(t, "/students/STU007", n.DeepLink)
	assert.Equal(t, "STU007", n.StudentID)
}

func TestRender_MalformedSubject(t *testing.T) {
	n := Render(changeEvent(realtime.ActionDeleted, `"not an object"`))
	assert.Equal(t, "Student has been removed from the system", n.Body)
}
