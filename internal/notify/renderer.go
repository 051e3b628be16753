package notify

import (
	"encoding/json"

	"github.com/nfrund/rollcall/internal/realtime"
)

// Notification is the rendered form of a change event, ready to surface as
// a desktop notification or an in-app toast.
type Notification struct {
	Title     string
	Body      string
	Icon      string
	Action    realtime.ChangeAction
	StudentID string
	// DeepLink is the profile page the notification should open on click,
	// empty when the subject carried no identifier.
	DeepLink string
}

// subjectFields are the parts of the event subject the renderer cares about.
// The subject is otherwise opaque; a full record and the partial deletion
// stand-in both decode into this.
type subjectFields struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
}

// displayName resolves the subject's name: full name when both halves are
// present, then the name field, then the literal "Student".
func (s subjectFields) displayName() string {
	if s.FirstName != "" && s.LastName != "" {
		return s.FirstName + " " + s.LastName
	}
	if s.Name != "" {
		return s.Name
	}
	return "Student"
}

// Render maps a change event onto notification content via the fixed
// action table.
func Render(event realtime.ChangeEvent) Notification {
	var subject subjectFields
	// A malformed subject still renders, with every field defaulted.
	_ = json.Unmarshal(event.Student, &subject)

	name := subject.displayName()

	n := Notification{Action: event.Action}
	switch event.Action {
	case realtime.ActionCreated:
		n.Title = "New Student Added"
		n.Body = name + " has been added to the system"
		n.Icon = "✅"
	case realtime.ActionUpdated:
		n.Title = "Student Updated"
		n.Body = name + "'s information has been updated"
		n.Icon = "✏️"
	case realtime.ActionDeleted:
		n.Title = "Student Removed"
		n.Body = name + " has been removed from the system"
		n.Icon = "❌"
	default:
		n.Title = "Student Notification"
		n.Body = "A change occurred for " + name
		n.Icon = "ℹ️"
	}

	n.StudentID = subject.ID
	if n.StudentID == "" {
		n.StudentID = subject.StudentID
	}
	if n.StudentID != "" {
		n.DeepLink = "/students/" + n.StudentID
	}
	return n
}
