package pages

import (
	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"

	"github.com/nfrund/rollcall/internal/domain"
)

// StudentForm renders the add and edit forms. A nil student means a new
// record.
func StudentForm(student *domain.Student) cmp.Node {
	action := "/students"
	heading := "Add Student"
	var current domain.Student
	if student != nil {
		current = *student
		action = "/students/" + student.ID
		heading = "Edit " + student.DisplayName()
	}

	return g.Div(
		g.Class("max-w-2xl mx-auto bg-white shadow rounded p-6"),
		g.H1(g.Class("text-2xl font-bold text-gray-800 mb-6"), cmp.Text(heading)),
		g.Form(
			g.Method("post"),
			g.Action(action),
			g.Class("grid grid-cols-1 md:grid-cols-2 gap-4"),
			formField("First Name", "firstName", "text", current.FirstName, true),
			formField("Last Name", "lastName", "text", current.LastName, true),
			formField("Email", "email", "email", current.Email, true),
			formField("Student ID", "studentId", "text", current.StudentID, true),
			formField("Phone", "phone", "tel", current.Phone, false),
			formField("Date of Birth", "dateOfBirth", "date", current.DateOfBirth, false),
			formField("Course", "course", "text", current.Course, false),
			formField("Year", "year", "text", current.Year, false),
			formField("GPA", "gpa", "text", current.GPA, false),
			formField("Address", "address", "text", current.Address, false),
			g.Div(
				g.Class("md:col-span-2 flex gap-3 mt-4"),
				g.Button(
					g.Type("submit"),
					g.Class("bg-indigo-600 text-white px-6 py-2 rounded hover:bg-indigo-700"),
					cmp.Text("Save"),
				),
				g.A(
					g.Href("/students"),
					g.Class("px-6 py-2 rounded border text-gray-700 hover:bg-gray-50"),
					cmp.Text("Cancel"),
				),
			),
		),
	)
}

func formField(label, name, inputType, value string, required bool) cmp.Node {
	return g.Label(
		g.Class("block"),
		g.Span(g.Class("text-sm text-gray-600"), cmp.Text(label)),
		g.Input(
			g.Type(inputType),
			g.Name(name),
			g.Value(value),
			g.Class("mt-1 w-full border rounded px-3 py-2"),
			cmp.If(required, g.Required()),
		),
	)
}
