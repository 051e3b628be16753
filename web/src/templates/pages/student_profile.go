package pages

import (
	"strings"

	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"

	"github.com/nfrund/rollcall/internal/domain"
)

// StudentProfile renders the detail page for one record.
func StudentProfile(student domain.Student) cmp.Node {
	return g.Div(
		g.Class("max-w-2xl mx-auto bg-white shadow rounded p-6"),
		g.Div(
			g.Class("flex items-center gap-4 mb-6"),
			avatar(student),
			g.Div(
				g.H1(g.Class("text-2xl font-bold text-gray-800"), cmp.Text(student.DisplayName())),
				g.P(g.Class("text-gray-500"), cmp.Text(student.StudentID)),
			),
		),
		g.Dl(
			g.Class("grid grid-cols-1 md:grid-cols-2 gap-x-6 gap-y-3"),
			profileRow("Email", student.Email),
			profileRow("Phone", student.Phone),
			profileRow("Date of Birth", student.DateOfBirth),
			profileRow("Course", student.Course),
			profileRow("Year", student.Year),
			profileRow("GPA", student.GPA),
			profileRow("Address", student.Address),
		),
		g.Div(
			g.Class("mt-6 flex gap-3"),
			g.A(
				g.Href("/students/"+student.ID+"/edit"),
				g.Class("bg-indigo-600 text-white px-4 py-2 rounded hover:bg-indigo-700"),
				cmp.Text("Edit"),
			),
			g.Form(
				g.Method("post"),
				g.Action("/students/"+student.ID+"/delete"),
				g.Button(
					g.Type("submit"),
					g.Class("px-4 py-2 rounded border border-red-300 text-red-700 hover:bg-red-50"),
					cmp.Text("Delete"),
				),
			),
		),
	)
}

// avatar shows the uploaded image when the record carries a file path and
// falls back to rendering the stored emoji (or initials) otherwise.
func avatar(student domain.Student) cmp.Node {
	if strings.HasPrefix(student.ProfileImage, "/avatars/") {
		return g.Img(
			g.Src(student.ProfileImage),
			g.Alt(student.DisplayName()),
			g.Class("w-16 h-16 rounded-full object-cover"),
		)
	}
	display := student.ProfileImage
	if display == "" {
		display = initials(student)
	}
	return g.Div(
		g.Class("w-16 h-16 rounded-full bg-indigo-100 flex items-center justify-center text-2xl"),
		cmp.Text(display),
	)
}

func initials(student domain.Student) string {
	var b strings.Builder
	if student.FirstName != "" {
		b.WriteString(student.FirstName[:1])
	}
	if student.LastName != "" {
		b.WriteString(student.LastName[:1])
	}
	if b.Len() == 0 {
		return "?"
	}
	return strings.ToUpper(b.String())
}

func profileRow(label, value string) cmp.Node {
	if value == "" {
		value = "-"
	}
	return g.Div(
		g.Dt(g.Class("text-sm text-gray-500"), cmp.Text(label)),
		g.Dd(g.Class("text-gray-800"), cmp.Text(value)),
	)
}
