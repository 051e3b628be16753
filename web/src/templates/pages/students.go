// Package pages holds the gomponents page bodies rendered inside the Base
// layout.
package pages

import (
	cmp "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	g "maragu.dev/gomponents/html"

	"github.com/nfrund/rollcall/internal/domain"
)

// Students renders the roster page. The search box swaps the table body over
// HTMX; the realtime script refreshes it when a change event arrives.
func Students(students []domain.Student, search string) cmp.Node {
	return g.Div(
		g.Div(
			g.Class("flex items-center justify-between mb-6"),
			g.H1(g.Class("text-3xl font-bold text-gray-800"), cmp.Text("Students")),
			g.A(
				g.Href("/students/new"),
				g.Class("bg-indigo-600 text-white px-4 py-2 rounded hover:bg-indigo-700"),
				cmp.Text("Add Student"),
			),
		),
		g.Input(
			g.Type("search"),
			g.Name("search"),
			g.Value(search),
			g.Placeholder("Search by name, email or student ID..."),
			g.Class("w-full border rounded px-4 py-2 mb-4"),
			hx.Get("/students/rows"),
			hx.Trigger("input changed delay:300ms, search"),
			hx.Target("#student-rows"),
		),
		g.Table(
			g.Class("w-full bg-white shadow rounded overflow-hidden"),
			g.THead(
				g.Class("bg-gray-50 text-left text-sm text-gray-600"),
				g.Tr(
					g.Th(g.Class("px-4 py-3"), cmp.Text("Name")),
					g.Th(g.Class("px-4 py-3"), cmp.Text("Student ID")),
					g.Th(g.Class("px-4 py-3"), cmp.Text("Course")),
					g.Th(g.Class("px-4 py-3"), cmp.Text("Year")),
					g.Th(g.Class("px-4 py-3"), cmp.Text("")),
				),
			),
			g.TBody(g.ID("student-rows"), StudentRows(students)),
		),
	)
}

// StudentRows is the table body fragment, also served standalone for HTMX
// swaps.
func StudentRows(students []domain.Student) cmp.Node {
	if len(students) == 0 {
		return g.Tr(
			g.Td(
				g.ColSpan("5"),
				g.Class("px-4 py-6 text-center text-gray-500"),
				cmp.Text("No students found."),
			),
		)
	}
	return cmp.Map(students, studentRow)
}

func studentRow(s domain.Student) cmp.Node {
	return g.Tr(
		g.Class("border-t hover:bg-gray-50"),
		g.Td(
			g.Class("px-4 py-3"),
			g.A(
				g.Href("/students/"+s.ID),
				g.Class("text-indigo-700 font-medium hover:underline"),
				cmp.Text(s.DisplayName()),
			),
		),
		g.Td(g.Class("px-4 py-3"), cmp.Text(s.StudentID)),
		g.Td(g.Class("px-4 py-3"), cmp.Text(s.Course)),
		g.Td(g.Class("px-4 py-3"), cmp.Text(s.Year)),
		g.Td(
			g.Class("px-4 py-3 text-right"),
			g.A(
				g.Href("/students/"+s.ID+"/edit"),
				g.Class("text-sm text-gray-600 hover:underline"),
				cmp.Text("Edit"),
			),
		),
	)
}
