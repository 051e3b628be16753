// Package layouts holds the shared page chrome: the HTML shell, navigation
// and the flash message strip.
package layouts

import (
	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"

	"github.com/nfrund/rollcall/internal/view"
)

// CalculateTitle handles the conditional logic for the page title.
func CalculateTitle(title string) string {
	if title != "" {
		return title + " - Rollcall"
	}
	return "Rollcall"
}

// Base wraps page content in the HTML shell. Every page shares the nav bar,
// the flash strip and the toast container the realtime script renders into.
func Base(title string, flashes view.Flashes, content cmp.Node) cmp.Node {
	return g.Doctype(
		g.HTML(
			g.Lang("en"),
			g.Head(
				g.Meta(g.Charset("utf-8")),
				g.Meta(g.Name("viewport"), g.Content("width=device-width, initial-scale=1")),
				g.TitleEl(cmp.Text(CalculateTitle(title))),
				g.Script(g.Src("https://unpkg.com/htmx.org@1.9.12")),
				g.Script(g.Src("https://cdn.tailwindcss.com")),
				g.Script(g.Src("/static/js/realtime.js"), g.Defer()),
			),
			g.Body(
				g.Class("bg-gray-100 min-h-screen"),
				navBar(),
				flashStrip(flashes),
				g.Main(g.Class("container mx-auto px-4 py-6"), content),
				// Toasts from the students channel stack here.
				g.Div(g.ID("toast-container"), g.Class("fixed top-4 right-4 space-y-2 z-50")),
			),
		),
	)
}

func navBar() cmp.Node {
	return g.Nav(
		g.Class("bg-indigo-700 text-white shadow"),
		g.Div(
			g.Class("container mx-auto px-4 py-3 flex items-center gap-6"),
			g.A(g.Href("/"), g.Class("font-bold text-lg"), cmp.Text("Rollcall")),
			g.A(g.Href("/students"), g.Class("hover:underline"), cmp.Text("Students")),
			g.A(g.Href("/chat"), g.Class("hover:underline"), cmp.Text("Chat")),
			g.A(g.Href("/assistant"), g.Class("hover:underline"), cmp.Text("Assistant")),
		),
	)
}

func flashStrip(flashes view.Flashes) cmp.Node {
	if len(flashes.Success) == 0 && len(flashes.Error) == 0 {
		return nil
	}
	return g.Div(
		g.Class("container mx-auto px-4 pt-4 space-y-2"),
		cmp.Map(flashes.Success, func(msg string) cmp.Node {
			return g.Div(
				g.Class("bg-green-100 border border-green-300 text-green-800 px-4 py-2 rounded"),
				cmp.Text(msg),
			)
		}),
		cmp.Map(flashes.Error, func(msg string) cmp.Node {
			return g.Div(
				g.Class("bg-red-100 border border-red-300 text-red-800 px-4 py-2 rounded"),
				cmp.Text(msg),
			)
		}),
	)
}
