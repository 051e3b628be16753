package pages

import (
	cmp "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	g "maragu.dev/gomponents/html"
)

// Assistant renders the AI helper page. Messages post to the proxy endpoint
// and the reply fragment appends to the transcript.
func Assistant() cmp.Node {
	return g.Div(
		g.Class("max-w-2xl mx-auto bg-white shadow rounded flex flex-col h-[70vh]"),
		g.Div(
			g.Class("border-b px-4 py-3"),
			g.H1(g.Class("text-xl font-bold text-gray-800"), cmp.Text("Assistant")),
			g.P(g.Class("text-sm text-gray-500"), cmp.Text("Ask about students, courses and enrolment.")),
		),
		g.Div(
			g.ID("assistant-transcript"),
			g.Class("flex-1 overflow-y-auto px-4 py-3 space-y-3"),
		),
		g.Form(
			g.Class("flex gap-2 border-t px-4 py-3"),
			hx.Post("/assistant/message"),
			hx.Target("#assistant-transcript"),
			hx.Swap("beforeend"),
			cmp.Attr("hx-on::after-request", "this.reset()"),
			g.Input(
				g.Type("text"),
				g.Name("message"),
				g.Placeholder("Ask a question..."),
				g.AutoComplete("off"),
				g.Required(),
				g.Class("flex-1 border rounded px-3 py-2"),
			),
			g.Button(
				g.Type("submit"),
				g.Class("bg-indigo-600 text-white px-4 py-2 rounded hover:bg-indigo-700"),
				cmp.Text("Send"),
			),
		),
	)
}

// AssistantExchange is the transcript fragment for one question and answer.
func AssistantExchange(question, answer string) cmp.Node {
	return g.Div(
		g.Div(
			g.Class("text-right"),
			g.Span(
				g.Class("inline-block bg-indigo-600 text-white rounded-lg px-3 py-2"),
				cmp.Text(question),
			),
		),
		g.Div(
			g.Class("mt-2"),
			g.Span(
				g.Class("inline-block bg-gray-100 text-gray-800 rounded-lg px-3 py-2"),
				cmp.Text(answer),
			),
		),
	)
}
