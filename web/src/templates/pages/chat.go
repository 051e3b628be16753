package pages

import (
	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"
)

// Chat renders the chat room shell. The message list, typing indicator and
// connection badge are driven by the realtime script; the server only ships
// the empty containers.
func Chat(username string) cmp.Node {
	return g.Div(
		g.Class("max-w-2xl mx-auto bg-white shadow rounded flex flex-col h-[70vh]"),
		g.Div(
			g.Class("flex items-center justify-between border-b px-4 py-3"),
			g.H1(g.Class("text-xl font-bold text-gray-800"), cmp.Text("Chat Room")),
			g.Span(
				g.ID("chat-status"),
				g.Class("text-sm text-gray-500"),
				cmp.Text("connecting"),
			),
		),
		g.Div(
			g.ID("chat-messages"),
			g.Class("flex-1 overflow-y-auto px-4 py-3 space-y-2"),
			g.DataAttr("username", username),
		),
		g.Div(
			g.ID("typing-indicator"),
			g.Class("px-4 text-sm text-gray-400 italic h-6"),
		),
		g.Form(
			g.ID("chat-form"),
			g.Class("flex gap-2 border-t px-4 py-3"),
			g.Input(
				g.ID("chat-input"),
				g.Type("text"),
				g.Name("message"),
				g.Placeholder("Type a message..."),
				g.AutoComplete("off"),
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
