package realtime

import "encoding/json"

// Fixed channel names. Channels are broadcast domains: every attached client
// receives every published event (minus its own, where echo suppression
// applies).
const (
	// ChannelStudents carries record change events published by the server.
	ChannelStudents = "students"
	// ChannelChatRoom carries chat messages and typing indicators exchanged
	// directly between clients. Open subscribe/publish.
	ChannelChatRoom = "chat-room"
)

// Event names per channel.
const (
	EventStudentUpdate = "student-update"
	EventMessage       = "message"
	EventTyping        = "typing"
)

// Envelope is the wire format for every event crossing the websocket and the
// message bus. Event acts as the discriminator for Data; handlers bind per
// event name and decode Data into the matching payload type.
type Envelope struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	// ClientID identifies the originating client for client-published events.
	// Server-originated events (record changes) leave it empty. The bridge
	// always overwrites it with the authenticated client identifier, so a
	// client cannot spoof another sender.
	ClientID string          `json:"clientId,omitempty"`
	Data     json.RawMessage `json:"data"`
}

// ChangeAction enumerates the record mutations that produce change events.
type ChangeAction string

const (
	ActionCreated ChangeAction = "created"
	ActionUpdated ChangeAction = "updated"
	ActionDeleted ChangeAction = "deleted"
)

// ChangeEvent is the payload of a student-update event. Student is a
// snapshot taken at mutation time; for deletions it may be a partial
// stand-in carrying only the identifier and name fields, since the
// authoritative record is already gone.
type ChangeEvent struct {
	Action    ChangeAction    `json:"action"`
	Student   json.RawMessage `json:"student"`
	Timestamp string          `json:"timestamp"`
}

// ChatMessage is the payload of a message event on the chat-room channel.
type ChatMessage struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// TypingState is the payload of a typing event. Ephemeral: each event from a
// sender supersedes the previous one.
type TypingState struct {
	Sender   string `json:"sender"`
	IsTyping bool   `json:"isTyping"`
}
