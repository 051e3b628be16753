// Package notify carries a record mutation from the write path to every
// attached client: the Notifier publishes change events, the Manager
// subscribes and hands them to the renderer and toast list.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nfrund/rollcall/internal/domain"
	"github.com/nfrund/rollcall/internal/realtime"
)

// DeletedSubject is the minimal stand-in published for a deletion, where the
// authoritative record may already be gone from storage.
type DeletedSubject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Notifier translates mutation outcomes into student-update events on the
// students channel. Publishing is strictly additive to the mutation: every
// error is logged and swallowed so a successful storage write can never turn
// into an error response because the broadcast failed.
type Notifier struct {
	channels *realtime.Channels
	logger   *slog.Logger
}

// NewNotifier creates a Notifier over the channel layer.
func NewNotifier(channels *realtime.Channels) *Notifier {
	return &Notifier{
		channels: channels,
		logger:   slog.Default().With("service", "notifier"),
	}
}

// Notify publishes exactly one change event for a completed mutation.
// subject is the record snapshot, or a DeletedSubject for deletions.
func (n *Notifier) Notify(ctx context.Context, action realtime.ChangeAction, subject any) {
	data, err := json.Marshal(subject)
	if err != nil {
		n.logger.Error("Failed to encode notification subject", "action", action, "error", err)
		return
	}

	event := realtime.ChangeEvent{
		Action:    action,
		Student:   data,
		Timestamp: domain.Now(),
	}

	if err := n.channels.Publish(ctx, realtime.ChannelStudents, realtime.EventStudentUpdate, event, ""); err != nil {
		n.logger.Error("Failed to publish change notification", "action", action, "error", err)
		return
	}
	n.logger.Debug("Published change notification", "action", action)
}

// NotifyStudent is a convenience wrapper for create/update events.
func (n *Notifier) NotifyStudent(ctx context.Context, action realtime.ChangeAction, student *domain.Student) {
	n.Notify(ctx, action, student)
}

// NotifyDeleted publishes the deletion event with the partial subject.
func (n *Notifier) NotifyDeleted(ctx context.Context, student *domain.Student) {
	n.Notify(ctx, realtime.ActionDeleted, DeletedSubject{
		ID:   student.ID,
		Name: student.DisplayName(),
	})
}
