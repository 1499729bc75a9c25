package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLoggedIn        = "session.logged_in"
	EventTypeLoggedOut       = "session.logged_out"
	EventTypeEmployeeCreated = "employee.created"
	EventTypeEmployeeUpdated = "employee.updated"
	EventTypeEmployeeDeleted = "employee.deleted"
)

func newBaseEvent(eventType, actor string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Actor:     actor,
		Data:      data,
	}
}

type SessionEvent struct {
	BaseEvent
	Username string `json:"username"`
	Remember bool   `json:"remember"`
}

func NewLoggedInEvent(username string, remember bool) *SessionEvent {
	return &SessionEvent{
		BaseEvent: newBaseEvent(EventTypeLoggedIn, username, map[string]interface{}{
			"username": username,
			"remember": remember,
		}),
		Username: username,
		Remember: remember,
	}
}

func NewLoggedOutEvent(username string) *SessionEvent {
	return &SessionEvent{
		BaseEvent: newBaseEvent(EventTypeLoggedOut, username, map[string]interface{}{
			"username": username,
		}),
		Username: username,
	}
}

type EmployeeEvent struct {
	BaseEvent
	EmployeeID   string `json:"employee_id"`
	EmployeeCode string `json:"employee_code"`
	Name         string `json:"name"`
}

func newEmployeeEvent(eventType, actor, id, code, name string) *EmployeeEvent {
	return &EmployeeEvent{
		BaseEvent: newBaseEvent(eventType, actor, map[string]interface{}{
			"employee_id":   id,
			"employee_code": code,
			"name":          name,
		}),
		EmployeeID:   id,
		EmployeeCode: code,
		Name:         name,
	}
}

func NewEmployeeCreatedEvent(actor, id, code, name string) *EmployeeEvent {
	return newEmployeeEvent(EventTypeEmployeeCreated, actor, id, code, name)
}

func NewEmployeeUpdatedEvent(actor, id, code, name string) *EmployeeEvent {
	return newEmployeeEvent(EventTypeEmployeeUpdated, actor, id, code, name)
}

func NewEmployeeDeletedEvent(actor, id, code, name string) *EmployeeEvent {
	return newEmployeeEvent(EventTypeEmployeeDeleted, actor, id, code, name)
}

// AuditLogger returns a handler that writes every event to logger.
func AuditLogger(logger *slog.Logger) Handler {
	return func(_ context.Context, event Event) error {
		attrs := []any{
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
		}
		if base, ok := event.(interface{ ActorName() string }); ok && base.ActorName() != "" {
			attrs = append(attrs, "actor", base.ActorName())
		}
		if data, ok := event.Payload().(map[string]interface{}); ok {
			for k, v := range data {
				attrs = append(attrs, k, v)
			}
		}
		logger.Info("audit", attrs...)
		return nil
	}
}
