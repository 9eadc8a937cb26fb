// Package events carries user lifecycle notifications from the core to an
// external stream and back into workers.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// TopicUserEvents is the stream every lifecycle event is published to.
const TopicUserEvents = "user-events"

type Kind string

const (
	KindUserCreated Kind = "USER_CREATED"
	KindUserDeleted Kind = "USER_DELETED"
)

// UserEvent is the wire payload: the event kind and the subject's email.
type UserEvent struct {
	Kind  Kind   `json:"kind"`
	Email string `json:"email"`
}

func UserCreated(email string) UserEvent {
	return UserEvent{Kind: KindUserCreated, Email: email}
}

func UserDeleted(email string) UserEvent {
	return UserEvent{Kind: KindUserDeleted, Email: email}
}

var ErrInvalidEvent = errors.New("invalid user event")

func (e UserEvent) Validate() error {
	switch e.Kind {
	case KindUserCreated, KindUserDeleted:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	if e.Email == "" {
		return fmt.Errorf("%w: missing email", ErrInvalidEvent)
	}
	return nil
}

// Decode parses and validates a message body.
func Decode(b []byte) (UserEvent, error) {
	var evt UserEvent
	if err := json.Unmarshal(b, &evt); err != nil {
		return UserEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := evt.Validate(); err != nil {
		return UserEvent{}, err
	}
	return evt, nil
}
