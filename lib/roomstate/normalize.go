// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomstate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/parley/lib/ref"
	"github.com/bureau-foundation/parley/lib/userregistry"
	"github.com/bureau-foundation/parley/messaging"
)

// ErrMalformedEvent matches every *MalformedEventError via errors.Is.
var ErrMalformedEvent = errors.New("malformed event")

// MalformedEventError reports a raw event missing required fields.
type MalformedEventError struct {
	// EventID is the event's ID, empty when the ID itself is missing.
	EventID ref.EventID
	// Missing lists the absent wire fields (event_id, type, sender).
	Missing []string
}

func (e *MalformedEventError) Error() string {
	if e.EventID == "" {
		return fmt.Sprintf("malformed event: missing %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("malformed event %s: missing %s", e.EventID, strings.Join(e.Missing, ", "))
}

// Is makes errors.Is(err, ErrMalformedEvent) true.
func (e *MalformedEventError) Is(target error) bool {
	return target == ErrMalformedEvent
}

// Normalize converts a raw wire event into an Event, resolving its
// sender through users. Content is not validated against the type; a
// missing content object becomes an empty map so accessors never see
// nil.
func Normalize(raw messaging.Event, users *userregistry.Registry) (*Event, error) {
	var missing []string
	if raw.EventID == "" {
		missing = append(missing, "event_id")
	}
	if raw.Type == "" {
		missing = append(missing, "type")
	}
	if raw.Sender == "" {
		missing = append(missing, "sender")
	}
	if len(missing) > 0 {
		return nil, &MalformedEventError{EventID: raw.EventID, Missing: missing}
	}

	content := raw.Content
	if content == nil {
		content = map[string]any{}
	}

	return &Event{
		ID:             raw.EventID,
		Sender:         users.Resolve(raw.Sender),
		Type:           raw.Type,
		Content:        content,
		OriginServerTS: raw.OriginServerTS,
		Unsigned:       raw.Unsigned,
		StateKey:       raw.StateKey,
	}, nil
}
