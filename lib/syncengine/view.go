// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncengine

import (
	"github.com/bureau-foundation/parley/lib/ref"
	"github.com/bureau-foundation/parley/lib/roomstate"
)

// RoomView is what a display surface needs to show a room: a freshly
// resolved name and copies of both logs, most recent first.
type RoomView struct {
	ID             ref.RoomID
	DisplayName    string
	StateEvents    []*roomstate.Event
	TimelineEvents []*roomstate.Event
}

// ViewRoom resolves room's display name with resolver, stores it in
// the room's cache, and returns the view.
func ViewRoom(room *roomstate.Room, resolver roomstate.NameResolver) RoomView {
	return RoomView{
		ID:             room.ID(),
		DisplayName:    room.RefreshDisplayName(resolver),
		StateEvents:    room.StateEvents(),
		TimelineEvents: room.TimelineEvents(),
	}
}
