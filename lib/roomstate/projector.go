// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomstate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/parley/lib/ref"
	"github.com/bureau-foundation/parley/lib/userregistry"
	"github.com/bureau-foundation/parley/messaging"
)

// Progress receives one Step per event the projector processes,
// malformed or not, so a counter started at the payload's event total
// always reaches it.
type Progress interface {
	Step()
}

// NoProgress discards progress reports.
type NoProgress struct{}

// Step implements Progress.
func (NoProgress) Step() {}

// Projector folds joined-room payloads into a RoomSet. The RoomSet and
// Registry are shared with the owning session; a Projector must only be
// driven from one goroutine at a time.
type Projector struct {
	rooms  *RoomSet
	users  *userregistry.Registry
	logger *slog.Logger
}

// NewProjector creates a Projector over rooms and users. A nil logger
// uses slog.Default().
func NewProjector(rooms *RoomSet, users *userregistry.Registry, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{rooms: rooms, users: users, logger: logger}
}

// Apply folds one room's payload: the room is created if unseen, then
// each state event in order becomes the new head of the state log, then
// each timeline event in order becomes the new head of the timeline
// log. Events are not deduplicated.
//
// A malformed event is skipped and folding continues with the next
// one. The returned error joins every *MalformedEventError from the
// payload and is nil when all events were folded. The room is returned
// in either case.
func (p *Projector) Apply(roomID ref.RoomID, payload messaging.JoinedRoom, progress Progress) (*Room, error) {
	if progress == nil {
		progress = NoProgress{}
	}

	room, created := p.rooms.GetOrCreate(roomID)
	if created {
		p.logger.Debug("tracking new room", "room_id", roomID)
	}

	var errs []error
	for _, raw := range payload.State.Events {
		if err := p.fold(room, raw, room.prependState); err != nil {
			errs = append(errs, err)
		}
		progress.Step()
	}
	for _, raw := range payload.Timeline.Events {
		if err := p.fold(room, raw, room.prependTimeline); err != nil {
			errs = append(errs, err)
		}
		progress.Step()
	}

	if len(errs) > 0 {
		return room, fmt.Errorf("room %s: %w", roomID, errors.Join(errs...))
	}
	return room, nil
}

// Replay rebuilds a room from logs previously captured with
// Room.History, folding every event in its recorded order so the
// per-room member name cache ends where it was captured. An empty order
// folds all state events and then all timeline events, as Apply does.
// An order whose counts do not match the logs is rejected before
// anything is folded.
func (p *Projector) Replay(roomID ref.RoomID, state, timeline []messaging.Event, order []bool) (*Room, error) {
	if len(order) == 0 {
		return p.Apply(roomID, messaging.JoinedRoom{
			State:    messaging.StateSection{Events: state},
			Timeline: messaging.TimelineSection{Events: timeline},
		}, nil)
	}
	timelineCount := 0
	for _, isTimeline := range order {
		if isTimeline {
			timelineCount++
		}
	}
	if timelineCount != len(timeline) || len(order)-timelineCount != len(state) {
		return nil, fmt.Errorf("room %s: fold order covers %d state and %d timeline events, logs hold %d and %d",
			roomID, len(order)-timelineCount, timelineCount, len(state), len(timeline))
	}

	room, _ := p.rooms.GetOrCreate(roomID)
	var errs []error
	for _, isTimeline := range order {
		var err error
		if isTimeline {
			err = p.fold(room, timeline[0], room.prependTimeline)
			timeline = timeline[1:]
		} else {
			err = p.fold(room, state[0], room.prependState)
			state = state[1:]
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return room, fmt.Errorf("room %s: %w", roomID, errors.Join(errs...))
	}
	return room, nil
}

func (p *Projector) fold(room *Room, raw messaging.Event, prepend func(*Event)) error {
	event, err := Normalize(raw, p.users)
	if err != nil {
		return err
	}
	prepend(event)
	p.recordMemberName(room.id, event)
	return nil
}

// recordMemberName keeps the target user's per-room display name cache
// in step with folded m.room.member events. Events are folded oldest
// first, so the last membership change delivered wins.
func (p *Projector) recordMemberName(roomID ref.RoomID, event *Event) {
	target, content, ok := Membership(event)
	if !ok {
		return
	}
	user := p.users.Resolve(target)
	switch content.Membership {
	case MembershipJoin, MembershipInvite:
		user.SetDisplayNameIn(roomID, content.DisplayName)
	default:
		user.SetDisplayNameIn(roomID, "")
	}
}
