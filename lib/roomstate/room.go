// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomstate

import (
	"slices"
	"sort"
	"sync"

	"github.com/bureau-foundation/parley/lib/ref"
)

// Room is one room's folded state and timeline. Both logs are exposed
// most-recent-first and only ever grow at the head. Safe for concurrent
// readers while a single projector folds into it.
type Room struct {
	id ref.RoomID

	mu sync.RWMutex
	// state and timeline are stored oldest-first; index len-1 is the
	// head of the log.
	state    []*Event
	timeline []*Event
	// order records every fold oldest-first; true marks a timeline
	// event.
	order       []bool
	displayName string
}

func newRoom(id ref.RoomID) *Room {
	return &Room{id: id}
}

// ID returns the room ID.
func (r *Room) ID() ref.RoomID {
	return r.id
}

// StateEvents returns a copy of the state log, most recent first.
func (r *Room) StateEvents() []*Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return newestFirst(r.state)
}

// TimelineEvents returns a copy of the timeline log, most recent first.
func (r *Room) TimelineEvents() []*Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return newestFirst(r.timeline)
}

// ScanState calls visit for each state event from the head of the log
// to the tail, stopping early when visit returns false. The room's read
// lock is held for the duration; visit must not fold into the room.
func (r *Room) ScanState(visit func(*Event) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for index := len(r.state) - 1; index >= 0; index-- {
		if !visit(r.state[index]) {
			return
		}
	}
}

// History returns both logs oldest-first together with the order the
// events were folded in: one entry per event, true for a timeline
// event. The three slices are copies taken under one lock.
func (r *Room) History() (state, timeline []*Event, order []bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.state), slices.Clone(r.timeline), slices.Clone(r.order)
}

// StateLen returns the length of the state log.
func (r *Room) StateLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.state)
}

// TimelineLen returns the length of the timeline log.
func (r *Room) TimelineLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.timeline)
}

// DisplayName returns the cached display name, or "" if it has never
// been computed. The cache is not invalidated by folding; call
// RefreshDisplayName when a current name is needed.
func (r *Room) DisplayName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.displayName
}

// RefreshDisplayName recomputes the display name with resolver, stores
// it in the cache, and returns it.
func (r *Room) RefreshDisplayName(resolver NameResolver) string {
	name := resolver.Resolve(r)
	r.mu.Lock()
	r.displayName = name
	r.mu.Unlock()
	return name
}

// prependState makes event the new head of the state log.
func (r *Room) prependState(event *Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = append(r.state, event)
	r.order = append(r.order, false)
}

// prependTimeline makes event the new head of the timeline log.
func (r *Room) prependTimeline(event *Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeline = append(r.timeline, event)
	r.order = append(r.order, true)
}

func newestFirst(log []*Event) []*Event {
	result := make([]*Event, len(log))
	for index, event := range log {
		result[len(log)-1-index] = event
	}
	return result
}

// RoomSet is a session's room collection, keyed by exact room ID.
type RoomSet struct {
	mu    sync.RWMutex
	rooms map[ref.RoomID]*Room
}

// NewRoomSet creates an empty room collection.
func NewRoomSet() *RoomSet {
	return &RoomSet{rooms: make(map[ref.RoomID]*Room)}
}

// Get returns the room with exactly this ID.
func (s *RoomSet) Get(id ref.RoomID) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	return room, ok
}

// GetOrCreate returns the room with this ID, creating an empty one if
// the ID has not been seen. created reports whether a room was added.
func (s *RoomSet) GetOrCreate(id ref.RoomID) (room *Room, created bool) {
	if room, ok := s.Get(id); ok {
		return room, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[id]; ok {
		return room, false
	}
	room = newRoom(id)
	s.rooms[id] = room
	return room, true
}

// Len returns the number of rooms.
func (s *RoomSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// List returns all rooms sorted by ID.
func (s *RoomSet) List() []*Room {
	s.mu.RLock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	s.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].id < rooms[j].id })
	return rooms
}
