// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bureau-foundation/parley/lib/ref"
	"github.com/bureau-foundation/parley/lib/roomstate"
	"github.com/bureau-foundation/parley/lib/sessionstore"
	"github.com/bureau-foundation/parley/lib/userregistry"
	"github.com/bureau-foundation/parley/messaging"
)

// Session is one authenticated connection and the room model built
// from it. The room set and user registry are owned by the session and
// live exactly as long as it does.
type Session struct {
	userID    ref.UserID
	server    Server
	transport *messaging.DirectSession
	rooms     *roomstate.RoomSet
	users     *userregistry.Registry
	projector *roomstate.Projector
	resolver  roomstate.NameResolver
	engine    *Engine

	mu       sync.RWMutex
	since    string
	lastSync time.Time
}

// UserID returns the session owner.
func (s *Session) UserID() ref.UserID { return s.userID }

// Server returns the homeserver the session talks to.
func (s *Session) Server() Server { return s.server }

// Rooms returns the session's room collection.
func (s *Session) Rooms() *roomstate.RoomSet { return s.rooms }

// Users returns the session's user registry.
func (s *Session) Users() *userregistry.Registry { return s.users }

// Engine returns the sync engine bound to this session.
func (s *Session) Engine() *Engine { return s.engine }

// Room returns the room with exactly this ID.
func (s *Session) Room(id ref.RoomID) (*roomstate.Room, bool) {
	return s.rooms.Get(id)
}

// Since returns the next_batch token of the last applied sync, or ""
// before the initial sync.
func (s *Session) Since() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.since
}

// LastSync returns when the last sync was applied. Zero before the
// initial sync.
func (s *Session) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

func (s *Session) advance(nextBatch string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.since = nextBatch
	s.lastSync = at
}

// TransactionID returns the last transaction ID used for a write.
func (s *Session) TransactionID() int64 {
	return s.transport.LastTransactionID()
}

// SendText sends a plain-text message to roomID, tagged with the next
// transaction ID. The message appears in the room's timeline when a
// later sync delivers it.
func (s *Session) SendText(ctx context.Context, roomID ref.RoomID, body string) (ref.EventID, error) {
	eventID, err := s.transport.SendMessage(ctx, roomID, messaging.NewTextMessage(body))
	if err != nil {
		return "", fmt.Errorf("syncengine: %w", err)
	}
	return eventID, nil
}

// Record returns the bootstrap record for this session. It contains
// the access token; write it only through sessionstore.
func (s *Session) Record() sessionstore.Record {
	return sessionstore.Record{
		UserID:        s.userID,
		Server:        s.server.String(),
		AccessToken:   s.transport.AccessToken(),
		TransactionID: s.transport.LastTransactionID(),
	}
}

// Snapshot captures the room model in raw wire form, each log
// oldest-first, together with the since-token it is current as of.
func (s *Session) Snapshot() *sessionstore.Snapshot {
	s.mu.RLock()
	snapshot := &sessionstore.Snapshot{
		UserID: s.userID,
		Since:  s.since,
	}
	if !s.lastSync.IsZero() {
		snapshot.SavedAt = s.lastSync.UnixMilli()
	}
	s.mu.RUnlock()

	for _, room := range s.rooms.List() {
		state, timeline, order := room.History()
		snapshot.Rooms = append(snapshot.Rooms, sessionstore.RoomSnapshot{
			ID:       room.ID(),
			State:    rawEvents(state),
			Timeline: rawEvents(timeline),
			Order:    order,
		})
	}
	return snapshot
}

func rawEvents(events []*roomstate.Event) []messaging.Event {
	if len(events) == 0 {
		return nil
	}
	raw := make([]messaging.Event, len(events))
	for index, event := range events {
		raw[index] = event.Raw()
	}
	return raw
}

// restore folds a snapshot into an empty session, replaying each
// room's events in the order they were first folded.
func (s *Session) restore(snapshot *sessionstore.Snapshot) error {
	var errs []error
	for _, room := range snapshot.Rooms {
		if _, err := s.projector.Replay(room.ID, room.State, room.Timeline, room.Order); err != nil {
			errs = append(errs, err)
		}
	}

	var at time.Time
	if snapshot.SavedAt > 0 {
		at = time.UnixMilli(snapshot.SavedAt)
	}
	s.advance(snapshot.Since, at)
	return errors.Join(errs...)
}

// ViewRoom returns the view of the room with this ID, refreshing its
// cached display name.
func (s *Session) ViewRoom(id ref.RoomID) (RoomView, bool) {
	room, ok := s.rooms.Get(id)
	if !ok {
		return RoomView{}, false
	}
	return ViewRoom(room, s.resolver), true
}

// ViewRooms returns a view of every room, sorted by room ID.
func (s *Session) ViewRooms() []RoomView {
	rooms := s.rooms.List()
	views := make([]RoomView, len(rooms))
	for index, room := range rooms {
		views[index] = ViewRoom(room, s.resolver)
	}
	return views
}

// Close releases the access token and idle connections. The room
// model stays readable.
func (s *Session) Close() error {
	s.transport.CloseIdleConnections()
	return s.transport.Close()
}
