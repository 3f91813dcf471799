// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package userregistry

import (
	"sync"

	"github.com/bureau-foundation/parley/lib/ref"
)

// User is a stable identity keyed by a protocol-assigned user ID. The
// per-room display name cache is filled as m.room.member events are
// folded; a user can have a different display name in every room.
type User struct {
	id ref.UserID

	mu           sync.RWMutex
	displayNames map[ref.RoomID]string
}

// ID returns the user's protocol-assigned ID.
func (u *User) ID() ref.UserID {
	return u.id
}

// DisplayNameIn returns the user's display name within roomID, if one
// has been recorded.
func (u *User) DisplayNameIn(roomID ref.RoomID) (string, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	name, ok := u.displayNames[roomID]
	return name, ok
}

// SetDisplayNameIn records the user's display name within roomID. An
// empty name removes the entry.
func (u *User) SetDisplayNameIn(roomID ref.RoomID, name string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if name == "" {
		delete(u.displayNames, roomID)
		return
	}
	u.displayNames[roomID] = name
}

// Name returns the best human-readable name for the user in roomID:
// the per-room display name when known, otherwise the ID's localpart.
func (u *User) Name(roomID ref.RoomID) string {
	if name, ok := u.DisplayNameIn(roomID); ok {
		return name
	}
	return u.id.Localpart()
}

// Registry maps user IDs to their unique *User. Safe for concurrent
// use: Resolve is an atomic get-or-insert.
type Registry struct {
	mu    sync.RWMutex
	users map[ref.UserID]*User
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{users: make(map[ref.UserID]*User)}
}

// Resolve returns the User for id, creating it on first use. IDs are
// opaque keys: empty or malformed IDs are accepted without validation.
func (r *Registry) Resolve(id ref.UserID) *User {
	r.mu.RLock()
	user, ok := r.users[id]
	r.mu.RUnlock()
	if ok {
		return user
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have inserted between the two locks.
	if user, ok := r.users[id]; ok {
		return user
	}
	user = &User{
		id:           id,
		displayNames: make(map[ref.RoomID]string),
	}
	r.users[id] = user
	return user
}

// Lookup returns the User for id without creating one.
func (r *Registry) Lookup(id ref.UserID) (*User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	return user, ok
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Prune removes every user for which keep returns false and reports
// how many were removed. Events that still hold a pruned *User keep it
// alive; a later Resolve of the same ID creates a new User, so callers
// must only prune users that no retained event references.
func (r *Registry) Prune(keep func(*User) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, user := range r.users {
		if !keep(user) {
			delete(r.users, id)
			removed++
		}
	}
	return removed
}
