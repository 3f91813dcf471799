// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncengine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bureau-foundation/parley/lib/ref"
)

var (
	// ErrSyncInProgress is returned by Engine.Sync while another
	// request from the same engine is outstanding.
	ErrSyncInProgress = errors.New("syncengine: sync already in progress")

	// ErrCredentialsRequired is returned when connecting without a
	// user ID, server, or access token.
	ErrCredentialsRequired = errors.New("syncengine: credentials required")

	// ErrUserMismatch is returned by Connect when the server reports
	// that the access token belongs to a different user.
	ErrUserMismatch = errors.New("syncengine: access token belongs to another user")

	// ErrNoActiveSession is returned by Manager operations that need
	// an active session before one is connected.
	ErrNoActiveSession = errors.New("syncengine: no active session")
)

// ApplyError reports rooms whose payload contained events that could
// not be folded. Every other event of the response was applied and the
// since-token advanced.
type ApplyError struct {
	NextBatch string
	Rooms     map[ref.RoomID]error
}

func (e *ApplyError) Error() string {
	ids := make([]ref.RoomID, 0, len(e.Rooms))
	for id := range e.Rooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for index, id := range ids {
		parts[index] = e.Rooms[id].Error()
	}
	return fmt.Sprintf("syncengine: %d room(s) folded with errors: %s", len(ids), strings.Join(parts, "; "))
}

// Unwrap returns the per-room errors so errors.Is and errors.As see
// through to roomstate.ErrMalformedEvent.
func (e *ApplyError) Unwrap() []error {
	errs := make([]error, 0, len(e.Rooms))
	for _, err := range e.Rooms {
		errs = append(errs, err)
	}
	return errs
}
