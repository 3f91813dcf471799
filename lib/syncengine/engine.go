// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/parley/lib/clock"
	"github.com/bureau-foundation/parley/lib/ref"
	"github.com/bureau-foundation/parley/messaging"
)

// State is the position of an Engine in its request cycle.
type State int32

const (
	StateIdle State = iota
	StateAwaitingResponse
	StateApplying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting-response"
	case StateApplying:
		return "applying"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// EngineConfig configures the sync engine of each session.
type EngineConfig struct {
	// Timeout is the long-poll wait in milliseconds sent with
	// incremental syncs. The initial full-state sync sends none and
	// returns immediately.
	Timeout int

	// Interval is the pause Run takes between consecutive polls.
	Interval time.Duration

	// Filter is a filter ID or inline JSON filter.
	Filter string

	// Clock drives Run's interval and stamps applied syncs. Default:
	// clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Progress receives per-event progress of every sync. Optional.
	Progress Progress

	// OnSync is called by Run after each applied sync, from the Run
	// goroutine, before the next request is issued. Optional.
	OnSync func(ctx context.Context, session *Session)
}

// Engine drives the /sync cycle of one Session.
type Engine struct {
	session  *Session
	config   EngineConfig
	clock    clock.Clock
	logger   *slog.Logger
	progress Progress

	state atomic.Int32
}

func newEngine(session *Session, config EngineConfig) *Engine {
	engine := &Engine{
		session:  session,
		config:   config,
		clock:    config.Clock,
		logger:   config.Logger,
		progress: config.Progress,
	}
	if engine.clock == nil {
		engine.clock = clock.Real()
	}
	if engine.logger == nil {
		engine.logger = slog.Default()
	}
	if engine.progress == nil {
		engine.progress = noProgress{}
	}
	return engine
}

// State returns the engine's current state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Sync performs one request/response cycle. An empty since requests
// the full room state; otherwise only changes after since are
// requested. The response's joined rooms are folded into the session
// and the session's since-token advances to the returned next_batch.
//
// Transport failures return an error and leave the session unchanged.
// When the response folds with skipped events, the next_batch is
// returned together with an *ApplyError. Cancelling ctx abandons the
// outstanding request.
func (e *Engine) Sync(ctx context.Context, since string) (string, error) {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateAwaitingResponse)) {
		return "", ErrSyncInProgress
	}
	defer e.state.Store(int32(StateIdle))

	options := messaging.SyncOptions{
		Since:     since,
		FullState: since == "",
		Filter:    e.config.Filter,
	}
	if since != "" {
		options.Timeout = e.config.Timeout
		options.SetTimeout = true
	}

	response, err := e.session.transport.Sync(ctx, options)
	if err != nil {
		return "", fmt.Errorf("syncengine: %w", err)
	}

	e.state.Store(int32(StateApplying))
	failed := e.apply(response)
	e.session.advance(response.NextBatch, e.clock.Now())

	if len(failed) > 0 {
		return response.NextBatch, &ApplyError{NextBatch: response.NextBatch, Rooms: failed}
	}
	return response.NextBatch, nil
}

func (e *Engine) apply(response *messaging.SyncResponse) map[ref.RoomID]error {
	joined := response.Rooms.Join
	roomIDs := make([]ref.RoomID, 0, len(joined))
	total := 0
	for roomID, payload := range joined {
		roomIDs = append(roomIDs, roomID)
		total += payload.EventCount()
	}
	sort.Slice(roomIDs, func(i, j int) bool { return roomIDs[i] < roomIDs[j] })

	e.progress.Begin(total)
	var failed map[ref.RoomID]error
	for _, roomID := range roomIDs {
		if _, err := e.session.projector.Apply(roomID, joined[roomID], e.progress); err != nil {
			e.logger.Warn("skipped malformed events",
				"room_id", roomID,
				"error", err,
			)
			if failed == nil {
				failed = make(map[ref.RoomID]error)
			}
			failed[roomID] = err
		}
	}
	e.progress.Done()

	e.logger.Debug("sync applied",
		"next_batch", response.NextBatch,
		"rooms", len(roomIDs),
		"events", total,
	)
	return failed
}

// Run polls continuously, starting from since (empty for a full-state
// sync), feeding each next_batch into the following request and
// waiting Interval between polls. It returns nil when ctx is
// cancelled and the error of the first failed request otherwise.
// Syncs that fold with skipped events do not stop the loop.
func (e *Engine) Run(ctx context.Context, since string) error {
	for {
		nextBatch, err := e.Sync(ctx, since)
		if err != nil {
			var applyErr *ApplyError
			switch {
			case errors.As(err, &applyErr):
			case ctx.Err() != nil:
				return nil
			default:
				return err
			}
		}
		since = nextBatch

		if e.config.OnSync != nil {
			e.config.OnSync(ctx, e.session)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-e.clock.After(e.config.Interval):
		}
	}
}
