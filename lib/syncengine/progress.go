// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncengine

import (
	"log/slog"
	"sync"
)

// Progress receives the event count of each sync as it is folded:
// Begin with the total number of joined-room events in the response,
// one Step per event, then Done. Step is also called for events that
// turn out to be malformed, so the count always reaches the total.
type Progress interface {
	Begin(total int)
	Step()
	Done()
}

type noProgress struct{}

func (noProgress) Begin(int) {}
func (noProgress) Step()     {}
func (noProgress) Done()     {}

// LogProgress logs the start and end of each sync at debug level, and
// a line every Every events when Every is positive.
type LogProgress struct {
	Logger *slog.Logger
	Every  int

	total   int
	current int
}

// Begin implements Progress.
func (p *LogProgress) Begin(total int) {
	p.total = total
	p.current = 0
	p.logger().Debug("folding sync response", "events", total)
}

// Step implements Progress.
func (p *LogProgress) Step() {
	p.current++
	if p.Every > 0 && p.current%p.Every == 0 {
		p.logger().Info("folding sync response", "done", p.current, "total", p.total)
	}
}

// Done implements Progress.
func (p *LogProgress) Done() {
	p.logger().Debug("sync response folded", "events", p.current)
}

func (p *LogProgress) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// CountingProgress records progress for inspection from another
// goroutine.
type CountingProgress struct {
	mu      sync.Mutex
	total   int
	current int
	syncs   int
}

// Begin implements Progress.
func (p *CountingProgress) Begin(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.current = 0
}

// Step implements Progress.
func (p *CountingProgress) Step() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
}

// Done implements Progress.
func (p *CountingProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncs++
}

// Counts returns the position within the latest sync, its total, and
// the number of syncs completed.
func (p *CountingProgress) Counts() (current, total, syncs int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.total, p.syncs
}
