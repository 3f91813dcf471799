// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the time operations of the sync loop so
// tests can drive it deterministically.
//
// Production code injects Real(). Tests inject Fake(start) and move
// time with Advance; WaitForTimers blocks until the code under test
// has registered a wait, removing the race between registration and
// advancement:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go engine.Run(ctx, "")
//	fake.WaitForTimers(1)
//	fake.Advance(engine.Interval)
package clock
