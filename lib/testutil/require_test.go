// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"testing"
)

// recorder captures Fatalf without stopping the calling goroutine.
type recorder struct {
	failed  bool
	message string
}

func (r *recorder) Helper() {}

func (r *recorder) Fatalf(format string, args ...any) {
	r.failed = true
	r.message = fmt.Sprintf(format, args...)
	panic(r)
}

func capture(fn func(*recorder)) (result *recorder) {
	result = &recorder{}
	defer func() {
		if recovered := recover(); recovered != nil && recovered != result {
			panic(recovered)
		}
	}()
	fn(result)
	return result
}

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	if got := RequireReceive(t, ch, "value"); got != 7 {
		t.Errorf("RequireReceive = %d, want 7", got)
	}

	close(ch)
	result := capture(func(r *recorder) { RequireReceive(r, ch, "value") })
	if !result.failed || result.message != "channel closed while waiting for value" {
		t.Errorf("closed channel: failed=%v message=%q", result.failed, result.message)
	}
}

func TestRequireClosed(t *testing.T) {
	ch := make(chan struct{})
	close(ch)
	RequireClosed(t, ch, "close")
}
