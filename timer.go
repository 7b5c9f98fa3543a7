// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill

import (
	"time"

	"code.hybscloud.com/iox"
)

// Timer is the time-based collaborator the core consumes without
// implementing: shift yields control back to the executor, sleep
// completes after duration. Both are external interfaces the core stays
// agnostic of — any clock or scheduler can back them.
type Timer interface {
	Shift() Effect[error, struct{}]
	Sleep(d time.Duration) Effect[error, struct{}]
}

// stdTimer is the default Timer, backed by time.AfterFunc.
type stdTimer struct{}

// DefaultTimer is the standard-library-backed Timer used when no other
// Timer is wired in. time.AfterFunc needs no third-party scheduler.
var DefaultTimer Timer = stdTimer{}

func (stdTimer) Shift() Effect[error, struct{}] {
	return Async[error, struct{}](func(_ *Connection, cb func(struct{}, error, bool)) {
		go cb(struct{}{}, nil, false)
	})
}

func (stdTimer) Sleep(d time.Duration) Effect[error, struct{}] {
	return Cancelable[error, struct{}](func(conn *Connection, cb func(struct{}, error, bool)) Effect[error, struct{}] {
		timer := time.AfterFunc(d, func() { cb(struct{}{}, nil, false) })
		return Delay[error, struct{}](func() struct{} {
			timer.Stop()
			return struct{}{}
		}, noFault[error])
	})
}

// boundedWait waits for done to return true, backing off with
// iox.Backoff between checks, up to deadline. Returns false if deadline
// passes first. This is unsafeRunTimed's "bound an individual async
// wait" primitive: the same spin/yield/sleep escalation the pack's sess
// package uses to wait past an iox.ErrWouldBlock boundary, applied here
// to an "async hasn't resumed yet" boundary instead.
func boundedWait(deadline time.Time, done func() bool) bool {
	var bo iox.Backoff
	for !done() {
		if !time.Now().Before(deadline) {
			return false
		}
		bo.Wait()
	}
	return true
}
