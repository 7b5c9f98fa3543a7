// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill

import "sync"

// outcomeSlot is a one-shot completion slot: the first complete wins,
// and listen either observes an already-stored outcome synchronously or
// is queued to be called exactly once when complete eventually runs.
// Grounded on the one-shot exit-channel-plus-sync.Once shape of tedsuo/
// ifrit's process.Wait, generalized from a single blocking waiter to any
// number of non-blocking listeners, since join is itself an effect that
// may be raced or joined more than once.
type outcomeSlot[E, A any] struct {
	mu      sync.Mutex
	done    bool
	value   A
	err     E
	isErr   bool
	waiters []func(A, E, bool)
}

func (s *outcomeSlot[E, A]) complete(a A, e E, isErr bool) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done, s.value, s.err, s.isErr = true, a, e, isErr
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()
	for _, w := range waiters {
		w(a, e, isErr)
	}
}

func (s *outcomeSlot[E, A]) listen(cb func(A, E, bool)) {
	s.mu.Lock()
	if s.done {
		a, e, isErr := s.value, s.err, s.isErr
		s.mu.Unlock()
		cb(a, e, isErr)
		return
	}
	s.waiters = append(s.waiters, cb)
	s.mu.Unlock()
}

// Fiber is a handle to a concurrently executing effect: join awaits its
// outcome, cancel signals its connection. Mirrors tedsuo/ifrit's
// Process{Wait, Signal} pair, with Wait's single blocking channel replaced
// by outcomeSlot so join composes as an ordinary effect.
type Fiber[E, A any] struct {
	conn *Connection
	slot *outcomeSlot[E, A]
}

// spawn launches fa on a fresh cancelable connection and returns the
// Fiber immediately; the run itself proceeds on its own goroutine.
func spawn[E, A any](fa Effect[E, A]) Fiber[E, A] {
	conn := NewConnection()
	slot := &outcomeSlot[E, A]{}
	go startCancelable(fa, conn, slot.complete)
	return Fiber[E, A]{conn: conn, slot: slot}
}

// Start begins a detached run of fa on a fresh cancelable connection and
// yields a Fiber. Launching the goroutine is itself a synchronous host
// action, so Start introduces no asynchronous boundary of its own —
// callers needing one must sequence a shift before Start.
func Start[E, A any](fa Effect[E, A]) Effect[E, Fiber[E, A]] {
	return Delay[E, Fiber[E, A]](func() Fiber[E, A] {
		return spawn(fa)
	}, noFault[E])
}

// Join is an Async that registers interest on the fiber's completion
// slot: if already completed, it delivers synchronously; otherwise it
// installs a listener that fires when the detached run finishes.
func (f Fiber[E, A]) Join() Effect[E, A] {
	return Async[E, A](func(_ *Connection, cb func(A, E, bool)) {
		f.slot.listen(cb)
	})
}

// Cancel signals the fiber's connection.
func (f Fiber[E, A]) Cancel() Effect[E, struct{}] {
	return Delay[E, struct{}](func() struct{} {
		f.conn.Cancel()
		return struct{}{}
	}, noFault[E])
}
