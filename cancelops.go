// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill

import "sync"

// Uncancelable runs fa with an uncancelable connection substituted for
// the caller's connection, restoring the substitution on completion.
// Cancel signals observed on the outer connection during fa's run do not
// terminate fa, because fa's own connection never sees them.
func Uncancelable[E, A any](fa Effect[E, A]) Effect[E, A] {
	return Async[E, A](func(_ *Connection, cb func(A, E, bool)) {
		startCancelable(fa, UncancelableConnection(), cb)
	})
}

// OnCancelRaiseError runs fa on a fresh cancelable connection chained to
// the caller's connection: if the caller's connection is cancelled while
// fa is active, fa is terminated with error e instead of becoming
// non-terminating.
func OnCancelRaiseError[E, A any](fa Effect[E, A], e E) Effect[E, A] {
	return Async[E, A](func(conn *Connection, cb func(A, E, bool)) {
		inner := NewConnection()
		idem := newIdemCallback[A, E](cb)
		conn.Push(func() {
			inner.Cancel()
			idem.invoke(zeroOf[A](), e, true)
		})
		startCancelable(fa, inner, func(a A, fe E, isErr bool) {
			conn.Pop()
			idem.invoke(a, fe, isErr)
		})
	})
}

func zeroOf[A any]() A {
	var z A
	return z
}

// noFault is the errMap passed to Delay/Suspend calls that wrap a host
// action known not to panic (launching a goroutine, signalling a
// connection) — Delay/Suspend require an errMap from every caller per the
// package's documented rule that there is no default conversion from a
// host fault to an arbitrary E; this one simply documents "should never
// run" by panicking if it ever does.
func noFault[E any](v any) E {
	panic(v)
}

// CancelBoundary completes immediately with unit iff the current
// connection is not yet cancelled; otherwise it never completes,
// blocking the bind chain so the connection's cancel semantics — the
// cancelled computation becomes non-terminating — can take effect.
func CancelBoundary[E any]() Effect[E, struct{}] {
	return Async[E, struct{}](func(conn *Connection, cb func(struct{}, E, bool)) {
		if conn.IsCanceled() {
			return
		}
		cb(struct{}{}, zeroOf[E](), false)
	})
}

// Cancelable builds an externally-driven effect identical to Async, but
// register returns a cancel effect to run if the connection is cancelled
// before completion.
//
// register is handed a placeholder ("forward cancelable") that is pushed
// onto the connection immediately, before register returns — so a cancel
// arriving synchronously during registration still observes a hook — and
// is populated with the real cancel effect only once register has
// returned. If register itself panics, the failure is reported to the
// sink logger and the cancel hook becomes a no-op.
func Cancelable[E, A any](register func(conn *Connection, cb func(A, E, bool)) Effect[E, struct{}]) Effect[E, A] {
	return Async[E, A](func(conn *Connection, cb func(A, E, bool)) {
		idem := newIdemCallback[A, E](cb)
		placeholder := &forwardCancel[E]{}
		conn.Push(placeholder.run)

		cancelFx, rec, panicked := safeCall(func() Erased {
			return register(conn, idem.invoke)
		})
		if panicked {
			reportFailure(rec)
			placeholder.set(Pure[E, struct{}](struct{}{}))
			return
		}
		placeholder.set(cancelFx.(Effect[E, struct{}]))
	})
}

// forwardCancel is the placeholder cancel hook Cancelable pushes before
// register has told it what the real cancel effect is.
// A cancel that arrives before set is remembered and runs the effect as
// soon as set supplies it.
type forwardCancel[E any] struct {
	mu       sync.Mutex
	fx       Effect[E, struct{}]
	ok       bool
	canceled bool
}

func (f *forwardCancel[E]) set(fx Effect[E, struct{}]) {
	f.mu.Lock()
	f.fx, f.ok = fx, true
	runNow := f.canceled
	f.mu.Unlock()
	if runNow {
		start(fx, func(struct{}, E, bool) {})
	}
}

func (f *forwardCancel[E]) run() {
	f.mu.Lock()
	if !f.ok {
		f.canceled = true
		f.mu.Unlock()
		return
	}
	fx := f.fx
	f.mu.Unlock()
	start(fx, func(struct{}, E, bool) {})
}
