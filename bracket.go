// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill

import "sync/atomic"

// exitKind tags ExitCase's three shapes.
type exitKind int

const (
	exitCompleted exitKind = iota
	exitError
	exitCanceled
)

// ExitCase describes how a bracketed use phase ended: Completed, Error(e),
// or Canceled. It is delivered to a bracket's release action exactly once
// per successful acquire.
type ExitCase[E any] struct {
	kind exitKind
	err  E
}

// Completed is the exit case for a use phase that returned a value.
func Completed[E any]() ExitCase[E] { return ExitCase[E]{kind: exitCompleted} }

// ErrorExit is the exit case for a use phase that failed with e.
func ErrorExit[E any](e E) ExitCase[E] { return ExitCase[E]{kind: exitError, err: e} }

// Canceled is the exit case for a use phase terminated by a cancel signal.
func Canceled[E any]() ExitCase[E] { return ExitCase[E]{kind: exitCanceled} }

// IsCompleted reports whether the use phase returned a value.
func (c ExitCase[E]) IsCompleted() bool { return c.kind == exitCompleted }

// IsCanceled reports whether the use phase was cancelled.
func (c ExitCase[E]) IsCanceled() bool { return c.kind == exitCanceled }

// Error returns the failure and true if the exit case is Error.
func (c ExitCase[E]) Error() (E, bool) { return c.err, c.kind == exitError }

// BracketCase runs acquire, then use(resource), guaranteeing release runs
// exactly once on every path where acquire succeeded, with release
// observing the true exit case:
//
//  1. If acquire fails, the failure propagates without release ever
//     running (the resource never existed).
//  2. use runs on its own connection, chained to the caller's; a cancel
//     observed on the caller's connection forces release(Canceled) and
//     makes the overall bracket non-terminating, mirroring an upstream
//     cancel rather than surfacing it as a value.
//  3. On a normal return, release(Completed) or release(Error(e)) runs
//     before the value or error is delivered.
//  4. A release failure is reported to the sink logger; the original
//     outcome (value, error, or non-termination) is preserved.
func BracketCase[E, R, A any](
	acquire Effect[E, R],
	use func(R) Effect[E, A],
	release func(R, ExitCase[E]) Effect[E, struct{}],
) Effect[E, A] {
	return Async[E, A](func(conn *Connection, cb func(A, E, bool)) {
		idem := newIdemCallback[A, E](cb)
		startCancelable(acquire, conn, func(r R, e E, isErr bool) {
			if isErr {
				idem.invoke(zeroOf[A](), e, true)
				return
			}
			bracketUse(conn, r, use, release, idem)
		})
	})
}

func bracketUse[E, R, A any](
	conn *Connection,
	r R,
	use func(R) Effect[E, A],
	release func(R, ExitCase[E]) Effect[E, struct{}],
	idem *idemCallback[A, E],
) {
	useConn := NewConnection()
	var releaseOnce atomic.Bool

	runRelease := func(ec ExitCase[E], a A, e E, isErr, deliver bool) {
		if !releaseOnce.CompareAndSwap(false, true) {
			return
		}
		start(release(r, ec), func(_ struct{}, relErr E, relIsErr bool) {
			if relIsErr {
				reportFailure(relErr)
			}
			if deliver {
				idem.invoke(a, e, isErr)
			}
		})
	}

	conn.Push(func() {
		useConn.Cancel()
		runRelease(Canceled[E](), zeroOf[A](), zeroOf[E](), false, false)
	})

	startCancelable(use(r), useConn, func(a A, e E, isErr bool) {
		conn.Pop()
		if isErr {
			runRelease(ErrorExit(e), a, e, true, true)
			return
		}
		runRelease(Completed[E](), a, e, false, true)
	})
}

// Bracket is BracketCase with an exit-case-blind release, the common case
// where the cleanup action does not distinguish success from failure.
func Bracket[E, R, A any](
	acquire Effect[E, R],
	use func(R) Effect[E, A],
	release func(R) Effect[E, struct{}],
) Effect[E, A] {
	return BracketCase(acquire, use, func(r R, _ ExitCase[E]) Effect[E, struct{}] {
		return release(r)
	})
}

// GuaranteeCase runs finalizer(exitCase) unconditionally around fa,
// without a meaningful acquired resource — the degenerate case of
// BracketCase with acquire = unit.
func GuaranteeCase[E, A any](fa Effect[E, A], finalizer func(ExitCase[E]) Effect[E, struct{}]) Effect[E, A] {
	return BracketCase[E, struct{}, A](
		Unit[E](),
		func(struct{}) Effect[E, A] { return fa },
		func(_ struct{}, ec ExitCase[E]) Effect[E, struct{}] { return finalizer(ec) },
	)
}
