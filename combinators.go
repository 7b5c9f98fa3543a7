// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill

import (
	"time"

	"code.hybscloud.com/atomix"
)

// Option is the Some/None result unsafeRunTimed needs: it bounds individual
// async waits, not total runtime, so a timeout must be distinguishable from
// every other outcome, including a successfully observed failure.
type Option[A any] struct {
	value A
	ok    bool
}

// Some wraps a present value.
func Some[A any](a A) Option[A] { return Option[A]{value: a, ok: true} }

// None is the absent value.
func None[A any]() Option[A] { return Option[A]{} }

// Get returns the value and true, or zero and false.
func (o Option[A]) Get() (A, bool) { return o.value, o.ok }

// UnsafeRunAsync begins interpreting fa on an uncancelable connection and
// delivers its outcome to cb exactly once, without exposing a cancel
// token.
func UnsafeRunAsync[E, A any](fa Effect[E, A], cb func(Either[E, A])) {
	start(fa, func(a A, e E, isErr bool) {
		if isErr {
			cb(Left[E, A](e))
			return
		}
		cb(Right[E, A](a))
	})
}

// UnsafeRunCancelable begins interpreting fa on a fresh cancelable
// connection, delivers its outcome to cb exactly once, and returns a
// cancel token that signals that connection. The token is safe to call
// more than once: cancel is idempotent.
func UnsafeRunCancelable[E, A any](fa Effect[E, A], cb func(Either[E, A])) func() {
	conn := NewConnection()
	startCancelable(fa, conn, func(a A, e E, isErr bool) {
		if isErr {
			cb(Left[E, A](e))
			return
		}
		cb(Right[E, A](a))
	})
	return conn.Cancel
}

// UnsafeRunSync blocks the calling goroutine until fa completes and
// returns its outcome. Go always supports blocking on a channel, so there
// is no need for an escape hatch for platforms that can't block.
func UnsafeRunSync[E, A any](fa Effect[E, A]) Either[E, A] {
	return RunError(fa)
}

// UnsafeRunTimed drives fa synchronously, bounding each individual async
// wait — not the total run — by limit: every time the interpreter
// suspends on an Async node, it waits up to limit with iox.Backoff before
// giving up. Returns None the first time a single wait exceeds limit;
// otherwise Some(outcome) once the run completes. A caller wanting a
// total-run timeout should use Race against a Timer.Sleep-driven effect
// (see Timeout) instead of chaining UnsafeRunTimed calls.
func UnsafeRunTimed[E, A any](fa Effect[E, A], limit time.Duration) Option[Either[E, A]] {
	sr := step[E, A](fa)
	for !sr.Done {
		var resultValue Erased
		var resultErr E
		var resultIsErr bool
		var gotResult atomix.Uint32

		sr.Async.Register(sr.st.conn, func(v Erased, e E, isErr bool) {
			resultValue, resultErr, resultIsErr = v, e, isErr
			gotResult.Store(1)
		})

		deadline := time.Now().Add(limit)
		if !boundedWait(deadline, func() bool { return gotResult.Load() != 0 }) {
			sr.st.conn.Cancel()
			return None[Either[E, A]]()
		}
		sr = resumeWith[E, A](sr, resultValue, resultErr, resultIsErr)
	}
	if sr.IsErr {
		return Some(Left[E, A](sr.Err))
	}
	return Some(Right[E, A](sr.Value))
}

// Timeout races fa against a timer-driven sleep that raises timeoutErr,
// unwrapping the resulting same-typed Either back into a plain A. Built
// entirely from Race and an injected Timer: a caller wanting a total-run
// timeout should reach for this rather than chaining UnsafeRunTimed calls.
func Timeout[A any](fa IO[A], d time.Duration, timer Timer, timeoutErr error) IO[A] {
	timedOut := Bind(timer.Sleep(d), func(struct{}) IO[A] {
		return RaiseError[error, A](timeoutErr)
	})
	return Map(Race(fa, timedOut), func(e Either[A, A]) A {
		return MatchEither(e, func(a A) A { return a }, func(a A) A { return a })
	})
}
