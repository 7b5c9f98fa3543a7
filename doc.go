// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rill provides a purely functional, asynchronous effect runtime
// for Go: a description of a computation ([Effect]) that is built up by
// value, and only does anything once it is run.
//
// # Design Philosophy
//
// rill provides:
//   - A closed effect-node variant dispatched by a single type switch,
//     rather than an open handler hierarchy — adding a new node shape is
//     a coordinated change to the run loop, by design, not an extension
//     point for callers.
//   - An explicit, pooled bind-frame stack instead of a recursive
//     interpreter, so chains of any length evaluate without growing the
//     host call stack.
//   - Cooperative cancellation via an explicit [Connection] token,
//     carried alongside every run rather than threaded through context
//     values.
//
// # The Effect Type
//
// [Effect] describes a computation that yields either a failure of type E
// or a value of type A. [IO] is Effect specialized to the built-in error
// type, the common case.
//
// Construction:
//
//   - [Pure], [Unit]: lift an already-known value
//   - [RaiseError]: an effect that fails immediately
//   - [Delay]: capture a synchronous, possibly panicking thunk
//   - [Suspend]: capture a synchronous thunk that itself produces an
//     effect, used for trampolined recursion
//   - [Never]: an effect that never completes
//   - [Async]: an externally-driven effect, registered against a
//     [Connection] and a completion callback
//
// Sequencing and transformation:
//
//   - [Bind], [FlatMap]: sequence two effects
//   - [Map]: transform a result; consecutive maps fuse by composition
//   - [Then]: sequence, discarding the first result
//   - [HandleErrorWith]: overlay a recovery branch onto a failure
//   - [Attempt]: materialize success/failure into an [Either], never failing
//   - [LeftMap], [BiMap]: transform the error channel, or both channels
//
// # Either
//
// [Either][E, A] is the explicit two-case result type the error-materializing
// operations ([Attempt], [RunError], [UnsafeRunSync]) return:
//
//   - [Left], [Right]: constructors
//   - [Either.IsLeft], [Either.IsRight]: predicates
//   - [Either.GetLeft], [Either.GetRight]: accessors
//   - [MatchEither], [MapEither], [FlatMapEither], [MapLeftEither]
//   - [RunError]: block the calling goroutine for fa's [Either] outcome
//   - [FromEither]: lift an already-materialized Either back into an effect
//
// # Cancellation
//
// [Connection] is a per-run cancellation token carried through every
// Async registration: a cancel flag plus a LIFO stack of cancel hooks.
// [UncancelableConnection] is the no-op singleton every top-level run
// starts on unless told otherwise.
//
//   - [Uncancelable]: run a sub-effect immune to the caller's cancellation
//   - [OnCancelRaiseError]: convert an observed cancellation into a typed
//     failure instead of non-termination
//   - [CancelBoundary]: an explicit cooperative check-in point
//   - [Cancelable]: build an Async whose register also supplies the
//     cancel action to run if the connection signals first
//
// # Resource Safety
//
// Exception- and cancellation-safe resource management:
//
//   - [ExitCase], [Completed], [ErrorExit], [Canceled]: how a use phase ended
//   - [BracketCase]: acquire-use-release with the true exit case observed
//   - [Bracket]: BracketCase with an exit-case-blind release
//   - [GuaranteeCase]: BracketCase's degenerate unit-resource case
//
// # Concurrency
//
// [Fiber][E, A] is a handle to a concurrently executing effect:
//
//   - [Start]: launch fa on its own goroutine and connection, detached
//   - [Fiber.Join]: await the fiber's outcome as an effect
//   - [Fiber.Cancel]: signal the fiber's connection
//
// Racing:
//
//   - [Race]: first of two effects to complete wins; the loser is cancelled
//   - [Race3]: three-way Race, nested
//   - [RacePair]: like Race, but the loser keeps running and is returned
//     as a Fiber instead of being cancelled
//
// # Timers
//
// [Timer] is the clock collaborator the core consumes without
// implementing: [DefaultTimer] is the standard-library-backed
// implementation.
//
//   - [Timer.Shift]: yield control back to the executor
//   - [Timer.Sleep]: complete after a duration
//   - [Timeout]: race an effect against a Timer.Sleep-driven failure
//
// # Futures
//
// [Future][A] is a minimal complete-once boundary type for crossing into
// and out of the effect world from ordinary callback-based code:
//
//   - [NewFuture]: a Future and the function that completes it
//   - [FromFuture]: lift a Future into an effect
//   - [UnsafeToFuture]: run an effect to a detached fiber and expose its
//     outcome as a Future
//
// # Running an Effect
//
// Every construction above is inert until one of these drives it:
//
//   - [UnsafeRunSync]: block the calling goroutine for the outcome
//   - [UnsafeRunAsync]: run and deliver the outcome to a callback
//   - [UnsafeRunCancelable]: like UnsafeRunAsync, returning a cancel token
//   - [UnsafeRunTimed]: run synchronously, bounding each individual async
//     wait (not the total run) by a deadline
//
// # Logging
//
// [SinkLogger] is where failures that have nowhere else to go are
// reported: a losing race's late failure, a release-during-release
// fault, a callback invoked after its result was already delivered.
// [NewLogger] adapts an hclog.Logger; [SetSinkLogger] replaces the
// package-wide default.
//
// # Affine Continuations
//
// [Affine] wraps a continuation with one-shot enforcement, the primitive
// every at-most-once completion guard in this package (idemCallback, a
// run's restartCallback) is built from:
//
//   - [Once]: create an affine continuation
//   - [Affine.Resume]: invoke (panics on reuse)
//   - [Affine.TryResume]: non-panicking variant
//   - [Affine.Discard]: drop without invoking
package rill
