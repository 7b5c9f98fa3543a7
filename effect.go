// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill

// IO is Effect specialized to Go's built-in error as the failure channel —
// the common case where a computation wants error rather than some other
// typed failure.
type IO[A any] = Effect[error, A]

// Erased represents a type-erased value flowing through the node chain.
// Node types use Erased parameters to carry heterogeneous value types
// through a homogeneous evaluation pipeline; concrete types are recovered
// via type assertions at node boundaries.
type Erased = any

// node is the marker interface for the closed effect-node variant.
// Dispatch in the run loop uses a type switch over the eight concrete
// node shapes below, not a virtual hierarchy: adding a ninth shape
// requires a coordinated change to the run loop, by design.
type node interface {
	node()
}

// doneNode marks an effect whose value is already available in the
// enclosing Effect's Value field. This is the Pure leaf.
type doneNode struct{}

func (doneNode) node() {}

// errNode marks an effect that fails immediately. This is the RaiseError leaf.
type errNode[E any] struct {
	Err E
}

func (errNode[E]) node() {}

// delayNode is a suspended pure-value producer. Thunk may panic; a host-level
// fault is recovered by the run loop and converted to E via ErrMap.
type delayNode[E any] struct {
	Thunk  func() Erased
	ErrMap func(any) E
}

func (*delayNode[E]) node() {}

// suspendNode is like delayNode but Thunk produces another effect rather
// than a value, used for trampolined recursion.
type suspendNode[E any] struct {
	Thunk  func() Effect[E, Erased]
	ErrMap func(any) E
}

func (*suspendNode[E]) node() {}

// bindNode is sequential composition: run Source, feed its value to K.
type bindNode[E any] struct {
	Source Effect[E, Erased]
	K      func(Erased) Effect[E, Erased]
}

func (*bindNode[E]) node() {}

// mapNode is an optimized bind for pure transforms. Depth counts consecutive
// fused maps and is capped at fusionMaxStackDepth before a fresh wrapper is
// emitted, bounding host-function-composition depth.
type mapNode[E any] struct {
	Source Effect[E, Erased]
	F      func(Erased) Erased
	Depth  int
}

func (*mapNode[E]) node() {}

// handleNode overlays a recovery branch onto Source. On a value, Source's
// result flows past this node untouched (the run loop skips error-handler
// frames on the value path); on an error, Recover is consulted.
type handleNode[E any] struct {
	Source  Effect[E, Erased]
	Recover func(E) Effect[E, Erased]
}

func (*handleNode[E]) node() {}

// asyncNode is an externally-driven effect. When interpreted, Register is
// invoked with the run's connection and a completion callback; the result
// is delivered by the callback at most once.
type asyncNode[E any] struct {
	Register func(conn *Connection, cb func(Erased, E, bool))
}

func (*asyncNode[E]) node() {}

// fusionMaxStackDepth bounds how many consecutive Map transforms are fused
// into a single composed function before a fresh mapNode wrapper is emitted.
const fusionMaxStackDepth = 128

// Effect is an immutable value describing a computation that yields either
// a failure of type E or a value of type A. E is fixed across one chain,
// the way a monad's answer type is fixed once a computation is built.
//
// Multiple runs of the same Effect are independent: Effect values carry no
// mutable state of their own.
type Effect[E, A any] struct {
	// Value holds the result when Node is doneNode. Meaningless otherwise.
	Value A

	// Node holds the pending computation. doneNode marks "resolved".
	Node node
}

// erase converts Effect[E, A] into Effect[E, Erased], boxing Value into
// Erased and keeping Node unchanged. This is the erasure boundary Bind/Map
// use to cross between a caller's concrete type and the node chain's
// type-erased internals.
func erase[E, A any](m Effect[E, A]) Effect[E, Erased] {
	return Effect[E, Erased]{Value: Erased(m.Value), Node: m.Node}
}

// IsDone reports whether the effect is already resolved to a value (Pure).
func (m Effect[E, A]) IsDone() bool {
	_, ok := m.Node.(doneNode)
	return ok
}

// Pure lifts a value into an effect with no further computation.
func Pure[E, A any](a A) Effect[E, A] {
	return Effect[E, A]{Value: a, Node: doneNode{}}
}

// Unit is Pure(struct{}{}), the effect that does nothing and succeeds.
func Unit[E any]() Effect[E, struct{}] {
	return Pure[E, struct{}](struct{}{})
}

// RaiseError builds an effect that fails immediately with e.
func RaiseError[E, A any](e E) Effect[E, A] {
	return Effect[E, A]{Node: errNode[E]{Err: e}}
}

// Delay captures a synchronous thunk. If thunk panics, the recovered value
// is converted to E via errMap; errMap must be supplied by every caller
// because, for a generic E, there is no default conversion from a host
// fault to an arbitrary error type.
func Delay[E, A any](thunk func() A, errMap func(any) E) Effect[E, A] {
	var zero A
	return Effect[E, A]{
		Value: zero,
		Node: &delayNode[E]{
			Thunk:  func() Erased { return Erased(thunk()) },
			ErrMap: errMap,
		},
	}
}

// Suspend captures a synchronous effect-producing thunk, used for
// trampolined recursion: the thunk's result replaces the current node
// rather than unboxing into a plain value.
func Suspend[E, A any](thunk func() Effect[E, A], errMap func(any) E) Effect[E, A] {
	var zero A
	return Effect[E, A]{
		Value: zero,
		Node: &suspendNode[E]{
			Thunk:  func() Effect[E, Erased] { return erase[E, A](thunk()) },
			ErrMap: errMap,
		},
	}
}

// Never is an effect that never completes: its callback is never invoked.
func Never[E, A any]() Effect[E, A] {
	var zero A
	return Effect[E, A]{
		Value: zero,
		Node: &asyncNode[E]{
			Register: func(*Connection, func(Erased, E, bool)) {},
		},
	}
}

// Async builds an externally-driven effect. register is handed the run's
// connection and a completion callback that must be invoked at most once
// (later invocations are reported through the sink logger, never silently
// dropped — see restartCallback in runloop.go).
func Async[E, A any](register func(conn *Connection, cb func(A, E, bool))) Effect[E, A] {
	var zero A
	return Effect[E, A]{
		Value: zero,
		Node: &asyncNode[E]{
			Register: func(conn *Connection, cb func(Erased, E, bool)) {
				register(conn, func(a A, e E, isErr bool) { cb(Erased(a), e, isErr) })
			},
		},
	}
}

// Bind sequences two effects: run m, feed its value to k, run the result.
// If m is already resolved (Pure), k is applied directly without building
// a node, skipping a run-loop trip for the common case where the source
// has already completed.
func Bind[E, A, B any](m Effect[E, A], k func(A) Effect[E, B]) Effect[E, B] {
	if m.IsDone() {
		return k(m.Value)
	}
	source := erase[E, A](m)
	var zero B
	return Effect[E, B]{
		Value: zero,
		Node: &bindNode[E]{
			Source: source,
			K: func(a Erased) Effect[E, Erased] {
				return erase[E, B](k(a.(A)))
			},
		},
	}
}

// FlatMap is an alias for Bind in the method-chaining style.
func FlatMap[E, A, B any](m Effect[E, A], k func(A) Effect[E, B]) Effect[E, B] {
	return Bind(m, k)
}

// Map applies a pure transform to the result of m. Consecutive Maps fuse by
// function composition up to fusionMaxStackDepth before a fresh node is
// emitted, bounding host-function-composition depth (see mapNode).
func Map[E, A, B any](m Effect[E, A], f func(A) B) Effect[E, B] {
	if m.IsDone() {
		return Pure[E, B](f(m.Value))
	}
	if mn, ok := m.Node.(*mapNode[E]); ok && mn.Depth < fusionMaxStackDepth {
		inner := mn.F
		var zero B
		return Effect[E, B]{
			Value: zero,
			Node: &mapNode[E]{
				Source: mn.Source,
				F:      func(a Erased) Erased { return Erased(f(inner(a).(A))) },
				Depth:  mn.Depth + 1,
			},
		}
	}
	var zero B
	return Effect[E, B]{
		Value: zero,
		Node: &mapNode[E]{
			Source: erase[E, A](m),
			F:      func(a Erased) Erased { return Erased(f(a.(A))) },
			Depth:  1,
		},
	}
}

// Then sequences m before n, discarding m's result.
func Then[E, A, B any](m Effect[E, A], n Effect[E, B]) Effect[E, B] {
	return Bind(m, func(A) Effect[E, B] { return n })
}

// HandleErrorWith overlays a recovery branch: if fa fails with e, the
// result becomes f(e); a success flows through unchanged.
func HandleErrorWith[E, A any](fa Effect[E, A], f func(E) Effect[E, A]) Effect[E, A] {
	var zero A
	return Effect[E, A]{
		Value: zero,
		Node: &handleNode[E]{
			Source:  erase[E, A](fa),
			Recover: func(e E) Effect[E, Erased] { return erase[E, A](f(e)) },
		},
	}
}

// Attempt materializes fa's failure into a value: success becomes Right(a),
// failure becomes Left(e), and the resulting effect never fails.
func Attempt[E, A any](fa Effect[E, A]) Effect[E, Either[E, A]] {
	mapped := Map[E, A, Either[E, A]](fa, func(a A) Either[E, A] { return Right[E, A](a) })
	return HandleErrorWith(mapped, func(e E) Effect[E, Either[E, A]] {
		return Pure[E, Either[E, A]](Left[E, A](e))
	})
}

// LeftMap transforms a failing effect's error channel with f, leaving a
// success untouched.
//
// fa is interpreted lazily, on the same connection as the returned effect,
// by nesting a run of fa inside an Async boundary. This bridges between two
// error-channel types that the node chain cannot be generically recast
// between.
func LeftMap[E, F, A any](fa Effect[E, A], f func(E) F) Effect[F, A] {
	return Async[F, A](func(conn *Connection, cb func(A, F, bool)) {
		startCancelable(fa, conn, func(a A, e E, isErr bool) {
			if isErr {
				var zero A
				cb(zero, f(e), true)
				return
			}
			var zeroF F
			cb(a, zeroF, false)
		})
	})
}

// BiMap transforms both channels of fa: g on success, f on failure.
func BiMap[E, F, A, B any](fa Effect[E, A], f func(E) F, g func(A) B) Effect[F, B] {
	return Async[F, B](func(conn *Connection, cb func(B, F, bool)) {
		startCancelable(fa, conn, func(a A, e E, isErr bool) {
			if isErr {
				var zero B
				cb(zero, f(e), true)
				return
			}
			var zeroF F
			cb(g(a), zeroF, false)
		})
	})
}
