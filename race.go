// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill

import "code.hybscloud.com/atomix"

// Race runs l and r concurrently (each as its own fiber) and yields
// Left(a) or Right(b) for whichever succeeds first. The loser is
// cancelled. If the winner fails, the failure propagates and the loser is
// still cancelled. Winner arbitration is a single atomix.Uint32
// compare-and-swap, so only one of the two completion listeners ever
// proceeds past the swap.
func Race[E, A, B any](l Effect[E, A], r Effect[E, B]) Effect[E, Either[A, B]] {
	return Async[E, Either[A, B]](func(conn *Connection, cb func(Either[A, B], E, bool)) {
		idem := newIdemCallback[Either[A, B], E](cb)
		var active atomix.Uint32
		active.Store(1)

		fl := spawn(l)
		fr := spawn(r)
		conn.Push(func() { fl.conn.Cancel(); fr.conn.Cancel() })

		fl.slot.listen(func(a A, e E, isErr bool) {
			if !active.CompareAndSwap(1, 0) {
				if isErr {
					reportFailure(e)
				}
				return
			}
			fr.conn.Cancel()
			if isErr {
				idem.invoke(zeroOf[Either[A, B]](), e, true)
				return
			}
			idem.invoke(Left[A, B](a), zeroOf[E](), false)
		})
		fr.slot.listen(func(b B, e E, isErr bool) {
			if !active.CompareAndSwap(1, 0) {
				if isErr {
					reportFailure(e)
				}
				return
			}
			fl.conn.Cancel()
			if isErr {
				idem.invoke(zeroOf[Either[A, B]](), e, true)
				return
			}
			idem.invoke(Right[A, B](b), zeroOf[E](), false)
		})
	})
}

// RaceWinLeft is RacePair's outcome when l wins: its value, plus a fiber
// wrapping r's still-running completion slot and connection.
type RaceWinLeft[E, A, B any] struct {
	Value A
	Other Fiber[E, B]
}

// RaceWinRight is RacePair's outcome when r wins.
type RaceWinRight[E, A, B any] struct {
	Other Fiber[E, A]
	Value B
}

// RacePair runs l and r concurrently. Unlike Race, the loser is not
// cancelled: the first child to complete wins and is paired with a fiber
// wrapping the other child, which keeps running to completion on its own
// and populates its own outcome slot — the returned fiber's Join consults
// exactly that slot.
func RacePair[E, A, B any](l Effect[E, A], r Effect[E, B]) Effect[E, Either[RaceWinLeft[E, A, B], RaceWinRight[E, A, B]]] {
	type result = Either[RaceWinLeft[E, A, B], RaceWinRight[E, A, B]]
	return Async[E, result](func(_ *Connection, cb func(result, E, bool)) {
		idem := newIdemCallback[result, E](cb)
		var won atomix.Uint32
		won.Store(1)

		fl := spawn(l)
		fr := spawn(r)

		fl.slot.listen(func(a A, e E, isErr bool) {
			if !won.CompareAndSwap(1, 0) {
				return
			}
			if isErr {
				idem.invoke(zeroOf[result](), e, true)
				return
			}
			idem.invoke(Left[RaceWinLeft[E, A, B], RaceWinRight[E, A, B]](
				RaceWinLeft[E, A, B]{Value: a, Other: fr},
			), zeroOf[E](), false)
		})
		fr.slot.listen(func(b B, e E, isErr bool) {
			if !won.CompareAndSwap(1, 0) {
				return
			}
			if isErr {
				idem.invoke(zeroOf[result](), e, true)
				return
			}
			idem.invoke(Right[RaceWinLeft[E, A, B], RaceWinRight[E, A, B]](
				RaceWinRight[E, A, B]{Other: fl, Value: b},
			), zeroOf[E](), false)
		})
	})
}

// Race3 expresses a three-way race by nesting Race twice and unwrapping
// the resulting nested Either — a zero-new-primitive convenience over an
// already-required operation, not new concurrency machinery.
func Race3[E, A, B, C any](a Effect[E, A], b Effect[E, B], c Effect[E, C]) Effect[E, Either[A, Either[B, C]]] {
	return Race(a, Race(b, c))
}
