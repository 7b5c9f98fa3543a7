// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill

// loopState is the run loop's working set for one invocation. current/
// currentValue is the node under evaluation (currentValue is only
// meaningful when current is doneNode). bFirst/bRest is the explicit bind
// stack: one frame cached directly, the remainder in a lazily grown slice.
// Frames themselves are type-erased (pool.go), so loopState's only type
// parameter is the error channel carried by the nodes it dispatches on.
type loopState[E any] struct {
	current      node
	currentValue Erased
	conn         *Connection
	bFirst       *frame
	bRest        []*frame
}

func pushFrame[E any](st *loopState[E], f *frame) {
	if st.bFirst != nil {
		st.bRest = append(st.bRest, st.bFirst)
	}
	st.bFirst = f
}

// popFrame removes and returns the top frame, or nil if the stack is
// empty. The caller owns releasing it back to the pool once consulted.
func popFrame[E any](st *loopState[E]) *frame {
	f := st.bFirst
	if f == nil {
		return nil
	}
	if n := len(st.bRest); n == 0 {
		st.bFirst = nil
	} else {
		st.bFirst = st.bRest[n-1]
		st.bRest = st.bRest[:n-1]
	}
	return f
}

// outcomeKind tags what advance stopped on.
type outcomeKind int

const (
	outcomeDone outcomeKind = iota
	outcomeError
	outcomeAsync
)

type outcome[E any] struct {
	kind  outcomeKind
	value Erased
	err   E
	async *asyncNode[E]
}

// advance runs st's trampoline until the bind stack is exhausted (a value
// reaches the end, or an error finds no handler), or an Async node is
// reached. It mutates st in place so the caller can resume it later with
// the async's delivered result (step/unsafeRunTimed) or hand it to a
// restartCallback (start/startCancelable).
func advance[E any](st *loopState[E]) outcome[E] {
	for {
		switch n := st.current.(type) {
		case doneNode:
			for st.bFirst != nil && st.bFirst.k == nil {
				releaseFrame(popFrame(st))
			}
			if st.bFirst == nil {
				return outcome[E]{kind: outcomeDone, value: st.currentValue}
			}
			f := popFrame(st)
			nextNode, nextValue := applyContinuation(f.k, st.currentValue)
			releaseFrame(f)
			st.current, st.currentValue = nextNode, nextValue

		case errNode[E]:
			e := n.Err
			for {
				f := popFrame(st)
				if f == nil {
					return outcome[E]{kind: outcomeError, err: e}
				}
				if f.recover != nil {
					nextNode, nextValue := f.recover(Erased(e))
					releaseFrame(f)
					st.current, st.currentValue = nextNode, nextValue
					break
				}
				releaseFrame(f)
			}

		case *delayNode[E]:
			v, rec, panicked := safeCall(n.Thunk)
			if panicked {
				st.current, st.currentValue = errNode[E]{Err: n.ErrMap(rec)}, nil
			} else {
				st.current, st.currentValue = doneNode{}, v
			}

		case *suspendNode[E]:
			eff, rec, panicked := safeSuspend(n.Thunk)
			if panicked {
				st.current, st.currentValue = errNode[E]{Err: n.ErrMap(rec)}, nil
			} else {
				st.current, st.currentValue = eff.Node, Erased(eff.Value)
			}

		case *bindNode[E]:
			k := n.K
			f := acquireFrame()
			f.k = func(a Erased) (node, Erased) {
				next := k(a)
				return next.Node, Erased(next.Value)
			}
			pushFrame(st, f)
			st.current, st.currentValue = n.Source.Node, Erased(n.Source.Value)

		case *mapNode[E]:
			mf := n.F
			f := acquireFrame()
			f.k = func(a Erased) (node, Erased) {
				return doneNode{}, Erased(mf(a))
			}
			pushFrame(st, f)
			st.current, st.currentValue = n.Source.Node, Erased(n.Source.Value)

		case *handleNode[E]:
			rec := n.Recover
			f := acquireFrame()
			f.recover = func(eBoxed Erased) (node, Erased) {
				next := rec(eBoxed.(E))
				return next.Node, Erased(next.Value)
			}
			pushFrame(st, f)
			st.current, st.currentValue = n.Source.Node, Erased(n.Source.Value)

		case *asyncNode[E]:
			return outcome[E]{kind: outcomeAsync, async: n}

		default:
			panic("rill: unknown effect node shape")
		}
	}
}

// safeCall runs thunk, recovering a panic instead of letting it escape —
// Delay's documented contract is that host faults are captured through
// errMap, not left to crash the run loop.
func safeCall(thunk func() Erased) (v Erased, rec any, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			rec, panicked = r, true
		}
	}()
	v = thunk()
	return v, nil, false
}

func safeSuspend[E any](thunk func() Effect[E, Erased]) (eff Effect[E, Erased], rec any, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			rec, panicked = r, true
		}
	}()
	eff = thunk()
	return eff, nil, false
}

// applyContinuation invokes a bind frame's continuation. A fault here is a
// programming bug, not a typed failure: it is reported to the sink logger
// and re-raised so it escapes the run loop, rather than being folded into
// the E channel.
func applyContinuation(k func(Erased) (node, Erased), v Erased) (node, Erased) {
	defer func() {
		if r := recover(); r != nil {
			reportFailure(r)
			panic(r)
		}
	}()
	return k(v)
}

// restartCallback is the mutable, reused completion object an Async node's
// register function is handed. It is safe to mutate because the admission
// guard (a fresh Affine per arming) ensures only one external fulfilment
// ever calls invoke per suspension. Reusing the object across suspensions
// in the same run saves one allocation per async boundary.
type restartCallback[E any] struct {
	conn    *Connection
	bFirst  *frame
	bRest   []*frame
	finalCB func(Erased, E, bool)
	guard   *Affine[struct{}, struct{}]
}

func (r *restartCallback[E]) arm(st *loopState[E]) {
	r.bFirst, r.bRest = st.bFirst, st.bRest
	r.guard = Once(func(struct{}) struct{} { return struct{}{} })
}

// invoke delivers the async result and resumes the loop with the
// snapshotted bind stack. At-most-once: a call after the first is reported
// to the sink logger and dropped rather than silently ignored.
func (r *restartCallback[E]) invoke(value Erased, err E, isErr bool) {
	if _, ok := r.guard.TryResume(struct{}{}); !ok {
		reportFailure(lateCallbackError{})
		return
	}
	bFirst, bRest := r.bFirst, r.bRest
	r.bFirst, r.bRest = nil, nil

	st := &loopState[E]{conn: r.conn, bFirst: bFirst, bRest: bRest}
	if isErr {
		st.current, st.currentValue = errNode[E]{Err: err}, nil
	} else {
		st.current, st.currentValue = doneNode{}, value
	}
	runLoopFrom(st, r.finalCB, r)
}

// lateCallbackError marks a callback invocation observed after the first:
// a duplicate callback is reported, never silently dropped.
type lateCallbackError struct{}

func (lateCallbackError) Error() string { return "rill: async callback invoked after completion" }

// runLoopFrom drives st to completion, registering new Async suspensions
// on rcb (allocating it lazily on first use) until a terminal outcome is
// delivered to finalCB.
func runLoopFrom[E any](st *loopState[E], finalCB func(Erased, E, bool), rcb *restartCallback[E]) {
	for {
		out := advance(st)
		switch out.kind {
		case outcomeDone:
			var zero E
			finalCB(out.value, zero, false)
			return
		case outcomeError:
			finalCB(nil, out.err, true)
			return
		case outcomeAsync:
			if st.conn == nil {
				st.conn = NewConnection()
			}
			if rcb == nil {
				rcb = &restartCallback[E]{conn: st.conn, finalCB: finalCB}
			}
			rcb.arm(st)
			out.async.Register(st.conn, rcb.invoke)
			return
		}
	}
}

// start begins interpreting fa with an uncancelable connection, delivering
// its outcome to cb exactly once.
func start[E, A any](fa Effect[E, A], cb func(A, E, bool)) {
	startCancelable(fa, UncancelableConnection(), cb)
}

// startCancelable begins interpreting fa on conn, delivering its outcome
// to cb exactly once.
func startCancelable[E, A any](fa Effect[E, A], conn *Connection, cb func(A, E, bool)) {
	st := &loopState[E]{conn: conn, current: fa.Node, currentValue: Erased(fa.Value)}
	runLoopFrom(st, func(v Erased, e E, isErr bool) {
		if isErr {
			var zero A
			cb(zero, e, true)
			return
		}
		var zero E
		cb(v.(A), zero, false)
	}, nil)
}

// stepResult is what step/unsafeRunTimed observe: either a terminal value,
// a terminal error, or the first Async node encountered together with
// enough state (st) to resume the same run later.
type stepResult[E, A any] struct {
	Done  bool
	Value A
	Err   E
	IsErr bool
	Async *asyncNode[E]
	st    *loopState[E]
}

// step drives fa synchronously, stopping at the first Pure, RaiseError, or
// Async node — it never calls an Async node's register. Used by
// unsafeRunTimed to bound each individual async wait rather than the
// total run.
func step[E, A any](fa Effect[E, A]) stepResult[E, A] {
	st := &loopState[E]{conn: NewConnection(), current: fa.Node, currentValue: Erased(fa.Value)}
	return resumeStep[E, A](st)
}

func resumeStep[E, A any](st *loopState[E]) stepResult[E, A] {
	out := advance(st)
	switch out.kind {
	case outcomeDone:
		var zero E
		return stepResult[E, A]{Done: true, Value: out.value.(A), Err: zero}
	case outcomeError:
		var zero A
		return stepResult[E, A]{Done: true, Value: zero, Err: out.err, IsErr: true}
	default:
		return stepResult[E, A]{Async: out.async, st: st}
	}
}

// resumeWith feeds an externally-observed async outcome back into sr's
// captured loop state and continues stepping.
func resumeWith[E, A any](sr stepResult[E, A], value Erased, err E, isErr bool) stepResult[E, A] {
	if isErr {
		sr.st.current, sr.st.currentValue = errNode[E]{Err: err}, nil
	} else {
		sr.st.current, sr.st.currentValue = doneNode{}, value
	}
	return resumeStep[E, A](sr.st)
}
