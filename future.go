// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill

// Future is a minimal boundary type standing in for a future/promise,
// backed by the same mutex-guarded outcomeSlot a Fiber uses: Go has no
// single dominant Future the way other platforms do, so the boundary
// conversions below define just enough of one — complete exactly once,
// observable any number of times — to cross into and out of the effect
// world. No third-party dependency in the examples models this better
// than that small slot type, so it stays on the standard library by
// design.
type Future[A any] struct {
	slot *outcomeSlot[error, A]
}

// NewFuture returns a Future and the function that completes it. complete
// is safe to call from any goroutine and is a no-op after the first call.
func NewFuture[A any]() (Future[A], func(A, error)) {
	slot := &outcomeSlot[error, A]{}
	complete := func(a A, err error) {
		slot.complete(a, err, err != nil)
	}
	return Future[A]{slot: slot}, complete
}

// FromFuture registers a completion listener on the future via the
// package's shared immediate executor and lifts the result into an
// effect.
func FromFuture[A any](fut Future[A]) IO[A] {
	return Async[error, A](func(_ *Connection, cb func(A, error, bool)) {
		fut.slot.listen(func(a A, err error, isErr bool) {
			globalExecutor.run(func() { cb(a, err, isErr) })
		})
	})
}

// UnsafeToFuture runs fa to a detached fiber and returns a Future that
// completes on first result delivery.
func UnsafeToFuture[A any](fa IO[A]) Future[A] {
	fiber := spawn(fa)
	return Future[A]{slot: fiber.slot}
}
