// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill_test

import (
	"testing"
	"time"

	"code.hybscloud.com/rill"
)

func TestFiberJoinObservesOutcome(t *testing.T) {
	fa := rill.Bind(rill.DefaultTimer.Sleep(time.Millisecond), func(struct{}) rill.Effect[error, int] {
		return rill.Pure[error, int](5)
	})
	started := rill.UnsafeRunSync(rill.Start(fa))
	fiber, ok := started.GetRight()
	if !ok {
		t.Fatalf("start failed: %v", started)
	}
	joined := rill.UnsafeRunSync(fiber.Join())
	v, ok := joined.GetRight()
	if !ok || v != 5 {
		t.Fatalf("got %v, want Right(5)", joined)
	}
}

func TestFiberJoinTwiceBothObserve(t *testing.T) {
	fa := rill.Bind(rill.DefaultTimer.Sleep(time.Millisecond), func(struct{}) rill.Effect[error, int] {
		return rill.Pure[error, int](7)
	})
	started := rill.UnsafeRunSync(rill.Start(fa))
	fiber, _ := started.GetRight()

	first := rill.UnsafeRunSync(fiber.Join())
	second := rill.UnsafeRunSync(fiber.Join())

	fv, _ := first.GetRight()
	sv, _ := second.GetRight()
	if fv != 7 || sv != 7 {
		t.Fatalf("got first=%v second=%v, want both Right(7)", first, second)
	}
}

func TestFiberCancelStopsFiber(t *testing.T) {
	fa := rill.Bind(rill.DefaultTimer.Sleep(time.Hour), func(struct{}) rill.Effect[error, int] {
		return rill.Pure[error, int](1)
	})
	started := rill.UnsafeRunSync(rill.Start(fa))
	fiber, ok := started.GetRight()
	if !ok {
		t.Fatalf("start failed: %v", started)
	}

	done := make(chan rill.Either[error, int], 1)
	rill.UnsafeRunAsync(fiber.Join(), func(e rill.Either[error, int]) { done <- e })

	rill.UnsafeRunSync(fiber.Cancel())

	select {
	case got := <-done:
		t.Fatalf("cancelled fiber delivered %v", got)
	case <-time.After(20 * time.Millisecond):
	}
}
