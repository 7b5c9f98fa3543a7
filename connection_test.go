// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill_test

import (
	"testing"
	"time"

	"code.hybscloud.com/rill"
)

func TestConnectionCancelRunsHooksInReverseOrder(t *testing.T) {
	conn := rill.NewConnection()
	var order []int
	conn.Push(func() { order = append(order, 1) })
	conn.Push(func() { order = append(order, 2) })
	conn.Push(func() { order = append(order, 3) })

	conn.Cancel()

	want := []int{3, 2, 1}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestConnectionCancelIsIdempotent(t *testing.T) {
	conn := rill.NewConnection()
	calls := 0
	conn.Push(func() { calls++ })
	conn.Cancel()
	conn.Cancel()
	conn.Cancel()
	if calls != 1 {
		t.Fatalf("hook ran %d times, want 1", calls)
	}
}

func TestConnectionPushAfterCancelRunsImmediately(t *testing.T) {
	conn := rill.NewConnection()
	conn.Cancel()
	ran := false
	conn.Push(func() { ran = true })
	if !ran {
		t.Fatalf("hook pushed after cancel did not run immediately")
	}
}

func TestConnectionPopRemovesWithoutRunning(t *testing.T) {
	conn := rill.NewConnection()
	ran := false
	conn.Push(func() { ran = true })
	conn.Pop()
	conn.Cancel()
	if ran {
		t.Fatalf("popped hook ran on cancel")
	}
}

func TestUncancelableConnectionIsNeverCanceled(t *testing.T) {
	conn := rill.UncancelableConnection()
	ran := false
	conn.Push(func() { ran = true })
	conn.Cancel()
	if conn.IsCanceled() {
		t.Fatalf("uncancelable connection reports canceled")
	}
	if ran {
		t.Fatalf("uncancelable connection ran a pushed hook")
	}
}

func TestUncancelableEffectIgnoresOuterCancel(t *testing.T) {
	fut, complete := rill.NewFuture[int]()
	inner := rill.FromFuture(fut)

	done := make(chan rill.Either[error, int], 1)
	token := rill.UnsafeRunCancelable(rill.Uncancelable[error, int](inner), func(e rill.Either[error, int]) { done <- e })
	token()
	complete(1, nil)

	select {
	case got := <-done:
		v, ok := got.GetRight()
		if !ok || v != 1 {
			t.Fatalf("got %v, want Right(1)", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("uncancelable effect did not complete after an outer cancel")
	}
}
