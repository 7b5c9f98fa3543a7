// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/rill"
)

func TestAffineResume(t *testing.T) {
	k := func(x int) string { return "received" }
	aff := rill.Once(k)

	got := aff.Resume(42)
	if got != "received" {
		t.Fatalf("got %q, want %q", got, "received")
	}

	if _, ok := aff.TryResume(0); ok {
		t.Fatal("expected TryResume to fail after Resume")
	}
}

func TestAffinePanicOnReuse(t *testing.T) {
	k := func(x int) int { return x * 2 }
	aff := rill.Once(k)
	_ = aff.Resume(10)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on second Resume")
		}
		if s, ok := r.(string); !ok || s != "rill: affine continuation resumed twice" {
			t.Fatalf("unexpected panic message: %v", r)
		}
	}()
	_ = aff.Resume(20)
}

func TestAffineTryResumeUnderConcurrency(t *testing.T) {
	aff := rill.Once(func(x int) int { return x })

	const n = 64
	var wg sync.WaitGroup
	successes := make([]bool, n)
	wg.Add(n)
	for i := range n {
		go func(i int) {
			defer wg.Done()
			_, ok := aff.TryResume(i)
			successes[i] = ok
		}(i)
	}
	wg.Wait()

	count := 0
	for _, ok := range successes {
		if ok {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("%d goroutines won TryResume, want exactly 1", count)
	}
}

func TestAffineDiscard(t *testing.T) {
	called := false
	aff := rill.Once(func(struct{}) struct{} {
		called = true
		return struct{}{}
	})
	aff.Discard()

	if _, ok := aff.TryResume(struct{}{}); ok {
		t.Fatal("expected TryResume to fail after Discard")
	}
	if called {
		t.Fatal("discarded continuation was invoked")
	}
}
