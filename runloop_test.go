// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill_test

import (
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/rill"
)

func TestMultipleSequentialAsyncSuspensionsInOneChain(t *testing.T) {
	fa := rill.Bind(rill.DefaultTimer.Sleep(time.Millisecond), func(struct{}) rill.IO[int] {
		return rill.Bind(rill.DefaultTimer.Sleep(time.Millisecond), func(struct{}) rill.IO[int] {
			return rill.Bind(rill.DefaultTimer.Sleep(time.Millisecond), func(struct{}) rill.IO[int] {
				return rill.Pure[error, int](21)
			})
		})
	})
	got := rill.UnsafeRunSync(fa)
	v, ok := got.GetRight()
	if !ok || v != 21 {
		t.Fatalf("got %v, want Right(21)", got)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	errors []error
}

func (s *recordingSink) ReportFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, err)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errors)
}

type noopSink struct{}

func (noopSink) ReportFailure(error) {}

func TestLateCallbackIsReportedNotDropped(t *testing.T) {
	sink := &recordingSink{}
	rill.SetSinkLogger(sink)
	defer rill.SetSinkLogger(noopSink{})

	var captured func(int, error, bool)
	fa := rill.Async[error, int](func(_ *rill.Connection, cb func(int, error, bool)) {
		captured = cb
	})

	done := make(chan struct{}, 1)
	rill.UnsafeRunAsync(fa, func(rill.Either[error, int]) { done <- struct{}{} })

	captured(1, nil, false)
	<-done
	captured(2, nil, false)

	if sink.count() != 1 {
		t.Fatalf("sink recorded %d failures, want 1 (the late callback)", sink.count())
	}
}
