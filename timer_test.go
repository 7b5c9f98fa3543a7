// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill_test

import (
	"errors"
	"testing"
	"time"

	"code.hybscloud.com/rill"
)

func TestTimeoutLetsFastEffectThrough(t *testing.T) {
	fa := rill.Bind(rill.DefaultTimer.Sleep(time.Millisecond), func(struct{}) rill.IO[int] {
		return rill.Pure[error, int](4)
	})
	got := rill.UnsafeRunSync(rill.Timeout(fa, 50*time.Millisecond, rill.DefaultTimer, errors.New("timed out")))
	v, ok := got.GetRight()
	if !ok || v != 4 {
		t.Fatalf("got %v, want Right(4)", got)
	}
}

func TestTimeoutFiresOnSlowEffect(t *testing.T) {
	timeoutErr := errors.New("timed out")
	fa := rill.Bind(rill.DefaultTimer.Sleep(50*time.Millisecond), func(struct{}) rill.IO[int] {
		return rill.Pure[error, int](4)
	})
	got := rill.UnsafeRunSync(rill.Timeout(fa, time.Millisecond, rill.DefaultTimer, timeoutErr))
	e, ok := got.GetLeft()
	if !ok || e != timeoutErr {
		t.Fatalf("got %v, want Left(%v)", got, timeoutErr)
	}
}
