// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/rill"
)

func TestEitherMatchAndMap(t *testing.T) {
	right := rill.Right[error, int](3)
	mapped := rill.MapEither(right, func(a int) int { return a * 2 })
	v, ok := mapped.GetRight()
	if !ok || v != 6 {
		t.Fatalf("got %v, want Right(6)", mapped)
	}

	left := rill.Left[error, int](errors.New("e"))
	mappedLeft := rill.MapEither(left, func(a int) int { return a * 2 })
	if !mappedLeft.IsLeft() {
		t.Fatalf("MapEither over Left produced a Right")
	}
}

func TestFlatMapEitherShortCircuits(t *testing.T) {
	want := errors.New("nope")
	left := rill.Left[error, int](want)
	got := rill.FlatMapEither(left, func(int) rill.Either[error, int] {
		t.Fatalf("continuation invoked on a Left")
		return rill.Right[error, int](0)
	})
	e, ok := got.GetLeft()
	if !ok || e != want {
		t.Fatalf("got %v, want Left(%v)", got, want)
	}
}

func TestFromEitherRoundTrips(t *testing.T) {
	original := rill.Right[error, int](11)
	fa := rill.FromEither(original)
	got := rill.UnsafeRunSync(fa)
	v, ok := got.GetRight()
	if !ok || v != 11 {
		t.Fatalf("got %v, want Right(11)", got)
	}
}
