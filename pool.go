// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill

import "sync"

// frame is a bind-stack entry, fully type-erased: k and recover operate
// on Erased in and return a node plus an Erased value directly, instead
// of a generic Effect[E, Erased] — which is what lets one frame shape
// serve every instantiation of the run loop's E, and so be pooled behind
// a single sync.Pool instead of one per error-channel type.
//
// A plain continuation has k set and recover nil; an error-handler frame
// has recover set and k nil. Per the run loop's traversal policy,
// error-handler frames are transparent for value delivery (skipped
// without being applied) and opaque for error delivery (consulted, and
// the first one found wins).
//
// Pooled frames require affine (at-most-once) evaluation: advance
// acquires one per bindNode/mapNode/handleNode it unwinds and releases it
// immediately after consulting it, never retaining a reference past that
// point.
type frame struct {
	k       func(Erased) (node, Erased)
	recover func(Erased) (node, Erased)
	pooled  bool
}

var framePool = sync.Pool{New: func() any { return new(frame) }}

// acquireFrame acquires a pooled single-use frame whose k or recover
// field must be filled before evaluation.
func acquireFrame() *frame {
	f := framePool.Get().(*frame)
	f.pooled = true
	return f
}

// releaseFrame zeroes and returns f to the pool; no-op on nil or a frame
// that was never acquired from the pool.
func releaseFrame(f *frame) {
	if f == nil || !f.pooled {
		return
	}
	f.k = nil
	f.recover = nil
	f.pooled = false
	framePool.Put(f)
}
