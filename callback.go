// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill

// idemCallback is the idempotent at-most-once completion wrapper every
// externally exposed callback (Cancelable's register, Race/RacePair's
// winner delivery, BracketCase, OnCancelRaiseError) is built on top of, one
// level above the run loop's own restartCallback. The at-most-once guard
// reuses Affine[struct{}, struct{}] (affine.go) for the admission check,
// specialized to a three-argument completion shape by wrapping the real
// delivery in the closure Affine resumes.
type idemCallback[A, E any] struct {
	guard *Affine[struct{}, struct{}]
	cb    func(A, E, bool)
}

// newIdemCallback wraps cb with at-most-once delivery, trampolined
// re-entry through the shared immediate executor, and sink-logged
// duplicate invocations.
func newIdemCallback[A, E any](cb func(A, E, bool)) *idemCallback[A, E] {
	return &idemCallback[A, E]{guard: Once(func(struct{}) struct{} { return struct{}{} }), cb: cb}
}

// invoke delivers (a, e, isErr) at most once. A second invocation is
// reported to the sink logger and dropped, never silently ignored and
// never delivered.
func (c *idemCallback[A, E]) invoke(a A, e E, isErr bool) {
	if _, ok := c.guard.TryResume(struct{}{}); !ok {
		reportFailure(lateCallbackError{})
		return
	}
	globalExecutor.run(func() { c.cb(a, e, isErr) })
}
