// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Connection is a per-run cancellation token: an isCanceled flag plus a
// LIFO stack of cancel hooks. Push/pop are used by async builders to
// attach and detach cancel hooks around an in-flight registration.
//
// The cancel flag and hook-stack exclusion are both short critical
// sections — never blocking on I/O — so a spinlock dominates sync.Mutex
// under the contention race/racePair's winner arbitration produces.
type Connection struct {
	canceled atomix.Uint32
	mu       spin.Lock
	hooks    []func()
}

// uncancelableConnection is the singleton uncancelable connection: cancel
// is a no-op, isCanceled is permanently false, push/pop are ignored.
var uncancelableConnection = &Connection{}

// NewConnection allocates a fresh cancelable connection.
func NewConnection() *Connection {
	return &Connection{}
}

// UncancelableConnection returns the uncancelable connection singleton.
func UncancelableConnection() *Connection {
	return uncancelableConnection
}

// IsCanceled reports whether cancel has been signalled. Monotonic: once
// true, stays true. Always false for the uncancelable connection.
func (c *Connection) IsCanceled() bool {
	if c == uncancelableConnection {
		return false
	}
	return c.canceled.Load() != 0
}

// Push appends a cancel hook to the top of the stack. If the connection is
// already canceled, the hook runs immediately instead of being enqueued —
// a late-registering async node must still see its cancel action fire.
// No-op on the uncancelable connection.
func (c *Connection) Push(action func()) {
	if c == uncancelableConnection {
		return
	}
	if c.canceled.Load() != 0 {
		action()
		return
	}
	c.mu.Lock()
	if c.canceled.Load() != 0 {
		c.mu.Unlock()
		action()
		return
	}
	c.hooks = append(c.hooks, action)
	c.mu.Unlock()
}

// Pop removes the most recently pushed hook without invoking it, used when
// an async operation completes without needing its cancel hook anymore.
// No-op on the uncancelable connection or an empty stack.
func (c *Connection) Pop() {
	if c == uncancelableConnection {
		return
	}
	c.mu.Lock()
	if n := len(c.hooks); n > 0 {
		c.hooks = c.hooks[:n-1]
	}
	c.mu.Unlock()
}

// Cancel atomically sets isCanceled and invokes every pushed hook, in
// reverse (LIFO) order, exactly once. A second call is a no-op — cancel is
// idempotent. No-op on the uncancelable connection.
func (c *Connection) Cancel() {
	if c == uncancelableConnection {
		return
	}
	if !c.canceled.CompareAndSwap(0, 1) {
		return
	}
	c.mu.Lock()
	hooks := c.hooks
	c.hooks = nil
	c.mu.Unlock()
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}
