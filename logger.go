// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rill

import (
	"os"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
)

// SinkLogger is the "must not be silent" collaborator for errors that have
// nowhere else to go: losing-race failures, release-during-release faults,
// and callback-after-completion reuse. ReportFailure must never panic and
// must not block the caller — the run loop and race primitives call it
// from hot paths where a blocking sink would stall unrelated work.
type SinkLogger interface {
	ReportFailure(err error)
}

// hclogSink adapts an hclog.Logger to SinkLogger.
type hclogSink struct {
	logger hclog.Logger
}

// NewLogger wraps an hclog.Logger as a SinkLogger.
func NewLogger(logger hclog.Logger) SinkLogger {
	return &hclogSink{logger: logger}
}

// ReportFailure logs err at error level. hclog.Logger.Error does not panic
// and does not block on I/O beyond its configured writer, satisfying the
// sink logger contract.
func (s *hclogSink) ReportFailure(err error) {
	s.logger.Error("rill: unhandled failure", "error", err)
}

var defaultSink atomic.Pointer[SinkLogger]

func init() {
	var sink SinkLogger = &hclogSink{logger: hclog.New(&hclog.LoggerOptions{
		Name:   "rill",
		Level:  hclog.Error,
		Output: os.Stderr,
	})}
	defaultSink.Store(&sink)
}

// SetSinkLogger replaces the package-wide default sink logger. Intended
// for wiring a host application's logger once at startup.
func SetSinkLogger(sink SinkLogger) {
	defaultSink.Store(&sink)
}

// reportFailure normalizes v to an error and routes it through the current
// sink logger. v may already be an error, or a recovered panic value of
// arbitrary type.
func reportFailure(v any) {
	sink := *defaultSink.Load()
	if err, ok := v.(error); ok {
		sink.ReportFailure(err)
		return
	}
	sink.ReportFailure(&faultError{v: v})
}

// faultError wraps an arbitrary recovered panic value as an error.
type faultError struct{ v any }

func (f *faultError) Error() string {
	if s, ok := f.v.(string); ok {
		return s
	}
	if s, ok := f.v.(interface{ String() string }); ok {
		return s.String()
	}
	return "rill: non-error fault"
}
