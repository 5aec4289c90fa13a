// Package stream translates the graph's low-level lifecycle signals into the
// externally stable record sequence consumed by callers: zero or more token
// records followed by exactly one terminal record.
package stream

import (
	"context"

	"github.com/sherlocklabs/sherlock/core"
)

// Canned responses returned when a gate closes. Each is streamed as a single
// token record before the terminal record.
const (
	MsgQueryTooLong  = "I'm sorry, but your query is too long. Please try with a shorter message."
	MsgQueryUnsafe   = "I'm sorry, but I can't answer this query."
	MsgQueryOffTopic = "I'm sorry, but I can only answer queries related to Python programming."
)

// Record is one externally visible stream event. Exactly one record per run
// has Done=true; a record with a non-empty Error is always terminal. Token
// and Citations are mutually exclusive in practice: tokens stream before the
// terminal record, citations ride on it.
type Record struct {
	Done      bool     `json:"done"`
	Token     string   `json:"token,omitempty"`
	Citations []string `json:"citations,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Translate consumes one run's signal sequence and the run's final error,
// producing the caller-facing record stream. The returned channel is closed
// after the terminal record.
//
// Contract:
//   - Every TokenProduced becomes a token record, in order.
//   - The first closed gate yields its canned message plus a terminal record
//     with no citations; signals after a terminal record are dropped.
//   - A clean generation completion yields a terminal record carrying the
//     citation list from the completion snapshot.
//   - A run error (sent on runErr after signals closes) yields a terminal
//     error record, unless a terminal record was already emitted.
//
// The signals channel must be closed by the producer when the run ends, and
// runErr must receive exactly one value (possibly nil) afterwards.
//
// ctx is the consumer's context, not the run's: cancelling a run must not
// stop the translator from flushing already-buffered signals and the
// terminal record. Only the consumer walking away (ctx done) aborts
// delivery.
func Translate(ctx context.Context, signals <-chan core.Signal, runErr <-chan error) <-chan Record {
	out := make(chan Record, 32)

	go func() {
		defer close(out)
		t := translator{ctx: ctx, out: out}

		for sig := range signals {
			t.handle(sig)
		}

		select {
		case err := <-runErr:
			if err != nil {
				t.emit(Record{Done: true, Error: err.Error()})
			} else {
				// A run that terminated without reaching a terminal
				// signal (cancelled mid-flight) still closes the stream.
				t.emit(Record{Done: true})
			}
		case <-ctx.Done():
		}
	}()

	return out
}

type translator struct {
	ctx      context.Context
	out      chan<- Record
	terminal bool
}

func (t *translator) handle(sig core.Signal) {
	switch s := sig.(type) {
	case core.TokenProduced:
		t.emit(Record{Token: s.Text})
	case core.StageCompleted:
		t.handleCompletion(s)
	case core.StageEntered:
		// Progress-only; nothing externally visible.
	}
}

func (t *translator) handleCompletion(s core.StageCompleted) {
	switch s.Stage {
	case core.StageDataValidator:
		if !s.Outcome.DataValid {
			t.terminate(MsgQueryTooLong)
		}
	case core.StageSafetyGate:
		if !s.Outcome.Safe {
			t.terminate(MsgQueryUnsafe)
		}
	case core.StageRouter:
		if !s.Outcome.QueryValid {
			t.terminate(MsgQueryOffTopic)
		}
	case core.StageGeneration:
		t.emit(Record{Done: true, Citations: s.Outcome.Citations})
	}
}

// terminate streams a canned message then the terminal record. The terminal
// record carries an empty (non-nil) citation list, same shape as a clean
// completion with nothing retrieved.
func (t *translator) terminate(msg string) {
	t.emit(Record{Token: msg})
	t.emit(Record{Done: true, Citations: []string{}})
}

// emit forwards a record unless a terminal record was already sent; the
// first Done or Error record latches the stream shut. Delivery is aborted
// only when the consumer's context ends.
func (t *translator) emit(r Record) {
	if t.terminal {
		return
	}
	if r.Done || r.Error != "" {
		t.terminal = true
	}
	select {
	case <-t.ctx.Done():
	case t.out <- r:
	}
}
