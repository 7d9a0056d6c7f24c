// Package future defines futures as messages to communicate
// between the api server and the node sequencer.
package future

import (
	"github.com/ultiledger/go-marketledger/event"
	"github.com/ultiledger/go-marketledger/op"
)

type Future interface {
	Error() error
}

// Allow a future to respond an error in the future
type deferError struct {
	err       error
	errChan   chan error
	responded bool
}

// Every future should call this method to initialize
// underlying error channel
func (d *deferError) Init() {
	d.errChan = make(chan error, 1)
}

// Each future should respond error once and multiple
// calling with different error on the same future will
// have no effects.
func (d *deferError) Respond(err error) {
	if d.errChan == nil || d.responded {
		return
	}
	d.errChan <- err
	close(d.errChan)
	d.responded = true
}

// Error always return the first responded error
func (d *deferError) Error() error {
	if d.err != nil {
		return d.err
	}
	if d.errChan == nil {
		panic("waiting for response on nil channel")
	}
	d.err = <-d.errChan
	return d.err
}

// Future for the api server to submit a write operation to the
// sequencer. Events is filled before a nil error is responded.
type Op struct {
	deferError
	Op     op.Op
	Events []*event.Envelope
}
