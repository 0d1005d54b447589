package irmux

/********************************************************************************
 *
 * Purpose:	An in-memory Driver used by tests and by the replay/loopback
 *		tooling: a queue of edges to read, and a recorder of whatever
 *		gets sent.
 *
 * Description:	Grounded on the same fake/harness idiom the teacher uses for
 *		its own audio test doubles (src/demod_afsk.go's test harness
 *		peers) adapted to the Driver interface above.
 *
 *******************************************************************************/

import (
	"sync"
)

// FakeDriver is a Driver backed by an in-memory queue, for tests and for
// feeding a captured signal back through the decoder without hardware.
type FakeDriver struct {
	mu         sync.Mutex
	queue      []Duration
	resolution uint32
	mode       DriverMode

	Sent [][]Duration // every SendFunc call's edges, in order
}

// NewFakeDriver returns a FakeDriver with the given edge-timing resolution
// and mode.
func NewFakeDriver(resolution uint32, mode DriverMode) *FakeDriver {
	return &FakeDriver{resolution: resolution, mode: mode}
}

// Push appends edges to the read queue, in the order ReadData will return
// them.
func (f *FakeDriver) Push(edges ...Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, edges...)
}

// PushEOF appends a single EndOfStream edge.
func (f *FakeDriver) PushEOF() {
	f.Push(Duration{Kind: EndOfStream})
}

func (f *FakeDriver) ReadData(timeoutUs int64) (Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return Duration{Kind: Timeout}, nil
	}
	d := f.queue[0]
	f.queue = f.queue[1:]
	return d, nil
}

func (f *FakeDriver) SendFunc(r *Remote, edges []Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]Duration, len(edges))
	copy(cp, edges)
	f.Sent = append(f.Sent, cp)
	return nil
}

func (f *FakeDriver) Resolution() uint32 { return f.resolution }
func (f *FakeDriver) Mode() DriverMode   { return f.mode }
