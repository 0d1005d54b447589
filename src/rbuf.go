package irmux

/********************************************************************************
 *
 * Purpose:	The receive buffer: a ring of timed edges read from the
 *		Driver, plus the pending-pulse/pending-space accumulator the
 *		decoder's expect* calls drive (spec 4.D).
 *
 * Description:	Grounded on liblircd/src/receive.c's rbuf struct and its
 *		clear/rewind/next-edge/unget/unget_delta primitives.
 *
 *******************************************************************************/

import "time"

const rbufSize = 2560

// recSync is how many extra pulse/space pairs the decoder tolerates while
// waiting for a gap long enough to belong to another remote (spec 4.E step 2).
const recSync = 8

type rbuf struct {
	driver Driver

	data  [rbufSize]Duration
	readp int
	writep int

	pendingP      uint32
	pendingPValid bool
	pendingS      uint32
	pendingSValid bool

	sum uint32

	isBiphase bool

	atEOF   bool
	tooLong bool

	lastSignalTime time.Time

	// decoded holds the scalar result of a ModeLircCode read, consumed
	// directly by the decoder instead of edge-by-edge matching.
	decoded    IrCode
	hasDecoded bool
}

func newRbuf(d Driver) *rbuf {
	return &rbuf{driver: d}
}

// setPendingPulse defers validation of a pulse-only framing component: it
// has no dedicated wire edge of its own and is expected to coalesce with
// whichever pulse edge comes next, mirroring set_pending_pulse().
func (b *rbuf) setPendingPulse(v uint32) {
	b.pendingP = v
	b.pendingPValid = v > 0
}

// setPendingSpace defers a space-only framing component the same way,
// mirroring set_pending_space().
func (b *rbuf) setPendingSpace(v uint32) {
	b.pendingS = v
	b.pendingSValid = v > 0
}

// syncPendingPulse resolves a still-open pending pulse as a standalone edge
// (nothing coalesced with it after all) immediately before the decoder
// expects a space instead, mirroring sync_pending_pulse().
func (b *rbuf) syncPendingPulse(r *Remote, res uint32) bool {
	if !b.pendingPValid {
		return true
	}
	pending := b.pendingP
	b.pendingPValid = false
	d, ok, err := b.next(-1)
	if err != nil || !ok || !d.IsPulse() {
		return false
	}
	return IsWithin(d.Value, pending, r, res)
}

// syncPendingSpace is syncPendingPulse's mirror, mirroring
// sync_pending_space().
func (b *rbuf) syncPendingSpace(r *Remote, res uint32) bool {
	if !b.pendingSValid {
		return true
	}
	pending := b.pendingS
	b.pendingSValid = false
	d, ok, err := b.next(-1)
	if err != nil || !ok || !d.IsSpace() {
		return false
	}
	return IsWithin(d.Value, pending, r, res)
}

// clear rotates buffered-but-unconsumed data leftward onto the read cursor,
// resets pending/sum, and — if the buffer is now empty — consumes one fresh
// edge from the driver so there is always something to look at.
func (b *rbuf) clear() error {
	if b.driver.Mode() == ModeLircCode {
		d, err := b.driver.ReadData(-1)
		if err != nil {
			return err
		}
		if d.IsEndOfStream() {
			b.atEOF = true
			return nil
		}
		b.decoded = IrCode(d.Value)
		b.hasDecoded = true
		return nil
	}

	remaining := b.writep - b.readp
	if remaining > 0 {
		copy(b.data[0:remaining], b.data[b.readp:b.writep])
	}
	b.readp = 0
	b.writep = remaining
	b.pendingPValid = false
	b.pendingSValid = false
	b.sum = 0

	if b.writep == 0 {
		return b.fill(-1)
	}
	return nil
}

// rewind resets the read cursor and pending/sum without discarding buffered
// data, used after a failed match to retry with the next remote.
func (b *rbuf) rewind() {
	b.readp = 0
	b.pendingPValid = false
	b.pendingSValid = false
	b.sum = 0
}

// fill consumes one edge from the driver into the ring, honoring timeoutUs
// of wall-clock budget measured from lastSignalTime.
func (b *rbuf) fill(timeoutUs int64) error {
	if b.writep >= rbufSize {
		b.tooLong = true
		return &BufferFullError{}
	}
	budget := timeoutUs
	if budget >= 0 && !b.lastSignalTime.IsZero() {
		elapsed := time.Since(b.lastSignalTime).Microseconds()
		budget -= elapsed
		if budget < 0 {
			budget = 0
		}
	}
	d, err := b.driver.ReadData(budget)
	if err != nil {
		return err
	}
	if d.IsEndOfStream() {
		b.atEOF = true
		return nil
	}
	b.lastSignalTime = time.Now()
	b.data[b.writep] = d
	b.writep++
	return nil
}

// next returns the next unconsumed edge, fetching from the driver when the
// ring is dry, blocking for at most maxUs.
func (b *rbuf) next(maxUs int64) (Duration, bool, error) {
	if b.readp >= b.writep {
		if err := b.fill(maxUs); err != nil {
			return Duration{}, false, err
		}
		if b.readp >= b.writep {
			return Duration{}, false, nil
		}
	}
	d := b.data[b.readp]
	b.readp++
	b.sum += d.Value
	return d, true, nil
}

// unget pushes back the last n (1 or 2) consumed edges.
func (b *rbuf) unget(n int) {
	for i := 0; i < n && b.readp > 0; i++ {
		b.readp--
		if b.data[b.readp].Value <= b.sum {
			b.sum -= b.data[b.readp].Value
		} else {
			b.sum = 0
		}
	}
}

// ungetDelta pushes back a synthetic duration overriding the last buffered
// edge, used to split a gap that spans a frame boundary.
func (b *rbuf) ungetDelta(d Duration) {
	if b.readp == 0 {
		return
	}
	b.readp--
	orig := b.data[b.readp]
	if orig.Value >= d.Value {
		b.sum -= d.Value
	} else {
		b.sum = 0
	}
	b.data[b.readp] = d
	b.readp++
	b.readp--
}
