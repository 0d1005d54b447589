package irmux

/********************************************************************************
 *
 * Purpose:	The transmit buffer and the generic per-remote encoder
 *		(spec 4.F): build a pulse/space sequence for one button press,
 *		with repeat-frame concatenation and gap accounting.
 *
 * Description:	Grounded on liblircd/src/transmit.c (sbuf, add_send_buffer/
 *		send_pulse/send_space coalescing, send_header/foot/lead/trail,
 *		send_data, init_send_or_sim's repeat-concatenation loop).
 *
 *******************************************************************************/

const sbufSize = 256

// exactGapThreshold resolves the spec's "10 ms" prose against the vendored
// original's actual constant, LIRCD_EXACT_GAP_THRESHOLD = 10000000 (µs,
// i.e. 10s) in transmit.c. See SPEC_FULL.md section D.3.
const exactGapThreshold uint32 = 10_000_000

type sbuf struct {
	data []Duration
	sum  uint32

	// pendingPulse/pendingSpace mirror rbuf's lazy-emission discipline so
	// two adjacent same-kind writes coalesce into one edge.
	pendingPulse      uint32
	pendingPulseValid bool
	pendingSpace      uint32
	pendingSpaceValid bool
}

func newSbuf() *sbuf {
	return &sbuf{data: make([]Duration, 0, sbufSize)}
}

func (s *sbuf) reset() {
	s.data = s.data[:0]
	s.sum = 0
	s.pendingPulseValid = false
	s.pendingSpaceValid = false
}

// flushPulse commits any pending pulse, coalescing with an immediately
// preceding pulse edge.
func (s *sbuf) flushPulse() error {
	if !s.pendingPulseValid {
		return nil
	}
	if len(s.data) > 0 && s.data[len(s.data)-1].IsPulse() {
		s.data[len(s.data)-1].Value += s.pendingPulse
	} else {
		if len(s.data) >= sbufSize {
			return &BufferFullError{}
		}
		s.data = append(s.data, PulseDuration(s.pendingPulse))
	}
	s.sum += s.pendingPulse
	s.pendingPulseValid = false
	return nil
}

func (s *sbuf) flushSpace() error {
	if !s.pendingSpaceValid {
		return nil
	}
	if len(s.data) > 0 && s.data[len(s.data)-1].IsSpace() {
		s.data[len(s.data)-1].Value += s.pendingSpace
	} else {
		if len(s.data) >= sbufSize {
			return &BufferFullError{}
		}
		s.data = append(s.data, SpaceDuration(s.pendingSpace))
	}
	s.sum += s.pendingSpace
	s.pendingSpaceValid = false
	return nil
}

// sendPulse queues a pulse, flushing any pending space first (a pulse and a
// space never coalesce with each other).
func (s *sbuf) sendPulse(us uint32) error {
	if err := s.flushSpace(); err != nil {
		return err
	}
	if s.pendingPulseValid {
		s.pendingPulse += us
	} else {
		s.pendingPulse = us
		s.pendingPulseValid = true
	}
	return nil
}

func (s *sbuf) sendSpace(us uint32) error {
	if err := s.flushPulse(); err != nil {
		return err
	}
	if s.pendingSpaceValid {
		s.pendingSpace += us
	} else {
		s.pendingSpace = us
		s.pendingSpaceValid = true
	}
	return nil
}

// sync drops a trailing pending space so the buffer ends on a pulse, and
// flushes everything still pending.
func (s *sbuf) sync() error {
	s.pendingSpaceValid = false
	return s.flushPulse()
}

// addSendBuffer appends edges already materialized elsewhere (e.g. a raw
// code's signal array, or a protocol-family codec's output), flushing any
// pending edge first so ordering is preserved.
func (s *sbuf) addSendBuffer(edges []Duration) error {
	if err := s.flushPulse(); err != nil {
		return err
	}
	if err := s.flushSpace(); err != nil {
		return err
	}
	for _, e := range edges {
		if len(s.data) >= sbufSize {
			return &BufferFullError{}
		}
		s.data = append(s.data, e)
		s.sum += e.Value
	}
	return nil
}

func (s *sbuf) edges() []Duration { return s.data }

// EncodeCode builds the pulse/space sequence for one button press, including
// concatenated repeat frames per init_send_or_sim's loop. repeatCount is the
// number of additional repeat frames to append beyond the first press.
func EncodeCode(r *Remote, code *IrNcode, repeatCount uint32) ([]Duration, error) {
	switch r.Family {
	case FamilyGrundig, FamilyBangOlufsen, FamilySerial:
		return nil, &UnsupportedFamilyError{Family: r.Family}
	}

	s := newSbuf()

	if r.Family == FamilyRaw {
		if err := s.addSendBuffer(code.Raw); err != nil {
			return nil, err
		}
		if err := s.sync(); err != nil {
			return nil, err
		}
		return append([]Duration(nil), s.edges()...), nil
	}

	if err := encodeFrame(s, r, code, false); err != nil {
		return nil, err
	}

	remaining := r.minGap()
	for i := uint32(0); i < repeatCount; i++ {
		if remaining >= exactGapThreshold {
			break
		}
		if err := s.sendSpace(remaining); err != nil {
			return nil, err
		}
		if err := encodeFrame(s, r, code, true); err != nil {
			return nil, err
		}
		remaining = r.RepeatGap
		if remaining == 0 {
			remaining = r.minGap()
		}
	}

	if err := s.sync(); err != nil {
		return nil, err
	}
	return append([]Duration(nil), s.edges()...), nil
}

// encodeFrame emits header,lead,pre,data,post,trail,foot for one frame.
// Header/foot are skipped on a repeat frame when the corresponding No*Rep
// flag is set.
func encodeFrame(s *sbuf, r *Remote, code *IrNcode, isRepeat bool) error {
	skipHeader := isRepeat && r.Flags.NoHeadRep
	skipFoot := isRepeat && r.Flags.NoFootRep

	// Header/foot pulse and space are sent independently, not as a single
	// gated pair: a remote configured with only one of the two has no
	// wire edge at all for the missing half, and sbuf's send_pulse/
	// send_space coalescing naturally merges the lone half into whatever
	// same-kind edge the next component sends, matching the receive side's
	// pending-pulse/space deferral in decode.go.
	if !skipHeader {
		if r.Header.Pulse != 0 {
			if err := s.sendPulse(r.Header.Pulse); err != nil {
				return err
			}
		}
		if r.Header.Space != 0 {
			if err := s.sendSpace(r.Header.Space); err != nil {
				return err
			}
		}
	}

	if r.Plead != 0 {
		if err := s.sendPulse(r.Plead); err != nil {
			return err
		}
	}

	if r.PreDataBits > 0 {
		if err := encodeData(s, r, r.PreData, r.PreDataBits); err != nil {
			return err
		}
	}
	if r.hasPre() {
		if err := s.sendPulse(r.Pre.Pulse); err != nil {
			return err
		}
		if err := s.sendSpace(r.Pre.Space); err != nil {
			return err
		}
	}

	payload := code.Code
	if isRepeat {
		payload ^= r.RepeatMask
	}
	if err := encodeData(s, r, payload, r.Bits); err != nil {
		return err
	}

	if r.PostDataBits > 0 {
		if err := encodeData(s, r, r.PostData, r.PostDataBits); err != nil {
			return err
		}
	}
	if r.hasPost() {
		if err := s.sendPulse(r.Post.Pulse); err != nil {
			return err
		}
		if err := s.sendSpace(r.Post.Space); err != nil {
			return err
		}
	}

	if r.Ptrail != 0 {
		if err := s.sendPulse(r.Ptrail); err != nil {
			return err
		}
	}

	if !skipFoot {
		if r.Foot.Pulse != 0 {
			if err := s.sendPulse(r.Foot.Pulse); err != nil {
				return err
			}
		}
		if r.Foot.Space != 0 {
			if err := s.sendSpace(r.Foot.Space); err != nil {
				return err
			}
		}
	}

	return nil
}

// encodeData serializes n bits of data MSB-first, family-aware, applying
// rc6_mask double-width bits for the biphase families.
func encodeData(s *sbuf, r *Remote, data IrCode, n uint32) error {
	if n == 0 {
		return nil
	}

	switch r.Family {
	case FamilyRcMm:
		return encodeRcMm(s, r, data, n)
	case FamilyXmp:
		return encodeXmp(s, r, data, n)
	}

	for i := int(n) - 1; i >= 0; i-- {
		bit := (data >> uint(i)) & 1
		width := uint32(1)
		if r.hasRc6Mask() && r.Rc6Mask&(1<<uint(i)) != 0 {
			width = 2
		}
		switch r.Family {
		case FamilyRc5, FamilyRc6:
			if err := encodeBiphaseBit(s, r, bit == 1, width); err != nil {
				return err
			}
		case FamilySpaceFirst:
			if err := encodeSpaceFirstBit(s, r, bit == 1); err != nil {
				return err
			}
		default: // SpaceEnc and anything else using pulse+variable-space
			if err := encodeSpaceEncBit(s, r, bit == 1); err != nil {
				return err
			}
		}
	}
	return nil
}

func encodeSpaceEncBit(s *sbuf, r *Remote, one bool) error {
	tp := r.Zero
	if one {
		tp = r.One
	}
	if err := s.sendPulse(tp.Pulse); err != nil {
		return err
	}
	return s.sendSpace(tp.Space)
}

func encodeSpaceFirstBit(s *sbuf, r *Remote, one bool) error {
	tp := r.Zero
	if one {
		tp = r.One
	}
	if err := s.sendSpace(tp.Space); err != nil {
		return err
	}
	return s.sendPulse(tp.Pulse)
}

// encodeBiphaseBit emits a Manchester/RC-5/RC-6 half-bit pair. width==2
// doubles both halves for rc6_mask bits.
func encodeBiphaseBit(s *sbuf, r *Remote, one bool, width uint32) error {
	unit := r.One.Pulse // biphase remotes store the half-bit unit in One.Pulse
	if unit == 0 {
		unit = r.Zero.Pulse
	}
	half := unit * width
	if one {
		if err := s.sendSpace(half); err != nil {
			return err
		}
		return s.sendPulse(half)
	}
	if err := s.sendPulse(half); err != nil {
		return err
	}
	return s.sendSpace(half)
}

// encodeRcMm emits one two-bit symbol per call-site bit pair. Resolved open
// question: the bucket index (0..3) is the literal two-bit value, bucket
// order zero/one/two/three, matching the original's actual mask-with-0b11
// assembly rather than the misleading inline comment. See SPEC_FULL.md D.2.
func encodeRcMm(s *sbuf, r *Remote, data IrCode, n uint32) error {
	if n%2 != 0 {
		return &BadTimingError{Where: "rcmm: odd bit width"}
	}
	buckets := [4]TimingPair{r.Zero, r.One, r.Two, r.Three}
	for i := int(n) - 2; i >= 0; i -= 2 {
		sym := (data >> uint(i)) & 0b11
		tp := buckets[sym]
		if err := s.sendPulse(tp.Pulse); err != nil {
			return err
		}
		if err := s.sendSpace(tp.Space); err != nil {
			return err
		}
	}
	return nil
}

// encodeXmp emits one 4-bit nibble per symbol: a fixed pzero pulse followed
// by a space of szero + n*sone, n in [0,16).
func encodeXmp(s *sbuf, r *Remote, data IrCode, n uint32) error {
	if n%4 != 0 {
		return &BadTimingError{Where: "xmp: width not a multiple of 4"}
	}
	for i := int(n) - 4; i >= 0; i -= 4 {
		nibble := uint32((data >> uint(i)) & 0xf)
		if err := s.sendPulse(r.Zero.Pulse); err != nil {
			return err
		}
		if err := s.sendSpace(r.Zero.Space + nibble*r.One.Space); err != nil {
			return err
		}
	}
	return nil
}
