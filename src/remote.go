package irmux

/********************************************************************************
 *
 * Purpose:	The core data model: a button definition (IrNcode), a remote
 *		definition (Remote) and the bit-twiddling helpers the decoder,
 *		encoder and normalizer all share.
 *
 * Description:	Grounded on ir_remote_types.h and the predicate macros in
 *		ir_remote.h (bit_count, reverse, gen_mask, min_gap/max_gap,
 *		get_duty_cycle, the has_* and is_* flag predicates).
 *
 *******************************************************************************/

import "math/bits"

// IrCode is up to 64 payload bits, interpreted big-endian within the frame.
type IrCode uint64

// TimingPair is a (pulse, space) duration pair in microseconds, used for
// header/three/two/one/zero/foot/repeat/pre/post.
type TimingPair struct {
	Pulse uint32
	Space uint32
}

// IrNcode is one button definition within a Remote.
type IrNcode struct {
	Name string
	Code IrCode

	// Next chains additional frames emitted by remotes that send a
	// multi-frame sequence for one button press (spec 4.E "linked chain
	// of codes"). Represented as an owned slice rather than intrusive
	// pointers per the "Linked chains of codes" design note.
	Next []IrCode

	// Raw holds the raw-mode signal array (pulse first, odd length) when
	// the owning Remote is FamilyRaw.
	Raw []Duration

	// current is the decoder's cursor into Next, used while matching a
	// multi-frame button. It lives here (not in a separate runtime map)
	// because a button's chain position is per-button state, mirroring
	// the original's ir_ncode.current field.
	current int
}

// Remote is one parsed remote-control definition.
type Remote struct {
	Name   string
	Driver string

	Family ProtocolFamily
	Flags  Flags

	Bits uint32 // payload width in bits, excluding pre/post

	Eps  uint32 // relative tolerance, percent
	Aeps uint32 // absolute tolerance, microseconds

	Header TimingPair
	Three  TimingPair
	Two    TimingPair
	One    TimingPair
	Zero   TimingPair
	Foot   TimingPair
	Repeat TimingPair
	Pre    TimingPair
	Post   TimingPair

	Plead  uint32
	Ptrail uint32

	PreDataBits  uint32
	PreData      IrCode
	PostDataBits uint32
	PostData     IrCode

	Gap       uint32
	Gap2      uint32
	RepeatGap uint32

	ToggleBitMask IrCode
	ToggleMask    IrCode
	IgnoreMask    IrCode
	Rc6Mask       IrCode
	RepeatMask    IrCode

	// toggleBit is the pre-normalization source field; normalizeFlags
	// translates it into ToggleBitMask and then zeroes it, per spec 4.B.
	toggleBit uint32

	Baud       uint32
	BitsInByte uint32
	Parity     byte // 'E', 'O', or 0 for none or unset
	StopBits   float64

	Freq      uint32
	DutyCycle uint32

	MinRepeat     uint32
	MinCodeRepeat uint32
	SuppressRepeat uint32

	ManualSort bool

	DyncodesName string
	dyncodes     [2]IrNcode

	Codes []*IrNcode

	// Derived fields, computed by calculateSignalLengths during
	// normalization (spec 4.B).
	MinTotalSignalLength uint32
	MaxTotalSignalLength uint32
	MinGapLength         uint32
	MaxGapLength         uint32
	MinPulseLength       uint32
	MaxPulseLength       uint32
	MinSpaceLength       uint32
	MaxSpaceLength       uint32

	// Runtime is the decoder's per-remote mutable state. Kept as a value
	// (not a pointer into a global table) so a Context can own many
	// Remotes without shared mutable globals, per the "global
	// last_remote/repeat_remote/last_code" design note.
	Runtime DecoderRuntime
}

// ToggleMaskState is the tri-state (really four-valued) cross-frame toggle
// sequencer: "start, first-half, second-half, held-repeat". Modeled as an
// explicit enum with one legal transition table rather than modular
// arithmetic, per the design note.
type ToggleMaskState uint8

const (
	ToggleStart ToggleMaskState = iota
	ToggleFirstHalf
	ToggleSecondHalf
	ToggleHeldRepeat
)

// advance applies the observed transition 0->1->2->3->2.
func (s ToggleMaskState) advance() ToggleMaskState {
	switch s {
	case ToggleStart:
		return ToggleFirstHalf
	case ToggleFirstHalf:
		return ToggleSecondHalf
	case ToggleSecondHalf:
		return ToggleHeldRepeat
	case ToggleHeldRepeat:
		return ToggleSecondHalf
	default:
		return ToggleStart
	}
}

// DecoderRuntime is per-remote state mutated only by the decoder.
type DecoderRuntime struct {
	ToggleBitMaskState IrCode
	ToggleMaskState    ToggleMaskState
	Reps               uint32
	LastCode           *IrNcode
	ToggleCode         *IrNcode
	LastSend           int64 // unix micros
	MinRemainingGap    uint32
	MaxRemainingGap    uint32
	ReleaseDetected    bool
}

// bitCount returns the number of bits needed to hold v (0 for v==0).
func bitCount(v IrCode) uint32 {
	if v == 0 {
		return 0
	}
	return uint32(bits.Len64(uint64(v)))
}

// bitsSet returns the Hamming weight of v.
func bitsSet(v IrCode) uint32 {
	return uint32(bits.OnesCount64(uint64(v)))
}

// genMask returns a mask of the low n bits (0 for n==0, and n>=64 saturates
// to all ones), mirroring gen_mask in ir_remote.h.
func genMask(n uint32) IrCode {
	if n == 0 {
		return 0
	}
	if n >= 64 {
		return ^IrCode(0)
	}
	return IrCode(1)<<n - 1
}

// reverseBits reverses the low n bits of v, mirroring the original reverse().
func reverseBits(v IrCode, n uint32) IrCode {
	var out IrCode
	for i := uint32(0); i < n; i++ {
		out <<= 1
		out |= (v >> i) & 1
	}
	return out
}

// payloadWidth is pre_data_bits + bits + post_data_bits, the invariant width
// used when matching a frame (spec 3 Invariants).
func (r *Remote) payloadWidth() uint32 {
	return r.PreDataBits + r.Bits + r.PostDataBits
}

// minGap and maxGap mirror min_gap()/max_gap(): when Gap2 is set, the pair
// (Gap, Gap2) straddles the minimum/maximum rather than Gap alone.
func (r *Remote) minGap() uint32 {
	if r.Gap2 != 0 && r.Gap2 < r.Gap {
		return r.Gap2
	}
	return r.Gap
}

func (r *Remote) maxGap() uint32 {
	if r.Gap2 != 0 && r.Gap2 > r.Gap {
		return r.Gap2
	}
	return r.Gap
}

// hasRepeatMask reports whether the remote applies a repeat_mask on repeat
// frames. Resolved open question: a plain read-only value method, matching
// the spirit of the original's intended const-correctness without Go having
// a const-pointer qualifier to misuse.
func (r *Remote) hasRepeatMask() bool {
	return r.RepeatMask != 0
}

func (r *Remote) hasToggleBitMask() bool { return r.ToggleBitMask != 0 }
func (r *Remote) hasIgnoreMask() bool    { return r.IgnoreMask != 0 }
func (r *Remote) hasToggleMask() bool    { return r.ToggleMask != 0 }
func (r *Remote) hasRc6Mask() bool       { return r.Rc6Mask != 0 }
// hasPre/hasPost/hasHeader/hasFoot report a fully configured (pulse AND
// space) framing pair, matching has_header()/has_foot() in ir_remote.h:
// both components must be set before the pair is validated as one
// immediate unit. A header with only one component configured takes the
// deferred-pending path in decode.go's expectHeader instead; a pre or post
// pair with only one component has no framing edges on either side.
func (r *Remote) hasPre() bool    { return r.Pre.Pulse != 0 && r.Pre.Space != 0 }
func (r *Remote) hasPost() bool   { return r.Post.Pulse != 0 && r.Post.Space != 0 }
func (r *Remote) hasHeader() bool { return r.Header.Pulse != 0 && r.Header.Space != 0 }
func (r *Remote) hasFoot() bool   { return r.Foot.Pulse != 0 && r.Foot.Space != 0 }
func (r *Remote) hasRepeat() bool { return r.Repeat.Pulse != 0 || r.Repeat.Space != 0 }

// getDutyCycle returns the configured duty cycle, defaulting to 50 when
// unset, mirroring get_duty_cycle().
func (r *Remote) getDutyCycle() uint32 {
	if r.DutyCycle == 0 {
		return 50
	}
	return r.DutyCycle
}

// byName looks up a button case-insensitively within this remote.
func (r *Remote) byName(name string) *IrNcode {
	for _, c := range r.Codes {
		if equalFold(c.Name, name) {
			return c
		}
	}
	return nil
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
