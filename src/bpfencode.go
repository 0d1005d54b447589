package irmux

/********************************************************************************
 *
 * Purpose:	Generic keymap-parameterized encoders (spec 4.H) and the
 *		three shared raw-event generators they and the fixed-protocol
 *		encoders (protocols.go) both build on.
 *
 * Description:	Generators grounded on libkcodec/src/rc-ir-raw.c
 *		(ir_raw_gen_manchester/pd/pl — the **ev/max cursor-with-bound
 *		pattern, -ENOBUFS -> BufferFullError). Parameter tables and
 *		defaults grounded on tests/libirctl/src/bpf_encoder.c.
 *
 *******************************************************************************/

// irRawTimingsPd is the pulse-distance modulation parameter set: header is a
// fixed pulse+space, each bit is a fixed pulse followed by one of two
// space widths, the frame ends on a single trailing pulse.
type irRawTimingsPd struct {
	headerPulse, headerSpace float64
	bitPulse                 float64
	bitSpace0, bitSpace1     float64
	trailer                  float64
	msbFirst                 bool
}

// irRawTimingsPl is the pulse-length modulation parameter set: header is a
// fixed pulse+space, each bit is one of two pulse widths; the space between
// bits is fixed and the trailing space after the last bit is dropped (odd
// total edge count), matching the keymap BPF table's pulse_length row.
type irRawTimingsPl struct {
	headerPulse, headerSpace float64
	bitPulse0, bitPulse1     float64
	bitSpace                 float64
	msbFirst                 bool
}

// irRawTimingsManchester is the biphase modulation parameter set. A leader
// pulse/space pair starts the frame when non-zero; otherwise the first bit's
// half starts a new edge. genManchester emits every half; EncodeKeymapBPF
// drops a trailing pulse from the result, so the total edge count depends
// on the data. Matches the keymap BPF table's manchester row.
type irRawTimingsManchester struct {
	leaderPulse, leaderSpace float64
	clock                    float64
	invert                   bool
}

func appendEdge(out []Duration, max int, v float64, k Kind) ([]Duration, error) {
	if max >= 0 && len(out) >= max {
		return out, &BufferFullError{}
	}
	return append(out, Duration{Value: uint32(v), Kind: k}), nil
}

// genPulseDistance encodes the n least-significant bits of data with
// pulse-distance modulation.
func genPulseDistance(t irRawTimingsPd, n int, data uint64, max int) ([]Duration, error) {
	var out []Duration
	var err error

	if t.headerPulse != 0 {
		if out, err = appendEdge(out, max, t.headerPulse, Pulse); err != nil {
			return out, err
		}
		if out, err = appendEdge(out, max, t.headerSpace, Space); err != nil {
			return out, err
		}
	}

	emit := func(bit uint64) error {
		if out, err = appendEdge(out, max, t.bitPulse, Pulse); err != nil {
			return err
		}
		space := t.bitSpace0
		if bit != 0 {
			space = t.bitSpace1
		}
		out, err = appendEdge(out, max, space, Space)
		return err
	}

	if t.msbFirst {
		for i := n - 1; i >= 0; i-- {
			if err := emit((data >> uint(i)) & 1); err != nil {
				return out, err
			}
		}
	} else {
		for i := 0; i < n; i++ {
			if err := emit((data >> uint(i)) & 1); err != nil {
				return out, err
			}
		}
	}

	out, err = appendEdge(out, max, t.trailer, Pulse)
	return out, err
}

// genPulseLength encodes the n least-significant bits of data with
// pulse-length modulation, dropping the trailing inter-bit space.
func genPulseLength(t irRawTimingsPl, n int, data uint64, max int) ([]Duration, error) {
	var out []Duration
	var err error

	if t.headerPulse != 0 {
		if out, err = appendEdge(out, max, t.headerPulse, Pulse); err != nil {
			return out, err
		}
	}
	if t.headerSpace != 0 {
		if out, err = appendEdge(out, max, t.headerSpace, Space); err != nil {
			return out, err
		}
	}

	bitAt := func(i int) uint64 { return (data >> uint(i)) & 1 }

	order := make([]int, n)
	if t.msbFirst {
		for i := 0; i < n; i++ {
			order[i] = n - 1 - i
		}
	} else {
		for i := 0; i < n; i++ {
			order[i] = i
		}
	}

	for idx, i := range order {
		bit := bitAt(i)
		pulse := t.bitPulse0
		if bit != 0 {
			pulse = t.bitPulse1
		}
		if out, err = appendEdge(out, max, pulse, Pulse); err != nil {
			return out, err
		}
		if idx != len(order)-1 {
			if out, err = appendEdge(out, max, t.bitSpace, Space); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}

// genManchester encodes the n least-significant bits of data with biphase
// (Manchester) modulation, mirroring ir_raw_gen_manchester's half-bit
// coalescing: consecutive half-bits of the same polarity merge into one
// edge rather than emitting a zero-width edge.
func genManchester(t irRawTimingsManchester, n int, data uint64, max int) ([]Duration, error) {
	var out []Duration
	var err error

	if t.leaderPulse != 0 {
		if out, err = appendEdge(out, max, t.leaderPulse, Pulse); err != nil {
			return out, err
		}
		if t.leaderSpace != 0 {
			if out, err = appendEdge(out, max, t.leaderSpace, Space); err != nil {
				return out, err
			}
		}
	}

	// lastKind/lastValid track the most recently emitted edge so same-
	// polarity halves coalesce, matching the original's "continue
	// existing signal" / in-place duration-accumulate behavior.
	lastValid := len(out) > 0
	var lastKind Kind
	if lastValid {
		lastKind = out[len(out)-1].Kind
	}

	coalesce := func(needPulse bool, width float64) error {
		k := Space
		if needPulse {
			k = Pulse
		}
		if lastValid && lastKind == k {
			out[len(out)-1].Value += uint32(width)
			return nil
		}
		var e error
		out, e = appendEdge(out, max, width, k)
		if e != nil {
			return e
		}
		lastValid = true
		lastKind = k
		return nil
	}

	for i := n - 1; i >= 0; i-- {
		bit := (data >> uint(i)) & 1
		needPulse := bit == 0
		if t.invert {
			needPulse = !needPulse
		}
		if err := coalesce(needPulse, t.clock); err != nil {
			return out, err
		}
		if err := coalesce(!needPulse, t.clock); err != nil {
			return out, err
		}
	}

	return out, nil
}

// Keymap BPF encoder defaults, spec 4.H table.
const (
	bpfPdHeaderPulse = 2125
	bpfPdHeaderSpace = 1875
	bpfPdBits        = 4
	bpfPdBitPulse    = 625
	bpfPdBit1Space   = 1625
	bpfPdBit0Space   = 375
	bpfPdTrailer     = 625

	bpfPlHeaderPulse = 2125
	bpfPlHeaderSpace = 1875
	bpfPlBits        = 4
	bpfPlBitSpace    = 625
	bpfPlBit1Pulse   = 1625
	bpfPlBit0Pulse   = 375

	bpfMsBits      = 14
	bpfMsOnePulse  = 888
	bpfMsOneSpace  = 888
	bpfMsZeroPulse = 888
	bpfMsZeroSpace = 888
)

// EncodeKeymapBPF encodes one scancode using the named generic encoder
// ("pulse_distance", "pulse_length", "manchester") parameterized by the
// keymap's protocol_param table, defaulting unset parameters per the spec
// 4.H table. reverse=1 inverts bit order before encoding.
func EncodeKeymapBPF(k *Keymap, scancode uint64, max int) ([]Duration, error) {
	reverse := k.Param("reverse", 0) != 0

	switch k.Protocol {
	case "pulse_distance":
		bits := int(k.Param("bits", bpfPdBits))
		data := scancode
		if reverse {
			data = uint64(reverseBits(IrCode(data), uint32(bits)))
		}
		t := irRawTimingsPd{
			headerPulse: float64(k.Param("header_pulse", bpfPdHeaderPulse)),
			headerSpace: float64(k.Param("header_space", bpfPdHeaderSpace)),
			bitPulse:    float64(k.Param("bit_pulse", bpfPdBitPulse)),
			bitSpace1:   float64(k.Param("bit_1_space", bpfPdBit1Space)),
			bitSpace0:   float64(k.Param("bit_0_space", bpfPdBit0Space)),
			trailer:     float64(k.Param("trailer_pulse", bpfPdTrailer)),
			msbFirst:    true,
		}
		return genPulseDistance(t, bits, data, max)

	case "pulse_length":
		bits := int(k.Param("bits", bpfPlBits))
		data := scancode
		if reverse {
			data = uint64(reverseBits(IrCode(data), uint32(bits)))
		}
		t := irRawTimingsPl{
			headerPulse: float64(k.Param("header_pulse", bpfPlHeaderPulse)),
			headerSpace: float64(k.Param("header_space", bpfPlHeaderSpace)),
			bitSpace:    float64(k.Param("bit_space", bpfPlBitSpace)),
			bitPulse1:   float64(k.Param("bit_1_pulse", bpfPlBit1Pulse)),
			bitPulse0:   float64(k.Param("bit_0_pulse", bpfPlBit0Pulse)),
			msbFirst:    true,
		}
		return genPulseLength(t, bits, data, max)

	case "manchester":
		bits := int(k.Param("bits", bpfMsBits))
		data := scancode
		if reverse {
			data = uint64(reverseBits(IrCode(data), uint32(bits)))
		}
		t := irRawTimingsManchester{
			leaderPulse: float64(k.Param("header_pulse", 0)),
			leaderSpace: float64(k.Param("header_space", 0)),
			clock:       float64(k.Param("one_pulse", bpfMsOnePulse)),
			invert:      false,
		}
		edges, err := genManchester(t, bits, data, max)
		if err != nil {
			return edges, err
		}
		// The keymap BPF manchester default drops the trailing pulse
		// (odd total edge count), unlike the generic algorithm used
		// standalone by the fixed RC-5/RC-6 protocol encoders.
		if len(edges) > 0 && edges[len(edges)-1].IsPulse() {
			edges = edges[:len(edges)-1]
		}
		return edges, nil

	default:
		return nil, &UnsupportedFamilyError{}
	}
}
