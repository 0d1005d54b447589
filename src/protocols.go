package irmux

/********************************************************************************
 *
 * Purpose:	Fixed-parameter protocol-family encoders (spec 4.G): NEC
 *		family, JVC, Sanyo, Sharp, Sony, RC-5 family, RC-6 variants,
 *		Xbox-DVD. Used standalone, outside the generic remote-driven
 *		decode/encode pipeline, when driving hardware that lacks
 *		native protocol support.
 *
 * Description:	Grounded on liblircd/src/ir-encode.c: unit timings, the
 *		protocols[] table, str_like name matching (here
 *		protocolNameLike, flags.go), protocol_scancode_valid
 *		canonicalization.
 *
 *******************************************************************************/

// FixedProtocol identifies one named fixed-parameter encoder.
type FixedProtocol int

const (
	ProtoUnknown FixedProtocol = iota
	ProtoRc5
	ProtoRc5x20
	ProtoRc5sz
	ProtoSony12
	ProtoSony15
	ProtoSony20
	ProtoJvc
	ProtoNec
	ProtoNecx
	ProtoNec32
	ProtoSanyo
	ProtoSharp
	ProtoRc6_0
	ProtoRc6_6a20
	ProtoRc6_6a24
	ProtoRc6_6a32
	ProtoRc6mce
	ProtoXboxDvd
)

// protocolInfo is one row of the protocols[] table: name, scancode mask,
// the maximum number of raw edges the encoder can emit, and carrier Hz.
type protocolInfo struct {
	id            FixedProtocol
	name          string
	scancodeMask  uint64
	maxEdges      int
	carrier       uint32
}

var protocols = []protocolInfo{
	{ProtoRc5, "rc5", 0x1fff, 28, 36000},
	{ProtoRc5x20, "rc5x_20", 0x1fffff, 44, 36000},
	{ProtoRc5sz, "rc5_sz", 0x2fff, 28, 36000},
	{ProtoSony12, "sony12", 0xfff, 26, 40000},
	{ProtoSony15, "sony15", 0x7fff, 32, 40000},
	{ProtoSony20, "sony20", 0xfffff, 42, 40000},
	{ProtoJvc, "jvc", 0xffff, 36, 38000},
	{ProtoNec, "nec", 0xffffff, 68, 38000},
	{ProtoNecx, "necx", 0xffffff, 68, 38000},
	{ProtoNec32, "nec32", 0xffffffff, 68, 38000},
	{ProtoSanyo, "sanyo", 0x1fffff, 76, 38000},
	{ProtoSharp, "sharp", 0x1fff, 16, 38000},
	{ProtoRc6_0, "rc6_0", 0xffff, 44, 36000},
	{ProtoRc6_6a20, "rc6_6a_20", 0xfffff, 52, 36000},
	{ProtoRc6_6a24, "rc6_6a_24", 0xffffff, 56, 36000},
	{ProtoRc6_6a32, "rc6_6a_32", 0xffffffff, 64, 36000},
	{ProtoRc6mce, "rc6_mce", 0xffffffff, 64, 36000},
	{ProtoXboxDvd, "xbox-dvd", 0xffffffff, 40, 38000},
}

func lookupProtocolInfo(name string) (protocolInfo, bool) {
	for _, p := range protocols {
		if protocolNameLike(p.name, name) {
			return p, true
		}
	}
	return protocolInfo{}, false
}

// ProtocolScancodeMask reports the mask a fixed protocol enforces.
func ProtocolScancodeMask(name string) (uint64, bool) {
	p, ok := lookupProtocolInfo(name)
	return p.scancodeMask, ok
}

// ProtocolCarrier reports a fixed protocol's carrier frequency in Hz.
func ProtocolCarrier(name string) (uint32, bool) {
	p, ok := lookupProtocolInfo(name)
	return p.carrier, ok
}

// vendorPrefixMCE is the RC6-MCE/RC6-6A-32 retagging constant.
const vendorPrefixMCE = 0x800f

// ProtocolScancodeValid canonicalizes a (protocol, scancode) pair, retagging
// NEC<->NECX when the middle two bytes of a 24-bit NEC scancode are not
// bitwise inverses, and RC6-MCE<->RC6-6A-32 on the 0x800f vendor prefix.
func ProtocolScancodeValid(name string, scancode uint64) string {
	switch {
	case protocolNameLike(name, "nec"):
		b1 := byte(scancode >> 8)
		b2 := byte(scancode >> 16)
		if b1 != ^b2 {
			return "necx"
		}
		return "nec"
	case protocolNameLike(name, "necx"):
		b1 := byte(scancode >> 8)
		b2 := byte(scancode >> 16)
		if b1 == ^b2 {
			return "nec"
		}
		return "necx"
	case protocolNameLike(name, "rc6_mce"):
		if uint32(scancode>>16) != vendorPrefixMCE {
			return "rc6_6a_32"
		}
		return "rc6_mce"
	case protocolNameLike(name, "rc6_6a_32"):
		if uint32(scancode>>16) == vendorPrefixMCE {
			return "rc6_mce"
		}
		return "rc6_6a_32"
	default:
		return name
	}
}

// Unit timings, microseconds, per ir-encode.c.
const (
	necUnit   = 562.5
	jvcUnit   = 525
	sanyoUnit = 562.5
	sharpUnit = 40
	sonyUnit  = 600
	rc5Unit   = 888.888
	rc6Unit   = 444.444
)

// EncodeFixed dispatches to the named fixed-parameter encoder, returning the
// generated pulse/space edges or BufferFullError if max is exceeded.
func EncodeFixed(name string, scancode uint64, max int) ([]Duration, error) {
	p, ok := lookupProtocolInfo(name)
	if !ok {
		return nil, &UnknownRemoteError{Name: name}
	}
	switch p.id {
	case ProtoNec, ProtoNecx, ProtoNec32:
		return encodeNecFamily(p, scancode, max)
	case ProtoJvc:
		return encodeJvc(scancode, max)
	case ProtoSanyo:
		return encodeSanyo(scancode, max)
	case ProtoSharp:
		return encodeSharp(scancode, max)
	case ProtoSony12, ProtoSony15, ProtoSony20:
		return encodeSony(p, scancode, max)
	case ProtoRc5, ProtoRc5x20, ProtoRc5sz:
		return encodeRc5Family(p, scancode, max)
	case ProtoRc6_0, ProtoRc6_6a20, ProtoRc6_6a24, ProtoRc6_6a32, ProtoRc6mce:
		return encodeRc6Family(p, scancode, max)
	case ProtoXboxDvd:
		return encodeXboxDvd(scancode, max)
	default:
		return nil, &UnsupportedFamilyError{}
	}
}

func encodeNecFamily(p protocolInfo, scancode uint64, max int) ([]Duration, error) {
	bits := 32
	if p.id != ProtoNec32 {
		bits = 32 // NEC/NECX also transmit a 32-bit frame; the 16-bit NEC
		// scancode is expanded to addr/~addr/cmd/~cmd, the 24-bit NECX
		// scancode to addr-lo/addr-hi/cmd/~cmd.
	}
	var frame uint64
	switch p.id {
	case ProtoNec:
		addr := byte(scancode >> 8)
		cmd := byte(scancode)
		frame = uint64(addr) | uint64(^addr)<<8 | uint64(cmd)<<16 | uint64(^cmd)<<24
	case ProtoNecx:
		lo := byte(scancode)
		hi := byte(scancode >> 8)
		cmd := byte(scancode >> 16)
		frame = uint64(lo) | uint64(hi)<<8 | uint64(cmd)<<16 | uint64(^cmd)<<24
	default: // NEC32: scancode carries the full 32-bit frame verbatim
		frame = scancode
		bits = 32
	}

	timings := irRawTimingsPd{
		headerPulse: 9000, headerSpace: 4500,
		bitPulse:   necUnit,
		bitSpace0:  necUnit,
		bitSpace1:  necUnit * 3,
		trailer:    necUnit,
		msbFirst:   false,
	}
	return genPulseDistance(timings, bits, frame, max)
}

func encodeJvc(scancode uint64, max int) ([]Duration, error) {
	timings := irRawTimingsPd{
		headerPulse: 8400, headerSpace: 4200,
		bitPulse:  jvcUnit,
		bitSpace0: jvcUnit,
		bitSpace1: jvcUnit * 3,
		trailer:   jvcUnit,
		msbFirst:  false,
	}
	return genPulseDistance(timings, 16, scancode, max)
}

func encodeSanyo(scancode uint64, max int) ([]Duration, error) {
	timings := irRawTimingsPd{
		headerPulse: 8 * sanyoUnit, headerSpace: 4 * sanyoUnit,
		bitPulse:  sanyoUnit,
		bitSpace0: sanyoUnit,
		bitSpace1: sanyoUnit * 3,
		trailer:   sanyoUnit,
		msbFirst:  false,
	}
	return genPulseDistance(timings, 21, scancode, max)
}

func encodeSharp(scancode uint64, max int) ([]Duration, error) {
	timings := irRawTimingsPd{
		headerPulse: 0, headerSpace: 0,
		bitPulse:  sharpUnit,
		bitSpace0: sharpUnit * 10,
		bitSpace1: sharpUnit * 20,
		trailer:   sharpUnit,
		msbFirst:  false,
	}
	return genPulseDistance(timings, 13, scancode, max)
}

func encodeSony(p protocolInfo, scancode uint64, max int) ([]Duration, error) {
	bits := 12
	switch p.id {
	case ProtoSony15:
		bits = 15
	case ProtoSony20:
		bits = 20
	}
	timings := irRawTimingsPl{
		headerPulse: 4 * sonyUnit,
		headerSpace: sonyUnit,
		bitSpace:    sonyUnit,
		bitPulse0:   sonyUnit,
		bitPulse1:   2 * sonyUnit,
		msbFirst:    false,
	}
	return genPulseLength(timings, bits, scancode, max)
}

func encodeRc5Family(p protocolInfo, scancode uint64, max int) ([]Duration, error) {
	bits := 13
	if p.id == ProtoRc5x20 {
		bits = 20
	} else if p.id == ProtoRc5sz {
		bits = 13
	}
	timings := irRawTimingsManchester{
		leaderPulse: rc5Unit,
		clock:       rc5Unit,
		invert:      false,
	}
	return genManchester(timings, bits, scancode, max)
}

func encodeRc6Family(p protocolInfo, scancode uint64, max int) ([]Duration, error) {
	bits := 16
	switch p.id {
	case ProtoRc6_6a20:
		bits = 20
	case ProtoRc6_6a24:
		bits = 24
	case ProtoRc6_6a32, ProtoRc6mce:
		bits = 32
	}
	timings := irRawTimingsManchester{
		leaderPulse: 6 * rc6Unit,
		leaderSpace: 2 * rc6Unit,
		clock:       rc6Unit,
		invert:      false,
	}
	return genManchester(timings, bits, scancode, max)
}

func encodeXboxDvd(scancode uint64, max int) ([]Duration, error) {
	var out []Duration
	push := func(v float64, k Kind) error {
		if max >= 0 && len(out) >= max {
			return &BufferFullError{}
		}
		out = append(out, Duration{Value: uint32(v), Kind: k})
		return nil
	}
	if err := push(4000, Pulse); err != nil {
		return nil, err
	}
	if err := push(3900, Space); err != nil {
		return nil, err
	}
	for i := 31; i >= 0; i-- {
		bit := (scancode >> uint(i)) & 1
		if err := push(550, Pulse); err != nil {
			return nil, err
		}
		if bit == 1 {
			if err := push(1900, Space); err != nil {
				return nil, err
			}
		} else {
			if err := push(900, Space); err != nil {
				return nil, err
			}
		}
	}
	if err := push(550, Pulse); err != nil {
		return nil, err
	}
	return out, nil
}
