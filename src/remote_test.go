package irmux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestBitCount(t *testing.T) {
	assert.Equal(t, uint32(0), bitCount(0))
	assert.Equal(t, uint32(1), bitCount(1))
	assert.Equal(t, uint32(8), bitCount(0xff))
	assert.Equal(t, uint32(9), bitCount(0x100))
	assert.Equal(t, uint32(64), bitCount(^IrCode(0)))
}

func TestBitsSet(t *testing.T) {
	assert.Equal(t, uint32(0), bitsSet(0))
	assert.Equal(t, uint32(8), bitsSet(0xff))
	assert.Equal(t, uint32(1), bitsSet(0x100))
}

func TestGenMask(t *testing.T) {
	assert.Equal(t, IrCode(0), genMask(0))
	assert.Equal(t, IrCode(0xff), genMask(8))
	assert.Equal(t, IrCode(0x1fff), genMask(13))
	assert.Equal(t, ^IrCode(0), genMask(64))
}

func TestReverseBits(t *testing.T) {
	assert.Equal(t, IrCode(0x80), reverseBits(0x01, 8))
	assert.Equal(t, IrCode(0x01), reverseBits(0x80, 8))
	assert.Equal(t, IrCode(0), reverseBits(0, 8))
	// reversing twice over the same width is the identity.
	rapid.Check(t, func(rt *rapid.T) {
		width := uint32(rapid.IntRange(1, 32).Draw(rt, "width"))
		v := IrCode(rapid.Uint64Range(0, uint64(genMask(width))).Draw(rt, "value"))
		assert.Equal(rt, v, reverseBits(reverseBits(v, width), width))
	})
}

func TestPayloadWidth(t *testing.T) {
	r := &Remote{PreDataBits: 4, Bits: 8, PostDataBits: 2}
	assert.Equal(t, uint32(14), r.payloadWidth())
}

func TestMinMaxGap(t *testing.T) {
	r := &Remote{Gap: 100000, Gap2: 0}
	assert.Equal(t, uint32(100000), r.minGap())
	assert.Equal(t, uint32(100000), r.maxGap())

	r2 := &Remote{Gap: 100000, Gap2: 90000}
	assert.Equal(t, uint32(90000), r2.minGap())
	assert.Equal(t, uint32(100000), r2.maxGap())

	r3 := &Remote{Gap: 100000, Gap2: 110000}
	assert.Equal(t, uint32(100000), r3.minGap())
	assert.Equal(t, uint32(110000), r3.maxGap())
}

func TestHasPredicates(t *testing.T) {
	r := &Remote{}
	assert.False(t, r.hasHeader())
	assert.False(t, r.hasFoot())
	assert.False(t, r.hasRepeat())
	assert.False(t, r.hasPre())
	assert.False(t, r.hasPost())
	assert.False(t, r.hasToggleBitMask())
	assert.False(t, r.hasIgnoreMask())
	assert.False(t, r.hasToggleMask())
	assert.False(t, r.hasRc6Mask())
	assert.False(t, r.hasRepeatMask())

	r.Header = TimingPair{Pulse: 9000, Space: 4500}
	assert.True(t, r.hasHeader())
	r.ToggleBitMask = 0x10
	assert.True(t, r.hasToggleBitMask())
}

// TestHasHeaderRequiresBothComponents is a regression check: a header with
// only one of pulse/space configured is not an immediately-validated pair —
// it takes the deferred-pending path in decodeFrame/encodeFrame instead.
func TestHasHeaderRequiresBothComponents(t *testing.T) {
	r := &Remote{Header: TimingPair{Pulse: 9000, Space: 0}}
	assert.False(t, r.hasHeader())

	r2 := &Remote{Pre: TimingPair{Pulse: 500, Space: 0}}
	assert.False(t, r2.hasPre())
}

func TestGetDutyCycleDefaultsTo50(t *testing.T) {
	r := &Remote{}
	assert.Equal(t, uint32(50), r.getDutyCycle())
	r.DutyCycle = 33
	assert.Equal(t, uint32(33), r.getDutyCycle())
}

func TestByNameCaseInsensitive(t *testing.T) {
	r := &Remote{Codes: []*IrNcode{{Name: "KEY_Power", Code: 1}}}
	assert.NotNil(t, r.byName("key_power"))
	assert.Nil(t, r.byName("key_volup"))
}

func TestToggleMaskStateAdvance(t *testing.T) {
	s := ToggleStart
	s = s.advance()
	assert.Equal(t, ToggleFirstHalf, s)
	s = s.advance()
	assert.Equal(t, ToggleSecondHalf, s)
	s = s.advance()
	assert.Equal(t, ToggleHeldRepeat, s)
	s = s.advance()
	assert.Equal(t, ToggleSecondHalf, s)
}
