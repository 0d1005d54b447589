package irmux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodePulseDistanceBits reconstructs an LSB-first pulse-distance frame
// from its raw edges (skipping the header pair and the trailing pulse), for
// asserting against a known scancode without re-deriving genPulseDistance.
func decodePulseDistanceBits(edges []Duration, n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		space := edges[2+2*i+1].Value
		if space > 1000 {
			v |= 1 << uint(i)
		}
	}
	return v
}

func TestEncodeFixedNecScenario(t *testing.T) {
	edges, err := EncodeFixed("nec", 0x1234, -1)
	require.NoError(t, err)
	require.Len(t, edges, 67)

	assert.Equal(t, PulseDuration(9000), edges[0])
	assert.Equal(t, SpaceDuration(4500), edges[1])
	assert.True(t, edges[len(edges)-1].IsPulse())

	frame := decodePulseDistanceBits(edges, 32)
	assert.Equal(t, uint64(0x12), frame&0xff)
	assert.Equal(t, uint64(0xed), (frame>>8)&0xff)
	assert.Equal(t, uint64(0x34), (frame>>16)&0xff)
	assert.Equal(t, uint64(0xcb), (frame>>24)&0xff)
}

func TestEncodeFixedSonyScenario(t *testing.T) {
	edges, err := EncodeFixed("sony12", 0x015, -1)
	require.NoError(t, err)
	// header (2) + 12 bits * 2 edges - 1 dropped trailing inter-bit space.
	assert.Len(t, edges, 25)
	assert.True(t, edges[0].IsPulse())
}

func TestEncodeFixedRc5Scenario(t *testing.T) {
	edges, err := EncodeFixed("rc5", 0x1041, -1)
	require.NoError(t, err)
	require.NotEmpty(t, edges)

	assert.True(t, edges[0].IsPulse())
	assert.InDelta(t, rc5Unit, float64(edges[0].Value), 1)

	p, ok := lookupProtocolInfo("rc5")
	require.True(t, ok)
	assert.LessOrEqual(t, len(edges), p.maxEdges)

	var sum uint32
	for _, e := range edges {
		sum += e.Value
	}
	assert.Positive(t, sum)
}

func TestEncodeFixedUnknownProtocol(t *testing.T) {
	_, err := EncodeFixed("not-a-real-protocol", 0, -1)
	assert.ErrorAs(t, err, new(*UnknownRemoteError))
}

func TestEncodeFixedRespectsMax(t *testing.T) {
	_, err := EncodeFixed("nec", 0x1234, 5)
	assert.ErrorAs(t, err, new(*BufferFullError))
}

func TestProtocolScancodeMaskAndCarrier(t *testing.T) {
	mask, ok := ProtocolScancodeMask("sharp")
	require.True(t, ok)
	assert.Equal(t, uint64(0x1fff), mask)

	carrier, ok := ProtocolCarrier("jvc")
	require.True(t, ok)
	assert.Equal(t, uint32(38000), carrier)

	_, ok = ProtocolScancodeMask("nonexistent")
	assert.False(t, ok)
}

func TestProtocolScancodeValidNecRetagging(t *testing.T) {
	// bits 8-15 are the bitwise inverse of bits 16-23 -> canonical nec
	assert.Equal(t, "nec", ProtocolScancodeValid("nec", 0xff00))
	// not inverses -> necx
	assert.Equal(t, "necx", ProtocolScancodeValid("nec", 0x001234))
}

func TestProtocolScancodeValidRc6MceRetagging(t *testing.T) {
	assert.Equal(t, "rc6_mce", ProtocolScancodeValid("rc6_mce", uint64(vendorPrefixMCE)<<16))
	assert.Equal(t, "rc6_6a_32", ProtocolScancodeValid("rc6_mce", 0x1234<<16))
}
