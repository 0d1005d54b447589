package irmux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDurationWireRoundTrip(t *testing.T) {
	cases := []Duration{
		PulseDuration(1234),
		SpaceDuration(5678),
		{Value: 42, Kind: Timeout},
		{Value: 0, Kind: Overflow},
		{Value: 38000, Kind: Frequency},
		{Value: 0, Kind: EndOfStream},
	}
	for _, d := range cases {
		got := DurationFromWire(d.Wire())
		assert.Equal(t, d, got)
	}
}

func TestDurationWireRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kind := Kind(rapid.IntRange(0, 5).Draw(rt, "kind"))
		value := rapid.Uint32Range(0, 0x00ff_ffff).Draw(rt, "value")
		d := Duration{Value: value, Kind: kind}
		got := DurationFromWire(d.Wire())
		assert.Equal(rt, d, got)
	})
}

func TestDurationPredicates(t *testing.T) {
	assert.True(t, PulseDuration(1).IsPulse())
	assert.False(t, PulseDuration(1).IsSpace())
	assert.True(t, SpaceDuration(1).IsSpace())
	assert.True(t, Duration{Kind: Timeout}.IsTimeout())
	assert.True(t, Duration{Kind: Overflow}.IsOverflow())
	assert.True(t, Duration{Kind: Frequency}.IsFrequency())
	assert.True(t, Duration{Kind: EndOfStream}.IsEndOfStream())
}

func TestDurationString(t *testing.T) {
	assert.Equal(t, "100p", PulseDuration(100).String())
	assert.Equal(t, "200s", SpaceDuration(200).String())
}
