package irmux

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

const rc5ConfigBody = `
begin remote
	name            rc5tv
	bits            13
	flags           RC5
	eps             30
	aeps            100
	one             889 889
	zero            889 889
	gap             100000

	begin codes
		KEY_A                    0x1041
	end codes
end remote
`

func writeConfig(t *testing.T, body string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "rc5tv.lircd.conf")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// TestParseConfigRc5Scenario is testable scenario #4: parsing a
// "begin remote ... end remote" block into a fully populated Remote.
func TestParseConfigRc5Scenario(t *testing.T) {
	path := writeConfig(t, rc5ConfigBody)
	db, err := ParseConfig(path)
	require.NoError(t, err)

	r := db.Get("rc5tv")
	require.NotNil(t, r)
	assert.Equal(t, FamilyRc5, r.Family)
	assert.Equal(t, uint32(13), r.Bits)
	assert.Equal(t, TimingPair{Pulse: 889, Space: 889}, r.One)
	assert.Equal(t, TimingPair{Pulse: 889, Space: 889}, r.Zero)
	assert.Equal(t, uint32(100000), r.Gap)

	require.Len(t, r.Codes, 1)
	assert.Equal(t, "KEY_A", r.Codes[0].Name)
	assert.Equal(t, IrCode(0x1041), r.Codes[0].Code)
}

// TestParseConfigThenDecodeRoundTrip is testable scenario #5: a remote
// parsed from text encodes and decodes back to the same event line.
func TestParseConfigThenDecodeRoundTrip(t *testing.T) {
	path := writeConfig(t, rc5ConfigBody)
	db, err := ParseConfig(path)
	require.NoError(t, err)

	r := db.Get("rc5tv")
	require.NotNil(t, r)

	frame, err := EncodeCode(r, r.Codes[0], 0)
	require.NoError(t, err)

	d := NewFakeDriver(1, ModeMode2)
	d.Push(SpaceDuration(r.Gap))
	d.Push(frame...)
	d.Push(SpaceDuration(r.Gap))
	d.PushEOF()

	ctx := NewContext(d, log.ErrorLevel, nil)
	res, err := Decode(ctx, r)
	require.NoError(t, err)
	require.NotNil(t, res)

	line, err := formatEvent(res)
	require.NoError(t, err)
	assert.Equal(t, "0000000000001041 00 KEY_A rc5tv\n", line)
}

// TestNormalizeFlagsIdempotent is testable invariant #4: normalizing an
// already-normalized remote is a no-op.
func TestNormalizeFlagsIdempotent(t *testing.T) {
	path := writeConfig(t, rc5ConfigBody)
	db1, err := ParseConfig(path)
	require.NoError(t, err)
	r1 := db1.Get("rc5tv")

	db2, err := ParseConfig(path)
	require.NoError(t, err)
	r2 := db2.Get("rc5tv")

	normalizeFlags(r1)
	assert.Equal(t, *r2, *r1)
}

func TestParseConfigMissingGapIsError(t *testing.T) {
	body := `
begin remote
	name  broken
	bits  8
	begin codes
		KEY_A 1
	end codes
end remote
`
	path := writeConfig(t, body)
	_, err := ParseConfig(path)
	require.Error(t, err)
	assert.ErrorAs(t, err, new(*ParseError))
}

func TestParseConfigMissingCodesIsError(t *testing.T) {
	body := `
begin remote
	name  broken
	bits  8
	gap   40000
end remote
`
	path := writeConfig(t, body)
	_, err := ParseConfig(path)
	require.Error(t, err)
}

func TestParseConfigUnbalancedSectionIsError(t *testing.T) {
	body := `
begin remote
	name  broken
	bits  8
	gap   40000
	begin codes
		KEY_A 1
	end codes
`
	path := writeConfig(t, body)
	_, err := ParseConfig(path)
	require.Error(t, err)
}

func TestParseConfigUnknownFlagIsError(t *testing.T) {
	body := `
begin remote
	name    broken
	bits    8
	flags   NOT_A_FLAG
	gap     40000
	begin codes
		KEY_A 1
	end codes
end remote
`
	path := writeConfig(t, body)
	_, err := ParseConfig(path)
	require.Error(t, err)
}

func TestParseFlagsFieldRejectsMultipleProtocols(t *testing.T) {
	r := &Remote{}
	err := parseFlagsField(r, []string{"RC5|RC6"}, 1)
	assert.Error(t, err)
}

func TestParseFlagsFieldCombinesProtocolAndBooleanFlags(t *testing.T) {
	r := &Remote{}
	err := parseFlagsField(r, []string{"SPACE_ENC|CONST_LENGTH|REVERSE"}, 1)
	require.NoError(t, err)
	assert.Equal(t, FamilySpaceEnc, r.Family)
	assert.True(t, r.Flags.ConstLength)
	assert.True(t, r.Flags.Reverse)
}

func TestParseSerialMode(t *testing.T) {
	r := &Remote{}
	require.NoError(t, parseSerialMode(r, "8N1", 1))
	assert.Equal(t, uint32(8), r.BitsInByte)
	assert.Equal(t, byte(0), r.Parity)
	assert.Equal(t, 1.0, r.StopBits)

	r2 := &Remote{}
	require.NoError(t, parseSerialMode(r2, "7E1.5", 1))
	assert.Equal(t, uint32(7), r2.BitsInByte)
	assert.Equal(t, byte('E'), r2.Parity)
	assert.Equal(t, 1.5, r2.StopBits)

	r3 := &Remote{}
	assert.Error(t, parseSerialMode(r3, "8X1", 1))
}

func TestDefineCodeChainedValues(t *testing.T) {
	r := &Remote{}
	require.NoError(t, defineCode(r, "KEY_A", []string{"0x01", "0x02", "0x03"}, 1))
	require.Len(t, r.Codes, 1)
	assert.Equal(t, IrCode(1), r.Codes[0].Code)
	assert.Equal(t, []IrCode{2, 3}, r.Codes[0].Next)
}

func TestSanityChecksMasksCodeAgainstBits(t *testing.T) {
	r := &Remote{
		Name:  "tv",
		Gap:   40000,
		Bits:  4,
		Codes: []*IrNcode{{Name: "KEY_A", Code: 0xFF}},
	}
	require.NoError(t, sanityChecks(r, discardLogger()))
	assert.Equal(t, IrCode(0x0F), r.Codes[0].Code)
}

// TestSanityChecksWarnsOnTruncation is a regression check: a code value that
// doesn't fit in bits is still truncated (not rejected), but now reported at
// Warn on the caller's logger instead of silently rewritten.
func TestSanityChecksWarnsOnTruncation(t *testing.T) {
	r := &Remote{
		Name:  "tv",
		Gap:   40000,
		Bits:  4,
		Codes: []*IrNcode{{Name: "KEY_A", Code: 0xFF}},
	}
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})

	require.NoError(t, sanityChecks(r, logger))
	assert.Equal(t, IrCode(0x0F), r.Codes[0].Code)
	assert.Contains(t, buf.String(), "truncated")
	assert.Contains(t, buf.String(), "KEY_A")
}

func TestSanityChecksRejectsBothToggleFields(t *testing.T) {
	r := &Remote{
		Name:          "tv",
		Gap:           40000,
		Codes:         []*IrNcode{{Name: "KEY_A", Code: 1}},
		ToggleBitMask: 1,
	}
	r.toggleBit = 3
	assert.Error(t, sanityChecks(r, discardLogger()))
}

func TestNormalizeFlagsReverseRewritesCodesOnce(t *testing.T) {
	r := &Remote{
		Family: FamilySpaceEnc,
		Flags:  Flags{Reverse: true},
		Bits:   4,
		Codes:  []*IrNcode{{Name: "KEY_A", Code: 0b0001}},
	}
	normalizeFlags(r)
	assert.Equal(t, IrCode(0b1000), r.Codes[0].Code)
	assert.False(t, r.Flags.Reverse)
	assert.True(t, r.Flags.CompatReverse)
}

func TestNormalizeFlagsToggleBitBecomesMask(t *testing.T) {
	r := &Remote{}
	r.toggleBit = 3
	normalizeFlags(r)
	assert.Equal(t, IrCode(1<<2), r.ToggleBitMask)
	assert.Equal(t, uint32(0), r.toggleBit)
}

func TestNormalizeFlagsRc6MaskDerivedFromToggleBit(t *testing.T) {
	r := &Remote{Family: FamilyRc6}
	r.toggleBit = 16
	normalizeFlags(r)
	assert.Equal(t, IrCode(1<<15), r.Rc6Mask)
}

func TestNormalizeFlagsSerialDefaultsQuantumAndBitsInByte(t *testing.T) {
	r := &Remote{Family: FamilySerial, Baud: 9600}
	normalizeFlags(r)
	assert.Equal(t, uint32(1_000_000/9600), r.Zero.Pulse)
	assert.Equal(t, uint32(1_000_000/9600), r.Zero.Space)
	assert.Equal(t, uint32(8), r.BitsInByte)
}

func TestCalculateSignalLengthsPopulatesDerivedFields(t *testing.T) {
	r := &Remote{
		Name:   "tv",
		Family: FamilySpaceEnc,
		Bits:   8,
		Eps:    30, Aeps: 100,
		Header: TimingPair{Pulse: 9000, Space: 4500},
		One:    TimingPair{Pulse: 560, Space: 1690},
		Zero:   TimingPair{Pulse: 560, Space: 560},
		Ptrail: 560,
		Gap:    40000,
		Codes:  []*IrNcode{{Name: "KEY_POWER", Code: 0xA5}},
	}
	calculateSignalLengths(r)
	assert.Greater(t, r.MinTotalSignalLength, uint32(0))
	assert.GreaterOrEqual(t, r.MaxTotalSignalLength, r.MinTotalSignalLength)
	assert.Equal(t, uint32(560), r.MinPulseLength)
	assert.Equal(t, uint32(9000), r.MaxPulseLength)
}

func TestSimulateRawLengthsFromRawCodes(t *testing.T) {
	r := &Remote{
		Name:   "remote1",
		Family: FamilyRaw,
		Gap:    40000,
		Codes: []*IrNcode{{
			Name: "KEY_A",
			Raw: []Duration{
				PulseDuration(100), SpaceDuration(50),
				PulseDuration(200), SpaceDuration(25),
			},
		}},
	}
	simulateRawLengths(r)
	assert.Equal(t, uint32(375), r.MinTotalSignalLength)
	assert.Equal(t, uint32(100), r.MinPulseLength)
	assert.Equal(t, uint32(200), r.MaxPulseLength)
	assert.Equal(t, uint32(25), r.MinSpaceLength)
	assert.Equal(t, uint32(50), r.MaxSpaceLength)
}

func TestResolveIncludeRelativeToIncludingFile(t *testing.T) {
	got := resolveInclude("/etc/lirc/lircd.conf.d/main.conf", "extra.conf")
	assert.Equal(t, "/etc/lirc/lircd.conf.d/extra.conf", got)

	abs := resolveInclude("/etc/lirc/lircd.conf.d/main.conf", "/opt/other.conf")
	assert.Equal(t, "/opt/other.conf", abs)
}

func TestParseConfigFollowsInclude(t *testing.T) {
	dir := t.TempDir()
	includedPath := filepath.Join(dir, "included.conf")
	require.NoError(t, os.WriteFile(includedPath, []byte(rc5ConfigBody), 0o644))

	mainBody := "include \"included.conf\"\n"
	mainPath := filepath.Join(dir, "main.conf")
	require.NoError(t, os.WriteFile(mainPath, []byte(mainBody), 0o644))

	db, err := ParseConfig(mainPath)
	require.NoError(t, err)
	assert.NotNil(t, db.Get("rc5tv"))
}
