package irmux

/********************************************************************************
 *
 * Purpose:	The keymap/remote-config parser (spec 4.B, 6): a line-
 *		oriented, section-style grammar reader, adapted from the
 *		same config-file-reading idiom used for daemon configuration
 *		elsewhere in this tree (bufio scanning, strings.Fields
 *		tokenizing, case-insensitive keyword dispatch).
 *
 * Description:	Grounded on liblircd/src/config_file.c in full: all_flags[],
 *		s_strtocode/s_strtou32/s_strtoi/s_strtoui/s_strtolirc_t,
 *		parseFlags, defineRemote, sanityChecks, remote_bits_cmp/
 *		sort_by_bit_count, lirc_parse_include/lirc_parse_relative,
 *		read_config_recursive, and the post-parse normalization block
 *		including calculate_signal_lengths.
 *
 *******************************************************************************/

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	maxIncludeDepth = 10
	maxLineLen      = 4096
)

type sectionID int

const (
	idNone sectionID = iota
	idRemote
	idCodes
	idRawCodes
)

// parseState threads the line-oriented descent through includes.
type parseState struct {
	db     *RemoteDB
	depth  int
	lineNo int
}

// ParseConfig reads fname and returns the remotes it defines, normalized and
// sorted per spec 4.B/4.C. A *ParseError aborts the whole parse; no partial
// remotes are returned. Masked/truncated fields are discarded silently; use
// ParseConfigWithLogger to have them reported.
func ParseConfig(fname string) (*RemoteDB, error) {
	return ParseConfigWithLogger(fname, log.NewWithOptions(io.Discard, log.Options{}))
}

// ParseConfigWithLogger is ParseConfig, but sanityChecks' masking of
// pre/post/code data against their configured bit widths is reported at Warn
// on logger instead of applied silently, mirroring sanityChecks()' fprintf
// warnings to stderr in the original.
func ParseConfigWithLogger(fname string, logger *log.Logger) (*RemoteDB, error) {
	db := NewRemoteDB()
	st := &parseState{db: db}
	if err := st.readRecursive(fname); err != nil {
		return nil, err
	}
	for _, r := range db.All() {
		if r.Name == lircPseudoRemoteName {
			continue
		}
		if err := sanityChecks(r, logger); err != nil {
			return nil, err
		}
		normalizeFlags(r)
		calculateSignalLengths(r)
	}
	db.Sort()
	return db, nil
}

// readRecursive implements read_config_recursive: fgets-equivalent line
// loop, '#' comments, token-based dispatch, include/begin/end handling.
func (st *parseState) readRecursive(fname string) error {
	st.depth++
	defer func() { st.depth-- }()
	if st.depth > maxIncludeDepth {
		return &ParseError{Line: st.lineNo, Reason: "include nesting too deep"}
	}

	f, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, maxLineLen), maxLineLen)

	section := idNone
	var remote *Remote
	var rawButton *IrNcode

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		st.lineNo = lineNo
		line := scanner.Text()
		if len(line) >= maxLineLen {
			return &ParseError{Line: lineNo, Reason: "line too long"}
		}
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		keyword := strings.ToLower(fields[0])
		args := fields[1:]

		switch keyword {
		case "include":
			if len(args) != 1 {
				return &ParseError{Line: lineNo, Reason: "include requires one path"}
			}
			path := stripQuotes(args[0])
			resolved := resolveInclude(fname, path)
			matches, _ := filepath.Glob(resolved)
			if len(matches) == 0 {
				matches = []string{resolved}
			}
			for _, m := range matches {
				if err := st.readRecursive(m); err != nil {
					return err
				}
			}
			continue

		case "begin":
			if len(args) == 0 {
				return &ParseError{Line: lineNo, Reason: "begin requires a section name"}
			}
			switch strings.ToLower(args[0]) {
			case "remote":
				if section != idNone {
					return &ParseError{Line: lineNo, Reason: "unbalanced begin remote"}
				}
				section = idRemote
				remote = &Remote{Eps: 30, Aeps: 100}
			case "codes":
				if section != idRemote {
					return &ParseError{Line: lineNo, Reason: "begin codes outside remote"}
				}
				section = idCodes
			case "raw_codes":
				if section != idRemote {
					return &ParseError{Line: lineNo, Reason: "begin raw_codes outside remote"}
				}
				section = idRawCodes
				rawButton = nil
			default:
				return &ParseError{Line: lineNo, Reason: "unknown section " + args[0]}
			}
			continue

		case "end":
			if len(args) == 0 {
				return &ParseError{Line: lineNo, Reason: "end requires a section name"}
			}
			switch strings.ToLower(args[0]) {
			case "remote":
				if section != idRemote {
					return &ParseError{Line: lineNo, Reason: "unbalanced end remote"}
				}
				if remote == nil || remote.Name == "" {
					return &ParseError{Line: lineNo, Reason: "remote missing name"}
				}
				st.db.Add(remote)
				remote = nil
				section = idNone
			case "codes":
				if section != idCodes {
					return &ParseError{Line: lineNo, Reason: "unbalanced end codes"}
				}
				section = idRemote
			case "raw_codes":
				if section != idRawCodes {
					return &ParseError{Line: lineNo, Reason: "unbalanced end raw_codes"}
				}
				section = idRemote
				rawButton = nil
			default:
				return &ParseError{Line: lineNo, Reason: "unknown section " + args[0]}
			}
			continue
		}

		switch section {
		case idRemote:
			if err := defineRemoteField(remote, keyword, args, lineNo); err != nil {
				return err
			}
		case idCodes:
			if err := defineCode(remote, keyword, args, lineNo); err != nil {
				return err
			}
		case idRawCodes:
			if keyword == "name" {
				if len(args) != 1 {
					return &ParseError{Line: lineNo, Reason: "raw_codes name requires a button name"}
				}
				nc := &IrNcode{Name: args[0]}
				remote.Codes = append(remote.Codes, nc)
				rawButton = nc
				continue
			}
			if rawButton == nil {
				return &ParseError{Line: lineNo, Reason: "raw signal before name"}
			}
			for _, tok := range fields {
				v, err := parseUint32(tok)
				if err != nil {
					return &ParseError{Line: lineNo, Reason: "bad raw duration " + tok}
				}
				kind := Pulse
				if len(rawButton.Raw)%2 == 1 {
					kind = Space
				}
				rawButton.Raw = append(rawButton.Raw, Duration{Value: v, Kind: kind})
			}
		default:
			return &ParseError{Line: lineNo, Reason: "token outside any section: " + keyword}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if section != idNone {
		return &ParseError{Line: st.lineNo, Reason: "unbalanced section at end of file"}
	}
	return nil
}

func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// resolveInclude resolves a glob/path relative to the including file's
// directory, per lirc_parse_relative.
func resolveInclude(including, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(including), path)
}

func parseUint64(tok string) (uint64, error) {
	return strconv.ParseUint(tok, 0, 64)
}

func parseUint32(tok string) (uint32, error) {
	v, err := strconv.ParseUint(tok, 0, 32)
	return uint32(v), err
}

func parseTimingPair(args []string, lineNo int, keyword string) (TimingPair, error) {
	if len(args) != 2 {
		return TimingPair{}, &ParseError{Line: lineNo, Reason: keyword + " requires pulse and space"}
	}
	p, err := parseUint32(args[0])
	if err != nil {
		return TimingPair{}, &ParseError{Line: lineNo, Reason: "bad pulse for " + keyword}
	}
	s, err := parseUint32(args[1])
	if err != nil {
		return TimingPair{}, &ParseError{Line: lineNo, Reason: "bad space for " + keyword}
	}
	return TimingPair{Pulse: p, Space: s}, nil
}

// defineRemoteField sets one field of a Remote from a "begin remote" line,
// mirroring defineRemote's exhaustive keyword switch.
func defineRemoteField(r *Remote, keyword string, args []string, lineNo int) error {
	one := func() (string, error) {
		if len(args) != 1 {
			return "", &ParseError{Line: lineNo, Reason: keyword + " requires one value"}
		}
		return args[0], nil
	}

	switch keyword {
	case "name":
		v, err := one()
		if err != nil {
			return err
		}
		r.Name = v
	case "driver":
		v, err := one()
		if err != nil {
			return err
		}
		r.Driver = v
	case "bits":
		v, err := one()
		if err != nil {
			return err
		}
		n, err := parseUint32(v)
		if err != nil {
			return &ParseError{Line: lineNo, Reason: "bad bits"}
		}
		r.Bits = n
	case "flags":
		return parseFlagsField(r, args, lineNo)
	case "eps":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint32(v)
		r.Eps = n
	case "aeps":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint32(v)
		r.Aeps = n
	case "header":
		tp, err := parseTimingPair(args, lineNo, keyword)
		if err != nil {
			return err
		}
		r.Header = tp
	case "one":
		tp, err := parseTimingPair(args, lineNo, keyword)
		if err != nil {
			return err
		}
		r.One = tp
	case "zero":
		tp, err := parseTimingPair(args, lineNo, keyword)
		if err != nil {
			return err
		}
		r.Zero = tp
	case "two":
		tp, err := parseTimingPair(args, lineNo, keyword)
		if err != nil {
			return err
		}
		r.Two = tp
	case "three":
		tp, err := parseTimingPair(args, lineNo, keyword)
		if err != nil {
			return err
		}
		r.Three = tp
	case "foot":
		tp, err := parseTimingPair(args, lineNo, keyword)
		if err != nil {
			return err
		}
		r.Foot = tp
	case "pre":
		tp, err := parseTimingPair(args, lineNo, keyword)
		if err != nil {
			return err
		}
		r.Pre = tp
	case "post":
		tp, err := parseTimingPair(args, lineNo, keyword)
		if err != nil {
			return err
		}
		r.Post = tp
	case "repeat":
		tp, err := parseTimingPair(args, lineNo, keyword)
		if err != nil {
			return err
		}
		r.Repeat = tp
	case "plead":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint32(v)
		r.Plead = n
	case "ptrail":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint32(v)
		r.Ptrail = n
	case "pre_data_bits":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint32(v)
		r.PreDataBits = n
	case "pre_data":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint64(v)
		r.PreData = IrCode(n)
	case "post_data_bits":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint32(v)
		r.PostDataBits = n
	case "post_data":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint64(v)
		r.PostData = IrCode(n)
	case "gap":
		if len(args) < 1 || len(args) > 2 {
			return &ParseError{Line: lineNo, Reason: "gap requires one or two values"}
		}
		n, _ := parseUint32(args[0])
		r.Gap = n
		if len(args) == 2 {
			n2, _ := parseUint32(args[1])
			r.Gap2 = n2
		}
	case "repeat_gap":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint32(v)
		r.RepeatGap = n
	case "toggle_bit_mask":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint64(v)
		r.ToggleBitMask = IrCode(n)
	case "toggle_bit":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint32(v)
		r.toggleBit = n
	case "toggle_mask":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint64(v)
		r.ToggleMask = IrCode(n)
	case "ignore_mask":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint64(v)
		r.IgnoreMask = IrCode(n)
	case "repeat_mask":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint64(v)
		r.RepeatMask = IrCode(n)
	case "rc6_mask":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint64(v)
		r.Rc6Mask = IrCode(n)
	case "frequency":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint32(v)
		r.Freq = n
	case "duty_cycle":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint32(v)
		r.DutyCycle = n
	case "suppress_repeat":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint32(v)
		r.SuppressRepeat = n
	case "min_repeat":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint32(v)
		r.MinRepeat = n
	case "min_code_repeat":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint32(v)
		r.MinCodeRepeat = n
	case "manual_sort":
		v, err := one()
		if err != nil {
			return err
		}
		n, _ := parseUint32(v)
		r.ManualSort = n != 0
	case "serial_mode":
		v, err := one()
		if err != nil {
			return err
		}
		return parseSerialMode(r, v, lineNo)
	case "dyncodes_name":
		v, err := one()
		if err != nil {
			return err
		}
		r.DyncodesName = v
	default:
		return &ParseError{Line: lineNo, Reason: "unknown keyword " + keyword}
	}
	return nil
}

// parseFlagsField parses "flags FOO|BAR|BAZ" (or space separated), enforcing
// mutual exclusivity of protocol-selector flags.
func parseFlagsField(r *Remote, args []string, lineNo int) error {
	joined := strings.Join(args, " ")
	toks := strings.FieldsFunc(joined, func(c rune) bool { return c == '|' || c == ' ' || c == ',' })
	sawFamily := false
	for _, tok := range toks {
		fam, isFam, setter, ok := lookupFlagToken(tok)
		if !ok {
			return &ParseError{Line: lineNo, Reason: "unknown flag " + tok}
		}
		if isFam {
			if sawFamily {
				return &ParseError{Line: lineNo, Reason: "multiple protocol flags"}
			}
			sawFamily = true
			r.Family = fam
			continue
		}
		setter(&r.Flags)
	}
	return nil
}

func parseSerialMode(r *Remote, mode string, lineNo int) error {
	// "8N1", "7E1.5", ...
	if len(mode) < 3 {
		return &ParseError{Line: lineNo, Reason: "bad serial_mode " + mode}
	}
	bits, err := strconv.Atoi(mode[:1])
	if err != nil {
		return &ParseError{Line: lineNo, Reason: "bad serial_mode bits"}
	}
	r.BitsInByte = uint32(bits)
	switch mode[1] {
	case 'N', 'n':
		r.Parity = 0
	case 'E', 'e':
		r.Parity = 'E'
	case 'O', 'o':
		r.Parity = 'O'
	default:
		return &ParseError{Line: lineNo, Reason: "bad serial_mode parity"}
	}
	stop, err := strconv.ParseFloat(mode[2:], 64)
	if err != nil {
		return &ParseError{Line: lineNo, Reason: "bad serial_mode stop bits"}
	}
	r.StopBits = stop
	return nil
}

// defineCode handles one line within "begin codes": a button name followed
// by one or more code values (chained-frame buttons list more than one).
func defineCode(r *Remote, keyword string, args []string, lineNo int) error {
	if len(args) == 0 {
		return &ParseError{Line: lineNo, Reason: "code line missing value"}
	}
	nc := &IrNcode{Name: keyword}
	first, err := parseUint64(args[0])
	if err != nil {
		return &ParseError{Line: lineNo, Reason: "bad code value"}
	}
	nc.Code = IrCode(first)
	for _, extra := range args[1:] {
		v, err := parseUint64(extra)
		if err != nil {
			return &ParseError{Line: lineNo, Reason: "bad chained code value"}
		}
		nc.Next = append(nc.Next, IrCode(v))
	}
	r.Codes = append(r.Codes, nc)
	return nil
}

// sanityChecks mirrors sanityChecks(): name/gap presence, masking of pre/
// post/code against their bit widths (truncating with a warning, not
// failing), empty-codes-is-error.
func sanityChecks(r *Remote, logger *log.Logger) error {
	if r.Name == "" {
		return &ParseError{Reason: "remote missing name"}
	}
	if r.Gap == 0 {
		return &ParseError{Reason: fmt.Sprintf("remote %q has zero gap", r.Name)}
	}
	if len(r.Codes) == 0 {
		return &ParseError{Reason: fmt.Sprintf("remote %q has no codes", r.Name)}
	}

	if masked := r.PreData & genMask(r.PreDataBits); masked != r.PreData {
		logger.Warn("pre_data truncated to pre_data_bits", "remote", r.Name, "from", r.PreData, "to", masked)
		r.PreData = masked
	}
	if masked := r.PostData & genMask(r.PostDataBits); masked != r.PostData {
		logger.Warn("post_data truncated to post_data_bits", "remote", r.Name, "from", r.PostData, "to", masked)
		r.PostData = masked
	}
	for _, c := range r.Codes {
		if masked := c.Code & genMask(r.Bits); masked != c.Code {
			logger.Warn("code truncated to bits", "remote", r.Name, "button", c.Name, "from", c.Code, "to", masked)
			c.Code = masked
		}
	}

	if r.toggleBit != 0 && r.ToggleBitMask != 0 {
		return &ParseError{Reason: fmt.Sprintf("remote %q sets both toggle_bit and toggle_bit_mask", r.Name)}
	}
	return nil
}

// normalizeFlags mirrors the config_file.c post-parse normalization block.
func normalizeFlags(r *Remote) {
	if r.Flags.Reverse && r.Family != FamilyRaw {
		r.PreData = reverseBits(r.PreData, r.PreDataBits)
		r.PostData = reverseBits(r.PostData, r.PostDataBits)
		for _, c := range r.Codes {
			c.Code = reverseBits(c.Code, r.Bits)
		}
		r.Flags.Reverse = false
		r.Flags.CompatReverse = true
	}

	if r.Family == FamilyRc6 && r.Rc6Mask == 0 && r.toggleBit > 0 {
		r.Rc6Mask = 1 << (r.toggleBit - 1)
	}

	if r.toggleBit > 0 {
		r.ToggleBitMask = 1 << (r.toggleBit - 1)
		r.toggleBit = 0
	}

	if r.Family == FamilySerial {
		if r.Baud > 0 {
			quantum := uint32(1_000_000 / r.Baud)
			if r.Zero.Pulse == 0 {
				r.Zero.Pulse = quantum
			}
			if r.Zero.Space == 0 {
				r.Zero.Space = quantum
			}
		}
		if r.BitsInByte == 0 {
			r.BitsInByte = 8
		}
	}
}

// calculateSignalLengths simulates the encoder for every code (including
// chained successor frames) with repeat in {0,1}, folding the observed
// durations into the eight derived min/max fields (spec 4.B, SPEC_FULL.md
// C.7).
func calculateSignalLengths(r *Remote) {
	if r.Family == FamilyGrundig || r.Family == FamilyBangOlufsen || r.Family == FamilySerial || r.Family == FamilyRaw {
		if r.Family == FamilyRaw {
			simulateRawLengths(r)
		}
		return
	}

	var minTotal, maxTotal uint32
	var minGap, maxGap uint32 = ^uint32(0), 0
	var minPulse, maxPulse uint32 = ^uint32(0), 0
	var minSpace, maxSpace uint32 = ^uint32(0), 0
	any := false

	for _, c := range r.Codes {
		for _, frame := range chainFrames(c) {
			for repeat := uint32(0); repeat <= 1; repeat++ {
				nc := &IrNcode{Code: frame}
				edges, err := EncodeCode(r, nc, repeat)
				if err != nil {
					continue
				}
				any = true
				var total uint32
				for _, e := range edges {
					total += e.Value
					if e.IsPulse() {
						if e.Value < minPulse {
							minPulse = e.Value
						}
						if e.Value > maxPulse {
							maxPulse = e.Value
						}
					} else if e.IsSpace() {
						if e.Value < minSpace {
							minSpace = e.Value
						}
						if e.Value > maxSpace {
							maxSpace = e.Value
						}
					}
				}
				if total < minTotal || minTotal == 0 {
					minTotal = total
				}
				if total > maxTotal {
					maxTotal = total
				}
				g := r.minGap()
				if g < minGap {
					minGap = g
				}
				if r.maxGap() > maxGap {
					maxGap = r.maxGap()
				}
			}
		}
	}

	if !any {
		return
	}
	r.MinTotalSignalLength = minTotal
	r.MaxTotalSignalLength = maxTotal
	r.MinGapLength = minGap
	r.MaxGapLength = maxGap
	r.MinPulseLength = minPulse
	r.MaxPulseLength = maxPulse
	r.MinSpaceLength = minSpace
	r.MaxSpaceLength = maxSpace
}

func chainFrames(c *IrNcode) []IrCode {
	out := make([]IrCode, 0, len(c.Next)+1)
	out = append(out, c.Code)
	out = append(out, c.Next...)
	return out
}

func simulateRawLengths(r *Remote) {
	var minTotal, maxTotal uint32
	var minPulse, maxPulse uint32 = ^uint32(0), 0
	var minSpace, maxSpace uint32 = ^uint32(0), 0
	any := false
	for _, c := range r.Codes {
		var total uint32
		for _, e := range c.Raw {
			any = true
			total += e.Value
			if e.IsPulse() {
				if e.Value < minPulse {
					minPulse = e.Value
				}
				if e.Value > maxPulse {
					maxPulse = e.Value
				}
			} else {
				if e.Value < minSpace {
					minSpace = e.Value
				}
				if e.Value > maxSpace {
					maxSpace = e.Value
				}
			}
		}
		if total < minTotal || minTotal == 0 {
			minTotal = total
		}
		if total > maxTotal {
			maxTotal = total
		}
	}
	if !any {
		return
	}
	r.MinTotalSignalLength = minTotal
	r.MaxTotalSignalLength = maxTotal
	r.MinPulseLength = minPulse
	r.MaxPulseLength = maxPulse
	r.MinSpaceLength = minSpace
	r.MaxSpaceLength = maxSpace
}
