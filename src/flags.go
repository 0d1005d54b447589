package irmux

/********************************************************************************
 *
 * Purpose:	The remote's protocol-family tag and its orthogonal boolean
 *		flags, plus the case-insensitive name table the config
 *		parser consults.
 *
 * Description:	The original C source keeps every flag, including the
 *		protocol selector, in one bitmask (all_flags[] in
 *		config_file.c). We split the mutually-exclusive protocol
 *		selector out into its own enum (ProtocolFamily) and keep the
 *		rest as a small struct of booleans, per the "Variant-over-
 *		family dispatch" design note.
 *
 *******************************************************************************/

import "strings"

// ProtocolFamily is the mutually-exclusive decode/encode strategy a remote
// selects. Exactly one is active per Remote.
type ProtocolFamily int

const (
	FamilyRaw ProtocolFamily = iota
	FamilySpaceEnc
	FamilySpaceFirst
	FamilyRc5
	FamilyRc6
	FamilyRcMm
	FamilyGrundig
	FamilyBangOlufsen
	FamilySerial
	FamilyXmp
)

func (f ProtocolFamily) String() string {
	switch f {
	case FamilyRaw:
		return "RAW_CODES"
	case FamilySpaceEnc:
		return "SPACE_ENC"
	case FamilySpaceFirst:
		return "SPACE_FIRST"
	case FamilyRc5:
		return "RC5"
	case FamilyRc6:
		return "RC6"
	case FamilyRcMm:
		return "RCMM"
	case FamilyGrundig:
		return "GRUNDIG"
	case FamilyBangOlufsen:
		return "BO"
	case FamilySerial:
		return "SERIAL"
	case FamilyXmp:
		return "XMP"
	default:
		return "UNKNOWN"
	}
}

// protocolFlagNames maps a case-insensitive flag token to the family it
// selects. SHIFT_ENC is a documented alias for RC5.
var protocolFlagNames = map[string]ProtocolFamily{
	"RAW_CODES":   FamilyRaw,
	"SPACE_ENC":   FamilySpaceEnc,
	"SPACE_FIRST": FamilySpaceFirst,
	"RC5":         FamilyRc5,
	"SHIFT_ENC":   FamilyRc5,
	"RC6":         FamilyRc6,
	"RCMM":        FamilyRcMm,
	"GRUNDIG":     FamilyGrundig,
	"BO":          FamilyBangOlufsen,
	"SERIAL":      FamilySerial,
	"XMP":         FamilyXmp,
}

// Flags holds the orthogonal booleans that apply regardless of family.
type Flags struct {
	Reverse       bool
	NoHeadRep     bool
	NoFootRep     bool
	ConstLength   bool
	RepeatHeader  bool
	CompatReverse bool
}

// flagTokenNames maps a case-insensitive non-protocol flag token to a
// setter on Flags, mirroring config_file.c's all_flags[] table.
var flagTokenNames = map[string]func(*Flags){
	"REVERSE":       func(f *Flags) { f.Reverse = true },
	"NO_HEAD_REP":   func(f *Flags) { f.NoHeadRep = true },
	"NO_FOOT_REP":   func(f *Flags) { f.NoFootRep = true },
	"CONST_LENGTH":  func(f *Flags) { f.ConstLength = true },
	"REPEAT_HEADER": func(f *Flags) { f.RepeatHeader = true },
	"COMPAT_REVERSE": func(f *Flags) {
		f.CompatReverse = true
	},
}

// lookupFlagToken resolves one whitespace-delimited flag token, case
// insensitively. ok is false for an unrecognized token.
func lookupFlagToken(tok string) (family ProtocolFamily, isFamily bool, setter func(*Flags), ok bool) {
	upper := strings.ToUpper(strings.TrimSpace(tok))
	if fam, isFam := protocolFlagNames[upper]; isFam {
		return fam, true, nil, true
	}
	if fn, isFlag := flagTokenNames[upper]; isFlag {
		return 0, false, fn, true
	}
	return 0, false, nil, false
}

// protocolNameLike is the original ir-encode.c str_like comparison: strip
// hyphen/underscore/space from both sides and case-fold before comparing.
// Used for the fixed-protocol name lookup in protocols.go (spec 4.G).
func protocolNameLike(a, b string) bool {
	return foldProtocolName(a) == foldProtocolName(b)
}

func foldProtocolName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case '-', '_', ' ':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
