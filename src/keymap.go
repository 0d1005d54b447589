package irmux

/********************************************************************************
 *
 * Purpose:	The keymap data model consumed by the generic BPF-style
 *		encoders (spec 4.H): a named protocol plus its parameters
 *		and scancode/raw tables.
 *
 * Description:	Grounded on libirctl/src/keymap.h (struct keymap,
 *		protocol_param, scancode_entry, raw_entry).
 *
 *******************************************************************************/

// ProtocolParam is one named integer parameter of a keymap's protocol.
type ProtocolParam struct {
	Name  string
	Value int64
}

// ScancodeEntry maps a decoded scancode to a symbolic keycode.
type ScancodeEntry struct {
	Scancode uint64
	Keycode  string
}

// RawEntry maps a scancode to both a keycode and its raw pulse/space
// pattern, used by raw-pattern keymaps.
type RawEntry struct {
	Scancode uint64
	Keycode  string
	Raw      []uint32
}

// Keymap is one parsed keymap database entry.
type Keymap struct {
	Name      string
	Protocol  string
	Variant   string
	Params    []ProtocolParam
	Scancodes []ScancodeEntry
	Raw       []RawEntry
}

// Param looks up a named parameter, returning fallback when absent.
func (k *Keymap) Param(name string, fallback int64) int64 {
	for _, p := range k.Params {
		if p.Name == name {
			return p.Value
		}
	}
	return fallback
}
