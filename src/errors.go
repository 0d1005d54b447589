package irmux

/********************************************************************************
 *
 * Purpose:	Error kinds surfaced across the parser, decoder, encoder and
 *		driver boundary.
 *
 *******************************************************************************/

import "fmt"

// ParseError reports a configuration-file syntax or validation failure. The
// whole file's parse aborts and any partially-built remotes are released.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config line %d: %s", e.Line, e.Reason)
}

// BadTimingError reports a decoder expectation that failed to match the
// incoming edge stream. Recoverable: the caller rewinds and tries the next
// remote.
type BadTimingError struct {
	Where string
}

func (e *BadTimingError) Error() string {
	return fmt.Sprintf("bad timing at %s", e.Where)
}

// BufferFullError reports that a transmit buffer or protocol encoder ran out
// of room for the requested edges.
type BufferFullError struct{}

func (e *BufferFullError) Error() string { return "buffer full" }

// UnsupportedFamilyError reports that the generic encoder was asked to
// encode a family it does not implement (Grundig, Bang & Olufsen, Serial).
type UnsupportedFamilyError struct {
	Family ProtocolFamily
}

func (e *UnsupportedFamilyError) Error() string {
	return fmt.Sprintf("encoding not implemented for family %s", e.Family)
}

// FramingError reports a serial stop-bit or parity violation during serial
// decode.
type FramingError struct {
	Bit int
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("framing error at bit %d", e.Bit)
}

// UnknownRemoteError reports a remote-name lookup miss.
type UnknownRemoteError struct {
	Name string
}

func (e *UnknownRemoteError) Error() string {
	return fmt.Sprintf("unknown remote %q", e.Name)
}

// UnknownButtonError reports a button-name lookup miss within a known
// remote.
type UnknownButtonError struct {
	Remote, Button string
}

func (e *UnknownButtonError) Error() string {
	return fmt.Sprintf("unknown button %q on remote %q", e.Button, e.Remote)
}
