package irmux

/********************************************************************************
 *
 * Purpose:	The boundary between the core codec and whatever hardware or
 *		simulation supplies/consumes edges (spec 6 Driver contract).
 *
 *******************************************************************************/

// Driver is the external collaborator the core decode/encode machinery is
// written against. Implementations live outside the core package's
// invariants: GPIO, serial, a pty loopback, or an in-memory fake for tests.
type Driver interface {
	// ReadData returns the next edge, blocking for at most timeoutUs of
	// wall-clock time. A zero or negative timeout polls without
	// blocking. The returned Duration's Kind distinguishes a real edge
	// from Timeout/Overflow/EndOfStream.
	ReadData(timeoutUs int64) (Duration, error)

	// SendFunc transmits a prepared buffer of pulse/space Durations at
	// the remote's carrier frequency and duty cycle.
	SendFunc(r *Remote, edges []Duration) error

	// Resolution is the driver's own edge-timing granularity in
	// microseconds; tolerance tests use max(resolution, remote.Aeps).
	Resolution() uint32

	// Mode reports whether the driver delivers raw edges (ModeMode2) or
	// pre-framed scancodes (ModeLircCode).
	Mode() DriverMode
}

// DriverMode distinguishes the two shapes of data a Driver can hand back.
type DriverMode int

const (
	ModeMode2 DriverMode = iota
	ModeLircCode
)
