package irmux

/********************************************************************************
 *
 * Purpose:	A Driver for RS-232-attached IR transceivers, the real-world
 *		counterpart to the Serial protocol family: a framed byte
 *		stream over a raw-mode tty rather than timed edges.
 *
 * Description:	Grounded on spec.md's Serial family (baud/bits/parity/stop
 *		describe a UART frame, not a pulse train) and the termios
 *		raw-mode idiom pkg/term exists for.
 *
 *******************************************************************************/

import (
	"time"

	"github.com/pkg/term"
)

// SerialDriver reads/writes raw bytes over a tty rather than timed edges.
// Its Mode() is ModeLircCode, so Decode matches each byte directly against
// the remote's codes (decode.go's decodeLircCode); decodeSerial is not on
// this path.
type SerialDriver struct {
	t          *term.Term
	resolution uint32
}

// NewSerialDriver opens device at baud in raw mode. A remote's serial_mode
// keyword is not applied to the line.
func NewSerialDriver(device string, baud int) (*SerialDriver, error) {
	t, err := term.Open(device, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, err
	}
	return &SerialDriver{t: t, resolution: 1}, nil
}

// ReadData reads one byte and returns it as the Value of a Pulse edge, or a
// Timeout edge when nothing arrives within timeoutUs or the read fails.
func (d *SerialDriver) ReadData(timeoutUs int64) (Duration, error) {
	if timeoutUs > 0 {
		d.t.SetReadTimeout(time.Duration(timeoutUs) * time.Microsecond)
	}
	buf := make([]byte, 1)
	n, err := d.t.Read(buf)
	if err != nil {
		return Duration{Kind: Timeout}, nil
	}
	if n == 0 {
		return Duration{Kind: Timeout}, nil
	}
	return Duration{Value: uint32(buf[0]), Kind: Pulse}, nil
}

// SendFunc writes each edge's low byte as a raw byte on the wire; Serial
// family encoding never reaches EncodeCode's pulse/space path (transmit.go
// refuses it with UnsupportedFamilyError), so edges here already carry
// framed bytes prepared by the caller.
func (d *SerialDriver) SendFunc(r *Remote, edges []Duration) error {
	buf := make([]byte, len(edges))
	for i, e := range edges {
		buf[i] = byte(e.Value)
	}
	_, err := d.t.Write(buf)
	return err
}

func (d *SerialDriver) Resolution() uint32 { return d.resolution }
func (d *SerialDriver) Mode() DriverMode   { return ModeLircCode }

// Close releases the underlying tty.
func (d *SerialDriver) Close() error {
	return d.t.Close()
}
