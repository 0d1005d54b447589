package irmux

/********************************************************************************
 *
 * Purpose:	A loopback Driver over a pseudo-terminal: a stand-in for a real
 *		/dev/lirc* character device so interactive tools can feed a
 *		captured signal through the decoder without hardware attached
 *		(the "pty" driver option of irmuxd and irmuxsend).
 *
 * Description:	Grounded on the teacher's src/kiss.go kisspt_open_pt, which
 *		presents a KISS TNC over a pty the same way: pty.Open() gives
 *		a master/slave pair, the master is read from/written to by
 *		this process while the slave is the device node external
 *		tools open.
 *
 *******************************************************************************/

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/creack/pty"
)

// PtyDriver exposes a pty slave as a lirc-style device node: writers to the
// slave push packed-wire uint32 edges (duration.go's Wire()/DurationFromWire
// form) which ReadData decodes, and SendFunc writes the same packed form
// back out for a reader on the slave to observe.
type PtyDriver struct {
	master *os.File
	slave  *os.File
}

// NewPtyDriver opens a fresh pty pair. SlavePath returns the device node
// other processes (or a test harness) can open to feed/observe edges.
func NewPtyDriver() (*PtyDriver, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, err
	}
	return &PtyDriver{master: master, slave: slave}, nil
}

// SlavePath is the pty slave's device node.
func (d *PtyDriver) SlavePath() string { return d.slave.Name() }

func (d *PtyDriver) ReadData(timeoutUs int64) (Duration, error) {
	var raw [4]byte
	_, err := io.ReadFull(d.master, raw[:])
	if err != nil {
		if err == io.EOF {
			return Duration{Kind: EndOfStream}, nil
		}
		return Duration{}, err
	}
	return DurationFromWire(binary.LittleEndian.Uint32(raw[:])), nil
}

func (d *PtyDriver) SendFunc(r *Remote, edges []Duration) error {
	for _, e := range edges {
		var raw [4]byte
		binary.LittleEndian.PutUint32(raw[:], e.Wire())
		if _, err := d.master.Write(raw[:]); err != nil {
			return err
		}
	}
	return nil
}

func (d *PtyDriver) Resolution() uint32 { return 1 }
func (d *PtyDriver) Mode() DriverMode   { return ModeMode2 }

// Close releases both ends of the pty.
func (d *PtyDriver) Close() error {
	d.slave.Close()
	return d.master.Close()
}
