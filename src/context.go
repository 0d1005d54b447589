package irmux

/********************************************************************************
 *
 * Purpose:	Context is the handle the original implementation threaded
 *		implicitly through module-scoped globals (last_remote,
 *		repeat_remote, last_code). Every decode call here takes an
 *		explicit *Context so a process can run more than one decoding
 *		session without shared mutable state; EncodeCode takes no
 *		Context and builds its own transmit buffer per call.
 *
 *******************************************************************************/

import (
	"io"

	"github.com/charmbracelet/log"
)

// Context owns the mutable state of one decoding/encoding session: the
// receive and transmit buffers, the last-matched remote/code pointers used
// for the repeat shortcut, and a logger.
type Context struct {
	Driver Driver
	Rbuf   *rbuf
	Sbuf   *sbuf
	Log    *log.Logger

	// lastRemote/repeatRemote/lastCode replace the original's module-
	// scoped globals of the same name (spec 9 design note).
	lastRemote   *Remote
	repeatRemote *Remote
	lastCode     *IrNcode
}

// NewContext builds a Context around a Driver, with logging at the given
// level written to w (typically os.Stderr). A nil w discards all output.
func NewContext(d Driver, level log.Level, w io.Writer) *Context {
	if w == nil {
		w = io.Discard
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	return &Context{
		Driver: d,
		Rbuf:   newRbuf(d),
		Sbuf:   newSbuf(),
		Log:    logger,
	}
}
