package irmux

/********************************************************************************
 *
 * Purpose:	Event dispatch (spec 4.I): walk the remote database, format a
 *		matched code as an event line, and squelch excess repeats.
 *
 * Description:	Grounded on liblircd/src/ir_remote.c write_message/
 *		decode_all.
 *
 *******************************************************************************/

import "fmt"

// eofEventLine is the fixed string emitted when the internal __EOF
// pseudo-code is returned.
const eofEventLine = "0000000008000000 00 __EOF lirc\n"

// DecodeAll walks db in its current order, invoking Decode against each
// remote, and formats the first match as an event line. An empty line with
// a nil error means no remote matched the buffered edges, or the match was
// withheld or squelched.
func DecodeAll(ctx *Context, db *RemoteDB) (string, error) {
	line, _, err := DecodeAllResult(ctx, db)
	return line, err
}

// DecodeAllResult is DecodeAll plus the underlying DecodeResult (nil for an
// EOF line or a non-match), for callers that also want to append to an
// EventLog.
func DecodeAllResult(ctx *Context, db *RemoteDB) (string, *DecodeResult, error) {
	for _, r := range db.All() {
		res, err := Decode(ctx, r)
		if err != nil {
			return "", nil, err
		}
		if res == nil {
			continue
		}
		if res.EOF {
			return eofEventLine, nil, nil
		}

		// Mid-toggle-pair and mid-chain matches are withheld entirely: the
		// event fires only once the toggle pair or frame chain completes,
		// matching decode_all's "(has_toggle_mask && toggle_mask_state % 2)
		// || ncode->current != NULL" suppression.
		if (r.hasToggleMask() && r.Runtime.ToggleMaskState == ToggleFirstHalf) || (len(res.Code.Next) > 0 && res.Code.current != 0) {
			return "", nil, nil
		}
		resetChainCursors(db)

		line, err := formatEvent(res)
		return line, res, err
	}
	return "", nil, nil
}

// resetChainCursors clears every button's chain cursor across db, run once
// per successfully fired event, mirroring decode_all's scan-and-clear loop
// over every remote's code list.
func resetChainCursors(db *RemoteDB) {
	for _, r := range db.All() {
		for _, c := range r.Codes {
			c.current = 0
		}
	}
}

// formatEvent renders a DecodeResult as
// "{code:016x} {reps:02x} {button_name}{suffix} {remote_name}\n". A repeat
// whose count is at or below suppress_repeat is squelched by returning ""
// with no error; above it, the reported count is reduced by suppress_repeat.
func formatEvent(res *DecodeResult) (string, error) {
	r := res.Remote
	reps := r.Runtime.Reps
	if len(res.Code.Next) > 0 && reps > 0 {
		reps--
	}

	if res.Repeat && r.SuppressRepeat > 0 {
		if reps <= r.SuppressRepeat {
			return "", nil
		}
		reps -= r.SuppressRepeat
	}

	suffix := ""
	if res.Repeat {
		// no textual suffix is specified by the wire format beyond the
		// reps field itself; kept as an extension point for callers
		// that want a human-readable " (repeat)" annotation.
	}

	return fmt.Sprintf("%016x %02x %s%s %s\n", uint64(res.Code.Code), reps, res.Code.Name, suffix, r.Name), nil
}
