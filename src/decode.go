package irmux

/********************************************************************************
 *
 * Purpose:	The decoder state machine (spec 4.E): sync -> header -> lead
 *		-> pre -> data -> post -> trail -> foot -> gap, family-aware
 *		bit extraction, and the post-matching mask algebra that turns
 *		a raw frame into a button plus a repeat flag.
 *
 * Description:	Grounded on liblircd/src/receive.c (get_header/get_foot/
 *		get_lead/get_trail/get_gap/get_repeat, per-family get_data,
 *		get_pre/get_post, receive_decode) and liblircd/src/ir_remote.c
 *		(match_ir_code, map_code, map_gap, find_longest_match,
 *		get_code, set_code).
 *
 *******************************************************************************/

import (
	"math"
	"time"
)

// eofCode is the reserved internal pseudo-button returned when the receive
// buffer is flagged EOF and no further edges remain (spec 4.E step 1, 4.I).
var eofCode = IrNcode{Name: "__EOF", Code: 0x0000000008000000}

// DecodeResult is one decoded frame.
type DecodeResult struct {
	Remote *Remote
	Code   *IrNcode
	Repeat bool
	EOF    bool
}

const oneSecondUs = 1_000_000

// Decode attempts to match the next frame in ctx.Rbuf against r. A nil
// result with a nil error means "no match, try the next remote" — the
// caller should rewind the buffer (done internally on failure) and continue
// the database walk.
func Decode(ctx *Context, r *Remote) (*DecodeResult, error) {
	b := ctx.Rbuf

	if b.atEOF && b.readp >= b.writep {
		return &DecodeResult{Remote: r, Code: &eofCode, EOF: true}, nil
	}

	res := ctx.Driver.Resolution()

	if err := b.clear(); err != nil {
		return nil, err
	}
	if b.driver.Mode() == ModeLircCode && b.hasDecoded {
		return decodeLircCode(ctx, r, b.decoded)
	}

	b.rewind()

	if !syncBuffer(b, r, ctx, res) {
		return nil, nil
	}

	mark, markSum := b.readp, b.sum
	if repeated, ok := tryRepeat(b, r, res); ok {
		if repeated != nil {
			markRepeat(ctx, r, repeated)
			return &DecodeResult{Remote: r, Code: repeated, Repeat: true}, nil
		}
		b.rewind()
	} else {
		// a frame that is not a repeat is decoded from the edge right
		// after the sync gap, whatever tryRepeat consumed.
		b.readp, b.sum = mark, markSum
		b.pendingPValid, b.pendingSValid = false, false
	}

	pre, code, post, ok := decodeFrame(b, r, res)
	if !ok {
		b.rewind()
		return nil, nil
	}

	if !expectGap(b, r, res) {
		b.rewind()
		return nil, nil
	}

	matched, isRepeat := getCode(r, pre, code, post)
	if matched == nil {
		b.rewind()
		return nil, nil
	}

	if isRepeat {
		markRepeat(ctx, r, matched)
	} else {
		r.Runtime.Reps = 0
		r.Runtime.LastCode = matched
		r.Runtime.ToggleCode = matched
		ctx.lastRemote = r
	}
	r.Runtime.LastSend = time.Now().UnixMicro()

	return &DecodeResult{Remote: r, Code: matched, Repeat: isRepeat}, nil
}

func decodeLircCode(ctx *Context, r *Remote, code IrCode) (*DecodeResult, error) {
	for _, c := range r.Codes {
		if c.Code == code {
			ctx.lastRemote = r
			return &DecodeResult{Remote: r, Code: c}, nil
		}
	}
	return nil, nil
}

func markRepeat(ctx *Context, r *Remote, code *IrNcode) {
	r.Runtime.Reps++
	r.Runtime.LastCode = code
	ctx.lastRemote = r
	ctx.repeatRemote = r
}

// syncBuffer drains one long space, tolerating up to recSync extra
// pulse/space pairs while waiting for a gap belonging to this remote (spec
// 4.E step 2).
func syncBuffer(b *rbuf, r *Remote, ctx *Context, res uint32) bool {
	b.isBiphase = r.Family == FamilyRc5 || r.Family == FamilyRc6

	tries := 1
	if ctx.lastRemote != nil && ctx.lastRemote != r && r.Family != FamilyRcMm {
		tries = 1 + 2*recSync
	}

	for i := 0; i < tries; i++ {
		d, ok, err := b.next(-1)
		if err != nil || !ok {
			return false
		}
		if !d.IsSpace() {
			continue
		}
		minGap := r.minGap()
		if ctx.lastRemote != nil {
			minGap = ctx.lastRemote.Runtime.MinRemainingGap
			if minGap == 0 {
				minGap = r.minGap()
			}
		}
		if AtLeast(d.Value, minGap, r, res) {
			return true
		}
	}
	return false
}

// tryRepeat matches [optional header][lead][prepeat pulse][srepeat space]
// [trail] followed by a valid gap, returning the previously decoded code
// when this remote owns the repeat shortcut.
func tryRepeat(b *rbuf, r *Remote, res uint32) (*IrNcode, bool) {
	if !r.hasRepeat() || r.Runtime.LastCode == nil {
		return nil, false
	}
	if time.Now().UnixMicro()-r.Runtime.LastSend > oneSecondUs {
		return nil, false
	}

	if (r.Header.Pulse != 0 || r.Header.Space != 0) && !r.Flags.NoHeadRep {
		if !expectHeader(b, r, res) {
			return nil, false
		}
	}
	if r.Plead != 0 && !expectPulse(b, r.Plead, r, res) {
		return nil, false
	}
	if !expectPulse(b, r.Repeat.Pulse, r, res) {
		return nil, false
	}
	if !expectSpace(b, r.Repeat.Space, r, res) {
		return nil, false
	}
	if r.Ptrail != 0 && !expectPulse(b, r.Ptrail, r, res) {
		return nil, false
	}
	if !expectGap(b, r, res) {
		return nil, false
	}
	return r.Runtime.LastCode, true
}

func decodeFrame(b *rbuf, r *Remote, res uint32) (pre, code, post IrCode, ok bool) {
	if r.Family == FamilyRaw {
		return decodeRaw(b, r, res)
	}

	if !r.Flags.NoHeadRep || r.Runtime.LastCode == nil {
		if !expectHeader(b, r, res) {
			return 0, 0, 0, false
		}
	}

	if r.Plead != 0 && !expectPulse(b, r.Plead, r, res) {
		return 0, 0, 0, false
	}

	if r.PreDataBits > 0 {
		v, ok := decodeData(b, r, r.PreDataBits, res)
		if !ok {
			return 0, 0, 0, false
		}
		pre = v
		if !expectPreFraming(b, r, res) {
			return 0, 0, 0, false
		}
	}

	v, ok := decodeData(b, r, r.Bits, res)
	if !ok {
		return 0, 0, 0, false
	}
	code = v

	if r.PostDataBits > 0 {
		v, ok := decodeData(b, r, r.PostDataBits, res)
		if !ok {
			return 0, 0, 0, false
		}
		post = v
		if !expectPostFraming(b, r, res) {
			return 0, 0, 0, false
		}
	}

	if r.Ptrail != 0 && !expectPulse(b, r.Ptrail, r, res) {
		return 0, 0, 0, false
	}

	if r.hasFoot() {
		if !expectPair(b, r.Foot, r, res) {
			return 0, 0, 0, false
		}
	}

	return pre, code, post, true
}

func decodeRaw(b *rbuf, r *Remote, res uint32) (pre, code, post IrCode, ok bool) {
	for _, c := range r.Codes {
		if len(c.Raw) == 0 {
			continue // e.g. the lirc pseudo-remote's __EOF entry
		}
		save := b.readp
		if matchRaw(b, c.Raw, r, res) {
			return 0, c.Code, 0, true
		}
		b.readp = save
	}
	return 0, 0, 0, false
}

func matchRaw(b *rbuf, signals []Duration, r *Remote, res uint32) bool {
	for _, want := range signals {
		got, ok, err := b.next(-1)
		if err != nil || !ok {
			return false
		}
		if got.Kind != want.Kind {
			return false
		}
		if !IsWithin(got.Value, want.Value, r, res) {
			return false
		}
	}
	return true
}

// decodeData extracts n payload bits, dispatching on family.
func decodeData(b *rbuf, r *Remote, n uint32, res uint32) (IrCode, bool) {
	if n == 0 {
		return 0, true
	}
	switch r.Family {
	case FamilyRcMm:
		return decodeRcMm(b, r, n, res)
	case FamilyXmp:
		return decodeXmp(b, r, n, res)
	case FamilyGrundig:
		return decodeGrundig(b, r, n, res)
	case FamilySerial:
		return decodeSerial(b, r, n, res)
	case FamilyRc5, FamilyRc6:
		return decodeBiphase(b, r, n, res)
	case FamilySpaceFirst:
		return decodeSpaceFirst(b, r, n, res)
	default:
		return decodeSpaceEnc(b, r, n, res)
	}
}

func decodeSpaceEnc(b *rbuf, r *Remote, n uint32, res uint32) (IrCode, bool) {
	var code IrCode
	for i := uint32(0); i < n; i++ {
		pv, ok := nextPulse(b, r, res)
		if !ok {
			return 0, false
		}
		sv, ok := nextSpace(b, r, res)
		if !ok {
			return 0, false
		}
		bit, ok := classifyOneZero(pv, sv, r, res)
		if !ok {
			return 0, false
		}
		code = code<<1 | IrCode(bit)
	}
	return code, true
}

func decodeSpaceFirst(b *rbuf, r *Remote, n uint32, res uint32) (IrCode, bool) {
	var code IrCode
	for i := uint32(0); i < n; i++ {
		sv, ok := nextSpace(b, r, res)
		if !ok {
			return 0, false
		}
		pv, ok := nextPulse(b, r, res)
		if !ok {
			return 0, false
		}
		bit, ok := classifyOneZero(pv, sv, r, res)
		if !ok {
			return 0, false
		}
		code = code<<1 | IrCode(bit)
	}
	return code, true
}

func classifyOneZero(pulseVal, spaceVal uint32, r *Remote, res uint32) (uint32, bool) {
	if IsWithin(pulseVal, r.One.Pulse, r, res) && IsWithin(spaceVal, r.One.Space, r, res) {
		return 1, true
	}
	if IsWithin(pulseVal, r.Zero.Pulse, r, res) && IsWithin(spaceVal, r.Zero.Space, r, res) {
		return 0, true
	}
	return 0, false
}

// decodeBiphase decodes Manchester/RC-5/RC-6 bits, doubling the expected
// half-width for bits marked in rc6_mask. Adjacent half-periods of matching
// polarity coalesce into a single wider edge at the transmit side (sbuf's
// pulse/space accumulation), so this reads in half-unit quanta rather than
// assuming one raw edge per half-bit: a wide edge is split into however many
// same-kind halves its width covers.
func decodeBiphase(b *rbuf, r *Remote, n uint32, res uint32) (IrCode, bool) {
	unit := r.One.Pulse
	if unit == 0 {
		unit = r.Zero.Pulse
	}
	if unit == 0 {
		return 0, false
	}

	var curKind Kind
	var curRemaining uint32
	haveCur := false

	nextHalf := func() (Kind, bool) {
		for !haveCur || curRemaining == 0 {
			d, ok, err := b.next(-1)
			if err != nil || !ok {
				return 0, false
			}
			if !d.IsPulse() && !d.IsSpace() {
				return 0, false
			}
			halves := uint32(math.Round(float64(d.Value) / float64(unit)))
			if halves == 0 {
				halves = 1
			}
			if !IsWithin(d.Value, halves*unit, r, res) {
				return 0, false
			}
			curKind = d.Kind
			curRemaining = halves
			haveCur = true
		}
		curRemaining--
		return curKind, true
	}

	consumeHalves := func(want uint32) (Kind, bool) {
		kind, ok := nextHalf()
		if !ok {
			return 0, false
		}
		for j := uint32(1); j < want; j++ {
			k, ok := nextHalf()
			if !ok || k != kind {
				return 0, false
			}
		}
		return kind, true
	}

	var code IrCode
	for i := uint32(0); i < n; i++ {
		width := uint32(1)
		if r.hasRc6Mask() && r.Rc6Mask&(1<<uint(n-1-i)) != 0 {
			width = 2
		}
		first, ok := consumeHalves(width)
		if !ok {
			return 0, false
		}
		second, ok := consumeHalves(width)
		if !ok {
			return 0, false
		}
		// space-then-pulse half pair is a logical one; pulse-then-space
		// is a logical zero, matching encodeBiphaseBit's convention.
		var bit uint32
		if first == Space && second == Pulse {
			bit = 1
		} else if first == Pulse && second == Space {
			bit = 0
		} else {
			return 0, false
		}
		code = code<<1 | IrCode(bit)
	}
	return code, true
}

// decodeRcMm decodes two-bit symbols classified by (pulse+space) sum into
// one of four timing buckets. Resolved open question: the bucket index is
// taken literally as the two-bit value (SPEC_FULL.md D.2).
func decodeRcMm(b *rbuf, r *Remote, n uint32, res uint32) (IrCode, bool) {
	if n%2 != 0 {
		return 0, false
	}
	buckets := [4]TimingPair{r.Zero, r.One, r.Two, r.Three}
	var code IrCode
	for i := uint32(0); i < n; i += 2 {
		p, ok, err := b.next(-1)
		if err != nil || !ok || !p.IsPulse() {
			return 0, false
		}
		s, ok, err := b.next(-1)
		if err != nil || !ok || !s.IsSpace() {
			return 0, false
		}
		matched := -1
		for idx, tp := range buckets {
			if IsWithin(p.Value+s.Value, tp.Pulse+tp.Space, r, res) {
				matched = idx
				break
			}
		}
		if matched < 0 {
			return 0, false
		}
		code = code<<2 | IrCode(matched)
	}
	return code, true
}

// decodeXmp decodes 4-bit nibbles, each a fixed pulse followed by a space of
// szero + n*sone, n = round((sum-pzero-szero)/sone), 0<=n<16.
func decodeXmp(b *rbuf, r *Remote, n uint32, res uint32) (IrCode, bool) {
	if n%4 != 0 {
		return 0, false
	}
	var code IrCode
	for i := uint32(0); i < n; i += 4 {
		p, ok, err := b.next(-1)
		if err != nil || !ok || !p.IsPulse() {
			return 0, false
		}
		s, ok, err := b.next(-1)
		if err != nil || !ok || !s.IsSpace() {
			return 0, false
		}
		if !IsWithin(p.Value, r.Zero.Pulse, r, res) {
			return 0, false
		}
		if r.One.Space == 0 || int32(s.Value) < int32(r.Zero.Space) {
			return 0, false
		}
		nibble := (s.Value - r.Zero.Space + r.One.Space/2) / r.One.Space
		if nibble > 15 {
			return 0, false
		}
		code = code<<4 | IrCode(nibble)
	}
	return code, true
}

// grundigSymbol classifies one (space+pulse) sum into one of four durations.
type grundigSymbol int

const (
	grundig2T grundigSymbol = iota
	grundig3T
	grundig4T
	grundig6T
)

// decodeGrundig decodes the state-transition family: a lone 6T symbol yields
// 00; pairs of consecutive symbols {4T2T,3T3T,2T4T} yield {01,10,11}.
func decodeGrundig(b *rbuf, r *Remote, n uint32, res uint32) (IrCode, bool) {
	unit := r.One.Space
	classify := func(sum uint32) (grundigSymbol, bool) {
		switch {
		case IsWithin(sum, 2*unit, r, res):
			return grundig2T, true
		case IsWithin(sum, 3*unit, r, res):
			return grundig3T, true
		case IsWithin(sum, 4*unit, r, res):
			return grundig4T, true
		case IsWithin(sum, 6*unit, r, res):
			return grundig6T, true
		default:
			return 0, false
		}
	}
	readSymbol := func() (grundigSymbol, bool) {
		s, ok, err := b.next(-1)
		if err != nil || !ok || !s.IsSpace() {
			return 0, false
		}
		p, ok, err := b.next(-1)
		if err != nil || !ok || !p.IsPulse() {
			return 0, false
		}
		return classify(s.Value + p.Value)
	}

	var code IrCode
	var bitsDone uint32
	for bitsDone < n {
		sym, ok := readSymbol()
		if !ok {
			return 0, false
		}
		if sym == grundig6T {
			code = code<<2 | 0
			bitsDone += 2
			continue
		}
		sym2, ok := readSymbol()
		if !ok {
			return 0, false
		}
		switch {
		case sym == grundig4T && sym2 == grundig2T:
			code = code<<2 | 1
		case sym == grundig3T && sym2 == grundig3T:
			code = code<<2 | 2
		case sym == grundig2T && sym2 == grundig4T:
			code = code<<2 | 3
		default:
			return 0, false
		}
		bitsDone += 2
	}
	return code, true
}

// decodeSerial decodes bits_in_byte data bits per byte, one start bit and a
// stop window per byte, each data interval a space(1)/pulse(0) classified to
// the nearest multiple of the baud quantum; parity is verified and stripped.
func decodeSerial(b *rbuf, r *Remote, n uint32, res uint32) (IrCode, bool) {
	if r.Baud == 0 || r.BitsInByte == 0 {
		return 0, false
	}
	quantum := uint32(1_000_000 / r.Baud)
	var code IrCode
	var bitsDone uint32
	for bitsDone < n {
		// start bit (space, one quantum)
		start, ok, err := b.next(-1)
		if err != nil || !ok || !start.IsSpace() {
			return 0, false
		}
		var byteVal IrCode
		var parity uint32
		for i := uint32(0); i < r.BitsInByte; i++ {
			d, ok, err := b.next(-1)
			if err != nil || !ok {
				return 0, false
			}
			width := (d.Value + quantum/2) / quantum
			if width == 0 {
				width = 1
			}
			_ = width // nearest-quantum width already folded into the edge classification above
			var bit uint32
			if d.IsSpace() {
				bit = 1
			}
			byteVal = byteVal<<1 | IrCode(bit)
			parity ^= bit
		}
		if r.Parity != 0 {
			par, ok, err := b.next(-1)
			if err != nil || !ok {
				return 0, false
			}
			want := parity
			if r.Parity == 'O' {
				want ^= 1
			}
			var gotBit uint32
			if par.IsSpace() {
				gotBit = 1
			}
			if gotBit != want {
				return 0, false
			}
		}
		stopWindows := int(r.StopBits / 2)
		if stopWindows < 1 {
			stopWindows = 1
		}
		for i := 0; i < stopWindows; i++ {
			if _, ok, err := b.next(-1); err != nil || !ok {
				return 0, false
			}
		}
		code = code<<r.BitsInByte | byteVal
		bitsDone += r.BitsInByte
	}
	return code, true
}

// nextPulse reads the next pulse edge, resolving pending state the same way
// the original's expectpulse() does, but without a tolerance comparison: a
// still-open pending space (deferred because the decoder didn't yet know
// what would follow it) is resolved as its own standalone edge first, since
// a pulse can't coalesce with it; a still-open pending pulse coalesced onto
// the front of this very edge on the wire, so its amount is subtracted out
// before returning. Used by every payload bit decoder so a framing
// component deferred by expectHeader/expectPreFraming/expectPostFraming is
// resolved correctly no matter which decoder reads the next real edge.
func nextPulse(b *rbuf, r *Remote, res uint32) (uint32, bool) {
	if !b.syncPendingSpace(r, res) {
		return 0, false
	}
	d, ok, err := b.next(-1)
	if err != nil || !ok || !d.IsPulse() {
		return 0, false
	}
	if b.pendingPValid {
		pending := b.pendingP
		b.pendingPValid = false
		if pending > d.Value {
			return 0, false
		}
		return d.Value - pending, true
	}
	return d.Value, true
}

// nextSpace is nextPulse's mirror, matching expectspace().
func nextSpace(b *rbuf, r *Remote, res uint32) (uint32, bool) {
	if !b.syncPendingPulse(r, res) {
		return 0, false
	}
	d, ok, err := b.next(-1)
	if err != nil || !ok || !d.IsSpace() {
		return 0, false
	}
	if b.pendingSValid {
		pending := b.pendingS
		b.pendingSValid = false
		if pending > d.Value {
			return 0, false
		}
		return d.Value - pending, true
	}
	return d.Value, true
}

func expectPulse(b *rbuf, target uint32, r *Remote, res uint32) bool {
	v, ok := nextPulse(b, r, res)
	if !ok {
		return false
	}
	return IsWithin(v, target, r, res)
}

func expectSpace(b *rbuf, target uint32, r *Remote, res uint32) bool {
	v, ok := nextSpace(b, r, res)
	if !ok {
		return false
	}
	return IsWithin(v, target, r, res)
}

func expectPair(b *rbuf, tp TimingPair, r *Remote, res uint32) bool {
	return expectPulse(b, tp.Pulse, r, res) && expectSpace(b, tp.Space, r, res)
}

// expectHeader validates the header framing component. A remote with both
// halves configured is checked as one immediate pair. A remote missing one
// half can't: the other half has no wire edge of its own and coalesces with
// whatever same-kind edge comes next, so it's deferred instead, matching
// get_header()'s shead==0 branch (and its symmetric phead==0 counterpart).
func expectHeader(b *rbuf, r *Remote, res uint32) bool {
	switch {
	case r.Header.Pulse == 0 && r.Header.Space == 0:
		return true
	case r.Header.Space == 0:
		if !b.syncPendingSpace(r, res) {
			return false
		}
		b.setPendingPulse(r.Header.Pulse)
		return true
	case r.Header.Pulse == 0:
		if !b.syncPendingPulse(r, res) {
			return false
		}
		b.setPendingSpace(r.Header.Space)
		return true
	default:
		if !expectPulse(b, r.Header.Pulse, r, res) {
			return false
		}
		b.setPendingSpace(r.Header.Space)
		return true
	}
}

// expectPreFraming validates the pre-data framing pulse and defers the
// trailing space, mirroring get_pre(): the framing is only engaged at all
// when both pre_p and pre_s are configured (hasPre()); otherwise pre_data
// has no framing edges of its own.
func expectPreFraming(b *rbuf, r *Remote, res uint32) bool {
	if !r.hasPre() {
		return true
	}
	if !expectPulse(b, r.Pre.Pulse, r, res) {
		return false
	}
	b.setPendingSpace(r.Pre.Space)
	return true
}

// expectPostFraming is expectPreFraming's mirror, matching get_post().
func expectPostFraming(b *rbuf, r *Remote, res uint32) bool {
	if !r.hasPost() {
		return true
	}
	if !expectPulse(b, r.Post.Pulse, r, res) {
		return false
	}
	b.setPendingSpace(r.Post.Space)
	return true
}

// expectGap expects a trailing space at or above a family-specific minimum:
// 1ms for RC-MM, max(min_gap-sum,0) for const-length remotes, otherwise
// min_gap.
func expectGap(b *rbuf, r *Remote, res uint32) bool {
	var minGap uint32
	switch {
	case r.Family == FamilyRcMm:
		minGap = 1000
	case r.Flags.ConstLength:
		mg := r.minGap()
		if mg > b.sum {
			minGap = mg - b.sum
		}
	default:
		minGap = r.minGap()
	}
	d, ok, err := b.next(int64(UpperLimit(minGap, r, res)))
	if err != nil {
		return false
	}
	if !ok {
		// Treat "nothing more to read within budget" as a sufficiently
		// long gap only when we were not blocking on a hard minimum.
		return minGap == 0
	}
	if !d.IsSpace() && !d.IsTimeout() {
		b.unget(1)
		return minGap == 0
	}
	ok2 := AtLeast(d.Value, minGap, r, res)
	if ok2 {
		r.Runtime.MinRemainingGap = LowerLimit(minGap, r, res)
		r.Runtime.MaxRemainingGap = UpperLimit(r.maxGap(), r, res)
	}
	return ok2
}

// mapCode concatenates pre/code/post and is the identity on the components
// already split out by decodeFrame; kept as a named step for parity with the
// original's map_code, which also handles legacy non-split remotes.
func mapCode(pre, code, post IrCode, r *Remote) (IrCode, IrCode, IrCode) {
	return pre, code, post
}

// getCode applies the mask algebra and searches the code list, returning the
// matched button and whether this frame is a repeat of the held key (spec
// 4.E "Post-matching" and "Cross-frame toggle").
func getCode(r *Remote, pre, code, post IrCode) (*IrNcode, bool) {
	pre, code, post = mapCode(pre, code, post, r)

	if r.Runtime.ToggleMaskState == ToggleFirstHalf || r.Runtime.ToggleMaskState == ToggleSecondHalf {
		post ^= r.ToggleMask
		code ^= r.ToggleMask
		pre ^= r.ToggleMask
	}

	isRepeat := false
	if r.hasRepeatMask() {
		full := pre<<(r.Bits+r.PostDataBits) | code<<r.PostDataBits | post
		alt := full ^ r.RepeatMask
		if altMatchesAny(r, pre, code, post, alt) {
			isRepeat = true
		}
	}

	match := findMatch(r, pre, code, post)
	if match == nil {
		return nil, false
	}
	advanceChain(match)

	if match == r.Runtime.ToggleCode && r.Runtime.ToggleMaskState == ToggleStart {
		r.Runtime.Reps++
	}
	r.Runtime.ToggleMaskState = r.Runtime.ToggleMaskState.advance()

	return match, isRepeat
}

func altMatchesAny(r *Remote, pre, code, post, alt IrCode) bool {
	altPost := alt & genMask(r.PostDataBits)
	altCode := (alt >> r.PostDataBits) & genMask(r.Bits)
	return findMatch(r, pre, altCode, altPost) != nil
}

// findMatch searches the code list for a button whose currently expected
// frame value matches code under ignore_mask|toggle_bit_mask equivalence.
// Only the code field is compared: pre and post are accepted whatever their
// value. A button mid multi-frame chain (current > 0) is expected to
// match the next link in its Next chain rather than its own head code,
// mirroring find_longest_match's codes->current walk.
func findMatch(r *Remote, pre, code, post IrCode) *IrNcode {
	eqMask := r.IgnoreMask | r.ToggleBitMask

	for _, c := range r.Codes {
		want := c.Code
		if c.current > 0 && c.current <= len(c.Next) {
			want = c.Next[c.current-1]
		}
		if maskedEqual(want, code, eqMask) {
			return c
		}
	}
	if r.DyncodesName != "" {
		return allocateDyncode(r, code)
	}
	return nil
}

func maskedEqual(a, b, mask IrCode) bool {
	return a&^mask == b&^mask
}

// advanceChain consumes one frame of c's multi-frame chain, reporting
// whether the chain is now complete. A button with no Next chain completes
// on its first (only) frame. Mirrors get_code's codes->current advance and
// decode_all's "ncode->current != NULL" completion test.
func advanceChain(c *IrNcode) bool {
	if len(c.Next) == 0 {
		return true
	}
	c.current++
	if c.current > len(c.Next) {
		c.current = 0
		return true
	}
	return false
}

// allocateDyncode assigns one of two shared anonymous "unknown" slots,
// rotating between them, per spec 4.E and SPEC_FULL.md C.5. The slot handed
// out last is marked by a nonzero current; a different code moves to the
// other slot.
func allocateDyncode(r *Remote, code IrCode) *IrNcode {
	slot := 0
	if r.dyncodes[1].current != 0 {
		slot = 1
	}
	if r.dyncodes[slot].current != 0 && r.dyncodes[slot].Code != code {
		slot ^= 1
	}
	r.dyncodes[slot^1].current = 0
	r.dyncodes[slot].Name = r.DyncodesName
	r.dyncodes[slot].Code = code
	r.dyncodes[slot].current = 1
	return &r.dyncodes[slot]
}
