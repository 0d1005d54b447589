package irmux

/********************************************************************************
 *
 * Purpose:	Tolerance arithmetic used by the decoder and the receive
 *		buffer: is a measured duration "close enough" to a
 *		remote's declared target, where "close enough" is the
 *		larger of the remote's relative (eps, percent) and absolute
 *		(aeps, microseconds) tolerance, itself floored by the
 *		driver's reported timing resolution.
 *
 *******************************************************************************/

// toleranceFor returns the +/- slack, in microseconds, allowed around
// target given the remote's tolerances and the driver's resolution. The
// relative term truncates rather than rounds, matching the expect() macro's
// integer division (exdelta * eps / 100).
func toleranceFor(target uint32, r *Remote, resolution uint32) uint32 {
	aeps := r.Aeps
	if resolution > aeps {
		aeps = resolution
	}
	rel := target * r.Eps / 100
	if rel > aeps {
		return rel
	}
	return aeps
}

// IsWithin reports whether delta is within tolerance of target.
func IsWithin(delta, target uint32, r *Remote, resolution uint32) bool {
	slack := toleranceFor(target, r, resolution)
	diff := int64(delta) - int64(target)
	if diff < 0 {
		diff = -diff
	}
	return diff <= int64(slack)
}

// AtLeast reports whether delta is at or above target minus tolerance.
func AtLeast(delta, target uint32, r *Remote, resolution uint32) bool {
	slack := toleranceFor(target, r, resolution)
	return int64(delta) >= int64(target)-int64(slack)
}

// AtMost reports whether delta is at or below target plus tolerance.
func AtMost(delta, target uint32, r *Remote, resolution uint32) bool {
	slack := toleranceFor(target, r, resolution)
	return int64(delta) <= int64(target)+int64(slack)
}

// UpperLimit inflates target by its tolerance.
func UpperLimit(target uint32, r *Remote, resolution uint32) uint32 {
	return target + toleranceFor(target, r, resolution)
}

// LowerLimit deflates target by its tolerance, clamped to >= 1us. This floor
// is load-bearing: a tolerance computation that lands on zero would make
// every subsequent "at least" test trivially true.
func LowerLimit(target uint32, r *Remote, resolution uint32) uint32 {
	slack := toleranceFor(target, r, resolution)
	if slack >= target {
		return 1
	}
	v := target - slack
	if v < 1 {
		return 1
	}
	return v
}
