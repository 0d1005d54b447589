package irmux

/********************************************************************************
 *
 * Purpose:	An ordered collection of remotes: insertion-order iteration,
 *		case-insensitive name lookup, a reserved internal "lirc"
 *		pseudo-remote for the end-of-stream button, and a decode-cost
 *		sort (spec 4.C).
 *
 * Description:	Grounded on liblircd/src/ir_remote.c get_ir_remote and
 *		liblircd/src/config_file.c remote_bits_cmp/sort_by_bit_count.
 *
 *******************************************************************************/

import "sort"

// lircPseudoRemoteName is the reserved internal remote exposing __EOF.
const lircPseudoRemoteName = "lirc"

// RemoteDB is a homogeneous ordered collection of Remotes.
type RemoteDB struct {
	remotes []*Remote
}

// NewRemoteDB creates an empty database seeded with the reserved "lirc"
// pseudo-remote.
func NewRemoteDB() *RemoteDB {
	lirc := &Remote{
		Name:  lircPseudoRemoteName,
		Codes: []*IrNcode{{Name: "__EOF", Code: eofCode.Code}},
	}
	return &RemoteDB{remotes: []*Remote{lirc}}
}

// Add appends r, preserving insertion order.
func (db *RemoteDB) Add(r *Remote) {
	db.remotes = append(db.remotes, r)
}

// Get performs a case-insensitive name lookup.
func (db *RemoteDB) Get(name string) *Remote {
	for _, r := range db.remotes {
		if equalFold(r.Name, name) {
			return r
		}
	}
	return nil
}

// All returns the remotes in their current iteration order.
func (db *RemoteDB) All() []*Remote {
	return db.remotes
}

// decodeCost orders non-raw before raw; within non-raw, fewer total bits
// first; within raw, fewer codes first.
func decodeCost(r *Remote) (rawTier int, secondary int) {
	if r.Family == FamilyRaw {
		return 1, len(r.Codes)
	}
	return 0, int(r.payloadWidth())
}

// Sort orders remotes by ascending decode cost, preserving insertion order
// as a tiebreak (sort.SliceStable), unless any remote carries ManualSort.
func (db *RemoteDB) Sort() {
	for _, r := range db.remotes {
		if r.ManualSort {
			return
		}
	}
	sort.SliceStable(db.remotes, func(i, j int) bool {
		ti, si := decodeCost(db.remotes[i])
		tj, sj := decodeCost(db.remotes[j])
		if ti != tj {
			return ti < tj
		}
		return si < sj
	})
}
