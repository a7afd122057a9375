// Copyright (C) 2025 Mukon Labs <dev@mukon.chat>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package circuit

import "crypto/subtle"

// The two circuit definitions. Both walk all MaxContacts slots
// unconditionally: a slot's liveness (i < count) and its match are
// computed as 0/1 masks and folded into the accumulator, so the trace
// is identical whatever the count and wherever the matches sit. Any
// early exit, count-bounded loop or data-dependent branch here would
// leak list contents to whoever runs the evaluation.

// IsAcceptedContact reports whether the queried pubkey sits in a live
// slot with accepted status. Uninitialized tail slots can hold any raw
// bytes; the liveness mask keeps them out of the result.
func IsAcceptedContact(list *ContactList, query [32]byte) bool {
	match := 0
	for i := 0; i < MaxContacts; i++ {
		active := ctLess(uint32(i), list.Count)
		eq := subtle.ConstantTimeCompare(list.Contacts[i].Pubkey[:], query[:])
		accepted := int(subtle.ConstantTimeByteEq(list.Contacts[i].Status, StatusAccepted))
		match |= active & eq & accepted
	}
	return match == 1
}

// CountAccepted counts live slots with accepted status.
func CountAccepted(list *ContactList) uint32 {
	var n uint32
	for i := 0; i < MaxContacts; i++ {
		active := ctLess(uint32(i), list.Count)
		accepted := int(subtle.ConstantTimeByteEq(list.Contacts[i].Status, StatusAccepted))
		n += uint32(active & accepted)
	}
	return n
}

// ctLess returns 1 if a < b, 0 otherwise, without branching. The
// subtraction in 64 bits borrows exactly when a < b.
func ctLess(a, b uint32) int {
	return int((uint64(a) - uint64(b)) >> 63)
}
