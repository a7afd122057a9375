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

// Package circuit evaluates membership queries over an encrypted mirror
// of a contact list without leaking anything through its own execution:
// iteration count, branching and memory access are all independent of
// the list's contents and of the query. The list travels as XOR secret
// shares, one per computing party, and only a result sealed to the data
// owner ever leaves an evaluation.
package circuit

import (
	"encoding/binary"
	"fmt"

	"github.com/mukonchat/graph/backend/models"
)

// MaxContacts is the fixed slot capacity of every contact list. It is
// the loop bound of both circuits: always this many slots, never fewer.
const MaxContacts = 100

// Slot status bytes, matching the mirror encoding clients maintain.
const (
	StatusEmpty    byte = 0
	StatusPending  byte = 1
	StatusAccepted byte = 2
	StatusRejected byte = 3
	StatusBlocked  byte = 4
)

// ContactEntry is one slot of the mirror.
type ContactEntry struct {
	Pubkey [32]byte
	Status byte
}

// ContactList is the fixed-capacity mirror. Count says how many leading
// slots are live; the tail is whatever bytes happen to be there and must
// never influence a result.
type ContactList struct {
	Contacts [MaxContacts]ContactEntry
	Count    uint32
}

const entrySize = 33
const listSize = MaxContacts*entrySize + 4

// Marshal packs the list into its fixed wire layout: 33 bytes per slot
// (pubkey then status), then the count, big-endian.
func (l *ContactList) Marshal() []byte {
	buf := make([]byte, listSize)
	for i := range l.Contacts {
		off := i * entrySize
		copy(buf[off:off+32], l.Contacts[i].Pubkey[:])
		buf[off+32] = l.Contacts[i].Status
	}
	binary.BigEndian.PutUint32(buf[MaxContacts*entrySize:], l.Count)
	return buf
}

// UnmarshalList parses the fixed wire layout.
func UnmarshalList(buf []byte) (*ContactList, error) {
	if len(buf) != listSize {
		return nil, fmt.Errorf("contact list is %d bytes, expected %d", len(buf), listSize)
	}
	var l ContactList
	for i := range l.Contacts {
		off := i * entrySize
		copy(l.Contacts[i].Pubkey[:], buf[off:off+32])
		l.Contacts[i].Status = buf[off+32]
	}
	l.Count = binary.BigEndian.Uint32(buf[MaxContacts*entrySize:])
	return &l, nil
}

// StatusForPeerState maps a relationship state to the mirror's status
// byte.
func StatusForPeerState(state models.PeerState) byte {
	switch state {
	case models.PeerInvited, models.PeerRequested:
		return StatusPending
	case models.PeerAccepted:
		return StatusAccepted
	case models.PeerRejected:
		return StatusRejected
	case models.PeerBlocked:
		return StatusBlocked
	}
	return StatusEmpty
}

// MirrorFromPeers builds the plaintext mirror a client keeps in sync
// with its relationship record. Peers beyond the slot capacity are
// dropped; splitting to shares happens owner-side afterwards.
func MirrorFromPeers(peers []models.Peer) *ContactList {
	var l ContactList
	n := len(peers)
	if n > MaxContacts {
		n = MaxContacts
	}
	for i := 0; i < n; i++ {
		l.Contacts[i].Pubkey = [32]byte(peers[i].Wallet)
		l.Contacts[i].Status = StatusForPeerState(peers[i].State)
	}
	l.Count = uint32(n)
	return &l
}
