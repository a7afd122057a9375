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

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PeerState is the contact status one identity holds about another.
// Every successful operation leaves the two sides in mirrored states per
// the transition table in graph.Service.
type PeerState uint8

const (
	// PeerInvited: we sent the invite and wait for the peer.
	PeerInvited PeerState = 0
	// PeerRequested: the peer invited us and waits for our answer.
	PeerRequested PeerState = 1
	PeerAccepted  PeerState = 2
	PeerRejected  PeerState = 3
	PeerBlocked   PeerState = 4
)

var peerStateNames = map[PeerState]string{
	PeerInvited:   "invited",
	PeerRequested: "requested",
	PeerAccepted:  "accepted",
	PeerRejected:  "rejected",
	PeerBlocked:   "blocked",
}

func (s PeerState) String() string {
	if name, ok := peerStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("peerstate(%d)", uint8(s))
}

func (s PeerState) Valid() bool {
	_, ok := peerStateNames[s]
	return ok
}

func (s PeerState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PeerState) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for state, n := range peerStateNames {
		if n == name {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown peer state %q", name)
}

// Peer is one entry in an identity's contact list.
type Peer struct {
	Wallet Identity  `json:"wallet" db:"peer"`
	State  PeerState `json:"state" db:"state"`
}

// WalletDescriptor is the per-identity relationship record. An invite to
// an unregistered identity pre-creates the invitee's descriptor;
// registration later reuses it without touching Peers.
type WalletDescriptor struct {
	Owner Identity `json:"owner" db:"owner"`
	Peers []Peer   `json:"peers"`
}

// Peer returns the entry for the given wallet, or nil.
func (d *WalletDescriptor) Peer(wallet Identity) *Peer {
	for i := range d.Peers {
		if d.Peers[i].Wallet == wallet {
			return &d.Peers[i]
		}
	}
	return nil
}

// SetPeer updates the entry for the wallet, appending one if absent.
func (d *WalletDescriptor) SetPeer(wallet Identity, state PeerState) {
	if p := d.Peer(wallet); p != nil {
		p.State = state
		return
	}
	d.Peers = append(d.Peers, Peer{Wallet: wallet, State: state})
}

// Conversation is the record keyed by the chat hash of its participants.
// Refreshed on every successful invite, including re-invites.
type Conversation struct {
	ChatID       ChatID      `json:"chat_id" db:"chat_id"`
	Participants [2]Identity `json:"participants"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}
