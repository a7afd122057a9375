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

// MaxGroupMembers caps group size, creator included.
const MaxGroupMembers = 30

// MaxGroupNameBytes caps the group name length in bytes.
const MaxGroupNameBytes = 64

// TokenGate requires proof of external asset ownership before a pending
// invitee may join. Once a group carries a gate it can only be replaced,
// never removed.
type TokenGate struct {
	Asset      Identity `json:"asset" db:"gate_asset"`
	MinBalance uint64   `json:"min_balance" db:"gate_min_balance"`
}

// BalanceAttestation is a caller-supplied claim about an external asset
// balance. Its authenticity is verified upstream; the graph only checks
// that it names the caller, the gated asset, and a sufficient balance.
type BalanceAttestation struct {
	Owner   Identity `json:"owner"`
	Asset   Identity `json:"asset"`
	Balance uint64   `json:"balance"`
}

// Group holds the full membership record. Members is an ordered set:
// join order, creator first, no duplicates.
type Group struct {
	GroupID          GroupID    `json:"group_id" db:"group_id"`
	Creator          Identity   `json:"creator" db:"creator"`
	Name             string     `json:"name" db:"name"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	Members          []Identity `json:"members"`
	EncryptionPubkey Key32      `json:"encryption_pubkey" db:"encryption_pubkey"`
	TokenGate        *TokenGate `json:"token_gate,omitempty"`
}

// HasMember reports whether the identity is currently in the group.
func (g *Group) HasMember(id Identity) bool {
	for _, m := range g.Members {
		if m == id {
			return true
		}
	}
	return false
}

// RemoveMember drops the identity from the ordered member list.
func (g *Group) RemoveMember(id Identity) {
	kept := g.Members[:0]
	for _, m := range g.Members {
		if m != id {
			kept = append(kept, m)
		}
	}
	g.Members = kept
}

type GroupInviteStatus uint8

const (
	InvitePending  GroupInviteStatus = 0
	InviteAccepted GroupInviteStatus = 1
	InviteRejected GroupInviteStatus = 2
)

var inviteStatusNames = map[GroupInviteStatus]string{
	InvitePending:  "pending",
	InviteAccepted: "accepted",
	InviteRejected: "rejected",
}

func (s GroupInviteStatus) String() string {
	if name, ok := inviteStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("invitestatus(%d)", uint8(s))
}

func (s GroupInviteStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *GroupInviteStatus) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for status, n := range inviteStatusNames {
		if n == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown invite status %q", name)
}

// GroupInvite is keyed by (group, invitee): at most one live invite per
// invitee per group, and re-inviting overwrites it.
type GroupInvite struct {
	GroupID   GroupID           `json:"group_id" db:"group_id"`
	Inviter   Identity          `json:"inviter" db:"inviter"`
	Invitee   Identity          `json:"invitee" db:"invitee"`
	Status    GroupInviteStatus `json:"status" db:"status"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// GroupKeyShare is a member's own encrypted copy of the group key.
// Opaque to the server: stored and returned as-is, destroyable only by
// its owner.
type GroupKeyShare struct {
	GroupID      GroupID  `json:"group_id" db:"group_id"`
	Member       Identity `json:"member" db:"member"`
	EncryptedKey []byte   `json:"encrypted_key" db:"encrypted_key"`
	Nonce        [24]byte `json:"nonce" db:"nonce"`
}
