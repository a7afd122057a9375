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
)

// MaxDisplayNameBytes caps the display name length in bytes.
const MaxDisplayNameBytes = 32

type AvatarType uint8

const (
	AvatarEmoji AvatarType = 0
	AvatarNFT   AvatarType = 1
)

func (t AvatarType) String() string {
	switch t {
	case AvatarEmoji:
		return "emoji"
	case AvatarNFT:
		return "nft"
	}
	return fmt.Sprintf("avatar(%d)", uint8(t))
}

func (t AvatarType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *AvatarType) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	switch name {
	case "emoji":
		*t = AvatarEmoji
	case "nft":
		*t = AvatarNFT
	default:
		return fmt.Errorf("unknown avatar type %q", name)
	}
	return nil
}

// Profile is per-user display data plus the public key peers encrypt to.
// Independent of relationship state, mutated only by its owner.
type Profile struct {
	Owner               Identity   `json:"owner" db:"owner"`
	DisplayName         string     `json:"display_name" db:"display_name"`
	AvatarType          AvatarType `json:"avatar_type" db:"avatar_type"`
	AvatarData          string     `json:"avatar_data" db:"avatar_data"`
	EncryptionPublicKey Key32      `json:"encryption_public_key" db:"encryption_public_key"`
}
