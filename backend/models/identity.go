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
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Identity is a user's stable 32-byte public identifier. It is opaque to
// this service: the only structure the graph relies on is byte-wise
// comparison for ordering.
type Identity [32]byte

// ChatID is the deterministic conversation key derived from a pair of
// identities. Same wire representation as Identity (32 bytes, hex).
type ChatID [32]byte

// GroupID is an opaque 32-byte group handle chosen at creation.
type GroupID [32]byte

// Key32 is a 32-byte public encryption key, hex on the wire.
type Key32 [32]byte

func ParseIdentity(s string) (Identity, error) {
	var id Identity
	if err := decodeHex32(s, id[:]); err != nil {
		return Identity{}, fmt.Errorf("invalid identity: %w", err)
	}
	return id, nil
}

func ParseChatID(s string) (ChatID, error) {
	var id ChatID
	if err := decodeHex32(s, id[:]); err != nil {
		return ChatID{}, fmt.Errorf("invalid chat id: %w", err)
	}
	return id, nil
}

func ParseKey32(s string) (Key32, error) {
	var key Key32
	if err := decodeHex32(s, key[:]); err != nil {
		return Key32{}, fmt.Errorf("invalid key: %w", err)
	}
	return key, nil
}

func ParseGroupID(s string) (GroupID, error) {
	var id GroupID
	if err := decodeHex32(s, id[:]); err != nil {
		return GroupID{}, fmt.Errorf("invalid group id: %w", err)
	}
	return id, nil
}

func decodeHex32(s string, dst []byte) error {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(raw) != 32 {
		return fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(dst, raw)
	return nil
}

func (id Identity) String() string { return hex.EncodeToString(id[:]) }
func (id ChatID) String() string { return hex.EncodeToString(id[:]) }
func (id GroupID) String() string { return hex.EncodeToString(id[:]) }
func (k Key32) String() string { return hex.EncodeToString(k[:]) }

// IsZero reports whether the identity is unset. The zero identity is not
// a valid user and marks descriptor records pre-created by an invite.
func (id Identity) IsZero() bool { return id == Identity{} }

func (id Identity) MarshalJSON() ([]byte, error) { return json.Marshal(id.String()) }
func (id ChatID) MarshalJSON() ([]byte, error) { return json.Marshal(id.String()) }
func (id GroupID) MarshalJSON() ([]byte, error) { return json.Marshal(id.String()) }
func (k Key32) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

func (id *Identity) UnmarshalJSON(b []byte) error { return unmarshalHex32JSON(b, id[:], "identity") }
func (id *ChatID) UnmarshalJSON(b []byte) error { return unmarshalHex32JSON(b, id[:], "chat id") }
func (id *GroupID) UnmarshalJSON(b []byte) error { return unmarshalHex32JSON(b, id[:], "group id") }
func (k *Key32) UnmarshalJSON(b []byte) error { return unmarshalHex32JSON(b, k[:], "key") }

func unmarshalHex32JSON(b []byte, dst []byte, what string) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if err := decodeHex32(s, dst); err != nil {
		return fmt.Errorf("invalid %s: %w", what, err)
	}
	return nil
}

// Value/Scan store the raw 32 bytes as BYTEA.

func (id Identity) Value() (driver.Value, error) { return id[:], nil }
func (id ChatID) Value() (driver.Value, error) { return id[:], nil }
func (id GroupID) Value() (driver.Value, error) { return id[:], nil }
func (k Key32) Value() (driver.Value, error) { return k[:], nil }

func (id *Identity) Scan(src interface{}) error { return scanBytes32(src, id[:], "identity") }
func (id *ChatID) Scan(src interface{}) error { return scanBytes32(src, id[:], "chat id") }
func (id *GroupID) Scan(src interface{}) error { return scanBytes32(src, id[:], "group id") }
func (k *Key32) Scan(src interface{}) error { return scanBytes32(src, k[:], "key") }

func scanBytes32(src interface{}, dst []byte, what string) error {
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into %s", src, what)
	}
	if len(raw) != 32 {
		return fmt.Errorf("%s column holds %d bytes, expected 32", what, len(raw))
	}
	copy(dst, raw)
	return nil
}
