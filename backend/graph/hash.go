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

package graph

import (
	"crypto/sha256"

	"github.com/mukonchat/graph/backend/models"
)

// ChatHash derives the conversation key for a pair of identities:
// the pair is ordered at the first differing byte (smaller first), the
// ordered 64 bytes are hashed with SHA-256. Commutative, so both
// participants derive the same key. Equal identities are not a valid
// pair; the buffer then stays zeroed and the result is the hash of
// 64 zero bytes.
func ChatHash(a, b models.Identity) models.ChatID {
	var buf [64]byte

	for i := 0; i < len(a); i++ {
		if a[i] == b[i] {
			continue
		}
		if a[i] < b[i] {
			copy(buf[0:32], a[:])
			copy(buf[32:64], b[:])
		} else {
			copy(buf[0:32], b[:])
			copy(buf[32:64], a[:])
		}
		break
	}

	return models.ChatID(sha256.Sum256(buf[:]))
}
