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

import (
	"crypto/rand"
	"fmt"
)

// Share is one party's portion of a secret. XOR of all parties' Data
// reconstructs the secret; any proper subset is uniformly random and
// reveals nothing.
type Share struct {
	Party int    `json:"party"`
	Data  []byte `json:"data"`
}

// Split produces one share per party. The first parties-1 shares are
// random; the last is the XOR of the secret with all of them.
func Split(secret []byte, parties int) ([]Share, error) {
	if parties < 2 {
		return nil, fmt.Errorf("need at least 2 parties, got %d", parties)
	}

	shares := make([]Share, parties)
	last := make([]byte, len(secret))
	copy(last, secret)

	for i := 0; i < parties-1; i++ {
		data := make([]byte, len(secret))
		if _, err := rand.Read(data); err != nil {
			return nil, fmt.Errorf("draw share randomness: %w", err)
		}
		for j := range last {
			last[j] ^= data[j]
		}
		shares[i] = Share{Party: i, Data: data}
	}
	shares[parties-1] = Share{Party: parties - 1, Data: last}

	return shares, nil
}

// Combine reconstructs the secret from a complete share set.
func Combine(shares []Share) ([]byte, error) {
	if len(shares) < 2 {
		return nil, fmt.Errorf("need at least 2 shares, got %d", len(shares))
	}
	secret := make([]byte, len(shares[0].Data))
	for _, sh := range shares {
		if len(sh.Data) != len(secret) {
			return nil, fmt.Errorf("share %d is %d bytes, expected %d", sh.Party, len(sh.Data), len(secret))
		}
		for j := range secret {
			secret[j] ^= sh.Data[j]
		}
	}
	return secret, nil
}

// wipe zeroes a reconstructed secret once the evaluation is done with
// it.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
