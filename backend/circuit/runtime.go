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
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/nacl/box"
)

// EncryptedList is a contact list split into per-party shares.
type EncryptedList struct {
	Shares []Share `json:"shares"`
}

// EncryptedQuery is a queried pubkey split into per-party shares.
type EncryptedQuery struct {
	Shares []Share `json:"shares"`
}

// SealedResult is a circuit output sealed to the data owner's public
// key. Nobody else, the evaluating parties included, can open it.
type SealedResult struct {
	Box []byte `json:"box"`
}

// Runtime is the computation substrate that evaluates a circuit over
// encrypted inputs. A call blocks until the evaluation completes or
// fails; there are no partial results and no cancellation beyond the
// context.
type Runtime interface {
	IsAcceptedContact(ctx context.Context, list EncryptedList, query EncryptedQuery, ownerKey *[32]byte) (SealedResult, error)
	CountAccepted(ctx context.Context, list EncryptedList, ownerKey *[32]byte) (SealedResult, error)
}

// Cluster is the reference executor: it stands in for a quorum of
// non-colluding parties, each holding one share. Shares are combined
// only transiently inside an evaluation and wiped afterwards; the
// evaluation itself is the fixed-trace circuit code, and only the
// sealed result survives the call.
type Cluster struct {
	parties int
}

// NewCluster configures an executor for the given quorum size.
func NewCluster(parties int) (*Cluster, error) {
	if parties < 2 {
		return nil, fmt.Errorf("quorum needs at least 2 parties, got %d", parties)
	}
	return &Cluster{parties: parties}, nil
}

func (c *Cluster) Parties() int { return c.parties }

func (c *Cluster) IsAcceptedContact(ctx context.Context, list EncryptedList, query EncryptedQuery, ownerKey *[32]byte) (SealedResult, error) {
	if err := ctx.Err(); err != nil {
		return SealedResult{}, err
	}

	plainList, err := c.reconstructList(list)
	if err != nil {
		return SealedResult{}, err
	}
	plainQuery, err := c.reconstruct(query.Shares, 32, "query")
	if err != nil {
		return SealedResult{}, err
	}
	defer wipe(plainQuery)

	var pubkey [32]byte
	copy(pubkey[:], plainQuery)

	result := byte(0)
	if IsAcceptedContact(plainList, pubkey) {
		result = 1
	}
	*plainList = ContactList{}

	return seal([]byte{result}, ownerKey)
}

func (c *Cluster) CountAccepted(ctx context.Context, list EncryptedList, ownerKey *[32]byte) (SealedResult, error) {
	if err := ctx.Err(); err != nil {
		return SealedResult{}, err
	}

	plainList, err := c.reconstructList(list)
	if err != nil {
		return SealedResult{}, err
	}

	count := CountAccepted(plainList)
	*plainList = ContactList{}

	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, count)
	return seal(out, ownerKey)
}

func (c *Cluster) reconstructList(list EncryptedList) (*ContactList, error) {
	raw, err := c.reconstruct(list.Shares, listSize, "contact list")
	if err != nil {
		return nil, err
	}
	defer wipe(raw)
	return UnmarshalList(raw)
}

func (c *Cluster) reconstruct(shares []Share, size int, what string) ([]byte, error) {
	if len(shares) != c.parties {
		return nil, fmt.Errorf("%s has %d shares, quorum is %d", what, len(shares), c.parties)
	}
	raw, err := Combine(shares)
	if err != nil {
		return nil, fmt.Errorf("combine %s shares: %w", what, err)
	}
	if len(raw) != size {
		wipe(raw)
		return nil, fmt.Errorf("%s is %d bytes, expected %d", what, len(raw), size)
	}
	return raw, nil
}

func seal(msg []byte, ownerKey *[32]byte) (SealedResult, error) {
	sealed, err := box.SealAnonymous(nil, msg, ownerKey, rand.Reader)
	if err != nil {
		return SealedResult{}, fmt.Errorf("seal result: %w", err)
	}
	return SealedResult{Box: sealed}, nil
}

// Owner-side helpers. The owner splits its mirror and query into
// shares, hands them to the runtime, and opens the sealed result with
// its keypair.

// EncryptList splits a plaintext mirror into one share per party.
func EncryptList(list *ContactList, parties int) (EncryptedList, error) {
	shares, err := Split(list.Marshal(), parties)
	if err != nil {
		return EncryptedList{}, err
	}
	return EncryptedList{Shares: shares}, nil
}

// EncryptQuery splits a queried pubkey into one share per party.
func EncryptQuery(pubkey [32]byte, parties int) (EncryptedQuery, error) {
	shares, err := Split(pubkey[:], parties)
	if err != nil {
		return EncryptedQuery{}, err
	}
	return EncryptedQuery{Shares: shares}, nil
}

// OwnerKeypair generates the keypair circuit results are sealed to.
func OwnerKeypair() (publicKey, privateKey *[32]byte, err error) {
	return box.GenerateKey(rand.Reader)
}

// OpenBool opens a sealed membership result.
func OpenBool(res SealedResult, publicKey, privateKey *[32]byte) (bool, error) {
	msg, ok := box.OpenAnonymous(nil, res.Box, publicKey, privateKey)
	if !ok {
		return false, fmt.Errorf("cannot open sealed result")
	}
	if len(msg) != 1 {
		return false, fmt.Errorf("boolean result is %d bytes", len(msg))
	}
	return msg[0] == 1, nil
}

// OpenCount opens a sealed count result.
func OpenCount(res SealedResult, publicKey, privateKey *[32]byte) (uint32, error) {
	msg, ok := box.OpenAnonymous(nil, res.Box, publicKey, privateKey)
	if !ok {
		return 0, fmt.Errorf("cannot open sealed result")
	}
	if len(msg) != 4 {
		return 0, fmt.Errorf("count result is %d bytes", len(msg))
	}
	return binary.BigEndian.Uint32(msg), nil
}
