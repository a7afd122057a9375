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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mukonchat/graph/backend/models"
)

func ident(b byte) models.Identity {
	var id models.Identity
	id[0] = b
	return id
}

func TestChatHashSymmetric(t *testing.T) {
	a := ident(1)
	b := ident(2)

	assert.Equal(t, ChatHash(a, b), ChatHash(b, a))
}

func TestChatHashDeterministic(t *testing.T) {
	a := ident(7)
	b := ident(9)

	assert.Equal(t, ChatHash(a, b), ChatHash(a, b))
}

func TestChatHashDistinctPairs(t *testing.T) {
	a := ident(1)
	b := ident(2)
	c := ident(3)

	assert.NotEqual(t, ChatHash(a, b), ChatHash(a, c))
	assert.NotEqual(t, ChatHash(a, b), ChatHash(b, c))
}

func TestChatHashOrdersAtFirstDifferingByte(t *testing.T) {
	// Identical leading bytes: the order must be decided by the first
	// byte that differs, not the first byte overall.
	var a, b models.Identity
	a[0], b[0] = 5, 5
	a[31], b[31] = 1, 2

	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	expected := models.ChatID(sha256.Sum256(buf[:]))

	assert.Equal(t, expected, ChatHash(a, b))
	assert.Equal(t, expected, ChatHash(b, a))
}

func TestChatHashEqualInputs(t *testing.T) {
	a := ident(4)

	var zero [64]byte
	expected := models.ChatID(sha256.Sum256(zero[:]))

	assert.Equal(t, expected, ChatHash(a, a))
}
