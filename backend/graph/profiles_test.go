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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukonchat/graph/backend/models"
)

func key32(b byte) models.Key32 {
	var k models.Key32
	k[0] = b
	return k
}

func TestRegisterAndFetchProfile(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice := ident(1)

	require.NoError(t, s.Register(alice, "alice", "🦊", key32(0xaa)))

	profile, err := s.Profile(alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.DisplayName)
	assert.Equal(t, models.AvatarEmoji, profile.AvatarType)
	assert.Equal(t, "🦊", profile.AvatarData)
	assert.Equal(t, key32(0xaa), profile.EncryptionPublicKey)
}

func TestRegisterRejectsLongDisplayName(t *testing.T) {
	s := newTestService(t, FullPolicy)
	name := strings.Repeat("x", models.MaxDisplayNameBytes+1)

	err := s.Register(ident(1), name, "", key32(1))
	assert.ErrorIs(t, err, ErrDisplayNameTooLong)
}

func TestRegisterRejectsExistingProfile(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice := ident(1)
	require.NoError(t, s.Register(alice, "alice", "🦊", key32(1)))

	err := s.Register(alice, "mallory", "👻", key32(2))
	assert.ErrorIs(t, err, ErrProfileExists)

	profile, err := s.Profile(alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.DisplayName)
	assert.Equal(t, "🦊", profile.AvatarData)
	assert.Equal(t, key32(1), profile.EncryptionPublicKey)
}

func TestRegisterPreservesPendingInvites(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice, bob := ident(1), ident(2)

	// Alice invites Bob before Bob ever registers.
	invite(t, s, alice, bob)
	require.NoError(t, s.Register(bob, "bob", "", key32(2)))

	// The pending entry survives registration, so Bob can accept.
	assert.Equal(t, models.PeerRequested, peerState(t, s, bob, alice))
	require.NoError(t, s.Accept(bob, alice))
}

func TestUpdateProfileFields(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice := ident(1)
	require.NoError(t, s.Register(alice, "alice", "🦊", key32(1)))

	name := "alice v2"
	avatarType := models.AvatarNFT
	avatarData := "asset:1234"
	newKey := key32(0xbb)
	require.NoError(t, s.UpdateProfile(alice, ProfileUpdate{
		DisplayName:         &name,
		AvatarType:          &avatarType,
		AvatarData:          &avatarData,
		EncryptionPublicKey: &newKey,
	}))

	profile, err := s.Profile(alice)
	require.NoError(t, err)
	assert.Equal(t, "alice v2", profile.DisplayName)
	assert.Equal(t, models.AvatarNFT, profile.AvatarType)
	assert.Equal(t, "asset:1234", profile.AvatarData)
	assert.Equal(t, newKey, profile.EncryptionPublicKey)
}

func TestUpdateProfilePartial(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice := ident(1)
	require.NoError(t, s.Register(alice, "alice", "🦊", key32(1)))

	name := "renamed"
	require.NoError(t, s.UpdateProfile(alice, ProfileUpdate{DisplayName: &name}))

	profile, err := s.Profile(alice)
	require.NoError(t, err)
	assert.Equal(t, "renamed", profile.DisplayName)
	assert.Equal(t, "🦊", profile.AvatarData)
	assert.Equal(t, key32(1), profile.EncryptionPublicKey)
}

func TestUpdateProfileRejectsLongDisplayName(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice := ident(1)
	require.NoError(t, s.Register(alice, "alice", "", key32(1)))

	name := strings.Repeat("x", models.MaxDisplayNameBytes+1)
	err := s.UpdateProfile(alice, ProfileUpdate{DisplayName: &name})
	assert.ErrorIs(t, err, ErrDisplayNameTooLong)
}

func TestUpdateProfileWithoutRegistration(t *testing.T) {
	s := newTestService(t, FullPolicy)
	name := "ghost"
	err := s.UpdateProfile(ident(1), ProfileUpdate{DisplayName: &name})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCloseProfile(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice := ident(1)
	require.NoError(t, s.Register(alice, "alice", "", key32(1)))

	require.NoError(t, s.CloseProfile(alice))

	_, err := s.Profile(alice)
	assert.Error(t, err)
}
