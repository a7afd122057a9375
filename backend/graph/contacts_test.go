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
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukonchat/graph/backend/models"
	"github.com/mukonchat/graph/backend/storage/memory"
)

func newTestService(t *testing.T, policy Policy) *Service {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(memory.NewStore(), policy, log)
}

// peerState looks up the state owner currently holds for peer, failing
// the test when no entry exists.
func peerState(t *testing.T, s *Service, owner, peer models.Identity) models.PeerState {
	t.Helper()
	peers, err := s.Contacts(owner)
	require.NoError(t, err)
	for _, p := range peers {
		if p.Wallet == peer {
			return p.State
		}
	}
	t.Fatalf("no entry for %s in %s's contacts", peer, owner)
	return 0
}

func invite(t *testing.T, s *Service, from, to models.Identity) {
	t.Helper()
	require.NoError(t, s.Invite(from, to, ChatHash(from, to)))
}

func TestInviteCreatesPendingPair(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice, bob := ident(1), ident(2)

	invite(t, s, alice, bob)

	assert.Equal(t, models.PeerInvited, peerState(t, s, alice, bob))
	assert.Equal(t, models.PeerRequested, peerState(t, s, bob, alice))

	conv, err := s.Conversation(ChatHash(alice, bob))
	require.NoError(t, err)
	assert.Equal(t, [2]models.Identity{alice, bob}, conv.Participants)
}

func TestInviteRejectsWrongHash(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice, bob, carol := ident(1), ident(2), ident(3)

	err := s.Invite(alice, bob, ChatHash(alice, carol))
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestInviteRejectsSelf(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice := ident(1)

	err := s.Invite(alice, alice, ChatHash(alice, alice))
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestInviteFailsWhilePending(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice, bob := ident(1), ident(2)
	invite(t, s, alice, bob)

	assert.ErrorIs(t, s.Invite(alice, bob, ChatHash(alice, bob)), ErrAlreadyInvited)
	assert.ErrorIs(t, s.Invite(bob, alice, ChatHash(alice, bob)), ErrAlreadyInvited)
}

func TestInviteFailsWhileAccepted(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice, bob := ident(1), ident(2)
	invite(t, s, alice, bob)
	require.NoError(t, s.Accept(bob, alice))

	assert.ErrorIs(t, s.Invite(alice, bob, ChatHash(alice, bob)), ErrAlreadyInvited)
}

func TestAcceptCompletesBothSides(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice, bob := ident(1), ident(2)
	invite(t, s, alice, bob)

	require.NoError(t, s.Accept(bob, alice))

	assert.Equal(t, models.PeerAccepted, peerState(t, s, alice, bob))
	assert.Equal(t, models.PeerAccepted, peerState(t, s, bob, alice))
}

func TestAcceptRequiresIncomingInvite(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice, bob := ident(1), ident(2)
	invite(t, s, alice, bob)

	// The inviter holds Invited, not Requested, and cannot accept its
	// own invite.
	assert.ErrorIs(t, s.Accept(alice, bob), ErrNotRequested)
}

func TestAcceptWithoutRelationship(t *testing.T) {
	s := newTestService(t, FullPolicy)
	assert.ErrorIs(t, s.Accept(ident(1), ident(2)), ErrNotRequested)
}

func TestRejectPendingInvite(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice, bob := ident(1), ident(2)
	invite(t, s, alice, bob)

	require.NoError(t, s.Reject(bob, alice))

	assert.Equal(t, models.PeerRejected, peerState(t, s, alice, bob))
	assert.Equal(t, models.PeerRejected, peerState(t, s, bob, alice))
}

func TestReinviteAfterReject(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice, bob := ident(1), ident(2)
	invite(t, s, alice, bob)
	require.NoError(t, s.Reject(bob, alice))

	// Either side may restart from Rejected.
	invite(t, s, bob, alice)

	assert.Equal(t, models.PeerInvited, peerState(t, s, bob, alice))
	assert.Equal(t, models.PeerRequested, peerState(t, s, alice, bob))

	conv, err := s.Conversation(ChatHash(alice, bob))
	require.NoError(t, err)
	assert.Equal(t, [2]models.Identity{bob, alice}, conv.Participants)
}

func TestUnfriendAcceptedContact(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice, bob := ident(1), ident(2)
	invite(t, s, alice, bob)
	require.NoError(t, s.Accept(bob, alice))

	require.NoError(t, s.Reject(alice, bob))

	assert.Equal(t, models.PeerRejected, peerState(t, s, alice, bob))
	assert.Equal(t, models.PeerRejected, peerState(t, s, bob, alice))
}

func TestBlockFreezesBothSides(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice, bob := ident(1), ident(2)
	invite(t, s, alice, bob)
	require.NoError(t, s.Accept(bob, alice))

	require.NoError(t, s.Block(alice, bob))

	assert.Equal(t, models.PeerBlocked, peerState(t, s, alice, bob))
	assert.Equal(t, models.PeerBlocked, peerState(t, s, bob, alice))

	// Fresh invites fail in both directions while blocked.
	assert.ErrorIs(t, s.Invite(alice, bob, ChatHash(alice, bob)), ErrAlreadyInvited)
	assert.ErrorIs(t, s.Invite(bob, alice, ChatHash(alice, bob)), ErrAlreadyInvited)
}

func TestBlockRequiresRelationship(t *testing.T) {
	s := newTestService(t, FullPolicy)
	assert.ErrorIs(t, s.Block(ident(1), ident(2)), ErrNotInvited)
}

func TestUnblockLandsInRejected(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice, bob := ident(1), ident(2)
	invite(t, s, alice, bob)
	require.NoError(t, s.Accept(bob, alice))
	require.NoError(t, s.Block(alice, bob))

	require.NoError(t, s.Unblock(alice, bob))

	// Never back to Accepted: trust is re-established by invite only.
	assert.Equal(t, models.PeerRejected, peerState(t, s, alice, bob))
	assert.Equal(t, models.PeerRejected, peerState(t, s, bob, alice))

	invite(t, s, alice, bob)
	require.NoError(t, s.Accept(bob, alice))
	assert.Equal(t, models.PeerAccepted, peerState(t, s, alice, bob))
}

func TestUnblockRequiresBlockedPair(t *testing.T) {
	s := newTestService(t, FullPolicy)
	alice, bob := ident(1), ident(2)
	invite(t, s, alice, bob)

	assert.ErrorIs(t, s.Unblock(alice, bob), ErrNotInvited)
}

func TestBasicPolicyDisablesBlocking(t *testing.T) {
	s := newTestService(t, BasicPolicy)
	alice, bob := ident(1), ident(2)
	invite(t, s, alice, bob)

	assert.ErrorIs(t, s.Block(alice, bob), ErrUnauthorized)
	assert.ErrorIs(t, s.Unblock(alice, bob), ErrUnauthorized)
}

func TestBasicPolicyDisablesUnfriend(t *testing.T) {
	s := newTestService(t, BasicPolicy)
	alice, bob := ident(1), ident(2)
	invite(t, s, alice, bob)
	require.NoError(t, s.Accept(bob, alice))

	assert.ErrorIs(t, s.Reject(alice, bob), ErrNotRequested)
	assert.Equal(t, models.PeerAccepted, peerState(t, s, alice, bob))
}

func TestContactsEmptyForUnknownIdentity(t *testing.T) {
	s := newTestService(t, FullPolicy)
	peers, err := s.Contacts(ident(9))
	require.NoError(t, err)
	assert.Empty(t, peers)
}
