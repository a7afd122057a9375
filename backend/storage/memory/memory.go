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

// Package memory is an in-process storage.Store used by tests and local
// development. A single mutex serializes operations, which trivially
// gives each Commit call the all-or-nothing behavior the interface
// demands.
package memory

import (
	"sync"

	"github.com/mukonchat/graph/backend/models"
	"github.com/mukonchat/graph/backend/storage"
)

type shareKey struct {
	group  models.GroupID
	member models.Identity
}

type inviteKey struct {
	group   models.GroupID
	invitee models.Identity
}

type Store struct {
	mu            sync.Mutex
	descriptors   map[models.Identity]*models.WalletDescriptor
	profiles      map[models.Identity]*models.Profile
	conversations map[models.ChatID]*models.Conversation
	groups        map[models.GroupID]*models.Group
	invites       map[inviteKey]*models.GroupInvite
	shares        map[shareKey]*models.GroupKeyShare
}

func NewStore() *Store {
	return &Store{
		descriptors:   make(map[models.Identity]*models.WalletDescriptor),
		profiles:      make(map[models.Identity]*models.Profile),
		conversations: make(map[models.ChatID]*models.Conversation),
		groups:        make(map[models.GroupID]*models.Group),
		invites:       make(map[inviteKey]*models.GroupInvite),
		shares:        make(map[shareKey]*models.GroupKeyShare),
	}
}

// Records are deep-copied on the way in and out so callers can never
// mutate committed state outside a Commit call.

func copyDescriptor(d *models.WalletDescriptor) *models.WalletDescriptor {
	out := &models.WalletDescriptor{Owner: d.Owner, Peers: make([]models.Peer, len(d.Peers))}
	copy(out.Peers, d.Peers)
	return out
}

func copyGroup(g *models.Group) *models.Group {
	out := *g
	out.Members = make([]models.Identity, len(g.Members))
	copy(out.Members, g.Members)
	if g.TokenGate != nil {
		gate := *g.TokenGate
		out.TokenGate = &gate
	}
	return &out
}

func (s *Store) GetDescriptor(owner models.Identity) (*models.WalletDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.descriptors[owner]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyDescriptor(d), nil
}

func (s *Store) CommitRelationship(subject, counterpart *models.WalletDescriptor, conv *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.descriptors[subject.Owner] = copyDescriptor(subject)
	s.descriptors[counterpart.Owner] = copyDescriptor(counterpart)
	if conv != nil {
		c := *conv
		s.conversations[conv.ChatID] = &c
	}
	return nil
}

func (s *Store) GetConversation(chatID models.ChatID) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[chatID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *Store) GetProfile(owner models.Identity) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[owner]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (s *Store) PutProfile(profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *profile
	s.profiles[profile.Owner] = &p
	return nil
}

func (s *Store) CreateProfile(profile *models.Profile, descriptor *models.WalletDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *profile
	s.profiles[profile.Owner] = &p
	s.descriptors[descriptor.Owner] = copyDescriptor(descriptor)
	return nil
}

func (s *Store) DeleteProfile(owner models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, owner)
	delete(s.descriptors, owner)
	return nil
}

func (s *Store) GetGroup(groupID models.GroupID) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyGroup(g), nil
}

func (s *Store) PutGroup(group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[group.GroupID] = copyGroup(group)
	return nil
}

func (s *Store) DeleteGroup(groupID models.GroupID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, groupID)
	for k := range s.invites {
		if k.group == groupID {
			delete(s.invites, k)
		}
	}
	for k := range s.shares {
		if k.group == groupID {
			delete(s.shares, k)
		}
	}
	return nil
}

func (s *Store) GetGroupInvite(groupID models.GroupID, invitee models.Identity) (*models.GroupInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[inviteKey{groupID, invitee}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *inv
	return &out, nil
}

func (s *Store) PutGroupInvite(invite *models.GroupInvite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := *invite
	s.invites[inviteKey{invite.GroupID, invite.Invitee}] = &inv
	return nil
}

func (s *Store) CommitJoin(group *models.Group, invite *models.GroupInvite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[group.GroupID] = copyGroup(group)
	inv := *invite
	s.invites[inviteKey{invite.GroupID, invite.Invitee}] = &inv
	return nil
}

func (s *Store) GetKeyShare(groupID models.GroupID, member models.Identity) (*models.GroupKeyShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shares[shareKey{groupID, member}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *sh
	out.EncryptedKey = append([]byte(nil), sh.EncryptedKey...)
	return &out, nil
}

func (s *Store) PutKeyShare(share *models.GroupKeyShare) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh := *share
	sh.EncryptedKey = append([]byte(nil), share.EncryptedKey...)
	s.shares[shareKey{share.GroupID, share.Member}] = &sh
	return nil
}

func (s *Store) DeleteKeyShare(groupID models.GroupID, member models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.shares, shareKey{groupID, member})
	return nil
}
