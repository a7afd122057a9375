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

package storage

import (
	"errors"

	"github.com/mukonchat/graph/backend/models"
)

// ErrNotFound is returned by Get methods when no record exists for the
// key. Implementations translate their driver's absent-row signal into
// this so services never see driver errors.
var ErrNotFound = errors.New("record not found")

// The Commit* methods are the transaction boundary the graph relies on:
// every record passed to one call is written atomically, all or
// nothing, and concurrent operations on the same records are serialized
// by the implementation. Services read current state, validate every
// precondition, then hand the full set of changed records to a single
// Commit call.

type ContactStore interface {
	// GetDescriptor returns ErrNotFound if the identity has no
	// relationship record yet.
	GetDescriptor(owner models.Identity) (*models.WalletDescriptor, error)

	// CommitRelationship writes both sides' descriptors and, for
	// invites, the refreshed conversation record in one transaction.
	CommitRelationship(subject, counterpart *models.WalletDescriptor, conv *models.Conversation) error

	GetConversation(chatID models.ChatID) (*models.Conversation, error)
}

type ProfileStore interface {
	GetProfile(owner models.Identity) (*models.Profile, error)
	PutProfile(profile *models.Profile) error

	// CreateProfile writes the profile and ensures the owner's
	// descriptor exists, preserving any peers an earlier invite
	// already recorded against it.
	CreateProfile(profile *models.Profile, descriptor *models.WalletDescriptor) error

	// DeleteProfile removes the profile and the descriptor.
	DeleteProfile(owner models.Identity) error
}

type GroupStore interface {
	GetGroup(groupID models.GroupID) (*models.Group, error)
	PutGroup(group *models.Group) error

	// DeleteGroup removes the group together with its membership,
	// invites and key shares.
	DeleteGroup(groupID models.GroupID) error

	GetGroupInvite(groupID models.GroupID, invitee models.Identity) (*models.GroupInvite, error)
	PutGroupInvite(invite *models.GroupInvite) error

	// CommitJoin writes the grown member list and the consumed invite
	// in one transaction.
	CommitJoin(group *models.Group, invite *models.GroupInvite) error

	GetKeyShare(groupID models.GroupID, member models.Identity) (*models.GroupKeyShare, error)
	PutKeyShare(share *models.GroupKeyShare) error
	DeleteKeyShare(groupID models.GroupID, member models.Identity) error
}

type Store interface {
	ContactStore
	ProfileStore
	GroupStore
}
