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
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mukonchat/graph/backend/models"
	"github.com/mukonchat/graph/backend/storage"
)

// CreateGroup creates a group with the caller as sole member. The gate,
// if any, applies to invite acceptance from then on. The handle must be
// unused: creating over an existing group would let anyone replace its
// creator and wipe its membership.
func (s *Service) CreateGroup(creator models.Identity, groupID models.GroupID, name string, encryptionKey models.Key32, gate *models.TokenGate) error {
	if len(name) > models.MaxGroupNameBytes {
		return ErrGroupNameTooLong
	}
	if gate != nil && !s.policy.AllowTokenGates {
		return ErrUnauthorized
	}

	if _, err := s.store.GetGroup(groupID); err == nil {
		return ErrGroupExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load group: %w", err)
	}

	group := &models.Group{
		GroupID:          groupID,
		Creator:          creator,
		Name:             name,
		CreatedAt:        time.Now().UTC(),
		Members:          []models.Identity{creator},
		EncryptionPubkey: encryptionKey,
		TokenGate:        gate,
	}
	if err := s.store.PutGroup(group); err != nil {
		return fmt.Errorf("commit group create: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"group":   groupID,
		"creator": creator,
		"name":    name,
	}).Info("group created")
	return nil
}

// UpdateGroup lets the creator rename the group or replace the gate.
// There is no way to clear a gate: passing nil leaves the current one in
// place.
func (s *Service) UpdateGroup(caller models.Identity, groupID models.GroupID, name *string, gate *models.TokenGate) error {
	group, err := s.group(groupID)
	if err != nil {
		return err
	}
	if group.Creator != caller {
		return ErrNotGroupAdmin
	}

	if name != nil {
		if len(*name) > models.MaxGroupNameBytes {
			return ErrGroupNameTooLong
		}
		group.Name = *name
	}
	if gate != nil {
		if !s.policy.AllowTokenGates {
			return ErrUnauthorized
		}
		group.TokenGate = gate
	}

	if err := s.store.PutGroup(group); err != nil {
		return fmt.Errorf("commit group update: %w", err)
	}

	s.log.WithField("group", groupID).Info("group updated")
	return nil
}

// InviteToGroup records a pending invite. Any current member may
// invite. Re-inviting the same identity overwrites the previous invite
// whatever its status, which doubles as an idempotent re-send.
func (s *Service) InviteToGroup(caller, invitee models.Identity, groupID models.GroupID) error {
	group, err := s.group(groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(caller) {
		return ErrNotGroupMember
	}
	if len(group.Members) >= models.MaxGroupMembers {
		return ErrGroupFull
	}
	if group.HasMember(invitee) {
		return ErrAlreadyInvited
	}

	invite := &models.GroupInvite{
		GroupID:   groupID,
		Inviter:   caller,
		Invitee:   invitee,
		Status:    models.InvitePending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.PutGroupInvite(invite); err != nil {
		return fmt.Errorf("commit group invite: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"group":   groupID,
		"inviter": caller,
		"invitee": invitee,
	}).Info("group invite")
	return nil
}

// AcceptGroupInvite joins the caller to the group. A gated group
// requires a balance attestation naming the caller, the gated asset and
// at least the minimum balance; its authenticity against the asset
// ledger is the attestation issuer's problem, not ours. The grown
// member list and the consumed invite commit together.
func (s *Service) AcceptGroupInvite(caller models.Identity, groupID models.GroupID, attestation *models.BalanceAttestation) error {
	group, err := s.group(groupID)
	if err != nil {
		return err
	}
	invite, err := s.invite(groupID, caller)
	if err != nil {
		return err
	}
	if invite.Status != models.InvitePending || invite.Invitee != caller {
		return ErrNotInvited
	}

	if gate := group.TokenGate; gate != nil {
		if attestation == nil {
			return ErrTokenAccountRequired
		}
		if attestation.Owner != caller {
			return ErrInvalidTokenAccount
		}
		if attestation.Asset != gate.Asset {
			return ErrInsufficientTokenBalance
		}
		if attestation.Balance < gate.MinBalance {
			return ErrInsufficientTokenBalance
		}
	}

	if len(group.Members) >= models.MaxGroupMembers {
		return ErrGroupFull
	}

	group.Members = append(group.Members, caller)
	invite.Status = models.InviteAccepted

	if err := s.store.CommitJoin(group, invite); err != nil {
		return fmt.Errorf("commit group join: %w", err)
	}

	s.log.WithFields(logrus.Fields{"group": groupID, "member": caller}).Info("group invite accepted")
	return nil
}

// RejectGroupInvite declines a pending invite addressed to the caller.
func (s *Service) RejectGroupInvite(caller models.Identity, groupID models.GroupID) error {
	invite, err := s.invite(groupID, caller)
	if err != nil {
		return err
	}
	if invite.Status != models.InvitePending || invite.Invitee != caller {
		return ErrNotInvited
	}

	invite.Status = models.InviteRejected
	if err := s.store.PutGroupInvite(invite); err != nil {
		return fmt.Errorf("commit invite reject: %w", err)
	}

	s.log.WithFields(logrus.Fields{"group": groupID, "invitee": caller}).Info("group invite rejected")
	return nil
}

// LeaveGroup removes the caller from the member list. The creator can
// never leave; closing the group is their only exit.
func (s *Service) LeaveGroup(caller models.Identity, groupID models.GroupID) error {
	group, err := s.group(groupID)
	if err != nil {
		return err
	}
	if group.Creator == caller {
		return ErrCannotRemoveCreator
	}
	if !group.HasMember(caller) {
		return ErrNotGroupMember
	}

	group.RemoveMember(caller)
	if err := s.store.PutGroup(group); err != nil {
		return fmt.Errorf("commit group leave: %w", err)
	}

	s.log.WithFields(logrus.Fields{"group": groupID, "member": caller}).Info("left group")
	return nil
}

// KickMember removes a member. Creator-only, and the creator cannot be
// kicked, themselves included.
func (s *Service) KickMember(caller, target models.Identity, groupID models.GroupID) error {
	group, err := s.group(groupID)
	if err != nil {
		return err
	}
	if group.Creator != caller {
		return ErrNotGroupAdmin
	}
	if target == group.Creator {
		return ErrCannotRemoveCreator
	}
	if !group.HasMember(target) {
		return ErrNotGroupMember
	}

	group.RemoveMember(target)
	if err := s.store.PutGroup(group); err != nil {
		return fmt.Errorf("commit group kick: %w", err)
	}

	s.log.WithFields(logrus.Fields{"group": groupID, "member": target}).Info("kicked from group")
	return nil
}

// CloseGroup destroys the group record and everything keyed under it:
// membership, invites, key shares.
func (s *Service) CloseGroup(caller models.Identity, groupID models.GroupID) error {
	group, err := s.group(groupID)
	if err != nil {
		return err
	}
	if group.Creator != caller {
		return ErrNotGroupAdmin
	}

	if err := s.store.DeleteGroup(groupID); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}

	s.log.WithField("group", groupID).Info("group closed")
	return nil
}

// Group returns a group record.
func (s *Service) Group(groupID models.GroupID) (*models.Group, error) {
	return s.group(groupID)
}

func (s *Service) group(groupID models.GroupID) (*models.Group, error) {
	group, err := s.store.GetGroup(groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotGroupMember
	}
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}
	return group, nil
}

func (s *Service) invite(groupID models.GroupID, invitee models.Identity) (*models.GroupInvite, error) {
	invite, err := s.store.GetGroupInvite(groupID, invitee)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotInvited
	}
	if err != nil {
		return nil, fmt.Errorf("load group invite: %w", err)
	}
	return invite, nil
}
