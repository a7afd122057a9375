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

// Service owns the dual-sided relationship state machine. Every
// operation reads both participants' current committed descriptors,
// validates both sides' preconditions, and only then hands the pair to
// the store, which commits them in a single transaction. Nothing is
// held across operations, so a replayed or raced call simply re-hits
// the precondition checks against whatever state committed first.
type Service struct {
	store  storage.Store
	policy Policy
	log    *logrus.Logger
}

func NewService(store storage.Store, policy Policy, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{store: store, policy: policy, log: log}
}

func (s *Service) Policy() Policy { return s.policy }

// descriptor loads the identity's relationship record, treating an
// absent record as an empty one.
func (s *Service) descriptor(owner models.Identity) (*models.WalletDescriptor, error) {
	d, err := s.store.GetDescriptor(owner)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.WalletDescriptor{Owner: owner}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load descriptor: %w", err)
	}
	return d, nil
}

// Invite starts (or restarts) a relationship. The caller supplies the
// chat hash it derived for the pair; a mismatch fails the whole call so
// a client cannot bind a conversation key to the wrong participants.
// Allowed when the subject and the peer either have no entry for each
// other or have previously rejected; a block on either side wins over
// everything. A successful invite always rewrites the conversation
// record, re-invites included.
func (s *Service) Invite(subject, invitee models.Identity, expectedHash models.ChatID) error {
	if subject == invitee {
		return ErrInvalidHash
	}
	if ChatHash(subject, invitee) != expectedHash {
		return ErrInvalidHash
	}

	sub, err := s.descriptor(subject)
	if err != nil {
		return err
	}
	cp, err := s.descriptor(invitee)
	if err != nil {
		return err
	}

	// Validate both sides before mutating either.
	for _, entry := range []*models.Peer{sub.Peer(invitee), cp.Peer(subject)} {
		if entry != nil && entry.State != models.PeerRejected {
			return ErrAlreadyInvited
		}
	}

	sub.SetPeer(invitee, models.PeerInvited)
	cp.SetPeer(subject, models.PeerRequested)

	conv := &models.Conversation{
		ChatID:       expectedHash,
		Participants: [2]models.Identity{subject, invitee},
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CommitRelationship(sub, cp, conv); err != nil {
		return fmt.Errorf("commit invite: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"subject": subject,
		"invitee": invitee,
		"chat":    expectedHash,
	}).Info("contact invite")
	return nil
}

// Accept completes a pending invite: the subject must hold Requested
// for the peer and the peer must hold Invited for the subject. Both
// sides move to Accepted.
func (s *Service) Accept(subject, peer models.Identity) error {
	sub, err := s.descriptor(subject)
	if err != nil {
		return err
	}
	cp, err := s.descriptor(peer)
	if err != nil {
		return err
	}

	mine := sub.Peer(peer)
	theirs := cp.Peer(subject)
	if mine == nil || mine.State != models.PeerRequested {
		return ErrNotRequested
	}
	if theirs == nil || theirs.State != models.PeerInvited {
		return ErrNotInvited
	}

	mine.State = models.PeerAccepted
	theirs.State = models.PeerAccepted

	if err := s.store.CommitRelationship(sub, cp, nil); err != nil {
		return fmt.Errorf("commit accept: %w", err)
	}

	s.log.WithFields(logrus.Fields{"subject": subject, "peer": peer}).Info("contact accept")
	return nil
}

// Reject declines a pending invite or, in deployments that allow it,
// removes an accepted contact. Both sides land in Rejected, from where
// only a fresh invite re-establishes the relationship.
func (s *Service) Reject(subject, peer models.Identity) error {
	sub, err := s.descriptor(subject)
	if err != nil {
		return err
	}
	cp, err := s.descriptor(peer)
	if err != nil {
		return err
	}

	mine := sub.Peer(peer)
	theirs := cp.Peer(subject)

	okMine := mine != nil && (mine.State == models.PeerRequested ||
		(s.policy.AllowUnfriend && mine.State == models.PeerAccepted))
	if !okMine {
		return ErrNotRequested
	}
	okTheirs := theirs != nil && (theirs.State == models.PeerInvited ||
		(s.policy.AllowUnfriend && theirs.State == models.PeerAccepted))
	if !okTheirs {
		return ErrNotInvited
	}

	mine.State = models.PeerRejected
	theirs.State = models.PeerRejected

	if err := s.store.CommitRelationship(sub, cp, nil); err != nil {
		return fmt.Errorf("commit reject: %w", err)
	}

	s.log.WithFields(logrus.Fields{"subject": subject, "peer": peer}).Info("contact reject")
	return nil
}

// Block freezes an existing relationship in any state. Both sides go to
// Blocked, and invites fail in both directions until an unblock.
func (s *Service) Block(subject, peer models.Identity) error {
	if !s.policy.AllowBlock {
		return ErrUnauthorized
	}

	sub, err := s.descriptor(subject)
	if err != nil {
		return err
	}
	cp, err := s.descriptor(peer)
	if err != nil {
		return err
	}

	mine := sub.Peer(peer)
	theirs := cp.Peer(subject)
	if mine == nil || theirs == nil {
		return ErrNotInvited
	}

	mine.State = models.PeerBlocked
	theirs.State = models.PeerBlocked

	if err := s.store.CommitRelationship(sub, cp, nil); err != nil {
		return fmt.Errorf("commit block: %w", err)
	}

	s.log.WithFields(logrus.Fields{"subject": subject, "peer": peer}).Info("contact block")
	return nil
}

// Unblock moves a blocked pair to Rejected on both sides, never back to
// the pre-block state: re-establishing trust takes a fresh invite.
func (s *Service) Unblock(subject, peer models.Identity) error {
	if !s.policy.AllowBlock {
		return ErrUnauthorized
	}

	sub, err := s.descriptor(subject)
	if err != nil {
		return err
	}
	cp, err := s.descriptor(peer)
	if err != nil {
		return err
	}

	mine := sub.Peer(peer)
	theirs := cp.Peer(subject)
	if mine == nil || mine.State != models.PeerBlocked {
		return ErrNotInvited
	}
	if theirs == nil || theirs.State != models.PeerBlocked {
		return ErrNotInvited
	}

	mine.State = models.PeerRejected
	theirs.State = models.PeerRejected

	if err := s.store.CommitRelationship(sub, cp, nil); err != nil {
		return fmt.Errorf("commit unblock: %w", err)
	}

	s.log.WithFields(logrus.Fields{"subject": subject, "peer": peer}).Info("contact unblock")
	return nil
}

// Contacts returns the identity's current peer list. Absent descriptors
// read as empty.
func (s *Service) Contacts(owner models.Identity) ([]models.Peer, error) {
	d, err := s.descriptor(owner)
	if err != nil {
		return nil, err
	}
	return d.Peers, nil
}

// Conversation looks up the record for a chat hash.
func (s *Service) Conversation(chatID models.ChatID) (*models.Conversation, error) {
	return s.store.GetConversation(chatID)
}
