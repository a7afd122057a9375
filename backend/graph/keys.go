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

	"github.com/sirupsen/logrus"

	"github.com/mukonchat/graph/backend/models"
	"github.com/mukonchat/graph/backend/storage"
)

// StoreGroupKey upserts the caller's own encrypted key share for a
// group. The blob is opaque: no decryption, no validation of contents.
func (s *Service) StoreGroupKey(caller models.Identity, groupID models.GroupID, encryptedKey []byte, nonce [24]byte) error {
	group, err := s.group(groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(caller) {
		return ErrNotGroupMember
	}

	share := &models.GroupKeyShare{
		GroupID:      groupID,
		Member:       caller,
		EncryptedKey: encryptedKey,
		Nonce:        nonce,
	}
	if err := s.store.PutKeyShare(share); err != nil {
		return fmt.Errorf("commit key share: %w", err)
	}

	s.log.WithFields(logrus.Fields{"group": groupID, "member": caller}).Info("group key stored")
	return nil
}

// GroupKey returns the caller's own key share.
func (s *Service) GroupKey(caller models.Identity, groupID models.GroupID) (*models.GroupKeyShare, error) {
	share, err := s.store.GetKeyShare(groupID, caller)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load key share: %w", err)
	}
	return share, nil
}

// CloseGroupKey destroys the caller's key share. Only the owner of a
// share can destroy it.
func (s *Service) CloseGroupKey(caller models.Identity, groupID models.GroupID) error {
	share, err := s.store.GetKeyShare(groupID, caller)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUnauthorized
	}
	if err != nil {
		return fmt.Errorf("load key share: %w", err)
	}
	if share.Member != caller {
		return ErrUnauthorized
	}

	if err := s.store.DeleteKeyShare(groupID, caller); err != nil {
		return fmt.Errorf("delete key share: %w", err)
	}

	s.log.WithFields(logrus.Fields{"group": groupID, "member": caller}).Info("group key share closed")
	return nil
}
