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

// Register creates the caller's profile and relationship record. If an
// incoming invite already created the descriptor, its pending entries
// are preserved, so invitations sent before registration are waiting
// when the user first shows up. Registering twice fails: an existing
// profile is only changed through UpdateProfile.
func (s *Service) Register(owner models.Identity, displayName, avatarData string, encryptionKey models.Key32) error {
	if len(displayName) > models.MaxDisplayNameBytes {
		return ErrDisplayNameTooLong
	}

	if _, err := s.store.GetProfile(owner); err == nil {
		return ErrProfileExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load profile: %w", err)
	}

	descriptor, err := s.descriptor(owner)
	if err != nil {
		return err
	}

	profile := &models.Profile{
		Owner:               owner,
		DisplayName:         displayName,
		AvatarType:          models.AvatarEmoji,
		AvatarData:          avatarData,
		EncryptionPublicKey: encryptionKey,
	}
	if err := s.store.CreateProfile(profile, descriptor); err != nil {
		return fmt.Errorf("commit register: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"owner":        owner,
		"display_name": displayName,
	}).Info("profile registered")
	return nil
}

// ProfileUpdate carries the optional fields of UpdateProfile; nil means
// leave unchanged.
type ProfileUpdate struct {
	DisplayName         *string
	AvatarType          *models.AvatarType
	AvatarData          *string
	EncryptionPublicKey *models.Key32
}

// UpdateProfile applies the present fields to the caller's own profile.
func (s *Service) UpdateProfile(owner models.Identity, update ProfileUpdate) error {
	profile, err := s.store.GetProfile(owner)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUnauthorized
	}
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	if update.DisplayName != nil {
		if len(*update.DisplayName) > models.MaxDisplayNameBytes {
			return ErrDisplayNameTooLong
		}
		profile.DisplayName = *update.DisplayName
	}
	if update.AvatarType != nil {
		profile.AvatarType = *update.AvatarType
	}
	if update.AvatarData != nil {
		profile.AvatarData = *update.AvatarData
	}
	if update.EncryptionPublicKey != nil {
		profile.EncryptionPublicKey = *update.EncryptionPublicKey
	}

	if err := s.store.PutProfile(profile); err != nil {
		return fmt.Errorf("commit profile update: %w", err)
	}

	s.log.WithField("owner", owner).Info("profile updated")
	return nil
}

// Profile returns an identity's profile.
func (s *Service) Profile(owner models.Identity) (*models.Profile, error) {
	return s.store.GetProfile(owner)
}

// CloseProfile destroys the caller's profile and relationship record.
// Destructive: peers still hold their mirrored entries until they act
// on them.
func (s *Service) CloseProfile(owner models.Identity) error {
	if err := s.store.DeleteProfile(owner); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	s.log.WithField("owner", owner).Info("profile closed")
	return nil
}
