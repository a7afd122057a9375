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

package postgres

import (
	"database/sql"

	"github.com/mukonchat/graph/backend/models"
	"github.com/mukonchat/graph/backend/storage"
)

func (s *Store) GetProfile(owner models.Identity) (*models.Profile, error) {
	profile := &models.Profile{Owner: owner}
	var avatarType int16
	err := s.db.QueryRow(`
		SELECT display_name, avatar_type, avatar_data, encryption_public_key
		FROM profiles WHERE owner = $1`, owner).Scan(
		&profile.DisplayName, &avatarType, &profile.AvatarData, &profile.EncryptionPublicKey)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	profile.AvatarType = models.AvatarType(avatarType)
	return profile, nil
}

func (s *Store) PutProfile(profile *models.Profile) error {
	_, err := s.db.Exec(`
		INSERT INTO profiles (owner, display_name, avatar_type, avatar_data, encryption_public_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner) DO UPDATE
		SET display_name = $2, avatar_type = $3, avatar_data = $4, encryption_public_key = $5`,
		profile.Owner, profile.DisplayName, int16(profile.AvatarType),
		profile.AvatarData, profile.EncryptionPublicKey)
	return err
}

func (s *Store) CreateProfile(profile *models.Profile, descriptor *models.WalletDescriptor) error {
	return s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO profiles (owner, display_name, avatar_type, avatar_data, encryption_public_key)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (owner) DO UPDATE
			SET display_name = $2, avatar_type = $3, avatar_data = $4, encryption_public_key = $5`,
			profile.Owner, profile.DisplayName, int16(profile.AvatarType),
			profile.AvatarData, profile.EncryptionPublicKey)
		if err != nil {
			return err
		}
		return writeDescriptor(tx, descriptor)
	})
}

func (s *Store) DeleteProfile(owner models.Identity) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM profiles WHERE owner = $1`, owner); err != nil {
			return err
		}
		// peers rows cascade with the descriptor
		_, err := tx.Exec(`DELETE FROM wallet_descriptors WHERE owner = $1`, owner)
		return err
	})
}
