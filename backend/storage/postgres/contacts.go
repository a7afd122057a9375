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

func (s *Store) GetDescriptor(owner models.Identity) (*models.WalletDescriptor, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT TRUE FROM wallet_descriptors WHERE owner = $1`, owner).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT peer, state FROM peers
		WHERE owner = $1`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	descriptor := &models.WalletDescriptor{Owner: owner}
	for rows.Next() {
		var peer models.Peer
		var state int16
		if err := rows.Scan(&peer.Wallet, &state); err != nil {
			return nil, err
		}
		peer.State = models.PeerState(state)
		descriptor.Peers = append(descriptor.Peers, peer)
	}

	return descriptor, rows.Err()
}

func (s *Store) CommitRelationship(subject, counterpart *models.WalletDescriptor, conv *models.Conversation) error {
	return s.withTx(func(tx *sql.Tx) error {
		for _, d := range []*models.WalletDescriptor{subject, counterpart} {
			if err := writeDescriptor(tx, d); err != nil {
				return err
			}
		}

		if conv != nil {
			_, err := tx.Exec(`
				INSERT INTO conversations (chat_id, participant1, participant2, created_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (chat_id) DO UPDATE
				SET participant1 = $2, participant2 = $3, created_at = $4`,
				conv.ChatID, conv.Participants[0], conv.Participants[1], conv.CreatedAt)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// writeDescriptor upserts the descriptor row and every peer entry.
// Relationship operations never drop an entry, so upserts cover the
// whole state change.
func writeDescriptor(tx *sql.Tx, d *models.WalletDescriptor) error {
	_, err := tx.Exec(`
		INSERT INTO wallet_descriptors (owner)
		VALUES ($1)
		ON CONFLICT (owner) DO NOTHING`, d.Owner)
	if err != nil {
		return err
	}

	for _, peer := range d.Peers {
		_, err := tx.Exec(`
			INSERT INTO peers (owner, peer, state)
			VALUES ($1, $2, $3)
			ON CONFLICT (owner, peer) DO UPDATE
			SET state = $3`,
			d.Owner, peer.Wallet, int16(peer.State))
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) GetConversation(chatID models.ChatID) (*models.Conversation, error) {
	conv := &models.Conversation{ChatID: chatID}
	err := s.db.QueryRow(`
		SELECT participant1, participant2, created_at FROM conversations
		WHERE chat_id = $1`, chatID).Scan(
		&conv.Participants[0], &conv.Participants[1], &conv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}
