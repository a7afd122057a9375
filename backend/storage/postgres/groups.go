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

func (s *Store) GetGroup(groupID models.GroupID) (*models.Group, error) {
	group := &models.Group{GroupID: groupID}
	var gateAsset []byte
	var gateMin sql.NullInt64
	err := s.db.QueryRow(`
		SELECT creator, name, created_at, encryption_pubkey, gate_asset, gate_min_balance
		FROM groups WHERE group_id = $1`, groupID).Scan(
		&group.Creator, &group.Name, &group.CreatedAt, &group.EncryptionPubkey, &gateAsset, &gateMin)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if gateAsset != nil {
		gate := &models.TokenGate{MinBalance: uint64(gateMin.Int64)}
		copy(gate.Asset[:], gateAsset)
		group.TokenGate = gate
	}

	rows, err := s.db.Query(`
		SELECT member FROM group_members
		WHERE group_id = $1
		ORDER BY position`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var member models.Identity
		if err := rows.Scan(&member); err != nil {
			return nil, err
		}
		group.Members = append(group.Members, member)
	}

	return group, rows.Err()
}

func (s *Store) PutGroup(group *models.Group) error {
	return s.withTx(func(tx *sql.Tx) error {
		return writeGroup(tx, group)
	})
}

// writeGroup upserts the group row and rewrites the ordered member
// list. Membership can shrink, so the old rows go first.
func writeGroup(tx *sql.Tx, group *models.Group) error {
	var gateAsset interface{}
	var gateMin interface{}
	if group.TokenGate != nil {
		gateAsset = group.TokenGate.Asset[:]
		gateMin = int64(group.TokenGate.MinBalance)
	}

	_, err := tx.Exec(`
		INSERT INTO groups (group_id, creator, name, created_at, encryption_pubkey, gate_asset, gate_min_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (group_id) DO UPDATE
		SET name = $3, gate_asset = $6, gate_min_balance = $7`,
		group.GroupID, group.Creator, group.Name, group.CreatedAt,
		group.EncryptionPubkey, gateAsset, gateMin)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM group_members WHERE group_id = $1`, group.GroupID); err != nil {
		return err
	}
	for i, member := range group.Members {
		_, err := tx.Exec(`
			INSERT INTO group_members (group_id, member, position)
			VALUES ($1, $2, $3)`,
			group.GroupID, member, i)
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) DeleteGroup(groupID models.GroupID) error {
	// members, invites and key shares cascade
	_, err := s.db.Exec(`DELETE FROM groups WHERE group_id = $1`, groupID)
	return err
}

func (s *Store) GetGroupInvite(groupID models.GroupID, invitee models.Identity) (*models.GroupInvite, error) {
	invite := &models.GroupInvite{GroupID: groupID, Invitee: invitee}
	var status int16
	err := s.db.QueryRow(`
		SELECT inviter, status, created_at FROM group_invites
		WHERE group_id = $1 AND invitee = $2`, groupID, invitee).Scan(
		&invite.Inviter, &status, &invite.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	invite.Status = models.GroupInviteStatus(status)
	return invite, nil
}

func (s *Store) PutGroupInvite(invite *models.GroupInvite) error {
	_, err := s.db.Exec(`
		INSERT INTO group_invites (group_id, inviter, invitee, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (group_id, invitee) DO UPDATE
		SET inviter = $2, status = $4, created_at = $5`,
		invite.GroupID, invite.Inviter, invite.Invitee,
		int16(invite.Status), invite.CreatedAt)
	return err
}

func (s *Store) CommitJoin(group *models.Group, invite *models.GroupInvite) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := writeGroup(tx, group); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO group_invites (group_id, inviter, invitee, status, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (group_id, invitee) DO UPDATE
			SET inviter = $2, status = $4, created_at = $5`,
			invite.GroupID, invite.Inviter, invite.Invitee,
			int16(invite.Status), invite.CreatedAt)
		return err
	})
}

func (s *Store) GetKeyShare(groupID models.GroupID, member models.Identity) (*models.GroupKeyShare, error) {
	share := &models.GroupKeyShare{GroupID: groupID, Member: member}
	var nonce []byte
	err := s.db.QueryRow(`
		SELECT encrypted_key, nonce FROM group_key_shares
		WHERE group_id = $1 AND member = $2`, groupID, member).Scan(
		&share.EncryptedKey, &nonce)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	copy(share.Nonce[:], nonce)
	return share, nil
}

func (s *Store) PutKeyShare(share *models.GroupKeyShare) error {
	_, err := s.db.Exec(`
		INSERT INTO group_key_shares (group_id, member, encrypted_key, nonce)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (group_id, member) DO UPDATE
		SET encrypted_key = $3, nonce = $4`,
		share.GroupID, share.Member, share.EncryptedKey, share.Nonce[:])
	return err
}

func (s *Store) DeleteKeyShare(groupID models.GroupID, member models.Identity) error {
	_, err := s.db.Exec(`
		DELETE FROM group_key_shares
		WHERE group_id = $1 AND member = $2`,
		groupID, member)
	return err
}
